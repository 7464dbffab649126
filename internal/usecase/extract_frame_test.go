package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jaym/vodtool/internal/domain/entity"
	"github.com/jaym/vodtool/internal/domain/port"
)

// millisTB is the video stream time base used throughout: 1000 ticks per
// second, so pts 2000 is two seconds.
var millisTB = entity.Rational{Num: 1, Den: 1000}

type fakePacket struct {
	stream   int
	pts      int64
	released bool
}

func (p *fakePacket) StreamIndex() int { return p.stream }
func (p *fakePacket) PTS() int64       { return p.pts }
func (p *fakePacket) DTS() int64       { return p.pts }
func (p *fakePacket) Keyframe() bool   { return false }
func (p *fakePacket) Release()         { p.released = true }

type fakeFrame struct {
	width    int
	height   int
	stride   int
	plane    []byte
	pts      int64
	released bool
}

func (f *fakeFrame) Width() int        { return f.width }
func (f *fakeFrame) Height() int       { return f.height }
func (f *fakeFrame) Plane(i int) []byte { return f.plane }
func (f *fakeFrame) Stride(i int) int  { return f.stride }
func (f *fakeFrame) PTS() int64        { return f.pts }
func (f *fakeFrame) Release()          { f.released = true }

type fakeContainer struct {
	streams   []port.StreamInfo
	packets   []*fakePacket
	pos       int
	seeks     []int64
	seekErr   error
	discarded [][]int
}

func (c *fakeContainer) Streams() []port.StreamInfo { return c.streams }

func (c *fakeContainer) BestStream(t port.MediaType) (int, error) {
	for _, st := range c.streams {
		if st.Type == t {
			return st.Index, nil
		}
	}
	return 0, port.ErrStreamNotFound
}

func (c *fakeContainer) DiscardExcept(keep ...int) {
	c.discarded = append(c.discarded, keep)
}

func (c *fakeContainer) Seek(maxTimestamp int64) error {
	c.seeks = append(c.seeks, maxTimestamp)
	return c.seekErr
}

func (c *fakeContainer) ReadPacket() (port.Packet, error) {
	if c.pos >= len(c.packets) {
		return nil, port.ErrEndOfStream
	}
	pkt := c.packets[c.pos]
	c.pos++
	return pkt, nil
}

func (c *fakeContainer) Close() error { return nil }

// fakeDecoder emits the scripted frames for each submitted packet pts, and
// flushFrames once a nil packet arrives.
type fakeDecoder struct {
	emit        map[int64][]*fakeFrame
	flushFrames []*fakeFrame
	openErr     error

	queue     []*fakeFrame
	submitted []int64
	flushing  bool
	closed    bool
}

func (d *fakeDecoder) OpenVideoDecoder(streamIndex int) (port.VideoDecoder, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d, nil
}

func (d *fakeDecoder) Submit(pkt port.Packet) error {
	if pkt == nil {
		d.flushing = true
		d.queue = append(d.queue, d.flushFrames...)
		return nil
	}
	d.submitted = append(d.submitted, pkt.PTS())
	d.queue = append(d.queue, d.emit[pkt.PTS()]...)
	return nil
}

func (d *fakeDecoder) Drain() (port.Frame, error) {
	if len(d.queue) == 0 {
		if d.flushing {
			return nil, port.ErrEndOfStream
		}
		return nil, port.ErrNeedMoreInput
	}
	frame := d.queue[0]
	d.queue = d.queue[1:]
	return frame, nil
}

func (d *fakeDecoder) Close() error {
	d.closed = true
	return nil
}

type fakeExporter struct {
	exported []port.Frame
	err      error
}

func (e *fakeExporter) Export(frame port.Frame) error {
	if e.err != nil {
		return e.err
	}
	e.exported = append(e.exported, frame)
	return nil
}

func avStreams() []port.StreamInfo {
	return []port.StreamInfo{
		{Index: 0, Type: port.MediaTypeVideo, Codec: "h264", TimeBase: millisTB},
		{Index: 1, Type: port.MediaTypeAudio, Codec: "aac", TimeBase: entity.Rational{Num: 1, Den: 48000}},
	}
}

// Two-second target (segment 2 of one-second segments): frames at 1900 and
// 1950 ms precede it and must be skipped, 2000 ms is the first qualifying
// frame.
func TestExecuteExportsFirstFrameAtOrAfterStart(t *testing.T) {
	early1 := &fakeFrame{pts: 1900}
	early2 := &fakeFrame{pts: 1950}
	target := &fakeFrame{pts: 2000}
	late := &fakeFrame{pts: 2050}

	container := &fakeContainer{
		streams: avStreams(),
		packets: []*fakePacket{
			{stream: 0, pts: 1900},
			{stream: 0, pts: 1950},
			{stream: 0, pts: 2000},
			{stream: 0, pts: 2050},
		},
	}
	dec := &fakeDecoder{emit: map[int64][]*fakeFrame{
		1900: {early1},
		1950: {early2},
		2000: {target},
		2050: {late},
	}}
	exporter := &fakeExporter{}

	uc := NewExtractSegmentFrame(container, dec, exporter, zap.NewNop())
	err := uc.Execute(context.Background(), entity.Segment{Index: 2, Duration: 1, Timescale: 1})
	require.NoError(t, err)

	require.Len(t, exporter.exported, 1)
	assert.Same(t, target, exporter.exported[0])
	assert.True(t, early1.released)
	assert.True(t, early2.released)
	assert.True(t, target.released)
	assert.Equal(t, []int64{2_000_000}, container.seeks)
	assert.True(t, dec.closed)
}

func TestExecuteSkipsForeignStreamPackets(t *testing.T) {
	frame := &fakeFrame{pts: 0}
	audio := &fakePacket{stream: 1, pts: 5}
	container := &fakeContainer{
		streams: avStreams(),
		packets: []*fakePacket{audio, {stream: 0, pts: 0}},
	}
	dec := &fakeDecoder{emit: map[int64][]*fakeFrame{0: {frame}}}
	exporter := &fakeExporter{}

	uc := NewExtractSegmentFrame(container, dec, exporter, zap.NewNop())
	err := uc.Execute(context.Background(), entity.Segment{Index: 0, Duration: 5, Timescale: 1})
	require.NoError(t, err)

	assert.Equal(t, []int64{0}, dec.submitted, "audio packet must not reach the decoder")
	assert.True(t, audio.released)
}

func TestExecuteDiscardsNonSelectedStreams(t *testing.T) {
	streams := avStreams()
	streams = append(streams, port.StreamInfo{Index: 2, Type: "subtitle", TimeBase: millisTB})
	frame := &fakeFrame{pts: 0}
	container := &fakeContainer{
		streams: streams,
		packets: []*fakePacket{{stream: 0, pts: 0}},
	}
	dec := &fakeDecoder{emit: map[int64][]*fakeFrame{0: {frame}}}

	uc := NewExtractSegmentFrame(container, dec, &fakeExporter{}, zap.NewNop())
	err := uc.Execute(context.Background(), entity.Segment{Index: 0, Duration: 5, Timescale: 1})
	require.NoError(t, err)

	require.Len(t, container.discarded, 1)
	assert.ElementsMatch(t, []int{0, 1}, container.discarded[0])
}

func TestExecuteFrameNotFound(t *testing.T) {
	container := &fakeContainer{
		streams: avStreams(),
		packets: []*fakePacket{{stream: 0, pts: 100}, {stream: 0, pts: 200}},
	}
	dec := &fakeDecoder{emit: map[int64][]*fakeFrame{
		100: {{pts: 100}},
		200: {{pts: 200}},
	}}
	exporter := &fakeExporter{}

	uc := NewExtractSegmentFrame(container, dec, exporter, zap.NewNop())
	// Segment 12 starts at 60s; the file ends long before.
	err := uc.Execute(context.Background(), entity.Segment{Index: 12, Duration: 5, Timescale: 1})
	require.ErrorIs(t, err, port.ErrFrameNotFound)
	assert.Empty(t, exporter.exported)
}

// Frames the decoder is still holding at end of input are flushed and
// tested; a qualifying one there must still be exported.
func TestExecuteFlushDrainsBufferedFrames(t *testing.T) {
	buffered := &fakeFrame{pts: 5000}
	container := &fakeContainer{
		streams: avStreams(),
		packets: []*fakePacket{{stream: 0, pts: 4900}, {stream: 0, pts: 5000}},
	}
	dec := &fakeDecoder{
		emit:        map[int64][]*fakeFrame{},
		flushFrames: []*fakeFrame{buffered},
	}
	exporter := &fakeExporter{}

	uc := NewExtractSegmentFrame(container, dec, exporter, zap.NewNop())
	err := uc.Execute(context.Background(), entity.Segment{Index: 1, Duration: 5, Timescale: 1})
	require.NoError(t, err)

	require.Len(t, exporter.exported, 1)
	assert.Same(t, buffered, exporter.exported[0])
}

func TestExecuteNoVideoStream(t *testing.T) {
	container := &fakeContainer{
		streams: []port.StreamInfo{
			{Index: 0, Type: port.MediaTypeAudio, TimeBase: millisTB},
		},
	}
	uc := NewExtractSegmentFrame(container, &fakeDecoder{}, &fakeExporter{}, zap.NewNop())
	err := uc.Execute(context.Background(), entity.Segment{Index: 0, Duration: 5, Timescale: 1})
	assert.ErrorIs(t, err, port.ErrStreamNotFound)
}

func TestExecuteNoAudioStream(t *testing.T) {
	container := &fakeContainer{
		streams: []port.StreamInfo{
			{Index: 0, Type: port.MediaTypeVideo, TimeBase: millisTB},
		},
	}
	uc := NewExtractSegmentFrame(container, &fakeDecoder{}, &fakeExporter{}, zap.NewNop())
	err := uc.Execute(context.Background(), entity.Segment{Index: 0, Duration: 5, Timescale: 1})
	assert.ErrorIs(t, err, port.ErrStreamNotFound)
}

func TestExecuteSeekError(t *testing.T) {
	seekErr := errors.New("unseekable")
	container := &fakeContainer{streams: avStreams(), seekErr: seekErr}
	uc := NewExtractSegmentFrame(container, &fakeDecoder{}, &fakeExporter{}, zap.NewNop())
	err := uc.Execute(context.Background(), entity.Segment{Index: 0, Duration: 5, Timescale: 1})
	assert.ErrorIs(t, err, seekErr)
}

func TestExecuteInvalidSegment(t *testing.T) {
	container := &fakeContainer{streams: avStreams()}
	uc := NewExtractSegmentFrame(container, &fakeDecoder{}, &fakeExporter{}, zap.NewNop())
	err := uc.Execute(context.Background(), entity.Segment{Index: -1, Duration: 5, Timescale: 1})
	assert.Error(t, err)
	assert.Empty(t, container.seeks, "no I/O before validation passes")
}

func TestExecuteNeverExportsEarlyFrame(t *testing.T) {
	// Decoder yields a scatter of frames around the 3s target; whichever is
	// exported must be at or after it.
	ptsList := []int64{2800, 2900, 2999, 3000, 3100}
	packets := make([]*fakePacket, 0, len(ptsList))
	emit := map[int64][]*fakeFrame{}
	for _, pts := range ptsList {
		packets = append(packets, &fakePacket{stream: 0, pts: pts})
		emit[pts] = []*fakeFrame{{pts: pts}}
	}
	container := &fakeContainer{streams: avStreams(), packets: packets}
	exporter := &fakeExporter{}

	uc := NewExtractSegmentFrame(container, &fakeDecoder{emit: emit}, exporter, zap.NewNop())
	err := uc.Execute(context.Background(), entity.Segment{Index: 3, Duration: 1, Timescale: 1})
	require.NoError(t, err)

	require.Len(t, exporter.exported, 1)
	got := entity.RescaleToGlobal(exporter.exported[0].PTS(), millisTB)
	assert.GreaterOrEqual(t, got, int64(3_000_000))
	assert.Equal(t, int64(3000), exporter.exported[0].PTS())
}

func TestExecuteContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	container := &fakeContainer{streams: avStreams()}
	uc := NewExtractSegmentFrame(container, &fakeDecoder{}, &fakeExporter{}, zap.NewNop())
	err := uc.Execute(ctx, entity.Segment{Index: 0, Duration: 5, Timescale: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
