package libav

/*
#cgo pkg-config: libavformat libavcodec libavutil

#include <stdlib.h>
#include <libavformat/avformat.h>
#include <libavcodec/avcodec.h>
*/
import "C"
import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/jaym/vodtool/internal/domain/entity"
	"github.com/jaym/vodtool/internal/domain/port"
	"go.uber.org/zap"
)

// Container wraps an opened AVFormatContext. It implements port.Container
// and port.DecoderFactory and is not safe for concurrent use; the pipeline
// is single-threaded by design.
type Container struct {
	ctx    *C.AVFormatContext
	logger *zap.Logger
}

// Open opens the input file and reads enough of it to populate stream
// parameters.
func Open(path string, logger *zap.Logger) (*Container, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var ctx *C.AVFormatContext
	if ret := C.avformat_open_input(&ctx, cPath, nil, nil); ret < 0 {
		return nil, fmt.Errorf("open %s: %w", path, avError(ret))
	}
	if ret := C.avformat_find_stream_info(ctx, nil); ret < 0 {
		C.avformat_close_input(&ctx)
		return nil, fmt.Errorf("find stream info for %s: %w", path, avError(ret))
	}

	return &Container{ctx: ctx, logger: logger}, nil
}

func (c *Container) streams() []*C.AVStream {
	return unsafe.Slice(c.ctx.streams, int(c.ctx.nb_streams))
}

func (c *Container) Streams() []port.StreamInfo {
	var infos []port.StreamInfo
	for i, st := range c.streams() {
		par := st.codecpar
		info := port.StreamInfo{
			Index: i,
			Codec: C.GoString(C.avcodec_get_name(par.codec_id)),
			TimeBase: entity.Rational{
				Num: int64(st.time_base.num),
				Den: int64(st.time_base.den),
			},
			BitRate: int64(par.bit_rate),
		}
		switch par.codec_type {
		case C.AVMEDIA_TYPE_VIDEO:
			info.Type = port.MediaTypeVideo
			info.Width = int(par.width)
			info.Height = int(par.height)
		case C.AVMEDIA_TYPE_AUDIO:
			info.Type = port.MediaTypeAudio
		}
		infos = append(infos, info)
	}
	return infos
}

func mediaType(t port.MediaType) (C.enum_AVMediaType, error) {
	switch t {
	case port.MediaTypeVideo:
		return C.AVMEDIA_TYPE_VIDEO, nil
	case port.MediaTypeAudio:
		return C.AVMEDIA_TYPE_AUDIO, nil
	default:
		return C.AVMEDIA_TYPE_UNKNOWN, fmt.Errorf("unsupported media type %q", t)
	}
}

// BestStream delegates stream ranking (disposition, resolution, bitrate) to
// av_find_best_stream.
func (c *Container) BestStream(t port.MediaType) (int, error) {
	avType, err := mediaType(t)
	if err != nil {
		return 0, err
	}
	ret := C.av_find_best_stream(c.ctx, avType, -1, -1, nil, 0)
	if ret < 0 {
		return 0, fmt.Errorf("%w: no %s stream", port.ErrStreamNotFound, t)
	}
	return int(ret), nil
}

func (c *Container) DiscardExcept(keep ...int) {
	for i, st := range c.streams() {
		st.discard = C.AVDISCARD_ALL
		for _, k := range keep {
			if i == k {
				st.discard = C.AVDISCARD_DEFAULT
				break
			}
		}
	}
}

// Seek positions the read cursor at the latest keyframe at or before
// maxTimestamp, given in GlobalTimeBase ticks, with the stream-index
// wildcard so the demuxer picks its reference stream.
func (c *Container) Seek(maxTimestamp int64) error {
	ret := C.avformat_seek_file(c.ctx, -1,
		0, C.int64_t(maxTimestamp), C.int64_t(maxTimestamp), 0)
	if ret < 0 {
		return avError(ret)
	}
	return nil
}

func (c *Container) ReadPacket() (port.Packet, error) {
	pkt := C.av_packet_alloc()
	if pkt == nil {
		return nil, errors.New("libav: cannot allocate packet")
	}
	ret := C.av_read_frame(c.ctx, pkt)
	if ret < 0 {
		C.av_packet_free(&pkt)
		if ret == codeEOF {
			return nil, port.ErrEndOfStream
		}
		return nil, avError(ret)
	}
	return &Packet{pkt: pkt}, nil
}

func (c *Container) Close() error {
	if c.ctx != nil {
		C.avformat_close_input(&c.ctx)
	}
	return nil
}

// Packet wraps one AVPacket read from the container.
type Packet struct {
	pkt *C.AVPacket
}

func (p *Packet) StreamIndex() int { return int(p.pkt.stream_index) }
func (p *Packet) PTS() int64       { return int64(p.pkt.pts) }
func (p *Packet) DTS() int64       { return int64(p.pkt.dts) }

func (p *Packet) Keyframe() bool {
	return p.pkt.flags&C.AV_PKT_FLAG_KEY != 0
}

func (p *Packet) Release() {
	if p.pkt != nil {
		C.av_packet_free(&p.pkt)
	}
}
