package port

import "github.com/jaym/vodtool/internal/domain/entity"

type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// StreamInfo describes one elementary stream of an opened container.
type StreamInfo struct {
	Index    int
	Type     MediaType
	Codec    string
	TimeBase entity.Rational
	Width    int
	Height   int
	BitRate  int64
}

// Packet is one unit of coded data read from the container, timed in the
// owning stream's time base. Release must be called exactly once.
type Packet interface {
	StreamIndex() int
	PTS() int64
	DTS() int64
	Keyframe() bool
	Release()
}

// Container is an opened media file: demuxing, stream selection and
// keyframe-aligned seeking.
type Container interface {
	Streams() []StreamInfo

	// BestStream returns the index of the stream the demuxer judges best
	// for the given media type, or ErrStreamNotFound.
	BestStream(t MediaType) (int, error)

	// DiscardExcept marks every stream not listed as discard-all so the
	// demuxer can skip packets the pipeline will never look at.
	DiscardExcept(keep ...int)

	// Seek repositions the read cursor to the latest keyframe at or before
	// maxTimestamp (GlobalTimeBase ticks), across all streams.
	Seek(maxTimestamp int64) error

	// ReadPacket returns the next packet, or ErrEndOfStream.
	ReadPacket() (Packet, error)

	Close() error
}

// DecoderFactory opens a decoder bound to one of the container's streams.
type DecoderFactory interface {
	OpenVideoDecoder(streamIndex int) (VideoDecoder, error)
}
