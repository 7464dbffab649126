package libav

/*
#cgo pkg-config: libavformat libavcodec libavutil

#include <libavformat/avformat.h>
#include <libavcodec/avcodec.h>
*/
import "C"
import (
	"errors"
	"fmt"

	"github.com/jaym/vodtool/internal/domain/port"
)

// OpenVideoDecoder allocates and opens a decoder for the given stream,
// carrying over the stream's codec parameters, time base and average frame
// rate.
func (c *Container) OpenVideoDecoder(streamIndex int) (port.VideoDecoder, error) {
	streams := c.streams()
	if streamIndex < 0 || streamIndex >= len(streams) {
		return nil, fmt.Errorf("stream index %d out of range", streamIndex)
	}
	st := streams[streamIndex]

	codec := C.avcodec_find_decoder(st.codecpar.codec_id)
	if codec == nil {
		return nil, fmt.Errorf("no decoder for codec %s",
			C.GoString(C.avcodec_get_name(st.codecpar.codec_id)))
	}

	ctx := C.avcodec_alloc_context3(codec)
	if ctx == nil {
		return nil, errors.New("libav: cannot allocate decoder context")
	}
	if ret := C.avcodec_parameters_to_context(ctx, st.codecpar); ret < 0 {
		C.avcodec_free_context(&ctx)
		return nil, fmt.Errorf("copy codec parameters: %w", avError(ret))
	}
	ctx.framerate = st.avg_frame_rate
	ctx.pkt_timebase = st.time_base

	if ret := C.avcodec_open2(ctx, codec, nil); ret < 0 {
		C.avcodec_free_context(&ctx)
		return nil, fmt.Errorf("open decoder %s: %w", C.GoString(codec.name), avError(ret))
	}

	return &Decoder{ctx: ctx}, nil
}

// Decoder wraps an opened AVCodecContext.
type Decoder struct {
	ctx *C.AVCodecContext
}

// Submit feeds one packet into the decoder. A nil packet enters flush mode.
func (d *Decoder) Submit(pkt port.Packet) error {
	var cPkt *C.AVPacket
	if pkt != nil {
		p, ok := pkt.(*Packet)
		if !ok {
			return fmt.Errorf("libav: cannot submit foreign packet type %T", pkt)
		}
		cPkt = p.pkt
	}

	ret := C.avcodec_send_packet(d.ctx, cPkt)
	switch {
	case ret == 0:
		return nil
	case ret == codeEOF:
		return port.ErrEndOfStream
	case ret == codeEAGAIN:
		// Cannot happen while the caller drains fully after every submit.
		return errors.New("libav: decoder refused packet before drain")
	default:
		return avError(ret)
	}
}

// Drain pulls the next decoded frame. ErrNeedMoreInput means feed another
// packet; ErrEndOfStream means a flushed decoder is empty.
func (d *Decoder) Drain() (port.Frame, error) {
	frame := C.av_frame_alloc()
	if frame == nil {
		return nil, errors.New("libav: cannot allocate frame")
	}
	ret := C.avcodec_receive_frame(d.ctx, frame)
	switch {
	case ret == 0:
		return &Frame{frame: frame}, nil
	case ret == codeEAGAIN:
		C.av_frame_free(&frame)
		return nil, port.ErrNeedMoreInput
	case ret == codeEOF:
		C.av_frame_free(&frame)
		return nil, port.ErrEndOfStream
	default:
		C.av_frame_free(&frame)
		return nil, avError(ret)
	}
}

func (d *Decoder) Close() error {
	if d.ctx != nil {
		C.avcodec_free_context(&d.ctx)
	}
	return nil
}
