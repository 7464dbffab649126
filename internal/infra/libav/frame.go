package libav

/*
#cgo pkg-config: libavformat libavcodec libavutil

#include <libavcodec/avcodec.h>
#include <libavutil/frame.h>
#include <libavutil/pixdesc.h>
*/
import "C"
import (
	"math"
	"unsafe"
)

// noPTS mirrors AV_NOPTS_VALUE.
const noPTS = int64(math.MinInt64)

// Frame wraps one decoded AVFrame.
type Frame struct {
	frame *C.AVFrame
}

func (f *Frame) Width() int  { return int(f.frame.width) }
func (f *Frame) Height() int { return int(f.frame.height) }

func (f *Frame) Stride(i int) int {
	return int(f.frame.linesize[i])
}

// Plane returns the i-th plane buffer, stride*planeHeight bytes. Valid until
// Release.
func (f *Frame) Plane(i int) []byte {
	data := f.frame.data[i]
	if data == nil {
		return nil
	}
	size := f.Stride(i) * f.planeHeight(i)
	return unsafe.Slice((*byte)(unsafe.Pointer(data)), size)
}

// planeHeight accounts for chroma subsampling; plane 0 is always full
// height.
func (f *Frame) planeHeight(i int) int {
	h := int(f.frame.height)
	if i == 0 {
		return h
	}
	desc := C.av_pix_fmt_desc_get(C.enum_AVPixelFormat(f.frame.format))
	if desc == nil {
		return h
	}
	shift := uint(desc.log2_chroma_h)
	return (h + (1 << shift) - 1) >> shift
}

// PTS prefers the decoder's best-effort timestamp; some inputs carry frames
// whose own pts is unset.
func (f *Frame) PTS() int64 {
	if ts := int64(f.frame.best_effort_timestamp); ts != noPTS {
		return ts
	}
	return int64(f.frame.pts)
}

func (f *Frame) Release() {
	if f.frame != nil {
		C.av_frame_free(&f.frame)
	}
}
