// Package libav implements the container and decoder ports over
// libavformat/libavcodec through cgo.
package libav

/*
#cgo pkg-config: libavformat libavcodec libavutil

#include <libavutil/error.h>

static int vodtool_averror_eof(void)    { return AVERROR_EOF; }
static int vodtool_averror_eagain(void) { return AVERROR(EAGAIN); }
*/
import "C"
import "fmt"

var (
	codeEOF    = C.vodtool_averror_eof()
	codeEAGAIN = C.vodtool_averror_eagain()
)

// avError turns a libav return code into a Go error carrying the library's
// own description.
func avError(code C.int) error {
	var buf [C.AV_ERROR_MAX_STRING_SIZE]C.char
	C.av_strerror(code, &buf[0], C.AV_ERROR_MAX_STRING_SIZE)
	return fmt.Errorf("libav: %s (code %d)", C.GoString(&buf[0]), int(code))
}
