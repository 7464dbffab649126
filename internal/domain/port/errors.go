package port

import "errors"

var (
	// ErrNeedMoreInput is returned by VideoDecoder.Drain when the decoder
	// has buffered the input seen so far and needs more packets before it
	// can emit a picture.
	ErrNeedMoreInput = errors.New("decoder needs more input")

	// ErrEndOfStream is returned by Container.ReadPacket at end of input
	// and by VideoDecoder.Drain once a flushed decoder is fully drained.
	ErrEndOfStream = errors.New("end of stream")

	// ErrStreamNotFound is returned when the container holds no stream of
	// the requested media type.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrFrameNotFound is returned when the input is exhausted before any
	// frame at or after the target timestamp was decoded.
	ErrFrameNotFound = errors.New("no frame at or after target timestamp")
)
