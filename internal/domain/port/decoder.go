package port

// Frame is one decoded picture. Plane buffers are row-major with a per-plane
// stride that may exceed the visible width. Release must be called exactly
// once; plane data is invalid afterwards.
type Frame interface {
	Width() int
	Height() int
	Plane(i int) []byte
	Stride(i int) int

	// PTS is the presentation timestamp in the source stream's time base.
	PTS() int64

	Release()
}

// VideoDecoder is the two-phase feed/drain handshake with the codec: submit
// a packet, then drain until ErrNeedMoreInput. A nil Submit flushes the
// decoder; after that Drain yields the buffered tail and finally
// ErrEndOfStream.
type VideoDecoder interface {
	Submit(pkt Packet) error
	Drain() (Frame, error)
	Close() error
}
