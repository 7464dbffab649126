package port

// FrameExporter serializes a decoded frame to its output artifact.
type FrameExporter interface {
	Export(frame Frame) error
}
