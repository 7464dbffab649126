package pgm

import (
	"bufio"
	"fmt"
	"os"

	"github.com/jaym/vodtool/internal/domain/port"
	"go.uber.org/zap"
)

// Writer serializes a frame's luma plane as an 8-bit binary PGM file:
// "P5\n<width> <height>\n255\n" followed by width*height raw bytes.
type Writer struct {
	path   string
	logger *zap.Logger
}

func NewWriter(path string, logger *zap.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

func (w *Writer) Export(frame port.Frame) error {
	if err := w.write(frame); err != nil {
		os.Remove(w.path)
		return err
	}
	return nil
}

func (w *Writer) write(frame port.Frame) error {
	width := frame.Width()
	height := frame.Height()
	plane := frame.Plane(0)
	stride := frame.Stride(0)

	if stride < width {
		return fmt.Errorf("luma stride %d shorter than width %d", stride, width)
	}
	if need := (height-1)*stride + width; len(plane) < need {
		return fmt.Errorf("luma plane too short: have %d bytes, need %d", len(plane), need)
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", w.path, err)
	}

	bw := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(bw, "P5\n%d %d\n255\n", width, height); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}

	// Rows are copied stride-aware: decoder row alignment padding past width
	// never reaches the file.
	for row := 0; row < height; row++ {
		if _, err := bw.Write(plane[row*stride : row*stride+width]); err != nil {
			f.Close()
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}

	w.logger.Info("bitmap written",
		zap.String("path", w.path),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return nil
}
