package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaym/vodtool/internal/domain/entity"
	"github.com/jaym/vodtool/internal/domain/port"
	"go.uber.org/zap"
)

// ExtractSegmentFrame runs the single-shot pipeline: pick the best video and
// audio streams, compute the segment's timestamp bounds, seek to the keyframe
// at or before the segment start, decode forward until the first frame whose
// presentation timestamp reaches the start, and export that frame.
type ExtractSegmentFrame struct {
	container port.Container
	decoders  port.DecoderFactory
	exporter  port.FrameExporter
	logger    *zap.Logger
}

func NewExtractSegmentFrame(
	container port.Container,
	decoders port.DecoderFactory,
	exporter port.FrameExporter,
	logger *zap.Logger,
) *ExtractSegmentFrame {
	return &ExtractSegmentFrame{
		container: container,
		decoders:  decoders,
		exporter:  exporter,
		logger:    logger,
	}
}

func (uc *ExtractSegmentFrame) Execute(ctx context.Context, seg entity.Segment) error {
	if err := seg.Validate(); err != nil {
		return fmt.Errorf("invalid segment: %w", err)
	}

	videoIdx, err := uc.container.BestStream(port.MediaTypeVideo)
	if err != nil {
		return fmt.Errorf("select video stream: %w", err)
	}
	audioIdx, err := uc.container.BestStream(port.MediaTypeAudio)
	if err != nil {
		return fmt.Errorf("select audio stream: %w", err)
	}
	uc.container.DiscardExcept(videoIdx, audioIdx)

	streams := uc.container.Streams()
	for _, st := range streams {
		uc.logger.Debug("stream",
			zap.Int("index", st.Index),
			zap.String("type", string(st.Type)),
			zap.String("codec", st.Codec),
			zap.Int64s("time_base", []int64{st.TimeBase.Num, st.TimeBase.Den}),
			zap.Int64("bit_rate", st.BitRate),
		)
	}
	videoTB := streams[videoIdx].TimeBase

	// end marks the width of the segment window; the selection rule below
	// only needs start (first frame at or after it).
	start, end := seg.Bounds()
	uc.logger.Info("segment bounds",
		zap.Int64("segment", seg.Index),
		zap.Int64("start_ts", start),
		zap.Int64("end_ts", end),
	)

	if err := uc.container.Seek(start); err != nil {
		return fmt.Errorf("seek to %d: %w", start, err)
	}

	dec, err := uc.decoders.OpenVideoDecoder(videoIdx)
	if err != nil {
		return fmt.Errorf("open video decoder: %w", err)
	}
	defer dec.Close()

	frame, err := uc.selectFrame(ctx, dec, videoIdx, videoTB, start)
	if err != nil {
		return err
	}
	defer frame.Release()

	if err := uc.exporter.Export(frame); err != nil {
		return fmt.Errorf("export frame: %w", err)
	}

	uc.logger.Info("frame exported",
		zap.Int("width", frame.Width()),
		zap.Int("height", frame.Height()),
		zap.Int64("frame_pts", entity.RescaleToGlobal(frame.PTS(), videoTB)),
	)
	return nil
}

// selectFrame walks packets forward from the seek point. The keyframe seek
// lands at or before the target, so frames decoded before startTS are
// discarded until one reaches it.
func (uc *ExtractSegmentFrame) selectFrame(
	ctx context.Context,
	dec port.VideoDecoder,
	videoIdx int,
	tb entity.Rational,
	startTS int64,
) (port.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pkt, err := uc.container.ReadPacket()
		if errors.Is(err, port.ErrEndOfStream) {
			return uc.flush(dec, tb, startTS)
		}
		if err != nil {
			return nil, fmt.Errorf("read packet: %w", err)
		}
		if pkt.StreamIndex() != videoIdx {
			pkt.Release()
			continue
		}

		uc.logger.Debug("packet",
			zap.Int64("pts", pkt.PTS()),
			zap.Int64("dts", pkt.DTS()),
			zap.Bool("keyframe", pkt.Keyframe()),
		)

		err = dec.Submit(pkt)
		pkt.Release()
		if err != nil {
			return nil, fmt.Errorf("submit packet: %w", err)
		}

		frame, err := uc.drainQualifying(dec, tb, startTS)
		switch {
		case err == nil:
			return frame, nil
		case errors.Is(err, port.ErrNeedMoreInput):
			continue
		case errors.Is(err, port.ErrEndOfStream):
			return nil, port.ErrFrameNotFound
		default:
			return nil, err
		}
	}
}

// flush drains the frames still buffered inside the decoder once the
// container runs dry. A qualifying frame can legitimately be sitting there.
func (uc *ExtractSegmentFrame) flush(dec port.VideoDecoder, tb entity.Rational, startTS int64) (port.Frame, error) {
	if err := dec.Submit(nil); err != nil && !errors.Is(err, port.ErrEndOfStream) {
		return nil, fmt.Errorf("flush decoder: %w", err)
	}
	frame, err := uc.drainQualifying(dec, tb, startTS)
	switch {
	case err == nil:
		return frame, nil
	case errors.Is(err, port.ErrNeedMoreInput), errors.Is(err, port.ErrEndOfStream):
		return nil, port.ErrFrameNotFound
	default:
		return nil, err
	}
}

// drainQualifying pulls decoded frames until one reaches startTS, passing
// ErrNeedMoreInput and ErrEndOfStream through to the caller.
func (uc *ExtractSegmentFrame) drainQualifying(dec port.VideoDecoder, tb entity.Rational, startTS int64) (port.Frame, error) {
	for {
		frame, err := dec.Drain()
		if err != nil {
			if errors.Is(err, port.ErrNeedMoreInput) || errors.Is(err, port.ErrEndOfStream) {
				return nil, err
			}
			return nil, fmt.Errorf("drain frame: %w", err)
		}

		pts := entity.RescaleToGlobal(frame.PTS(), tb)
		if pts >= startTS {
			return frame, nil
		}
		uc.logger.Debug("frame before target, skipping",
			zap.Int64("frame_pts", pts),
			zap.Int64("start_ts", startTS),
		)
		frame.Release()
	}
}
