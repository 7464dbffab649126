package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jaym/vodtool/internal/domain/entity"
	"github.com/jaym/vodtool/internal/infra/config"
	"github.com/jaym/vodtool/internal/infra/libav"
	"github.com/jaym/vodtool/internal/infra/pgm"
	"github.com/jaym/vodtool/internal/usecase"
	"github.com/jaym/vodtool/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		return 1
	}

	flags := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	duration := flags.Int64P("duration", "d", cfg.Duration, "segment duration, in timescale units")
	timescale := flags.Int64P("timescale", "t", cfg.Timescale, "timescale, in units per second")
	segment := flags.Int64P("segment", "s", cfg.Segment, "zero-based index of the segment to extract from")
	help := flags.BoolP("help", "h", false, "print usage")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-d|--duration N] [-t|--timescale N] [-s|--segment N] [-h] infile\n",
			flags.Name())
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		// pflag already printed the error and usage.
		return 1
	}
	if *help {
		flags.Usage()
		return 0
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 1
	}
	infile := flags.Arg(0)

	seg := entity.Segment{Index: *segment, Duration: *duration, Timescale: *timescale}
	if err := seg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flags.Usage()
		return 1
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		return 1
	}
	defer log.Sync()
	log = log.With(zap.String("run_id", uuid.NewString()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := libav.Open(infile, log)
	if err != nil {
		log.Error("open input", zap.String("path", infile), zap.Error(err))
		return 1
	}
	defer container.Close()

	exporter := pgm.NewWriter(cfg.Output, log)

	uc := usecase.NewExtractSegmentFrame(container, container, exporter, log)
	if err := uc.Execute(ctx, seg); err != nil {
		log.Error("extraction failed", zap.Error(err))
		return 1
	}
	return 0
}
