// Command mbp10 rebuilds MBP-10 depth snapshots from an MBO event
// stream. It reads one instrument's order-level CSV, replays it through
// the book engine and writes one depth row per visible change.
//
//	mbp10 [-config file.yaml] <input_mbo.csv> [output_mbp.csv]
//
// The output path defaults to output_mbp.csv. Exit status is 0 on
// success and 1 on any failure, with a single diagnostic line on stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	book "github.com/aryandadwal2006/mbp-reconstructor"
	"github.com/aryandadwal2006/mbp-reconstructor/config"
	"github.com/aryandadwal2006/mbp-reconstructor/mbo"
	"github.com/aryandadwal2006/mbp-reconstructor/mbp"
	"github.com/aryandadwal2006/mbp-reconstructor/pipeline"
)

const defaultOutput = "output_mbp.csv"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "YAML config file (defaults apply when omitted)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		usage()
		os.Exit(1)
	}
	input := flag.Arg(0)
	output := defaultOutput
	if flag.NArg() == 2 {
		output = flag.Arg(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mbp10: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	book.SetLogger(logger)
	pipeline.SetLogger(logger)

	if err := run(logger, cfg, input, output); err != nil {
		logger.Fatal().Err(err).Msg("reconstruction failed")
	}
}

func run(logger zerolog.Logger, cfg config.Config, input, output string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	src, err := mbo.NewReader(in)
	if err != nil {
		return fmt.Errorf("read input header: %w", err)
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	w := mbp.NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		out.Close()
		return fmt.Errorf("write output header: %w", err)
	}

	eng := book.New(cfg.PublisherID, cfg.InstrumentID, book.WithOrderCapacity(cfg.OrderCapacity))

	logger.Info().
		Str("version", book.Version).
		Str("input", input).
		Str("output", output).
		Uint16("publisher_id", cfg.PublisherID).
		Uint32("instrument_id", cfg.InstrumentID).
		Msg("starting reconstruction")

	sum, err := pipeline.Run(ctx, src, eng, w, pipeline.Options{
		ProgressEvery: cfg.ProgressEvery,
		AuditEvery:    cfg.AuditEvery,
	})
	if err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	if n := sum.Engine.Inconsistencies(); n > 0 {
		logger.Warn().Uint64("events", n).Msg("some events were dropped or degraded")
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	logger.Info().
		Object("run", sum).
		Object("engine", sum.Engine).
		Object("book", sum.Book).
		Object("reader", sum.Read).
		Uint64("rows", w.Rows()).
		Uint64("heap_bytes", mem.HeapAlloc).
		Msg("reconstruction complete")
	return nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var w io.Writer = os.Stderr
	if cfg.Logging.Pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(w).Level(level).With().
		Timestamp().
		Str("run_id", xid.New().String()).
		Logger()
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-config file.yaml] <input_mbo.csv> [output_mbp.csv]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Reconstructs MBP-10 depth snapshots from MBO order events.")
	fmt.Fprintf(os.Stderr, "The output file defaults to %s.\n\n", defaultOutput)
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}
