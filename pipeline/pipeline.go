// Package pipeline drives the reconstruction loop: MBO events from an
// EventSource, through the book engine, into a SnapshotSink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	book "github.com/aryandadwal2006/mbp-reconstructor"
	"github.com/aryandadwal2006/mbp-reconstructor/mbo"
)

var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// SetLogger replaces the package logger used for progress and audit
// reporting.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// Options tune the run loop. The zero value runs silently with no audits.
type Options struct {
	// ProgressEvery logs a progress line, flushes the sink and observes
	// the context every N events. Zero disables all three until the end
	// of the stream.
	ProgressEvery uint64

	// AuditEvery cross-checks the book against its order index every N
	// events. Violations are logged and counted, never fatal. Zero
	// disables auditing.
	AuditEvery uint64
}

// Summary reports what a run consumed and produced.
type Summary struct {
	EventsRead       uint64
	EventsSkipped    uint64
	SnapshotsWritten uint64
	AuditFailures    uint64
	Duration         time.Duration

	Engine book.Stats
	Book   book.BookReport
	Read   mbo.ReadStats
}

// UpdateRatio is the fraction of events that produced a visible depth
// change, in percent.
func (s Summary) UpdateRatio() float64 {
	if s.EventsRead == 0 {
		return 0
	}
	return float64(s.SnapshotsWritten) / float64(s.EventsRead) * 100
}

// MarshalZerologObject logs the run totals as one structured object.
func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("events_read", s.EventsRead).
		Uint64("events_skipped", s.EventsSkipped).
		Uint64("snapshots_written", s.SnapshotsWritten).
		Float64("update_ratio_pct", s.UpdateRatio()).
		Dur("duration", s.Duration)
	if s.AuditFailures > 0 {
		e.Uint64("audit_failures", s.AuditFailures)
	}
}

// Run streams src through eng into sink until the source is exhausted or
// the context is cancelled. The first clear (R) event of a stream is
// skipped: inputs open with a session-start clear, and emitting it would
// write a spurious empty row before any state exists. Read and write
// failures are fatal; malformed rows are the source's concern and dropped
// events are the engine's.
//
// Run is single-threaded: event order is the only ordering the book has.
func Run(ctx context.Context, src EventSource, eng *book.Engine, sink SnapshotSink, opts Options) (Summary, error) {
	var sum Summary
	start := time.Now()
	firstClearSkipped := false

	for {
		ev, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return finish(sum, eng, src, start), fmt.Errorf("pipeline: read event: %w", err)
		}
		sum.EventsRead++

		if !firstClearSkipped && ev.Action == mbo.ActionClear {
			firstClearSkipped = true
			sum.EventsSkipped++
			logger.Info().
				Uint64("sequence", ev.Sequence).
				Msg("skipping session-start clear")
			continue
		}

		if snap := eng.Apply(ev); snap != nil {
			if err := sink.Write(snap); err != nil {
				return finish(sum, eng, src, start), fmt.Errorf("pipeline: write snapshot: %w", err)
			}
			sum.SnapshotsWritten++
		}

		if opts.ProgressEvery > 0 && sum.EventsRead%opts.ProgressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return finish(sum, eng, src, start), fmt.Errorf("pipeline: %w", err)
			}
			logProgress(&sum)
			if err := sink.Flush(); err != nil {
				return finish(sum, eng, src, start), fmt.Errorf("pipeline: flush: %w", err)
			}
		}
		if opts.AuditEvery > 0 && sum.EventsRead%opts.AuditEvery == 0 {
			if err := eng.CheckConsistency(); err != nil {
				sum.AuditFailures++
				logger.Error().
					Err(err).
					Uint64("events", sum.EventsRead).
					Msg("book audit failed")
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return finish(sum, eng, src, start), fmt.Errorf("pipeline: %w", err)
	}
	if err := sink.Flush(); err != nil {
		return finish(sum, eng, src, start), fmt.Errorf("pipeline: flush: %w", err)
	}
	return finish(sum, eng, src, start), nil
}

func logProgress(sum *Summary) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	logger.Info().
		Uint64("events", sum.EventsRead).
		Uint64("snapshots", sum.SnapshotsWritten).
		Uint64("heap_bytes", mem.HeapAlloc).
		Msg("progress")
}

// finish stamps the summary with the run duration and the final engine,
// book and source state.
func finish(sum Summary, eng *book.Engine, src EventSource, start time.Time) Summary {
	sum.Duration = time.Since(start)
	sum.Engine = eng.Stats()
	sum.Book = eng.Report()
	if rs, ok := src.(interface{ Stats() mbo.ReadStats }); ok {
		sum.Read = rs.Stats()
	}
	return sum
}
