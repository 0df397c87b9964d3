// Package pipeline wires the run together: event source, bounded queue,
// transaction engine and report sink, in that strictly linear order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"payengine/internal/config"
	"payengine/internal/engine"
	"payengine/internal/ingest"
	"payengine/internal/report"
)

// ErrInputUnavailable marks an input that could not be opened at all. It is
// the only fatal condition: the run aborts before any event is processed
// and no report is emitted.
var ErrInputUnavailable = errors.New("input unavailable")

// Result summarizes one completed run.
type Result struct {
	Delivered int
	Applied   int
	Unknown   int
	Rejected  map[engine.ErrorKind]int
	Malformed int
	Accounts  int
	BytesRead int64
	Duration  time.Duration
}

// Run drives one full pass over the input: the source and the engine run
// as two tasks joined only by the bounded events channel, and once the
// queue is closed and drained the report is emitted exactly once.
//
// inSize is the total input size in bytes when known, 0 otherwise; it only
// feeds progress stats.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, in io.Reader, inSize int64, out io.Writer) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	counted := ingest.WrapInput(in, inSize)
	events := make(chan engine.Event, cfg.Queue.Size)

	src := ingest.NewSource(counted, events, logger)
	eng := engine.New(engine.Config{
		AccountCapacity: cfg.Engine.AccountCapacity,
		LedgerCapacity:  cfg.Engine.LedgerCapacity,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := src.Run(gctx); err != nil {
			if gctx.Err() != nil {
				return err
			}
			// A read failure mid-stream truncates the input rather than
			// voiding the run; the source has closed the channel, the
			// engine drains what arrived, and the report still goes out.
			logger.Error("input truncated, continuing with events read so far", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		eng.Run(events)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	accounts := eng.Snapshots()
	if err := report.Write(out, accounts); err != nil {
		return nil, fmt.Errorf("emit report: %w", err)
	}

	if cfg.Ingest.RejectsFile != "" && len(src.Rejects()) > 0 {
		if err := ingest.WriteRejects(cfg.Ingest.RejectsFile, src.Rejects()); err != nil {
			// The run already succeeded; losing the rejects file is not
			// worth failing it over.
			logger.Error("failed to write rejects file",
				"path", cfg.Ingest.RejectsFile, "error", err)
		} else {
			logger.Info("rejects file written",
				"path", cfg.Ingest.RejectsFile, "rows", len(src.Rejects()))
		}
	}

	stats := eng.Stats()
	res := &Result{
		Delivered: src.Delivered(),
		Applied:   stats.Applied,
		Unknown:   stats.Unknown,
		Rejected:  stats.Rejected,
		Malformed: len(src.Rejects()),
		Accounts:  len(accounts),
		BytesRead: counted.BytesRead,
		Duration:  time.Since(start),
	}

	logger.Info("run complete",
		"delivered", res.Delivered,
		"applied", res.Applied,
		"rejected", stats.RejectedTotal(),
		"unknown", res.Unknown,
		"malformed", res.Malformed,
		"accounts", res.Accounts,
		"bytes_read", res.BytesRead,
		"duration", res.Duration,
	)
	return res, nil
}

// RunFile opens path and runs the pipeline against it. Open and stat
// failures, and files over the configured size cap, map to
// ErrInputUnavailable: nothing is processed and no report is emitted.
func RunFile(ctx context.Context, cfg *config.Config, logger *slog.Logger, path string, out io.Writer) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputUnavailable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputUnavailable, err)
	}
	if info.Size() > cfg.Ingest.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, cap is %d",
			ErrInputUnavailable, path, info.Size(), cfg.Ingest.MaxFileSize)
	}

	return Run(ctx, cfg, logger, f, info.Size(), out)
}
