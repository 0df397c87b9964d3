// Command payengine processes a CSV of ledger events (deposits,
// withdrawals, disputes, resolves, chargebacks) and prints the final
// per-client account balances as CSV.
//
// Usage:
//
//	payengine [-o output.csv] input.csv
//
// The report goes to stdout unless -o is given; logs go to stderr so the
// two never mix. Configuration is environment-driven (see internal/config),
// with .env support for local runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"payengine/internal/config"
	"payengine/internal/logging"
	"payengine/internal/pipeline"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger := logging.NewRunLogger()

	outPath := flag.String("o", "", "write the report to this file instead of stdout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-o output.csv] input.csv\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Error("failed to create output file", "path", *outPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	// SIGINT/SIGTERM cancel the run; a cancelled run emits no report.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("processing started",
		"input", inputPath,
		"queue_size", cfg.Queue.Size,
	)

	result, err := pipeline.RunFile(ctx, cfg, logger, inputPath, out)
	if err != nil {
		logger.Error("run aborted", "error", err)
		os.Exit(1)
	}

	logger.Info("processing finished",
		"accounts", result.Accounts,
		"applied", result.Applied,
		"duration", result.Duration,
	)
}
