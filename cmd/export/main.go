package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"leadscout/internal/storage"
)

func main() {
	dbPath := flag.String("db", "data/leadscout.duckdb", "Path to DuckDB file")
	outPath := flag.String("out", "data/exports/contacts.csv", "Output CSV path")
	runID := flag.String("run", "", "Restrict to one run ID (empty exports everything)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	repo, err := storage.NewDuckDBRepo(*dbPath, logger)
	if err != nil {
		logger.Error("DB connection failed", "err", err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		logger.Error("Output dir creation failed", "err", err)
		os.Exit(1)
	}

	if err := repo.ExportCSV(ctx, *outPath, *runID); err != nil {
		logger.Error("Export failed", "err", err)
		os.Exit(1)
	}

	logger.Info("Export complete", "output", *outPath)
}
