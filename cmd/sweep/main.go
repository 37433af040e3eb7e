package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"leadscout/internal/config"
	"leadscout/internal/crm"
	"leadscout/internal/extract"
	"leadscout/internal/fetch"
	"leadscout/internal/normalize"
	"leadscout/internal/pipeline"
	"leadscout/internal/runlog"
	"leadscout/internal/source"
	"leadscout/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults apply when omitted)")
	location := flag.String("loc", "", "ZIP or city (defaults to the configured location)")
	radius := flag.Int("radius", 0, "Search radius in miles")
	categoriesRaw := flag.String("categories", "", "Categories to sweep (comma-separated; defaults to the configured set)")
	csvPath := flag.String("csv", "", "Read listings from a CSV file instead of the search API")
	outDir := flag.String("outdir", "", "Output directory override for the CSV export")
	debug := flag.Bool("debug", false, "Enable debug logs")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("Config load failed", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *outDir != "" {
		cfg.Export.Dir = *outDir
	}

	crmKey := os.Getenv("BREVO_API_KEY")
	if crmKey == "" {
		logger.Error("BREVO_API_KEY environment variable not set")
		os.Exit(1)
	}

	var searcher source.Searcher
	if *csvPath != "" {
		searcher = source.NewCSVSource(*csvPath)
	} else {
		placesKey := os.Getenv("GOOGLE_API_KEY")
		if placesKey == "" {
			logger.Error("GOOGLE_API_KEY environment variable not set")
			os.Exit(1)
		}
		loc := *location
		if loc == "" {
			loc = cfg.Search.DefaultLocation
		}
		miles := *radius
		if miles <= 0 {
			miles = cfg.Search.DefaultRadiusMiles
		}
		searcher = source.NewPlacesSource(logger.With("source", "places"), placesKey, source.PlacesOptions{
			BaseURL:      cfg.Search.BaseURL,
			Location:     loc,
			RadiusMeters: miles * 1609,
			MaxResults:   cfg.Search.MaxResults,
			PageDelay:    time.Duration(cfg.Search.PageDelayMs) * time.Millisecond,
		})
	}

	categories := cfg.Categories
	if *categoriesRaw != "" {
		categories = nil
		for _, c := range strings.Split(*categoriesRaw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}
	}

	repo, err := storage.NewDuckDBRepo(cfg.Storage.DBPath, logger)
	if err != nil {
		logger.Error("DB connection failed", "err", err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.Init(ctx); err != nil {
		logger.Error("DB init failed", "err", err)
		os.Exit(1)
	}

	buf := runlog.New(0)
	fetcher := fetch.New(logger.With("component", "fetch"), fetch.Options{
		Timeout:     time.Duration(cfg.Fetch.TimeoutSec) * time.Second,
		MaxPages:    cfg.Fetch.MaxPages,
		MaxBodySize: cfg.Fetch.MaxBodyKb * 1024,
	})
	extractor := extract.New(normalize.NewFilter(cfg.Normalize.ExtraDenylist))
	uploader := crm.NewBrevoClient(logger.With("component", "crm"), crmKey, cfg.CRM.BaseURL, 0)

	opts := pipeline.Options{
		Pace:        time.Duration(cfg.Pipeline.PaceMs) * time.Millisecond,
		MinResults:  cfg.Pipeline.MinResultsBeforeStop,
		EmailListID: cfg.CRM.EmailListID,
		PhoneListID: cfg.CRM.PhoneListID,
		PhonePolicy: cfg.PhonePolicy(),
	}
	if cfg.Storage.WarmSeenKeys {
		keys, err := repo.SeenKeys(ctx)
		if err != nil {
			logger.Warn("Could not warm dedup set", "err", err)
		}
		opts.WarmKeys = keys
	}

	runner := pipeline.NewRunner(logger, buf, fetcher, extractor, uploader, repo, opts)

	stats, err := runner.Run(ctx, searcher, categories, nil)
	if err != nil {
		logger.Error("Run failed", "err", err)
		os.Exit(1)
	}

	logger.Info("Sweep complete",
		"found", stats.Found,
		"uploaded", stats.Uploaded,
		"duplicates", stats.Duplicates,
		"no_contact", stats.NoContact,
		"errors", stats.Errors)

	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		logger.Error("Export dir creation failed", "err", err)
		os.Exit(1)
	}
	outPath := filepath.Join(cfg.Export.Dir, fmt.Sprintf("leads_%s.csv", runner.RunID()))
	if err := repo.ExportCSV(ctx, outPath, runner.RunID()); err != nil {
		logger.Error("Export failed", "err", err)
		os.Exit(1)
	}
	logger.Info("Export successful", "path", outPath)
}
