package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
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
	"leadscout/internal/web"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults apply when omitted)")
	listen := flag.String("listen", "", "Listen address override")
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
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	placesKey := os.Getenv("GOOGLE_API_KEY")
	crmKey := os.Getenv("BREVO_API_KEY")
	if placesKey == "" || crmKey == "" {
		logger.Error("GOOGLE_API_KEY and BREVO_API_KEY environment variables must be set")
		os.Exit(1)
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

	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		logger.Error("Export dir creation failed", "dir", cfg.Export.Dir, "err", err)
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

	factory := func(params web.RunParams) (*pipeline.Runner, source.Searcher, error) {
		location := params.Location
		if location == "" {
			location = cfg.Search.DefaultLocation
		}
		radiusMiles := params.RadiusMiles
		if radiusMiles <= 0 {
			radiusMiles = cfg.Search.DefaultRadiusMiles
		}

		searcher := source.NewPlacesSource(logger.With("source", "places"), placesKey, source.PlacesOptions{
			BaseURL:      cfg.Search.BaseURL,
			Location:     location,
			RadiusMeters: radiusMiles * 1609,
			MaxResults:   cfg.Search.MaxResults,
			PageDelay:    time.Duration(cfg.Search.PageDelayMs) * time.Millisecond,
		})

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
		return runner, searcher, nil
	}

	server := web.NewServer(logger, buf, factory, repo, cfg.Export.Dir, cfg.Categories)

	logger.Info("Listening", "addr", cfg.Server.Listen)
	if err := http.ListenAndServe(cfg.Server.Listen, server.Handler()); err != nil {
		logger.Error("Server failed", "err", err)
		os.Exit(1)
	}
}
