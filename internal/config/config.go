// Package config loads and validates leadscout configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"leadscout/internal/normalize"
)

// Configuration validation errors.
var (
	ErrNoCategories        = errors.New("at least one category is required")
	ErrInvalidRadius       = errors.New("search.default_radius_miles must be positive")
	ErrInvalidMaxResults   = errors.New("search.max_results must be at least 1")
	ErrInvalidFetchTimeout = errors.New("fetch.timeout_sec must be at least 1")
	ErrInvalidMaxPages     = errors.New("fetch.max_pages must be at least 1")
	ErrInvalidPace         = errors.New("pipeline.pace_ms must be non-negative")
	ErrInvalidMinResults   = errors.New("pipeline.min_results_before_stop must be non-negative")
	ErrInvalidPhonePolicy  = errors.New("normalize.phone_policy must be 'passthrough' or 'drop'")
	ErrInvalidListID       = errors.New("crm.email_list_id and crm.phone_list_id must be positive")
	ErrMissingExportDir    = errors.New("export.dir is required")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
)

type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Search     SearchConfig    `yaml:"search"`
	Fetch      FetchConfig     `yaml:"fetch"`
	Pipeline   PipelineConfig  `yaml:"pipeline"`
	Normalize  NormalizeConfig `yaml:"normalize"`
	CRM        CRMConfig       `yaml:"crm"`
	Export     ExportConfig    `yaml:"export"`
	Storage    StorageConfig   `yaml:"storage"`
	Logging    LoggingConfig   `yaml:"logging"`
	Categories []string        `yaml:"categories"`
}

type ServerConfig struct {
	Listen string `yaml:"listen"`
}

type SearchConfig struct {
	BaseURL            string `yaml:"base_url"`
	DefaultLocation    string `yaml:"default_location"`
	DefaultRadiusMiles int    `yaml:"default_radius_miles"`
	MaxResults         int    `yaml:"max_results"`
	PageDelayMs        int    `yaml:"page_delay_ms"`
}

type FetchConfig struct {
	TimeoutSec int `yaml:"timeout_sec"`
	MaxPages   int `yaml:"max_pages"`
	MaxBodyKb  int `yaml:"max_body_kb"`
}

type PipelineConfig struct {
	PaceMs               int `yaml:"pace_ms"`
	MinResultsBeforeStop int `yaml:"min_results_before_stop"`
}

type NormalizeConfig struct {
	PhonePolicy   string   `yaml:"phone_policy"`
	ExtraDenylist []string `yaml:"extra_denylist"`
}

type CRMConfig struct {
	BaseURL     string `yaml:"base_url"`
	EmailListID int    `yaml:"email_list_id"`
	PhoneListID int    `yaml:"phone_list_id"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type StorageConfig struct {
	DBPath       string `yaml:"db_path"`
	WarmSeenKeys bool   `yaml:"warm_seen_keys"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default categories mirror the trigger UI's selectable set.
var defaultCategories = []string{
	"Restaurants", "Coffee Shops", "Bars", "Gyms", "Salons",
	"HVAC companies", "Plumbers", "Landscaping", "Auto Repair",
	"Boutiques", "Insurance Agencies", "Event Venues", "Entertainment",
}

// Default returns a config with all defaults applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Listen: ":10000"},
		Search: SearchConfig{
			DefaultLocation:    "Richmond,VA",
			DefaultRadiusMiles: 5,
			MaxResults:         60,
			PageDelayMs:        2000,
		},
		Fetch: FetchConfig{
			TimeoutSec: 6,
			MaxPages:   4,
			MaxBodyKb:  512,
		},
		Pipeline: PipelineConfig{
			PaceMs:               1200,
			MinResultsBeforeStop: 0,
		},
		Normalize: NormalizeConfig{PhonePolicy: "passthrough"},
		CRM: CRMConfig{
			EmailListID: 3,
			PhoneListID: 5,
		},
		Export:     ExportConfig{Dir: "data/exports"},
		Storage:    StorageConfig{DBPath: "data/leadscout.duckdb"},
		Logging:    LoggingConfig{Level: "info"},
		Categories: defaultCategories,
	}
}

// Load reads a YAML config file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return ErrNoCategories
	}
	if c.Search.DefaultRadiusMiles <= 0 {
		return ErrInvalidRadius
	}
	if c.Search.MaxResults < 1 {
		return ErrInvalidMaxResults
	}
	if c.Fetch.TimeoutSec < 1 {
		return ErrInvalidFetchTimeout
	}
	if c.Fetch.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	if c.Pipeline.PaceMs < 0 {
		return ErrInvalidPace
	}
	if c.Pipeline.MinResultsBeforeStop < 0 {
		return ErrInvalidMinResults
	}
	if _, ok := normalize.ParsePhonePolicy(c.Normalize.PhonePolicy); !ok {
		return ErrInvalidPhonePolicy
	}
	if c.CRM.EmailListID <= 0 || c.CRM.PhoneListID <= 0 {
		return ErrInvalidListID
	}
	if c.Export.Dir == "" {
		return ErrMissingExportDir
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}

// PhonePolicy returns the parsed phone normalization policy.
func (c *Config) PhonePolicy() normalize.PhonePolicy {
	p, _ := normalize.ParsePhonePolicy(c.Normalize.PhonePolicy)
	return p
}
