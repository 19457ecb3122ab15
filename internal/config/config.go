// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package config defines the application configuration and its koanf-based
// loading pipeline. Precedence: struct defaults, then YAML config file,
// then AIDJ_-prefixed environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the AIDJ server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Database DatabaseConfig `koanf:"database"`
	SimCache SimCacheConfig `koanf:"similarity_cache"`
	LLM      LLMConfig      `koanf:"llm"`
	Library  LibraryConfig  `koanf:"library"`
	Engine   EngineConfig   `koanf:"engine"`
	Fatigue  FatigueConfig  `koanf:"fatigue"`
	Compound CompoundConfig `koanf:"compound"`
	Taste    TasteConfig    `koanf:"taste"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// ReadTimeout bounds request reads.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds response writes. Must exceed the LLM generation
	// timeout or recommendation responses get cut off mid-flight.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" for tests.
	Path string `koanf:"path" validate:"required"`

	// MaxMemory caps DuckDB's memory usage (e.g. "512MB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads" validate:"min=0"`
}

// SimCacheConfig holds BadgerDB settings for the similarity-edge cache.
type SimCacheConfig struct {
	// Path is the badger data directory. Empty selects in-memory mode.
	Path string `koanf:"path"`

	// DefaultTTL applies to entries stored without an explicit expiry.
	DefaultTTL time.Duration `koanf:"default_ttl"`
}

// LLMConfig holds language-model client settings.
type LLMConfig struct {
	// URL is the generation endpoint.
	URL string `koanf:"url" validate:"required,url"`

	// APIKey is sent as a bearer token when non-empty.
	APIKey string `koanf:"api_key"`

	// DJContextTimeout bounds DJ-context generation calls.
	DJContextTimeout time.Duration `koanf:"dj_context_timeout"`

	// GenerateTimeout bounds general generation calls.
	GenerateTimeout time.Duration `koanf:"generate_timeout"`

	// RatePerMinute caps outbound generation calls. 0 = unlimited.
	RatePerMinute int `koanf:"rate_per_minute" validate:"min=0"`
}

// LibraryConfig holds music-library API client settings.
type LibraryConfig struct {
	// URL is the library API base URL.
	URL string `koanf:"url" validate:"required,url"`

	// APIKey authenticates against the library API.
	APIKey string `koanf:"api_key"`

	// Timeout bounds individual library calls.
	Timeout time.Duration `koanf:"timeout"`

	// PageSize is the ListAllTracks pagination size.
	PageSize int `koanf:"page_size" validate:"min=1,max=5000"`
}

// EngineConfig holds orchestrator settings.
type EngineConfig struct {
	// DefaultBatchSize is used when a request does not specify one.
	DefaultBatchSize int `koanf:"default_batch_size" validate:"min=1"`

	// MaxBatchSize caps requested batch sizes.
	MaxBatchSize int `koanf:"max_batch_size" validate:"min=1"`

	// RankThreshold is the minimum adjusted score for ranked suggestions.
	RankThreshold float64 `koanf:"rank_threshold" validate:"min=0,max=1"`

	// FallbackSampleMultiplier sizes the random fallback pool relative to
	// the remaining shortfall.
	FallbackSampleMultiplier int `koanf:"fallback_sample_multiplier" validate:"min=1"`

	// Seed seeds the matcher and fallback random source. 0 = fixed default.
	Seed int64 `koanf:"seed"`
}

// FatigueConfig holds artist-fatigue settings.
type FatigueConfig struct {
	// Cooldown is the per-artist cooldown refreshed on every recommendation.
	Cooldown time.Duration `koanf:"cooldown"`

	// MaxPerDay caps recommendations per artist per calendar day.
	MaxPerDay int `koanf:"max_per_day" validate:"min=1"`

	// MaxPerSession caps recommendations per artist per process lifetime.
	MaxPerSession int `koanf:"max_per_session" validate:"min=1"`

	// HistoryLookback is the rolling window for the history-backed variant.
	HistoryLookback time.Duration `koanf:"history_lookback"`

	// HistoryTrackThreshold is the distinct-track count that flags cooldown
	// in the history-backed variant.
	HistoryTrackThreshold int `koanf:"history_track_threshold" validate:"min=1"`

	// HistoryCooldownHours sets cooldown expiry to lastPlayed + this many hours.
	HistoryCooldownHours int `koanf:"history_cooldown_hours" validate:"min=1"`
}

// CompoundConfig holds compound-scorer settings.
type CompoundConfig struct {
	// LookbackDays is the listening-history window for Calculate.
	LookbackDays int `koanf:"lookback_days" validate:"min=1"`

	// DecayRate is the exponential recency decay constant per day.
	DecayRate float64 `koanf:"decay_rate" validate:"gt=0"`

	// ScoreFloor drops targets whose recency-weighted score is below it.
	ScoreFloor float64 `koanf:"score_floor" validate:"min=0"`

	// BoostCeiling normalizes recency-weighted scores into [0,1].
	BoostCeiling float64 `koanf:"boost_ceiling" validate:"gt=0"`

	// BlendWeight is the default boost weight in BlendRank.
	BlendWeight float64 `koanf:"blend_weight" validate:"min=0,max=1"`

	// RetentionDays purges compound rows older than this.
	RetentionDays int `koanf:"retention_days" validate:"min=1"`

	// MaxSourceGroups caps the number of (artist, title) source groups.
	MaxSourceGroups int `koanf:"max_source_groups" validate:"min=1"`

	// RecalcInterval drives the background recalculation service.
	RecalcInterval time.Duration `koanf:"recalc_interval"`
}

// TasteConfig holds taste-profile settings.
type TasteConfig struct {
	// RefreshInterval drives the background profile-refresh service.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// TopKeywords is the number of keywords kept per profile.
	TopKeywords int `koanf:"top_keywords" validate:"min=1"`
}

// Default returns a Config with production defaults. These are applied
// first, then overridden by the config file and environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3858,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path:      "/data/aidj.duckdb",
			MaxMemory: "512MB",
			Threads:   0,
		},
		SimCache: SimCacheConfig{
			Path:       "/data/aidj-simcache",
			DefaultTTL: 7 * 24 * time.Hour,
		},
		LLM: LLMConfig{
			URL:              "http://127.0.0.1:8080/v1/generate",
			DJContextTimeout: 10 * time.Second,
			GenerateTimeout:  20 * time.Second,
			RatePerMinute:    30,
		},
		Library: LibraryConfig{
			URL:      "http://127.0.0.1:4533",
			Timeout:  15 * time.Second,
			PageSize: 500,
		},
		Engine: EngineConfig{
			DefaultBatchSize:         5,
			MaxBatchSize:             25,
			RankThreshold:            0.3,
			FallbackSampleMultiplier: 4,
			Seed:                     0,
		},
		Fatigue: FatigueConfig{
			Cooldown:              2 * time.Hour,
			MaxPerDay:             3,
			MaxPerSession:         2,
			HistoryLookback:       72 * time.Hour,
			HistoryTrackThreshold: 8,
			HistoryCooldownHours:  24,
		},
		Compound: CompoundConfig{
			LookbackDays:    14,
			DecayRate:       0.15,
			ScoreFloor:      0.1,
			BoostCeiling:    5.0,
			BlendWeight:     0.3,
			RetentionDays:   30,
			MaxSourceGroups: 100,
			RecalcInterval:  6 * time.Hour,
		},
		Taste: TasteConfig{
			RefreshInterval: 30 * time.Minute,
			TopKeywords:     20,
		},
	}
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if c.Engine.DefaultBatchSize > c.Engine.MaxBatchSize {
		return fmt.Errorf("engine.default_batch_size (%d) exceeds engine.max_batch_size (%d)",
			c.Engine.DefaultBatchSize, c.Engine.MaxBatchSize)
	}

	if c.LLM.DJContextTimeout <= 0 || c.LLM.GenerateTimeout <= 0 {
		return fmt.Errorf("llm timeouts must be positive")
	}

	if c.Server.WriteTimeout <= c.LLM.GenerateTimeout {
		return fmt.Errorf("server.write_timeout (%s) must exceed llm.generate_timeout (%s)",
			c.Server.WriteTimeout, c.LLM.GenerateTimeout)
	}

	return nil
}
