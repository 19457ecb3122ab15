// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestDefault_EngineTuning(t *testing.T) {
	cfg := Default()

	if cfg.LLM.DJContextTimeout != 10*time.Second {
		t.Errorf("DJContextTimeout = %s, want 10s", cfg.LLM.DJContextTimeout)
	}
	if cfg.LLM.GenerateTimeout != 20*time.Second {
		t.Errorf("GenerateTimeout = %s, want 20s", cfg.LLM.GenerateTimeout)
	}
	if cfg.Engine.RankThreshold != 0.3 {
		t.Errorf("RankThreshold = %f, want 0.3", cfg.Engine.RankThreshold)
	}
	if cfg.Compound.LookbackDays != 14 {
		t.Errorf("LookbackDays = %d, want 14", cfg.Compound.LookbackDays)
	}
	if cfg.Compound.DecayRate != 0.15 {
		t.Errorf("DecayRate = %f, want 0.15", cfg.Compound.DecayRate)
	}
	if cfg.Compound.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", cfg.Compound.RetentionDays)
	}
	if cfg.Fatigue.HistoryLookback != 72*time.Hour {
		t.Errorf("HistoryLookback = %s, want 72h", cfg.Fatigue.HistoryLookback)
	}
	if cfg.Fatigue.HistoryTrackThreshold != 8 {
		t.Errorf("HistoryTrackThreshold = %d, want 8", cfg.Fatigue.HistoryTrackThreshold)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"batch size over max", func(c *Config) { c.Engine.DefaultBatchSize = 50 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"missing database path", func(c *Config) { c.Database.Path = "" }},
		{"write timeout under llm timeout", func(c *Config) { c.Server.WriteTimeout = 5 * time.Second }},
		{"zero decay rate", func(c *Config) { c.Compound.DecayRate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadFrom_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
engine:
  default_batch_size: 8
fatigue:
  max_per_day: 5
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.Engine.DefaultBatchSize != 8 {
		t.Errorf("DefaultBatchSize = %d, want 8", cfg.Engine.DefaultBatchSize)
	}
	if cfg.Fatigue.MaxPerDay != 5 {
		t.Errorf("MaxPerDay = %d, want 5", cfg.Fatigue.MaxPerDay)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	// Untouched values keep their defaults.
	if cfg.Compound.BlendWeight != 0.3 {
		t.Errorf("BlendWeight = %f, want default 0.3", cfg.Compound.BlendWeight)
	}
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	t.Setenv("AIDJ_ENGINE_RANK_THRESHOLD", "0.25")
	t.Setenv("AIDJ_LOG_LEVEL", "warn")

	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.Engine.RankThreshold != 0.25 {
		t.Errorf("RankThreshold = %f, want 0.25", cfg.Engine.RankThreshold)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AIDJ_LLM_URL", "llm.url"},
		{"AIDJ_ENGINE_RANK_THRESHOLD", "engine.rank_threshold"},
		{"AIDJ_UNKNOWN_KNOB", ""},
	}

	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
