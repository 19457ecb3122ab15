// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in priority
// order. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/aidj/config.yaml",
	"/etc/aidj/config.yml",
}

// ConfigPathEnvVar overrides the config file search path when set.
const ConfigPathEnvVar = "AIDJ_CONFIG_PATH"

// envPrefix is the prefix for environment overrides, e.g.
// AIDJ_ENGINE_RANK_THRESHOLD=0.25 maps to engine.rank_threshold.
const envPrefix = "AIDJ_"

// Load builds the configuration: defaults, then the config file (if any),
// then environment variables. A missing config file is not an error; a
// malformed one is.
func Load() (*Config, error) {
	return LoadFrom(resolveConfigPath())
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envMappings maps AIDJ_-stripped, lowercased environment variable names to
// koanf config paths. Underscores appear in both section and key names, so
// the mapping is explicit rather than derived.
var envMappings = map[string]string{
	"server_host":             "server.host",
	"server_port":             "server.port",
	"log_level":               "logging.level",
	"log_format":              "logging.format",
	"database_path":           "database.path",
	"database_max_memory":     "database.max_memory",
	"simcache_path":           "similarity_cache.path",
	"llm_url":                 "llm.url",
	"llm_api_key":             "llm.api_key",
	"llm_rate_per_minute":     "llm.rate_per_minute",
	"library_url":             "library.url",
	"library_api_key":         "library.api_key",
	"engine_batch_size":       "engine.default_batch_size",
	"engine_rank_threshold":   "engine.rank_threshold",
	"engine_seed":             "engine.seed",
	"fatigue_cooldown":        "fatigue.cooldown",
	"fatigue_max_per_day":     "fatigue.max_per_day",
	"fatigue_max_per_session": "fatigue.max_per_session",
	"compound_lookback_days":  "compound.lookback_days",
	"compound_blend_weight":   "compound.blend_weight",
	"taste_refresh_interval":  "taste.refresh_interval",
}

// envTransform maps an environment variable name to its config path.
// Unknown variables are dropped.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if path, ok := envMappings[key]; ok {
		return path
	}
	return ""
}

// resolveConfigPath returns the first existing config file, honoring the
// env override. Empty when no file exists.
func resolveConfigPath() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}

	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
