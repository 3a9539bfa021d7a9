// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, first hit wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tagquest/config.yaml",
	"/etc/tagquest/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "TAGQUEST_CONFIG"

// envPrefix namespaces TagQuest's environment variables.
const envPrefix = "TAGQUEST_"

// Default returns the built-in configuration. These values are applied
// first, then overridden by the config file and environment variables.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8710,
			Timeout:     30 * time.Second,
			Environment: "development",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Path:      "/data/tagquest.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = runtime.NumCPU()
		},
		Auth: AuthConfig{
			Enabled:         false,
			JWTSecret:       "",
			SessionTimeout:  24 * time.Hour,
			AdminUsername:   "",
			AdminPassword:   "",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Engine: EngineConfig{
			MajorityThreshold: 50,
			MinVendorProducts: 2,
			ExcludedVendors:   []string{"uDiscover Music", "Various Artists"},
		},
		Taxonomy: TaxonomyConfig{
			Genres: []string{
				"Alternative & Indie Rock",
				"Classic Pop",
				"Classic Rock",
				"Classical",
				"Country",
				"Electronic & Dance",
				"Hip-Hop",
				"Holiday",
				"Jazz",
				"K-Pop / J-Pop",
				"Latin",
				"Metal / Punk / Hard Rock",
				"Modern Pop",
				"Modern Rock",
				"R&B / Soul / Funk",
				"Reggae / World / International",
				"Soundtracks",
			},
			Decades: []string{"50C", "60C", "70C", "80C", "90C", "2000c", "2010c", "2020c"},
		},
		Discogs: DiscogsConfig{
			Enabled:           false,
			Token:             "",
			BaseURL:           "https://api.discogs.com",
			UserAgent:         "TagQuest/1.0",
			Timeout:           10 * time.Second,
			CacheTTL:          24 * time.Hour,
			RequestsPerSecond: 1,
		},
		Deezer: DeezerConfig{
			Enabled:           true,
			BaseURL:           "https://api.deezer.com",
			Timeout:           10 * time.Second,
			CacheTTL:          24 * time.Hour,
			RequestsPerSecond: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from layered sources: defaults, then an
// optional YAML file, then TAGQUEST_-prefixed environment variables.
//
// Environment variable names map to config paths by stripping the prefix and
// splitting on double underscores: TAGQUEST_SERVER__PORT -> server.port,
// TAGQUEST_ENGINE__MAJORITY_THRESHOLD -> engine.majority_threshold.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps TAGQUEST_SECTION__FIELD_NAME to section.field_name.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// sliceConfigPaths are the paths env vars supply as comma-separated strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"engine.excluded_vendors",
	"taxonomy.genres",
	"taxonomy.decades",
}

// processSliceFields splits comma-separated env values into slices for the
// known slice paths. YAML-sourced values are already slices and pass through.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}
