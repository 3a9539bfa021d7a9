// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

// Package config defines TagQuest's layered configuration: built-in
// defaults, an optional YAML file, and TAGQUEST_-prefixed environment
// variables, in increasing order of precedence.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the TagQuest server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Engine   EngineConfig   `koanf:"engine"`
	Taxonomy TaxonomyConfig `koanf:"taxonomy"`
	Discogs  DiscogsConfig  `koanf:"discogs"`
	Deezer   DeezerConfig   `koanf:"deezer"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
	CORSOrigins []string      `koanf:"cors_origins"`
}

// DatabaseConfig holds the embedded DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// AuthConfig holds operator authentication and rate limiting settings.
// TagQuest is single-tenant; there is one operator account.
type AuthConfig struct {
	Enabled         bool          `koanf:"enabled"`
	JWTSecret       string        `koanf:"jwt_secret"`
	SessionTimeout  time.Duration `koanf:"session_timeout"`
	AdminUsername   string        `koanf:"admin_username"`
	AdminPassword   string        `koanf:"admin_password"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// EngineConfig holds the question generation policy.
type EngineConfig struct {
	MajorityThreshold int      `koanf:"majority_threshold"`
	MinVendorProducts int      `koanf:"min_vendor_products"`
	ExcludedVendors   []string `koanf:"excluded_vendors"`
}

// TaxonomyConfig lists the valid tag vocabulary. The engine itself accepts
// any value; the taxonomy drives audit validation and the explorer UI.
type TaxonomyConfig struct {
	Genres  []string `koanf:"genres"`
	Decades []string `koanf:"decades"`
}

// DiscogsConfig holds the Discogs verification client settings.
type DiscogsConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Token             string        `koanf:"token"`
	BaseURL           string        `koanf:"base_url"`
	UserAgent         string        `koanf:"user_agent"`
	Timeout           time.Duration `koanf:"timeout"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// DeezerConfig holds the Deezer verification client settings. Deezer needs
// no credentials.
type DeezerConfig struct {
	Enabled           bool          `koanf:"enabled"`
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks cross-field constraints that koanf cannot express.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Engine.MajorityThreshold < 0 || c.Engine.MajorityThreshold > 100 {
		return fmt.Errorf("engine.majority_threshold must be 0-100, got %d", c.Engine.MajorityThreshold)
	}
	if c.Engine.MinVendorProducts < 1 {
		return fmt.Errorf("engine.min_vendor_products must be >= 1, got %d", c.Engine.MinVendorProducts)
	}
	if c.Auth.Enabled {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("auth.jwt_secret must be at least 32 bytes, got %d", len(c.Auth.JWTSecret))
		}
		if c.Auth.AdminUsername == "" || c.Auth.AdminPassword == "" {
			return fmt.Errorf("auth.admin_username and auth.admin_password are required when auth is enabled")
		}
	}
	if c.Discogs.Enabled && c.Discogs.Token == "" {
		return fmt.Errorf("discogs.token is required when discogs is enabled")
	}
	if c.IsProduction() && c.Auth.Enabled && c.Auth.AdminPassword == "admin" {
		return fmt.Errorf("auth.admin_password must be changed from the default in production")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
