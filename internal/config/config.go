// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

// Package config provides layered configuration for ReelAtlas using Koanf v2.
//
// Precedence, lowest to highest: built-in defaults, optional YAML config
// file, environment variables. See Load for the environment variable naming.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	GenAI     GenAIConfig     `koanf:"genai"`
	Recommend RecommendConfig `koanf:"recommend"`
	Favorites FavoritesConfig `koanf:"favorites"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// TMDBConfig holds movie-data provider settings.
type TMDBConfig struct {
	URL      string        `koanf:"url" validate:"required,url"`
	APIKey   string        `koanf:"api_key" validate:"required"`
	Language string        `koanf:"language"`
	Timeout  time.Duration `koanf:"timeout"`
}

// GenAIConfig holds generative-language provider settings.
type GenAIConfig struct {
	URL          string        `koanf:"url" validate:"required,url"`
	APIKey       string        `koanf:"api_key" validate:"required"`
	DefaultModel string        `koanf:"default_model" validate:"required"`
	Temperature  float64       `koanf:"temperature" validate:"min=0,max=2"`
	Timeout      time.Duration `koanf:"timeout"`

	// RequestsPerMinute throttles generation calls client-side.
	// 0 disables throttling.
	RequestsPerMinute int `koanf:"requests_per_minute" validate:"min=0"`
}

// RecommendConfig holds recommendation pipeline settings.
type RecommendConfig struct {
	// Aggregation selects how resolved genre ids are turned into one movie
	// list: "combined" issues a single multi-genre discover request ranked
	// by the provider, "fanout" issues one concurrent request per genre and
	// concatenates. Combined is the canonical strategy; fanout is kept for
	// deployments that want per-genre result blending.
	Aggregation string `koanf:"aggregation" validate:"oneof=combined fanout"`

	// ModelCacheTTL is how long a resolved model identifier is reused before
	// re-resolving. 0 disables caching and re-resolves on every prompt.
	ModelCacheTTL time.Duration `koanf:"model_cache_ttl" validate:"min=0"`

	// CallTimeout is the per-external-call deadline applied by the engine.
	CallTimeout time.Duration `koanf:"call_timeout" validate:"min=0"`
}

// FavoritesConfig holds favorites store settings.
type FavoritesConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// AggregationFanOut is the RecommendConfig.Aggregation value selecting the
// concurrent per-genre strategy.
const AggregationFanOut = "fanout"

// defaultConfig returns a Config with all defaults applied. These are
// overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8480,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		TMDB: TMDBConfig{
			URL:      "https://api.themoviedb.org/3",
			APIKey:   "",
			Language: "en-US",
			Timeout:  15 * time.Second,
		},
		GenAI: GenAIConfig{
			URL:               "https://generativelanguage.googleapis.com",
			APIKey:            "",
			DefaultModel:      "gemini-1.5-flash",
			Temperature:       0.1, // near-deterministic to reduce output variance
			Timeout:           30 * time.Second,
			RequestsPerMinute: 30,
		},
		Recommend: RecommendConfig{
			Aggregation:   "combined",
			ModelCacheTTL: 10 * time.Minute,
			CallTimeout:   15 * time.Second,
		},
		Favorites: FavoritesConfig{
			Path: "/data/favorites",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

var validate = validator.New()

// Validate checks the configuration for invalid or missing values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid config value for %s (rule %q)", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
