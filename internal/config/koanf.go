// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

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
	"/etc/reelatlas/config.yaml",
	"/etc/reelatlas/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
//
// Environment variables map onto config paths by lowercasing and splitting
// the first underscore: TMDB_API_KEY -> tmdb.api_key, HTTP_PORT ->
// server.port (via the explicit mapping table).
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
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

// findConfigFile returns the first config file that exists, or "".
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

// envMappings resolves environment variable names that do not follow the
// mechanical SECTION_KEY split, plus the documented operator-facing names.
var envMappings = map[string]string{
	"http_port":                  "server.port",
	"http_host":                  "server.host",
	"tmdb_url":                   "tmdb.url",
	"tmdb_api_key":               "tmdb.api_key",
	"tmdb_language":              "tmdb.language",
	"genai_url":                  "genai.url",
	"genai_api_key":              "genai.api_key",
	"genai_default_model":        "genai.default_model",
	"genai_temperature":          "genai.temperature",
	"genai_requests_per_minute":  "genai.requests_per_minute",
	"recommend_aggregation":      "recommend.aggregation",
	"recommend_model_cache_ttl":  "recommend.model_cache_ttl",
	"recommend_call_timeout":     "recommend.call_timeout",
	"favorites_path":             "favorites.path",
	"log_level":                  "logging.level",
	"log_format":                 "logging.format",
	"log_caller":                 "logging.caller",
	"server_shutdown_timeout":    "server.shutdown_timeout",
	"server_rate_limit_reqs":     "server.rate_limit_reqs",
	"server_rate_limit_window":   "server.rate_limit_window",
	"server_cors_origins":        "server.cors_origins",
	"server_timeout":             "server.timeout",
}

// envTransform converts an environment variable name to a koanf path.
// Unmapped variables fall back to replacing the first underscore with a dot;
// names that resolve to no known section are ignored by Unmarshal.
func envTransform(key string) string {
	key = strings.ToLower(key)
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return strings.Replace(key, "_", ".", 1)
}
