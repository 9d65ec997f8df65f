// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8480 {
		t.Errorf("default port = %d, want 8480", cfg.Server.Port)
	}
	if cfg.TMDB.URL != "https://api.themoviedb.org/3" {
		t.Errorf("default tmdb url = %q", cfg.TMDB.URL)
	}
	if cfg.GenAI.DefaultModel != "gemini-1.5-flash" {
		t.Errorf("default model = %q", cfg.GenAI.DefaultModel)
	}
	if cfg.GenAI.Temperature != 0.1 {
		t.Errorf("default temperature = %v, want 0.1", cfg.GenAI.Temperature)
	}
	if cfg.Recommend.Aggregation != "combined" {
		t.Errorf("default aggregation = %q, want combined", cfg.Recommend.Aggregation)
	}
	if cfg.Recommend.ModelCacheTTL != 10*time.Minute {
		t.Errorf("default model cache ttl = %v, want 10m", cfg.Recommend.ModelCacheTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "tmdb-secret")
	t.Setenv("GENAI_API_KEY", "genai-secret")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("RECOMMEND_AGGREGATION", "fanout")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.TMDB.APIKey != "tmdb-secret" {
		t.Errorf("tmdb api key = %q", cfg.TMDB.APIKey)
	}
	if cfg.GenAI.APIKey != "genai-secret" {
		t.Errorf("genai api key = %q", cfg.GenAI.APIKey)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Recommend.Aggregation != AggregationFanOut {
		t.Errorf("aggregation = %q, want fanout", cfg.Recommend.Aggregation)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfigFileLayeredUnderEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("tmdb:\n  api_key: from-file\ngenai:\n  api_key: from-file\nserver:\n  port: 7000\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7100") // env wins over file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.TMDB.APIKey != "from-file" {
		t.Errorf("tmdb api key = %q, want from-file", cfg.TMDB.APIKey)
	}
	if cfg.Server.Port != 7100 {
		t.Errorf("port = %d, want env override 7100", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing tmdb key", func(c *Config) { c.TMDB.APIKey = "" }},
		{"missing genai key", func(c *Config) { c.GenAI.APIKey = "" }},
		{"bad aggregation", func(c *Config) { c.Recommend.Aggregation = "scatter" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"temperature out of range", func(c *Config) { c.GenAI.Temperature = 3.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.TMDB.APIKey = "k"
			cfg.GenAI.APIKey = "k"
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TMDB_API_KEY", "tmdb.api_key"},
		{"HTTP_PORT", "server.port"},
		{"GENAI_DEFAULT_MODEL", "genai.default_model"},
		{"FAVORITES_PATH", "favorites.path"},
		{"UNKNOWN_THING", "unknown.thing"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
