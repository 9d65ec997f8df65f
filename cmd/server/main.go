// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

// Package main is the entry point for the ReelAtlas server.
//
// ReelAtlas turns a free-text movie wish into recommendations: a
// generative-language model maps the prompt onto movie genres, the genres
// resolve to TMDB taxonomy ids, and matching movies come back from the
// TMDB discover API. Saved favorites persist in an embedded BadgerDB.
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered defaults, config file, environment
//  2. Logging: zerolog global logger
//  3. Favorites store: embedded BadgerDB
//  4. Providers: TMDB client behind a circuit breaker, GenAI client
//  5. Recommendation engine: extraction, normalization, aggregation
//  6. HTTP server: Chi router under a suture supervision tree
//
// Required environment:
//   - TMDB_API_KEY: TMDB v3 API key
//   - GENAI_API_KEY: generative-language API key
//
// The server handles graceful shutdown on SIGINT and SIGTERM, draining
// in-flight requests within server.shutdown_timeout.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/reel-atlas/reelatlas/internal/api"
	"github.com/reel-atlas/reelatlas/internal/config"
	"github.com/reel-atlas/reelatlas/internal/favorites"
	"github.com/reel-atlas/reelatlas/internal/logging"
	"github.com/reel-atlas/reelatlas/internal/provider/genai"
	"github.com/reel-atlas/reelatlas/internal/provider/tmdb"
	"github.com/reel-atlas/reelatlas/internal/recommend"
	"github.com/reel-atlas/reelatlas/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("aggregation", cfg.Recommend.Aggregation).
		Str("default_model", cfg.GenAI.DefaultModel).
		Msg("Starting ReelAtlas")

	store, err := favorites.Open(cfg.Favorites.Path)
	if err != nil {
		return fmt.Errorf("open favorites: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close favorites store")
		}
	}()

	movies := tmdb.NewCircuitBreakerClient(tmdb.NewClient(&cfg.TMDB))
	gen := genai.NewCircuitBreakerClient(genai.NewClient(&cfg.GenAI))
	engine := recommend.NewEngine(gen, movies, cfg.Recommend)
	defer engine.Close()

	handler := api.NewHandler(engine, movies, store)
	router := api.NewRouter(handler, cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.Add(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logging.Info().Msg("Shutdown complete")
	return nil
}
