// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

// Package recommend implements the AI recommendation pipeline: a free-text
// prompt is sent to a generative-language model constrained to emit genre
// names, the names are normalized onto TMDB genre ids, and matching movies
// are fetched from the movie provider.
//
// The pipeline runs as a single logical task per request. Errors from the
// network-touching stages propagate to the caller unmodified except for the
// two documented graceful-degradation paths: the model resolver's fallback
// to a default identifier (see genai.ResolveActiveModel) and the
// normalizer's silent drop of unmapped genre names (see genres.MapToIDs).
package recommend

import (
	"context"
	"errors"
	"strings"

	"github.com/reel-atlas/reelatlas/internal/cache"
	"github.com/reel-atlas/reelatlas/internal/config"
	"github.com/reel-atlas/reelatlas/internal/genres"
	"github.com/reel-atlas/reelatlas/internal/logging"
	"github.com/reel-atlas/reelatlas/internal/metrics"
	"github.com/reel-atlas/reelatlas/internal/provider/genai"
	"github.com/reel-atlas/reelatlas/internal/provider/tmdb"
)

// modelCacheKey stores the resolved model identifier in the engine cache.
const modelCacheKey = "active-model"

var (
	// ErrEmptyPrompt is returned for prompts that are empty after trimming.
	ErrEmptyPrompt = errors.New("recommend: prompt is empty")

	// ErrNoGenresResolved is returned when the model's output maps to zero
	// taxonomy ids. This is the strict contract at the pipeline boundary:
	// the consumer gets a typed error to present instead of a silently
	// empty result page.
	ErrNoGenresResolved = errors.New("recommend: no genres resolved from prompt")
)

// Result is the outcome of one recommendation request.
type Result struct {
	// Movies is the aggregated movie list, ranked by the provider for the
	// combined strategy or concatenated in completion order for fan-out.
	Movies []tmdb.Movie `json:"movies"`

	// Genres is the raw genre names the model produced.
	Genres []string `json:"genres"`

	// GenreIDs is the ids the names resolved to, input order, duplicates
	// preserved.
	GenreIDs []int `json:"genre_ids"`

	// Model is the generation model identifier that served the request.
	Model string `json:"model"`
}

// Engine glues the extractor, normalizer and aggregator together.
type Engine struct {
	gen        genai.TextGenerator
	movies     tmdb.API
	cfg        config.RecommendConfig
	modelCache *cache.Cache
}

// NewEngine creates a recommendation engine. The cache holds the resolved
// model identifier for cfg.ModelCacheTTL; a TTL of 0 disables caching and
// re-resolves on every prompt.
func NewEngine(gen genai.TextGenerator, movies tmdb.API, cfg config.RecommendConfig) *Engine {
	var modelCache *cache.Cache
	if cfg.ModelCacheTTL > 0 {
		modelCache = cache.New(cfg.ModelCacheTTL)
	}
	return &Engine{
		gen:        gen,
		movies:     movies,
		cfg:        cfg,
		modelCache: modelCache,
	}
}

// Recommend runs the full pipeline for one prompt.
func (e *Engine) Recommend(ctx context.Context, prompt string) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	model, names, err := e.extractGenres(ctx, prompt)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	ids := genres.MapToIDs(names)
	metrics.RecommendGenresResolved.Observe(float64(len(ids)))
	if len(ids) == 0 {
		metrics.RecommendRequests.WithLabelValues("no_genres").Inc()
		logging.Debug().Strs("genres", names).Msg("Prompt resolved to no taxonomy ids")
		return nil, ErrNoGenresResolved
	}

	movies, err := e.fetchByGenres(ctx, ids)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.RecommendRequests.WithLabelValues("ok").Inc()
	logging.Info().
		Strs("genres", names).
		Ints("genre_ids", ids).
		Int("movies", len(movies)).
		Msg("Recommendation served")

	return &Result{
		Movies:   movies,
		Genres:   names,
		GenreIDs: ids,
		Model:    model,
	}, nil
}

// resolveModel returns the generation model identifier, consulting the TTL
// cache when enabled. The underlying resolver stays cache-free; each miss
// costs one list-models round-trip.
func (e *Engine) resolveModel(ctx context.Context) (string, error) {
	if e.modelCache != nil {
		if cached, ok := e.modelCache.Get(modelCacheKey); ok {
			metrics.ModelCacheHits.Inc()
			return cached.(string), nil
		}
		metrics.ModelCacheMisses.Inc()
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	model, err := e.gen.ResolveActiveModel(callCtx)
	if err != nil {
		return "", err
	}

	if e.modelCache != nil {
		e.modelCache.Set(modelCacheKey, model)
	}
	return model, nil
}

// callContext applies the per-external-call deadline from config.
func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.CallTimeout)
}

// InvalidateModel drops the cached model identifier, forcing the next
// request to re-resolve.
func (e *Engine) InvalidateModel() {
	if e.modelCache != nil {
		e.modelCache.Delete(modelCacheKey)
	}
}

// Close stops the model cache's background cleanup. Safe to call on an
// engine built without a cache.
func (e *Engine) Close() {
	if e.modelCache != nil {
		e.modelCache.Stop()
	}
}
