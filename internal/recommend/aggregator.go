// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

package recommend

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/reel-atlas/reelatlas/internal/config"
	"github.com/reel-atlas/reelatlas/internal/provider/tmdb"
)

// AggregationError wraps a failed per-genre fetch in the fan-out strategy,
// carrying the genre id whose request failed.
type AggregationError struct {
	GenreID int
	Err     error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("recommend: aggregating genre %d: %v", e.GenreID, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

// fetchByGenres dispatches to the configured aggregation strategy.
//
// Combined is the default: one discover call with all ids in the filter,
// letting the provider rank across the whole genre set. Fan-out issues one
// request per id concurrently and concatenates; it fails fast on the first
// error and surfaces duplicates when a movie carries several of the
// requested genres. It exists for providers whose filter semantics are AND
// rather than OR.
func (e *Engine) fetchByGenres(ctx context.Context, ids []int) ([]tmdb.Movie, error) {
	if e.cfg.Aggregation == config.AggregationFanOut {
		return e.fanOut(ctx, ids)
	}
	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	return e.movies.DiscoverByGenres(callCtx, ids)
}

// fanOut fetches each genre concurrently. The first branch error cancels
// the rest; partial results are discarded. Concatenation order follows
// completion, not input, so callers must not rely on ordering.
func (e *Engine) fanOut(ctx context.Context, ids []int) ([]tmdb.Movie, error) {
	if len(ids) == 0 {
		return []tmdb.Movie{}, nil
	}

	g, groupCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	combined := make([]tmdb.Movie, 0, len(ids)*20)

	for _, id := range ids {
		g.Go(func() error {
			callCtx, cancel := e.callContext(groupCtx)
			defer cancel()

			movies, err := e.movies.DiscoverByGenres(callCtx, []int{id})
			if err != nil {
				return &AggregationError{GenreID: id, Err: err}
			}

			mu.Lock()
			combined = append(combined, movies...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return combined, nil
}
