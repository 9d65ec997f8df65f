// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

// Package tmdb provides the TMDB API client used for movie listings, detail
// lookups and genre-filtered discovery.
//
// All methods accept a context for cancellation and timeout, return typed
// errors from internal/provider, and are safe for concurrent use.
package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/reel-atlas/reelatlas/internal/config"
	"github.com/reel-atlas/reelatlas/internal/metrics"
	"github.com/reel-atlas/reelatlas/internal/provider"
)

// providerName labels this client in errors and metrics.
const providerName = "tmdb"

// API is the movie-data provider surface consumed by the rest of the
// service. Implemented by Client for production and by mocks in tests; the
// circuit breaker wrapper also satisfies it.
type API interface {
	// GetPopular returns the first page of popular movies.
	GetPopular(ctx context.Context) ([]Movie, error)

	// GetMovie returns one movie by TMDB id.
	GetMovie(ctx context.Context, id int) (*Movie, error)

	// DiscoverByGenres returns the first page of movies matching any of the
	// given genre ids, ranked by provider popularity. An empty id list
	// returns an empty slice without issuing a request.
	DiscoverByGenres(ctx context.Context, ids []int) ([]Movie, error)
}

// Client handles communication with the TMDB HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
}

// NewClient creates a TMDB client from configuration.
func NewClient(cfg *config.TMDBConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetPopular returns the first page of popular movies.
func (c *Client) GetPopular(ctx context.Context) ([]Movie, error) {
	var list movieList
	if err := c.get(ctx, "popular", "/movie/popular", url.Values{"page": {"1"}}, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// GetMovie returns one movie by TMDB id.
func (c *Client) GetMovie(ctx context.Context, id int) (*Movie, error) {
	var movie Movie
	if err := c.get(ctx, "movie", "/movie/"+strconv.Itoa(id), nil, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// DiscoverByGenres returns the first page of movies matching any of the
// given genre ids (OR semantics via TMDB's comma-joined with_genres filter),
// sorted by provider popularity.
func (c *Client) DiscoverByGenres(ctx context.Context, ids []int) ([]Movie, error) {
	if len(ids) == 0 {
		return []Movie{}, nil
	}

	params := url.Values{
		"with_genres": {joinGenreIDs(ids)},
		"sort_by":     {"popularity.desc"},
		"page":        {"1"},
	}

	var list movieList
	if err := c.get(ctx, "discover", "/discover/movie", params, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// joinGenreIDs builds TMDB's comma-joined multi-value filter, dropping
// repeated ids: a duplicate cannot change OR semantics.
func joinGenreIDs(ids []int) string {
	seen := make(map[int]bool, len(ids))
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

// get performs a GET request against the TMDB API, adding the api key and
// language, checking the HTTP status and decoding the JSON body into result.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, result interface{}) error {
	start := time.Now()
	defer metrics.ObserveProviderRequest(providerName, op, start)

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderRequestErrors.WithLabelValues(providerName, op, "transport").Inc()
		return &provider.TransportError{Provider: providerName, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderRequestErrors.WithLabelValues(providerName, op, "status").Inc()
		return &provider.StatusError{
			Provider:   providerName,
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       provider.ReadBodyForError(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		metrics.ProviderRequestErrors.WithLabelValues(providerName, op, "decode").Inc()
		return &provider.DecodeError{Provider: providerName, Op: op, Err: err}
	}

	return nil
}
