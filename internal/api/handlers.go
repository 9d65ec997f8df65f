// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

// Package api exposes the recommendation pipeline, movie browsing and
// favorites over HTTP with a Chi router. Every response uses the
// APIResponse envelope; provider failures map onto stable error codes so
// clients can distinguish upstream outages from bad input.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/reel-atlas/reelatlas/internal/favorites"
	"github.com/reel-atlas/reelatlas/internal/genres"
	"github.com/reel-atlas/reelatlas/internal/logging"
	"github.com/reel-atlas/reelatlas/internal/provider"
	"github.com/reel-atlas/reelatlas/internal/provider/genai"
	"github.com/reel-atlas/reelatlas/internal/provider/tmdb"
	"github.com/reel-atlas/reelatlas/internal/recommend"
)

// Recommender is the engine surface the handlers need. Narrow on purpose;
// tests substitute a fake.
type Recommender interface {
	Recommend(ctx context.Context, prompt string) (*recommend.Result, error)
}

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	engine    Recommender
	movies    tmdb.API
	favorites *favorites.Store
	validate  *validator.Validate
	startedAt time.Time
}

// NewHandler creates an API handler.
func NewHandler(engine Recommender, movies tmdb.API, favs *favorites.Store) *Handler {
	return &Handler{
		engine:    engine,
		movies:    movies,
		favorites: favs,
		validate:  validator.New(),
		startedAt: time.Now(),
	}
}

// recommendRequest is the POST /recommend body.
type recommendRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1,max=2000"`
}

// Recommend runs the AI pipeline for a free-text prompt.
//
// Method: POST
// Path: /api/v1/recommend
//
// Response:
//   - 200: Recommendations returned
//   - 400: Missing or oversized prompt
//   - 422: Prompt resolved to no known genres
//   - 502: Upstream provider failure
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request body must be JSON with a prompt field", err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Prompt must be between 1 and 2000 characters", err)
		return
	}

	start := time.Now()
	result, err := h.engine.Recommend(r.Context(), req.Prompt)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   result,
		Metadata: Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Count:       len(result.Movies),
		},
	})
}

// respondPipelineError maps pipeline errors onto HTTP statuses. Provider
// failures are the upstream's fault, not the client's, so they surface as
// 502 with a code naming the failing stage.
func (h *Handler) respondPipelineError(w http.ResponseWriter, err error) {
	var (
		transportErr  *provider.TransportError
		statusErr     *provider.StatusError
		decodeErr     *provider.DecodeError
		resolutionErr *genai.ResolutionError
		aggErr        *recommend.AggregationError
	)

	switch {
	case errors.Is(err, recommend.ErrEmptyPrompt):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Prompt must not be empty", nil)
	case errors.Is(err, recommend.ErrNoGenresResolved):
		respondError(w, http.StatusUnprocessableEntity, "NO_GENRES_RESOLVED",
			"The prompt did not map to any known movie genres; try rephrasing", nil)
	case errors.As(err, &resolutionErr):
		respondError(w, http.StatusBadGateway, "MODEL_RESOLUTION_ERROR",
			"No usable generation model is available", err)
	case errors.As(err, &aggErr):
		respondError(w, http.StatusBadGateway, "AGGREGATION_ERROR",
			"Fetching movies for a resolved genre failed", err)
	case errors.As(err, &statusErr):
		respondError(w, http.StatusBadGateway, "PROVIDER_STATUS_ERROR",
			"An upstream provider rejected the request", err)
	case errors.As(err, &decodeErr):
		respondError(w, http.StatusBadGateway, "PROVIDER_DECODE_ERROR",
			"An upstream provider returned an unreadable response", err)
	case errors.As(err, &transportErr):
		respondError(w, http.StatusBadGateway, "PROVIDER_TRANSPORT_ERROR",
			"An upstream provider could not be reached", err)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error", err)
	}
}

// Popular returns the provider's current popular movies.
//
// Method: GET
// Path: /api/v1/movies/popular
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	movies, err := h.movies.GetPopular(r.Context())
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   movies,
		Metadata: Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Count:       len(movies),
		},
	})
}

// Movie returns one movie by id.
//
// Method: GET
// Path: /api/v1/movies/{id}
func (h *Handler) Movie(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	movie, err := h.movies.GetMovie(r.Context(), id)
	if err != nil {
		var statusErr *provider.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found", nil)
			return
		}
		h.respondPipelineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   movie,
		Metadata: Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// Genres returns the genre taxonomy as name-to-id pairs.
//
// Method: GET
// Path: /api/v1/genres
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	names := genres.Names()
	taxonomy := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		id, _ := genres.IDFor(name)
		taxonomy = append(taxonomy, map[string]interface{}{"name": name, "id": id})
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   taxonomy,
		Metadata: Metadata{
			Timestamp: time.Now(),
			Count:     len(taxonomy),
		},
	})
}

// FavoritesList returns all saved movies ordered by id.
//
// Method: GET
// Path: /api/v1/favorites
func (h *Handler) FavoritesList(w http.ResponseWriter, r *http.Request) {
	movies, err := h.favorites.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to read favorites", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   movies,
		Metadata: Metadata{
			Timestamp: time.Now(),
			Count:     len(movies),
		},
	})
}

// FavoriteAdd saves a movie as a favorite. The snapshot is fetched from
// the provider so the stored entry is complete even when the client only
// knows the id.
//
// Method: PUT
// Path: /api/v1/favorites/{id}
func (h *Handler) FavoriteAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	movie, err := h.movies.GetMovie(r.Context(), id)
	if err != nil {
		var statusErr *provider.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found", nil)
			return
		}
		h.respondPipelineError(w, err)
		return
	}

	if err := h.favorites.Add(r.Context(), movie); err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to save favorite", err)
		return
	}

	respondJSON(w, http.StatusCreated, &APIResponse{
		Status:   "success",
		Data:     movie,
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// FavoriteToggle flips a movie's saved state and reports the result. The
// snapshot comes from the store when the movie is already saved, so
// un-saving never needs a provider round-trip; saving fetches it fresh.
//
// Method: POST
// Path: /api/v1/favorites/{id}/toggle
func (h *Handler) FavoriteToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	movie, err := h.favorites.Get(r.Context(), id)
	if errors.Is(err, favorites.ErrNotFound) {
		movie, err = h.movies.GetMovie(r.Context(), id)
		if err != nil {
			var statusErr *provider.StatusError
			if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
				respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found", nil)
				return
			}
			h.respondPipelineError(w, err)
			return
		}
	} else if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to read favorite", err)
		return
	}

	saved, err := h.favorites.Toggle(r.Context(), movie)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to toggle favorite", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"movie": movie,
			"saved": saved,
		},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// FavoriteRemove deletes a favorite. Removing an absent id succeeds.
//
// Method: DELETE
// Path: /api/v1/favorites/{id}
func (h *Handler) FavoriteRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.favorites.Remove(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to remove favorite", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     map[string]int{"id": id},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// Health reports service liveness, uptime and store reachability. A
// failing favorites count degrades the report instead of failing it.
//
// Method: GET
// Path: /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	}

	if count, err := h.favorites.Count(r.Context()); err == nil {
		data["favorites"] = count
	} else {
		data["status"] = "degraded"
		logging.Error().Err(err).Msg("Favorites store unreachable during health check")
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// pathID parses the {id} route parameter, responding 400 on garbage.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Movie id must be a positive integer", err)
		return 0, false
	}
	return id, true
}
