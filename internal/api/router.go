// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reel-atlas/reelatlas/internal/config"
	"github.com/reel-atlas/reelatlas/internal/logging"
	"github.com/reel-atlas/reelatlas/internal/metrics"
)

// NewRouter wires all routes with the global middleware stack.
func NewRouter(handler *Handler, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(
			cfg.RateLimitReqs,
			cfg.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		))
		r.Use(httpMetrics)

		r.Get("/health", handler.Health)
		r.Get("/genres", handler.Genres)
		r.Post("/recommend", handler.Recommend)

		r.Route("/movies", func(r chi.Router) {
			r.Get("/popular", handler.Popular)
			r.Get("/{id}", handler.Movie)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", handler.FavoritesList)
			r.Put("/{id}", handler.FavoriteAdd)
			r.Delete("/{id}", handler.FavoriteRemove)
			r.Post("/{id}/toggle", handler.FavoriteToggle)
		})
	})

	return r
}

// requestID attaches an X-Request-ID header, honoring a client-supplied one,
// and enriches the request log context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		logging.Debug().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request received")

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// httpMetrics records request duration labeled by method, route pattern
// and status. The Chi route pattern keeps label cardinality bounded.
func httpMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = r.URL.Path
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
