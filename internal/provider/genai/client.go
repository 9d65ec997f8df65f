// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

// Package genai provides the generative-language API client: model listing,
// active-model resolution and text generation.
//
// The client is a plain HTTP consumer of the provider's v1beta surface. All
// methods take a context, fail with typed errors from internal/provider, and
// are safe for concurrent use. Generation calls are throttled client-side
// with a token-bucket rate limiter.
package genai

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/reel-atlas/reelatlas/internal/config"
	"github.com/reel-atlas/reelatlas/internal/metrics"
	"github.com/reel-atlas/reelatlas/internal/provider"
)

// providerName labels this client in errors and metrics.
const providerName = "genai"

// generateMethod is the capability a model must list to be usable for text
// generation.
const generateMethod = "generateContent"

// TextGenerator is the generative-language surface consumed by the
// recommendation pipeline. Implemented by Client for production and by
// fakes in tests.
type TextGenerator interface {
	// ResolveActiveModel determines which model identifier to use for
	// generation. See Client.ResolveActiveModel for the fallback contract.
	ResolveActiveModel(ctx context.Context) (string, error)

	// GenerateText sends a prompt to the named model and returns the
	// generated text payload.
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// Client handles communication with the generative-language HTTP API.
type Client struct {
	baseURL      string
	apiKey       string
	defaultModel string
	temperature  float64
	httpClient   *http.Client
	limiter      *rate.Limiter
}

var _ TextGenerator = (*Client)(nil)

// NewClient creates a generative-language client from configuration.
func NewClient(cfg *config.GenAIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// No limit when throttling is disabled.
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute)
	}

	return &Client{
		baseURL:      trimTrailingSlash(cfg.URL),
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		temperature:  cfg.Temperature,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
	}
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// ListModels returns the provider's available models.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	const op = "list-models"
	start := time.Now()
	defer metrics.ObserveProviderRequest(providerName, op, start)

	reqURL := fmt.Sprintf("%s/v1beta/models?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderRequestErrors.WithLabelValues(providerName, op, "transport").Inc()
		return nil, &provider.TransportError{Provider: providerName, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderRequestErrors.WithLabelValues(providerName, op, "status").Inc()
		return nil, &provider.StatusError{
			Provider:   providerName,
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       provider.ReadBodyForError(resp.Body),
		}
	}

	var list modelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		metrics.ProviderRequestErrors.WithLabelValues(providerName, op, "decode").Inc()
		return nil, &provider.DecodeError{Provider: providerName, Op: op, Err: err}
	}

	return list.Models, nil
}

// GenerateText sends a prompt to the named model and returns the generated
// text extracted from the response envelope. Any missing field in the
// candidate/content/parts/text chain fails with a DecodeError; the result is
// never silently defaulted.
func (c *Client) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	const op = "generate"

	if err := c.limiter.Wait(ctx); err != nil {
		return "", &provider.TransportError{Provider: providerName, Op: op, Err: err}
	}

	start := time.Now()
	defer metrics.ObserveProviderRequest(providerName, op, start)

	body, err := json.Marshal(generateRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{Temperature: c.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode %s request: %w", op, err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderRequestErrors.WithLabelValues(providerName, op, "transport").Inc()
		return "", &provider.TransportError{Provider: providerName, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderRequestErrors.WithLabelValues(providerName, op, "status").Inc()
		return "", &provider.StatusError{
			Provider:   providerName,
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       provider.ReadBodyForError(resp.Body),
		}
	}

	var envelope generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.ProviderRequestErrors.WithLabelValues(providerName, op, "decode").Inc()
		return "", &provider.DecodeError{Provider: providerName, Op: op, Err: err}
	}

	return extractText(&envelope)
}

// extractText walks the candidate -> content -> parts -> text chain.
func extractText(envelope *generateResponse) (string, error) {
	const op = "generate"
	if len(envelope.Candidates) == 0 {
		return "", &provider.DecodeError{Provider: providerName, Op: op, Err: fmt.Errorf("response has no candidates")}
	}
	cand := envelope.Candidates[0]
	if cand.Content == nil {
		return "", &provider.DecodeError{Provider: providerName, Op: op, Err: fmt.Errorf("candidate has no content")}
	}
	if len(cand.Content.Parts) == 0 {
		return "", &provider.DecodeError{Provider: providerName, Op: op, Err: fmt.Errorf("content has no parts")}
	}
	text := cand.Content.Parts[0].Text
	if text == "" {
		return "", &provider.DecodeError{Provider: providerName, Op: op, Err: fmt.Errorf("part has no text")}
	}
	return text, nil
}
