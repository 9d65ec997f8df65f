// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/reel-atlas/reelatlas/internal/logging"
)

// modelFamilyMarker must appear in a model's name for it to be considered.
const modelFamilyMarker = "gemini"

// modelPathPrefix is stripped from the listing's fully-qualified names.
const modelPathPrefix = "models/"

// ResolutionError indicates the model listing succeeded at the transport
// level but was empty or unusable. A listing that merely contains no
// capability-matching model is NOT a ResolutionError; that case falls back
// to the configured default identifier instead.
type ResolutionError struct {
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("genai: model resolution failed: %s", e.Reason)
}

// ResolveActiveModel determines the model identifier to use for generation.
//
// Candidates must carry the recognized family marker in their name and list
// text generation among their capabilities; the first match in provider
// order wins. First-match is a deliberate simplification over ranking: the
// provider lists current models first and any text-capable family member is
// sufficient here.
//
// The failure contract splits two ways and the split is load-bearing:
//   - the listing call itself failed (transport, status, undecodable or
//     empty body): the error propagates, no fallback;
//   - the listing succeeded but no model matches the filter: the configured
//     default identifier is returned with no error.
func (c *Client) ResolveActiveModel(ctx context.Context) (string, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if len(models) == 0 {
		return "", &ResolutionError{Reason: "provider returned an empty model listing"}
	}

	for i := range models {
		m := &models[i]
		if strings.Contains(m.Name, modelFamilyMarker) && m.SupportsGeneration() {
			name := strings.TrimPrefix(m.Name, modelPathPrefix)
			logging.Debug().Str("model", name).Msg("Resolved active generation model")
			return name, nil
		}
	}

	logging.Warn().Str("fallback", c.defaultModel).Msg("No generation-capable model in listing, using default")
	return c.defaultModel, nil
}
