// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

package recommend

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reel-atlas/reelatlas/internal/logging"
	"github.com/reel-atlas/reelatlas/internal/provider"
)

// promptTemplate constrains the model to a bare JSON array of genre names.
// The example anchors the output shape; the trailing sentence suppresses
// the prose wrapper most instruction-tuned models otherwise add.
const promptTemplate = `Return ONLY a JSON array of movie genres based on: %q. Example: ["Drama", "Action"]. No explanations.`

// extractGenres asks the model for genre names matching the prompt and
// parses its reply strictly. Returns the model identifier used alongside
// the names so the engine can report it in the result.
func (e *Engine) extractGenres(ctx context.Context, prompt string) (string, []string, error) {
	model, err := e.resolveModel(ctx)
	if err != nil {
		return "", nil, err
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	raw, err := e.gen.GenerateText(callCtx, model, fmt.Sprintf(promptTemplate, prompt))
	if err != nil {
		return "", nil, err
	}

	names, err := parseGenreArray(raw)
	if err != nil {
		logging.Debug().Str("model", model).Str("raw", raw).Msg("Model output failed strict genre parse")
		return "", nil, err
	}
	return model, names, nil
}

// parseGenreArray strips markdown code fences and decodes the remainder as
// a JSON array of strings. Anything else, including prose around an
// otherwise valid array, is a decode error. There is no salvage pass;
// retrying the prompt is cheaper than guessing at malformed output.
func parseGenreArray(raw string) ([]string, error) {
	cleaned := stripCodeFences(raw)

	var names []string
	if err := json.Unmarshal([]byte(cleaned), &names); err != nil {
		return nil, &provider.DecodeError{
			Provider: "genai",
			Op:       "extract-genres",
			Err:      err,
		}
	}
	// JSON null unmarshals into a nil slice without error. That is not a
	// genre array; treating it as one would silently degrade into an empty
	// resolution.
	if names == nil {
		return nil, &provider.DecodeError{
			Provider: "genai",
			Op:       "extract-genres",
			Err:      fmt.Errorf("payload %q is not a JSON array", cleaned),
		}
	}
	return names, nil
}

// stripCodeFences removes the ```json / ``` wrappers models frequently add
// despite instructions, then trims whitespace.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
