// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

package genai

// ModelInfo describes one model from the provider's listing endpoint.
type ModelInfo struct {
	// Name is the fully-qualified model path, e.g. "models/gemini-1.5-flash".
	Name string `json:"name"`

	// SupportedGenerationMethods lists the capabilities of the model,
	// e.g. "generateContent", "embedContent".
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// SupportsGeneration reports whether the model can generate text content.
func (m *ModelInfo) SupportsGeneration() bool {
	for _, method := range m.SupportedGenerationMethods {
		if method == generateMethod {
			return true
		}
	}
	return false
}

// modelList is the envelope of the list-models endpoint.
type modelList struct {
	Models []ModelInfo `json:"models"`
}

// generateRequest is the body of a generateContent call.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

// generateResponse is the nested candidate/content/parts/text envelope the
// provider wraps generated text in. Pointer fields distinguish a missing
// link in the chain from an empty one.
type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content *content `json:"content"`
}
