// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

// Package provider defines the error taxonomy shared by the external API
// clients. Every network-touching call fails with exactly one of these types
// so callers can map failures without string matching:
//
//   - TransportError: the request never produced an HTTP response
//   - StatusError: the provider answered with a non-2xx status
//   - DecodeError: the response body does not match the expected schema
//
// Errors propagate to the caller unmodified; there is no local recovery or
// silent empty-result substitution at this layer.
package provider

import (
	"fmt"
	"io"
)

// maxErrorBodySize bounds how much of a response body is read for error
// reporting, preventing unbounded allocation on large error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// TransportError indicates a network or connectivity failure. It is not
// retried locally.
type TransportError struct {
	Provider string
	Op       string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s request failed: %v", e.Provider, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError indicates a non-2xx HTTP status from a provider. Body carries
// an excerpt of the response for diagnostics.
type StatusError struct {
	Provider   string
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d: %s", e.Provider, e.Op, e.StatusCode, e.Body)
}

// DecodeError indicates a response body that does not match the expected
// schema. It is surfaced, never silently defaulted.
type DecodeError struct {
	Provider string
	Op       string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: failed to decode %s response: %v", e.Provider, e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ReadBodyForError reads a response body for error reporting, bounded at
// 64KB. Returns a placeholder if reading fails and marks truncation when the
// limit is hit.
func ReadBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	if len(body) == maxErrorBodySize {
		return string(body) + "\n... (truncated)"
	}
	return string(body)
}
