// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package recommend

import "fmt"

// FailureReason classifies terminal engine failures. Ranking degradation
// is not here: it is recovered locally and never aborts a request.
type FailureReason string

const (
	// FailureNoRecommendations: the language model replied with an empty
	// suggestion list.
	FailureNoRecommendations FailureReason = "NO_RECOMMENDATIONS"

	// FailureTimeout: the language-model call exceeded its deadline or
	// failed in transport.
	FailureTimeout FailureReason = "TIMEOUT"

	// FailureNoLibraryMatch: no suggestion resolved to a library track,
	// even after the random fallback.
	FailureNoLibraryMatch FailureReason = "NO_LIBRARY_MATCH"
)

// EngineError is the typed error surfaced on total failure. Partial
// success is not an error; callers only see EngineError when zero tracks
// could be produced.
type EngineError struct {
	Reason FailureReason
	Err    error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recommendation failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("recommendation failed (%s)", e.Reason)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *EngineError) Unwrap() error {
	return e.Err
}

func failure(reason FailureReason, err error) *EngineError {
	return &EngineError{Reason: reason, Err: err}
}
