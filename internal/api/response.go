// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package api provides the thin HTTP surface over the recommendation
// engine: one recommendation endpoint, a status endpoint, and health
// probes. All responses share one envelope.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aidj/internal/logging"
)

// APIResponse is the response envelope for every endpoint.
type APIResponse struct {
	// Success indicates whether the request was handled.
	Success bool `json:"success"`

	// Data is the payload, null on error.
	Data interface{} `json:"data,omitempty"`

	// Error carries error details, null on success.
	Error *APIError `json:"error,omitempty"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// APIError is a machine-readable error body.
type APIError struct {
	// Code is a stable error code, e.g. "TIMEOUT".
	Code string `json:"code"`

	// Message is human-readable.
	Message string `json:"message"`
}

// respondJSON writes the envelope with the given status.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{Success: status < 400, Data: data, Timestamp: time.Now().UTC()}
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		logging.Error().Err(err).Msg("encode response failed")
	}
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Success:   false,
		Error:     &APIError{Code: code, Message: message},
		Timestamp: time.Now().UTC(),
	}
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		logging.Error().Err(err).Msg("encode error response failed")
	}
}
