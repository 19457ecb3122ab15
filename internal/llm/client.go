// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package llm implements the HTTP client for the generative language-model
// service that produces free-text song suggestions.
//
// Every call carries a caller-supplied timeout and converts transport
// timeouts into ErrTimeout so the orchestrator can map them onto its
// failure taxonomy instead of leaking net errors.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/aidj/internal/config"
	"github.com/tomtom215/aidj/internal/metrics"
	"github.com/tomtom215/aidj/internal/models"
)

// ErrTimeout marks a generation call that exceeded its deadline. Callers
// distinguish it from other transport failures with errors.Is.
var ErrTimeout = errors.New("llm: generation timed out")

// ErrRateLimited marks a call rejected by the local rate limiter before it
// reached the network.
var ErrRateLimited = errors.New("llm: local rate limit exceeded")

// GenerateRequest is a single generation call.
type GenerateRequest struct {
	// Prompt is the assembled context text.
	Prompt string `json:"prompt"`

	// UserID scopes the generation to a user. Optional.
	UserID string `json:"user_id,omitempty"`

	// ExcludeArtists lists artists the model should avoid.
	ExcludeArtists []string `json:"exclude_artists,omitempty"`
}

// GenerateResponse is the language model's reply.
type GenerateResponse struct {
	// Recommendations is the suggested songs, possibly empty.
	Recommendations []models.RawSuggestion `json:"recommendations"`
}

// Generator is the interface the orchestrator consumes. Implemented by
// Client and by test fakes.
type Generator interface {
	// Generate produces suggestions for the given prompt within timeout.
	Generate(ctx context.Context, req GenerateRequest, timeout time.Duration) (*GenerateResponse, error)
}

// Client is the production HTTP implementation of Generator.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a language-model client from configuration. The
// http.Client carries no timeout of its own; per-call deadlines come from
// the context so each call site controls its bound (5-30s).
func NewClient(cfg *config.LLMConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60.0), cfg.RatePerMinute)
	}

	return &Client{
		url:        strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{},
		limiter:    limiter,
	}
}

// Generate calls the generation endpoint with the given timeout.
// Deadline overruns return an error wrapping ErrTimeout; a 2xx reply with
// an empty recommendation list is returned as-is, not as an error.
func (c *Client) Generate(ctx context.Context, req GenerateRequest, timeout time.Duration) (*GenerateResponse, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, ErrRateLimited
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.doGenerate(callCtx, req)
	elapsed := time.Since(start).Seconds()

	switch {
	case err == nil:
		metrics.LLMRequestDuration.WithLabelValues("success").Observe(elapsed)
		return resp, nil
	case errors.Is(err, ErrTimeout):
		metrics.LLMRequestDuration.WithLabelValues("timeout").Observe(elapsed)
		return nil, err
	default:
		metrics.LLMRequestDuration.WithLabelValues("error").Observe(elapsed)
		return nil, err
	}
}

// doGenerate performs the HTTP round trip.
func (c *Client) doGenerate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("generate request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("generate returned status %d: %s", httpResp.StatusCode, string(msg))
	}

	var resp GenerateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}

	return &resp, nil
}

// isTimeout reports whether err represents a deadline overrun, either from
// the context or from the transport.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// Ensure Client implements Generator.
var _ Generator = (*Client)(nil)
