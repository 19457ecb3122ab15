// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package library implements the read-only client for the music-library
// API: paginated track listing and free-text search. The library is
// eventually consistent; callers treat results as a snapshot.
package library

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aidj/internal/config"
	"github.com/tomtom215/aidj/internal/metrics"
	"github.com/tomtom215/aidj/internal/models"
)

// Catalog is the interface the engine and the taste builder consume.
type Catalog interface {
	// AllTracks returns the full library. Paginates internally.
	AllTracks(ctx context.Context) ([]models.Track, error)

	// Search returns tracks matching the free-text query.
	Search(ctx context.Context, query string) ([]models.Track, error)
}

// Client is the production HTTP implementation of Catalog.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
}

// trackPage is the wire format of a track listing page.
type trackPage struct {
	Tracks []models.Track `json:"tracks"`
	Total  int            `json:"total"`
}

// NewClient creates a library API client from configuration.
func NewClient(cfg *config.LibraryConfig) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 500
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// AllTracks pages through /api/tracks until a short page signals the end.
func (c *Client) AllTracks(ctx context.Context) ([]models.Track, error) {
	start := time.Now()
	defer func() {
		metrics.LibraryRequestDuration.WithLabelValues("list").Observe(time.Since(start).Seconds())
	}()

	var all []models.Track

	for offset := 0; ; offset += c.pageSize {
		page, err := c.listPage(ctx, offset, c.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list tracks at offset %d: %w", offset, err)
		}

		all = append(all, page.Tracks...)

		if len(page.Tracks) < c.pageSize {
			return all, nil
		}
	}
}

// Search queries /api/tracks/search.
func (c *Client) Search(ctx context.Context, query string) ([]models.Track, error) {
	start := time.Now()
	defer func() {
		metrics.LibraryRequestDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	}()

	endpoint := c.baseURL + "/api/tracks/search?q=" + url.QueryEscape(query)

	var page trackPage
	if err := c.getJSON(ctx, endpoint, &page); err != nil {
		return nil, fmt.Errorf("search tracks: %w", err)
	}

	return page.Tracks, nil
}

// listPage fetches one page of the track listing.
func (c *Client) listPage(ctx context.Context, offset, limit int) (*trackPage, error) {
	endpoint := c.baseURL + "/api/tracks?offset=" + strconv.Itoa(offset) + "&limit=" + strconv.Itoa(limit)

	var page trackPage
	if err := c.getJSON(ctx, endpoint, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("library returned status %d: %s", resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// Ensure Client implements Catalog.
var _ Catalog = (*Client)(nil)
