// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aidj/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(&config.LLMConfig{URL: url})
}

func TestClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Prompt == "" {
			t.Error("empty prompt forwarded to model")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"recommendations":[{"song":"Pink Floyd - Time","explanation":"classic"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	resp, err := c.Generate(context.Background(), GenerateRequest{Prompt: "play something"}, 5*time.Second)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if len(resp.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(resp.Recommendations))
	}
	if resp.Recommendations[0].SongText != "Pink Floyd - Time" {
		t.Errorf("song = %q", resp.Recommendations[0].SongText)
	}
}

func TestClient_Generate_EmptyListIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"recommendations":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	resp, err := c.Generate(context.Background(), GenerateRequest{Prompt: "p"}, 5*time.Second)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(resp.Recommendations) != 0 {
		t.Errorf("got %d recommendations, want 0", len(resp.Recommendations))
	}
}

func TestClient_Generate_TimeoutIsDistinguishable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Generate(context.Background(), GenerateRequest{Prompt: "p"}, 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("error %v is not ErrTimeout", err)
	}
}

func TestClient_Generate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Generate(context.Background(), GenerateRequest{Prompt: "p"}, 5*time.Second)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("server error must not be classified as timeout")
	}
}

func TestClient_Generate_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"recommendations":[]}`))
	}))
	defer srv.Close()

	c := NewClient(&config.LLMConfig{URL: srv.URL, RatePerMinute: 1})

	if _, err := c.Generate(context.Background(), GenerateRequest{Prompt: "p"}, time.Second); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}

	_, err := c.Generate(context.Background(), GenerateRequest{Prompt: "p"}, time.Second)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("second call error = %v, want ErrRateLimited", err)
	}
}
