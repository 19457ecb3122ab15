// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package library

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/aidj/internal/models"
)

type failingCatalog struct {
	calls int
	err   error
}

func (f *failingCatalog) AllTracks(_ context.Context) ([]models.Track, error) {
	f.calls++
	return nil, f.err
}

func (f *failingCatalog) Search(_ context.Context, _ string) ([]models.Track, error) {
	f.calls++
	return nil, f.err
}

func TestCircuitBreakerClient_OpensAfterRepeatedFailures(t *testing.T) {
	inner := &failingCatalog{err: errors.New("connection refused")}
	client := NewCircuitBreakerClient(inner)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := client.AllTracks(ctx); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if inner.calls != 10 {
		t.Fatalf("inner calls = %d, want 10", inner.calls)
	}

	_, err := client.AllTracks(ctx)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("open-circuit error = %v, want ErrUnavailable", err)
	}
	if inner.calls != 10 {
		t.Errorf("inner calls after open = %d, want 10", inner.calls)
	}
}

func TestCircuitBreakerClient_PassesThroughResults(t *testing.T) {
	inner := &staticCatalog{tracks: []models.Track{{ID: "t1", Title: "Time", Artist: "Pink Floyd"}}}
	client := NewCircuitBreakerClient(inner)

	tracks, err := client.Search(context.Background(), "time")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != "t1" {
		t.Errorf("Search() = %+v", tracks)
	}
}

type staticCatalog struct {
	tracks []models.Track
}

func (s *staticCatalog) AllTracks(_ context.Context) ([]models.Track, error) {
	return s.tracks, nil
}

func (s *staticCatalog) Search(_ context.Context, _ string) ([]models.Track, error) {
	return s.tracks, nil
}
