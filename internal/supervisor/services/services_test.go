// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/aidj/internal/models"
	"github.com/tomtom215/aidj/internal/taste"
)

type fakeServer struct {
	mu        sync.Mutex
	started   chan struct{}
	stop      chan struct{}
	shutdowns int
}

func newFakeServer() *fakeServer {
	return &fakeServer{started: make(chan struct{}), stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	close(f.started)
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(_ context.Context) error {
	f.mu.Lock()
	f.shutdowns++
	f.mu.Unlock()
	close(f.stop)
	return nil
}

func TestHTTPService_GracefulShutdown(t *testing.T) {
	srv := newFakeServer()
	svc := NewHTTPService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-srv.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.shutdowns != 1 {
		t.Errorf("shutdowns = %d, want 1", srv.shutdowns)
	}
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]*models.TasteProfile
	upserts  int
}

func (m *memProfiles) Profile(_ context.Context, userID string) (*models.TasteProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[userID], nil
}

func (m *memProfiles) UpsertProfile(_ context.Context, p *models.TasteProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
	m.upserts++
	return nil
}

type staticUsers struct{ users []string }

func (s *staticUsers) ActiveUsers(_ context.Context, _ time.Time) ([]string, error) {
	return s.users, nil
}

type staticCatalog struct{ tracks []models.Track }

func (s *staticCatalog) AllTracks(_ context.Context) ([]models.Track, error) {
	return s.tracks, nil
}

func TestTasteService_SweepRebuildsMissingProfiles(t *testing.T) {
	profiles := &memProfiles{profiles: make(map[string]*models.TasteProfile)}
	catalog := &staticCatalog{tracks: []models.Track{
		{ID: "t1", Title: "Time", Artist: "Pink Floyd", Genres: []string{"rock"}},
	}}
	svc := NewTasteService(taste.NewBuilder(10), catalog, profiles,
		&staticUsers{users: []string{"u1", "u2"}}, time.Hour)

	svc.sweep(context.Background())

	profiles.mu.Lock()
	defer profiles.mu.Unlock()
	if profiles.upserts != 2 {
		t.Errorf("upserts = %d, want 2 (both users had no profile)", profiles.upserts)
	}
	if profiles.profiles["u1"].GenreDistribution["rock"] != 1.0 {
		t.Errorf("rebuilt profile wrong: %+v", profiles.profiles["u1"])
	}
}

func TestTasteService_SweepSkipsFreshProfiles(t *testing.T) {
	fresh := &models.TasteProfile{
		UserID:            "u1",
		GenreDistribution: map[string]float64{"rock": 1},
		TotalSongs:        1,
		LastAnalyzed:      time.Now(),
	}
	profiles := &memProfiles{profiles: map[string]*models.TasteProfile{"u1": fresh}}
	catalog := &staticCatalog{tracks: []models.Track{{ID: "t1", Title: "Time", Artist: "Pink Floyd"}}}
	svc := NewTasteService(taste.NewBuilder(10), catalog, profiles,
		&staticUsers{users: []string{"u1"}}, time.Hour)

	svc.sweep(context.Background())

	profiles.mu.Lock()
	defer profiles.mu.Unlock()
	if profiles.upserts != 0 {
		t.Errorf("upserts = %d, want 0 for a fresh profile", profiles.upserts)
	}
}

type fakeScorer struct {
	mu        sync.Mutex
	calcUsers []string
	purges    int
	calcErr   error
}

func (f *fakeScorer) Calculate(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calcErr != nil {
		return 0, f.calcErr
	}
	f.calcUsers = append(f.calcUsers, userID)
	return 1, nil
}

func (f *fakeScorer) Purge(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purges++
	return 0, nil
}

func TestCompoundService_RecalculatesAllUsersAndPurges(t *testing.T) {
	scorer := &fakeScorer{}
	svc := NewCompoundService(scorer, &staticUsers{users: []string{"u1", "u2"}}, time.Hour)

	svc.recalculate(context.Background())

	scorer.mu.Lock()
	defer scorer.mu.Unlock()
	if len(scorer.calcUsers) != 2 {
		t.Errorf("calculated for %v, want 2 users", scorer.calcUsers)
	}
	if scorer.purges != 1 {
		t.Errorf("purges = %d, want 1", scorer.purges)
	}
}

func TestCompoundService_UserFailureDoesNotStopPurge(t *testing.T) {
	scorer := &fakeScorer{calcErr: errors.New("boom")}
	svc := NewCompoundService(scorer, &staticUsers{users: []string{"u1"}}, time.Hour)

	svc.recalculate(context.Background())

	scorer.mu.Lock()
	defer scorer.mu.Unlock()
	if scorer.purges != 1 {
		t.Errorf("purges = %d, want 1 even when per-user calc fails", scorer.purges)
	}
}
