// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package library

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/tomtom215/aidj/internal/config"
)

func TestClient_AllTracks_Paginates(t *testing.T) {
	const total = 7

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tracks":[`))
		first := true
		for i := offset; i < total && i < offset+limit; i++ {
			if !first {
				_, _ = w.Write([]byte(","))
			}
			first = false
			fmt.Fprintf(w, `{"id":"t%d","title":"Track %d","artist":"Artist %d"}`, i, i, i%3)
		}
		fmt.Fprintf(w, `],"total":%d}`, total)
	}))
	defer srv.Close()

	c := NewClient(&config.LibraryConfig{URL: srv.URL, PageSize: 3})

	tracks, err := c.AllTracks(context.Background())
	if err != nil {
		t.Fatalf("AllTracks() error: %v", err)
	}

	if len(tracks) != total {
		t.Fatalf("got %d tracks, want %d", len(tracks), total)
	}
	if tracks[0].ID != "t0" || tracks[6].ID != "t6" {
		t.Errorf("pagination order broken: first=%s last=%s", tracks[0].ID, tracks[6].ID)
	}
}

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "comfortably numb" {
			t.Errorf("query = %q, want %q", got, "comfortably numb")
		}
		_, _ = w.Write([]byte(`{"tracks":[{"id":"t1","title":"Comfortably Numb","artist":"Pink Floyd"}],"total":1}`))
	}))
	defer srv.Close()

	c := NewClient(&config.LibraryConfig{URL: srv.URL})

	tracks, err := c.Search(context.Background(), "comfortably numb")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Artist != "Pink Floyd" {
		t.Errorf("unexpected result: %+v", tracks)
	}
}

func TestClient_AllTracks_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(&config.LibraryConfig{URL: srv.URL})

	if _, err := c.AllTracks(context.Background()); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestClient_AuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"tracks":[],"total":0}`))
	}))
	defer srv.Close()

	c := NewClient(&config.LibraryConfig{URL: srv.URL, APIKey: "sekrit"})
	if _, err := c.AllTracks(context.Background()); err != nil {
		t.Fatalf("AllTracks() error: %v", err)
	}
}
