// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

// Package simcache provides the BadgerDB-backed cache of track similarity
// edges. Edges are written by the similarity collaborator and read by the
// compound scorer; the engine never computes similarity itself.
package simcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/aidj/internal/config"
	"github.com/tomtom215/aidj/internal/metrics"
	"github.com/tomtom215/aidj/internal/models"
)

// ErrNotFound is returned when no edges exist for a source track.
var ErrNotFound = errors.New("simcache: no edges for source")

const edgeKeyPrefix = "sim:"

// Store is a BadgerDB-backed similarity-edge cache with per-entry TTL.
type Store struct {
	db         *badger.DB
	defaultTTL time.Duration
}

// Open opens the cache at the configured path. An empty path selects
// Badger's in-memory mode, used by tests.
func Open(cfg *config.SimCacheConfig) (*Store, error) {
	var opts badger.Options
	if cfg.Path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open similarity cache: %w", err)
	}

	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &Store{db: db, defaultTTL: ttl}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// edgeKey builds the storage key for a source (artist, title). Keys are
// case-insensitive so collaborator writes and engine reads agree.
func edgeKey(artist, title string) []byte {
	return []byte(edgeKeyPrefix + strings.ToLower(artist) + "|" + strings.ToLower(title))
}

// Put stores the edge set for a source track, replacing any previous set.
// Entries expire via Badger TTL and are additionally guarded by each
// edge's ExpiresAt on read.
func (s *Store) Put(ctx context.Context, artist, title string, edges []models.TrackSimilarityEdge) error {
	data, err := json.Marshal(edges)
	if err != nil {
		return fmt.Errorf("marshal similarity edges: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(edgeKey(artist, title), data).WithTTL(s.defaultTTL)
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set similarity edges: %w", err)
		}
		return nil
	})
}

// Edges returns the unexpired edges for a source track. ErrNotFound when
// the source has no cached edges; an empty, non-error result means every
// cached edge has individually expired.
func (s *Store) Edges(ctx context.Context, artist, title string) ([]models.TrackSimilarityEdge, error) {
	var edges []models.TrackSimilarityEdge

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(edgeKey(artist, title))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get similarity edges: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &edges)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.SimCacheLookups.WithLabelValues("miss").Inc()
		}
		return nil, err
	}

	now := time.Now()
	live := edges[:0]
	for _, e := range edges {
		if !e.Expired(now) {
			live = append(live, e)
		}
	}

	metrics.SimCacheLookups.WithLabelValues("hit").Inc()
	return live, nil
}

// Delete removes the edge set for a source track. Missing keys are not an
// error.
func (s *Store) Delete(ctx context.Context, artist, title string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(edgeKey(artist, title)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete similarity edges: %w", err)
		}
		return nil
	})
}

// Count returns the number of cached source tracks.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(edgeKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}
