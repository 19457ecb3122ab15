// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aidj/internal/models"
)

// Profile loads a user's taste profile. Returns (nil, nil) when the user
// has no profile yet; callers treat a nil profile as stale.
func (db *DB) Profile(ctx context.Context, userID string) (*models.TasteProfile, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT user_id, genre_distribution, top_keywords, total_songs, last_analyzed, refresh_needed
		FROM taste_profiles WHERE user_id = ?`, userID)

	var (
		p          models.TasteProfile
		genresJSON string
		kwJSON     string
	)
	err := row.Scan(&p.UserID, &genresJSON, &kwJSON, &p.TotalSongs, &p.LastAnalyzed, &p.RefreshNeeded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load taste profile: %w", err)
	}

	if err := json.Unmarshal([]byte(genresJSON), &p.GenreDistribution); err != nil {
		return nil, fmt.Errorf("decode genre distribution: %w", err)
	}
	if err := json.Unmarshal([]byte(kwJSON), &p.TopKeywords); err != nil {
		return nil, fmt.Errorf("decode top keywords: %w", err)
	}

	return &p, nil
}

// UpsertProfile replaces the user's taste profile wholesale and clears the
// refresh flag.
func (db *DB) UpsertProfile(ctx context.Context, p *models.TasteProfile) error {
	genresJSON, err := json.Marshal(p.GenreDistribution)
	if err != nil {
		return fmt.Errorf("encode genre distribution: %w", err)
	}
	kwJSON, err := json.Marshal(p.TopKeywords)
	if err != nil {
		return fmt.Errorf("encode top keywords: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO taste_profiles (user_id, genre_distribution, top_keywords, total_songs, last_analyzed, refresh_needed)
		VALUES (?, ?, ?, ?, ?, FALSE)
		ON CONFLICT (user_id) DO UPDATE SET
			genre_distribution = excluded.genre_distribution,
			top_keywords       = excluded.top_keywords,
			total_songs        = excluded.total_songs,
			last_analyzed      = excluded.last_analyzed,
			refresh_needed     = FALSE`,
		p.UserID, string(genresJSON), string(kwJSON), p.TotalSongs, p.LastAnalyzed)
	if err != nil {
		return fmt.Errorf("upsert taste profile: %w", err)
	}

	return nil
}

// MarkProfileStale flags the profile for rebuild on the next refresh pass.
// No-op when the user has no profile.
func (db *DB) MarkProfileStale(ctx context.Context, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE taste_profiles SET refresh_needed = TRUE WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("mark profile stale: %w", err)
	}
	return nil
}
