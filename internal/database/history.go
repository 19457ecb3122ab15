// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/aidj/internal/models"
)

// RecentPlays returns the user's listening history since the given time,
// newest first. Read-only: history rows are written by the playback
// tracker, not by the engine.
func (db *DB) RecentPlays(ctx context.Context, userID string, since time.Time) ([]models.PlayEvent, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, artist, title, COALESCE(track_id, ''), played_at
		FROM play_history
		WHERE user_id = ? AND played_at >= ?
		ORDER BY played_at DESC`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("query recent plays: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.PlayEvent
	for rows.Next() {
		var e models.PlayEvent
		if err := rows.Scan(&e.UserID, &e.Artist, &e.Title, &e.TrackID, &e.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan play event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// ArtistPlays returns the user's plays for one artist within the window,
// newest first. Used by the history-backed fatigue tracker.
func (db *DB) ArtistPlays(ctx context.Context, userID, artist string, since time.Time) ([]models.PlayEvent, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, artist, title, COALESCE(track_id, ''), played_at
		FROM play_history
		WHERE user_id = ? AND lower(artist) = lower(?) AND played_at >= ?
		ORDER BY played_at DESC`,
		userID, artist, since)
	if err != nil {
		return nil, fmt.Errorf("query artist plays: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.PlayEvent
	for rows.Next() {
		var e models.PlayEvent
		if err := rows.Scan(&e.UserID, &e.Artist, &e.Title, &e.TrackID, &e.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan play event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// ActiveUsers returns users with at least one play since the given time.
// Drives the background taste-refresh and compound-recalculation services.
func (db *DB) ActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM play_history WHERE played_at >= ?`, since)
	if err != nil {
		return nil, fmt.Errorf("query active users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// InsertPlayEvents bulk-inserts history rows. Used by the import path and
// by tests; the engine itself never writes history.
func (db *DB) InsertPlayEvents(ctx context.Context, events []models.PlayEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert plays: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO play_history (user_id, artist, title, track_id, played_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert plays: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range events {
		var trackID sql.NullString
		if e.TrackID != "" {
			trackID = sql.NullString{String: e.TrackID, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, e.UserID, e.Artist, e.Title, trackID, e.PlayedAt); err != nil {
			return fmt.Errorf("insert play event: %w", err)
		}
	}

	return tx.Commit()
}
