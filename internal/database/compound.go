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
	"strings"
	"time"

	"github.com/tomtom215/aidj/internal/models"
)

// UpsertCompoundScores replaces the given (user, track) rows in one
// transaction. RecencyWeightedScore is clamped to never exceed Score;
// decay weights are at most 1 so a larger value means a scorer bug
// upstream, not a valid state.
func (db *DB) UpsertCompoundScores(ctx context.Context, scores []models.CompoundScore) error {
	if len(scores) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert compound scores: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO compound_scores (user_id, track_id, score, source_count, recency_weighted_score, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, track_id) DO UPDATE SET
			score                  = excluded.score,
			source_count           = excluded.source_count,
			recency_weighted_score = excluded.recency_weighted_score,
			calculated_at          = excluded.calculated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert compound scores: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range scores {
		weighted := s.RecencyWeightedScore
		if weighted > s.Score {
			weighted = s.Score
		}
		if _, err := stmt.ExecContext(ctx,
			s.UserID, s.TrackID, s.Score, s.SourceCount, weighted, s.CalculatedAt); err != nil {
			return fmt.Errorf("upsert compound score for track %s: %w", s.TrackID, err)
		}
	}

	return tx.Commit()
}

// CompoundScoreFor loads a single (user, track) row. Returns (nil, nil)
// when no row exists.
func (db *DB) CompoundScoreFor(ctx context.Context, userID, trackID string) (*models.CompoundScore, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT user_id, track_id, score, source_count, recency_weighted_score, calculated_at
		FROM compound_scores WHERE user_id = ? AND track_id = ?`, userID, trackID)

	var s models.CompoundScore
	err := row.Scan(&s.UserID, &s.TrackID, &s.Score, &s.SourceCount, &s.RecencyWeightedScore, &s.CalculatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load compound score: %w", err)
	}

	return &s, nil
}

// CompoundScoresFor loads the rows for the given track IDs in one query.
// Tracks without a row are simply absent from the result map.
func (db *DB) CompoundScoresFor(ctx context.Context, userID string, trackIDs []string) (map[string]models.CompoundScore, error) {
	result := make(map[string]models.CompoundScore, len(trackIDs))
	if len(trackIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(trackIDs)), ",")
	args := make([]any, 0, len(trackIDs)+1)
	args = append(args, userID)
	for _, id := range trackIDs {
		args = append(args, id)
	}

	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT user_id, track_id, score, source_count, recency_weighted_score, calculated_at
		FROM compound_scores WHERE user_id = ? AND track_id IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("query compound scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var s models.CompoundScore
		if err := rows.Scan(&s.UserID, &s.TrackID, &s.Score, &s.SourceCount, &s.RecencyWeightedScore, &s.CalculatedAt); err != nil {
			return nil, fmt.Errorf("scan compound score: %w", err)
		}
		result[s.TrackID] = s
	}

	return result, rows.Err()
}

// PurgeCompoundScores deletes rows calculated before the cutoff and
// returns the number removed.
func (db *DB) PurgeCompoundScores(ctx context.Context, before time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM compound_scores WHERE calculated_at < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("purge compound scores: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge compound scores rows affected: %w", err)
	}
	return n, nil
}
