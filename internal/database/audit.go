// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/aidj/internal/models"
)

// InsertRecommendations appends audit rows for an accepted batch.
func (db *DB) InsertRecommendations(ctx context.Context, records []models.RecommendationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert recommendations: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recommendation_log (user_id, track_id, batch_id, strategy, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert recommendations: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.UserID, r.TrackID, r.BatchID, r.Strategy, r.CreatedAt); err != nil {
			return fmt.Errorf("insert recommendation for track %s: %w", r.TrackID, err)
		}
	}

	return tx.Commit()
}

// RecommendationsForBatch returns the audit rows for one batch, in
// insertion order.
func (db *DB) RecommendationsForBatch(ctx context.Context, batchID string) ([]models.RecommendationRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, track_id, batch_id, strategy, created_at
		FROM recommendation_log WHERE batch_id = ?
		ORDER BY created_at, track_id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query recommendation log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.RecommendationRecord
	for rows.Next() {
		var r models.RecommendationRecord
		if err := rows.Scan(&r.UserID, &r.TrackID, &r.BatchID, &r.Strategy, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation record: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
