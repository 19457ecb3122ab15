// AIDJ - AI DJ Recommendation Engine for Personal Music Libraries
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aidj

package database

// schemaStatements bootstrap the engine tables. Statements are idempotent
// and run in order on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS play_history (
		user_id   VARCHAR NOT NULL,
		artist    VARCHAR NOT NULL,
		title     VARCHAR NOT NULL,
		track_id  VARCHAR,
		played_at TIMESTAMP NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_play_history_user_time
		ON play_history (user_id, played_at)`,

	`CREATE TABLE IF NOT EXISTS taste_profiles (
		user_id            VARCHAR PRIMARY KEY,
		genre_distribution VARCHAR NOT NULL,
		top_keywords       VARCHAR NOT NULL,
		total_songs        INTEGER NOT NULL,
		last_analyzed      TIMESTAMP NOT NULL,
		refresh_needed     BOOLEAN NOT NULL DEFAULT FALSE
	)`,

	`CREATE TABLE IF NOT EXISTS compound_scores (
		user_id                VARCHAR NOT NULL,
		track_id               VARCHAR NOT NULL,
		score                  DOUBLE NOT NULL,
		source_count           INTEGER NOT NULL,
		recency_weighted_score DOUBLE NOT NULL,
		calculated_at          TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, track_id)
	)`,

	`CREATE TABLE IF NOT EXISTS recommendation_log (
		user_id    VARCHAR NOT NULL,
		track_id   VARCHAR NOT NULL,
		batch_id   VARCHAR NOT NULL,
		strategy   VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_recommendation_log_batch
		ON recommendation_log (batch_id)`,
}
