// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package database

import (
	"context"
	"fmt"
)

// schemaStatements create the TagQuest tables. DuckDB executes these on
// every startup; IF NOT EXISTS keeps them idempotent.
//
// session_answers carries the denormalized question context (vendor,
// tag_type, suggested_value, existing_pct) so answer edits never have to
// parse ids or question text. position preserves append order for both
// rules and answers.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS catalog_products (
		handle            VARCHAR PRIMARY KEY,
		title             VARCHAR NOT NULL,
		vendor            VARCHAR NOT NULL,
		existing_genre    VARCHAR NOT NULL DEFAULT '',
		existing_subgenre VARCHAR NOT NULL DEFAULT '',
		existing_decade   VARCHAR NOT NULL DEFAULT '',
		created_at        TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         VARCHAR PRIMARY KEY,
		name       VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS session_rules (
		session_id    VARCHAR NOT NULL,
		position      INTEGER NOT NULL,
		type          VARCHAR NOT NULL,
		vendor        VARCHAR NOT NULL,
		tag_type      VARCHAR NOT NULL,
		value         VARCHAR NOT NULL,
		certainty_pct INTEGER NOT NULL,
		reason        VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS session_answers (
		session_id      VARCHAR NOT NULL,
		position        INTEGER NOT NULL,
		question_id     VARCHAR NOT NULL,
		question_text   VARCHAR NOT NULL,
		answer          VARCHAR NOT NULL,
		vendor          VARCHAR NOT NULL DEFAULT '',
		tag_type        VARCHAR NOT NULL DEFAULT '',
		suggested_value VARCHAR NOT NULL DEFAULT '',
		existing_pct    INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS session_certainties (
		session_id VARCHAR NOT NULL,
		handle     VARCHAR NOT NULL,
		tag_type   VARCHAR NOT NULL,
		value      VARCHAR NOT NULL,
		pct        INTEGER NOT NULL,
		source     VARCHAR NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_session_rules_session ON session_rules(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_session_answers_session ON session_answers(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_session_certainties_session ON session_certainties(session_id)`,
}

func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
