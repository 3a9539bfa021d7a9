// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mracine/tagquest/internal/models"
)

// ErrSessionNotFound is returned for lookups of unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// CreateSession inserts a new empty session. ID and timestamps are filled in
// when absent.
func (db *DB) CreateSession(ctx context.Context, s *models.Session) (err error) {
	start := time.Now()
	defer func() { observe("insert", "sessions", start, err) }()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.UpdatedAt = s.CreatedAt

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.Name, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// ListSessions returns all sessions newest-updated first, with child counts
// but without child rows.
func (db *DB) ListSessions(ctx context.Context) (_ []models.Session, err error) {
	start := time.Now()
	defer func() { observe("select", "sessions", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT s.id, s.name, s.created_at, s.updated_at,
			(SELECT count(*) FROM session_rules r WHERE r.session_id = s.id),
			(SELECT count(*) FROM session_answers a WHERE a.session_id = s.id)
		FROM sessions s
		ORDER BY s.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		counts := &models.SessionCounts{}
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt,
			&counts.Rules, &counts.Answers); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.Counts = counts
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session iteration failed: %w", err)
	}
	return sessions, nil
}

// GetSession loads a session with all child rows in stored order.
func (db *DB) GetSession(ctx context.Context, id string) (_ *models.Session, err error) {
	start := time.Now()
	defer func() { observe("select", "sessions", start, err) }()

	s := &models.Session{}
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if s.Rules, err = db.sessionRules(ctx, id); err != nil {
		return nil, err
	}
	if s.Answers, err = db.sessionAnswers(ctx, id); err != nil {
		return nil, err
	}
	if s.Certainties, err = db.sessionCertainties(ctx, id); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveSession persists a session's working state. The name and updated_at
// are written, and every child collection is replaced wholesale; partial
// child updates do not exist at this layer.
func (db *DB) SaveSession(ctx context.Context, s *models.Session) (err error) {
	start := time.Now()
	defer func() { observe("update", "sessions", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	s.UpdatedAt = time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET name = ?, updated_at = ? WHERE id = ?`,
		s.Name, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = fmt.Errorf("%w: %s", ErrSessionNotFound, s.ID)
		return err
	}

	for _, table := range []string{"session_rules", "session_answers", "session_certainties"} {
		if _, err = tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE session_id = ?`, table), s.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, r := range s.Rules {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO session_rules
				(session_id, position, type, vendor, tag_type, value, certainty_pct, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, i, r.Type, r.Vendor, string(r.TagType), r.Value, r.CertaintyPercent, r.Reason); err != nil {
			return fmt.Errorf("failed to insert rule: %w", err)
		}
	}
	for i, a := range s.Answers {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO session_answers
				(session_id, position, question_id, question_text, answer,
				 vendor, tag_type, suggested_value, existing_pct)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, i, a.QuestionID, a.QuestionText, a.Answer,
			a.Vendor, string(a.TagType), a.SuggestedValue, a.ExistingPercent); err != nil {
			return fmt.Errorf("failed to insert answer: %w", err)
		}
	}
	for _, c := range s.Certainties {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO session_certainties
				(session_id, handle, tag_type, value, pct, source)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID, c.Handle, string(c.TagType), c.Value, c.Percent, c.Source); err != nil {
			return fmt.Errorf("failed to insert certainty: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// RenameSession updates just the session name.
func (db *DB) RenameSession(ctx context.Context, id, name string) (err error) {
	start := time.Now()
	defer func() { observe("update", "sessions", start, err) }()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE sessions SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		return err
	}
	return nil
}

// DeleteSession removes a session and all its child rows.
func (db *DB) DeleteSession(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe("delete", "sessions", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"session_rules", "session_answers", "session_certainties"} {
		if _, err = tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE session_id = ?`, table), id); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

func (db *DB) sessionRules(ctx context.Context, id string) ([]models.Rule, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT type, vendor, tag_type, value, certainty_pct, reason
		FROM session_rules WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		var r models.Rule
		var tagType string
		if err := rows.Scan(&r.Type, &r.Vendor, &tagType, &r.Value,
			&r.CertaintyPercent, &r.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		r.TagType = models.TagType(tagType)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (db *DB) sessionAnswers(ctx context.Context, id string) ([]models.Answer, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT question_id, question_text, answer, vendor, tag_type, suggested_value, existing_pct
		FROM session_answers WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var a models.Answer
		var tagType string
		if err := rows.Scan(&a.QuestionID, &a.QuestionText, &a.Answer,
			&a.Vendor, &tagType, &a.SuggestedValue, &a.ExistingPercent); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		a.TagType = models.TagType(tagType)
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (db *DB) sessionCertainties(ctx context.Context, id string) ([]models.CertaintyRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT handle, tag_type, value, pct, source
		FROM session_certainties WHERE session_id = ? ORDER BY handle, tag_type`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load certainties: %w", err)
	}
	defer rows.Close()

	var recs []models.CertaintyRecord
	for rows.Next() {
		var c models.CertaintyRecord
		var tagType string
		if err := rows.Scan(&c.Handle, &tagType, &c.Value, &c.Percent, &c.Source); err != nil {
			return nil, fmt.Errorf("failed to scan certainty: %w", err)
		}
		c.TagType = models.TagType(tagType)
		recs = append(recs, c)
	}
	return recs, rows.Err()
}
