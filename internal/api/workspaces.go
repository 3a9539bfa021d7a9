// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/mracine/tagquest/internal/database"
	"github.com/mracine/tagquest/internal/engine"
	"github.com/mracine/tagquest/internal/metrics"
	"github.com/mracine/tagquest/internal/models"
)

// Workspaces owns the in-memory engine state per session. Engine workspaces
// are not safe for concurrent use, so one mutex serializes all session
// operations; TagQuest is single-operator and the engine is fast enough
// that this never shows up.
type Workspaces struct {
	mu   sync.Mutex
	cfg  engine.Config
	db   *database.DB
	open map[string]*sessionState
}

type sessionState struct {
	workspace *engine.Workspace
	name      string
}

// NewWorkspaces builds the manager around the shared catalog store.
func NewWorkspaces(cfg engine.Config, db *database.DB) *Workspaces {
	return &Workspaces{
		cfg:  cfg,
		db:   db,
		open: make(map[string]*sessionState),
	}
}

// With runs a read-only function against a session workspace.
func (m *Workspaces) With(ctx context.Context, sessionID string, fn func(*engine.Workspace) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.load(ctx, sessionID)
	if err != nil {
		return err
	}
	return fn(state.workspace)
}

// Update runs a mutating function against a session workspace and persists
// the resulting rules, answers and certainties on success. The failed-fn
// path leaves the cached workspace as fn left it; callers treat engine
// errors as no-ops, which every engine operation guarantees.
func (m *Workspaces) Update(ctx context.Context, sessionID string, fn func(*engine.Workspace) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := fn(state.workspace); err != nil {
		return err
	}

	session := &models.Session{
		ID:          sessionID,
		Name:        state.name,
		Rules:       state.workspace.Rules(),
		Answers:     state.workspace.Answers(),
		Certainties: state.workspace.CertaintyRecords(),
	}
	if err := m.db.SaveSession(ctx, session); err != nil {
		// Drop the cached state so the next load replays from the store
		// instead of diverging from it.
		delete(m.open, sessionID)
		metrics.SessionsActive.Set(float64(len(m.open)))
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// load returns the cached workspace or rebuilds it from the store.
// Callers hold mu.
func (m *Workspaces) load(ctx context.Context, sessionID string) (*sessionState, error) {
	if state, ok := m.open[sessionID]; ok {
		return state, nil
	}

	session, err := m.db.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	products, err := m.db.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	w := engine.NewWorkspace(m.cfg)
	w.LoadCatalog(products)
	w.LoadSession(session.Rules, session.Answers)

	state := &sessionState{workspace: w, name: session.Name}
	m.open[sessionID] = state
	metrics.SessionsActive.Set(float64(len(m.open)))
	return state, nil
}

// Rename updates the cached display name after a session rename.
func (m *Workspaces) Rename(sessionID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.open[sessionID]; ok {
		state.name = name
	}
}

// Invalidate drops one cached workspace, after a session delete.
func (m *Workspaces) Invalidate(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.open, sessionID)
	metrics.SessionsActive.Set(float64(len(m.open)))
}

// InvalidateAll drops every cached workspace. Called when the catalog
// changes; certainties rebuild from rules on the next load.
func (m *Workspaces) InvalidateAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = make(map[string]*sessionState)
	metrics.SessionsActive.Set(0)
}
