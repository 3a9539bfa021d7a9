// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mracine/tagquest/internal/database"
	"github.com/mracine/tagquest/internal/models"
)

type sessionRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreateSession starts a new inference pass.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session := &models.Session{Name: req.Name}
	if err := h.db.CreateSession(r.Context(), session); err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to create session", err)
		return
	}
	respondData(w, http.StatusCreated, session, start)
}

// ListSessions returns all sessions, most recently updated first, with
// child-row counts but no child rows.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sessions, err := h.db.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to list sessions", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"total":    len(sessions),
	}, start)
}

// GetSession returns one session with rules, answers and certainties.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	session, err := h.db.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	respondData(w, http.StatusOK, session, start)
}

// RenameSession updates a session's display name.
func (h *Handler) RenameSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.db.RenameSession(r.Context(), id, req.Name); err != nil {
		h.respondSessionError(w, err)
		return
	}
	h.workspaces.Rename(id, req.Name)
	respondData(w, http.StatusOK, map[string]string{"id": id, "name": req.Name}, start)
}

// DeleteSession removes a session and its children.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := chi.URLParam(r, "id")
	if err := h.db.DeleteSession(r.Context(), id); err != nil {
		h.respondSessionError(w, err)
		return
	}
	h.workspaces.Invalidate(id)
	respondData(w, http.StatusOK, map[string]string{"status": "deleted"}, start)
}

func (h *Handler) respondSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, database.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found", nil)
		return
	}
	respondError(w, http.StatusInternalServerError, "DB_ERROR", "Session operation failed", err)
}
