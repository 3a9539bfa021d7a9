// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package api

import (
	"net/http"
	"time"

	"github.com/mracine/tagquest/internal/auth"
)

type loginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

// Login authenticates the operator and issues a JWT.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !h.config.Auth.Enabled {
		respondError(w, http.StatusForbidden, "AUTH_DISABLED", "Authentication is disabled", nil)
		return
	}
	if h.jwtManager == nil {
		respondError(w, http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "JWT manager not initialized", nil)
		return
	}

	if req.Username != h.config.Auth.AdminUsername ||
		!auth.VerifyPassword(h.config.Auth.AdminPassword, req.Password) {
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return
	}

	token, err := h.jwtManager.GenerateToken(req.Username, auth.RoleAdmin)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate token", err)
		return
	}

	respondData(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.jwtManager.Timeout()),
		Username:  req.Username,
		Role:      auth.RoleAdmin,
	}, start)
}
