// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

// Package api provides the HTTP surface: chi routing, the standard response
// envelope, and handlers for catalog, sessions, inference and verification.
package api

import (
	"time"

	"github.com/mracine/tagquest/internal/auth"
	"github.com/mracine/tagquest/internal/cache"
	"github.com/mracine/tagquest/internal/catalog"
	"github.com/mracine/tagquest/internal/config"
	"github.com/mracine/tagquest/internal/database"
	"github.com/mracine/tagquest/internal/engine"
	"github.com/mracine/tagquest/internal/metadata"
)

// Handler carries the dependencies for all API endpoints.
//
// Handler methods are split across files:
//   - handlers_health.go: health and readiness probes
//   - handlers_auth.go: operator login
//   - handlers_catalog.go: product import/list/clear, audit, audit export
//   - handlers_sessions.go: session CRUD
//   - handlers_engine.go: questions, answers, stats, playbook, explorer
//   - handlers_verify.go: Discogs and Deezer verification
type Handler struct {
	db         *database.DB
	config     *config.Config
	jwtManager *auth.JWTManager
	workspaces *Workspaces
	auditor    *catalog.Auditor
	discogs    *metadata.DiscogsClient
	deezer     *metadata.DeezerClient
	startTime  time.Time
}

// NewHandler wires the handler. The metadata cache is shared between both
// verification clients; each keys entries by provider.
func NewHandler(db *database.DB, cfg *config.Config, jwtManager *auth.JWTManager) *Handler {
	engineCfg := engine.Config{
		MajorityThreshold: cfg.Engine.MajorityThreshold,
		MinVendorProducts: cfg.Engine.MinVendorProducts,
		ExcludedVendors:   cfg.Engine.ExcludedVendors,
	}

	metadataCache := cache.New("metadata", cfg.Discogs.CacheTTL)

	return &Handler{
		db:         db,
		config:     cfg,
		jwtManager: jwtManager,
		workspaces: NewWorkspaces(engineCfg, db),
		auditor:    catalog.NewAuditor(cfg.Taxonomy.Genres, cfg.Taxonomy.Decades),
		discogs:    metadata.NewDiscogsClient(cfg.Discogs, metadataCache),
		deezer:     metadata.NewDeezerClient(cfg.Deezer, metadataCache),
		startTime:  time.Now(),
	}
}
