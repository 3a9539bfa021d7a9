// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/mracine/tagquest/internal/metadata"
)

type batchLookupRequest struct {
	Products []metadata.LookupItem `json:"products" validate:"required,min=1,max=100,dive"`
}

type vendorAnalysisRequest struct {
	Vendor          string                `json:"vendor" validate:"required,max=200"`
	Products        []metadata.LookupItem `json:"products" validate:"required,min=1,dive"`
	SuggestedGenre  string                `json:"suggestedGenre" validate:"max=200"`
	SuggestedDecade string                `json:"suggestedDecade" validate:"max=20"`
}

// VerifyDiscogs looks one artist/title pair up on Discogs.
func (h *Handler) VerifyDiscogs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	artist := r.URL.Query().Get("artist")
	title := r.URL.Query().Get("title")
	if artist == "" || title == "" {
		respondError(w, http.StatusBadRequest, "MISSING_PARAMS", "artist and title query parameters are required", nil)
		return
	}

	release, err := h.discogs.Lookup(r.Context(), artist, title)
	if err != nil {
		h.respondVerifyError(w, "discogs", err)
		return
	}
	respondData(w, http.StatusOK, release, start)
}

// VerifyDiscogsBatch resolves many catalog rows in one paced pass.
func (h *Handler) VerifyDiscogsBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req batchLookupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	results, err := h.discogs.BatchLookup(r.Context(), req.Products)
	if err != nil {
		h.respondVerifyError(w, "discogs", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"results": results}, start)
}

// VerifyDiscogsVendor samples a vendor's titles and reports how well
// Discogs agrees with the suggested tag values.
func (h *Handler) VerifyDiscogsVendor(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req vendorAnalysisRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	analysis, err := h.discogs.AnalyzeVendor(r.Context(), req.Vendor, req.Products, req.SuggestedGenre, req.SuggestedDecade)
	if err != nil {
		h.respondVerifyError(w, "discogs", err)
		return
	}
	respondData(w, http.StatusOK, analysis, start)
}

// VerifyDeezer looks one artist/title pair up for a release year.
func (h *Handler) VerifyDeezer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	artist := r.URL.Query().Get("artist")
	title := r.URL.Query().Get("title")
	if artist == "" || title == "" {
		respondError(w, http.StatusBadRequest, "MISSING_PARAMS", "artist and title query parameters are required", nil)
		return
	}

	result, err := h.deezer.YearLookup(r.Context(), artist, title)
	if err != nil {
		h.respondVerifyError(w, "deezer", err)
		return
	}
	respondData(w, http.StatusOK, result, start)
}

// VerifyDeezerBatch resolves release years for many catalog rows.
func (h *Handler) VerifyDeezerBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req batchLookupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	results, err := h.deezer.BatchYearLookup(r.Context(), req.Products)
	if err != nil {
		h.respondVerifyError(w, "deezer", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"results": results}, start)
}

func (h *Handler) respondVerifyError(w http.ResponseWriter, provider string, err error) {
	if errors.Is(err, metadata.ErrDisabled) {
		respondError(w, http.StatusServiceUnavailable, "PROVIDER_DISABLED", provider+" verification is not configured", nil)
		return
	}
	respondError(w, http.StatusBadGateway, "PROVIDER_ERROR", provider+" lookup failed", err)
}
