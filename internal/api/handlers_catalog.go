// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package api

import (
	"net/http"
	"time"

	"github.com/mracine/tagquest/internal/catalog"
	"github.com/mracine/tagquest/internal/logging"
	"github.com/mracine/tagquest/internal/metrics"
	"github.com/mracine/tagquest/internal/models"
)

// ListProducts returns the global catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	products, err := h.db.ListProducts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to list products", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    len(products),
	}, start)
}

// ImportProducts ingests one or more CSV exports into the catalog.
// Duplicate handles are skipped, both within the upload and against rows
// already stored.
func (h *Handler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	records, ok := h.parseCSVUpload(w, r)
	if !ok {
		return
	}

	added, err := h.db.InsertProducts(r.Context(), catalog.Products(records))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to store products", err)
		return
	}

	total, err := h.db.CountProducts(r.Context())
	if err == nil {
		metrics.CatalogProducts.Set(float64(total))
	}

	// Cached workspaces were built against the old catalog.
	h.workspaces.InvalidateAll()

	logging.Info().Int("parsed", len(records)).Int("added", added).Msg("Catalog import complete")
	respondData(w, http.StatusOK, map[string]int{
		"parsed": len(records),
		"added":  added,
		"total":  total,
	}, start)
}

// ClearProducts wipes the catalog.
func (h *Handler) ClearProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := h.db.ClearProducts(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to clear products", err)
		return
	}
	metrics.CatalogProducts.Set(0)
	h.workspaces.InvalidateAll()

	respondData(w, http.StatusOK, map[string]string{"status": "cleared"}, start)
}

// Audit parses an uploaded CSV without persisting it and reports per-row
// tag coverage plus aggregate stats.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	records, ok := h.parseCSVUpload(w, r)
	if !ok {
		return
	}

	products, stats := h.auditor.Audit(records)
	respondData(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"stats":    stats,
	}, start)
}

// AuditExport returns the uploaded rows missing the requested tag type as a
// CSV download for bulk editing.
func (h *Handler) AuditExport(w http.ResponseWriter, r *http.Request) {
	tagType := models.TagType(r.URL.Query().Get("tagType"))
	if !tagType.Valid() {
		respondError(w, http.StatusBadRequest, "INVALID_TAG_TYPE", "tagType must be genre, subgenre or decade", nil)
		return
	}

	records, ok := h.parseCSVUpload(w, r)
	if !ok {
		return
	}
	products, _ := h.auditor.Audit(records)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="missing-`+string(tagType)+`.csv"`)
	if err := catalog.ExportMissing(w, products, tagType); err != nil {
		logging.Error().Err(err).Msg("Audit export failed mid-stream")
	}
}

// parseCSVUpload reads every uploaded CSV with a shared dedupe set. A false
// return means the error response was already written.
func (h *Handler) parseCSVUpload(w http.ResponseWriter, r *http.Request) ([]catalog.Record, bool) {
	readers, err := csvReaders(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Expected a CSV body or multipart file upload", err)
		return nil, false
	}

	seen := make(map[string]bool)
	var records []catalog.Record
	for _, nr := range readers {
		rc, err := nr.open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Failed to open uploaded file", err)
			return nil, false
		}
		recs, err := catalog.ImportCSV(rc, seen)
		_ = rc.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_CSV", "Failed to parse "+nr.name, err)
			return nil, false
		}
		records = append(records, recs...)
	}
	return records, true
}
