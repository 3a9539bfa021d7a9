// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mracine/tagquest/internal/models"
)

// Auditor validates imported rows against the configured tag taxonomy and
// summarizes coverage. The taxonomy is data, not code; swapping genre or
// decade vocabularies never touches this logic.
type Auditor struct {
	genres  map[string]string // lowercased -> canonical
	decades map[string]bool   // exact and lowercased forms
}

// NewAuditor builds an auditor for the given vocabulary.
func NewAuditor(genres, decades []string) *Auditor {
	a := &Auditor{
		genres:  make(map[string]string, len(genres)),
		decades: make(map[string]bool, len(decades)*2),
	}
	for _, g := range genres {
		a.genres[strings.ToLower(g)] = g
	}
	for _, d := range decades {
		a.decades[d] = true
		a.decades[strings.ToLower(d)] = true
	}
	return a
}

// Audit inspects every imported row: which tag dimensions are present,
// whether values are in the taxonomy, and coverage totals.
func (a *Auditor) Audit(records []Record) ([]models.AuditProduct, models.AuditStats) {
	products := make([]models.AuditProduct, 0, len(records))
	stats := models.AuditStats{Total: len(records)}

	for _, rec := range records {
		p := a.auditRecord(rec)
		products = append(products, p)

		if p.HasGenre {
			stats.WithGenre++
		}
		if p.HasSubgenre {
			stats.WithSubgenre++
		}
		if p.HasDecade {
			stats.WithDecade++
		}
		switch {
		case p.HasGenre && p.HasSubgenre && p.HasDecade:
			stats.Complete++
		case !p.HasGenre && !p.HasSubgenre && !p.HasDecade:
			stats.MissingAll++
		case !p.HasGenre && p.HasSubgenre && p.HasDecade:
			stats.MissingGenreOnly++
		case p.HasGenre && !p.HasSubgenre && p.HasDecade:
			stats.MissingSubgenreOnly++
		case p.HasGenre && p.HasSubgenre && !p.HasDecade:
			stats.MissingDecadeOnly++
		}
	}
	return products, stats
}

func (a *Auditor) auditRecord(rec Record) models.AuditProduct {
	var notes []string
	var rawTags []string
	for _, token := range strings.Split(rec.RawTags, ",") {
		if token = strings.TrimSpace(token); token != "" {
			rawTags = append(rawTags, token)
		}
	}

	parsed := models.ParsedTags{
		Genre:    rec.Product.ExistingGenre,
		Subgenre: rec.Product.ExistingSubgenre,
		Decade:   rec.Product.ExistingDecade,
	}

	if parsed.Genre != "" {
		if canonical, ok := a.genres[strings.ToLower(parsed.Genre)]; ok {
			parsed.Genre = canonical
		} else {
			notes = append(notes, fmt.Sprintf("Non-standard genre: %q", parsed.Genre))
		}
	}
	if parsed.Decade != "" {
		if !a.decades[parsed.Decade] && !a.decades[strings.ToLower(parsed.Decade)] {
			notes = append(notes, fmt.Sprintf("Non-standard decade format: %q", parsed.Decade))
		}
	}

	return models.AuditProduct{
		Handle:       rec.Product.Handle,
		Title:        rec.Product.Title,
		Vendor:       rec.Product.Vendor,
		Tags:         rec.RawTags,
		Parsed:       parsed,
		HasGenre:     parsed.Genre != "",
		HasSubgenre:  parsed.Subgenre != "",
		HasDecade:    parsed.Decade != "",
		RawTags:      rawTags,
		ParsingNotes: notes,
	}
}

// ExportMissing writes the rows lacking a tag type as CSV, the shape bulk
// editors expect back: handle, title, vendor and the current tag string.
func ExportMissing(w io.Writer, products []models.AuditProduct, t models.TagType) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Handle", "Title", "Vendor", "Current Tags"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range products {
		missing := false
		switch t {
		case models.TagGenre:
			missing = !p.HasGenre
		case models.TagSubgenre:
			missing = !p.HasSubgenre
		case models.TagDecade:
			missing = !p.HasDecade
		}
		if !missing {
			continue
		}
		if err := cw.Write([]string{p.Handle, p.Title, p.Vendor, p.Tags}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
