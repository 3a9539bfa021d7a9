// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package engine

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mracine/tagquest/internal/models"
)

// Confidence buckets used by the progress views.
const (
	highConfidence   = 80
	mediumConfidence = 50
	playbookMinimum  = 80
)

// Stats summarizes genre confidence across the catalog: high >= 80,
// medium >= 50, low below. Percent is the high bucket's share.
func (w *Workspace) Stats() models.Stats {
	var s models.Stats
	for _, p := range w.products {
		pct := 0
		if e := w.store.Entry(p.Handle, models.TagGenre); e != nil {
			pct = e.Percent
		}
		switch {
		case pct >= highConfidence:
			s.High++
		case pct >= mediumConfidence:
			s.Medium++
		default:
			s.Low++
		}
	}
	if len(w.products) > 0 {
		s.Percent = int(math.Round(100 * float64(s.High) / float64(len(w.products))))
	}
	return s
}

// DetailedStats breaks confidence down per tag type plus overall question
// progress.
func (w *Workspace) DetailedStats() models.DetailedStats {
	var d models.DetailedStats
	d.Genre = w.tagTypeStats(models.TagGenre)
	d.Decade = w.tagTypeStats(models.TagDecade)
	d.Overall.QuestionsRemaining = len(w.Questions())
	d.Overall.QuestionsAnswered = len(w.answers)
	return d
}

func (w *Workspace) tagTypeStats(t models.TagType) models.TagTypeStats {
	s := models.TagTypeStats{Total: len(w.products)}
	for _, p := range w.products {
		pct := 0
		if e := w.store.Entry(p.Handle, t); e != nil {
			pct = e.Percent
		}
		switch {
		case pct == 100:
			s.Certain++
		case pct >= highConfidence:
			s.High++
		case pct >= mediumConfidence:
			s.Medium++
		case pct > 0:
			s.Low++
		default:
			s.None++
		}
	}
	return s
}

// Playbook turns high-confidence rule-sourced certainties into bulk-edit
// steps: for each inferred tag value, the catalog tag to add and the product
// handles to add it to. Existing-sourced entries are excluded; those tags are
// already on the products.
func (w *Workspace) Playbook() []models.PlaybookStep {
	type key struct {
		t     models.TagType
		value string
	}
	steps := make(map[key]*models.PlaybookStep)
	var order []key
	for _, p := range w.products {
		for _, t := range []models.TagType{models.TagGenre, models.TagSubgenre, models.TagDecade} {
			e := w.store.Entry(p.Handle, t)
			if e == nil || e.Source != models.SourceRule || e.Percent < playbookMinimum {
				continue
			}
			k := key{t, e.Value}
			step, ok := steps[k]
			if !ok {
				step = &models.PlaybookStep{
					TagType: t,
					Value:   e.Value,
					Tag:     TagForValue(t, e.Value),
				}
				steps[k] = step
				order = append(order, k)
			}
			step.Handles = append(step.Handles, p.Handle)
		}
	}

	out := make([]models.PlaybookStep, 0, len(order))
	for _, k := range order {
		out = append(out, *steps[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Handles) != len(out[j].Handles) {
			return len(out[i].Handles) > len(out[j].Handles)
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// SuspiciousVendors flags vendor names that look like data problems rather
// than labels, ordered by product count descending.
func (w *Workspace) SuspiciousVendors() []models.SuspiciousVendor {
	var out []models.SuspiciousVendor
	for _, g := range w.groups {
		if !isSuspiciousVendor(g.Name) {
			continue
		}
		out = append(out, models.SuspiciousVendor{
			Vendor:       g.Name,
			ProductCount: len(g.Products),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProductCount != out[j].ProductCount {
			return out[i].ProductCount > out[j].ProductCount
		}
		return out[i].Vendor < out[j].Vendor
	})
	return out
}

// isSuspiciousVendor matches tag remnants leaking into the vendor column
// (colons, "Genre" fragments), placeholder names, and strings too short or
// letterless to be a real label.
func isSuspiciousVendor(v string) bool {
	lower := strings.ToLower(v)
	if strings.Contains(v, ":") || strings.Contains(v, "Genre") ||
		strings.Contains(lower, "various") || strings.Contains(lower, "unknown") {
		return true
	}
	if utf8.RuneCountInString(v) < 2 {
		return true
	}
	return !strings.ContainsFunc(v, unicode.IsLetter)
}
