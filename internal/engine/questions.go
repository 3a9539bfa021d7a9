// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/mracine/tagquest/internal/models"
)

// Config controls question generation policy.
type Config struct {
	// MajorityThreshold is the minimum share (0-100, inclusive) of a vendor's
	// products that must already carry the top tag value before extrapolation
	// is proposed.
	MajorityThreshold int

	// MinVendorProducts is the smallest vendor group worth questioning.
	MinVendorProducts int

	// ExcludedVendors lists umbrella labels (catch-all distributors) whose
	// catalogs are too heterogeneous to generalize over. Matched after
	// vendor normalization.
	ExcludedVendors []string
}

// DefaultConfig returns the stock generation policy.
func DefaultConfig() Config {
	return Config{
		MajorityThreshold: 50,
		MinVendorProducts: 2,
		ExcludedVendors:   []string{"uDiscover Music", "Various Artists"},
	}
}

// questionTagTypes are the dimensions questions extrapolate over. Subgenre is
// deliberately absent: subgenres are too vendor-specific to generalize.
var questionTagTypes = []models.TagType{models.TagGenre, models.TagDecade}

// QuestionID builds the deterministic id for a vendor question.
func QuestionID(t models.TagType, vendor string) string {
	return fmt.Sprintf("vendor-%s-%s", t, vendor)
}

// GenerateQuestions derives the ranked question queue from the vendor groups.
// Questions whose id appears in answered are dropped, so an answered question
// never resurfaces until its history entry is removed.
//
// Ordering is by affected product count descending, then existing-tag share
// descending, then vendor name, so the queue is deterministic and the highest
// expected coverage per answer comes first.
func GenerateQuestions(groups map[string]*models.VendorGroup, answered map[string]bool, cfg Config) []models.Question {
	excluded := make(map[string]bool, len(cfg.ExcludedVendors))
	for _, v := range cfg.ExcludedVendors {
		excluded[NormalizeVendor(v)] = true
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var questions []models.Question
	for _, key := range keys {
		g := groups[key]
		if excluded[key] || len(g.Products) < cfg.MinVendorProducts {
			continue
		}
		for _, t := range questionTagTypes {
			q, ok := vendorQuestion(g, t, cfg.MajorityThreshold)
			if !ok || answered[q.ID] {
				continue
			}
			questions = append(questions, q)
		}
	}

	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].AffectedCount != questions[j].AffectedCount {
			return questions[i].AffectedCount > questions[j].AffectedCount
		}
		if questions[i].ExistingPercent != questions[j].ExistingPercent {
			return questions[i].ExistingPercent > questions[j].ExistingPercent
		}
		return questions[i].Vendor < questions[j].Vendor
	})
	return questions
}

// vendorQuestion proposes extrapolating a vendor's dominant existing value
// for one tag type. No question is produced when the vendor has nothing to
// extrapolate from, nothing left to fill, or the dominant value is below the
// majority threshold.
func vendorQuestion(g *models.VendorGroup, t models.TagType, threshold int) (models.Question, bool) {
	counts := g.Counts(t)
	total := len(g.Products)
	tagged := 0
	for _, n := range counts {
		tagged += n
	}
	missing := total - tagged
	if missing == 0 || tagged == 0 {
		return models.Question{}, false
	}

	topValue, topCount := dominantValue(counts)
	pct := int(math.Round(100 * float64(topCount) / float64(total)))
	if pct < threshold {
		return models.Question{}, false
	}

	return models.Question{
		ID:              QuestionID(t, g.Name),
		Text:            fmt.Sprintf("Should all %q products be %q?", g.Name, topValue),
		Context:         fmt.Sprintf("%d of %d already tagged", topCount, total),
		Impact:          fmt.Sprintf("+%d products", missing),
		AffectedCount:   missing,
		Type:            fmt.Sprintf("vendor-%s", t),
		Vendor:          g.Name,
		SuggestedValue:  topValue,
		ExistingPercent: pct,
		TagType:         t,
	}, true
}

// dominantValue returns the most frequent value in a frequency table. Count
// ties resolve to the lexicographically smaller value so generation is
// deterministic.
func dominantValue(counts map[string]int) (string, int) {
	var topValue string
	topCount := 0
	for v, n := range counts {
		if n > topCount || (n == topCount && (topValue == "" || v < topValue)) {
			topValue, topCount = v, n
		}
	}
	return topValue, topCount
}
