// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package engine

import (
	"fmt"
	"sort"
	"testing"

	"github.com/mracine/tagquest/internal/models"
)

// vendorProducts builds a vendor's catalog slice: tagged genre products
// first, then untagged ones. Handles are unique per vendor.
func vendorProducts(vendor string, genreCounts map[string]int, untagged int) []*models.Product {
	values := make([]string, 0, len(genreCounts))
	for v := range genreCounts {
		values = append(values, v)
	}
	sort.Strings(values)

	var out []*models.Product
	i := 0
	for _, value := range values {
		for n := 0; n < genreCounts[value]; n++ {
			out = append(out, &models.Product{
				Handle:        fmt.Sprintf("%s-%d", vendor, i),
				Vendor:        vendor,
				ExistingGenre: value,
			})
			i++
		}
	}
	for n := 0; n < untagged; n++ {
		out = append(out, &models.Product{
			Handle: fmt.Sprintf("%s-%d", vendor, i),
			Vendor: vendor,
		})
		i++
	}
	return out
}

func generate(t *testing.T, products []*models.Product, answered map[string]bool) []models.Question {
	t.Helper()
	return GenerateQuestions(BuildVendorGroups(products), answered, DefaultConfig())
}

func TestGenerateQuestionsBasic(t *testing.T) {
	products := vendorProducts("Blue Note", map[string]int{"Jazz": 6}, 4)
	qs := generate(t, products, nil)
	if len(qs) != 1 {
		t.Fatalf("expected 1 question, got %d", len(qs))
	}

	q := qs[0]
	if q.ID != "vendor-genre-Blue Note" {
		t.Errorf("id = %q", q.ID)
	}
	if q.Text != `Should all "Blue Note" products be "Jazz"?` {
		t.Errorf("text = %q", q.Text)
	}
	if q.Context != "6 of 10 already tagged" {
		t.Errorf("context = %q", q.Context)
	}
	if q.Impact != "+4 products" {
		t.Errorf("impact = %q", q.Impact)
	}
	if q.AffectedCount != 4 || q.ExistingPercent != 60 || q.SuggestedValue != "Jazz" {
		t.Errorf("affected=%d pct=%d value=%q, want 4/60/Jazz", q.AffectedCount, q.ExistingPercent, q.SuggestedValue)
	}
	if q.TagType != models.TagGenre || q.Type != "vendor-genre" {
		t.Errorf("tagType=%q type=%q", q.TagType, q.Type)
	}
}

func TestGenerateQuestionsMixedValuesContext(t *testing.T) {
	// Context reports how many products carry the dominant value, not how
	// many carry any value at all.
	products := vendorProducts("Mixed", map[string]int{"Jazz": 6, "Rock": 2}, 2)
	qs := generate(t, products, nil)
	if len(qs) != 1 {
		t.Fatalf("expected 1 question, got %d", len(qs))
	}
	if qs[0].Context != "6 of 10 already tagged" {
		t.Errorf("context = %q, want dominant-value count", qs[0].Context)
	}
	if qs[0].ExistingPercent != 60 {
		t.Errorf("pct = %d, want 60", qs[0].ExistingPercent)
	}
}

func TestGenerateQuestionsThresholdBoundary(t *testing.T) {
	// 5 of 10 tagged the same value: exactly 50%, inclusive threshold.
	at50 := vendorProducts("Fifty", map[string]int{"Rock": 5}, 5)
	if qs := generate(t, at50, nil); len(qs) != 1 {
		t.Errorf("50%% share must generate a question, got %d", len(qs))
	}

	// 49 of 100: below threshold, no question.
	at49 := vendorProducts("FortyNine", map[string]int{"Rock": 49}, 51)
	if qs := generate(t, at49, nil); len(qs) != 0 {
		t.Errorf("49%% share must not generate a question, got %d", len(qs))
	}
}

func TestGenerateQuestionsSkipsNoSignal(t *testing.T) {
	// All tagged: nothing to fill.
	full := vendorProducts("Full", map[string]int{"Jazz": 5}, 0)
	if qs := generate(t, full, nil); len(qs) != 0 {
		t.Errorf("fully tagged vendor generated %d questions", len(qs))
	}

	// None tagged: nothing to extrapolate from.
	empty := vendorProducts("Empty", nil, 5)
	if qs := generate(t, empty, nil); len(qs) != 0 {
		t.Errorf("untagged vendor generated %d questions", len(qs))
	}
}

func TestGenerateQuestionsVendorPolicies(t *testing.T) {
	// Excluded umbrella vendor, matched case-insensitively.
	excluded := vendorProducts("various artists", map[string]int{"Rock": 6}, 4)
	if qs := generate(t, excluded, nil); len(qs) != 0 {
		t.Errorf("excluded vendor generated %d questions", len(qs))
	}

	// Single-product vendor is below the minimum group size.
	single := []*models.Product{{Handle: "s1", Vendor: "Tiny", ExistingGenre: "Jazz"}}
	if qs := generate(t, single, nil); len(qs) != 0 {
		t.Errorf("single-product vendor generated %d questions", len(qs))
	}
}

func TestGenerateQuestionsExcludesAnswered(t *testing.T) {
	products := vendorProducts("Blue Note", map[string]int{"Jazz": 6}, 4)
	answered := map[string]bool{"vendor-genre-Blue Note": true}
	if qs := generate(t, products, answered); len(qs) != 0 {
		t.Errorf("answered question resurfaced: %+v", qs)
	}
}

func TestGenerateQuestionsRanking(t *testing.T) {
	var products []*models.Product
	// Big: 100 affected at 60%.
	products = append(products, vendorProducts("Big", map[string]int{"Rock": 150}, 100)...)
	// HighPct: 100 affected at 80%. Same affected count, higher share.
	products = append(products, vendorProducts("HighPct", map[string]int{"Soul": 400}, 100)...)
	// Small: 10 affected at 90%.
	products = append(products, vendorProducts("Small", map[string]int{"Jazz": 90}, 10)...)

	qs := generate(t, products, nil)
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
	if qs[0].Vendor != "HighPct" || qs[1].Vendor != "Big" || qs[2].Vendor != "Small" {
		t.Errorf("order = %s, %s, %s; want HighPct, Big, Small", qs[0].Vendor, qs[1].Vendor, qs[2].Vendor)
	}
}

func TestGenerateQuestionsIndependentTagTypes(t *testing.T) {
	products := []*models.Product{
		{Handle: "p1", Vendor: "V", ExistingGenre: "Jazz", ExistingDecade: "50C"},
		{Handle: "p2", Vendor: "V", ExistingGenre: "Jazz", ExistingDecade: "50C"},
		{Handle: "p3", Vendor: "V"},
	}
	qs := generate(t, products, nil)
	if len(qs) != 2 {
		t.Fatalf("expected genre and decade questions, got %d: %+v", len(qs), qs)
	}

	seen := map[models.TagType]bool{}
	for _, q := range qs {
		seen[q.TagType] = true
	}
	if !seen[models.TagGenre] || !seen[models.TagDecade] {
		t.Errorf("missing tag type in %+v", qs)
	}
}

func TestGenerateQuestionsDeterministicTopValue(t *testing.T) {
	// Two values tied at 5 of 10: the lexicographically smaller wins.
	products := vendorProducts("Tied", map[string]int{"Jazz": 5, "Rock": 5}, 0)
	products = append(products, vendorProducts("Tied2", map[string]int{"Jazz": 5, "Rock": 5}, 2)...)

	qs := generate(t, products, nil)
	for _, q := range qs {
		if q.Vendor == "Tied2" && q.SuggestedValue != "Jazz" {
			t.Errorf("tie must resolve to lexicographically smaller value, got %q", q.SuggestedValue)
		}
	}
}

func TestVendorQuestionRounding(t *testing.T) {
	// 2 of 3 tagged: 66.67 rounds to 67.
	products := vendorProducts("Round", map[string]int{"Jazz": 2}, 1)
	qs := generate(t, products, nil)
	if len(qs) != 1 || qs[0].ExistingPercent != 67 {
		t.Errorf("expected rounded 67%%, got %+v", qs)
	}
}
