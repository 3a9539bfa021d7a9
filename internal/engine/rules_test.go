// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package engine

import (
	"reflect"
	"testing"

	"github.com/mracine/tagquest/internal/models"
)

func TestNewRuleFromQuestion(t *testing.T) {
	tests := []struct {
		name        string
		existingPct int
		wantPct     int
	}{
		{"boost adds ten", 60, 70},
		{"cap at 95", 90, 95},
		{"exactly at cap", 85, 95},
		{"just below cap", 84, 94},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := models.Question{
				Type:            "vendor-genre",
				Vendor:          "Blue Note",
				TagType:         models.TagGenre,
				SuggestedValue:  "Jazz",
				ExistingPercent: tt.existingPct,
			}
			r := NewRuleFromQuestion(q, ReasonConfirmed)
			if r.CertaintyPercent != tt.wantPct {
				t.Errorf("certainty = %d, want %d", r.CertaintyPercent, tt.wantPct)
			}
			if r.Vendor != "Blue Note" || r.Value != "Jazz" || r.TagType != models.TagGenre {
				t.Errorf("rule fields wrong: %+v", r)
			}
			if r.Reason != ReasonConfirmed {
				t.Errorf("reason = %q", r.Reason)
			}
		})
	}
}

func applyFixture() (map[string]*models.VendorGroup, *CertaintyStore, []*models.Product) {
	products := []*models.Product{
		{Handle: "p1", Vendor: "Blue Note", ExistingGenre: "Jazz"},
		{Handle: "p2", Vendor: "Blue Note"},
		{Handle: "p3", Vendor: "Blue Note"},
		{Handle: "p4", Vendor: "Motown"},
	}
	groups := BuildVendorGroups(products)
	store := NewCertaintyStore()
	store.Seed(products)
	return groups, store, products
}

func TestApplyRuleRaisesUnsetEntries(t *testing.T) {
	groups, store, _ := applyFixture()
	rule := models.Rule{Vendor: "Blue Note", TagType: models.TagGenre, Value: "Jazz", CertaintyPercent: 70}

	if n := ApplyRule(rule, groups, store); n != 2 {
		t.Errorf("applied = %d, want 2", n)
	}

	for _, h := range []string{"p2", "p3"} {
		e := store.Entry(h, models.TagGenre)
		want := models.CertaintyEntry{Value: "Jazz", Percent: 70, Source: models.SourceRule}
		if e == nil || *e != want {
			t.Errorf("%s entry = %+v, want %+v", h, e, want)
		}
	}

	// Existing-sourced 100% entry is untouched.
	if e := store.Entry("p1", models.TagGenre); e.Percent != 100 || e.Source != models.SourceExisting {
		t.Errorf("existing entry changed: %+v", e)
	}
	// Other vendors untouched.
	if e := store.Entry("p4", models.TagGenre); e != nil {
		t.Errorf("foreign vendor entry set: %+v", e)
	}
}

func TestApplyRuleIdempotent(t *testing.T) {
	groups, store, _ := applyFixture()
	rule := models.Rule{Vendor: "Blue Note", TagType: models.TagGenre, Value: "Jazz", CertaintyPercent: 70}

	ApplyRule(rule, groups, store)
	once := store.Records()

	if n := ApplyRule(rule, groups, store); n != 0 {
		t.Errorf("second application changed %d entries, want 0", n)
	}
	if !reflect.DeepEqual(store.Records(), once) {
		t.Errorf("store changed on reapplication")
	}
}

func TestApplyRuleMonotonic(t *testing.T) {
	groups, store, products := applyFixture()
	strong := models.Rule{Vendor: "Blue Note", TagType: models.TagGenre, Value: "Jazz", CertaintyPercent: 80}
	weak := models.Rule{Vendor: "Blue Note", TagType: models.TagGenre, Value: "Blues", CertaintyPercent: 60}

	ApplyRule(strong, groups, store)
	before := map[string]int{}
	for _, p := range products {
		if e := store.Entry(p.Handle, models.TagGenre); e != nil {
			before[p.Handle] = e.Percent
		}
	}

	if n := ApplyRule(weak, groups, store); n != 0 {
		t.Errorf("weaker rule applied to %d entries, want 0", n)
	}
	for _, p := range products {
		e := store.Entry(p.Handle, models.TagGenre)
		if e == nil {
			continue
		}
		if e.Percent < before[p.Handle] {
			t.Errorf("%s confidence dropped %d -> %d", p.Handle, before[p.Handle], e.Percent)
		}
		if e.Value == "Blues" {
			t.Errorf("%s overwritten by weaker rule", p.Handle)
		}
	}
}

func TestApplyRuleEqualConfidenceRejected(t *testing.T) {
	groups, store, _ := applyFixture()
	first := models.Rule{Vendor: "Blue Note", TagType: models.TagGenre, Value: "Jazz", CertaintyPercent: 70}
	second := models.Rule{Vendor: "Blue Note", TagType: models.TagGenre, Value: "Blues", CertaintyPercent: 70}

	ApplyRule(first, groups, store)
	ApplyRule(second, groups, store)

	if e := store.Entry("p2", models.TagGenre); e.Value != "Jazz" {
		t.Errorf("equal-confidence rule replaced value: %+v", e)
	}
}

func TestApplyRuleUnknownVendorNoOp(t *testing.T) {
	groups, store, _ := applyFixture()
	rule := models.Rule{Vendor: "Nobody", TagType: models.TagGenre, Value: "Jazz", CertaintyPercent: 70}

	before := store.Records()
	if n := ApplyRule(rule, groups, store); n != 0 {
		t.Errorf("unknown vendor applied %d entries", n)
	}
	if !reflect.DeepEqual(store.Records(), before) {
		t.Errorf("store changed for unknown vendor")
	}
}

func TestApplyRuleVendorMatchNormalized(t *testing.T) {
	groups, store, _ := applyFixture()
	rule := models.Rule{Vendor: "  BLUE NOTE ", TagType: models.TagGenre, Value: "Jazz", CertaintyPercent: 70}

	if n := ApplyRule(rule, groups, store); n != 2 {
		t.Errorf("normalized vendor match applied %d, want 2", n)
	}
}

func TestApplyRuleFillsEmptyValue(t *testing.T) {
	groups, store, _ := applyFixture()
	store.Set("p2", models.TagGenre, &models.CertaintyEntry{Value: "", Percent: 99, Source: models.SourceManual})
	rule := models.Rule{Vendor: "Blue Note", TagType: models.TagGenre, Value: "Jazz", CertaintyPercent: 70}

	ApplyRule(rule, groups, store)
	if e := store.Entry("p2", models.TagGenre); e.Value != "Jazz" || e.Percent != 70 {
		t.Errorf("valueless entry not replaced: %+v", e)
	}
}
