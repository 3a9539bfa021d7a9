// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package engine

import (
	"testing"

	"github.com/mracine/tagquest/internal/models"
)

func TestNormalizeVendor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Blue Note", "blue note"},
		{"  Blue Note  ", "blue note"},
		{"BLUE NOTE", "blue note"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeVendor(tt.in); got != tt.want {
			t.Errorf("NormalizeVendor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildVendorGroups(t *testing.T) {
	products := []*models.Product{
		{Handle: "p1", Vendor: "Blue Note", ExistingGenre: "Jazz", ExistingDecade: "50C"},
		{Handle: "p2", Vendor: "Blue Note", ExistingGenre: "Jazz"},
		{Handle: "p3", Vendor: "Blue Note"},
		{Handle: "p4", Vendor: "Motown", ExistingGenre: "Soul"},
	}

	groups := BuildVendorGroups(products)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	bn := groups["blue note"]
	if bn == nil {
		t.Fatal("missing blue note group")
	}
	if len(bn.Products) != 3 {
		t.Errorf("blue note products = %d, want 3", len(bn.Products))
	}
	if bn.Genres["Jazz"] != 2 {
		t.Errorf("blue note Jazz count = %d, want 2", bn.Genres["Jazz"])
	}
	if bn.Decades["50C"] != 1 {
		t.Errorf("blue note 50C count = %d, want 1", bn.Decades["50C"])
	}
	if bn.Name != "Blue Note" {
		t.Errorf("display name = %q, want %q", bn.Name, "Blue Note")
	}
}

func TestBuildVendorGroupsNormalizesNearDuplicates(t *testing.T) {
	products := []*models.Product{
		{Handle: "p1", Vendor: "Blue Note"},
		{Handle: "p2", Vendor: "blue note "},
		{Handle: "p3", Vendor: " BLUE NOTE"},
	}

	groups := BuildVendorGroups(products)
	if len(groups) != 1 {
		t.Fatalf("expected near-duplicate vendors to merge into 1 group, got %d", len(groups))
	}
	g := groups["blue note"]
	if len(g.Products) != 3 {
		t.Errorf("merged group products = %d, want 3", len(g.Products))
	}
	if g.Name != "Blue Note" {
		t.Errorf("display name = %q, want first-seen %q", g.Name, "Blue Note")
	}
}

func TestBuildVendorGroupsSkipsEmptyTagValues(t *testing.T) {
	products := []*models.Product{
		{Handle: "p1", Vendor: "V"},
		{Handle: "p2", Vendor: "V"},
	}
	g := BuildVendorGroups(products)["v"]
	if len(g.Genres) != 0 || len(g.Decades) != 0 {
		t.Errorf("empty tag values must not be counted: genres=%v decades=%v", g.Genres, g.Decades)
	}
}
