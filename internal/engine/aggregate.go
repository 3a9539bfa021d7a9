// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package engine

import (
	"strings"

	"github.com/mracine/tagquest/internal/models"
)

// NormalizeVendor returns the grouping key for a vendor string. Near-duplicate
// vendor names (trailing whitespace, case variants) must land in the same
// group; the first-seen original string is kept on the group for display.
func NormalizeVendor(vendor string) string {
	return strings.ToLower(strings.TrimSpace(vendor))
}

// BuildVendorGroups groups the catalog by normalized vendor name and tallies
// each group's existing genre and decade values. Empty tag values are not
// counted. No vendor is excluded here; noise-vendor exclusion is question
// generation policy.
func BuildVendorGroups(products []*models.Product) map[string]*models.VendorGroup {
	groups := make(map[string]*models.VendorGroup)
	for _, p := range products {
		key := NormalizeVendor(p.Vendor)
		g, ok := groups[key]
		if !ok {
			g = &models.VendorGroup{
				Name:    strings.TrimSpace(p.Vendor),
				Genres:  make(map[string]int),
				Decades: make(map[string]int),
			}
			groups[key] = g
		}
		g.Products = append(g.Products, p)
		if p.ExistingGenre != "" {
			g.Genres[p.ExistingGenre]++
		}
		if p.ExistingDecade != "" {
			g.Decades[p.ExistingDecade]++
		}
	}
	return groups
}
