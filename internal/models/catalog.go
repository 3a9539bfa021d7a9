// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package models

// TagType identifies one of the three tag dimensions the engine classifies.
type TagType string

const (
	TagGenre    TagType = "genre"
	TagSubgenre TagType = "subgenre"
	TagDecade   TagType = "decade"
)

// Valid reports whether t is one of the known tag types.
func (t TagType) Valid() bool {
	switch t {
	case TagGenre, TagSubgenre, TagDecade:
		return true
	}
	return false
}

// Product is one catalog row. Products are owned by the global catalog and
// referenced, never mutated, by sessions.
type Product struct {
	Handle           string `json:"handle"`
	Title            string `json:"title"`
	Vendor           string `json:"vendor"`
	ExistingGenre    string `json:"existingGenre,omitempty"`
	ExistingSubgenre string `json:"existingSubgenre,omitempty"`
	ExistingDecade   string `json:"existingDecade,omitempty"`
}

// Existing returns the product's pre-existing value for a tag type,
// or "" when untagged.
func (p *Product) Existing(t TagType) string {
	switch t {
	case TagGenre:
		return p.ExistingGenre
	case TagSubgenre:
		return p.ExistingSubgenre
	case TagDecade:
		return p.ExistingDecade
	}
	return ""
}

// ParsedTags holds the labels extracted from a raw tag string.
// Any field may be empty when the corresponding token is absent.
type ParsedTags struct {
	Genre    string `json:"genre,omitempty"`
	Subgenre string `json:"subgenre,omitempty"`
	Decade   string `json:"decade,omitempty"`
}

// VendorGroup is the derived per-vendor view: member products plus frequency
// tables of the existing genre and decade values. Groups are recomputed from
// the catalog on demand and never persisted.
type VendorGroup struct {
	// Name is the first-seen original vendor string, retained for display.
	// Grouping uses a normalized key (trimmed, case-folded).
	Name     string         `json:"name"`
	Products []*Product     `json:"products"`
	Genres   map[string]int `json:"existingGenres"`
	Decades  map[string]int `json:"existingDecades"`
}

// Counts returns the frequency table for a tag type. Subgenre has no table;
// the engine never extrapolates subgenres across a vendor.
func (g *VendorGroup) Counts(t TagType) map[string]int {
	switch t {
	case TagGenre:
		return g.Genres
	case TagDecade:
		return g.Decades
	}
	return nil
}
