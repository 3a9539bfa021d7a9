// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package engine

import (
	"sort"

	"github.com/mracine/tagquest/internal/models"
)

// CertaintyStore tracks the trusted tag assignment per product and tag type.
// Entries sourced from existing catalog tags are seeded at confidence 100;
// rule application may only raise confidence, never lower it.
//
// A store belongs to exactly one session. Nothing here locks; concurrent
// sessions must use independent stores.
type CertaintyStore struct {
	entries map[string]*models.ProductCertainty
}

// NewCertaintyStore returns an empty store.
func NewCertaintyStore() *CertaintyStore {
	return &CertaintyStore{entries: make(map[string]*models.ProductCertainty)}
}

// Seed resets the store from the catalog's existing tags. Every non-empty
// existing value becomes a confidence-100 entry with source "existing".
func (s *CertaintyStore) Seed(products []*models.Product) {
	s.entries = make(map[string]*models.ProductCertainty, len(products))
	for _, p := range products {
		for _, t := range []models.TagType{models.TagGenre, models.TagSubgenre, models.TagDecade} {
			if v := p.Existing(t); v != "" {
				s.Set(p.Handle, t, &models.CertaintyEntry{
					Value:   v,
					Percent: 100,
					Source:  models.SourceExisting,
				})
			}
		}
	}
}

// Get returns the full certainty record for a product, nil when the product
// has no entries yet.
func (s *CertaintyStore) Get(handle string) *models.ProductCertainty {
	return s.entries[handle]
}

// Entry returns the entry for one product and tag type, nil when unset.
func (s *CertaintyStore) Entry(handle string, t models.TagType) *models.CertaintyEntry {
	c := s.entries[handle]
	if c == nil {
		return nil
	}
	return c.Entry(t)
}

// Set stores an entry unconditionally. Callers enforcing the
// monotonic-improvement invariant go through ApplyRule instead.
func (s *CertaintyStore) Set(handle string, t models.TagType, e *models.CertaintyEntry) {
	c := s.entries[handle]
	if c == nil {
		c = &models.ProductCertainty{}
		s.entries[handle] = c
	}
	c.SetEntry(t, e)
}

// Len returns the number of products with at least one entry.
func (s *CertaintyStore) Len() int {
	return len(s.entries)
}

// Records flattens the store into persistence rows, ordered by handle then
// tag type so repeated saves of the same state are byte-identical.
func (s *CertaintyStore) Records() []models.CertaintyRecord {
	handles := make([]string, 0, len(s.entries))
	for h := range s.entries {
		handles = append(handles, h)
	}
	sort.Strings(handles)

	var recs []models.CertaintyRecord
	for _, h := range handles {
		c := s.entries[h]
		for _, t := range []models.TagType{models.TagGenre, models.TagSubgenre, models.TagDecade} {
			if e := c.Entry(t); e != nil {
				recs = append(recs, models.CertaintyRecord{
					Handle:  h,
					TagType: t,
					Value:   e.Value,
					Percent: e.Percent,
					Source:  e.Source,
				})
			}
		}
	}
	return recs
}

// LoadRecords merges persisted rows back into the store. Rows with an unknown
// tag type are dropped.
func (s *CertaintyStore) LoadRecords(recs []models.CertaintyRecord) {
	for _, r := range recs {
		if !r.TagType.Valid() {
			continue
		}
		s.Set(r.Handle, r.TagType, &models.CertaintyEntry{
			Value:   r.Value,
			Percent: r.Percent,
			Source:  r.Source,
		})
	}
}
