// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package engine

import (
	"sort"

	"github.com/mracine/tagquest/internal/models"
)

// GroupMetaQuestions folds queued questions that suggest the same value for
// the same tag type into one cross-vendor question. Only groups spanning more
// than one vendor survive; ordering is by vendor count descending so the
// biggest effort saver comes first.
//
// TotalProducts counts each vendor's whole group, tagged products included;
// when a queue entry has no backing group it falls back to the question's
// affected count.
func GroupMetaQuestions(queue []models.Question, groups map[string]*models.VendorGroup) []models.MetaQuestion {
	type key struct {
		t     models.TagType
		value string
	}
	grouped := make(map[key]*models.MetaQuestion)
	var order []key
	for _, q := range queue {
		k := key{q.TagType, q.SuggestedValue}
		m, ok := grouped[k]
		if !ok {
			m = &models.MetaQuestion{TagType: q.TagType, Value: q.SuggestedValue}
			grouped[k] = m
			order = append(order, k)
		}
		m.Vendors = append(m.Vendors, q.Vendor)
		if g, ok := groups[NormalizeVendor(q.Vendor)]; ok {
			m.TotalProducts += len(g.Products)
		} else {
			m.TotalProducts += q.AffectedCount
		}
	}

	var metas []models.MetaQuestion
	for _, k := range order {
		if m := grouped[k]; len(m.Vendors) > 1 {
			metas = append(metas, *m)
		}
	}
	sort.SliceStable(metas, func(i, j int) bool {
		return len(metas[i].Vendors) > len(metas[j].Vendors)
	})
	return metas
}
