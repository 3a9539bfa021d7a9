// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package engine

import (
	"github.com/mracine/tagquest/internal/logging"
	"github.com/mracine/tagquest/internal/models"
)

// Rule confidence policy. Inferred rules are capped below full certainty so
// they can never be mistaken for directly observed tags.
const (
	maxRuleCertainty      = 95
	ruleCertaintyBoost    = 10
	editFallbackCertainty = 85
)

// Rule reasons recorded for audit.
const (
	ReasonConfirmed     = "User confirmed"
	ReasonConfirmedMeta = "User confirmed (meta-question)"
	ReasonConfirmedEdit = "User confirmed (edited)"
)

// ruleCertainty maps a vendor's existing-tag share to rule confidence.
func ruleCertainty(existingPercent int) int {
	pct := existingPercent + ruleCertaintyBoost
	if pct > maxRuleCertainty {
		pct = maxRuleCertainty
	}
	return pct
}

// NewRuleFromQuestion converts a confirmed question into a vendor rule.
// Higher pre-existing coverage yields higher confidence, capped at 95.
func NewRuleFromQuestion(q models.Question, reason string) models.Rule {
	return models.Rule{
		Type:             q.Type,
		Vendor:           q.Vendor,
		TagType:          q.TagType,
		Value:            q.SuggestedValue,
		CertaintyPercent: ruleCertainty(q.ExistingPercent),
		Reason:           reason,
	}
}

// ApplyRule raises certainty for every product of the rule's vendor and
// returns how many entries changed. An entry is only written when it is
// currently unset, has no value, or sits strictly below the rule's
// confidence; rules never downgrade and reapplying a rule is a no-op.
//
// A rule referencing a vendor absent from the group map is logged and
// skipped; the catalog and rule set may legitimately be out of sync after a
// catalog swap.
func ApplyRule(rule models.Rule, groups map[string]*models.VendorGroup, store *CertaintyStore) int {
	g, ok := groups[NormalizeVendor(rule.Vendor)]
	if !ok {
		logging.Warn().
			Str("vendor", rule.Vendor).
			Str("tag_type", string(rule.TagType)).
			Msg("Rule references vendor absent from catalog, skipping")
		return 0
	}

	applied := 0
	for _, p := range g.Products {
		cur := store.Entry(p.Handle, rule.TagType)
		if cur != nil && cur.Value != "" && cur.Percent >= rule.CertaintyPercent {
			continue
		}
		store.Set(p.Handle, rule.TagType, &models.CertaintyEntry{
			Value:   rule.Value,
			Percent: rule.CertaintyPercent,
			Source:  models.SourceRule,
		})
		applied++
	}
	return applied
}
