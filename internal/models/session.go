// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package models

import "time"

// Certainty sources, ordered by trust: existing tags are ground truth from
// the catalog, rule entries are inferred, manual entries come from the
// operator directly.
const (
	SourceExisting = "existing"
	SourceRule     = "rule"
	SourceManual   = "manual"
)

// CertaintyEntry records one trusted tag assignment for a product.
// Percent is 0-100; 100 means directly observed in the source catalog.
type CertaintyEntry struct {
	Value   string `json:"value"`
	Percent int    `json:"pct"`
	Source  string `json:"source"`
}

// ProductCertainty is the fixed-shape certainty record for one product:
// one named field per tag type, nil until a value is known.
type ProductCertainty struct {
	Genre    *CertaintyEntry `json:"genre,omitempty"`
	Subgenre *CertaintyEntry `json:"subgenre,omitempty"`
	Decade   *CertaintyEntry `json:"decade,omitempty"`
}

// Entry returns the entry for a tag type, nil when unset or unknown.
func (c *ProductCertainty) Entry(t TagType) *CertaintyEntry {
	switch t {
	case TagGenre:
		return c.Genre
	case TagSubgenre:
		return c.Subgenre
	case TagDecade:
		return c.Decade
	}
	return nil
}

// SetEntry stores the entry for a tag type. Unknown tag types are ignored.
func (c *ProductCertainty) SetEntry(t TagType, e *CertaintyEntry) {
	switch t {
	case TagGenre:
		c.Genre = e
	case TagSubgenre:
		c.Subgenre = e
	case TagDecade:
		c.Decade = e
	}
}

// CertaintyRecord is the flattened persistence form of one certainty entry.
type CertaintyRecord struct {
	Handle  string  `json:"handle"`
	TagType TagType `json:"tagType"`
	Value   string  `json:"value"`
	Percent int     `json:"pct"`
	Source  string  `json:"source"`
}

// Rule generalizes one operator confirmation across a vendor's products:
// "all products from Vendor should have TagType = Value". Rules are created
// once per yes answer and never mutated, only appended or removed.
type Rule struct {
	Type             string  `json:"type"`
	Vendor           string  `json:"vendor"`
	TagType          TagType `json:"tagType"`
	Value            string  `json:"value"`
	CertaintyPercent int     `json:"certaintyPct"`
	Reason           string  `json:"reason"`
}

// Question is one ranked yes/no prompt derived from a vendor group.
// Questions are ephemeral: regenerated from the catalog and answer history,
// never persisted.
type Question struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	Context         string  `json:"context"`
	Impact          string  `json:"impact"`
	AffectedCount   int     `json:"affectedCount"`
	Type            string  `json:"type"`
	Vendor          string  `json:"vendor"`
	SuggestedValue  string  `json:"suggestedValue"`
	ExistingPercent int     `json:"existingPct"`
	TagType         TagType `json:"tagType"`
}

// Answer values with engine-defined meaning. Anything else is a freeform
// operator note.
const (
	AnswerYes  = "yes"
	AnswerNo   = "no"
	AnswerSkip = "skip"
)

// Answer is one entry in the append-only answer log. Vendor, TagType,
// SuggestedValue and ExistingPercent denormalize the question context so a
// later edit never has to re-derive them by parsing the id or prompt text.
type Answer struct {
	QuestionID   string `json:"questionId"`
	QuestionText string `json:"questionText"`
	Answer       string `json:"answer"`

	Vendor          string  `json:"vendor,omitempty"`
	TagType         TagType `json:"tagType,omitempty"`
	SuggestedValue  string  `json:"suggestedValue,omitempty"`
	ExistingPercent int     `json:"existingPct,omitempty"`
}

// IsDetailed reports whether the answer is a freeform note rather than a
// yes/no/skip response.
func (a *Answer) IsDetailed() bool {
	return a.Answer != AnswerYes && a.Answer != AnswerNo && a.Answer != AnswerSkip
}

// MetaQuestion groups several per-vendor questions that suggest the same tag
// value, so the operator can answer them all at once.
type MetaQuestion struct {
	TagType       TagType  `json:"tagType"`
	Value         string   `json:"value"`
	Vendors       []string `json:"vendors"`
	TotalProducts int      `json:"totalProducts"`
}

// Session is one operator working set: the answer history and derived rules
// and certainties for a pass over the shared catalog.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Rules       []Rule            `json:"rules,omitempty"`
	Answers     []Answer          `json:"answers,omitempty"`
	Certainties []CertaintyRecord `json:"certainties,omitempty"`

	// Counts summarizes the session for list views without loading children.
	Counts *SessionCounts `json:"_count,omitempty"`
}

// SessionCounts carries child-row counts for session list responses.
type SessionCounts struct {
	Rules   int `json:"rules"`
	Answers int `json:"answers"`
}
