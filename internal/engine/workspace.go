// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mracine/tagquest/internal/models"
)

var (
	// ErrQuestionNotFound means the id is not in the current queue; the
	// catalog may have changed or the question was already answered.
	ErrQuestionNotFound = errors.New("question not found in current queue")

	// ErrAnswerNotFound means no history entry carries the given question id.
	ErrAnswerNotFound = errors.New("answer not found in history")

	// ErrMetaQuestionNotFound means no queued questions share the requested
	// tag type and value across more than one vendor.
	ErrMetaQuestionNotFound = errors.New("meta-question not found in current queue")

	// ErrAnswerContext means an answer edit could not recover the suggested
	// value; the edit fails closed and no rule is synthesized.
	ErrAnswerContext = errors.New("cannot recover suggested value from answer context")
)

// suggestedValueFromText recovers the quoted value from legacy question text
// such as `Should all "Blue Note" products be "Jazz"?`.
var suggestedValueFromText = regexp.MustCompile(`be "([^"]+)"\?`)

// Workspace is one session's in-memory working set: the shared catalog, its
// derived vendor groups, and the session's rules, answers and certainty
// store. The zero value is unusable; construct with NewWorkspace.
//
// A Workspace is single-threaded by design. Callers serialize access per
// session and never share one across sessions.
type Workspace struct {
	cfg      Config
	products []*models.Product
	groups   map[string]*models.VendorGroup
	store    *CertaintyStore
	rules    []models.Rule
	answers  []models.Answer
}

// NewWorkspace returns an empty workspace with the given generation policy.
func NewWorkspace(cfg Config) *Workspace {
	return &Workspace{
		cfg:    cfg,
		groups: make(map[string]*models.VendorGroup),
		store:  NewCertaintyStore(),
	}
}

// LoadCatalog replaces the working catalog: vendor groups are rebuilt, the
// certainty store is reseeded from existing tags, and any loaded rules are
// reapplied on top. Reapplication is safe to repeat; rules only ever raise
// confidence.
func (w *Workspace) LoadCatalog(products []*models.Product) {
	w.products = products
	w.groups = BuildVendorGroups(products)
	w.store.Seed(products)
	for _, r := range w.rules {
		ApplyRule(r, w.groups, w.store)
	}
}

// LoadSession replaces the rule set and answer history, then reapplies all
// rules against the current catalog.
func (w *Workspace) LoadSession(rules []models.Rule, answers []models.Answer) {
	w.rules = rules
	w.answers = answers
	w.store.Seed(w.products)
	for _, r := range w.rules {
		ApplyRule(r, w.groups, w.store)
	}
}

// Products returns the loaded catalog.
func (w *Workspace) Products() []*models.Product { return w.products }

// Rules returns the session's rule set.
func (w *Workspace) Rules() []models.Rule { return w.rules }

// Answers returns the session's answer history.
func (w *Workspace) Answers() []models.Answer { return w.answers }

// VendorGroups returns the derived vendor view, keyed by normalized name.
func (w *Workspace) VendorGroups() map[string]*models.VendorGroup { return w.groups }

// Certainty returns the entry for one product and tag type, nil when unset.
func (w *Workspace) Certainty(handle string, t models.TagType) *models.CertaintyEntry {
	return w.store.Entry(handle, t)
}

// CertaintyRecords flattens the certainty store for persistence.
func (w *Workspace) CertaintyRecords() []models.CertaintyRecord {
	return w.store.Records()
}

// Questions regenerates the ranked queue, excluding answered questions.
func (w *Workspace) Questions() []models.Question {
	return GenerateQuestions(w.groups, w.answeredIDs(), w.cfg)
}

// MetaQuestions groups the current queue into cross-vendor questions.
func (w *Workspace) MetaQuestions() []models.MetaQuestion {
	return GroupMetaQuestions(w.Questions(), w.groups)
}

func (w *Workspace) answeredIDs() map[string]bool {
	ids := make(map[string]bool, len(w.answers))
	for _, a := range w.answers {
		ids[a.QuestionID] = true
	}
	return ids
}

// AnswerQuestion records a response to the queued question with the given
// id. The question's vendor, tag type, suggested value and existing share are
// denormalized onto the Answer so later edits never re-derive them from text.
// A "yes" creates a rule and applies it immediately; the created rule is
// returned, nil otherwise.
func (w *Workspace) AnswerQuestion(questionID, response string) (*models.Rule, error) {
	var question *models.Question
	for _, q := range w.Questions() {
		if q.ID == questionID {
			q := q
			question = &q
			break
		}
	}
	if question == nil {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}

	w.answers = append(w.answers, answerFor(*question, response))
	if response != models.AnswerYes {
		return nil, nil
	}

	rule := NewRuleFromQuestion(*question, ReasonConfirmed)
	w.rules = append(w.rules, rule)
	ApplyRule(rule, w.groups, w.store)
	return &rule, nil
}

// AnswerMetaQuestion answers every queued question suggesting value for tag
// type t at once. One Answer entry is recorded per vendor so each underlying
// question stays excluded from future generation, and on "yes" one rule is
// created per vendor using that vendor's own existing share.
func (w *Workspace) AnswerMetaQuestion(t models.TagType, value, response string) ([]models.Rule, error) {
	var matched []models.Question
	for _, q := range w.Questions() {
		if q.TagType == t && q.SuggestedValue == value {
			matched = append(matched, q)
		}
	}
	if len(matched) < 2 {
		return nil, fmt.Errorf("%w: %s %q", ErrMetaQuestionNotFound, t, value)
	}

	var created []models.Rule
	for _, q := range matched {
		w.answers = append(w.answers, answerFor(q, response))
		if response != models.AnswerYes {
			continue
		}
		rule := NewRuleFromQuestion(q, ReasonConfirmedMeta)
		w.rules = append(w.rules, rule)
		ApplyRule(rule, w.groups, w.store)
		created = append(created, rule)
	}
	return created, nil
}

// EditAnswer changes a recorded answer and reconciles the rule set.
//
// Changing yes to non-yes removes the matching rule (vendor + tag type);
// certainty already raised by the rule stays in place until the next catalog
// reload recomputes it from the remaining rules. Changing non-yes to yes
// synthesizes the rule from the answer's stored context; legacy rows without
// context fall back to parsing the question text at a fixed confidence, and
// the edit fails closed when even that is unparseable.
func (w *Workspace) EditAnswer(questionID, response string) error {
	idx := -1
	for i := len(w.answers) - 1; i >= 0; i-- {
		if w.answers[i].QuestionID == questionID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrAnswerNotFound, questionID)
	}

	prev := w.answers[idx]
	if prev.Answer == response {
		return nil
	}

	wasYes := prev.Answer == models.AnswerYes
	isYes := response == models.AnswerYes

	switch {
	case wasYes && !isYes:
		vendor, tagType, err := answerTarget(prev)
		if err != nil {
			return err
		}
		w.removeRule(vendor, tagType)
	case !wasYes && isYes:
		vendor, tagType, err := answerTarget(prev)
		if err != nil {
			return err
		}
		rule, err := ruleFromAnswer(prev, vendor, tagType)
		if err != nil {
			return err
		}
		w.rules = append(w.rules, rule)
		ApplyRule(rule, w.groups, w.store)
	}

	w.answers[idx].Answer = response
	return nil
}

// removeRule drops every rule matching vendor and tag type. Matching is by
// normalized vendor, consistent with grouping.
func (w *Workspace) removeRule(vendor string, t models.TagType) {
	key := NormalizeVendor(vendor)
	kept := w.rules[:0]
	for _, r := range w.rules {
		if NormalizeVendor(r.Vendor) == key && r.TagType == t {
			continue
		}
		kept = append(kept, r)
	}
	w.rules = kept
}

// answerFor builds the history entry for a question response.
func answerFor(q models.Question, response string) models.Answer {
	return models.Answer{
		QuestionID:      q.ID,
		QuestionText:    q.Text,
		Answer:          response,
		Vendor:          q.Vendor,
		TagType:         q.TagType,
		SuggestedValue:  q.SuggestedValue,
		ExistingPercent: q.ExistingPercent,
	}
}

// answerTarget resolves the vendor and tag type an answer refers to, using
// stored context first and the question id as a legacy fallback.
func answerTarget(a models.Answer) (string, models.TagType, error) {
	if a.Vendor != "" && a.TagType.Valid() {
		return a.Vendor, a.TagType, nil
	}
	rest, ok := strings.CutPrefix(a.QuestionID, "vendor-")
	if !ok {
		return "", "", fmt.Errorf("%w: unrecognized question id %q", ErrAnswerContext, a.QuestionID)
	}
	tagType, vendor, ok := strings.Cut(rest, "-")
	if !ok || !models.TagType(tagType).Valid() || vendor == "" {
		return "", "", fmt.Errorf("%w: unrecognized question id %q", ErrAnswerContext, a.QuestionID)
	}
	return vendor, models.TagType(tagType), nil
}

// ruleFromAnswer rebuilds a rule for an answer edited to "yes". With stored
// context the confidence matches what a live answer would have produced;
// legacy rows fall back to the quoted value in the question text at a fixed
// confidence.
func ruleFromAnswer(a models.Answer, vendor string, t models.TagType) (models.Rule, error) {
	value := a.SuggestedValue
	certainty := editFallbackCertainty
	if value != "" && a.ExistingPercent > 0 {
		certainty = ruleCertainty(a.ExistingPercent)
	}
	if value == "" {
		m := suggestedValueFromText.FindStringSubmatch(a.QuestionText)
		if m == nil {
			return models.Rule{}, fmt.Errorf("%w: question %q", ErrAnswerContext, a.QuestionID)
		}
		value = m[1]
	}
	return models.Rule{
		Type:             fmt.Sprintf("vendor-%s", t),
		Vendor:           vendor,
		TagType:          t,
		Value:            value,
		CertaintyPercent: certainty,
		Reason:           ReasonConfirmedEdit,
	}, nil
}
