// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package engine

import (
	"errors"
	"testing"

	"github.com/mracine/tagquest/internal/models"
)

// threeVendorCatalog is the canonical fixture: Vendor A has 6 of 10 products
// tagged Jazz, B is fully tagged, C is fully untagged.
func threeVendorCatalog() []*models.Product {
	var products []*models.Product
	products = append(products, vendorProducts("A", map[string]int{"Jazz": 6}, 4)...)
	products = append(products, vendorProducts("B", map[string]int{"Soul": 10}, 0)...)
	products = append(products, vendorProducts("C", nil, 10)...)
	return products
}

func newTestWorkspace(t *testing.T, products []*models.Product) *Workspace {
	t.Helper()
	w := NewWorkspace(DefaultConfig())
	w.LoadCatalog(products)
	return w
}

func TestWorkspaceEndToEnd(t *testing.T) {
	products := threeVendorCatalog()
	w := newTestWorkspace(t, products)

	qs := w.Questions()
	if len(qs) != 1 {
		t.Fatalf("expected 1 question, got %d: %+v", len(qs), qs)
	}
	q := qs[0]
	if q.ID != "vendor-genre-A" || q.AffectedCount != 4 || q.SuggestedValue != "Jazz" || q.ExistingPercent != 60 {
		t.Fatalf("unexpected question: %+v", q)
	}

	rule, err := w.AnswerQuestion(q.ID, models.AnswerYes)
	if err != nil {
		t.Fatalf("AnswerQuestion: %v", err)
	}
	if rule == nil || rule.Vendor != "A" || rule.TagType != models.TagGenre ||
		rule.Value != "Jazz" || rule.CertaintyPercent != 70 {
		t.Fatalf("unexpected rule: %+v", rule)
	}
	if rule.Reason != ReasonConfirmed {
		t.Errorf("reason = %q", rule.Reason)
	}

	// The 4 untagged products rise to 70/rule, the 6 tagged stay 100/existing.
	raised, kept := 0, 0
	for _, p := range products {
		if p.Vendor != "A" {
			continue
		}
		e := w.Certainty(p.Handle, models.TagGenre)
		if e == nil {
			t.Errorf("%s has no genre entry after rule", p.Handle)
			continue
		}
		switch e.Source {
		case models.SourceRule:
			if e.Value != "Jazz" || e.Percent != 70 {
				t.Errorf("%s rule entry = %+v", p.Handle, e)
			}
			raised++
		case models.SourceExisting:
			if e.Percent != 100 {
				t.Errorf("%s existing entry changed: %+v", p.Handle, e)
			}
			kept++
		}
	}
	if raised != 4 || kept != 6 {
		t.Errorf("raised=%d kept=%d, want 4/6", raised, kept)
	}

	// The answered question never resurfaces.
	if remaining := w.Questions(); len(remaining) != 0 {
		t.Errorf("answered question resurfaced: %+v", remaining)
	}
}

func TestWorkspaceAnswerNo(t *testing.T) {
	w := newTestWorkspace(t, threeVendorCatalog())

	rule, err := w.AnswerQuestion("vendor-genre-A", models.AnswerNo)
	if err != nil {
		t.Fatalf("AnswerQuestion: %v", err)
	}
	if rule != nil {
		t.Errorf("no answer created rule %+v", rule)
	}
	if len(w.Rules()) != 0 {
		t.Errorf("rules = %+v, want none", w.Rules())
	}
	if len(w.Questions()) != 0 {
		t.Errorf("no-answered question resurfaced")
	}
	if len(w.Answers()) != 1 {
		t.Fatalf("answers = %d, want 1", len(w.Answers()))
	}

	a := w.Answers()[0]
	if a.Vendor != "A" || a.TagType != models.TagGenre || a.SuggestedValue != "Jazz" || a.ExistingPercent != 60 {
		t.Errorf("answer context not denormalized: %+v", a)
	}
}

func TestWorkspaceAnswerUnknownQuestion(t *testing.T) {
	w := newTestWorkspace(t, threeVendorCatalog())
	if _, err := w.AnswerQuestion("vendor-genre-Nobody", models.AnswerYes); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestWorkspaceMetaFanOut(t *testing.T) {
	var products []*models.Product
	// Two vendors with the same dominant decade at different shares.
	for i := 0; i < 6; i++ {
		products = append(products, &models.Product{Handle: "x" + string(rune('0'+i)), Vendor: "X", ExistingDecade: "80C"})
	}
	products = append(products,
		&models.Product{Handle: "x6", Vendor: "X"},
		&models.Product{Handle: "x7", Vendor: "X"},
		&models.Product{Handle: "x8", Vendor: "X"},
		&models.Product{Handle: "x9", Vendor: "X"},
	)
	for i := 0; i < 9; i++ {
		products = append(products, &models.Product{Handle: "y" + string(rune('0'+i)), Vendor: "Y", ExistingDecade: "80C"})
	}
	products = append(products, &models.Product{Handle: "y9", Vendor: "Y"})

	w := newTestWorkspace(t, products)

	metas := w.MetaQuestions()
	if len(metas) != 1 || metas[0].Value != "80C" || len(metas[0].Vendors) != 2 {
		t.Fatalf("metas = %+v", metas)
	}

	rules, err := w.AnswerMetaQuestion(models.TagDecade, "80C", models.AnswerYes)
	if err != nil {
		t.Fatalf("AnswerMetaQuestion: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules = %d, want 2", len(rules))
	}

	// Each rule uses its own vendor's existing share: X 60% -> 70, Y 90% -> 95 (capped).
	byVendor := map[string]models.Rule{}
	for _, r := range rules {
		byVendor[r.Vendor] = r
		if r.Reason != ReasonConfirmedMeta {
			t.Errorf("reason = %q", r.Reason)
		}
	}
	if byVendor["X"].CertaintyPercent != 70 {
		t.Errorf("X certainty = %d, want 70", byVendor["X"].CertaintyPercent)
	}
	if byVendor["Y"].CertaintyPercent != 95 {
		t.Errorf("Y certainty = %d, want 95 (capped)", byVendor["Y"].CertaintyPercent)
	}

	// One history entry per vendor; both questions stay excluded.
	if len(w.Answers()) != 2 {
		t.Errorf("answers = %d, want 2", len(w.Answers()))
	}
	if len(w.Questions()) != 0 {
		t.Errorf("meta-answered questions resurfaced: %+v", w.Questions())
	}
}

func TestWorkspaceMetaNotFound(t *testing.T) {
	w := newTestWorkspace(t, threeVendorCatalog())
	if _, err := w.AnswerMetaQuestion(models.TagGenre, "Jazz", models.AnswerYes); !errors.Is(err, ErrMetaQuestionNotFound) {
		t.Errorf("err = %v, want ErrMetaQuestionNotFound (single vendor)", err)
	}
}

func TestWorkspaceEditAnswerYesToNo(t *testing.T) {
	w := newTestWorkspace(t, threeVendorCatalog())
	if _, err := w.AnswerQuestion("vendor-genre-A", models.AnswerYes); err != nil {
		t.Fatal(err)
	}

	if err := w.EditAnswer("vendor-genre-A", models.AnswerNo); err != nil {
		t.Fatalf("EditAnswer: %v", err)
	}
	if len(w.Rules()) != 0 {
		t.Errorf("rule not removed: %+v", w.Rules())
	}
	if w.Answers()[0].Answer != models.AnswerNo {
		t.Errorf("answer not updated: %+v", w.Answers()[0])
	}

	// Raised certainty stays until the next catalog reload recomputes it.
	if e := w.Certainty("A-6", models.TagGenre); e == nil || e.Percent != 70 {
		t.Errorf("certainty unexpectedly reverted: %+v", e)
	}
	w.LoadCatalog(w.Products())
	if e := w.Certainty("A-6", models.TagGenre); e != nil {
		t.Errorf("reload should drop retracted rule's certainty, got %+v", e)
	}
}

func TestWorkspaceEditAnswerNoToYes(t *testing.T) {
	w := newTestWorkspace(t, threeVendorCatalog())
	if _, err := w.AnswerQuestion("vendor-genre-A", models.AnswerNo); err != nil {
		t.Fatal(err)
	}

	if err := w.EditAnswer("vendor-genre-A", models.AnswerYes); err != nil {
		t.Fatalf("EditAnswer: %v", err)
	}
	if len(w.Rules()) != 1 {
		t.Fatalf("rules = %+v, want 1", w.Rules())
	}

	r := w.Rules()[0]
	// Stored context gives the same confidence a live yes would have: 60 + 10.
	if r.CertaintyPercent != 70 || r.Value != "Jazz" || r.Reason != ReasonConfirmedEdit {
		t.Errorf("rule = %+v", r)
	}
	if e := w.Certainty("A-6", models.TagGenre); e == nil || e.Percent != 70 {
		t.Errorf("rule not applied after edit: %+v", e)
	}
}

func TestWorkspaceEditAnswerLegacyFallback(t *testing.T) {
	w := newTestWorkspace(t, threeVendorCatalog())
	// Legacy row: no denormalized context, only id and text.
	w.LoadSession(nil, []models.Answer{{
		QuestionID:   "vendor-genre-A",
		QuestionText: `Should all "A" products be "Jazz"?`,
		Answer:       models.AnswerNo,
	}})

	if err := w.EditAnswer("vendor-genre-A", models.AnswerYes); err != nil {
		t.Fatalf("EditAnswer: %v", err)
	}
	r := w.Rules()[0]
	if r.Value != "Jazz" || r.CertaintyPercent != 85 {
		t.Errorf("legacy fallback rule = %+v, want Jazz at 85", r)
	}
	if r.Vendor != "A" || r.TagType != models.TagGenre {
		t.Errorf("target parsed from id wrong: %+v", r)
	}
}

func TestWorkspaceEditAnswerFailsClosed(t *testing.T) {
	w := newTestWorkspace(t, threeVendorCatalog())
	w.LoadSession(nil, []models.Answer{{
		QuestionID:   "vendor-genre-A",
		QuestionText: "free-form note with no quoted value",
		Answer:       models.AnswerNo,
	}})

	err := w.EditAnswer("vendor-genre-A", models.AnswerYes)
	if !errors.Is(err, ErrAnswerContext) {
		t.Fatalf("err = %v, want ErrAnswerContext", err)
	}
	if len(w.Rules()) != 0 {
		t.Errorf("rule synthesized despite unparseable context: %+v", w.Rules())
	}
	if w.Answers()[0].Answer != models.AnswerNo {
		t.Errorf("answer mutated on failed edit: %+v", w.Answers()[0])
	}
}

func TestWorkspaceEditAnswerMissing(t *testing.T) {
	w := newTestWorkspace(t, threeVendorCatalog())
	if err := w.EditAnswer("vendor-genre-A", models.AnswerYes); !errors.Is(err, ErrAnswerNotFound) {
		t.Errorf("err = %v, want ErrAnswerNotFound", err)
	}
}

func TestWorkspaceLoadSessionReappliesRules(t *testing.T) {
	products := threeVendorCatalog()
	w := newTestWorkspace(t, products)

	rules := []models.Rule{{
		Type: "vendor-genre", Vendor: "C", TagType: models.TagGenre,
		Value: "Electronic", CertaintyPercent: 75, Reason: ReasonConfirmed,
	}}
	w.LoadSession(rules, nil)

	if e := w.Certainty("C-0", models.TagGenre); e == nil || e.Value != "Electronic" || e.Percent != 75 {
		t.Errorf("rule not reapplied on session load: %+v", e)
	}

	// Repeated reloads are idempotent.
	w.LoadSession(rules, nil)
	w.LoadCatalog(products)
	if e := w.Certainty("C-0", models.TagGenre); e == nil || e.Percent != 75 {
		t.Errorf("idempotent reload broke certainty: %+v", e)
	}
}
