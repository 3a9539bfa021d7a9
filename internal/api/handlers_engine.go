// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package api

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mracine/tagquest/internal/engine"
	"github.com/mracine/tagquest/internal/metrics"
	"github.com/mracine/tagquest/internal/models"
)

type answerRequest struct {
	QuestionID string `json:"questionId" validate:"required,max=300"`
	Answer     string `json:"answer" validate:"required,max=500"`
}

type metaAnswerRequest struct {
	TagType models.TagType `json:"tagType" validate:"required,tagtype"`
	Value   string         `json:"value" validate:"required,max=200"`
	Answer  string         `json:"answer" validate:"required,max=500"`
}

// Questions returns the ranked question queue for a session.
func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var questions []models.Question
	err := h.workspaces.With(r.Context(), chi.URLParam(r, "id"), func(ws *engine.Workspace) error {
		questions = ws.Questions()
		return nil
	})
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	metrics.QuestionsGenerated.Set(float64(len(questions)))
	respondData(w, http.StatusOK, map[string]interface{}{
		"questions": questions,
		"total":     len(questions),
	}, start)
}

// MetaQuestions returns cross-vendor question groups.
func (h *Handler) MetaQuestions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var meta []models.MetaQuestion
	err := h.workspaces.With(r.Context(), chi.URLParam(r, "id"), func(ws *engine.Workspace) error {
		meta = ws.MetaQuestions()
		return nil
	})
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"metaQuestions": meta,
		"total":         len(meta),
	}, start)
}

// AnswerQuestion records a response. A yes creates and applies a rule.
func (h *Handler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var rule *models.Rule
	var raised int
	err := h.workspaces.Update(r.Context(), chi.URLParam(r, "id"), func(ws *engine.Workspace) error {
		before := countRuleCertainties(ws)
		var err error
		rule, err = ws.AnswerQuestion(req.QuestionID, req.Answer)
		raised = countRuleCertainties(ws) - before
		return err
	})
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	metrics.AnswersTotal.WithLabelValues(answerBucket(req.Answer)).Inc()
	if rule != nil {
		metrics.RulesApplied.Inc()
		metrics.CertaintyEntriesRaised.Add(float64(raised))
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"questionId": req.QuestionID,
		"answer":     req.Answer,
		"rule":       rule,
	}, start)
}

// AnswerMetaQuestion answers a whole cross-vendor group at once.
func (h *Handler) AnswerMetaQuestion(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req metaAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var rules []models.Rule
	var raised int
	err := h.workspaces.Update(r.Context(), chi.URLParam(r, "id"), func(ws *engine.Workspace) error {
		before := countRuleCertainties(ws)
		var err error
		rules, err = ws.AnswerMetaQuestion(req.TagType, req.Value, req.Answer)
		raised = countRuleCertainties(ws) - before
		return err
	})
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	metrics.AnswersTotal.WithLabelValues(answerBucket(req.Answer)).Inc()
	if len(rules) > 0 {
		metrics.RulesApplied.Add(float64(len(rules)))
		metrics.CertaintyEntriesRaised.Add(float64(raised))
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"tagType": req.TagType,
		"value":   req.Value,
		"answer":  req.Answer,
		"rules":   rules,
	}, start)
}

// EditAnswer revises a recorded answer and reconciles the rule set.
func (h *Handler) EditAnswer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.workspaces.Update(r.Context(), chi.URLParam(r, "id"), func(ws *engine.Workspace) error {
		return ws.EditAnswer(req.QuestionID, req.Answer)
	})
	if err != nil {
		h.respondEngineError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"questionId": req.QuestionID,
		"answer":     req.Answer,
	}, start)
}

// Stats returns the dashboard progress summary.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var stats models.Stats
	err := h.workspaces.With(r.Context(), chi.URLParam(r, "id"), func(ws *engine.Workspace) error {
		stats = ws.Stats()
		return nil
	})
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	respondData(w, http.StatusOK, stats, start)
}

// DetailedStats returns per-tag-type coverage buckets.
func (h *Handler) DetailedStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var stats models.DetailedStats
	err := h.workspaces.With(r.Context(), chi.URLParam(r, "id"), func(ws *engine.Workspace) error {
		stats = ws.DetailedStats()
		return nil
	})
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	respondData(w, http.StatusOK, stats, start)
}

// Playbook returns the bulk-edit steps for high-confidence inferences.
func (h *Handler) Playbook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var steps []models.PlaybookStep
	err := h.workspaces.With(r.Context(), chi.URLParam(r, "id"), func(ws *engine.Workspace) error {
		steps = ws.Playbook()
		return nil
	})
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"steps": steps,
		"total": len(steps),
	}, start)
}

// vendorSummary is the explorer view of one vendor group.
type vendorSummary struct {
	Vendor          string         `json:"vendor"`
	ProductCount    int            `json:"productCount"`
	ExistingGenres  map[string]int `json:"existingGenres"`
	ExistingDecades map[string]int `json:"existingDecades"`
}

// Explorer returns the vendor groups plus suspicious vendor flags.
func (h *Handler) Explorer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var vendors []vendorSummary
	var suspicious []models.SuspiciousVendor
	err := h.workspaces.With(r.Context(), chi.URLParam(r, "id"), func(ws *engine.Workspace) error {
		for _, g := range ws.VendorGroups() {
			vendors = append(vendors, vendorSummary{
				Vendor:          g.Name,
				ProductCount:    len(g.Products),
				ExistingGenres:  g.Genres,
				ExistingDecades: g.Decades,
			})
		}
		suspicious = ws.SuspiciousVendors()
		return nil
	})
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	sort.Slice(vendors, func(i, j int) bool {
		if vendors[i].ProductCount != vendors[j].ProductCount {
			return vendors[i].ProductCount > vendors[j].ProductCount
		}
		return vendors[i].Vendor < vendors[j].Vendor
	})
	respondData(w, http.StatusOK, map[string]interface{}{
		"vendors":    vendors,
		"suspicious": suspicious,
	}, start)
}

func (h *Handler) respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrQuestionNotFound):
		respondError(w, http.StatusNotFound, "QUESTION_NOT_FOUND", "Question not in the current queue", nil)
	case errors.Is(err, engine.ErrMetaQuestionNotFound):
		respondError(w, http.StatusNotFound, "META_QUESTION_NOT_FOUND", "No matching meta-question group", nil)
	case errors.Is(err, engine.ErrAnswerNotFound):
		respondError(w, http.StatusNotFound, "ANSWER_NOT_FOUND", "No recorded answer for that question", nil)
	case errors.Is(err, engine.ErrAnswerContext):
		respondError(w, http.StatusConflict, "ANSWER_CONTEXT_LOST", "Answer lacks the context needed to rebuild its rule", err)
	default:
		h.respondSessionError(w, err)
	}
}

func answerBucket(answer string) string {
	switch answer {
	case models.AnswerYes, models.AnswerNo, models.AnswerSkip:
		return answer
	}
	return "detailed"
}

func countRuleCertainties(ws *engine.Workspace) int {
	n := 0
	for _, rec := range ws.CertaintyRecords() {
		if rec.Source == models.SourceRule {
			n++
		}
	}
	return n
}
