// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package validation

import (
	"strings"
	"testing"
)

type answerRequest struct {
	QuestionID string `validate:"required"`
	Answer     string `validate:"required,answer"`
}

type verifyRequest struct {
	Vendor  string `validate:"required,min=1,max=200"`
	TagType string `validate:"required,tagtype"`
	Value   string `validate:"required"`
}

func TestValidateStructPasses(t *testing.T) {
	req := answerRequest{QuestionID: "vendor-genre-Blue Note", Answer: "yes"}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

func TestValidateStructRequired(t *testing.T) {
	err := ValidateStruct(&answerRequest{Answer: "yes"})
	if err == nil {
		t.Fatal("expected error for missing QuestionID")
	}
	if len(err.Errors()) != 1 || err.Errors()[0].Field() != "QuestionID" {
		t.Errorf("errors = %+v", err.Errors())
	}
	if !strings.Contains(err.Error(), "QuestionID is required") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestAnswerValidator(t *testing.T) {
	for _, valid := range []string{"yes", "no", "skip"} {
		if err := ValidateStruct(&answerRequest{QuestionID: "q", Answer: valid}); err != nil {
			t.Errorf("answer %q rejected: %v", valid, err)
		}
	}
	err := ValidateStruct(&answerRequest{QuestionID: "q", Answer: "maybe"})
	if err == nil {
		t.Fatal("expected error for unrecognized answer")
	}
	if !strings.Contains(err.Error(), "yes, no, skip") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestTagTypeValidator(t *testing.T) {
	for _, valid := range []string{"genre", "subgenre", "decade"} {
		req := verifyRequest{Vendor: "V", TagType: valid, Value: "Jazz"}
		if err := ValidateStruct(&req); err != nil {
			t.Errorf("tag type %q rejected: %v", valid, err)
		}
	}
	err := ValidateStruct(&verifyRequest{Vendor: "V", TagType: "mood", Value: "Happy"})
	if err == nil {
		t.Fatal("expected error for unknown tag type")
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	err := ValidateStruct(&answerRequest{QuestionID: "q"})
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "Answer" {
		t.Errorf("details = %+v", apiErr.Details)
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	err := ValidateStruct(&verifyRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("errors = %d, want 3", len(err.Errors()))
	}
	apiErr := err.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Errorf("multi-error details missing fields: %+v", apiErr.Details)
	}
}

func TestMinMaxTranslation(t *testing.T) {
	long := strings.Repeat("v", 201)
	err := ValidateStruct(&verifyRequest{Vendor: long, TagType: "genre", Value: "Jazz"})
	if err == nil {
		t.Fatal("expected error for overlong vendor")
	}
	if !strings.Contains(err.Error(), "at most 200 characters") {
		t.Errorf("message = %q", err.Error())
	}
}
