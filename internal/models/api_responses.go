// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package models

import "time"

// APIResponse is the standardized response envelope used by all HTTP
// endpoints.
//
// Status field values:
//   - "success": request completed, see Data
//   - "error": request failed, see Error
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError carries a machine-readable code plus a human-readable message.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Stats is the session progress summary shown on the dashboard.
// High/Medium/Low bucket products by genre confidence (>=80, >=50, rest);
// Percent is the share of products in the high bucket.
type Stats struct {
	High    int `json:"high"`
	Medium  int `json:"medium"`
	Low     int `json:"low"`
	Percent int `json:"pct"`
}

// TagTypeStats buckets one tag type's coverage across the catalog.
// Certain counts confidence 100, High >=80, Medium >=50, Low >0, None 0.
type TagTypeStats struct {
	Total   int `json:"total"`
	Certain int `json:"certain"`
	High    int `json:"high"`
	Medium  int `json:"medium"`
	Low     int `json:"low"`
	None    int `json:"none"`
}

// DetailedStats is the full progress breakdown per tag type.
type DetailedStats struct {
	Genre   TagTypeStats `json:"genre"`
	Decade  TagTypeStats `json:"decade"`
	Overall struct {
		QuestionsRemaining int `json:"questionsRemaining"`
		QuestionsAnswered  int `json:"questionsAnswered"`
	} `json:"overall"`
}

// PlaybookStep is one bulk-edit instruction derived from high-confidence
// rule-sourced certainties: the tag to add and the product handles to add
// it to.
type PlaybookStep struct {
	TagType TagType  `json:"tagType"`
	Value   string   `json:"value"`
	Tag     string   `json:"tag"`
	Handles []string `json:"handles"`
}

// SuspiciousVendor flags a vendor string that looks like a data issue
// (tag remnants, placeholder names) rather than a real label.
type SuspiciousVendor struct {
	Vendor       string `json:"vendor"`
	ProductCount int    `json:"productCount"`
}

// AuditProduct is one catalog row with its parse results and validation
// notes, used by the data-audit view.
type AuditProduct struct {
	Handle       string     `json:"handle"`
	Title        string     `json:"title"`
	Vendor       string     `json:"vendor"`
	Tags         string     `json:"tags"`
	Parsed       ParsedTags `json:"parsed"`
	HasGenre     bool       `json:"hasGenre"`
	HasSubgenre  bool       `json:"hasSubgenre"`
	HasDecade    bool       `json:"hasDecade"`
	RawTags      []string   `json:"rawTagsList"`
	ParsingNotes []string   `json:"parsingNotes,omitempty"`
}

// AuditStats summarizes tag coverage across an uploaded catalog.
type AuditStats struct {
	Total               int `json:"total"`
	WithGenre           int `json:"withGenre"`
	WithSubgenre        int `json:"withSubgenre"`
	WithDecade          int `json:"withDecade"`
	Complete            int `json:"complete"`
	MissingAll          int `json:"missingAll"`
	MissingGenreOnly    int `json:"missingGenreOnly"`
	MissingSubgenreOnly int `json:"missingSubgenreOnly"`
	MissingDecadeOnly   int `json:"missingDecadeOnly"`
}
