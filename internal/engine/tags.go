// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

// Package engine implements the tag inference core: parsing existing tags,
// aggregating products by vendor, generating ranked yes/no questions, and
// applying confirmed rules to a per-session certainty store.
//
// The engine is pure in-memory computation. It performs no I/O and holds no
// global state; each session owns its own Workspace and the caller is
// responsible for loading the catalog and persisting rules and answers.
package engine

import (
	"regexp"
	"strings"

	"github.com/mracine/tagquest/internal/models"
)

const (
	genrePrefix    = "genre parent:"
	subgenrePrefix = "subgenre:"
)

// decadeToken matches a decade code such as "80C" or "2010c".
var decadeToken = regexp.MustCompile(`^\d{2,4}[cC]$`)

// ParseTags extracts genre, subgenre and decade labels from a raw
// comma-delimited tag string. Tokens are trimmed and matched by
// case-insensitive prefix; when several tokens match the same category the
// last occurrence wins. Unrecognized tokens are ignored, never an error.
func ParseTags(raw string) models.ParsedTags {
	var parsed models.ParsedTags
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		lower := strings.ToLower(token)
		switch {
		case strings.HasPrefix(lower, genrePrefix):
			parsed.Genre = strings.TrimSpace(token[len(genrePrefix):])
		case strings.HasPrefix(lower, subgenrePrefix):
			parsed.Subgenre = strings.TrimSpace(token[len(subgenrePrefix):])
		case decadeToken.MatchString(token):
			parsed.Decade = strings.ToUpper(token)
		}
	}
	return parsed
}

// TagForValue renders the catalog tag token for a tag type and value,
// the inverse of ParseTags for a single token.
func TagForValue(t models.TagType, value string) string {
	switch t {
	case models.TagGenre:
		return "Genre Parent: " + value
	case models.TagSubgenre:
		return "Subgenre: " + value
	case models.TagDecade:
		return value
	}
	return value
}
