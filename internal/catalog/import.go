// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

// Package catalog handles CSV ingestion of product exports and the data
// audit view built on top of the raw rows. The inference engine never sees
// raw tag strings; parsing happens here at the boundary.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mracine/tagquest/internal/engine"
	"github.com/mracine/tagquest/internal/models"
)

// Record is one imported catalog row: the parsed product plus the raw tag
// string, which the audit view needs and the engine does not.
type Record struct {
	Product models.Product
	RawTags string
}

// ErrMissingHandleColumn is returned when the CSV has no Handle column;
// nothing can be keyed without it.
var ErrMissingHandleColumn = errors.New("csv has no Handle column")

// expected column names, matched case-insensitively.
const (
	colHandle = "handle"
	colTitle  = "title"
	colVendor = "vendor"
	colTags   = "tags"
)

// ImportCSV parses a product export. Rows without a handle are skipped, and
// the first occurrence of a handle wins; later duplicates are dropped. The
// seen set is shared across calls via the returned map when importing
// multiple files, pass nil for a single file.
func ImportCSV(r io.Reader, seen map[string]bool) ([]Record, error) {
	if seen == nil {
		seen = make(map[string]bool)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Shopify exports pad rows unevenly

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	idx := map[string]int{colHandle: -1, colTitle: -1, colVendor: -1, colTags: -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := idx[name]; ok && idx[name] == -1 {
			idx[name] = i
		}
	}
	if idx[colHandle] == -1 {
		return nil, ErrMissingHandleColumn
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		handle := field(row, idx[colHandle])
		if handle == "" || seen[handle] {
			continue
		}
		seen[handle] = true

		rawTags := field(row, idx[colTags])
		parsed := engine.ParseTags(rawTags)

		records = append(records, Record{
			Product: models.Product{
				Handle:           handle,
				Title:            field(row, idx[colTitle]),
				Vendor:           field(row, idx[colVendor]),
				ExistingGenre:    parsed.Genre,
				ExistingSubgenre: parsed.Subgenre,
				ExistingDecade:   parsed.Decade,
			},
			RawTags: rawTags,
		})
	}
	return records, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Products strips the raw tag strings for persistence.
func Products(records []Record) []*models.Product {
	out := make([]*models.Product, len(records))
	for i := range records {
		out[i] = &records[i].Product
	}
	return out
}
