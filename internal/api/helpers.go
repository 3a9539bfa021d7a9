// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mracine/tagquest/internal/logging"
	"github.com/mracine/tagquest/internal/models"
	"github.com/mracine/tagquest/internal/validation"
)

// respondJSON sends the response envelope with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData wraps payload in a success envelope.
func respondData(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError sends an error envelope and logs the underlying cause.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Err(err).Msg("API error")
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    &models.APIError{Code: code, Message: message},
	})
}

// decodeJSON parses a request body into dst and validates it. A false return
// means the error response was already written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Status:   "error",
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error:    &models.APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details},
		})
		return false
	}
	return true
}

// csvReaders extracts the uploaded CSV payloads from a request: multipart
// file fields named "file" or "files", or the raw body for text/csv posts.
func csvReaders(r *http.Request) ([]namedReader, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return []namedReader{{name: "body", open: func() (io.ReadCloser, error) {
			return r.Body, nil
		}}}, nil
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	var readers []namedReader
	for _, field := range []string{"file", "files"} {
		for _, fh := range r.MultipartForm.File[field] {
			fh := fh
			readers = append(readers, namedReader{name: fh.Filename, open: func() (io.ReadCloser, error) {
				return fh.Open()
			}})
		}
	}
	if len(readers) == 0 {
		return nil, fmt.Errorf("no csv file in upload")
	}
	return readers, nil
}

type namedReader struct {
	name string
	open func() (io.ReadCloser, error)
}
