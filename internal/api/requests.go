// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cybersentinel/internal/validation"
)

// maxBatch bounds events and observations per request.
const maxBatch = 1000

var (
	errEmptyBody     = errors.New("request body is empty")
	errBatchTooLarge = fmt.Errorf("batch exceeds %d items", maxBatch)
)

// decodeOneOrMany reads a JSON object or array of T and validates every item.
func decodeOneOrMany[T any](w http.ResponseWriter, r *http.Request) ([]T, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errEmptyBody
	}

	var items []T
	if body[0] == '[' {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	} else {
		var item T
		if err := json.Unmarshal(body, &item); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		items = []T{item}
	}

	if len(items) == 0 {
		return nil, errEmptyBody
	}
	if len(items) > maxBatch {
		return nil, errBatchTooLarge
	}
	return items, nil
}

// validateAll validates each item, reporting the index of the first failure.
func validateAll[T any](items []T) (int, *validation.RequestValidationError) {
	for i := range items {
		if verr := validation.ValidateStruct(&items[i]); verr != nil {
			return i, verr
		}
	}
	return -1, nil
}
