// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/buzzstream/internal/logging"
	"github.com/tomtom215/buzzstream/internal/stream"
	"github.com/tomtom215/buzzstream/internal/validation"
)

// Response is the envelope for every JSON response.
type Response struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    interface{}    `json:"data,omitempty"`
	Status  *stream.Status `json:"status,omitempty"`
	Error   *APIError      `json:"error,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details carries per-field validation failures
	Details interface{} `json:"details,omitempty"`

	// RequestID is the request ID for tracing
	RequestID string `json:"request_id,omitempty"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeTooManyRequests     = "TOO_MANY_REQUESTS"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeValidation          = validation.ErrorCode
	ErrCodeExternalServiceFail = "EXTERNAL_SERVICE_FAILED"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

func respondData(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, &Response{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondErrorDetails(w, r, status, code, message, nil)
}

func respondErrorDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	respondJSON(w, status, &Response{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// respondValidation writes a 400 with per-field details when err is a
// *validation.Error.
func respondValidation(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		respondErrorDetails(w, r, http.StatusBadRequest, ErrCodeValidation, verr.Error(), verr.Fields)
		return
	}
	respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
}
