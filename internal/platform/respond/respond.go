// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

// Package respond provides HTTP response helpers used by the ops-server handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// It ensures that every response (Success or Error) across the ops surface
// follows a strict, predictable JSON envelope structure so dashboards and
// probes can parse results robustly.
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/crescendo-live/crescendo/internal/platform/ctxutil"
	"github.com/crescendo-live/crescendo/internal/platform/syncerr"
)

// SuccessEnvelope is the JSON envelope for successful responses.
type SuccessEnvelope struct {
	Data interface{} `json:"data"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Error   string               `json:"error"`
	Code    string               `json:"code"`
	Details []syncerr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard success envelope.
func OK(writer http.ResponseWriter, data interface{}) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data})
}

// Error converts any Go error into a standardized JSON error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var syncError *syncerr.SyncError
	if !errors.As(err, &syncError) {
		// Unexpected internal error: log full details but hide them from the
		// client.
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		syncError = syncerr.Internal(err)
	}

	status := http.StatusInternalServerError
	switch syncError.Code {
	case "NOT_FOUND":
		status = http.StatusNotFound
	case "VALIDATION_ERROR":
		status = http.StatusBadRequest
	case "CONFLICT":
		status = http.StatusConflict
	}

	JSON(writer, status, ErrorEnvelope{
		Error:   syncError.Message,
		Code:    syncError.Code,
		Details: syncError.Details,
	})
}
