// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

/*
Package syncerr defines the centralized error handling framework for the
Crescendo sync engine.

It provides a rich error type that bridges the gap between low-level
Storage/HTTP errors and the run-level error taxonomy the orchestrator acts on.

Taxonomy:

  - TRANSIENT: upstream timeouts, 5xx, rate limits — retried with backoff.
  - CONFLICT: concurrent duplicate inserts — swallowed and re-resolved.
  - PAGE_FAILED: a page that exhausted its retries — recorded, run continues.
  - FATAL: failures that prevent establishing run boundaries — abort the run.

Every error that leaves a component should be wrapped as a [SyncError] so the
orchestrator can classify it without string matching.
*/
package syncerr

import (
	"errors"
	"fmt"
)

// SyncError is the canonical error type for the Crescendo sync engine.
//
// It carries a machine-readable code, a human-readable message, and the
// underlying cause for structured logging.
type SyncError struct {
	// Code is a machine-readable error identifier (e.g. "TRANSIENT", "FATAL").
	Code string `json:"code"`
	// Message is a human-readable description safe to surface in run reports.
	Message string `json:"error"`
	// Page is the upstream page number the error is attached to, if any.
	Page int `json:"page,omitempty"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR results.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the option name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *SyncError) Unwrap() error { return e.Cause }

// # Recoverable Errors

// Transient creates a retryable upstream error (timeout, 5xx, rate limit).
func Transient(msg string, cause error) *SyncError {
	return &SyncError{
		Code:    "TRANSIENT",
		Message: msg,
		Cause:   cause,
	}
}

// Conflict creates a duplicate-insert error. Workers racing on the same new
// entity treat it as "already exists" and re-resolve the internal id.
func Conflict(msg string) *SyncError {
	return &SyncError{
		Code:    "CONFLICT",
		Message: msg,
	}
}

// NotFound creates an error for a named resource that does not exist.
func NotFound(resource string) *SyncError {
	return &SyncError{
		Code:    "NOT_FOUND",
		Message: resource + " not found",
	}
}

// PageFailed records a page that exhausted its retries. The run continues;
// the page lands in the final report's error list.
func PageFailed(page int, cause error) *SyncError {
	return &SyncError{
		Code:    "PAGE_FAILED",
		Message: fmt.Sprintf("page %d failed", page),
		Page:    page,
		Cause:   cause,
	}
}

// ValidationError creates a run-option validation error with per-field details.
func ValidationError(msg string, details ...FieldError) *SyncError {
	return &SyncError{
		Code:    "VALIDATION_ERROR",
		Message: msg,
		Details: details,
	}
}

// # Unrecoverable Errors

// Fatal creates an error that aborts the run immediately. Only failures that
// prevent establishing run boundaries (the page-1 fetch) qualify.
func Fatal(msg string, cause error) *SyncError {
	return &SyncError{
		Code:    "FATAL",
		Message: msg,
		Cause:   cause,
	}
}

// Internal wraps an unexpected server-side error.
func Internal(cause error) *SyncError {
	return &SyncError{
		Code:    "INTERNAL_ERROR",
		Message: "An unexpected error occurred",
		Cause:   cause,
	}
}

// # Helpers

// As extracts the [*SyncError] from err's chain. It returns nil if not found.
func As(err error) *SyncError {
	var se *SyncError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

// is reports whether err (or any error in its chain) carries the given code.
func is(err error, code string) bool {
	se := As(err)
	return se != nil && se.Code == code
}

// IsTransient reports whether err is a retryable upstream error.
func IsTransient(err error) bool { return is(err, "TRANSIENT") }

// IsConflict reports whether err is a duplicate-insert conflict.
func IsConflict(err error) bool { return is(err, "CONFLICT") }

// IsFatal reports whether err must abort the run.
func IsFatal(err error) bool { return is(err, "FATAL") }

// IsNotFound reports whether err is a missing-resource error.
func IsNotFound(err error) bool { return is(err, "NOT_FOUND") }
