// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [syncerr.SyncError].
//
// # Architecture
//
// This package validates operator-supplied run options before a sync run
// starts — worker counts, page windows, page sets. It is never used on
// upstream payloads: malformed upstream data degrades to nil fields in the
// extractor instead of failing validation.
package validate

import (
	"fmt"
	"strings"

	"github.com/crescendo-live/crescendo/internal/platform/syncerr"
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every operation.
type Validator struct {
	errs []syncerr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// Min fails if the value is below min.
func (v *Validator) Min(field string, value, min int) *Validator {
	if value < min {
		v.add(field, fmt.Sprintf("Must be at least %d", min))
	}
	return v
}

// Range fails if the value is outside the [min, max] range (inclusive).
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return v
}

// NotEmpty fails if the slice has no elements.
func (v *Validator) NotEmpty(field string, length int) *Validator {
	if length == 0 {
		v.add(field, "At least one value is required")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("workers", workers > 64, "Too many workers")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [syncerr.SyncError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return syncerr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [syncerr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, syncerr.FieldError{Field: field, Message: message})
}
