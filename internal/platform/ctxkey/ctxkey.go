// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

// Package ctxkey defines the private context key types used across the platform.
//
// Using unexported key types prevents collisions with third-party packages
// that also store values in [context.Context].
package ctxkey

// key is the private type for context keys defined in this package.
type key int

const (
	// KeyRequestID stores the correlation ID for ops-server log tracing.
	KeyRequestID key = iota

	// KeyLogger stores the request-scoped structured logger.
	KeyLogger
)
