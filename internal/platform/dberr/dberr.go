// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

// Package dberr provides a bridge between low-level database errors and
// higher-level sync-engine errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/crescendo-live/crescendo/internal/platform/syncerr"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique-constraint violations.
// The unique constraints on (source, externalid) are the authoritative dedup
// backstop, so this code is load-bearing for concurrent-insert races.
const uniqueViolation = "23505"

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = syncerr.NotFound("Row")
)

// Wrap inspects a database error and wraps it into a meaningful [syncerr.SyncError].
// It classifies the error so callers can branch on kind instead of SQLSTATE.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Unique violations become Conflicts. The orchestrator swallows these
	// and re-resolves the internal id (another worker won the insert race).
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return syncerr.Conflict("duplicate row in " + action)
	}

	// 3. Unknown query errors become internal errors.
	return syncerr.Internal(err)
}
