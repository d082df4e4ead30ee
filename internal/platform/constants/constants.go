// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, upstream API limits, and cross-cutting keys that
are shared between different layers of the sync engine.

Categories:

  - Upstream: page size caps and retry/backoff schedule for the catalog API.
  - Sync: worker pool sizing and batch pacing.
  - Ops Server Timing: Read/Write/Idle timeouts for the operational HTTP server.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "crescendo-sync"
	AppVersion = "0.1.0-dev"
)

// # Upstream Catalog API

const (
	// UpstreamMaxPerPage is the hard page-size cap enforced by the catalog API.
	UpstreamMaxPerPage = 100

	// FetchMaxAttempts is the total number of attempts per page fetch (1 + retries).
	FetchMaxAttempts = 3

	// FetchBackoffBase seeds the exponential backoff schedule (2s, 4s, 8s).
	FetchBackoffBase = 2 * time.Second

	// FetchRequestTimeout bounds a single HTTP round trip to the catalog API.
	FetchRequestTimeout = 30 * time.Second

	// UpstreamRateLimitRPS is the sustained request rate allowed against the catalog API.
	UpstreamRateLimitRPS = 10.0

	// UpstreamRateLimitBurst is the burst capacity of the upstream rate limiter.
	UpstreamRateLimitBurst = 10
)

// # Sync Engine

const (
	// DefaultWorkers is the default number of concurrent page workers.
	DefaultWorkers = 5

	// DefaultBatchPause is the pause between worker batches to stay under
	// upstream rate limits.
	DefaultBatchPause = 50 * time.Millisecond

	// ProgressLogInterval is the minimum number of settled pages between
	// progress log lines; the last batch always logs.
	ProgressLogInterval = 50

	// CheckpointTTL is how long completed-page checkpoints survive in Redis.
	CheckpointTTL = 7 * 24 * time.Hour
)

// # Genre Enrichment

const (
	// BackfillTimeout bounds a single enrichment lookup per artist.
	BackfillTimeout = 30 * time.Second

	// SentinelGenre is assigned when enrichment fails or returns nothing, so
	// an artist is never re-enriched on every subsequent run.
	SentinelGenre = "unclassified"

	// EnrichTokenExpiryBuffer is subtracted from the token TTL before caching,
	// so a nearly-expired token is never served from cache.
	EnrichTokenExpiryBuffer = 5 * time.Minute
)

// # Ops Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// ShutdownTimeout is how long we wait for the in-flight batch to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # HTTP Headers

const (
	// HeaderXRequestID carries the correlation ID for ops-server log tracing.
	HeaderXRequestID = "X-Request-ID"
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Source Adapters

const (
	// SourceCatalog is the source tag written on every row ingested from the
	// primary live-event catalog API.
	SourceCatalog = "showgrid"

	// SourceEnrichment is the cross-catalog identifier key of the genre
	// enrichment provider.
	SourceEnrichment = "spotify"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixRunPages    = "sync:run:pages:"
	RedisPrefixEnrichToken = "enrich:token"
)
