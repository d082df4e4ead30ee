// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package sync

import (
	"context"
	"log/slog"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/crescendo-live/crescendo/internal/platform/constants"
)

// CheckpointStore records which pages of a run completed, so a resume run
// can skip them.
type CheckpointStore interface {
	MarkDone(ctx context.Context, runID string, page int)
	CompletedPages(ctx context.Context, runID string) map[int]bool
}

// RedisCheckpoints keeps per-run completed-page sets in Redis.
//
// Checkpoints are an optimization: every write is an idempotent upsert, so
// losing them only costs re-processing, never correctness. All Redis
// failures therefore degrade to a log line.
type RedisCheckpoints struct {
	rdb    *goredis.Client
	logger *slog.Logger
}

// NewRedisCheckpoints creates a checkpoint store backed by Redis.
func NewRedisCheckpoints(rdb *goredis.Client, logger *slog.Logger) *RedisCheckpoints {
	return &RedisCheckpoints{rdb: rdb, logger: logger}
}

func checkpointKey(runID string) string {
	return constants.RedisPrefixRunPages + runID
}

// MarkDone records a completed page.
func (c *RedisCheckpoints) MarkDone(ctx context.Context, runID string, page int) {
	key := checkpointKey(runID)
	pipe := c.rdb.Pipeline()
	pipe.SAdd(ctx, key, page)
	pipe.Expire(ctx, key, constants.CheckpointTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("checkpoint_write_failed",
			slog.String("run_id", runID),
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// CompletedPages returns the pages already checkpointed for the run. A
// Redis failure returns an empty set; the resume then re-processes pages.
func (c *RedisCheckpoints) CompletedPages(ctx context.Context, runID string) map[int]bool {
	members, err := c.rdb.SMembers(ctx, checkpointKey(runID)).Result()
	if err != nil {
		c.logger.Warn("checkpoint_read_failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		return map[int]bool{}
	}

	pages := make(map[int]bool, len(members))
	for _, member := range members {
		if page, err := strconv.Atoi(member); err == nil {
			pages[page] = true
		}
	}
	return pages
}

// NoopCheckpoints satisfies CheckpointStore when Redis is absent.
type NoopCheckpoints struct{}

func (NoopCheckpoints) MarkDone(context.Context, string, int) {}

func (NoopCheckpoints) CompletedPages(context.Context, string) map[int]bool {
	return map[int]bool{}
}
