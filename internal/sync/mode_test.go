// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendo-live/crescendo/internal/platform/constants"
)

func TestOptions_Normalize(t *testing.T) {
	opts := Options{Mode: ModeFull}
	opts.Normalize()

	assert.Equal(t, constants.DefaultWorkers, opts.Workers)
	assert.Equal(t, constants.UpstreamMaxPerPage, opts.PerPage)
	assert.Equal(t, constants.DefaultBatchPause, opts.BatchPause)
	assert.NotEmpty(t, opts.RunID)
}

func TestOptions_NormalizeKeepsExplicitValues(t *testing.T) {
	opts := Options{
		Mode:       ModeResume,
		Workers:    10,
		PerPage:    50,
		BatchPause: time.Second,
		StartPage:  431,
		RunID:      "run-1",
	}
	opts.Normalize()

	assert.Equal(t, 10, opts.Workers)
	assert.Equal(t, 50, opts.PerPage)
	assert.Equal(t, time.Second, opts.BatchPause)
	assert.Equal(t, 431, opts.StartPage)
	assert.Equal(t, "run-1", opts.RunID)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"valid_full", func(o *Options) {}, false},
		{"valid_sequential", func(o *Options) { o.Workers = 1 }, false},
		{"unknown_mode", func(o *Options) { o.Mode = "nightly" }, true},
		{"zero_workers", func(o *Options) { o.Workers = 0 }, true},
		{"too_many_workers", func(o *Options) { o.Workers = 65 }, true},
		{"per_page_above_upstream_max", func(o *Options) { o.PerPage = 101 }, true},
		{"retry_without_pages", func(o *Options) { o.Mode = ModeRetry; o.Pages = nil }, true},
		{"retry_with_pages", func(o *Options) { o.Mode = ModeRetry; o.Pages = []int{4, 7} }, false},
		{"retry_with_zero_page", func(o *Options) { o.Mode = ModeRetry; o.Pages = []int{0, 7} }, true},
		{"resume_with_zero_start", func(o *Options) { o.Mode = ModeResume; o.StartPage = 0 }, true},
		{"negative_max_pages", func(o *Options) { o.MaxPages = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Mode: ModeFull, Workers: 5, PerPage: 100, StartPage: 1}
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
