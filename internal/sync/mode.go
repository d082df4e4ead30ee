// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package sync

import (
	"time"

	"github.com/crescendo-live/crescendo/internal/platform/constants"
	"github.com/crescendo-live/crescendo/internal/platform/validate"
	"github.com/crescendo-live/crescendo/pkg/uuidv7"
)

// Mode selects which pages a run covers.
type Mode string

const (
	// ModeFull walks every upstream page.
	ModeFull Mode = "full"
	// ModeIncremental walks pages filtered by the stored change watermark.
	ModeIncremental Mode = "incremental"
	// ModeResume continues a full run from a page, skipping checkpointed
	// pages of the referenced run.
	ModeResume Mode = "resume"
	// ModeRetry re-fetches an explicit set of pages.
	ModeRetry Mode = "retry"
)

func (m Mode) valid() bool {
	switch m {
	case ModeFull, ModeIncremental, ModeResume, ModeRetry:
		return true
	}
	return false
}

// Options configures one sync run.
type Options struct {
	Mode Mode

	// Workers is the number of pages processed concurrently. 1 means
	// sequential.
	Workers int

	// PerPage is the upstream page size.
	PerPage int

	// BatchPause is the wait between worker batches, giving the upstream
	// and the database room to breathe.
	BatchPause time.Duration

	// StartPage is the first page of a resume run.
	StartPage int

	// Pages is the explicit page set of a retry run.
	Pages []int

	// RunID identifies the run's checkpoints. Resume runs pass the id of
	// the run being resumed; other modes may leave it empty and get a
	// fresh id.
	RunID string

	// MaxPages caps the number of pages processed, 0 meaning no cap. Used
	// for smoke runs against live data.
	MaxPages int
}

// Normalize fills defaults into unset options.
func (o *Options) Normalize() {
	if o.Workers == 0 {
		o.Workers = constants.DefaultWorkers
	}
	if o.PerPage == 0 {
		o.PerPage = constants.UpstreamMaxPerPage
	}
	if o.BatchPause == 0 {
		o.BatchPause = constants.DefaultBatchPause
	}
	if o.StartPage == 0 && o.Mode == ModeResume {
		o.StartPage = 1
	}
	if o.RunID == "" {
		o.RunID = uuidv7.New()
	}
}

// Validate checks the options after Normalize.
func (o *Options) Validate() error {
	v := &validate.Validator{}
	v.Custom("mode", !o.Mode.valid(), "Unknown run mode").
		Range("workers", o.Workers, 1, 64).
		Range("per_page", o.PerPage, 1, constants.UpstreamMaxPerPage)

	if o.Mode == ModeResume {
		v.Min("start_page", o.StartPage, 1)
	}
	if o.Mode == ModeRetry {
		v.NotEmpty("pages", len(o.Pages))
		for _, page := range o.Pages {
			if page < 1 {
				v.Custom("pages", true, "Pages must be positive")
				break
			}
		}
	}
	if o.MaxPages < 0 {
		v.Custom("max_pages", true, "Must not be negative")
	}
	return v.Err()
}
