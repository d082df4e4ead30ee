// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package sync

import (
	"sync/atomic"
	"time"
)

// Progress tracks a running sync. All counters are atomic so workers
// update and the ops endpoint reads without coordination.
type Progress struct {
	startedAt  atomic.Int64 // unix nanos, 0 until Begin
	totalPages atomic.Int64
	pagesDone  atomic.Int64
	pagesFail  atomic.Int64

	artistsWritten atomic.Int64
	artistsCreated atomic.Int64
	venuesWritten  atomic.Int64
	venuesCreated  atomic.Int64
	eventsWritten  atomic.Int64
	eventsCreated  atomic.Int64
}

// Snapshot is a point-in-time copy of a run's progress, as served by the
// ops status endpoint.
type Snapshot struct {
	Running        bool          `json:"running"`
	StartedAt      time.Time     `json:"started_at"`
	Elapsed        time.Duration `json:"elapsed"`
	ETA            time.Duration `json:"eta"`
	TotalPages     int64         `json:"total_pages"`
	PagesDone      int64         `json:"pages_done"`
	PagesFailed    int64         `json:"pages_failed"`
	ArtistsWritten int64         `json:"artists_written"`
	ArtistsCreated int64         `json:"artists_created"`
	VenuesWritten  int64         `json:"venues_written"`
	VenuesCreated  int64         `json:"venues_created"`
	EventsWritten  int64         `json:"events_written"`
	EventsCreated  int64         `json:"events_created"`
}

// Begin marks the run started with the given page count, resetting any
// counters left from a previous run.
func (p *Progress) Begin(totalPages int) {
	p.startedAt.Store(time.Now().UnixNano())
	p.totalPages.Store(int64(totalPages))
	p.pagesDone.Store(0)
	p.pagesFail.Store(0)
	p.artistsWritten.Store(0)
	p.artistsCreated.Store(0)
	p.venuesWritten.Store(0)
	p.venuesCreated.Store(0)
	p.eventsWritten.Store(0)
	p.eventsCreated.Store(0)
}

// PageDone records a successfully written page.
func (p *Progress) PageDone(stats WriteStats) {
	p.pagesDone.Add(1)
	p.artistsWritten.Add(int64(stats.ArtistsWritten))
	p.artistsCreated.Add(int64(stats.ArtistsCreated))
	p.venuesWritten.Add(int64(stats.VenuesWritten))
	p.venuesCreated.Add(int64(stats.VenuesCreated))
	p.eventsWritten.Add(int64(stats.EventsWritten))
	p.eventsCreated.Add(int64(stats.EventsCreated))
}

// PageFailed records a page that exhausted its retries.
func (p *Progress) PageFailed() {
	p.pagesFail.Add(1)
}

// Shrink drops pages from the planned total, used when a drained upstream
// cuts a run short.
func (p *Progress) Shrink(pages int) {
	p.totalPages.Add(-int64(pages))
}

// Snapshot returns the current counters plus derived timing. ETA scales
// the mean page duration so far by the remaining page count.
func (p *Progress) Snapshot() Snapshot {
	s := Snapshot{
		TotalPages:     p.totalPages.Load(),
		PagesDone:      p.pagesDone.Load(),
		PagesFailed:    p.pagesFail.Load(),
		ArtistsWritten: p.artistsWritten.Load(),
		ArtistsCreated: p.artistsCreated.Load(),
		VenuesWritten:  p.venuesWritten.Load(),
		VenuesCreated:  p.venuesCreated.Load(),
		EventsWritten:  p.eventsWritten.Load(),
		EventsCreated:  p.eventsCreated.Load(),
	}

	started := p.startedAt.Load()
	if started == 0 {
		return s
	}
	s.Running = true
	s.StartedAt = time.Unix(0, started).UTC()
	s.Elapsed = time.Since(s.StartedAt)

	finished := s.PagesDone + s.PagesFailed
	if finished > 0 && finished < s.TotalPages {
		perPage := s.Elapsed / time.Duration(finished)
		s.ETA = perPage * time.Duration(s.TotalPages-finished)
	}
	return s
}
