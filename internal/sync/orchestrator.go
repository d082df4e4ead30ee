// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package sync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crescendo-live/crescendo/internal/catalog"
	"github.com/crescendo-live/crescendo/internal/core/artist"
	"github.com/crescendo-live/crescendo/internal/core/event"
	"github.com/crescendo-live/crescendo/internal/core/venue"
	"github.com/crescendo-live/crescendo/internal/platform/constants"
	"github.com/crescendo-live/crescendo/internal/platform/syncerr"
)

// Fetcher retrieves upstream pages. *catalog.Client is the production
// implementation.
type Fetcher interface {
	FetchPage(ctx context.Context, page int, opts catalog.FetchOptions) (*catalog.Page, error)
	Calls() int64
}

// PageWriter persists one extracted page. *Writer is the production
// implementation.
type PageWriter interface {
	WritePage(ctx context.Context, extraction *Extraction) (WriteStats, error)
}

// Report summarizes a finished run.
type Report struct {
	RunID        string     `json:"run_id"`
	Mode         Mode       `json:"mode"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   time.Time  `json:"finished_at"`
	Watermark    *time.Time `json:"watermark,omitempty"`
	TotalPages   int        `json:"total_pages"`
	PlannedPages int        `json:"planned_pages"`
	PagesDone    int64      `json:"pages_done"`
	PagesFailed  int64      `json:"pages_failed"`
	FailedPages  []int      `json:"failed_pages,omitempty"`
	Errors       []string   `json:"errors,omitempty"`

	ArtistsWritten int64 `json:"artists_written"`
	ArtistsCreated int64 `json:"artists_created"`
	VenuesWritten  int64 `json:"venues_written"`
	VenuesCreated  int64 `json:"venues_created"`
	EventsWritten  int64 `json:"events_written"`
	EventsCreated  int64 `json:"events_created"`

	APICalls int64 `json:"api_calls"`

	DuplicateArtists int `json:"duplicate_artists"`
	DuplicateVenues  int `json:"duplicate_venues"`
	DuplicateEvents  int `json:"duplicate_events"`
}

// Clean reports whether the run finished with no failed pages and no
// duplicate natural keys.
func (r *Report) Clean() bool {
	return r.PagesFailed == 0 &&
		r.DuplicateArtists == 0 && r.DuplicateVenues == 0 && r.DuplicateEvents == 0
}

// Orchestrator drives a sync run: it plans the page set for the requested
// mode, fans pages out to a worker pool, and assembles the final report.
//
// Pages are isolated: a page that exhausts its fetch retries or fails its
// write lands in the report's failed list while every other page proceeds.
// Only a failed page-1 preflight aborts a run, because without it the run
// has no boundary.
type Orchestrator struct {
	source      string
	fetcher     Fetcher
	extractor   *Extractor
	writer      PageWriter
	checkpoints CheckpointStore
	artists     artist.Repository
	venues      venue.Repository
	events      event.Repository
	progress    *Progress
	logger      *slog.Logger
}

// NewOrchestrator wires a sync run coordinator.
func NewOrchestrator(
	source string,
	fetcher Fetcher,
	writer PageWriter,
	checkpoints CheckpointStore,
	artists artist.Repository,
	venues venue.Repository,
	events event.Repository,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		source:      source,
		fetcher:     fetcher,
		extractor:   NewExtractor(source),
		writer:      writer,
		checkpoints: checkpoints,
		artists:     artists,
		venues:      venues,
		events:      events,
		progress:    &Progress{},
		logger:      logger,
	}
}

// Progress exposes the live counters for the ops status endpoint.
func (o *Orchestrator) Progress() *Progress {
	return o.progress
}

// Run executes one sync run and returns its report. The error is non-nil
// only for invalid options, a failed preflight, or a canceled context;
// per-page failures live in the report.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Report, error) {
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     opts.RunID,
		Mode:      opts.Mode,
		StartedAt: time.Now().UTC(),
	}

	fetchOpts := catalog.FetchOptions{PerPage: opts.PerPage}
	if opts.Mode == ModeIncremental {
		watermark, err := o.events.MaxLastModified(ctx, o.source)
		if err != nil {
			return nil, err
		}
		if watermark != nil {
			fetchOpts.ModifiedSince = *watermark
			report.Watermark = watermark
		} else {
			// No stored watermark means nothing was ever synced; the run
			// degrades to a full walk rather than scanning from epoch.
			o.logger.Info("incremental_watermark_missing_full_walk",
				slog.String("run_id", opts.RunID))
		}
	}

	pages, totalPages, err := o.planPages(ctx, opts, fetchOpts)
	if err != nil {
		return nil, err
	}
	report.TotalPages = totalPages
	report.PlannedPages = len(pages)

	o.logger.Info("sync_run_started",
		slog.String("run_id", opts.RunID),
		slog.String("mode", string(opts.Mode)),
		slog.Int("total_pages", totalPages),
		slog.Int("planned_pages", len(pages)),
		slog.Int("workers", opts.Workers),
	)

	o.progress.Begin(len(pages))
	runErr := o.processPages(ctx, opts, fetchOpts, pages, report)

	o.finalize(ctx, report)
	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

// planPages decides which pages the run covers. All modes except retry
// preflight page 1 to learn the page count; retry trusts its explicit set.
func (o *Orchestrator) planPages(ctx context.Context, opts Options, fetchOpts catalog.FetchOptions) ([]int, int, error) {
	if opts.Mode == ModeRetry {
		return opts.Pages, len(opts.Pages), nil
	}

	first, err := o.fetcher.FetchPage(ctx, 1, fetchOpts)
	if err != nil {
		return nil, 0, syncerr.Fatal("page 1 preflight failed", err)
	}
	totalPages := first.Pagination.TotalPages

	start := 1
	if opts.Mode == ModeResume {
		start = opts.StartPage
	}

	var completed map[int]bool
	if opts.Mode == ModeResume {
		completed = o.checkpoints.CompletedPages(ctx, opts.RunID)
	}

	var pages []int
	for page := start; page <= totalPages; page++ {
		if completed[page] {
			continue
		}
		pages = append(pages, page)
	}
	if opts.MaxPages > 0 && len(pages) > opts.MaxPages {
		pages = pages[:opts.MaxPages]
	}
	return pages, totalPages, nil
}

// processPages fans the page set out to batches of opts.Workers goroutines
// with a pause between batches. In-flight pages always finish, even when
// the context aborts the run between batches.
func (o *Orchestrator) processPages(ctx context.Context, opts Options, fetchOpts catalog.FetchOptions, pages []int, report *Report) error {
	var (
		mu         sync.Mutex
		drained    atomic.Bool
		lastLogged int64
	)

	recordFailure := func(page int, err error) {
		o.progress.PageFailed()
		mu.Lock()
		report.FailedPages = append(report.FailedPages, page)
		report.Errors = append(report.Errors, err.Error())
		mu.Unlock()
		o.logger.Error("sync_page_failed",
			slog.String("run_id", opts.RunID),
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
	}

	for start := 0; start < len(pages); start += opts.Workers {
		if err := ctx.Err(); err != nil {
			o.progress.Shrink(len(pages) - start)
			return err
		}
		if drained.Load() {
			o.progress.Shrink(len(pages) - start)
			o.logger.Info("sync_upstream_drained",
				slog.String("run_id", opts.RunID),
				slog.Int("pages_skipped", len(pages)-start),
			)
			break
		}

		end := min(start+opts.Workers, len(pages))
		var wg sync.WaitGroup
		for _, page := range pages[start:end] {
			wg.Add(1)
			go func(page int) {
				defer wg.Done()
				o.processPage(ctx, opts, fetchOpts, page, &drained, recordFailure)
			}(page)
		}
		wg.Wait()

		snap := o.progress.Snapshot()
		settled := snap.PagesDone + snap.PagesFailed
		if settled-lastLogged >= constants.ProgressLogInterval || end == len(pages) {
			lastLogged = settled
			o.logger.Info("sync_progress",
				slog.String("run_id", opts.RunID),
				slog.Int64("pages_done", snap.PagesDone),
				slog.Int64("pages_failed", snap.PagesFailed),
				slog.Int64("total_pages", snap.TotalPages),
				slog.Int64("events_written", snap.EventsWritten),
				slog.Duration("elapsed", snap.Elapsed.Round(time.Second)),
				slog.Duration("eta", snap.ETA.Round(time.Second)),
			)
		}

		if end < len(pages) {
			select {
			case <-ctx.Done():
			case <-time.After(opts.BatchPause):
			}
		}
	}
	return nil
}

// processPage fetches, extracts and writes a single page.
func (o *Orchestrator) processPage(ctx context.Context, opts Options, fetchOpts catalog.FetchOptions, page int, drained *atomic.Bool, recordFailure func(int, error)) {
	result, err := o.fetcher.FetchPage(ctx, page, fetchOpts)
	if err != nil {
		recordFailure(page, syncerr.PageFailed(page, err))
		return
	}

	if len(result.Events) == 0 {
		// On a contiguous walk an empty page means the upstream has no more
		// records, so later pages are skipped. Retry pages are independent:
		// an empty one is simply done and the rest of the set still runs.
		if opts.Mode != ModeRetry {
			drained.Store(true)
		}
		o.progress.PageDone(WriteStats{})
		o.checkpoints.MarkDone(ctx, opts.RunID, page)
		return
	}

	extraction := o.extractor.ExtractPage(result.Events)
	stats, err := o.writer.WritePage(ctx, extraction)
	if err != nil {
		recordFailure(page, syncerr.PageFailed(page, err))
		return
	}

	o.progress.PageDone(stats)
	o.checkpoints.MarkDone(ctx, opts.RunID, page)
}

// finalize copies the counters into the report and runs the post-run
// duplicate verification.
func (o *Orchestrator) finalize(ctx context.Context, report *Report) {
	report.FinishedAt = time.Now().UTC()
	report.APICalls = o.fetcher.Calls()

	snap := o.progress.Snapshot()
	report.PagesDone = snap.PagesDone
	report.PagesFailed = snap.PagesFailed
	report.ArtistsWritten = snap.ArtistsWritten
	report.ArtistsCreated = snap.ArtistsCreated
	report.VenuesWritten = snap.VenuesWritten
	report.VenuesCreated = snap.VenuesCreated
	report.EventsWritten = snap.EventsWritten
	report.EventsCreated = snap.EventsCreated

	o.verify(ctx, report)

	o.logger.Info("sync_run_finished",
		slog.String("run_id", report.RunID),
		slog.Int64("pages_done", report.PagesDone),
		slog.Int64("pages_failed", report.PagesFailed),
		slog.Int64("events_written", report.EventsWritten),
		slog.Int64("api_calls", report.APICalls),
		slog.Bool("clean", report.Clean()),
	)
}

// verify counts duplicated natural keys after the run. Anything non-zero
// means the unique constraints are missing or the extractor produced
// colliding keys, and is logged at error level.
func (o *Orchestrator) verify(ctx context.Context, report *Report) {
	var err error
	if report.DuplicateArtists, err = o.artists.CountDuplicates(ctx); err != nil {
		o.logger.Error("sync_verification_failed", slog.String("entity", "artist"), slog.String("error", err.Error()))
	}
	if report.DuplicateVenues, err = o.venues.CountDuplicates(ctx); err != nil {
		o.logger.Error("sync_verification_failed", slog.String("entity", "venue"), slog.String("error", err.Error()))
	}
	if report.DuplicateEvents, err = o.events.CountDuplicates(ctx); err != nil {
		o.logger.Error("sync_verification_failed", slog.String("entity", "event"), slog.String("error", err.Error()))
	}

	if report.DuplicateArtists > 0 || report.DuplicateVenues > 0 || report.DuplicateEvents > 0 {
		o.logger.Error("sync_duplicates_detected",
			slog.String("run_id", report.RunID),
			slog.Int("artists", report.DuplicateArtists),
			slog.Int("venues", report.DuplicateVenues),
			slog.Int("events", report.DuplicateEvents),
		)
	}
}
