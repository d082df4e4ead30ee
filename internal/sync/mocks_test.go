// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/crescendo-live/crescendo/internal/catalog"
	"github.com/crescendo-live/crescendo/internal/core/artist"
	"github.com/crescendo-live/crescendo/internal/core/event"
	"github.com/crescendo-live/crescendo/internal/core/ledger"
	"github.com/crescendo-live/crescendo/internal/core/venue"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeLedger is an in-memory ledger.Repository.
type fakeLedger struct {
	mu   sync.Mutex
	rows map[string]uuid.UUID
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: map[string]uuid.UUID{}}
}

func ledgerKey(source, entityType, externalID string) string {
	return source + "|" + entityType + "|" + externalID
}

func (f *fakeLedger) Resolve(_ context.Context, source, entityType string, externalIDs []string) (map[string]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]uuid.UUID{}
	for _, externalID := range externalIDs {
		if id, ok := f.rows[ledgerKey(source, entityType, externalID)]; ok {
			out[externalID] = id
		}
	}
	return out, nil
}

func (f *fakeLedger) Register(_ context.Context, entries []ledger.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range entries {
		key := ledgerKey(entry.Source, entry.EntityType, entry.ExternalID)
		if _, ok := f.rows[key]; !ok {
			f.rows[key] = entry.EntityID
		}
	}
	return nil
}

func (f *fakeLedger) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeArtists is an in-memory artist.Repository keyed on (source, externalid).
type fakeArtists struct {
	mu   sync.Mutex
	rows map[string]*artist.Artist
}

func newFakeArtists() *fakeArtists {
	return &fakeArtists{rows: map[string]*artist.Artist{}}
}

func (f *fakeArtists) UpsertBatch(_ context.Context, artists []*artist.Artist) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range artists {
		key := a.Source + "|" + a.ExternalID
		if existing, ok := f.rows[key]; ok {
			copied := *a
			copied.ID = existing.ID
			if len(copied.Genres) == 0 {
				copied.Genres = existing.Genres
			}
			f.rows[key] = &copied
			continue
		}
		copied := *a
		f.rows[key] = &copied
	}
	return nil
}

func (f *fakeArtists) GetGenresByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID][]string{}
	for _, row := range f.rows {
		for _, id := range ids {
			if row.ID == id {
				out[id] = row.Genres
			}
		}
	}
	return out, nil
}

func (f *fakeArtists) GetIDsByExternalIDs(_ context.Context, source string, externalIDs []string) (map[string]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]uuid.UUID{}
	for _, externalID := range externalIDs {
		if row, ok := f.rows[source+"|"+externalID]; ok {
			out[externalID] = row.ID
		}
	}
	return out, nil
}

func (f *fakeArtists) UpdateGenres(_ context.Context, id uuid.UUID, genres []string, genreSource string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			row.Genres = genres
			row.GenreSource = &genreSource
			return nil
		}
	}
	return fmt.Errorf("artist %s not found", id)
}

func (f *fakeArtists) ListMissingGenres(_ context.Context, limit int) ([]*artist.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*artist.Artist
	for _, row := range f.rows {
		if len(row.Genres) == 0 && len(row.ExternalRefs) > 0 {
			out = append(out, row)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeArtists) CountDuplicates(context.Context) (int, error) { return 0, nil }

func (f *fakeArtists) get(source, externalID string) *artist.Artist {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[source+"|"+externalID]
}

func (f *fakeArtists) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeVenues is an in-memory venue.Repository.
type fakeVenues struct {
	mu   sync.Mutex
	rows map[string]*venue.Venue
}

func newFakeVenues() *fakeVenues {
	return &fakeVenues{rows: map[string]*venue.Venue{}}
}

func (f *fakeVenues) UpsertBatch(_ context.Context, venues []*venue.Venue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range venues {
		key := v.Source + "|" + v.ExternalID
		copied := *v
		if existing, ok := f.rows[key]; ok {
			copied.ID = existing.ID
		}
		f.rows[key] = &copied
	}
	return nil
}

func (f *fakeVenues) GetIDsByExternalIDs(_ context.Context, source string, externalIDs []string) (map[string]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]uuid.UUID{}
	for _, externalID := range externalIDs {
		if row, ok := f.rows[source+"|"+externalID]; ok {
			out[externalID] = row.ID
		}
	}
	return out, nil
}

func (f *fakeVenues) CountDuplicates(context.Context) (int, error) { return 0, nil }

func (f *fakeVenues) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeEvents is an in-memory event.Repository.
type fakeEvents struct {
	mu   sync.Mutex
	rows map[string]*event.Event
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{rows: map[string]*event.Event{}}
}

func (f *fakeEvents) UpsertBatch(_ context.Context, events []*event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range events {
		key := e.Source + "|" + e.ExternalID
		copied := *e
		if existing, ok := f.rows[key]; ok {
			copied.ID = existing.ID
		}
		f.rows[key] = &copied
	}
	return nil
}

func (f *fakeEvents) GetIDsByExternalIDs(_ context.Context, source string, externalIDs []string) (map[string]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]uuid.UUID{}
	for _, externalID := range externalIDs {
		if row, ok := f.rows[source+"|"+externalID]; ok {
			out[externalID] = row.ID
		}
	}
	return out, nil
}

func (f *fakeEvents) MaxLastModified(_ context.Context, source string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var max *time.Time
	for _, row := range f.rows {
		if row.Source != source || row.LastModifiedAt == nil {
			continue
		}
		if max == nil || row.LastModifiedAt.After(*max) {
			ts := *row.LastModifiedAt
			max = &ts
		}
	}
	return max, nil
}

func (f *fakeEvents) CountDuplicates(context.Context) (int, error) { return 0, nil }

func (f *fakeEvents) get(source, externalID string) *event.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[source+"|"+externalID]
}

func (f *fakeEvents) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeFetcher serves pages from memory, with optional per-page failures.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[int]*catalog.Page
	failures map[int]error
	fetched  []int
	lastOpts catalog.FetchOptions
	calls    atomic.Int64
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[int]*catalog.Page{}, failures: map[int]error{}}
}

func (f *fakeFetcher) FetchPage(_ context.Context, page int, opts catalog.FetchOptions) (*catalog.Page, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.fetched = append(f.fetched, page)
	f.lastOpts = opts
	err := f.failures[page]
	result := f.pages[page]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if result == nil {
		return &catalog.Page{Success: true}, nil
	}
	return result, nil
}

func (f *fakeFetcher) Calls() int64 { return f.calls.Load() }

func (f *fakeFetcher) fetchedPages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.fetched))
	copy(out, f.fetched)
	return out
}

// memCheckpoints is an in-memory CheckpointStore.
type memCheckpoints struct {
	mu   sync.Mutex
	runs map[string]map[int]bool
}

func newMemCheckpoints() *memCheckpoints {
	return &memCheckpoints{runs: map[string]map[int]bool{}}
}

func (m *memCheckpoints) MarkDone(_ context.Context, runID string, page int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runs[runID] == nil {
		m.runs[runID] = map[int]bool{}
	}
	m.runs[runID][page] = true
}

func (m *memCheckpoints) CompletedPages(_ context.Context, runID string) map[int]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int]bool{}
	for page := range m.runs[runID] {
		out[page] = true
	}
	return out
}
