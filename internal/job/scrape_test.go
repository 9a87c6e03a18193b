package job_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayanlekkat/brio-lead-scraper/internal/dedup"
	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/events"
	"github.com/rayanlekkat/brio-lead-scraper/internal/job"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/search"
)

type fakeSearcher struct {
	mu        sync.Mutex
	queries   []search.Query
	responses map[string][]domain.BusinessResult
	errs      map[string]error
}

func (f *fakeSearcher) SearchBusinesses(ctx context.Context, query search.Query) ([]domain.BusinessResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if err, ok := f.errs[query.Location]; ok {
		return nil, err
	}
	return f.responses[query.Location], nil
}

type fakeValidator struct{}

func (f *fakeValidator) ValidateBatch(ctx context.Context, batch []domain.BusinessResult) (dedup.Result, error) {
	// Everything valid except entries flagged by name.
	var result dedup.Result
	for _, business := range batch {
		if business.Name == "dup" {
			result.Duplicates = append(result.Duplicates, dedup.Duplicate{Business: business, Reason: dedup.ReasonInPool})
			continue
		}
		result.Valid = append(result.Valid, business)
	}
	return result, nil
}

type fakeImporter struct {
	mu       sync.Mutex
	imported []domain.Lead
}

func (f *fakeImporter) ImportLeads(ctx context.Context, campaignID string, incoming []domain.Lead) ([]domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Lead, 0, len(incoming))
	for _, lead := range incoming {
		lead.ID = lead.Name + "-id"
		lead.CampaignID = campaignID
		out = append(out, lead)
	}
	f.imported = append(f.imported, out...)
	return out, nil
}

type fakePool struct {
	mu      sync.Mutex
	tracked []string
	scraped int
}

func (f *fakePool) Track(ctx context.Context, rawPhone, leadID, campaign string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracked = append(f.tracked, rawPhone)
	return nil
}

func (f *fakePool) UpdateScrapeStats(ctx context.Context, scraped, imported, duplicates int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scraped += scraped
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakePublisher) Publish(ctx context.Context, event events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakePublisher) typeCount(eventType events.Type) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, event := range f.events {
		if event.Type == eventType {
			count++
		}
	}
	return count
}

func waitForJob(t *testing.T, store job.Store, id string) job.Job {
	t.Helper()
	var done job.Job
	require.Eventually(t, func() bool {
		j, ok := store.Get(id)
		if !ok || j.Status == job.StatusRunning {
			return false
		}
		done = j
		return true
	}, 2*time.Second, 10*time.Millisecond)
	return done
}

func TestScrapeRunner_ImportsAcrossLocations(t *testing.T) {
	searcher := &fakeSearcher{responses: map[string][]domain.BusinessResult{
		"H2X Montreal": {
			{Name: "Garage Tremblay", Phone: "514-555-0001"},
			{Name: "dup", Phone: "514-555-0009"},
		},
		"H3Z Montreal": {
			{Name: "Toiture Nord", Phone: "514-555-0002"},
		},
	}}
	importer := &fakeImporter{}
	pool := &fakePool{}
	bus := &fakePublisher{}
	store := job.NewMemoryStore()

	runner := job.NewScrapeRunner(searcher, &fakeValidator{}, importer, pool, store, bus, logger.NewNoop())
	runner.SetDelay(time.Millisecond)

	id := runner.Start(job.ScrapeRequest{
		CampaignID:  "camp-1",
		Keyword:     "garage",
		City:        "Montreal",
		PostalCodes: []string{"H2X", "H3Z"},
	})

	done := waitForJob(t, store, id)
	assert.Equal(t, job.StatusCompleted, done.Status)
	assert.Equal(t, 100, done.Progress)
	assert.Equal(t, 3, done.TotalScraped)
	assert.Equal(t, 2, done.TotalImported)
	assert.Equal(t, 1, done.TotalDuplicates)
	assert.Empty(t, done.Errors)

	assert.Len(t, importer.imported, 2)
	assert.Len(t, pool.tracked, 2, "every imported lead is tracked in the pool")
	assert.Equal(t, 1, bus.typeCount(events.TypeScrapeStarted))
	assert.Equal(t, 1, bus.typeCount(events.TypeScrapeCompleted))
	assert.Equal(t, 2, bus.typeCount(events.TypeLeadsImported))

	// Even split across postal codes: 2 leads over 2 codes.
	assert.Equal(t, map[string]int{"H2X": 1, "H3Z": 1}, done.PostalCodeStats)
}

func TestScrapeRunner_DefaultLimitApplied(t *testing.T) {
	searcher := &fakeSearcher{responses: map[string][]domain.BusinessResult{}}
	store := job.NewMemoryStore()
	runner := job.NewScrapeRunner(searcher, &fakeValidator{}, &fakeImporter{}, &fakePool{}, store, &fakePublisher{}, logger.NewNoop())
	runner.SetDelay(time.Millisecond)
	runner.SetDefaultLimit(25)

	id := runner.Start(job.ScrapeRequest{CampaignID: "camp-1", Keyword: "garage", City: "Montreal"})
	waitForJob(t, store, id)

	id = runner.Start(job.ScrapeRequest{CampaignID: "camp-1", Keyword: "garage", City: "Montreal", Limit: 5})
	waitForJob(t, store, id)

	searcher.mu.Lock()
	defer searcher.mu.Unlock()
	require.Len(t, searcher.queries, 2)
	assert.Equal(t, 25, searcher.queries[0].Limit, "configured default fills an unset limit")
	assert.Equal(t, 5, searcher.queries[1].Limit, "an explicit limit wins")
}

func TestScrapeRunner_LocationFailureDoesNotAbortJob(t *testing.T) {
	searcher := &fakeSearcher{
		responses: map[string][]domain.BusinessResult{
			"H3Z Montreal": {{Name: "Toiture Nord", Phone: "514-555-0002"}},
		},
		errs: map[string]error{
			"H2X Montreal": errors.New("search API error 40101: auth failed"),
		},
	}
	store := job.NewMemoryStore()
	runner := job.NewScrapeRunner(searcher, &fakeValidator{}, &fakeImporter{}, &fakePool{}, store, &fakePublisher{}, logger.NewNoop())
	runner.SetDelay(time.Millisecond)

	id := runner.Start(job.ScrapeRequest{
		CampaignID:  "camp-1",
		Keyword:     "garage",
		City:        "Montreal",
		PostalCodes: []string{"H2X", "H3Z"},
	})

	done := waitForJob(t, store, id)
	assert.Equal(t, job.StatusCompleted, done.Status, "one failed location does not fail the job")
	assert.Equal(t, 1, done.TotalImported)
	require.Len(t, done.Errors, 1)
	assert.Contains(t, done.Errors[0], "H2X Montreal")
}

func TestScrapeRunner_AllLocationsFailed(t *testing.T) {
	searcher := &fakeSearcher{errs: map[string]error{
		"Montreal": errors.New("search API error 50000"),
	}}
	bus := &fakePublisher{}
	store := job.NewMemoryStore()
	runner := job.NewScrapeRunner(searcher, &fakeValidator{}, &fakeImporter{}, &fakePool{}, store, bus, logger.NewNoop())
	runner.SetDelay(time.Millisecond)

	id := runner.Start(job.ScrapeRequest{CampaignID: "camp-1", Keyword: "garage", City: "Montreal"})

	done := waitForJob(t, store, id)
	assert.Equal(t, job.StatusFailed, done.Status)
	assert.Equal(t, 1, bus.typeCount(events.TypeJobFailed))
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	store := job.NewMemoryStore()
	store.Put(job.Job{ID: "old", StartedAt: time.Now().Add(-time.Hour)})
	store.Put(job.Job{ID: "new", StartedAt: time.Now()})

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
}
