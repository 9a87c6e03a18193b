package scheduler_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/job"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/scheduler"
)

type fakeCampaigns struct {
	campaigns []domain.Campaign
}

func (f *fakeCampaigns) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	return f.campaigns, nil
}

type fakeRunner struct {
	mu       sync.Mutex
	requests []job.ScrapeRequest
}

func (f *fakeRunner) Start(req job.ScrapeRequest) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return "job-id"
}

func TestScheduler_ReloadSkipsUnscheduledAndInvalid(t *testing.T) {
	campaigns := &fakeCampaigns{campaigns: []domain.Campaign{
		{ID: "c1", Name: "scheduled", City: "Montreal", Category: "garage", Schedule: "0 6 * * 1"},
		{ID: "c2", Name: "unscheduled", City: "Laval"},
		{ID: "c3", Name: "bad cron", City: "Quebec", Schedule: "not a cron"},
	}}
	s := scheduler.New(campaigns, &fakeRunner{}, logger.NewNoop())

	require.NoError(t, s.Reload(context.Background()))
	// Only c1 has a valid schedule; c3's failure is logged, not fatal.
}

func TestScheduler_ReloadReplacesEntries(t *testing.T) {
	campaigns := &fakeCampaigns{campaigns: []domain.Campaign{
		{ID: "c1", Name: "scheduled", Schedule: "0 6 * * 1"},
	}}
	s := scheduler.New(campaigns, &fakeRunner{}, logger.NewNoop())

	require.NoError(t, s.Reload(context.Background()))

	// Campaign loses its schedule; reload must drop the entry without error.
	campaigns.campaigns = []domain.Campaign{{ID: "c1", Name: "scheduled"}}
	require.NoError(t, s.Reload(context.Background()))
}

func TestScheduler_StartAndStop(t *testing.T) {
	campaigns := &fakeCampaigns{campaigns: []domain.Campaign{
		{ID: "c1", Schedule: "0 6 * * 1"},
	}}
	runner := &fakeRunner{}
	s := scheduler.New(campaigns, runner, logger.NewNoop())

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	assert.Empty(t, runner.requests, "weekly schedule does not fire during the test")
}
