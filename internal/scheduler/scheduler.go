// Package scheduler triggers recurring scrapes for campaigns that carry a
// cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/job"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
)

// CampaignLister returns the campaigns that may carry schedules.
type CampaignLister interface {
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
}

// ScrapeStarter launches a scrape job and returns its id.
type ScrapeStarter interface {
	Start(req job.ScrapeRequest) string
}

// Scheduler keeps one cron entry per scheduled campaign.
type Scheduler struct {
	campaigns CampaignLister
	runner    ScrapeStarter
	cron      *cron.Cron
	log       logger.Interface

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a scheduler. Standard 5-field cron expressions.
func New(campaigns CampaignLister, runner ScrapeStarter, log logger.Interface) *Scheduler {
	return &Scheduler{
		campaigns: campaigns,
		runner:    runner,
		cron:      cron.New(),
		log:       log.WithComponent("scheduler"),
		entries:   make(map[string]cron.EntryID),
	}
}

// Start loads schedules and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.Reload(ctx); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler started", "scheduled_campaigns", s.entryCount())
	return nil
}

// Stop halts the cron loop. Jobs already launched keep running.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

// Reload rebuilds all cron entries from the stored campaigns. Called on
// start and after campaign create/update/delete.
func (s *Scheduler) Reload(ctx context.Context) error {
	campaigns, err := s.campaigns.ListCampaigns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list campaigns: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entryID := range s.entries {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}

	for _, campaign := range campaigns {
		if campaign.Schedule == "" {
			continue
		}
		if err := s.schedule(campaign); err != nil {
			s.log.Error("failed to schedule campaign",
				"campaign_id", campaign.ID,
				"schedule", campaign.Schedule,
				"error", err.Error(),
			)
		}
	}
	return nil
}

// schedule adds one cron entry. Caller holds s.mu.
func (s *Scheduler) schedule(campaign domain.Campaign) error {
	// Capture values locally, the closure outlives the loop iteration.
	campaignID := campaign.ID
	keyword := campaign.Category
	city := campaign.City
	postalCodes := campaign.PostalCodes

	entryID, err := s.cron.AddFunc(campaign.Schedule, func() {
		jobID := s.runner.Start(job.ScrapeRequest{
			CampaignID:  campaignID,
			Keyword:     keyword,
			City:        city,
			PostalCodes: postalCodes,
		})
		s.log.Info("scheduled scrape triggered",
			"campaign_id", campaignID,
			"job_id", jobID,
		)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron entry: %w", err)
	}

	s.entries[campaign.ID] = entryID
	s.log.Info("campaign scheduled",
		"campaign_id", campaign.ID,
		"schedule", campaign.Schedule,
	)
	return nil
}

func (s *Scheduler) entryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
