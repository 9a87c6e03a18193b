package job

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/events"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/webcrawl"
)

// defaultCrawlDelay is the fixed pause between consecutive site crawls.
const defaultCrawlDelay = 1 * time.Second

// SiteCrawler crawls one website for email candidates.
type SiteCrawler interface {
	Crawl(ctx context.Context, rawURL string) webcrawl.Result
}

// EmailSetter attaches a crawl outcome to a stored lead.
type EmailSetter interface {
	SetLeadEmail(ctx context.Context, id string, best string, candidates []domain.EmailCandidate) (domain.Lead, error)
}

// ExtractTarget is one lead whose website should be crawled.
type ExtractTarget struct {
	LeadID  string `json:"lead_id"`
	Website string `json:"website"`
}

// ExtractRequest describes one bulk extraction job.
type ExtractRequest struct {
	CampaignID string
	Targets    []ExtractTarget
}

// ExtractRunner executes bulk email-extraction jobs.
type ExtractRunner struct {
	crawler SiteCrawler
	leads   EmailSetter
	jobs    Store
	bus     Publisher
	log     logger.Interface
	delay   time.Duration
	now     func() time.Time
}

// NewExtractRunner wires an extraction runner.
func NewExtractRunner(
	crawler SiteCrawler,
	setter EmailSetter,
	jobs Store,
	bus Publisher,
	log logger.Interface,
) *ExtractRunner {
	return &ExtractRunner{
		crawler: crawler,
		leads:   setter,
		jobs:    jobs,
		bus:     bus,
		log:     log.WithComponent("extract-job"),
		delay:   defaultCrawlDelay,
		now:     time.Now,
	}
}

// SetDelay overrides the inter-crawl pause, used by tests.
func (r *ExtractRunner) SetDelay(d time.Duration) {
	r.delay = d
}

// Start registers a new extraction job and runs it in a detached
// goroutine. Sites are crawled strictly sequentially.
func (r *ExtractRunner) Start(req ExtractRequest) string {
	j := Job{
		ID:         uuid.NewString(),
		Type:       TypeExtract,
		Status:     StatusRunning,
		CampaignID: req.CampaignID,
		StartedAt:  r.now(),
	}
	r.jobs.Put(j)

	go r.run(context.Background(), j, req)

	return j.ID
}

func (r *ExtractRunner) run(ctx context.Context, j Job, req ExtractRequest) {
	for i, target := range req.Targets {
		if i > 0 {
			time.Sleep(r.delay)
		}

		result := r.crawler.Crawl(ctx, target.Website)
		j.Errors = append(j.Errors, result.Errors...)

		if result.BestEmail != "" {
			j.EmailsFound++
			r.bus.Publish(ctx, events.Event{
				Type:     events.TypeEmailFound,
				Category: events.CategoryExtract,
				Message:  fmt.Sprintf("found %s for lead %s", result.BestEmail, target.LeadID),
				Payload: map[string]any{
					"job_id":  j.ID,
					"lead_id": target.LeadID,
					"email":   result.BestEmail,
				},
			})
		}

		// Persist even an empty outcome so the candidate list reflects
		// the latest crawl.
		if _, err := r.leads.SetLeadEmail(ctx, target.LeadID, result.BestEmail, result.Emails); err != nil {
			j.Errors = append(j.Errors, fmt.Sprintf("failed to store emails for lead %s: %s", target.LeadID, err))
		}

		j.Progress = (i + 1) * 100 / len(req.Targets)
		r.jobs.Put(j)
	}

	completed := r.now()
	j.CompletedAt = &completed
	j.Progress = 100
	j.Status = StatusCompleted
	r.jobs.Put(j)

	r.log.Info("extract job finished",
		"job_id", j.ID,
		"targets", len(req.Targets),
		"emails_found", j.EmailsFound,
	)
}
