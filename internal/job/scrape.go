package job

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rayanlekkat/brio-lead-scraper/internal/dedup"
	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/events"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/search"
)

// defaultSearchDelay is the fixed pause between consecutive searches.
// Deliberate external rate limiting, not tunable below the provider's
// published policy.
const defaultSearchDelay = 2 * time.Second

// Searcher runs one business search against the external provider.
type Searcher interface {
	SearchBusinesses(ctx context.Context, query search.Query) ([]domain.BusinessResult, error)
}

// Validator merges a scraped batch against the DNC list and lead pool.
type Validator interface {
	ValidateBatch(ctx context.Context, batch []domain.BusinessResult) (dedup.Result, error)
}

// Importer persists validated leads under a campaign.
type Importer interface {
	ImportLeads(ctx context.Context, campaignID string, incoming []domain.Lead) ([]domain.Lead, error)
}

// PoolTracker records imported phone numbers and scrape totals.
type PoolTracker interface {
	Track(ctx context.Context, rawPhone, leadID, campaign string) error
	UpdateScrapeStats(ctx context.Context, scraped, imported, duplicates int) error
}

// Publisher emits observability events.
type Publisher interface {
	Publish(ctx context.Context, event events.Event)
}

// ScrapeRequest describes one scraping job.
type ScrapeRequest struct {
	CampaignID  string
	Keyword     string
	City        string
	PostalCodes []string
	Limit       int
}

// ScrapeRunner executes scraping jobs.
type ScrapeRunner struct {
	searcher     Searcher
	dedup        Validator
	leads        Importer
	pool         PoolTracker
	jobs         Store
	bus          Publisher
	log          logger.Interface
	delay        time.Duration
	defaultLimit int
	now          func() time.Time
}

// NewScrapeRunner wires a scrape runner.
func NewScrapeRunner(
	searcher Searcher,
	deduplicator Validator,
	importer Importer,
	pool PoolTracker,
	jobs Store,
	bus Publisher,
	log logger.Interface,
) *ScrapeRunner {
	return &ScrapeRunner{
		searcher: searcher,
		dedup:    deduplicator,
		leads:    importer,
		pool:     pool,
		jobs:     jobs,
		bus:      bus,
		log:      log.WithComponent("scrape-job"),
		delay:    defaultSearchDelay,
		now:      time.Now,
	}
}

// SetDelay overrides the inter-search pause, used by tests.
func (r *ScrapeRunner) SetDelay(d time.Duration) {
	r.delay = d
}

// SetDefaultLimit sets the per-location result limit applied when a
// request does not specify one.
func (r *ScrapeRunner) SetDefaultLimit(n int) {
	r.defaultLimit = n
}

// Start registers a new scrape job and runs it in a detached goroutine.
// The returned job id is used to poll progress through the store.
func (r *ScrapeRunner) Start(req ScrapeRequest) string {
	if req.Limit <= 0 {
		req.Limit = r.defaultLimit
	}
	j := Job{
		ID:         uuid.NewString(),
		Type:       TypeScrape,
		Status:     StatusRunning,
		CampaignID: req.CampaignID,
		StartedAt:  r.now(),
	}
	r.jobs.Put(j)

	// Detached on purpose: the job outlives the request that started it
	// and is only observable through the store.
	go r.run(context.Background(), j, req)

	return j.ID
}

func (r *ScrapeRunner) run(ctx context.Context, j Job, req ScrapeRequest) {
	locations := buildLocations(req.City, req.PostalCodes)

	r.bus.Publish(ctx, events.Event{
		Type:     events.TypeScrapeStarted,
		Category: events.CategoryScrape,
		Message:  fmt.Sprintf("scrape started for campaign %s", req.CampaignID),
		Payload: map[string]any{
			"job_id":    j.ID,
			"keyword":   req.Keyword,
			"locations": len(locations),
		},
	})

	failedLocations := 0
	for i, location := range locations {
		if i > 0 {
			time.Sleep(r.delay)
		}

		results, err := r.searcher.SearchBusinesses(ctx, search.Query{
			Keyword:  req.Keyword,
			Location: location,
			Limit:    req.Limit,
		})
		if err != nil {
			// One location's failure never aborts the job.
			failedLocations++
			j.Errors = append(j.Errors, fmt.Sprintf("search failed for %s: %s", location, err))
			r.log.Warn("search failed, continuing", "job_id", j.ID, "location", location, "error", err.Error())
			j.Progress = (i + 1) * 100 / len(locations)
			r.jobs.Put(j)
			continue
		}

		j.TotalScraped += len(results)

		batch, err := r.dedup.ValidateBatch(ctx, results)
		if err != nil {
			failedLocations++
			j.Errors = append(j.Errors, fmt.Sprintf("validation failed for %s: %s", location, err))
			j.Progress = (i + 1) * 100 / len(locations)
			r.jobs.Put(j)
			continue
		}
		j.TotalDuplicates += len(batch.Duplicates)
		j.TotalInvalid += len(batch.Invalid)

		for _, invalid := range batch.Invalid {
			if invalid.Reason != dedup.ReasonOnDNCList {
				continue
			}
			r.bus.Publish(ctx, events.Event{
				Type:     events.TypeLeadBlocked,
				Category: events.CategoryDNC,
				Message:  fmt.Sprintf("lead %q blocked by the DNC list", invalid.Business.Name),
				Payload: map[string]any{
					"job_id": j.ID,
					"name":   invalid.Business.Name,
				},
			})
		}

		imported, err := r.importBatch(ctx, req.CampaignID, batch.Valid)
		if err != nil {
			failedLocations++
			j.Errors = append(j.Errors, fmt.Sprintf("import failed for %s: %s", location, err))
			j.Progress = (i + 1) * 100 / len(locations)
			r.jobs.Put(j)
			continue
		}
		j.TotalImported += len(imported)

		if err := r.pool.UpdateScrapeStats(ctx, len(results), len(imported), len(batch.Duplicates)); err != nil {
			r.log.Warn("failed to update pool stats", "job_id", j.ID, "error", err.Error())
		}

		r.bus.Publish(ctx, events.Event{
			Type:     events.TypeLeadsImported,
			Category: events.CategoryScrape,
			Message:  fmt.Sprintf("imported %d leads from %s", len(imported), location),
			Payload: map[string]any{
				"job_id":     j.ID,
				"imported":   len(imported),
				"duplicates": len(batch.Duplicates),
				"invalid":    len(batch.Invalid),
			},
		})

		j.Progress = (i + 1) * 100 / len(locations)
		r.jobs.Put(j)
	}

	if len(req.PostalCodes) > 0 {
		j.PostalCodeStats = splitEvenly(j.TotalImported, req.PostalCodes)
	}

	completed := r.now()
	j.CompletedAt = &completed
	j.Progress = 100
	j.Status = StatusCompleted
	if failedLocations == len(locations) && j.TotalImported == 0 {
		j.Status = StatusFailed
		r.bus.Publish(ctx, events.Event{
			Type:     events.TypeJobFailed,
			Category: events.CategoryScrape,
			Message:  fmt.Sprintf("scrape job %s failed on every location", j.ID),
			Payload:  map[string]any{"job_id": j.ID, "errors": len(j.Errors)},
		})
	}
	r.jobs.Put(j)

	r.bus.Publish(ctx, events.Event{
		Type:     events.TypeScrapeCompleted,
		Category: events.CategoryScrape,
		Message:  fmt.Sprintf("scrape finished with %d leads imported", j.TotalImported),
		Payload: map[string]any{
			"job_id":     j.ID,
			"scraped":    j.TotalScraped,
			"imported":   j.TotalImported,
			"duplicates": j.TotalDuplicates,
			"invalid":    j.TotalInvalid,
		},
	})

	r.log.Info("scrape job finished",
		"job_id", j.ID,
		"status", string(j.Status),
		"scraped", j.TotalScraped,
		"imported", j.TotalImported,
	)
}

func (r *ScrapeRunner) importBatch(ctx context.Context, campaignID string, valid []domain.BusinessResult) ([]domain.Lead, error) {
	if len(valid) == 0 {
		return nil, nil
	}

	incoming := make([]domain.Lead, 0, len(valid))
	for _, business := range valid {
		incoming = append(incoming, domain.Lead{
			Name:         business.Name,
			Phone:        business.Phone,
			Website:      business.Website,
			Address:      business.Address,
			Rating:       business.Rating,
			ReviewsCount: business.ReviewsCount,
			Category:     business.Category,
			Neighborhood: business.Neighborhood,
		})
	}

	imported, err := r.leads.ImportLeads(ctx, campaignID, incoming)
	if err != nil {
		return nil, err
	}

	for _, lead := range imported {
		if err := r.pool.Track(ctx, lead.Phone, lead.ID, campaignID); err != nil {
			r.log.Warn("failed to track lead in pool", "lead_id", lead.ID, "error", err.Error())
		}
	}
	return imported, nil
}

// buildLocations expands a city and its postal codes into search
// locations. Without postal codes the city itself is the single location.
func buildLocations(city string, postalCodes []string) []string {
	if len(postalCodes) == 0 {
		return []string{city}
	}
	locations := make([]string, 0, len(postalCodes))
	for _, code := range postalCodes {
		locations = append(locations, fmt.Sprintf("%s %s", code, city))
	}
	return locations
}

// splitEvenly divides total across the codes regardless of which code
// actually produced the leads, remainder going to the first codes.
func splitEvenly(total int, codes []string) map[string]int {
	stats := make(map[string]int, len(codes))
	base := total / len(codes)
	remainder := total % len(codes)
	for i, code := range codes {
		stats[code] = base
		if i < remainder {
			stats[code]++
		}
	}
	return stats
}
