// Package leadpool tracks every phone key ever imported so later scraping
// jobs can detect cross-campaign duplicates.
package leadpool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/phone"
	"github.com/rayanlekkat/brio-lead-scraper/internal/storage"
)

// DocumentKey is the storage key for the lead pool document.
const DocumentKey = "leadpool"

// document is the persisted shape: entries keyed by phone key plus the
// running scrape statistics.
type document struct {
	Entries map[string]domain.PoolEntry `json:"entries"`
	Stats   domain.PoolStats            `json:"stats"`
}

// Pool is the persistent set of previously-seen phone numbers.
type Pool struct {
	store storage.Store
	log   logger.Interface
	now   func() time.Time
}

// NewPool creates a pool backed by the given store.
func NewPool(store storage.Store, log logger.Interface) *Pool {
	return &Pool{
		store: store,
		log:   log.WithComponent("leadpool"),
		now:   time.Now,
	}
}

// Exists reports whether the phone's key has been tracked before. A phone
// that fails to normalize never exists.
func (p *Pool) Exists(ctx context.Context, rawPhone string) (bool, error) {
	key, ok := phone.Normalize(rawPhone)
	if !ok {
		return false, nil
	}

	doc, err := p.load(ctx)
	if err != nil {
		return false, err
	}

	_, exists := doc.Entries[key]
	return exists, nil
}

// Lookup returns the pool entry for the phone's key, if any.
func (p *Pool) Lookup(ctx context.Context, rawPhone string) (domain.PoolEntry, bool, error) {
	key, ok := phone.Normalize(rawPhone)
	if !ok {
		return domain.PoolEntry{}, false, nil
	}

	doc, err := p.load(ctx)
	if err != nil {
		return domain.PoolEntry{}, false, err
	}

	entry, exists := doc.Entries[key]
	return entry, exists, nil
}

// Track records the first sighting of a phone key. A no-op when the phone
// fails to normalize or the key is already present: first-seen wins,
// re-tracking never overwrites firstSeenAt, leadId, or campaign.
func (p *Pool) Track(ctx context.Context, rawPhone, leadID, campaign string) error {
	key, ok := phone.Normalize(rawPhone)
	if !ok {
		return nil
	}

	doc, err := p.load(ctx)
	if err != nil {
		return err
	}

	if _, exists := doc.Entries[key]; exists {
		return nil
	}

	doc.Entries[key] = domain.PoolEntry{
		PhoneKey:    key,
		LeadID:      leadID,
		Campaign:    campaign,
		FirstSeenAt: p.now(),
	}
	doc.Stats.TotalTracked = len(doc.Entries)

	return p.save(ctx, doc)
}

// GetStats returns the running pool statistics.
func (p *Pool) GetStats(ctx context.Context) (domain.PoolStats, error) {
	doc, err := p.load(ctx)
	if err != nil {
		return domain.PoolStats{}, err
	}
	return doc.Stats, nil
}

// UpdateScrapeStats adds the given counts to the running totals and stamps
// lastScrape with the current time. Totals only ever grow.
func (p *Pool) UpdateScrapeStats(ctx context.Context, scraped, imported, duplicates int) error {
	doc, err := p.load(ctx)
	if err != nil {
		return err
	}

	doc.Stats.TotalScraped += scraped
	doc.Stats.TotalImported += imported
	doc.Stats.TotalDuplicates += duplicates
	doc.Stats.LastScrape = p.now()

	return p.save(ctx, doc)
}

func (p *Pool) load(ctx context.Context) (*document, error) {
	doc := &document{}
	err := p.store.Load(ctx, DocumentKey, doc)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load lead pool: %w", err)
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string]domain.PoolEntry)
	}
	return doc, nil
}

func (p *Pool) save(ctx context.Context, doc *document) error {
	if err := p.store.Save(ctx, DocumentKey, doc); err != nil {
		return fmt.Errorf("save lead pool: %w", err)
	}
	return nil
}
