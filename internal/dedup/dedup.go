// Package dedup validates freshly scraped business results against the DNC
// registry and the lead pool before they become leads.
package dedup

import (
	"context"
	"fmt"
	"strings"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/phone"
)

// Reason strings reported for rejected leads.
const (
	ReasonMissingName    = "missing business name"
	ReasonMissingPhone   = "missing phone number"
	ReasonInvalidPhone   = "invalid phone format"
	ReasonOnDNCList      = "on DNC list"
	ReasonInPool         = "already in lead pool"
	ReasonBatchDuplicate = "duplicate within batch"
)

// Blocklist answers DNC membership checks.
type Blocklist interface {
	IsBlocked(ctx context.Context, rawPhone string) (bool, error)
}

// PoolChecker answers lead-pool membership checks.
type PoolChecker interface {
	Lookup(ctx context.Context, rawPhone string) (domain.PoolEntry, bool, error)
}

// Invalid is a rejected business result with the stated reason.
type Invalid struct {
	Business domain.BusinessResult `json:"business"`
	Reason   string                `json:"reason"`
}

// Duplicate is a business result kept out of the valid set but reported
// for audit, with a reference to the existing record when known.
type Duplicate struct {
	Business         domain.BusinessResult `json:"business"`
	Reason           string                `json:"reason"`
	ExistingCampaign string                `json:"existing_campaign,omitempty"`
	ExistingLeadID   string                `json:"existing_lead_id,omitempty"`
}

// Result splits a validated batch into its buckets.
type Result struct {
	Valid      []domain.BusinessResult `json:"valid"`
	Duplicates []Duplicate             `json:"duplicates"`
	Invalid    []Invalid               `json:"invalid"`
}

// Deduplicator merges scraped batches against the DNC list and lead pool.
type Deduplicator struct {
	blocklist Blocklist
	pool      PoolChecker
	log       logger.Interface
}

// New creates a deduplicator.
func New(blocklist Blocklist, pool PoolChecker, log logger.Interface) *Deduplicator {
	return &Deduplicator{
		blocklist: blocklist,
		pool:      pool,
		log:       log.WithComponent("dedup"),
	}
}

// ValidateBatch applies, in order: a same-batch dedup pass (first
// occurrence wins), per-lead field validation, the DNC check, and the
// lead-pool duplicate check. DNC rejection takes priority over duplicate
// detection.
func (d *Deduplicator) ValidateBatch(ctx context.Context, batch []domain.BusinessResult) (Result, error) {
	var result Result

	unique := d.dedupWithinBatch(batch, &result)

	for _, business := range unique {
		if reason, ok := validateFields(business); !ok {
			result.Invalid = append(result.Invalid, Invalid{Business: business, Reason: reason})
			continue
		}

		blocked, err := d.blocklist.IsBlocked(ctx, business.Phone)
		if err != nil {
			return Result{}, fmt.Errorf("dnc check for %q: %w", business.Name, err)
		}
		if blocked {
			result.Invalid = append(result.Invalid, Invalid{Business: business, Reason: ReasonOnDNCList})
			continue
		}

		existing, found, err := d.pool.Lookup(ctx, business.Phone)
		if err != nil {
			return Result{}, fmt.Errorf("pool check for %q: %w", business.Name, err)
		}
		if found {
			result.Duplicates = append(result.Duplicates, Duplicate{
				Business:         business,
				Reason:           ReasonInPool,
				ExistingCampaign: existing.Campaign,
				ExistingLeadID:   existing.LeadID,
			})
			continue
		}

		result.Valid = append(result.Valid, business)
	}

	d.log.Info("batch validated",
		"total", len(batch),
		"valid", len(result.Valid),
		"duplicates", len(result.Duplicates),
		"invalid", len(result.Invalid),
	)

	return result, nil
}

// dedupWithinBatch removes same-job duplicates: exact phone-key match
// first, then exact lowercase (name, address) pair match for phone-less
// records. First occurrence wins, in discovery order.
func (d *Deduplicator) dedupWithinBatch(batch []domain.BusinessResult, result *Result) []domain.BusinessResult {
	seenPhones := make(map[string]struct{})
	seenNameAddr := make(map[string]struct{})

	unique := make([]domain.BusinessResult, 0, len(batch))
	for _, business := range batch {
		if key, ok := phone.Normalize(business.Phone); ok {
			if _, dup := seenPhones[key]; dup {
				result.Duplicates = append(result.Duplicates, Duplicate{
					Business: business,
					Reason:   ReasonBatchDuplicate,
				})
				continue
			}
			seenPhones[key] = struct{}{}
		} else if business.Name != "" {
			pairKey := strings.ToLower(business.Name) + "\x00" + strings.ToLower(business.Address)
			if _, dup := seenNameAddr[pairKey]; dup {
				result.Duplicates = append(result.Duplicates, Duplicate{
					Business: business,
					Reason:   ReasonBatchDuplicate,
				})
				continue
			}
			seenNameAddr[pairKey] = struct{}{}
		}

		unique = append(unique, business)
	}

	return unique
}

// validateFields checks presence and shape of required fields.
func validateFields(business domain.BusinessResult) (string, bool) {
	if strings.TrimSpace(business.Name) == "" {
		return ReasonMissingName, false
	}
	if strings.TrimSpace(business.Phone) == "" {
		return ReasonMissingPhone, false
	}
	if _, ok := phone.Normalize(business.Phone); !ok {
		return ReasonInvalidPhone, false
	}
	return "", true
}
