// Package leads persists campaigns and their leads through the
// whole-document store and exposes the operations the API and CLI need.
package leads

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/storage"
)

const (
	// DocumentKeyCampaigns is the store key for the campaigns document.
	DocumentKeyCampaigns = "campaigns"
	// DocumentKeyLeads is the store key for the leads document.
	DocumentKeyLeads = "leads"
)

// ErrCampaignNotFound is returned when a campaign id has no record.
var ErrCampaignNotFound = errors.New("campaign not found")

// ErrLeadNotFound is returned when a lead id has no record.
var ErrLeadNotFound = errors.New("lead not found")

// Blocker records a phone number on the do-not-call list.
type Blocker interface {
	Add(ctx context.Context, rawPhone, reason, source string) (bool, error)
}

// Service manages campaign and lead records.
type Service struct {
	store   storage.Store
	blocker Blocker
	log     logger.Interface
	now     func() time.Time
}

// NewService creates a lead service backed by the given store.
func NewService(store storage.Store, log logger.Interface) *Service {
	return &Service{
		store: store,
		log:   log.WithComponent("leads"),
		now:   time.Now,
	}
}

// SetBlocker wires the do-not-call registry. Once set, moving a lead to
// do_not_call also records its number on the DNC list.
func (s *Service) SetBlocker(blocker Blocker) {
	s.blocker = blocker
}

func (s *Service) loadCampaigns(ctx context.Context) (map[string]domain.Campaign, error) {
	campaigns := make(map[string]domain.Campaign)
	if err := s.store.Load(ctx, DocumentKeyCampaigns, &campaigns); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return campaigns, nil
		}
		return nil, fmt.Errorf("failed to load campaigns: %w", err)
	}
	return campaigns, nil
}

func (s *Service) loadLeads(ctx context.Context) (map[string]domain.Lead, error) {
	leads := make(map[string]domain.Lead)
	if err := s.store.Load(ctx, DocumentKeyLeads, &leads); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return leads, nil
		}
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	return leads, nil
}

// CreateCampaign stores a new campaign, assigning the id and creation time.
func (s *Service) CreateCampaign(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error) {
	campaigns, err := s.loadCampaigns(ctx)
	if err != nil {
		return domain.Campaign{}, err
	}

	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	campaign.CreatedAt = s.now()
	campaign.LeadsCount = 0
	campaigns[campaign.ID] = campaign

	if err := s.store.Save(ctx, DocumentKeyCampaigns, campaigns); err != nil {
		return domain.Campaign{}, fmt.Errorf("failed to save campaigns: %w", err)
	}

	s.log.Info("campaign created", "campaign_id", campaign.ID, "name", campaign.Name)
	return campaign, nil
}

// GetCampaign returns a campaign by id.
func (s *Service) GetCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	campaigns, err := s.loadCampaigns(ctx)
	if err != nil {
		return domain.Campaign{}, err
	}
	campaign, ok := campaigns[id]
	if !ok {
		return domain.Campaign{}, ErrCampaignNotFound
	}
	return campaign, nil
}

// ListCampaigns returns all campaigns ordered by creation time, newest first.
func (s *Service) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	campaigns, err := s.loadCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]domain.Campaign, 0, len(campaigns))
	for _, campaign := range campaigns {
		list = append(list, campaign)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// UpdateCampaign replaces a stored campaign's mutable fields. The id,
// creation time and leads count are preserved.
func (s *Service) UpdateCampaign(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error) {
	campaigns, err := s.loadCampaigns(ctx)
	if err != nil {
		return domain.Campaign{}, err
	}
	existing, ok := campaigns[campaign.ID]
	if !ok {
		return domain.Campaign{}, ErrCampaignNotFound
	}

	campaign.CreatedAt = existing.CreatedAt
	campaign.LeadsCount = existing.LeadsCount
	campaigns[campaign.ID] = campaign

	if err := s.store.Save(ctx, DocumentKeyCampaigns, campaigns); err != nil {
		return domain.Campaign{}, fmt.Errorf("failed to save campaigns: %w", err)
	}
	return campaign, nil
}

// DeleteCampaign removes a campaign and all of its leads.
func (s *Service) DeleteCampaign(ctx context.Context, id string) error {
	campaigns, err := s.loadCampaigns(ctx)
	if err != nil {
		return err
	}
	if _, ok := campaigns[id]; !ok {
		return ErrCampaignNotFound
	}
	delete(campaigns, id)

	allLeads, err := s.loadLeads(ctx)
	if err != nil {
		return err
	}
	removed := 0
	for leadID, lead := range allLeads {
		if lead.CampaignID == id {
			delete(allLeads, leadID)
			removed++
		}
	}

	if err := s.store.Save(ctx, DocumentKeyLeads, allLeads); err != nil {
		return fmt.Errorf("failed to save leads: %w", err)
	}
	if err := s.store.Save(ctx, DocumentKeyCampaigns, campaigns); err != nil {
		return fmt.Errorf("failed to save campaigns: %w", err)
	}

	s.log.Info("campaign deleted", "campaign_id", id, "leads_removed", removed)
	return nil
}

// ImportLeads stores the given leads under a campaign and bumps its
// running leads count. Ids, status and import time are assigned here.
func (s *Service) ImportLeads(ctx context.Context, campaignID string, incoming []domain.Lead) ([]domain.Lead, error) {
	campaigns, err := s.loadCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	campaign, ok := campaigns[campaignID]
	if !ok {
		return nil, ErrCampaignNotFound
	}

	allLeads, err := s.loadLeads(ctx)
	if err != nil {
		return nil, err
	}

	imported := make([]domain.Lead, 0, len(incoming))
	now := s.now()
	for _, lead := range incoming {
		if lead.ID == "" {
			lead.ID = uuid.NewString()
		}
		lead.CampaignID = campaignID
		lead.Status = domain.LeadStatusNew
		lead.ImportedAt = now
		allLeads[lead.ID] = lead
		imported = append(imported, lead)
	}

	campaign.LeadsCount += len(imported)
	campaigns[campaignID] = campaign

	if err := s.store.Save(ctx, DocumentKeyLeads, allLeads); err != nil {
		return nil, fmt.Errorf("failed to save leads: %w", err)
	}
	if err := s.store.Save(ctx, DocumentKeyCampaigns, campaigns); err != nil {
		return nil, fmt.Errorf("failed to save campaigns: %w", err)
	}

	s.log.Info("leads imported", "campaign_id", campaignID, "count", len(imported))
	return imported, nil
}

// GetLead returns a lead by id.
func (s *Service) GetLead(ctx context.Context, id string) (domain.Lead, error) {
	allLeads, err := s.loadLeads(ctx)
	if err != nil {
		return domain.Lead{}, err
	}
	lead, ok := allLeads[id]
	if !ok {
		return domain.Lead{}, ErrLeadNotFound
	}
	return lead, nil
}

// ListLeads returns a campaign's leads ordered by import time, oldest
// first so batches read in scrape order.
func (s *Service) ListLeads(ctx context.Context, campaignID string) ([]domain.Lead, error) {
	allLeads, err := s.loadLeads(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]domain.Lead, 0)
	for _, lead := range allLeads {
		if lead.CampaignID == campaignID {
			list = append(list, lead)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].ImportedAt.Equal(list[j].ImportedAt) {
			return list[i].Name < list[j].Name
		}
		return list[i].ImportedAt.Before(list[j].ImportedAt)
	})
	return list, nil
}

// UpdateLeadStatus sets a lead's call outcome status. A do_not_call
// transition blocks the lead's number before the status is persisted, so
// a lead never reads do_not_call while its number is still scrapeable.
func (s *Service) UpdateLeadStatus(ctx context.Context, id string, status domain.LeadStatus) (domain.Lead, error) {
	allLeads, err := s.loadLeads(ctx)
	if err != nil {
		return domain.Lead{}, err
	}
	lead, ok := allLeads[id]
	if !ok {
		return domain.Lead{}, ErrLeadNotFound
	}

	if status == domain.LeadStatusDoNotCall && s.blocker != nil && lead.Phone != "" {
		added, err := s.blocker.Add(ctx, lead.Phone, "requested during call", "call_outcome")
		if err != nil {
			return domain.Lead{}, fmt.Errorf("failed to block number: %w", err)
		}
		if !added {
			s.log.Warn("lead phone could not be blocked", "lead_id", id, "phone", lead.Phone)
		}
	}

	lead.Status = status
	allLeads[id] = lead

	if err := s.store.Save(ctx, DocumentKeyLeads, allLeads); err != nil {
		return domain.Lead{}, fmt.Errorf("failed to save leads: %w", err)
	}
	return lead, nil
}

// SetLeadEmail attaches the crawl outcome to a lead: the best email plus
// the full scored candidate list for audit.
func (s *Service) SetLeadEmail(ctx context.Context, id string, best string, candidates []domain.EmailCandidate) (domain.Lead, error) {
	allLeads, err := s.loadLeads(ctx)
	if err != nil {
		return domain.Lead{}, err
	}
	lead, ok := allLeads[id]
	if !ok {
		return domain.Lead{}, ErrLeadNotFound
	}

	lead.Email = best
	lead.AllEmails = candidates
	allLeads[id] = lead

	if err := s.store.Save(ctx, DocumentKeyLeads, allLeads); err != nil {
		return domain.Lead{}, fmt.Errorf("failed to save leads: %w", err)
	}
	return lead, nil
}

// DeleteLead removes a lead and decrements its campaign's leads count.
func (s *Service) DeleteLead(ctx context.Context, id string) error {
	allLeads, err := s.loadLeads(ctx)
	if err != nil {
		return err
	}
	lead, ok := allLeads[id]
	if !ok {
		return ErrLeadNotFound
	}
	delete(allLeads, id)

	campaigns, err := s.loadCampaigns(ctx)
	if err != nil {
		return err
	}
	if campaign, ok := campaigns[lead.CampaignID]; ok && campaign.LeadsCount > 0 {
		campaign.LeadsCount--
		campaigns[lead.CampaignID] = campaign
		if err := s.store.Save(ctx, DocumentKeyCampaigns, campaigns); err != nil {
			return fmt.Errorf("failed to save campaigns: %w", err)
		}
	}

	if err := s.store.Save(ctx, DocumentKeyLeads, allLeads); err != nil {
		return fmt.Errorf("failed to save leads: %w", err)
	}
	return nil
}

// Recount rebuilds every campaign's leads count from the stored leads.
// Repair tool for counts drifted by lost whole-document writes.
func (s *Service) Recount(ctx context.Context) error {
	campaigns, err := s.loadCampaigns(ctx)
	if err != nil {
		return err
	}
	allLeads, err := s.loadLeads(ctx)
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	for _, lead := range allLeads {
		counts[lead.CampaignID]++
	}
	for id, campaign := range campaigns {
		campaign.LeadsCount = counts[id]
		campaigns[id] = campaign
	}

	if err := s.store.Save(ctx, DocumentKeyCampaigns, campaigns); err != nil {
		return fmt.Errorf("failed to save campaigns: %w", err)
	}
	return nil
}
