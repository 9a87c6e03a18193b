package leads_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayanlekkat/brio-lead-scraper/internal/dnc"
	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/leads"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/storage"
)

func newService(t *testing.T) *leads.Service {
	t.Helper()
	return leads.NewService(storage.NewMemoryStore(), logger.NewNoop())
}

func TestService_CampaignLifecycle(t *testing.T) {
	ctx := context.Background()
	service := newService(t)

	created, err := service.CreateCampaign(ctx, domain.Campaign{
		Name:     "Montreal garages",
		City:     "Montreal",
		Category: "garage",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Zero(t, created.LeadsCount)

	fetched, err := service.GetCampaign(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Montreal garages", fetched.Name)

	fetched.Name = "Montreal garages v2"
	fetched.LeadsCount = 99 // must be ignored by update
	updated, err := service.UpdateCampaign(ctx, fetched)
	require.NoError(t, err)
	assert.Equal(t, "Montreal garages v2", updated.Name)
	assert.Zero(t, updated.LeadsCount)

	list, err := service.ListCampaigns(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, service.DeleteCampaign(ctx, created.ID))
	_, err = service.GetCampaign(ctx, created.ID)
	assert.ErrorIs(t, err, leads.ErrCampaignNotFound)
}

func TestService_ImportLeadsMaintainsCount(t *testing.T) {
	ctx := context.Background()
	service := newService(t)

	campaign, err := service.CreateCampaign(ctx, domain.Campaign{Name: "test"})
	require.NoError(t, err)

	imported, err := service.ImportLeads(ctx, campaign.ID, []domain.Lead{
		{Name: "Garage Tremblay", Phone: "514-555-0001"},
		{Name: "Toiture Nord", Phone: "514-555-0002"},
	})
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, domain.LeadStatusNew, imported[0].Status)
	assert.Equal(t, campaign.ID, imported[0].CampaignID)

	fetched, err := service.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.LeadsCount)

	require.NoError(t, service.DeleteLead(ctx, imported[0].ID))
	fetched, err = service.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.LeadsCount)
}

func TestService_ImportLeads_UnknownCampaign(t *testing.T) {
	service := newService(t)
	_, err := service.ImportLeads(context.Background(), "missing", []domain.Lead{{Name: "x"}})
	assert.ErrorIs(t, err, leads.ErrCampaignNotFound)
}

func TestService_DeleteCampaignCascades(t *testing.T) {
	ctx := context.Background()
	service := newService(t)

	campaign, err := service.CreateCampaign(ctx, domain.Campaign{Name: "doomed"})
	require.NoError(t, err)
	other, err := service.CreateCampaign(ctx, domain.Campaign{Name: "survivor"})
	require.NoError(t, err)

	_, err = service.ImportLeads(ctx, campaign.ID, []domain.Lead{{Name: "a", Phone: "514-555-0001"}})
	require.NoError(t, err)
	kept, err := service.ImportLeads(ctx, other.ID, []domain.Lead{{Name: "b", Phone: "514-555-0002"}})
	require.NoError(t, err)

	require.NoError(t, service.DeleteCampaign(ctx, campaign.ID))

	_, err = service.GetLead(ctx, kept[0].ID)
	assert.NoError(t, err, "other campaign's leads survive")

	remaining, err := service.ListLeads(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestService_UpdateLeadStatusAndEmail(t *testing.T) {
	ctx := context.Background()
	service := newService(t)

	campaign, err := service.CreateCampaign(ctx, domain.Campaign{Name: "test"})
	require.NoError(t, err)
	imported, err := service.ImportLeads(ctx, campaign.ID, []domain.Lead{
		{Name: "Garage Tremblay", Phone: "514-555-0001"},
	})
	require.NoError(t, err)

	lead, err := service.UpdateLeadStatus(ctx, imported[0].ID, domain.LeadStatusContacted)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusContacted, lead.Status)

	lead, err = service.SetLeadEmail(ctx, imported[0].ID, "info@garagetremblay.ca", []domain.EmailCandidate{
		{Email: "info@garagetremblay.ca", Score: 80},
		{Email: "someone@gmail.com", Score: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, "info@garagetremblay.ca", lead.Email)
	assert.Len(t, lead.AllEmails, 2)

	_, err = service.UpdateLeadStatus(ctx, "missing", domain.LeadStatusContacted)
	assert.ErrorIs(t, err, leads.ErrLeadNotFound)
}

func TestService_DoNotCallStatusBlocksNumber(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	registry := dnc.NewRegistry(store, logger.NewNoop())
	service := leads.NewService(store, logger.NewNoop())
	service.SetBlocker(registry)

	campaign, err := service.CreateCampaign(ctx, domain.Campaign{Name: "test"})
	require.NoError(t, err)
	imported, err := service.ImportLeads(ctx, campaign.ID, []domain.Lead{
		{Name: "Garage Tremblay", Phone: "514-555-0001"},
	})
	require.NoError(t, err)

	lead, err := service.UpdateLeadStatus(ctx, imported[0].ID, domain.LeadStatusDoNotCall)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusDoNotCall, lead.Status)

	blocked, err := registry.IsBlocked(ctx, "514-555-0001")
	require.NoError(t, err)
	assert.True(t, blocked, "the lead's number lands on the DNC list")

	entries, err := registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "call_outcome", entries[0].Source)

	// Other transitions leave the registry alone.
	_, err = service.UpdateLeadStatus(ctx, imported[0].ID, domain.LeadStatusNotInterested)
	require.NoError(t, err)
	count, err := registry.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_Recount(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	service := leads.NewService(store, logger.NewNoop())

	campaign, err := service.CreateCampaign(ctx, domain.Campaign{Name: "test"})
	require.NoError(t, err)
	_, err = service.ImportLeads(ctx, campaign.ID, []domain.Lead{
		{Name: "a", Phone: "514-555-0001"},
		{Name: "b", Phone: "514-555-0002"},
	})
	require.NoError(t, err)

	// Simulate a drifted count from a lost whole-document write.
	campaigns := map[string]domain.Campaign{}
	require.NoError(t, store.Load(ctx, leads.DocumentKeyCampaigns, &campaigns))
	drifted := campaigns[campaign.ID]
	drifted.LeadsCount = 7
	campaigns[campaign.ID] = drifted
	require.NoError(t, store.Save(ctx, leads.DocumentKeyCampaigns, campaigns))

	require.NoError(t, service.Recount(ctx))

	fetched, err := service.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.LeadsCount)
}

func TestService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	service := newService(t)

	campaign, err := service.CreateCampaign(ctx, domain.Campaign{Name: "test"})
	require.NoError(t, err)
	_, err = service.ImportLeads(ctx, campaign.ID, []domain.Lead{
		{Name: "Garage Tremblay", Phone: "514-555-0001", Rating: 4.5, ReviewsCount: 88},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, service.ExportCSV(ctx, campaign.ID, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "name,phone,email"))
	assert.Contains(t, lines[1], "Garage Tremblay")
	assert.Contains(t, lines[1], "4.5")

	err = service.ExportCSV(ctx, "missing", &buf)
	assert.ErrorIs(t, err, leads.ErrCampaignNotFound)
}
