// Package api implements the HTTP API for the lead scraper.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/leads"
)

// CampaignService defines the campaign and lead operations the handlers use.
type CampaignService interface {
	CreateCampaign(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error)
	GetCampaign(ctx context.Context, id string) (domain.Campaign, error)
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
	UpdateCampaign(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
	ListLeads(ctx context.Context, campaignID string) ([]domain.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, status domain.LeadStatus) (domain.Lead, error)
	ExportCSV(ctx context.Context, campaignID string, w io.Writer) error
}

// SchedulerReloader rebuilds cron entries after campaign changes.
type SchedulerReloader interface {
	Reload(ctx context.Context) error
}

// CampaignsHandler handles campaign and lead HTTP requests.
type CampaignsHandler struct {
	service   CampaignService
	scheduler SchedulerReloader
}

// NewCampaignsHandler creates a campaigns handler.
func NewCampaignsHandler(service CampaignService) *CampaignsHandler {
	return &CampaignsHandler{service: service}
}

// SetScheduler attaches the scheduler so campaign changes take effect
// without a restart.
func (h *CampaignsHandler) SetScheduler(scheduler SchedulerReloader) {
	h.scheduler = scheduler
}

// CreateCampaignRequest is the POST /campaigns payload.
type CreateCampaignRequest struct {
	Name        string   `json:"name" binding:"required"`
	City        string   `json:"city" binding:"required"`
	PostalCodes []string `json:"postal_codes"`
	Category    string   `json:"category"`
	Schedule    string   `json:"schedule"`
}

// CreateCampaign handles POST /api/v1/campaigns
func (h *CampaignsHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	campaign, err := h.service.CreateCampaign(c.Request.Context(), domain.Campaign{
		Name:        req.Name,
		City:        req.City,
		PostalCodes: req.PostalCodes,
		Category:    req.Category,
		Schedule:    req.Schedule,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create campaign",
		})
		return
	}

	h.reloadScheduler(c.Request.Context())
	c.JSON(http.StatusCreated, campaign)
}

// ListCampaigns handles GET /api/v1/campaigns
func (h *CampaignsHandler) ListCampaigns(c *gin.Context) {
	campaigns, err := h.service.ListCampaigns(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve campaigns",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns": campaigns,
		"total":     len(campaigns),
	})
}

// GetCampaign handles GET /api/v1/campaigns/:id
func (h *CampaignsHandler) GetCampaign(c *gin.Context) {
	campaign, err := h.service.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, leads.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Campaign not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve campaign",
		})
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// UpdateCampaign handles PUT /api/v1/campaigns/:id
func (h *CampaignsHandler) UpdateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	campaign, err := h.service.UpdateCampaign(c.Request.Context(), domain.Campaign{
		ID:          c.Param("id"),
		Name:        req.Name,
		City:        req.City,
		PostalCodes: req.PostalCodes,
		Category:    req.Category,
		Schedule:    req.Schedule,
	})
	if err != nil {
		if errors.Is(err, leads.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Campaign not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update campaign",
		})
		return
	}

	h.reloadScheduler(c.Request.Context())
	c.JSON(http.StatusOK, campaign)
}

// DeleteCampaign handles DELETE /api/v1/campaigns/:id
func (h *CampaignsHandler) DeleteCampaign(c *gin.Context) {
	if err := h.service.DeleteCampaign(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, leads.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Campaign not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete campaign",
		})
		return
	}

	h.reloadScheduler(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListLeads handles GET /api/v1/campaigns/:id/leads
func (h *CampaignsHandler) ListLeads(c *gin.Context) {
	campaignID := c.Param("id")
	if _, err := h.service.GetCampaign(c.Request.Context(), campaignID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Campaign not found",
		})
		return
	}

	list, err := h.service.ListLeads(c.Request.Context(), campaignID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve leads",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": list,
		"total": len(list),
	})
}

// ExportLeads handles GET /api/v1/campaigns/:id/leads/export
func (h *CampaignsHandler) ExportLeads(c *gin.Context) {
	campaignID := c.Param("id")

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "leads-"+campaignID+".csv"))

	if err := h.service.ExportCSV(c.Request.Context(), campaignID, c.Writer); err != nil {
		if errors.Is(err, leads.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Campaign not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to export leads",
		})
		return
	}
}

// UpdateLeadStatusRequest is the PATCH /leads/:id/status payload.
type UpdateLeadStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var validLeadStatuses = map[domain.LeadStatus]struct{}{
	domain.LeadStatusNew:           {},
	domain.LeadStatusContacted:     {},
	domain.LeadStatusInterested:    {},
	domain.LeadStatusNotInterested: {},
	domain.LeadStatusDoNotCall:     {},
}

// UpdateLeadStatus handles PATCH /api/v1/leads/:id/status
func (h *CampaignsHandler) UpdateLeadStatus(c *gin.Context) {
	var req UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	status := domain.LeadStatus(req.Status)
	if _, ok := validLeadStatuses[status]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid lead status: " + req.Status,
		})
		return
	}

	lead, err := h.service.UpdateLeadStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Lead not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update lead status",
		})
		return
	}

	c.JSON(http.StatusOK, lead)
}

func (h *CampaignsHandler) reloadScheduler(ctx context.Context) {
	if h.scheduler == nil {
		return
	}
	// Best effort, a reload failure does not fail the request.
	_ = h.scheduler.Reload(ctx)
}
