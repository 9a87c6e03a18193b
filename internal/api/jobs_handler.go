package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/job"
)

// ScrapeStarter launches a scrape job and returns its id.
type ScrapeStarter interface {
	Start(req job.ScrapeRequest) string
}

// ExtractStarter launches an extraction job and returns its id.
type ExtractStarter interface {
	Start(req job.ExtractRequest) string
}

// CampaignReader resolves campaigns and their leads for job requests.
type CampaignReader interface {
	GetCampaign(ctx context.Context, id string) (domain.Campaign, error)
	ListLeads(ctx context.Context, campaignID string) ([]domain.Lead, error)
}

// JobsHandler handles job start and polling requests.
type JobsHandler struct {
	scrape    ScrapeStarter
	extract   ExtractStarter
	campaigns CampaignReader
	jobs      job.Store
}

// NewJobsHandler creates a jobs handler.
func NewJobsHandler(scrape ScrapeStarter, extract ExtractStarter, campaigns CampaignReader, jobs job.Store) *JobsHandler {
	return &JobsHandler{
		scrape:    scrape,
		extract:   extract,
		campaigns: campaigns,
		jobs:      jobs,
	}
}

// StartScrapeRequest is the POST /jobs/scrape payload.
type StartScrapeRequest struct {
	CampaignID string `json:"campaign_id" binding:"required"`
	Keyword    string `json:"keyword"`
	Limit      int    `json:"limit"`
}

// StartScrape handles POST /api/v1/jobs/scrape. The job runs detached;
// the response carries the id to poll.
func (h *JobsHandler) StartScrape(c *gin.Context) {
	var req StartScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	campaign, err := h.campaigns.GetCampaign(c.Request.Context(), req.CampaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Campaign not found",
		})
		return
	}

	keyword := req.Keyword
	if keyword == "" {
		keyword = campaign.Category
	}

	jobID := h.scrape.Start(job.ScrapeRequest{
		CampaignID:  campaign.ID,
		Keyword:     keyword,
		City:        campaign.City,
		PostalCodes: campaign.PostalCodes,
		Limit:       req.Limit,
	})

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// StartExtractRequest is the POST /jobs/extract payload. Without explicit
// targets every lead of the campaign that has a website and no email yet
// is crawled.
type StartExtractRequest struct {
	CampaignID string              `json:"campaign_id" binding:"required"`
	Targets    []job.ExtractTarget `json:"targets"`
}

// StartExtract handles POST /api/v1/jobs/extract
func (h *JobsHandler) StartExtract(c *gin.Context) {
	var req StartExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	targets := req.Targets
	if len(targets) == 0 {
		list, err := h.campaigns.ListLeads(c.Request.Context(), req.CampaignID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve leads",
			})
			return
		}
		for _, lead := range list {
			if lead.Website != "" && lead.Email == "" {
				targets = append(targets, job.ExtractTarget{LeadID: lead.ID, Website: lead.Website})
			}
		}
	}

	if len(targets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No leads with a website to extract from",
		})
		return
	}

	jobID := h.extract.Start(job.ExtractRequest{
		CampaignID: req.CampaignID,
		Targets:    targets,
	})

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// GetJob handles GET /api/v1/jobs/:id
func (h *JobsHandler) GetJob(c *gin.Context) {
	j, ok := h.jobs.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Job not found",
		})
		return
	}

	c.JSON(http.StatusOK, j)
}

// ListJobs handles GET /api/v1/jobs
func (h *JobsHandler) ListJobs(c *gin.Context) {
	list := h.jobs.List()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  list,
		"total": len(list),
	})
}
