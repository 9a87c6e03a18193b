package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes on the router.
func SetupRoutes(
	router *gin.Engine,
	campaigns *CampaignsHandler,
	dnc *DNCHandler,
	jobs *JobsHandler,
	pool *PoolHandler,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	v1.GET("/campaigns", campaigns.ListCampaigns)
	v1.POST("/campaigns", campaigns.CreateCampaign)
	v1.GET("/campaigns/:id", campaigns.GetCampaign)
	v1.PUT("/campaigns/:id", campaigns.UpdateCampaign)
	v1.DELETE("/campaigns/:id", campaigns.DeleteCampaign)
	v1.GET("/campaigns/:id/leads", campaigns.ListLeads)
	v1.GET("/campaigns/:id/leads/export", campaigns.ExportLeads)
	v1.PATCH("/leads/:id/status", campaigns.UpdateLeadStatus)

	v1.GET("/dnc", dnc.ListEntries)
	v1.POST("/dnc", dnc.AddEntry)
	v1.DELETE("/dnc/:phone", dnc.RemoveEntry)

	v1.POST("/jobs/scrape", jobs.StartScrape)
	v1.POST("/jobs/extract", jobs.StartExtract)
	v1.GET("/jobs", jobs.ListJobs)
	v1.GET("/jobs/:id", jobs.GetJob)

	v1.GET("/pool/stats", pool.GetStats)
}
