package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
)

// PoolReader exposes lead-pool statistics.
type PoolReader interface {
	GetStats(ctx context.Context) (domain.PoolStats, error)
}

// PoolHandler handles lead-pool HTTP requests.
type PoolHandler struct {
	pool PoolReader
}

// NewPoolHandler creates a pool handler.
func NewPoolHandler(pool PoolReader) *PoolHandler {
	return &PoolHandler{pool: pool}
}

// GetStats handles GET /api/v1/pool/stats
func (h *PoolHandler) GetStats(c *gin.Context) {
	stats, err := h.pool.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve pool stats",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
