package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
)

// DNCService defines the DNC registry operations the handlers use.
type DNCService interface {
	List(ctx context.Context) ([]domain.DNCEntry, error)
	Add(ctx context.Context, rawPhone, reason, source string) (bool, error)
	Remove(ctx context.Context, rawPhone string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// DNCHandler handles DNC registry HTTP requests.
type DNCHandler struct {
	registry DNCService
}

// NewDNCHandler creates a DNC handler.
func NewDNCHandler(registry DNCService) *DNCHandler {
	return &DNCHandler{registry: registry}
}

// ListEntries handles GET /api/v1/dnc
func (h *DNCHandler) ListEntries(c *gin.Context) {
	entries, err := h.registry.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve DNC entries",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}

// AddEntryRequest is the POST /dnc payload.
type AddEntryRequest struct {
	Phone  string `json:"phone" binding:"required"`
	Reason string `json:"reason"`
	Source string `json:"source"`
}

// AddEntry handles POST /api/v1/dnc
func (h *DNCHandler) AddEntry(c *gin.Context) {
	var req AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	source := req.Source
	if source == "" {
		source = "api"
	}

	added, err := h.registry.Add(c.Request.Context(), req.Phone, req.Reason, source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to add DNC entry",
		})
		return
	}
	if !added {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid phone number: " + req.Phone,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": true})
}

// RemoveEntry handles DELETE /api/v1/dnc/:phone
func (h *DNCHandler) RemoveEntry(c *gin.Context) {
	removed, err := h.registry.Remove(c.Request.Context(), c.Param("phone"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove DNC entry",
		})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Phone number not on the DNC list",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}
