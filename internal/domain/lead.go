// Package domain provides domain models used across the application.
package domain

import (
	"time"
)

// LeadStatus represents the call outcome state of a lead.
type LeadStatus string

const (
	// LeadStatusNew marks a freshly imported lead that has not been contacted.
	LeadStatusNew LeadStatus = "new"
	// LeadStatusContacted marks a lead that has been called at least once.
	LeadStatusContacted LeadStatus = "contacted"
	// LeadStatusInterested marks a lead with a positive call outcome.
	LeadStatusInterested LeadStatus = "interested"
	// LeadStatusNotInterested marks a lead with a negative call outcome.
	LeadStatusNotInterested LeadStatus = "not_interested"
	// LeadStatusDoNotCall marks a lead whose number was added to the DNC list.
	LeadStatusDoNotCall LeadStatus = "do_not_call"
)

// Lead represents a prospective business contact derived from a search result.
type Lead struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Phone        string           `json:"phone"`
	Website      string           `json:"website,omitempty"`
	Address      string           `json:"address,omitempty"`
	Rating       float64          `json:"rating,omitempty"`
	ReviewsCount int              `json:"reviews_count,omitempty"`
	Category     string           `json:"category,omitempty"`
	Neighborhood string           `json:"neighborhood,omitempty"`
	Email        string           `json:"email,omitempty"`
	AllEmails    []EmailCandidate `json:"all_emails,omitempty"`
	Status       LeadStatus       `json:"status"`
	CampaignID   string           `json:"campaign_id"`
	ImportedAt   time.Time        `json:"imported_at"`
}

// BusinessResult is the inbound shape supplied by the external search API.
// The pipeline does not know how results were obtained.
type BusinessResult struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address,omitempty"`
	Website      string  `json:"website,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	ReviewsCount int     `json:"reviews_count,omitempty"`
	Category     string  `json:"category,omitempty"`
	Neighborhood string  `json:"neighborhood,omitempty"`
}

// EmailCandidate is a scored email address discovered during a crawl.
// Transient except for the list attached to a lead for audit.
type EmailCandidate struct {
	Email string `json:"email"`
	Score int    `json:"score"`
}
