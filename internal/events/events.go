// Package events carries the discrete observability records emitted by the
// pipeline. The pipeline does not format or route them; handlers do.
package events

import (
	"context"
	"time"
)

// Type identifies what happened.
type Type string

const (
	// TypeScrapeStarted marks the start of a scraping job.
	TypeScrapeStarted Type = "scrape_started"
	// TypeScrapeCompleted marks the end of a scraping job.
	TypeScrapeCompleted Type = "scrape_completed"
	// TypeLeadsImported reports how many leads a batch produced.
	TypeLeadsImported Type = "leads_imported"
	// TypeLeadBlocked reports a lead rejected by the DNC list.
	TypeLeadBlocked Type = "lead_blocked"
	// TypeEmailFound reports a winning email attached to a lead.
	TypeEmailFound Type = "email_found"
	// TypeJobFailed reports a job-level failure.
	TypeJobFailed Type = "job_failed"
)

// Category tags the subsystem an event belongs to.
type Category string

const (
	// CategoryScrape covers search and import activity.
	CategoryScrape Category = "scrape"
	// CategoryExtract covers email extraction crawls.
	CategoryExtract Category = "extract"
	// CategoryDNC covers DNC registry changes.
	CategoryDNC Category = "dnc"
	// CategorySystem covers everything else.
	CategorySystem Category = "system"
)

// Event is one discrete observability record.
type Event struct {
	Type     Type           `json:"type"`
	Category Category       `json:"category"`
	Message  string         `json:"message"`
	Payload  map[string]any `json:"payload,omitempty"`
	At       time.Time      `json:"at"`
}

// Handler processes published events. Handler errors never propagate to
// the publisher.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}
