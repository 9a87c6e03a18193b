package domain

import "time"

// Campaign groups leads collected together, usually by geography and category.
type Campaign struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	PostalCodes []string  `json:"postal_codes,omitempty"`
	Category    string    `json:"category,omitempty"`
	// Schedule is an optional cron expression for recurring scrapes.
	Schedule   string    `json:"schedule,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	// LeadsCount is a running aggregate maintained on lead insertion and
	// deletion, not recomputed lazily. See leads.Service.Recount for repair.
	LeadsCount int `json:"leads_count"`
}
