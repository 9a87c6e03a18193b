package domain

import "time"

// DNCEntry is a blocked phone number with the reason and source of the block.
// Entries are keyed by the normalized phone key; add is last-write-wins.
type DNCEntry struct {
	PhoneKey      string    `json:"phone_key"`
	OriginalPhone string    `json:"original_phone"`
	Reason        string    `json:"reason"`
	Source        string    `json:"source"`
	AddedAt       time.Time `json:"added_at"`
}

// PoolEntry records the first sighting of a phone key across campaigns.
// Never mutated after creation: first-seen wins.
type PoolEntry struct {
	PhoneKey    string    `json:"phone_key"`
	LeadID      string    `json:"lead_id"`
	Campaign    string    `json:"campaign"`
	FirstSeenAt time.Time `json:"first_seen_at"`
}

// PoolStats holds running totals for scrape activity against the lead pool.
type PoolStats struct {
	TotalTracked    int       `json:"total_tracked"`
	TotalScraped    int       `json:"total_scraped"`
	TotalImported   int       `json:"total_imported"`
	TotalDuplicates int       `json:"total_duplicates"`
	LastScrape      time.Time `json:"last_scrape,omitempty"`
}
