// Package job runs scrape and email-extraction jobs as detached background
// tasks. Callers poll job state through the store rather than blocking.
package job

import (
	"sort"
	"sync"
	"time"
)

// Type discriminates what a job does.
type Type string

const (
	TypeScrape  Type = "scrape"
	TypeExtract Type = "extract"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is the pollable state of one background task.
type Job struct {
	ID         string `json:"id"`
	Type       Type   `json:"type"`
	Status     Status `json:"status"`
	CampaignID string `json:"campaign_id,omitempty"`
	// Progress is a 0-100 percentage over the job's iterations.
	Progress        int `json:"progress"`
	TotalScraped    int `json:"total_scraped"`
	TotalImported   int `json:"total_imported"`
	TotalDuplicates int `json:"total_duplicates"`
	TotalInvalid    int `json:"total_invalid"`
	EmailsFound     int `json:"emails_found"`
	// PostalCodeStats divides the imported total evenly across the job's
	// postal codes. A known approximation, not per-code attribution.
	PostalCodeStats map[string]int `json:"postal_code_stats,omitempty"`
	Errors          []string       `json:"errors,omitempty"`
	StartedAt       time.Time      `json:"started_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

// Store holds job state for polling. Implementations must be safe for
// concurrent use: runners write while API handlers read.
type Store interface {
	Get(id string) (Job, bool)
	Put(job Job)
	List() []Job
}

// MemoryStore is the in-process job store.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewMemoryStore creates an empty job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]Job)}
}

// Get returns the job for id.
func (s *MemoryStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok
}

// Put stores or replaces a job.
func (s *MemoryStore) Put(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

// List returns all jobs, newest first.
func (s *MemoryStore) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		list = append(list, job)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].StartedAt.After(list[j].StartedAt)
	})
	return list
}

var _ Store = (*MemoryStore)(nil)
