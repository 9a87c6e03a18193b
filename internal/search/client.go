// Package search implements the business-listing search client. It is the
// only component that knows how results are obtained; the rest of the
// pipeline consumes plain BusinessResult values.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
)

const (
	defaultBaseURL = "https://api.dataforseo.com"
	searchEndpoint = "/v3/business_data/business_listings/search/live"

	// Provider-level success code carried inside the JSON envelope.
	providerStatusOK = 20000

	defaultRequestTimeout = 60 * time.Second
	defaultResultLimit    = 100
)

// HTTPDoer abstracts the HTTP client for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the provider credentials and endpoint.
type Config struct {
	BaseURL  string
	Login    string
	Password string
	Timeout  time.Duration
}

// Query describes a single business search.
type Query struct {
	Keyword  string
	Location string
	Limit    int
}

// Client talks to the business-listing search provider.
type Client struct {
	baseURL    string
	login      string
	password   string
	httpClient HTTPDoer
	log        logger.Interface
}

// NewClient creates a search client from config.
func NewClient(cfg Config, log logger.Interface) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:    baseURL,
		login:      cfg.Login,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithComponent("search"),
	}
}

// SetHTTPClient replaces the HTTP client, useful for tests.
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

// taskPayload is the single task object the provider expects in the
// request array.
type taskPayload struct {
	Categories   []string `json:"categories,omitempty"`
	Keyword      string   `json:"keyword,omitempty"`
	LocationName string   `json:"location_name,omitempty"`
	Limit        int      `json:"limit"`
}

type searchResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
		Result        []struct {
			Items []listingItem `json:"items"`
		} `json:"result"`
	} `json:"tasks"`
}

type listingItem struct {
	Title       string `json:"title"`
	Phone       string `json:"phone"`
	URL         string `json:"url"`
	Address     string `json:"address"`
	AddressInfo struct {
		Borough string `json:"borough"`
	} `json:"address_info"`
	Category string `json:"category"`
	Rating   struct {
		Value      float64 `json:"value"`
		VotesCount int     `json:"votes_count"`
	} `json:"rating"`
}

// SearchBusinesses runs one search against the provider and maps the
// response into the pipeline's inbound result shape. Any provider
// failure is returned as a hard error for the caller to record.
func (c *Client) SearchBusinesses(ctx context.Context, query Query) ([]domain.BusinessResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultResultLimit
	}

	body, err := json.Marshal([]taskPayload{{
		Keyword:      query.Keyword,
		LocationName: query.Location,
		Limit:        limit,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.login, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	if parsed.StatusCode != providerStatusOK {
		return nil, fmt.Errorf("search API error %d: %s", parsed.StatusCode, parsed.StatusMessage)
	}

	results := make([]domain.BusinessResult, 0)
	for _, task := range parsed.Tasks {
		if task.StatusCode != providerStatusOK {
			return nil, fmt.Errorf("search task error %d: %s", task.StatusCode, task.StatusMessage)
		}
		for _, result := range task.Result {
			for _, item := range result.Items {
				results = append(results, mapListing(item))
			}
		}
	}

	c.log.Debug("search completed",
		"keyword", query.Keyword,
		"location", query.Location,
		"results", len(results),
	)
	return results, nil
}

func mapListing(item listingItem) domain.BusinessResult {
	return domain.BusinessResult{
		Name:         item.Title,
		Phone:        item.Phone,
		Address:      item.Address,
		Website:      item.URL,
		Rating:       item.Rating.Value,
		ReviewsCount: item.Rating.VotesCount,
		Category:     item.Category,
		Neighborhood: item.AddressInfo.Borough,
	}
}
