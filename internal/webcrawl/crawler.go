// Package webcrawl fetches a bounded set of pages per lead website and
// harvests contact email candidates from them.
package webcrawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
	"github.com/rayanlekkat/brio-lead-scraper/internal/email"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
)

const (
	// maxPagesPerSite bounds how many pages are fetched for one site.
	maxPagesPerSite = 3
	// defaultRequestTimeout is the per-page fetch timeout.
	defaultRequestTimeout = 10 * time.Second
	// defaultPageDelay is the pause after each page, successful or not.
	defaultPageDelay = 500 * time.Millisecond
	// maxResponseBodyBytes limits the size of fetched page responses.
	maxResponseBodyBytes = 2 * 1024 * 1024

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	acceptHeader     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// contactPaths are the well-known contact and about paths probed after the
// root page, English and French, in priority order.
var contactPaths = []string{
	"/contact",
	"/contact-us",
	"/contactez-nous",
	"/nous-joindre",
	"/about",
	"/about-us",
	"/a-propos",
}

// Result is the outcome of crawling one site.
type Result struct {
	Emails     []domain.EmailCandidate `json:"emails"`
	BestEmail  string                  `json:"best_email,omitempty"`
	TotalFound int                     `json:"total_found"`
	Errors     []string                `json:"errors,omitempty"`
}

// MXVerifier checks whether a mail domain can receive mail.
type MXVerifier interface {
	HasMX(ctx context.Context, mailDomain string) bool
}

// Crawler fetches pages strictly sequentially with a fixed delay between
// them. The pacing is deliberate external rate limiting, not a performance
// choice, and must not be parallelized.
type Crawler struct {
	client    *http.Client
	extractor *email.Extractor
	scorer    *email.Scorer
	verifier  MXVerifier
	log       logger.Interface
	userAgent string
	timeout   time.Duration
	pageDelay time.Duration
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithClient sets the HTTP client used for page fetches.
func WithClient(client *http.Client) Option {
	return func(c *Crawler) { c.client = client }
}

// WithScorer sets the email scorer.
func WithScorer(scorer *email.Scorer) Option {
	return func(c *Crawler) { c.scorer = scorer }
}

// WithPageDelay sets the pause after each fetched page.
func WithPageDelay(d time.Duration) Option {
	return func(c *Crawler) { c.pageDelay = d }
}

// WithTimeout sets the per-page fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Crawler) { c.timeout = d }
}

// WithMXVerifier enables MX verification of scored candidates.
func WithMXVerifier(v MXVerifier) Option {
	return func(c *Crawler) { c.verifier = v }
}

// New creates a crawler with the default extractor and scorer.
func New(log logger.Interface, opts ...Option) *Crawler {
	c := &Crawler{
		extractor: email.NewExtractor(),
		scorer:    email.NewScorer(),
		log:       log.WithComponent("webcrawl"),
		userAgent: defaultUserAgent,
		timeout:   defaultRequestTimeout,
		pageDelay: defaultPageDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}

	return c
}

// Crawl fetches the root page and up to two likely contact pages, extracts
// email candidates from each, and scores the union against the site domain.
// A page timeout is recorded as an error but never aborts the crawl; a
// non-2xx response is silently skipped.
func (c *Crawler) Crawl(ctx context.Context, rawURL string) Result {
	root, siteDomain := normalizeSiteURL(rawURL)
	pages := buildPageList(root)

	var (
		found     []string
		seen      = make(map[string]struct{})
		errorList []string
	)

	for i, page := range pages {
		html, fetchErr := c.fetchPage(ctx, page)
		if fetchErr != nil {
			errorList = append(errorList, fetchErr.Error())
		} else if html != "" {
			for _, candidate := range c.extractor.Extract(html) {
				if _, dup := seen[candidate]; dup {
					continue
				}
				seen[candidate] = struct{}{}
				found = append(found, candidate)
			}
		}

		if i < len(pages)-1 {
			if sleepErr := sleepCtx(ctx, c.pageDelay); sleepErr != nil {
				break
			}
		}
	}

	scored := c.scorer.Score(found, siteDomain)
	scored = c.verifyMX(ctx, scored)

	result := Result{
		Emails:     scored,
		TotalFound: len(found),
		Errors:     errorList,
	}
	if len(scored) > 0 {
		result.BestEmail = scored[0].Email
	}

	c.log.Info("site crawled",
		"url", root,
		"candidates", result.TotalFound,
		"best_email", result.BestEmail,
		"errors", len(errorList),
	)

	return result
}

// fetchPage issues a single GET. Returns an empty string with nil error
// for non-2xx responses: those are skipped without being recorded.
func (c *Crawler) fetchPage(ctx context.Context, pageURL string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, reqErr := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, http.NoBody)
	if reqErr != nil {
		return "", fmt.Errorf("failed to fetch %s: %s", pageURL, reqErr.Error())
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", "en-CA,en;q=0.9,fr-CA;q=0.8")

	resp, doErr := c.client.Do(req)
	if doErr != nil {
		if isTimeout(doErr) {
			return "", fmt.Errorf("Timeout on %s", pageURL)
		}
		return "", fmt.Errorf("failed to fetch %s: %s", pageURL, doErr.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", nil
	}

	limited := io.LimitReader(resp.Body, maxResponseBodyBytes)
	body, readErr := io.ReadAll(limited)
	if readErr != nil {
		return "", fmt.Errorf("failed to fetch %s: %s", pageURL, readErr.Error())
	}

	return string(body), nil
}

// verifyMX drops scored candidates whose domain cannot receive mail. A nil
// verifier keeps everything.
func (c *Crawler) verifyMX(ctx context.Context, scored []domain.EmailCandidate) []domain.EmailCandidate {
	if c.verifier == nil {
		return scored
	}

	kept := scored[:0]
	for _, candidate := range scored {
		at := strings.LastIndex(candidate.Email, "@")
		if at == -1 || !c.verifier.HasMX(ctx, candidate.Email[at+1:]) {
			continue
		}
		kept = append(kept, candidate)
	}
	return kept
}

// normalizeSiteURL prefixes https:// when no scheme is present and parses
// out the hostname. A URL that fails to parse yields an empty domain; the
// crawl still proceeds against the literal URL.
func normalizeSiteURL(rawURL string) (normalized, siteDomain string) {
	normalized = strings.TrimSpace(rawURL)
	if !strings.Contains(normalized, "://") {
		normalized = "https://" + normalized
	}

	if parsed, err := url.Parse(normalized); err == nil {
		siteDomain = parsed.Hostname()
	}

	return normalized, siteDomain
}

// buildPageList returns the root URL plus contact-path candidates, capped
// at maxPagesPerSite. The root is always included. Contact paths resolve
// against the site root, so a stored URL that carries a path still probes
// host-level /contact rather than nesting under it.
func buildPageList(root string) []string {
	pages := []string{root}
	parsed, err := url.Parse(root)
	if err != nil {
		return pages
	}
	for _, path := range contactPaths {
		if len(pages) >= maxPagesPerSite {
			break
		}
		candidate := parsed.ResolveReference(&url.URL{Path: path})
		pages = append(pages, candidate.String())
	}
	return pages
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
