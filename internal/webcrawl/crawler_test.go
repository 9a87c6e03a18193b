package webcrawl_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/webcrawl"
)

func newTestCrawler(opts ...webcrawl.Option) *webcrawl.Crawler {
	opts = append([]webcrawl.Option{webcrawl.WithPageDelay(0)}, opts...)
	return webcrawl.New(logger.NewNoop(), opts...)
}

func TestCrawl_UnionAcrossPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte(`<html><body>Reach us: zzeta@gmail.com</body></html>`))
		case "/contact":
			_, _ = w.Write([]byte(`<a href="mailto:Info@Acme.COM">mail us</a>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := newTestCrawler()
	result := c.Crawl(context.Background(), server.URL)

	assert.Equal(t, 2, result.TotalFound)
	assert.Empty(t, result.Errors)
	require.NotEmpty(t, result.Emails)
	// info@ carries the priority alias bonus and outranks the plain
	// address found on the root page.
	assert.Equal(t, "info@acme.com", result.BestEmail)
}

func TestCrawl_ContactPathsResolveAgainstSiteRoot(t *testing.T) {
	var nestedHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/en/home":
			_, _ = w.Write([]byte(`<html><body>welcome</body></html>`))
		case "/contact":
			_, _ = w.Write([]byte(`sales@acme.com`))
		case "/en/home/contact":
			nestedHits++
			http.NotFound(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := newTestCrawler()
	result := c.Crawl(context.Background(), server.URL+"/en/home")

	// A stored website URL that carries a path still probes the
	// host-level contact pages.
	assert.Equal(t, "sales@acme.com", result.BestEmail)
	assert.Zero(t, nestedHits)
}

func TestCrawl_AllPages404(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := newTestCrawler()
	result := c.Crawl(context.Background(), server.URL)

	assert.Empty(t, result.BestEmail)
	assert.Zero(t, result.TotalFound)
	// 404 is a silent skip, not an error entry.
	assert.Empty(t, result.Errors)
}

func TestCrawl_TimeoutRecordedButCrawlContinues(t *testing.T) {
	var contactHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			time.Sleep(300 * time.Millisecond)
		case "/contact":
			contactHits++
			_, _ = w.Write([]byte(`sales@acme.com`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := newTestCrawler(webcrawl.WithTimeout(50 * time.Millisecond))
	result := c.Crawl(context.Background(), server.URL)

	require.NotEmpty(t, result.Errors)
	assert.True(t, strings.HasPrefix(result.Errors[0], "Timeout on "), "got %q", result.Errors[0])
	assert.Equal(t, 1, contactHits, "remaining pages should still be fetched")
	assert.Equal(t, "sales@acme.com", result.BestEmail)
}

func TestCrawl_ConnectionErrorRecorded(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // refused connections from here on

	c := newTestCrawler()
	result := c.Crawl(context.Background(), server.URL)

	assert.Empty(t, result.BestEmail)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "failed to fetch")
}

func TestCrawl_SchemePrefixedWhenMissing(t *testing.T) {
	c := newTestCrawler()

	// An unreachable host without a scheme still produces a structured
	// result rather than a failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result := c.Crawl(ctx, "acme.invalid")
	assert.Empty(t, result.BestEmail)
	assert.NotEmpty(t, result.Errors)
}

type fakeVerifier struct {
	valid map[string]bool
}

func (f *fakeVerifier) HasMX(ctx context.Context, mailDomain string) bool {
	return f.valid[mailDomain]
}

func TestCrawl_MXVerifierFiltersCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			_, _ = w.Write([]byte(`contact@acme.com and contact@dead.example.net`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	verifier := &fakeVerifier{valid: map[string]bool{"acme.com": true}}
	c := newTestCrawler(webcrawl.WithMXVerifier(verifier))

	result := c.Crawl(context.Background(), server.URL)
	require.Len(t, result.Emails, 1)
	assert.Equal(t, "contact@acme.com", result.BestEmail)
}
