package email_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rayanlekkat/brio-lead-scraper/internal/email"
)

func TestExtract_MailtoHref(t *testing.T) {
	e := email.NewExtractor()

	html := `<html><body><a href="mailto:Info@Acme.COM">Contact us</a></body></html>`
	found := e.Extract(html)

	assert.Equal(t, []string{"info@acme.com"}, found)
}

func TestExtract_MailtoWithSubject(t *testing.T) {
	e := email.NewExtractor()

	html := `<a href="mailto:sales@acme.com?subject=Hi%20there">write</a>`
	found := e.Extract(html)

	assert.Equal(t, []string{"sales@acme.com"}, found)
}

func TestExtract_BareTextPass(t *testing.T) {
	e := email.NewExtractor()

	html := `<p>Reach us at contact@acme.com or call.</p>
	<footer>contact@acme.com &middot; owner@acme.com</footer>`
	found := e.Extract(html)

	// Deduplicated, discovery order preserved.
	assert.Equal(t, []string{"contact@acme.com", "owner@acme.com"}, found)
}

func TestExtract_PercentEncodedMailto(t *testing.T) {
	e := email.NewExtractor()

	html := `<a href="mailto:info%40acme.com">mail</a>`
	found := e.Extract(html)

	assert.Equal(t, []string{"info@acme.com"}, found)
}

func TestExtract_NoCandidates(t *testing.T) {
	e := email.NewExtractor()

	found := e.Extract(`<html><body><p>No contact info here.</p></body></html>`)
	assert.Empty(t, found)
}

func TestClean_Artifacts(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
		ok   bool
	}{
		"quoted":          {`"info@acme.com"`, "info@acme.com", true},
		"backslash":       {`\info@acme.com\`, "info@acme.com", true},
		"mailto prefix":   {"mailto:info@acme.com", "info@acme.com", true},
		"upper case":      {"INFO@ACME.COM", "info@acme.com", true},
		"concatenated":    {"info@acme.com<br>call us today", "info@acme.com", true},
		"no address":      {"not-an-email", "", false},
		"empty":           {"", "", false},
		"percent encoded": {"info%40acme.com", "info@acme.com", true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := email.Clean(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
