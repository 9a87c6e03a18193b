// Package email extracts and scores contact email candidates from HTML.
package email

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// emailPattern matches an RFC-shaped local@domain.tld substring.
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// escapeReplacer substitutes the escape sequences that show up most often
// in scraped mailto links when full percent-decoding fails.
var escapeReplacer = strings.NewReplacer("%20", "", "%40", "@", "%2e", ".")

// Extractor pulls raw email-like strings out of HTML.
type Extractor struct{}

// NewExtractor creates an extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract runs two passes over the document: mailto href targets first,
// then bare email-pattern matches anywhere in the text. Every raw match
// goes through Clean before being kept. The result preserves discovery
// order with duplicates removed.
func (e *Extractor) Extract(html string) []string {
	seen := make(map[string]struct{})
	var found []string

	keep := func(raw string) {
		cleaned, ok := Clean(raw)
		if !ok {
			return
		}
		if _, dup := seen[cleaned]; dup {
			return
		}
		seen[cleaned] = struct{}{}
		found = append(found, cleaned)
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find(`a[href]`).Each(func(_ int, sel *goquery.Selection) {
			href, exists := sel.Attr("href")
			if !exists {
				return
			}
			href = strings.TrimSpace(href)
			if strings.HasPrefix(strings.ToLower(href), "mailto:") {
				keep(href)
			}
		})
	}

	for _, match := range emailPattern.FindAllString(html, -1) {
		keep(match)
	}

	return found
}

// Clean normalizes a raw scraped match into a plain address: lower-case,
// percent-decode, strip quote/backslash/whitespace artifacts and any
// mailto: prefix, then re-extract the first RFC-shaped substring. The
// re-extraction guards against garbage concatenated by naive scraping.
// Returns false when no recognizable address remains.
func Clean(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	if strings.Contains(s, "%") {
		if decoded, err := url.QueryUnescape(s); err == nil {
			s = decoded
		} else {
			s = escapeReplacer.Replace(s)
		}
	}

	s = strings.Trim(s, "\"'\\ \t\r\n`“”‘’<>")
	s = strings.TrimPrefix(s, "mailto:")
	if idx := strings.Index(s, "?"); idx != -1 {
		s = s[:idx]
	}

	match := emailPattern.FindString(s)
	if match == "" {
		return "", false
	}

	return match, true
}
