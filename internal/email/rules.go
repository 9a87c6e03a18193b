package email

import (
	"fmt"
	"regexp"
	"strings"
)

// maxCandidateLength is the hard cap on candidate length; anything longer
// is a scraping artifact, not an address.
const maxCandidateLength = 100

// DefaultHexLocalThreshold is the minimum run of hex characters in a local
// part for it to be treated as a tracking ID. The threshold is a tunable
// policy choice, not a correctness invariant.
const DefaultHexLocalThreshold = 20

// SkipRule is a named junk-detection predicate with a reason tag. Rules are
// evaluated in a fixed order with first-match-wins semantics.
type SkipRule struct {
	Name   string
	Reason string
	Match  func(email string) bool
}

// systemMailPrefixes are role accounts used only for system mail.
var systemMailPrefixes = []string{
	"noreply@",
	"no-reply@",
	"donotreply@",
	"mailer-daemon@",
	"postmaster@",
	"webmaster@",
}

// placeholderDomainMarkers flag placeholder and test domains.
var placeholderDomainMarkers = []string{
	"@example.",
	"@exemple.",
	"@test.",
	"@localhost",
}

// imageExtensions are file suffixes that mark a regex match as a scraping
// artifact (image filenames contain @ in responsive-asset names).
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}

// junkDomains are known error-tracking and page-builder demo domains.
var junkDomains = []string{
	"sentry.io",
	"wixpress.com",
	"sentry.wixpress.com",
}

// placeholderLocalParts are generic form-placeholder local parts.
var placeholderLocalParts = []string{
	"name@",
	"email@",
	"votreemail@",
	"nom@",
}

// stockDemoNames are local parts used in demo and template content.
var stockDemoNames = []string{
	"jane@",
	"john@",
	"test@",
	"demo@",
	"sample@",
	"user@",
	"client@",
	"customer@",
	"johndoe@",
	"janedoe@",
	"yourname@",
}

// defaultSkipRules builds the ordered rule set. hexThreshold controls the
// hex-run rule (see DefaultHexLocalThreshold).
func defaultSkipRules(hexThreshold int) []SkipRule {
	hexLocal := regexp.MustCompile(fmt.Sprintf(`^[a-f0-9]{%d,}@`, hexThreshold))

	return []SkipRule{
		{
			Name:   "too_long",
			Reason: "candidate longer than 100 characters",
			Match:  func(e string) bool { return len(e) > maxCandidateLength },
		},
		{
			Name:   "system_mail",
			Reason: "role account used only for system mail",
			Match:  hasAnyPrefix(systemMailPrefixes),
		},
		{
			Name:   "placeholder_domain",
			Reason: "placeholder or test domain",
			Match:  containsAny(placeholderDomainMarkers),
		},
		{
			Name:   "image_filename",
			Reason: "image filename, not an address",
			Match:  hasAnySuffix(imageExtensions),
		},
		{
			Name:   "junk_domain",
			Reason: "error-tracking or page-builder demo domain",
			Match: func(e string) bool {
				d := domainOf(e)
				for _, junk := range junkDomains {
					if d == junk || strings.HasSuffix(d, "."+junk) {
						return true
					}
				}
				return false
			},
		},
		{
			Name:   "placeholder_local",
			Reason: "generic placeholder local part",
			Match:  hasAnyPrefix(placeholderLocalParts),
		},
		{
			Name:   "hex_local",
			Reason: "hex run local part, likely a tracking ID",
			Match:  hexLocal.MatchString,
		},
		{
			Name:   "stock_demo_name",
			Reason: "stock demo name",
			Match:  hasAnyPrefix(stockDemoNames),
		},
	}
}

func hasAnyPrefix(prefixes []string) func(string) bool {
	return func(e string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(e, p) {
				return true
			}
		}
		return false
	}
}

func hasAnySuffix(suffixes []string) func(string) bool {
	return func(e string) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(e, s) {
				return true
			}
		}
		return false
	}
}

func containsAny(markers []string) func(string) bool {
	return func(e string) bool {
		for _, m := range markers {
			if strings.Contains(e, m) {
				return true
			}
		}
		return false
	}
}

func domainOf(email string) string {
	if idx := strings.LastIndex(email, "@"); idx != -1 {
		return email[idx+1:]
	}
	return ""
}

func localPartOf(email string) string {
	if idx := strings.Index(email, "@"); idx != -1 {
		return email[:idx]
	}
	return email
}
