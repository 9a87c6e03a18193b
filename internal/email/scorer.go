package email

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rayanlekkat/brio-lead-scraper/internal/domain"
)

const (
	baseScore          = 50
	domainMatchBonus   = 30
	priorityBonus      = 20
	longLocalPenalty   = 20
	digitHeavyPenalty  = 15
	longLocalThreshold = 30
	maxLocalDigits     = 4
)

// nameShapePattern matches firstname.lastname and firstname_lastname local
// parts.
var nameShapePattern = regexp.MustCompile(`^[a-z]+[._][a-z]+@`)

// priorityAliases are generic-but-useful business local parts, English and
// French.
var priorityAliases = []string{
	"info@",
	"contact@",
	"sales@",
	"hello@",
	"admin@",
	"reception@",
	"service@",
	"owner@",
	"manager@",
	"ventes@",
	"bonjour@",
	"direction@",
	"proprietaire@",
	"gerant@",
	"commercial@",
	"reservation@",
}

// Scorer filters junk candidates and ranks the survivors by heuristic
// quality.
type Scorer struct {
	skipRules []SkipRule
}

// NewScorer creates a scorer with the default rule set.
func NewScorer() *Scorer {
	return NewScorerWithThreshold(DefaultHexLocalThreshold)
}

// NewScorerWithThreshold creates a scorer with a custom hex-local-part
// threshold. The threshold is a policy tunable.
func NewScorerWithThreshold(hexThreshold int) *Scorer {
	return &Scorer{skipRules: defaultSkipRules(hexThreshold)}
}

// Skip reports whether a candidate is junk, along with the name of the
// first matching rule.
func (s *Scorer) Skip(candidate string) (bool, string) {
	for _, rule := range s.skipRules {
		if rule.Match(candidate) {
			return true, rule.Name
		}
	}
	return false, ""
}

// Score filters the candidates through the skip rules and ranks the
// survivors, descending by score. Ties keep the original discovery order.
// siteDomain may be empty when the site URL failed to parse.
func (s *Scorer) Score(candidates []string, siteDomain string) []domain.EmailCandidate {
	root := rootLabel(siteDomain)

	scored := make([]domain.EmailCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if skip, _ := s.Skip(candidate); skip {
			continue
		}
		scored = append(scored, domain.EmailCandidate{
			Email: candidate,
			Score: scoreCandidate(candidate, root),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

func scoreCandidate(candidate, siteRoot string) int {
	score := baseScore

	if siteRoot != "" && strings.Contains(domainOf(candidate), siteRoot) {
		score += domainMatchBonus
	}

	if isPriorityLocal(candidate) {
		score += priorityBonus
	}

	local := localPartOf(candidate)
	if len(local) > longLocalThreshold {
		score -= longLocalPenalty
	}
	if digitCount(local) > maxLocalDigits {
		score -= digitHeavyPenalty
	}

	return score
}

// isPriorityLocal reports whether the local part has a person-name shape or
// is one of the useful business aliases. First match wins; the bonus is
// applied once.
func isPriorityLocal(candidate string) bool {
	if nameShapePattern.MatchString(candidate) {
		return true
	}
	for _, alias := range priorityAliases {
		if strings.HasPrefix(candidate, alias) {
			return true
		}
	}
	return false
}

// rootLabel extracts the first registrable label of a hostname: the piece
// an email domain is matched against ("acme" for www.acme.com).
func rootLabel(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return ""
	}
	if idx := strings.Index(host, "."); idx != -1 {
		host = host[:idx]
	}
	return host
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
