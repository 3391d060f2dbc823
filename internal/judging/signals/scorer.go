// Package signals detects funding, geographic, and organization-type signals
// in search result metadata (title and description only, no page content).
package signals

import "strings"

// Vocabularies are static configuration data: loaded once, never mutated at
// runtime. Matching is case-insensitive substring membership.

// fundingKeywords is the funding vocabulary (ubiquitous language of the
// funding-sources domain).
var fundingKeywords = []string{
	"grant", "grants", "funding", "scholarship", "scholarships",
	"fellowship", "fellowships", "subsidy", "subsidies",
	"bursary", "bursaries", "award", "awards",
	"stipend", "stipends", "financial aid", "financial support",
	"sponsorship", "endowment",
}

// geographicKeywords covers the target region (Bulgaria, Eastern Europe, EU)
// in both Latin and Cyrillic scripts.
var geographicKeywords = []string{
	"bulgaria", "bulgarian", "българия", "българск",
	"eu", "european union", "europe", "european",
	"eastern europe", "balkan", "балкан",
	"romania", "romanian", "românia",
	"poland", "polish", "polska",
	"czech", "czechia", "české",
	"regional", "local",
}

// organizationKeywords covers institution types that grant funds.
var organizationKeywords = []string{
	"ministry", "minister", "министерство",
	"commission", "commissioner", "комисия",
	"foundation", "фондация", "fund",
	"university", "университет", "college",
	"government", "правителство", "official",
	"national", "state", "federal",
	"agency", "агенция", "authority",
	"council", "съвет", "chamber",
}

// Result captures which criteria matched. Funding vocabulary is evaluated
// against title and description independently because they carry different
// weights downstream; geography and organization type match against either.
type Result struct {
	TitleFunding       bool
	DescriptionFunding bool
	Geographic         bool
	Organization       bool
}

// Count returns the number of distinct positive signals, the input to the
// compound boost rule.
func (r Result) Count() int {
	n := 0
	if r.TitleFunding {
		n++
	}
	if r.DescriptionFunding {
		n++
	}
	if r.Geographic {
		n++
	}
	if r.Organization {
		n++
	}
	return n
}

// Scorer evaluates metadata against the three vocabularies.
// Stateless and safe for concurrent use.
type Scorer struct{}

// New returns a signal scorer backed by the static vocabularies.
func New() *Scorer {
	return &Scorer{}
}

// Score evaluates title and description. Empty inputs simply match nothing.
func (s *Scorer) Score(title, description string) Result {
	lowerTitle := strings.ToLower(title)
	lowerDescription := strings.ToLower(description)

	return Result{
		TitleFunding:       containsAny(lowerTitle, fundingKeywords),
		DescriptionFunding: containsAny(lowerDescription, fundingKeywords),
		Geographic:         containsAny(lowerTitle, geographicKeywords) || containsAny(lowerDescription, geographicKeywords),
		Organization:       containsAny(lowerTitle, organizationKeywords) || containsAny(lowerDescription, organizationKeywords),
	}
}

func containsAny(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
