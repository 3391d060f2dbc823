// Package tld classifies domains into credibility tiers by top-level domain.
//
// Classification is a pure table lookup over the URL's host labels: no
// network access, no state. Country-code second-level zones (gov.bg, ac.uk)
// and internationalized labels (бг, ею) are recognized before the final
// label is consulted.
package tld

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	dErrors "northstar/pkg/domain-errors"
)

// Tier is one of the five TLD credibility buckets.
type Tier int

const (
	TierUnknown Tier = iota
	Tier1            // validated registration: ngo, gov, edu
	Tier2            // nonprofit, target-region ccTLDs, funding TLDs
	Tier3            // generic commercial/informational
	Tier4            // commodity, no signal
	Tier5            // spam/phishing dominated
)

func (t Tier) String() string {
	switch t {
	case Tier1:
		return "tier1"
	case Tier2:
		return "tier2"
	case Tier3:
		return "tier3"
	case Tier4:
		return "tier4"
	case Tier5:
		return "tier5"
	}
	return "unknown"
}

// Result is the outcome of classifying one URL.
type Result struct {
	// Domain is the normalized host: lowercase, scheme/port/path stripped,
	// leading "www." removed. This is the engine's deduplication key.
	Domain string
	// Label is the zone that matched (e.g. "org", "gov.bg").
	Label string
	// Score is the tier's base credibility increment, scale 2.
	Score decimal.Decimal
	// Tier is the credibility bucket.
	Tier Tier
	// AutoReject marks the configured subset of Tier 5 zones that are
	// dropped before any scoring or dedup work.
	AutoReject bool
}

// Scorer classifies URLs into TLD credibility tiers.
// Stateless and safe for concurrent use.
type Scorer struct{}

// New returns a TLD scorer backed by the static credibility tables.
func New() *Scorer {
	return &Scorer{}
}

var zeroScore = decimal.New(0, -2)

// Score classifies the URL's host. Unknown TLDs land in TierUnknown with a
// 0.00 score: absence from the tables is not evidence either way.
func (s *Scorer) Score(rawURL string) (Result, error) {
	host, err := NormalizeHost(rawURL)
	if err != nil {
		return Result{}, err
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return Result{}, dErrors.Newf(dErrors.CodeValidation, "host %q has no top-level domain", host)
	}

	// Second-level zones take priority: ministry.gov.bg is Tier 1 even
	// though bare .bg is Tier 2.
	secondLevel := labels[len(labels)-2] + "." + labels[len(labels)-1]
	if _, ok := tier1SecondLevel[secondLevel]; ok {
		return Result{Domain: host, Label: secondLevel, Score: tier1TLDs["gov"], Tier: Tier1}, nil
	}

	last := labels[len(labels)-1]

	if sc, ok := tier1TLDs[last]; ok {
		return Result{Domain: host, Label: last, Score: sc, Tier: Tier1}, nil
	}
	if sc, ok := tier2TLDs[last]; ok {
		return Result{Domain: host, Label: last, Score: sc, Tier: Tier2}, nil
	}
	if sc, ok := tier3TLDs[last]; ok {
		return Result{Domain: host, Label: last, Score: sc, Tier: Tier3}, nil
	}
	if sc, ok := tier4TLDs[last]; ok {
		return Result{Domain: host, Label: last, Score: sc, Tier: Tier4}, nil
	}
	if sc, ok := tier5TLDs[last]; ok {
		_, reject := autoRejectTLDs[last]
		return Result{Domain: host, Label: last, Score: sc, Tier: Tier5, AutoReject: reject}, nil
	}

	return Result{Domain: host, Label: last, Score: zeroScore, Tier: TierUnknown}, nil
}

// IsRejectCandidate reports whether the URL's TLD is in the auto-reject set.
// Unparseable URLs are not reject candidates; they fail validation elsewhere.
func (s *Scorer) IsRejectCandidate(rawURL string) bool {
	res, err := s.Score(rawURL)
	return err == nil && res.AutoReject
}

// NormalizeHost extracts the deduplication key from a raw URL: the host,
// lowercased, with port and leading "www." stripped.
//
// url.Parse cannot extract hosts from bare internationalized forms like
// "example.бг" without a scheme, so a manual fallback handles those.
func NormalizeHost(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", dErrors.New(dErrors.CodeValidation, "url cannot be empty")
	}

	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	}
	if host == "" {
		host = stripHostManually(rawURL)
	}
	if host == "" {
		return "", dErrors.Newf(dErrors.CodeValidation, "cannot extract host from url %q", rawURL)
	}

	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimSuffix(host, ".")

	if !strings.Contains(host, ".") {
		return "", dErrors.Newf(dErrors.CodeValidation, "host %q is not a registrable domain", host)
	}
	return host, nil
}

// stripHostManually peels scheme, port, path, and query off a URL string.
// Fallback for IDN hosts and scheme-less inputs.
func stripHostManually(rawURL string) string {
	host := rawURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	for _, sep := range []byte{'/', '?', '#', ':'} {
		if i := strings.IndexByte(host, sep); i >= 0 {
			host = host[:i]
		}
	}
	return strings.TrimSpace(host)
}
