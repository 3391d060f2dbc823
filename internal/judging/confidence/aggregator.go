// Package confidence combines TLD credibility and metadata signals into one
// bounded confidence score.
//
// All arithmetic is fixed-point decimal with scale 2 and half-up rounding.
// The crawl-threshold comparison at 0.60 must never run through binary
// floats: a float64 sum of 0.15 increments lands on 0.5999... and
// misclassifies the boundary.
package confidence

import (
	"github.com/shopspring/decimal"

	"northstar/internal/judging/signals"
	"northstar/internal/judging/tld"
)

// Score increments. Title keywords outweigh description keywords; geography
// and organization type weigh the same as a title match.
var (
	TitleKeywordScore       = decimal.RequireFromString("0.15")
	DescriptionKeywordScore = decimal.RequireFromString("0.10")
	GeographicScore         = decimal.RequireFromString("0.15")
	OrganizationScore       = decimal.RequireFromString("0.15")
	CompoundBoost           = decimal.RequireFromString("0.15")
)

// CrawlThreshold separates PENDING_CRAWL from LOW_CONFIDENCE candidates.
var CrawlThreshold = decimal.RequireFromString("0.60")

var (
	minConfidence = decimal.New(0, -2)
	maxConfidence = decimal.New(100, -2)
)

// compoundSignalCount is the number of co-occurring signals that triggers
// the compound boost: multiple weak signals together are stronger evidence
// than any one alone.
const compoundSignalCount = 3

// Aggregate computes the confidence score for one judged result.
//
// Deterministic: identical inputs always produce identical output. The
// result is clamped to [0.00, 1.00] and rounded to scale 2 half-up.
func Aggregate(tldResult tld.Result, sig signals.Result) decimal.Decimal {
	score := tldResult.Score

	if sig.TitleFunding {
		score = score.Add(TitleKeywordScore)
	}
	if sig.DescriptionFunding {
		score = score.Add(DescriptionKeywordScore)
	}
	if sig.Geographic {
		score = score.Add(GeographicScore)
	}
	if sig.Organization {
		score = score.Add(OrganizationScore)
	}
	if sig.Count() >= compoundSignalCount {
		score = score.Add(CompoundBoost)
	}

	return Clamp(score)
}

// Clamp bounds a score to [0.00, 1.00] at scale 2, rounding half-up.
func Clamp(score decimal.Decimal) decimal.Decimal {
	if score.GreaterThan(maxConfidence) {
		return maxConfidence
	}
	if score.LessThan(minConfidence) {
		return minConfidence
	}
	return score.Round(2)
}

// IsHighConfidence reports whether the score clears the crawl threshold.
func IsHighConfidence(score decimal.Decimal) bool {
	return score.GreaterThanOrEqual(CrawlThreshold)
}

// ZeroScore returns 0.00 at scale 2.
func ZeroScore() decimal.Decimal {
	return minConfidence
}
