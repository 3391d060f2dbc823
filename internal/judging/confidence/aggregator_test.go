package confidence

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"northstar/internal/judging/signals"
	"northstar/internal/judging/tld"
)

// =============================================================================
// Confidence Aggregator Test Suite
// =============================================================================
// The aggregator sits on the crawl/no-crawl boundary, so these tests pin the
// exact decimal arithmetic: additive weights, the compound boost trigger, the
// [0.00, 1.00] clamp, and half-up rounding at scale 2.

type AggregatorSuite struct {
	suite.Suite
	tldScorer    *tld.Scorer
	signalScorer *signals.Scorer
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorSuite))
}

func (s *AggregatorSuite) SetupTest() {
	s.tldScorer = tld.New()
	s.signalScorer = signals.New()
}

func (s *AggregatorSuite) scoreURL(url, title, description string) decimal.Decimal {
	tldRes, err := s.tldScorer.Score(url)
	s.Require().NoError(err)
	return Aggregate(tldRes, s.signalScorer.Score(title, description))
}

func (s *AggregatorSuite) assertScore(got decimal.Decimal, want string) {
	s.True(got.Equal(decimal.RequireFromString(want)), "score %s, want %s", got, want)
}

// =============================================================================
// Additive Formula Tests
// =============================================================================

func (s *AggregatorSuite) TestTLDOnly() {
	score := s.scoreURL("https://example.org", "plain page", "nothing here")
	s.assertScore(score, "0.15")
	s.False(IsHighConfidence(score))
}

func (s *AggregatorSuite) TestScholarshipSiteScoresHigh() {
	// Tier 2 TLD 0.15 + title funding 0.15 + description funding 0.10
	// + geo 0.15 + org 0.15 + compound boost 0.15.
	score := s.scoreURL("https://fulbright.bg",
		"Fulbright Scholarship Bulgaria",
		"apply for scholarship funding")
	s.assertScore(score, "0.85")
	s.True(IsHighConfidence(score))
}

func (s *AggregatorSuite) TestWeakCommercialSiteScoresLow() {
	score := s.scoreURL("https://randomcharity.com", "Charity update", "")
	s.assertScore(score, "0.08")
	s.False(IsHighConfidence(score))
}

func (s *AggregatorSuite) TestCompoundBoostRequiresThreeSignals() {
	s.Run("two signals get no boost", func() {
		sig := signals.Result{TitleFunding: true, Geographic: true}
		score := Aggregate(tld.Result{Score: decimal.Zero}, sig)
		s.assertScore(score, "0.30")
	})

	s.Run("three signals trigger the boost", func() {
		sig := signals.Result{TitleFunding: true, Geographic: true, Organization: true}
		score := Aggregate(tld.Result{Score: decimal.Zero}, sig)
		// 0.15 + 0.15 + 0.15 + 0.15 boost.
		s.assertScore(score, "0.60")
	})

	s.Run("four signals still one boost", func() {
		sig := signals.Result{TitleFunding: true, DescriptionFunding: true, Geographic: true, Organization: true}
		score := Aggregate(tld.Result{Score: decimal.Zero}, sig)
		// 0.15 + 0.10 + 0.15 + 0.15 + 0.15 boost.
		s.assertScore(score, "0.70")
	})
}

// =============================================================================
// Boundary and Clamp Tests
// =============================================================================

func (s *AggregatorSuite) TestThresholdBoundaryIsExact() {
	// Exactly 0.60 must classify as high confidence. This is the case a
	// float64 sum would get wrong.
	sig := signals.Result{TitleFunding: true, Geographic: true, Organization: true}
	score := Aggregate(tld.Result{Score: decimal.Zero}, sig)
	s.assertScore(score, "0.60")
	s.True(IsHighConfidence(score))

	justBelow := decimal.RequireFromString("0.59")
	s.False(IsHighConfidence(justBelow))
}

func (s *AggregatorSuite) TestClampUpperBound() {
	// Tier 1 TLD with every signal overflows 1.00 and clamps.
	sig := signals.Result{TitleFunding: true, DescriptionFunding: true, Geographic: true, Organization: true}
	score := Aggregate(tld.Result{Score: decimal.RequireFromString("0.20")}, sig)
	// 0.20 + 0.15 + 0.10 + 0.15 + 0.15 + 0.15 = 0.90, no clamp needed.
	s.assertScore(score, "0.90")

	score = Clamp(decimal.RequireFromString("1.37"))
	s.assertScore(score, "1.00")
}

func (s *AggregatorSuite) TestClampLowerBound() {
	// Negative TLD scores with no signals clamp at zero.
	score := Aggregate(tld.Result{Score: decimal.RequireFromString("-0.25")}, signals.Result{})
	s.assertScore(score, "0.00")
}

func (s *AggregatorSuite) TestNegativeTLDDragsScoreBelowThreshold() {
	// A spam-adjacent TLD can hold an otherwise strong result under 0.60.
	sig := signals.Result{TitleFunding: true, Geographic: true, Organization: true}
	score := Aggregate(tld.Result{Score: decimal.RequireFromString("-0.25")}, sig)
	// -0.25 + 0.45 + 0.15 boost = 0.35.
	s.assertScore(score, "0.35")
	s.False(IsHighConfidence(score))
}

func (s *AggregatorSuite) TestRoundingIsHalfUpAtScaleTwo() {
	s.assertScore(Clamp(decimal.RequireFromString("0.595")), "0.60")
	s.assertScore(Clamp(decimal.RequireFromString("0.594")), "0.59")
	s.assertScore(Clamp(decimal.RequireFromString("0.005")), "0.01")
}

// =============================================================================
// Determinism Tests
// =============================================================================

func (s *AggregatorSuite) TestDeterminism() {
	first := s.scoreURL("https://ministry.gov.bg", "Grants from the Ministry", "funding for Bulgaria")
	for i := 0; i < 100; i++ {
		s.True(first.Equal(s.scoreURL("https://ministry.gov.bg", "Grants from the Ministry", "funding for Bulgaria")))
	}
}
