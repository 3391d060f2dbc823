package signals

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Signal Scorer Test Suite
// =============================================================================

type SignalScorerSuite struct {
	suite.Suite
	scorer *Scorer
}

func TestSignalScorerSuite(t *testing.T) {
	suite.Run(t, new(SignalScorerSuite))
}

func (s *SignalScorerSuite) SetupTest() {
	s.scorer = New()
}

func (s *SignalScorerSuite) TestFundingKeywords() {
	s.Run("title and description score independently", func() {
		res := s.scorer.Score("Research Grants 2025", "Apply for funding today")
		s.True(res.TitleFunding)
		s.True(res.DescriptionFunding)
	})

	s.Run("title only", func() {
		res := s.scorer.Score("Scholarship portal", "open now")
		s.True(res.TitleFunding)
		s.False(res.DescriptionFunding)
	})

	s.Run("matching is case-insensitive", func() {
		res := s.scorer.Score("FELLOWSHIP Opportunities", "")
		s.True(res.TitleFunding)
	})

	s.Run("no keywords no signal", func() {
		res := s.scorer.Score("Cheap shoes online", "Best prices")
		s.False(res.TitleFunding)
		s.False(res.DescriptionFunding)
	})
}

func (s *SignalScorerSuite) TestGeographicKeywords() {
	s.Run("latin script", func() {
		res := s.scorer.Score("Support for Bulgaria", "")
		s.True(res.Geographic)
	})

	s.Run("cyrillic script", func() {
		res := s.scorer.Score("Програми за България", "")
		s.True(res.Geographic)
	})

	s.Run("matches in description too", func() {
		res := s.scorer.Score("Open call", "for projects in Eastern Europe")
		s.True(res.Geographic)
	})
}

func (s *SignalScorerSuite) TestOrganizationKeywords() {
	s.Run("ministry matches", func() {
		res := s.scorer.Score("Ministry of Education", "")
		s.True(res.Organization)
	})

	s.Run("cyrillic foundation matches", func() {
		res := s.scorer.Score("", "Фондация за развитие")
		s.True(res.Organization)
	})
}

func (s *SignalScorerSuite) TestEmptyInputs() {
	res := s.scorer.Score("", "")
	s.Equal(Result{}, res)
	s.Zero(res.Count())
}

func (s *SignalScorerSuite) TestCount() {
	res := s.scorer.Score(
		"Grants from the Ministry of Culture Bulgaria",
		"Funding for cultural projects",
	)
	// Title funding, description funding, geographic, organization.
	s.Equal(4, res.Count())
}
