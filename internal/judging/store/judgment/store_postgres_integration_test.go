//go:build integration

package judgment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	dqmodels "northstar/internal/domainquality/models"
	"northstar/internal/judging/models"
	"northstar/internal/platform/postgres"
	id "northstar/pkg/domain"
	dErrors "northstar/pkg/domain-errors"
	"northstar/pkg/testutil/containers"
)

// =============================================================================
// Postgres Judgment Store Integration Suite
// =============================================================================

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T(), postgres.Schema)
	s.store = NewPostgresStore(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(context.Background(), "judgments"))
}

func (s *PostgresStoreSuite) newJudgment(sessionID id.SessionID, domainName string, at time.Time) *models.Judgment {
	result := models.SearchResult{
		URL:         "https://" + domainName,
		Title:       "Grants | " + domainName,
		Description: "funding programmes",
	}
	score := decimal.RequireFromString("0.75")

	candidate, err := models.NewCandidate(sessionID, domainName, result, score, true, dqmodels.TierUnknown, at)
	s.Require().NoError(err)

	j, err := models.NewJudgment(sessionID, domainName, result, score,
		models.ComponentScores{
			TLDScore:     decimal.RequireFromString("0.45"),
			KeywordScore: decimal.RequireFromString("0.15"),
			GeoScore:     decimal.RequireFromString("0.15"),
			OrgTypeScore: decimal.RequireFromString("0.00"),
		},
		true, candidate, at)
	s.Require().NoError(err)
	return j
}

func (s *PostgresStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	base := time.Now().UTC().Truncate(time.Microsecond)

	second := s.newJudgment(sessionID, "later.org", base.Add(time.Second))
	first := s.newJudgment(sessionID, "earlier.org", base)
	s.Require().NoError(s.store.Append(ctx, second))
	s.Require().NoError(s.store.Append(ctx, first))

	listed, err := s.store.ListBySession(ctx, sessionID)
	s.Require().NoError(err)
	s.Require().Len(listed, 2)

	s.Run("ordered by judged_at", func() {
		s.Equal("earlier.org", listed[0].DomainName)
		s.Equal("later.org", listed[1].DomainName)
	})

	s.Run("components survive the round trip", func() {
		got := listed[0]
		s.Equal(first.ID, got.ID)
		s.Equal(sessionID, got.SessionID)
		s.True(got.ConfidenceScore.Equal(decimal.RequireFromString("0.75")))
		s.True(got.Components.TLDScore.Equal(decimal.RequireFromString("0.45")))
		s.True(got.Components.OrgTypeScore.IsZero())
		s.True(got.HighConfidence)
	})

	s.Run("audit snapshot and candidate link survive the round trip", func() {
		got := listed[0]
		s.Equal(first.Title, got.Title)
		s.Equal(first.Description, got.Description)
		s.True(got.CandidateCreated)
		s.Require().NotNil(got.CandidateID)
		s.Equal(*first.CandidateID, *got.CandidateID)
	})
}

func (s *PostgresStoreSuite) TestUniqueSessionDomainConstraint() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	now := time.Now()

	s.Require().NoError(s.store.Append(ctx, s.newJudgment(sessionID, "example.org", now)))

	err := s.store.Append(ctx, s.newJudgment(sessionID, "example.org", now))
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	s.Run("other sessions judge the same domain independently", func() {
		s.NoError(s.store.Append(ctx, s.newJudgment(id.NewSessionID(), "example.org", now)))
	})
}

func (s *PostgresStoreSuite) TestExistsForSessionDomain() {
	ctx := context.Background()
	sessionID := id.NewSessionID()

	exists, err := s.store.ExistsForSessionDomain(ctx, sessionID, "example.org")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.store.Append(ctx, s.newJudgment(sessionID, "example.org", time.Now())))

	exists, err = s.store.ExistsForSessionDomain(ctx, sessionID, "example.org")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.ExistsForSessionDomain(ctx, id.NewSessionID(), "example.org")
	s.Require().NoError(err)
	s.False(exists)
}
