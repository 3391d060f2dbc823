package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"northstar/internal/domainquality/models"
	domainstore "northstar/internal/domainquality/store/domain"
	dErrors "northstar/pkg/domain-errors"
	"northstar/pkg/requestcontext"
)

// =============================================================================
// Domain Quality Tracker Test Suite
// =============================================================================
// Justification for unit tests: the tracker owns the per-domain counter
// invariants, tier transitions, and status machine; exercising those
// precisely through the batch pipeline would require crafted multi-batch
// inputs for every edge.

type TrackerSuite struct {
	suite.Suite
	store   *domainstore.MemoryStore
	tracker *Tracker
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.store = domainstore.NewMemoryStore()

	var err error
	s.tracker, err = New(s.store)
	s.Require().NoError(err)
}

func (s *TrackerSuite) judge(ctx context.Context, domain, score string) *models.DomainRecord {
	d := decimal.RequireFromString(score)
	rec, err := s.tracker.RecordJudgment(ctx, domain, models.JudgmentOutcome{
		ConfidenceScore: d,
		HighConfidence:  d.GreaterThanOrEqual(decimal.RequireFromString("0.60")),
	})
	s.Require().NoError(err)
	return rec
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *TrackerSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "domain store is required")
	})

	s.Run("valid store returns configured tracker", func() {
		tracker, err := New(s.store)
		s.NoError(err)
		s.NotNil(tracker)
	})
}

// =============================================================================
// GetOrCreate Tests
// =============================================================================

func (s *TrackerSuite) TestGetOrCreate() {
	ctx := context.Background()

	s.Run("first sighting creates a discovered record", func() {
		rec, err := s.tracker.GetOrCreate(ctx, "example.org")
		s.Require().NoError(err)
		s.Equal("example.org", rec.DomainName)
		s.Equal(models.StatusDiscovered, rec.Status)
		s.Equal(models.TierUnknown, rec.QualityTier)
	})

	s.Run("repeat sighting returns the same record", func() {
		first, err := s.tracker.GetOrCreate(ctx, "repeat.org")
		s.Require().NoError(err)

		second, err := s.tracker.GetOrCreate(ctx, "repeat.org")
		s.Require().NoError(err)
		s.Equal(first.ID, second.ID)
	})

	s.Run("empty domain is rejected", func() {
		_, err := s.tracker.GetOrCreate(ctx, "")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// =============================================================================
// RecordJudgment Tests
// =============================================================================

func (s *TrackerSuite) TestRecordJudgment() {
	ctx := context.Background()

	s.Run("unregistered domain is an invariant violation", func() {
		_, err := s.tracker.RecordJudgment(ctx, "ghost.org", models.JudgmentOutcome{})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("counters stay consistent", func() {
		_, err := s.tracker.GetOrCreate(ctx, "counted.org")
		s.Require().NoError(err)

		s.judge(ctx, "counted.org", "0.75")
		s.judge(ctx, "counted.org", "0.40")
		rec := s.judge(ctx, "counted.org", "0.62")

		s.Equal(3, rec.TotalResultsCount)
		s.Equal(2, rec.HighConfidenceCount)
		s.Equal(1, rec.LowConfidenceCount)
		s.Equal(rec.TotalResultsCount, rec.HighConfidenceCount+rec.LowConfidenceCount)
	})

	s.Run("best score never decreases", func() {
		_, err := s.tracker.GetOrCreate(ctx, "best.org")
		s.Require().NoError(err)

		s.judge(ctx, "best.org", "0.80")
		rec := s.judge(ctx, "best.org", "0.30")
		s.True(rec.BestConfidenceScore.Equal(decimal.RequireFromString("0.80")))
	})

	s.Run("high confidence promotes discovered to processed", func() {
		_, err := s.tracker.GetOrCreate(ctx, "promoted.org")
		s.Require().NoError(err)

		rec := s.judge(ctx, "promoted.org", "0.70")
		s.Equal(models.StatusProcessedHighQuality, rec.Status)
	})

	s.Run("low confidence does not promote", func() {
		_, err := s.tracker.GetOrCreate(ctx, "stalled.org")
		s.Require().NoError(err)

		rec := s.judge(ctx, "stalled.org", "0.20")
		s.Equal(models.StatusDiscovered, rec.Status)
	})

	s.Run("no-funds status survives a high confidence judgment", func() {
		_, err := s.tracker.GetOrCreate(ctx, "paused.org")
		s.Require().NoError(err)
		_, err = s.tracker.MarkNoFundsThisYear(ctx, "paused.org", 2025)
		s.Require().NoError(err)

		rec := s.judge(ctx, "paused.org", "0.90")
		s.Equal(models.StatusNoFundsThisYear, rec.Status)
	})
}

func (s *TrackerSuite) TestFiveJudgmentsReachHighTier() {
	ctx := context.Background()
	_, err := s.tracker.GetOrCreate(ctx, "x.org")
	s.Require().NoError(err)

	// Four high-confidence results and one low, best 0.75: ratio 0.8 with a
	// qualifying best score.
	for _, score := range []string{"0.65", "0.70", "0.75", "0.62"} {
		s.judge(ctx, "x.org", score)
	}
	rec := s.judge(ctx, "x.org", "0.40")

	s.Equal(5, rec.TotalResultsCount)
	s.Equal(4, rec.HighConfidenceCount)
	s.Equal(models.TierHigh, rec.QualityTier)
}

func (s *TrackerSuite) TestConcurrentJudgmentsLoseNothing() {
	ctx := context.Background()
	_, err := s.tracker.GetOrCreate(ctx, "busy.org")
	s.Require().NoError(err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			score := decimal.RequireFromString(fmt.Sprintf("0.%02d", 50+i))
			_, err := s.tracker.RecordJudgment(ctx, "busy.org", models.JudgmentOutcome{
				ConfidenceScore: score,
				HighConfidence:  score.GreaterThanOrEqual(decimal.RequireFromString("0.60")),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	rec, err := s.tracker.Get(ctx, "busy.org")
	s.Require().NoError(err)
	s.Equal(workers, rec.TotalResultsCount)
	s.Equal(rec.TotalResultsCount, rec.HighConfidenceCount+rec.LowConfidenceCount)
}

// =============================================================================
// Blacklist Tests
// =============================================================================

func (s *TrackerSuite) TestBlacklist() {
	ctx := context.Background()

	s.Run("blacklisting sets reason actor and timestamp", func() {
		_, err := s.tracker.GetOrCreate(ctx, "bad.org")
		s.Require().NoError(err)

		rec, err := s.tracker.Blacklist(ctx, "bad.org", "fake charity", "admin1")
		s.Require().NoError(err)
		s.Equal(models.StatusBlacklisted, rec.Status)
		s.Equal("fake charity", rec.BlacklistReason)
		s.Equal("admin1", rec.BlacklistedBy)
		s.NotNil(rec.BlacklistedAt)
	})

	s.Run("re-blacklisting is idempotent and keeps the original reason", func() {
		_, err := s.tracker.GetOrCreate(ctx, "twice.org")
		s.Require().NoError(err)

		first, err := s.tracker.Blacklist(ctx, "twice.org", "original reason", "admin1")
		s.Require().NoError(err)

		second, err := s.tracker.Blacklist(ctx, "twice.org", "different reason", "admin2")
		s.Require().NoError(err)
		s.Equal("original reason", second.BlacklistReason)
		s.Equal("admin1", second.BlacklistedBy)
		s.Equal(first.BlacklistedAt.Unix(), second.BlacklistedAt.Unix())
	})

	s.Run("empty reason is rejected", func() {
		_, err := s.tracker.Blacklist(ctx, "bad.org", "", "admin1")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unblacklist restores discovered and clears fields", func() {
		_, err := s.tracker.GetOrCreate(ctx, "forgiven.org")
		s.Require().NoError(err)
		_, err = s.tracker.Blacklist(ctx, "forgiven.org", "mistake", "admin1")
		s.Require().NoError(err)

		rec, err := s.tracker.Unblacklist(ctx, "forgiven.org")
		s.Require().NoError(err)
		s.Equal(models.StatusDiscovered, rec.Status)
		s.Empty(rec.BlacklistReason)
		s.Nil(rec.BlacklistedAt)

		blacklisted, err := s.tracker.IsBlacklisted(ctx, "forgiven.org")
		s.Require().NoError(err)
		s.False(blacklisted)
	})
}

func (s *TrackerSuite) TestIsBlacklisted() {
	ctx := context.Background()

	s.Run("unknown domain is not blacklisted", func() {
		blacklisted, err := s.tracker.IsBlacklisted(ctx, "never-seen.org")
		s.NoError(err)
		s.False(blacklisted)
	})

	s.Run("blacklisted domain reports true", func() {
		_, err := s.tracker.GetOrCreate(ctx, "reported.org")
		s.Require().NoError(err)
		_, err = s.tracker.Blacklist(ctx, "reported.org", "spam", "admin1")
		s.Require().NoError(err)

		blacklisted, err := s.tracker.IsBlacklisted(ctx, "reported.org")
		s.NoError(err)
		s.True(blacklisted)
	})
}

// =============================================================================
// No-Funds Flag Tests
// =============================================================================

func (s *TrackerSuite) TestNoFundsFlag() {
	ctx := context.Background()

	s.Run("sets status and year", func() {
		_, err := s.tracker.GetOrCreate(ctx, "dry.org")
		s.Require().NoError(err)

		rec, err := s.tracker.MarkNoFundsThisYear(ctx, "dry.org", 2025)
		s.Require().NoError(err)
		s.Equal(models.StatusNoFundsThisYear, rec.Status)
		s.Equal(2025, *rec.NoFundsYear)
	})

	s.Run("cannot displace a blacklist", func() {
		_, err := s.tracker.GetOrCreate(ctx, "blocked.org")
		s.Require().NoError(err)
		_, err = s.tracker.Blacklist(ctx, "blocked.org", "fraud", "admin1")
		s.Require().NoError(err)

		_, err = s.tracker.MarkNoFundsThisYear(ctx, "blocked.org", 2025)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("clear restores discovered", func() {
		_, err := s.tracker.GetOrCreate(ctx, "refill.org")
		s.Require().NoError(err)
		_, err = s.tracker.MarkNoFundsThisYear(ctx, "refill.org", 2025)
		s.Require().NoError(err)

		rec, err := s.tracker.ClearNoFundsFlag(ctx, "refill.org")
		s.Require().NoError(err)
		s.Equal(models.StatusDiscovered, rec.Status)
		s.Nil(rec.NoFundsYear)
	})

	s.Run("implausible year is rejected", func() {
		_, err := s.tracker.MarkNoFundsThisYear(ctx, "dry.org", 1892)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// =============================================================================
// Processing Failure Tests
// =============================================================================

func (s *TrackerSuite) TestMarkProcessingFailed() {
	ctx := context.Background()

	s.Run("discovered domain transitions to failed", func() {
		_, err := s.tracker.GetOrCreate(ctx, "flaky.org")
		s.Require().NoError(err)

		rec, err := s.tracker.MarkProcessingFailed(ctx, "flaky.org", "store timeout")
		s.Require().NoError(err)
		s.Equal(models.StatusProcessingFailed, rec.Status)
		s.Equal("store timeout", rec.FailureReason)
		s.Equal(1, rec.FailureCount)
	})

	s.Run("blacklisted status is preserved", func() {
		_, err := s.tracker.GetOrCreate(ctx, "stillbad.org")
		s.Require().NoError(err)
		_, err = s.tracker.Blacklist(ctx, "stillbad.org", "fraud", "admin1")
		s.Require().NoError(err)

		rec, err := s.tracker.MarkProcessingFailed(ctx, "stillbad.org", "timeout")
		s.Require().NoError(err)
		s.Equal(models.StatusBlacklisted, rec.Status)
		s.Equal(1, rec.FailureCount)
	})

	s.Run("failed domain recovers on high confidence judgment", func() {
		_, err := s.tracker.GetOrCreate(ctx, "healed.org")
		s.Require().NoError(err)
		_, err = s.tracker.MarkProcessingFailed(ctx, "healed.org", "timeout")
		s.Require().NoError(err)

		rec := s.judge(ctx, "healed.org", "0.80")
		s.Equal(models.StatusProcessedHighQuality, rec.Status)
		s.Empty(rec.FailureReason)
	})
}

// =============================================================================
// Query Tests
// =============================================================================

func (s *TrackerSuite) TestQueries() {
	ctx := requestcontext.WithTime(context.Background(), time.Now())

	for _, name := range []string{"alpha.org", "beta.org", "gamma.com"} {
		_, err := s.tracker.GetOrCreate(ctx, name)
		s.Require().NoError(err)
	}

	s.Run("list by tier", func() {
		recs, err := s.tracker.DomainsByTier(ctx, models.TierUnknown, 0)
		s.NoError(err)
		s.Len(recs, 3)
	})

	s.Run("invalid tier is rejected", func() {
		_, err := s.tracker.DomainsByTier(ctx, models.QualityTier("SHINY"), 0)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("list by status", func() {
		recs, err := s.tracker.DomainsByStatus(ctx, models.StatusDiscovered, 0)
		s.NoError(err)
		s.Len(recs, 3)
	})

	s.Run("search matches substrings", func() {
		recs, err := s.tracker.SearchDomains(ctx, "a.org", 0)
		s.NoError(err)
		s.Len(recs, 2) // alpha.org, beta.org, not gamma.com
	})

	s.Run("empty search query is rejected", func() {
		_, err := s.tracker.SearchDomains(ctx, "", 0)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("get missing domain returns not found", func() {
		_, err := s.tracker.Get(ctx, "nope.org")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Notes Tests
// =============================================================================

func (s *TrackerSuite) TestSetNotes() {
	ctx := context.Background()
	_, err := s.tracker.GetOrCreate(ctx, "annotated.org")
	s.Require().NoError(err)

	rec, err := s.tracker.SetNotes(ctx, "annotated.org", "follow up in Q3")
	s.Require().NoError(err)
	s.Equal("follow up in Q3", rec.Notes)

	rec, err = s.tracker.SetNotes(ctx, "annotated.org", "")
	s.Require().NoError(err)
	s.Empty(rec.Notes)
}
