// Package service implements the domain quality tracker: the stateful
// per-domain reputation aggregate behind the judging pipeline.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"northstar/internal/domainquality/metrics"
	"northstar/internal/domainquality/models"
	"northstar/internal/domainquality/ports"
	dErrors "northstar/pkg/domain-errors"
	"northstar/pkg/requestcontext"
)

// Type aliases for shared interfaces.
type (
	Store = ports.DomainStore
	Cache = ports.BlacklistCache
)

// updateAttempts bounds the optimistic retry loop on version conflicts.
const updateAttempts = 3

type Tracker struct {
	store   Store
	cache   Cache
	logger  *slog.Logger
	metrics *metrics.Metrics

	// locks serializes writers per domain name within this process so
	// concurrent pipeline workers don't burn store round-trips losing
	// version races to each other.
	locks sync.Map // domain name -> *sync.Mutex
}

type Option func(*Tracker)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithBlacklistCache enables the Redis read cache for blacklist checks.
func WithBlacklistCache(cache Cache) Option {
	return func(t *Tracker) {
		t.cache = cache
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) {
		t.metrics = m
	}
}

func New(store Store, opts ...Option) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("domain store is required")
	}

	tracker := &Tracker{
		store:  store,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(tracker)
	}

	return tracker, nil
}

func (t *Tracker) lockFor(domainName string) *sync.Mutex {
	mu, _ := t.locks.LoadOrStore(domainName, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// GetOrCreate returns the record for a domain, creating it on first
// sighting. On repeat sightings only LastSeenAt moves.
func (t *Tracker) GetOrCreate(ctx context.Context, domainName string) (*models.DomainRecord, error) {
	if domainName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "domain name cannot be empty")
	}

	existing, err := t.store.GetByName(ctx, domainName)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get domain")
	}
	if existing != nil {
		return existing, nil
	}

	record, err := models.NewDomainRecord(domainName, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := t.store.Create(ctx, record); err != nil {
		// Lost the creation race: someone else registered the domain
		// between our read and write. Their record wins.
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return t.store.GetByName(ctx, domainName)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create domain")
	}

	if t.metrics != nil {
		t.metrics.IncrementDomainsCreated()
	}
	t.logger.Info("domain discovered", "domain", domainName)
	return record, nil
}

// IsBlacklisted reports whether a domain is permanently excluded. Consults
// the cache first; the store is the source of truth. Unknown domains are not
// blacklisted.
func (t *Tracker) IsBlacklisted(ctx context.Context, domainName string) (bool, error) {
	if t.cache != nil {
		if verdict, found := t.cache.IsBlacklisted(ctx, domainName); found {
			if t.metrics != nil {
				t.metrics.IncrementBlacklistCacheHits()
			}
			return verdict, nil
		}
		if t.metrics != nil {
			t.metrics.IncrementBlacklistCacheMisses()
		}
	}

	record, err := t.store.GetByName(ctx, domainName)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check blacklist")
	}

	verdict := record != nil && record.IsBlacklisted()
	if t.cache != nil {
		t.cache.Set(ctx, domainName, verdict)
	}
	return verdict, nil
}

// RecordJudgment folds one judgment into the domain's counters, refreshes
// the best score, recomputes the tier, and promotes the status when
// high-confidence evidence arrives.
//
// The domain must already exist: the pipeline calls GetOrCreate first, so a
// missing record here is a programming error, not a retryable condition.
func (t *Tracker) RecordJudgment(ctx context.Context, domainName string, outcome models.JudgmentOutcome) (*models.DomainRecord, error) {
	return t.mutate(ctx, domainName, func(rec *models.DomainRecord) error {
		rec.TotalResultsCount++
		if outcome.HighConfidence {
			rec.HighConfidenceCount++
		} else {
			rec.LowConfidenceCount++
		}
		if outcome.ConfidenceScore.GreaterThan(rec.BestConfidenceScore) {
			rec.BestConfidenceScore = outcome.ConfidenceScore
		}

		previousTier := rec.QualityTier
		rec.QualityTier = models.RecomputeTier(rec.TotalResultsCount, rec.HighConfidenceCount, rec.BestConfidenceScore)
		if rec.QualityTier != previousTier && t.metrics != nil {
			t.metrics.IncrementTierTransitions(string(rec.QualityTier))
		}

		// Status promotion is narrow: only domains with no terminal or
		// advisory flag move to PROCESSED_HIGH_QUALITY.
		if outcome.HighConfidence &&
			(rec.Status == models.StatusDiscovered || rec.Status == models.StatusProcessingFailed) {
			rec.Status = models.StatusProcessedHighQuality
			rec.FailureReason = ""
		}

		rec.LastSeenAt = requestcontext.Now(ctx)

		if t.metrics != nil {
			t.metrics.IncrementJudgmentsRecorded(outcome.HighConfidence)
		}
		return nil
	})
}

// Blacklist permanently excludes a domain. Idempotent: re-blacklisting an
// already blacklisted domain succeeds without overwriting the original
// reason, actor, or timestamp.
func (t *Tracker) Blacklist(ctx context.Context, domainName, reason, actor string) (*models.DomainRecord, error) {
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "blacklist reason is required")
	}

	rec, err := t.mutate(ctx, domainName, func(rec *models.DomainRecord) error {
		if rec.IsBlacklisted() {
			return errNoChange
		}
		now := requestcontext.Now(ctx)
		rec.Status = models.StatusBlacklisted
		rec.BlacklistReason = reason
		rec.BlacklistedBy = actor
		rec.BlacklistedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		t.cache.Invalidate(ctx, domainName)
	}
	if t.metrics != nil {
		t.metrics.IncrementBlacklistOps("blacklist")
	}
	t.logger.Info("domain blacklisted", "domain", domainName, "actor", actor)
	return rec, nil
}

// Unblacklist reverses a blacklist decision, returning the domain to
// DISCOVERED and clearing the blacklist fields.
func (t *Tracker) Unblacklist(ctx context.Context, domainName string) (*models.DomainRecord, error) {
	rec, err := t.mutate(ctx, domainName, func(rec *models.DomainRecord) error {
		if !rec.IsBlacklisted() {
			return errNoChange
		}
		rec.Status = models.StatusDiscovered
		rec.BlacklistReason = ""
		rec.BlacklistedBy = ""
		rec.BlacklistedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		t.cache.Invalidate(ctx, domainName)
	}
	if t.metrics != nil {
		t.metrics.IncrementBlacklistOps("unblacklist")
	}
	t.logger.Info("domain unblacklisted", "domain", domainName)
	return rec, nil
}

// MarkNoFundsThisYear sets the advisory no-funds flag for the given year.
// Blacklist wins: the flag cannot displace a blacklisted status.
func (t *Tracker) MarkNoFundsThisYear(ctx context.Context, domainName string, year int) (*models.DomainRecord, error) {
	if year < 2000 || year > 2100 {
		return nil, dErrors.Newf(dErrors.CodeValidation, "implausible year %d", year)
	}

	return t.mutate(ctx, domainName, func(rec *models.DomainRecord) error {
		if rec.IsBlacklisted() {
			return dErrors.Newf(dErrors.CodeConflict, "domain %q is blacklisted", domainName)
		}
		rec.Status = models.StatusNoFundsThisYear
		rec.NoFundsYear = &year
		return nil
	})
}

// ClearNoFundsFlag removes the advisory flag, returning the domain to
// DISCOVERED so later sightings re-evaluate it.
func (t *Tracker) ClearNoFundsFlag(ctx context.Context, domainName string) (*models.DomainRecord, error) {
	return t.mutate(ctx, domainName, func(rec *models.DomainRecord) error {
		if rec.Status != models.StatusNoFundsThisYear {
			return errNoChange
		}
		rec.Status = models.StatusDiscovered
		rec.NoFundsYear = nil
		return nil
	})
}

// MarkProcessingFailed records a technical failure for the domain. Terminal
// and advisory statuses are preserved; only DISCOVERED domains transition.
func (t *Tracker) MarkProcessingFailed(ctx context.Context, domainName, reason string) (*models.DomainRecord, error) {
	return t.mutate(ctx, domainName, func(rec *models.DomainRecord) error {
		rec.FailureCount++
		rec.FailureReason = reason
		if rec.Status == models.StatusDiscovered {
			rec.Status = models.StatusProcessingFailed
		}
		return nil
	})
}

// SetNotes replaces the free-form admin annotation on a domain.
func (t *Tracker) SetNotes(ctx context.Context, domainName, notes string) (*models.DomainRecord, error) {
	return t.mutate(ctx, domainName, func(rec *models.DomainRecord) error {
		rec.Notes = notes
		return nil
	})
}

// Get returns the record for a domain, or CodeNotFound.
func (t *Tracker) Get(ctx context.Context, domainName string) (*models.DomainRecord, error) {
	record, err := t.store.GetByName(ctx, domainName)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get domain")
	}
	if record == nil {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "domain %q not found", domainName)
	}
	return record, nil
}

// DomainsByTier lists domains in a quality tier, best score first.
func (t *Tracker) DomainsByTier(ctx context.Context, tier models.QualityTier, limit int) ([]*models.DomainRecord, error) {
	if !tier.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid quality tier %q", tier)
	}
	records, err := t.store.ListByTier(ctx, tier, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list domains by tier")
	}
	return records, nil
}

// DomainsByStatus lists domains in a processing status.
func (t *Tracker) DomainsByStatus(ctx context.Context, status models.DomainStatus, limit int) ([]*models.DomainRecord, error) {
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid domain status %q", status)
	}
	records, err := t.store.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list domains by status")
	}
	return records, nil
}

// SearchDomains finds domains whose name contains the query.
func (t *Tracker) SearchDomains(ctx context.Context, query string, limit int) ([]*models.DomainRecord, error) {
	if query == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "search query cannot be empty")
	}
	records, err := t.store.Search(ctx, query, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search domains")
	}
	return records, nil
}

// errNoChange is returned by mutation callbacks for idempotent no-ops; the
// current record is returned without a store write.
var errNoChange = fmt.Errorf("no change")

// mutate runs a read-modify-write cycle under the per-domain lock with a
// bounded optimistic retry against cross-process version races.
func (t *Tracker) mutate(ctx context.Context, domainName string, fn func(*models.DomainRecord) error) (*models.DomainRecord, error) {
	if domainName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "domain name cannot be empty")
	}

	mu := t.lockFor(domainName)
	mu.Lock()
	defer mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= updateAttempts; attempt++ {
		record, err := t.store.GetByName(ctx, domainName)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get domain")
		}
		if record == nil {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "domain %q not registered", domainName)
		}

		if err := fn(record); err != nil {
			if err == errNoChange {
				return record, nil
			}
			return nil, err
		}

		record.Version++
		err = t.store.Update(ctx, record)
		if err == nil {
			return record, nil
		}
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update domain")
		}

		lastErr = err
		if t.metrics != nil {
			t.metrics.IncrementUpdateConflicts()
		}

		select {
		case <-ctx.Done():
			return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeUnavailable, "domain update cancelled")
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}

	return nil, dErrors.Wrap(lastErr, dErrors.CodeConflict,
		fmt.Sprintf("domain %q update contention exceeded %d attempts", domainName, updateAttempts))
}
