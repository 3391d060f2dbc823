// Package service implements the batch judging pipeline: validation, spam
// rejection, domain grouping, concurrent per-domain judging, and statistics.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	dqmodels "northstar/internal/domainquality/models"
	"northstar/internal/judging/confidence"
	"northstar/internal/judging/metrics"
	"northstar/internal/judging/models"
	"northstar/internal/judging/ports"
	"northstar/internal/judging/signals"
	"northstar/internal/judging/tld"
	id "northstar/pkg/domain"
	dErrors "northstar/pkg/domain-errors"
	"northstar/pkg/platform/tx"
	"northstar/pkg/requestcontext"
)

// Type aliases for shared interfaces.
type (
	Tracker        = ports.Tracker
	JudgmentStore  = ports.JudgmentStore
	CandidateStore = ports.CandidateStore
)

const defaultWorkers = 8

type Processor struct {
	tracker    Tracker
	judgments  JudgmentStore
	candidates CandidateStore

	tldScorer    *tld.Scorer
	signalScorer *signals.Scorer

	// db, when set, gives each domain group its own transaction so the
	// judgment, candidate, and aggregate writes commit together.
	db *sql.DB

	workers int
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Processor)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithWorkers bounds the number of domain groups judged concurrently.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithUnitOfWork wraps each domain group in a database transaction.
func WithUnitOfWork(db *sql.DB) Option {
	return func(p *Processor) {
		p.db = db
	}
}

func New(tracker Tracker, judgments JudgmentStore, candidates CandidateStore, opts ...Option) (*Processor, error) {
	if tracker == nil {
		return nil, fmt.Errorf("domain quality tracker is required")
	}
	if judgments == nil {
		return nil, fmt.Errorf("judgment store is required")
	}
	if candidates == nil {
		return nil, fmt.Errorf("candidate store is required")
	}

	p := &Processor{
		tracker:      tracker,
		judgments:    judgments,
		candidates:   candidates,
		tldScorer:    tld.New(),
		signalScorer: signals.New(),
		workers:      defaultWorkers,
		logger:       slog.Default(),
		tracer:       otel.Tracer("northstar/judging"),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// domainGroup collects all results that normalized to one domain, plus the
// TLD classification they share.
type domainGroup struct {
	domainName string
	tldResult  tld.Result
	results    []models.SearchResult
}

// Process judges one batch of search results for a discovery session.
//
// The pipeline: validate, reject auto-reject TLDs, group by normalized
// domain, then judge groups concurrently. One domain's failure never aborts
// the batch; failures are counted and the domain is marked for retry.
// Re-delivered batches are safe: already-judged (session, domain) pairs are
// skipped.
func (p *Processor) Process(ctx context.Context, sessionID id.SessionID, results []models.SearchResult) (*models.ProcessingStatistics, error) {
	if sessionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "session id is required")
	}

	ctx, span := p.tracer.Start(ctx, "judging.Process",
		trace.WithAttributes(
			attribute.String("session_id", sessionID.String()),
			attribute.Int("batch_size", len(results)),
		))
	defer span.End()

	// One clock per batch: every record written for this batch carries the
	// same timestamp. A clock already injected upstream wins.
	wallStart := time.Now()
	batchTime := requestcontext.Now(ctx)
	ctx = requestcontext.WithSessionID(ctx, sessionID)
	ctx = requestcontext.WithTime(ctx, batchTime)

	stats := &models.ProcessingStatistics{
		SessionID:    sessionID,
		TotalResults: len(results),
	}

	groups := p.partition(ctx, results, stats)
	stats.UniqueDomains = len(groups)

	var (
		mu          sync.Mutex
		unavailable int
		lastErr     error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, group := range groups {
		g.Go(func() error {
			outcome, err := p.processGroup(gctx, sessionID, group)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil && gctx.Err() != nil:
				return err
			case err != nil:
				stats.FailedDomains++
				if dErrors.HasCode(err, dErrors.CodeUnavailable) {
					unavailable++
					lastErr = err
				}
				p.logger.Error("domain group failed",
					"session_id", sessionID, "domain", group.domainName, "error", err)
				if p.metrics != nil {
					p.metrics.IncrementDomainFailures()
				}
			default:
				stats.BlacklistedSkipped += outcome.blacklistedSkipped
				stats.AlreadyJudgedSkipped += outcome.alreadyJudgedSkipped
				stats.CandidatesCreated += outcome.candidatesCreated
				stats.HighConfidenceCount += outcome.highConfidence
				stats.LowConfidenceCount += outcome.lowConfidence
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "batch processing cancelled")
	}

	// Isolation covers partial failures; when every group hit an unreachable
	// backend the whole batch is fatal so the message is redelivered intact.
	if len(groups) > 0 && unavailable == len(groups) {
		return nil, dErrors.Wrap(lastErr, dErrors.CodeUnavailable,
			"persistence unavailable for every domain group")
	}

	stats.Duration = time.Since(wallStart)
	if p.metrics != nil {
		p.metrics.IncrementBatchesProcessed()
		p.metrics.ObserveBatchDuration(stats.Duration.Seconds())
	}
	p.logger.Info("batch processed",
		"session_id", sessionID,
		"total", stats.TotalResults,
		"spam_rejected", stats.SpamRejected,
		"invalid", stats.InvalidResults,
		"unique_domains", stats.UniqueDomains,
		"candidates", stats.CandidatesCreated,
		"failed_domains", stats.FailedDomains,
		"duration", stats.Duration,
	)

	return stats, nil
}

// partition validates results, drops auto-reject TLDs, and groups the rest
// by normalized domain name.
func (p *Processor) partition(ctx context.Context, results []models.SearchResult, stats *models.ProcessingStatistics) []*domainGroup {
	_, span := p.tracer.Start(ctx, "judging.partition")
	defer span.End()

	byDomain := make(map[string]*domainGroup)
	var order []string

	for _, res := range results {
		if err := res.Validate(); err != nil {
			stats.InvalidResults++
			if p.metrics != nil {
				p.metrics.IncrementResultsRejected("invalid")
			}
			continue
		}

		tldResult, err := p.tldScorer.Score(res.URL)
		if err != nil {
			stats.InvalidResults++
			if p.metrics != nil {
				p.metrics.IncrementResultsRejected("invalid")
			}
			p.logger.Debug("unscorable url dropped", "url", res.URL, "error", err)
			continue
		}

		// Spam TLDs never reach a domain record: rejected results leave
		// no trace in the quality tracker.
		if tldResult.AutoReject {
			stats.SpamRejected++
			if p.metrics != nil {
				p.metrics.IncrementResultsRejected("spam_tld")
			}
			continue
		}

		group, ok := byDomain[tldResult.Domain]
		if !ok {
			group = &domainGroup{domainName: tldResult.Domain, tldResult: tldResult}
			byDomain[tldResult.Domain] = group
			order = append(order, tldResult.Domain)
		}
		group.results = append(group.results, res)
	}

	groups := make([]*domainGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, byDomain[name])
	}
	return groups
}

// groupOutcome is what one domain group contributes to the batch statistics.
type groupOutcome struct {
	blacklistedSkipped   int
	alreadyJudgedSkipped int
	candidatesCreated    int
	highConfidence       int
	lowConfidence        int
}

func (p *Processor) processGroup(ctx context.Context, sessionID id.SessionID, group *domainGroup) (groupOutcome, error) {
	if err := ctx.Err(); err != nil {
		return groupOutcome{}, err
	}

	ctx, span := p.tracer.Start(ctx, "judging.processGroup",
		trace.WithAttributes(attribute.String("domain", group.domainName)))
	defer span.End()

	var outcome groupOutcome
	err := p.inTransaction(ctx, func(ctx context.Context) error {
		var err error
		outcome, err = p.judgeGroup(ctx, sessionID, group)
		return err
	})
	if err != nil && ctx.Err() == nil {
		// Best effort: the failure itself is evidence about the domain.
		if _, markErr := p.tracker.MarkProcessingFailed(ctx, group.domainName, err.Error()); markErr != nil {
			p.logger.Warn("could not mark domain failed", "domain", group.domainName, "error", markErr)
		}
	}
	return outcome, err
}

func (p *Processor) judgeGroup(ctx context.Context, sessionID id.SessionID, group *domainGroup) (groupOutcome, error) {
	var outcome groupOutcome

	record, err := p.tracker.GetOrCreate(ctx, group.domainName)
	if err != nil {
		return outcome, err
	}

	blacklisted, err := p.tracker.IsBlacklisted(ctx, group.domainName)
	if err != nil {
		return outcome, err
	}
	if blacklisted {
		outcome.blacklistedSkipped = len(group.results)
		if p.metrics != nil {
			p.metrics.IncrementResultsRejected("blacklisted")
		}
		return outcome, nil
	}

	judged, err := p.judgments.ExistsForSessionDomain(ctx, sessionID, group.domainName)
	if err != nil {
		return outcome, err
	}
	if judged {
		outcome.alreadyJudgedSkipped = len(group.results)
		return outcome, nil
	}

	representative := pickRepresentative(group.results)

	sig := p.signalScorer.Score(representative.Title, representative.Description)
	score := confidence.Aggregate(group.tldResult, sig)
	highConfidence := confidence.IsHighConfidence(score)
	components := componentBreakdown(group.tldResult, sig)

	now := requestcontext.Now(ctx)

	candidate, err := models.NewCandidate(sessionID, group.domainName, representative, score, highConfidence, record.QualityTier, now)
	if err != nil {
		return outcome, err
	}

	// The judgment append is the idempotence gate: its (session, domain)
	// unique constraint decides which of two concurrent deliveries wins, so
	// it must land before the candidate does.
	judgment, err := models.NewJudgment(sessionID, group.domainName, representative, score, components, highConfidence, candidate, now)
	if err != nil {
		return outcome, err
	}
	if err := p.judgments.Append(ctx, judgment); err != nil {
		// Another worker or a concurrent re-delivery beat us to the pair.
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			outcome = groupOutcome{alreadyJudgedSkipped: len(group.results)}
			return outcome, nil
		}
		return outcome, err
	}

	if err := p.candidates.Create(ctx, candidate); err != nil {
		return outcome, err
	}

	if _, err := p.tracker.RecordJudgment(ctx, group.domainName, dqmodels.JudgmentOutcome{
		ConfidenceScore: score,
		HighConfidence:  highConfidence,
	}); err != nil {
		return outcome, err
	}

	outcome.candidatesCreated = 1
	if highConfidence {
		outcome.highConfidence = 1
	} else {
		outcome.lowConfidence = 1
	}
	if p.metrics != nil {
		p.metrics.IncrementResultsJudged(highConfidence)
		p.metrics.ObserveConfidenceScore(score.InexactFloat64())
	}

	p.logger.Debug("domain judged",
		"session_id", sessionID,
		"domain", group.domainName,
		"score", score.String(),
		"high_confidence", highConfidence,
	)
	return outcome, nil
}

// inTransaction runs fn inside a per-group transaction when a database is
// configured, or directly otherwise.
func (p *Processor) inTransaction(ctx context.Context, fn func(context.Context) error) error {
	if p.db == nil {
		return fn(ctx)
	}

	sqlTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to begin transaction")
	}

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to commit transaction")
	}
	return nil
}

// pickRepresentative selects the earliest-discovered result of a group and
// backfills its empty metadata fields from the others. Deterministic for a
// given input batch.
func pickRepresentative(results []models.SearchResult) models.SearchResult {
	rep := results[0]
	for _, res := range results[1:] {
		if res.DiscoveredAt.Before(rep.DiscoveredAt) {
			rep = res
		}
	}
	for _, res := range results {
		if rep.Title == "" {
			rep.Title = res.Title
		}
		if rep.Description == "" {
			rep.Description = res.Description
		}
	}
	return rep
}

// componentBreakdown records the per-signal contributions behind a score.
func componentBreakdown(tldResult tld.Result, sig signals.Result) models.ComponentScores {
	components := models.ComponentScores{
		TLDScore:     tldResult.Score,
		KeywordScore: confidence.ZeroScore(),
		GeoScore:     confidence.ZeroScore(),
		OrgTypeScore: confidence.ZeroScore(),
	}
	if sig.TitleFunding {
		components.KeywordScore = components.KeywordScore.Add(confidence.TitleKeywordScore)
	}
	if sig.DescriptionFunding {
		components.KeywordScore = components.KeywordScore.Add(confidence.DescriptionKeywordScore)
	}
	if sig.Geographic {
		components.GeoScore = confidence.GeographicScore
	}
	if sig.Organization {
		components.OrgTypeScore = confidence.OrganizationScore
	}
	return components
}
