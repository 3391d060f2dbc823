// Package ports defines the interfaces the judging pipeline depends on.
package ports

import (
	"context"

	dqmodels "northstar/internal/domainquality/models"
	"northstar/internal/judging/models"
	id "northstar/pkg/domain"
)

// Tracker is the slice of the domain quality tracker the pipeline needs.
type Tracker interface {
	GetOrCreate(ctx context.Context, domainName string) (*dqmodels.DomainRecord, error)
	IsBlacklisted(ctx context.Context, domainName string) (bool, error)
	RecordJudgment(ctx context.Context, domainName string, outcome dqmodels.JudgmentOutcome) (*dqmodels.DomainRecord, error)
	MarkProcessingFailed(ctx context.Context, domainName, reason string) (*dqmodels.DomainRecord, error)
}

// JudgmentStore persists the append-only judgment log.
type JudgmentStore interface {
	// Append writes one immutable judgment record.
	Append(ctx context.Context, judgment *models.Judgment) error

	// ExistsForSessionDomain reports whether a judgment for this
	// (session, domain) pair was already recorded. The idempotence check
	// for re-delivered batches.
	ExistsForSessionDomain(ctx context.Context, sessionID id.SessionID, domainName string) (bool, error)

	// ListBySession returns all judgments recorded for a session.
	ListBySession(ctx context.Context, sessionID id.SessionID) ([]*models.Judgment, error)
}

// CandidateStore persists crawl candidates.
type CandidateStore interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	ListBySession(ctx context.Context, sessionID id.SessionID) ([]*models.Candidate, error)
	ListByStatus(ctx context.Context, status models.CandidateStatus, limit int) ([]*models.Candidate, error)
}
