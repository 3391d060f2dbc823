// Package models defines the judging domain entities: raw search results,
// per-result judgments, crawl candidates, and batch statistics.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dqmodels "northstar/internal/domainquality/models"
	id "northstar/pkg/domain"
	dErrors "northstar/pkg/domain-errors"
)

// SearchResult is one raw discovery item as delivered by an upstream search
// session. The engine judges metadata only; no page content is present.
type SearchResult struct {
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	SourceEngine string    `json:"source_engine"`
	SearchQuery  string    `json:"search_query"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Validate checks the minimal shape required before any scoring can run.
func (r SearchResult) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return dErrors.New(dErrors.CodeValidation, "search result url cannot be empty")
	}
	return nil
}

// CandidateStatus reflects which side of the crawl threshold a candidate
// landed on.
type CandidateStatus string

const (
	// StatusPendingCrawl: confidence cleared the threshold; queue for crawl.
	StatusPendingCrawl CandidateStatus = "PENDING_CRAWL"
	// StatusLowConfidence: judged and retained for audit, not crawled.
	StatusLowConfidence CandidateStatus = "LOW_CONFIDENCE"
)

// IsValid checks if the status is one of the supported enum values.
func (s CandidateStatus) IsValid() bool {
	switch s {
	case StatusPendingCrawl, StatusLowConfidence:
		return true
	}
	return false
}

// ComponentScores is the per-signal breakdown behind a confidence score.
// Persisted with the judgment so a score is always explainable after the
// fact.
type ComponentScores struct {
	TLDScore     decimal.Decimal `json:"tld_score"`
	KeywordScore decimal.Decimal `json:"keyword_score"`
	GeoScore     decimal.Decimal `json:"geo_score"`
	OrgTypeScore decimal.Decimal `json:"org_type_score"`
}

// Judgment is the immutable record of one scoring decision for one search
// result. Append-only; never updated or deleted. Title and description are
// snapshots of the judged metadata so the decision stays reproducible even
// after the page changes.
type Judgment struct {
	ID              id.JudgmentID   `json:"id"`
	SessionID       id.SessionID    `json:"session_id"`
	DomainName      string          `json:"domain_name"`
	URL             string          `json:"url"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	ConfidenceScore decimal.Decimal `json:"confidence_score"`
	Components      ComponentScores `json:"components"`
	HighConfidence  bool            `json:"high_confidence"`

	// CandidateID links the judgment to the candidate it spawned, when one
	// was created in the same pass.
	CandidateCreated bool            `json:"candidate_created"`
	CandidateID      *id.CandidateID `json:"candidate_id,omitempty"`

	JudgedAt time.Time `json:"judged_at"`
}

// NewJudgment creates a judgment record, enforcing its identity invariants.
// The result supplies the judged metadata snapshot; candidate, when non-nil,
// is the candidate created from this decision.
func NewJudgment(sessionID id.SessionID, domainName string, result SearchResult, score decimal.Decimal, components ComponentScores, highConfidence bool, candidate *Candidate, now time.Time) (*Judgment, error) {
	if sessionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "judgment requires a session id")
	}
	if domainName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "judgment requires a domain name")
	}

	j := &Judgment{
		ID:              id.NewJudgmentID(),
		SessionID:       sessionID,
		DomainName:      domainName,
		URL:             result.URL,
		Title:           result.Title,
		Description:     result.Description,
		ConfidenceScore: score,
		Components:      components,
		HighConfidence:  highConfidence,
		JudgedAt:        now,
	}
	if candidate != nil {
		j.CandidateCreated = true
		candidateID := candidate.ID
		j.CandidateID = &candidateID
	}
	return j, nil
}

// Candidate is a judged domain enriched for the downstream crawl pipeline.
// One candidate per (session, domain) pair.
type Candidate struct {
	ID         id.CandidateID `json:"id"`
	SessionID  id.SessionID   `json:"session_id"`
	DomainName string         `json:"domain_name"`
	URL        string         `json:"url"`
	Title      string         `json:"title"`

	ConfidenceScore decimal.Decimal `json:"confidence_score"`
	Status          CandidateStatus `json:"status"`

	// Name guesses are heuristic, extracted from the title; empty when the
	// title gives nothing to work with.
	OrganizationNameGuess string `json:"organization_name_guess,omitempty"`
	ProgramNameGuess      string `json:"program_name_guess,omitempty"`

	// DomainQualityTierAtCreation snapshots the domain's tier at judging
	// time. The live tier keeps moving; this one is fixed for audit.
	DomainQualityTierAtCreation dqmodels.QualityTier `json:"domain_quality_tier_at_creation"`

	CreatedAt time.Time `json:"created_at"`
}

// NewCandidate creates a crawl candidate from a judged result. Status is
// derived from the high-confidence verdict, never set directly.
func NewCandidate(sessionID id.SessionID, domainName string, result SearchResult, score decimal.Decimal, highConfidence bool, tierAtCreation dqmodels.QualityTier, now time.Time) (*Candidate, error) {
	if sessionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "candidate requires a session id")
	}
	if domainName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "candidate requires a domain name")
	}

	status := StatusLowConfidence
	if highConfidence {
		status = StatusPendingCrawl
	}

	org, program := GuessNamesFromTitle(result.Title)

	return &Candidate{
		ID:                          id.NewCandidateID(),
		SessionID:                   sessionID,
		DomainName:                  domainName,
		URL:                         result.URL,
		Title:                       result.Title,
		ConfidenceScore:             score,
		Status:                      status,
		OrganizationNameGuess:       org,
		ProgramNameGuess:            program,
		DomainQualityTierAtCreation: tierAtCreation,
		CreatedAt:                   now,
	}, nil
}

// GuessNamesFromTitle splits a page title into organization and program name
// guesses. Titles commonly follow "Program | Organization" or
// "Organization - Program" conventions; the longer fragment is taken as the
// organization.
func GuessNamesFromTitle(title string) (org, program string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ""
	}

	var parts []string
	for _, sep := range []string{" | ", " - ", " – ", ": "} {
		if strings.Contains(title, sep) {
			parts = strings.SplitN(title, sep, 2)
			break
		}
	}
	if len(parts) != 2 {
		return title, ""
	}

	first := strings.TrimSpace(parts[0])
	second := strings.TrimSpace(parts[1])
	if len(first) >= len(second) {
		return first, second
	}
	return second, first
}

// ProcessingStatistics summarizes one batch run. Attribution is exclusive:
// every input result lands in exactly one rejection or judgment bucket.
type ProcessingStatistics struct {
	SessionID            id.SessionID  `json:"session_id"`
	TotalResults         int           `json:"total_results"`
	SpamRejected         int           `json:"spam_rejected"`
	InvalidResults       int           `json:"invalid_results"`
	BlacklistedSkipped   int           `json:"blacklisted_skipped"`
	AlreadyJudgedSkipped int           `json:"already_judged_skipped"`
	CandidatesCreated    int           `json:"candidates_created"`
	HighConfidenceCount  int           `json:"high_confidence_count"`
	LowConfidenceCount   int           `json:"low_confidence_count"`
	UniqueDomains        int           `json:"unique_domains"`
	FailedDomains        int           `json:"failed_domains"`
	Duration             time.Duration `json:"duration"`
}
