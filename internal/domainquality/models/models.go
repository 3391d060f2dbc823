package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "northstar/pkg/domain"
	dErrors "northstar/pkg/domain-errors"
)

// DomainStatus tracks the processing state of a discovered domain.
type DomainStatus string

const (
	// StatusDiscovered: seen at least once, no high-quality evidence yet.
	StatusDiscovered DomainStatus = "DISCOVERED"
	// StatusProcessedHighQuality: at least one high-confidence judgment.
	StatusProcessedHighQuality DomainStatus = "PROCESSED_HIGH_QUALITY"
	// StatusProcessingFailed: last processing attempt failed; retryable.
	StatusProcessingFailed DomainStatus = "PROCESSING_FAILED"
	// StatusBlacklisted: permanent, explicit admin action only.
	StatusBlacklisted DomainStatus = "BLACKLISTED"
	// StatusNoFundsThisYear: legitimate funder, nothing to give this year.
	// Advisory and reversible; re-evaluated in later years.
	StatusNoFundsThisYear DomainStatus = "NO_FUNDS_THIS_YEAR"
)

// IsValid checks if the status is one of the supported enum values.
func (s DomainStatus) IsValid() bool {
	switch s {
	case StatusDiscovered, StatusProcessedHighQuality, StatusProcessingFailed,
		StatusBlacklisted, StatusNoFundsThisYear:
		return true
	}
	return false
}

// QualityTier is the domain-level classification derived from accumulated
// judgment history (distinct from the one-time TLD tier).
type QualityTier string

const (
	TierHigh    QualityTier = "HIGH"
	TierMedium  QualityTier = "MEDIUM"
	TierLow     QualityTier = "LOW"
	TierUnknown QualityTier = "UNKNOWN"
)

// IsValid checks if the tier is one of the supported enum values.
func (t QualityTier) IsValid() bool {
	switch t {
	case TierHigh, TierMedium, TierLow, TierUnknown:
		return true
	}
	return false
}

// ParseQualityTier creates a QualityTier from a string, validating it.
func ParseQualityTier(s string) (QualityTier, error) {
	t := QualityTier(strings.ToUpper(s))
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid quality tier %q", s)
	}
	return t, nil
}

// DomainRecord is the per-domain reputation aggregate. One record per unique
// normalized domain name; created on first sighting, never deleted, only
// status-flagged.
type DomainRecord struct {
	ID         id.DomainID  `json:"id"`
	DomainName string       `json:"domain_name"`
	Status     DomainStatus `json:"status"`
	// QualityTier is derived; recomputed after every judgment.
	QualityTier QualityTier `json:"quality_tier"`

	// BestConfidenceScore is the highest confidence ever observed.
	// Non-decreasing by invariant.
	BestConfidenceScore decimal.Decimal `json:"best_confidence_score"`
	// Counters are monotonically increasing. Invariant:
	// HighConfidenceCount + LowConfidenceCount == TotalResultsCount.
	HighConfidenceCount int `json:"high_confidence_count"`
	LowConfidenceCount  int `json:"low_confidence_count"`
	TotalResultsCount   int `json:"total_results_count"`

	// Blacklist fields are set once and never overwritten.
	BlacklistReason string     `json:"blacklist_reason,omitempty"`
	BlacklistedBy   string     `json:"blacklisted_by,omitempty"`
	BlacklistedAt   *time.Time `json:"blacklisted_at,omitempty"`

	// NoFundsYear is the year the advisory no-funds flag was set.
	NoFundsYear *int `json:"no_funds_year,omitempty"`

	// FailureReason/FailureCount track technical processing failures.
	FailureReason string `json:"failure_reason,omitempty"`
	FailureCount  int    `json:"failure_count"`

	// Notes carries free-form admin annotations.
	Notes string `json:"notes,omitempty"`

	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`

	// Version supports optimistic conditional updates at the store.
	Version int64 `json:"version"`
}

// NewDomainRecord creates a record for a domain's first sighting.
func NewDomainRecord(domainName string, now time.Time) (*DomainRecord, error) {
	if domainName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "domain name cannot be empty")
	}
	if domainName != strings.ToLower(domainName) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "domain name must be lowercase")
	}

	return &DomainRecord{
		ID:                  id.NewDomainID(),
		DomainName:          domainName,
		Status:              StatusDiscovered,
		QualityTier:         TierUnknown,
		BestConfidenceScore: decimal.New(0, -2),
		FirstSeenAt:         now,
		LastSeenAt:          now,
		Version:             1,
	}, nil
}

// IsBlacklisted reports whether the domain is permanently excluded.
func (r *DomainRecord) IsBlacklisted() bool {
	return r.Status == StatusBlacklisted
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate shared state behind the tracker's back.
func (r *DomainRecord) Clone() *DomainRecord {
	cp := *r
	if r.BlacklistedAt != nil {
		t := *r.BlacklistedAt
		cp.BlacklistedAt = &t
	}
	if r.NoFundsYear != nil {
		y := *r.NoFundsYear
		cp.NoFundsYear = &y
	}
	return &cp
}

// JudgmentOutcome is the per-result evidence folded into a domain aggregate.
type JudgmentOutcome struct {
	ConfidenceScore decimal.Decimal
	HighConfidence  bool
}

// Tier thresholds. Evaluated as a priority list in RecomputeTier.
var (
	highRatioFloor  = decimal.RequireFromString("0.70")
	mediumRatioFloor = decimal.RequireFromString("0.30")
	highBestFloor   = decimal.RequireFromString("0.70")
	mediumBestFloor = decimal.RequireFromString("0.50")
)

// minResultsForTier is the evidence floor below which a domain stays UNKNOWN.
const minResultsForTier = 5

// RecomputeTier derives the quality tier from the judgment counters. Pure
// function of (total, high, best): same counters, same tier.
//
// Priority order matters: UNKNOWN first (insufficient evidence), then HIGH,
// then MEDIUM, else LOW.
func RecomputeTier(totalResults, highConfidence int, best decimal.Decimal) QualityTier {
	if totalResults < minResultsForTier {
		return TierUnknown
	}

	ratio := decimal.NewFromInt(int64(highConfidence)).
		Div(decimal.NewFromInt(int64(totalResults)))

	if ratio.GreaterThan(highRatioFloor) && best.GreaterThanOrEqual(highBestFloor) {
		return TierHigh
	}
	if (ratio.GreaterThanOrEqual(mediumRatioFloor) && ratio.LessThanOrEqual(highRatioFloor)) ||
		(best.GreaterThanOrEqual(mediumBestFloor) && best.LessThan(highBestFloor)) {
		return TierMedium
	}
	return TierLow
}
