package handler

import (
	"time"

	dqmodels "northstar/internal/domainquality/models"
	"northstar/internal/judging/models"
)

// DomainResponse is the HTTP representation of one domain record.
type DomainResponse struct {
	ID                  string     `json:"id"`
	DomainName          string     `json:"domain_name"`
	Status              string     `json:"status"`
	QualityTier         string     `json:"quality_tier"`
	BestConfidenceScore string     `json:"best_confidence_score"`
	HighConfidenceCount int        `json:"high_confidence_count"`
	LowConfidenceCount  int        `json:"low_confidence_count"`
	TotalResultsCount   int        `json:"total_results_count"`
	BlacklistReason     string     `json:"blacklist_reason,omitempty"`
	BlacklistedBy       string     `json:"blacklisted_by,omitempty"`
	BlacklistedAt       *time.Time `json:"blacklisted_at,omitempty"`
	NoFundsYear         *int       `json:"no_funds_year,omitempty"`
	FailureReason       string     `json:"failure_reason,omitempty"`
	FailureCount        int        `json:"failure_count,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	FirstSeenAt         time.Time  `json:"first_seen_at"`
	LastSeenAt          time.Time  `json:"last_seen_at"`
}

// FromDomain converts a domain record to its HTTP representation.
func FromDomain(rec *dqmodels.DomainRecord) *DomainResponse {
	return &DomainResponse{
		ID:                  rec.ID.String(),
		DomainName:          rec.DomainName,
		Status:              string(rec.Status),
		QualityTier:         string(rec.QualityTier),
		BestConfidenceScore: rec.BestConfidenceScore.String(),
		HighConfidenceCount: rec.HighConfidenceCount,
		LowConfidenceCount:  rec.LowConfidenceCount,
		TotalResultsCount:   rec.TotalResultsCount,
		BlacklistReason:     rec.BlacklistReason,
		BlacklistedBy:       rec.BlacklistedBy,
		BlacklistedAt:       rec.BlacklistedAt,
		NoFundsYear:         rec.NoFundsYear,
		FailureReason:       rec.FailureReason,
		FailureCount:        rec.FailureCount,
		Notes:               rec.Notes,
		FirstSeenAt:         rec.FirstSeenAt,
		LastSeenAt:          rec.LastSeenAt,
	}
}

// DomainListResponse wraps a list of domains.
type DomainListResponse struct {
	Domains []*DomainResponse `json:"domains"`
}

// FromDomains converts a slice of domain records.
func FromDomains(recs []*dqmodels.DomainRecord) *DomainListResponse {
	out := &DomainListResponse{Domains: make([]*DomainResponse, 0, len(recs))}
	for _, rec := range recs {
		out.Domains = append(out.Domains, FromDomain(rec))
	}
	return out
}

// CandidateResponse is the HTTP representation of one crawl candidate.
type CandidateResponse struct {
	ID                    string    `json:"id"`
	SessionID             string    `json:"session_id"`
	DomainName            string    `json:"domain_name"`
	URL                   string    `json:"url"`
	Title                 string    `json:"title"`
	ConfidenceScore       string    `json:"confidence_score"`
	Status                string    `json:"status"`
	OrganizationNameGuess string    `json:"organization_name_guess,omitempty"`
	ProgramNameGuess      string    `json:"program_name_guess,omitempty"`
	QualityTierAtCreation string    `json:"quality_tier_at_creation"`
	CreatedAt             time.Time `json:"created_at"`
}

// FromCandidate converts a candidate to its HTTP representation.
func FromCandidate(c *models.Candidate) *CandidateResponse {
	return &CandidateResponse{
		ID:                    c.ID.String(),
		SessionID:             c.SessionID.String(),
		DomainName:            c.DomainName,
		URL:                   c.URL,
		Title:                 c.Title,
		ConfidenceScore:       c.ConfidenceScore.String(),
		Status:                string(c.Status),
		OrganizationNameGuess: c.OrganizationNameGuess,
		ProgramNameGuess:      c.ProgramNameGuess,
		QualityTierAtCreation: string(c.DomainQualityTierAtCreation),
		CreatedAt:             c.CreatedAt,
	}
}

// CandidateListResponse wraps a list of candidates.
type CandidateListResponse struct {
	Candidates []*CandidateResponse `json:"candidates"`
}

// FromCandidates converts a slice of candidates.
func FromCandidates(cs []*models.Candidate) *CandidateListResponse {
	out := &CandidateListResponse{Candidates: make([]*CandidateResponse, 0, len(cs))}
	for _, c := range cs {
		out.Candidates = append(out.Candidates, FromCandidate(c))
	}
	return out
}

// JudgmentResponse is the HTTP representation of one judgment.
type JudgmentResponse struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id"`
	DomainName       string    `json:"domain_name"`
	URL              string    `json:"url"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	ConfidenceScore  string    `json:"confidence_score"`
	TLDScore         string    `json:"tld_score"`
	KeywordScore     string    `json:"keyword_score"`
	GeoScore         string    `json:"geo_score"`
	OrgTypeScore     string    `json:"org_type_score"`
	HighConfidence   bool      `json:"high_confidence"`
	CandidateCreated bool      `json:"candidate_created"`
	CandidateID      string    `json:"candidate_id,omitempty"`
	JudgedAt         time.Time `json:"judged_at"`
}

// FromJudgment converts a judgment to its HTTP representation.
func FromJudgment(j *models.Judgment) *JudgmentResponse {
	resp := &JudgmentResponse{
		ID:               j.ID.String(),
		SessionID:        j.SessionID.String(),
		DomainName:       j.DomainName,
		URL:              j.URL,
		Title:            j.Title,
		Description:      j.Description,
		ConfidenceScore:  j.ConfidenceScore.String(),
		TLDScore:         j.Components.TLDScore.String(),
		KeywordScore:     j.Components.KeywordScore.String(),
		GeoScore:         j.Components.GeoScore.String(),
		OrgTypeScore:     j.Components.OrgTypeScore.String(),
		HighConfidence:   j.HighConfidence,
		CandidateCreated: j.CandidateCreated,
		JudgedAt:         j.JudgedAt,
	}
	if j.CandidateID != nil {
		resp.CandidateID = j.CandidateID.String()
	}
	return resp
}

// JudgmentListResponse wraps a list of judgments.
type JudgmentListResponse struct {
	Judgments []*JudgmentResponse `json:"judgments"`
}

// FromJudgments converts a slice of judgments.
func FromJudgments(js []*models.Judgment) *JudgmentListResponse {
	out := &JudgmentListResponse{Judgments: make([]*JudgmentResponse, 0, len(js))}
	for _, j := range js {
		out.Judgments = append(out.Judgments, FromJudgment(j))
	}
	return out
}
