package judgment

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"northstar/internal/judging/models"
	id "northstar/pkg/domain"
	dErrors "northstar/pkg/domain-errors"
	"northstar/pkg/platform/tx"
)

// PostgresStore is the production append-only judgment log.
//
// Schema:
//
//	CREATE TABLE judgments (
//	    id                UUID PRIMARY KEY,
//	    session_id        UUID NOT NULL,
//	    domain_name       TEXT NOT NULL,
//	    url               TEXT NOT NULL,
//	    title             TEXT NOT NULL,
//	    description       TEXT NOT NULL,
//	    confidence_score  NUMERIC(3,2) NOT NULL,
//	    tld_score         NUMERIC(3,2) NOT NULL,
//	    keyword_score     NUMERIC(3,2) NOT NULL,
//	    geo_score         NUMERIC(3,2) NOT NULL,
//	    org_type_score    NUMERIC(3,2) NOT NULL,
//	    high_confidence   BOOLEAN NOT NULL,
//	    candidate_created BOOLEAN NOT NULL,
//	    candidate_id      UUID,
//	    judged_at         TIMESTAMPTZ NOT NULL,
//	    UNIQUE (session_id, domain_name)
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed judgment store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

// Append writes one judgment record. The (session, domain) unique constraint
// backstops the pipeline's idempotence check; a duplicate maps to conflict.
func (s *PostgresStore) Append(ctx context.Context, judgment *models.Judgment) error {
	query := `INSERT INTO judgments (
			id, session_id, domain_name, url, title, description,
			confidence_score, tld_score, keyword_score, geo_score, org_type_score,
			high_confidence, candidate_created, candidate_id, judged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (session_id, domain_name) DO NOTHING`

	var candidateID sql.NullString
	if judgment.CandidateID != nil {
		candidateID = sql.NullString{String: judgment.CandidateID.String(), Valid: true}
	}

	res, err := s.q(ctx).ExecContext(ctx, query,
		judgment.ID.String(), judgment.SessionID.String(), judgment.DomainName, judgment.URL,
		judgment.Title, judgment.Description,
		judgment.ConfidenceScore.String(),
		judgment.Components.TLDScore.String(), judgment.Components.KeywordScore.String(),
		judgment.Components.GeoScore.String(), judgment.Components.OrgTypeScore.String(),
		judgment.HighConfidence, judgment.CandidateCreated, candidateID, judgment.JudgedAt,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append judgment")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append judgment")
	}
	if rows == 0 {
		return dErrors.Newf(dErrors.CodeConflict,
			"judgment for session %s domain %q already recorded", judgment.SessionID, judgment.DomainName)
	}
	return nil
}

// ExistsForSessionDomain reports whether the pair was already judged.
func (s *PostgresStore) ExistsForSessionDomain(ctx context.Context, sessionID id.SessionID, domainName string) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM judgments WHERE session_id = $1 AND domain_name = $2)`,
		sessionID.String(), domainName).Scan(&exists)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check judgment existence")
	}
	return exists, nil
}

// ListBySession returns a session's judgments in judging order.
func (s *PostgresStore) ListBySession(ctx context.Context, sessionID id.SessionID) ([]*models.Judgment, error) {
	query := `SELECT id, session_id, domain_name, url, title, description,
			confidence_score, tld_score, keyword_score, geo_score, org_type_score,
			high_confidence, candidate_created, candidate_id, judged_at
		FROM judgments
		WHERE session_id = $1
		ORDER BY judged_at ASC`

	rows, err := s.q(ctx).QueryContext(ctx, query, sessionID.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list judgments")
	}
	defer rows.Close()

	var out []*models.Judgment
	for rows.Next() {
		j, err := scanJudgment(rows)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to scan judgment")
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list judgments")
	}
	return out, nil
}

func scanJudgment(rows *sql.Rows) (*models.Judgment, error) {
	var (
		j                                                models.Judgment
		rawID, rawSession                                string
		rawScore, rawTLD, rawKeyword, rawGeo, rawOrgType string
		rawCandidateID                                   sql.NullString
	)

	err := rows.Scan(&rawID, &rawSession, &j.DomainName, &j.URL, &j.Title, &j.Description,
		&rawScore, &rawTLD, &rawKeyword, &rawGeo, &rawOrgType,
		&j.HighConfidence, &j.CandidateCreated, &rawCandidateID, &j.JudgedAt)
	if err != nil {
		return nil, err
	}

	if rawCandidateID.Valid {
		candidateID, err := id.ParseCandidateID(rawCandidateID.String)
		if err != nil {
			return nil, err
		}
		j.CandidateID = &candidateID
	}

	judgmentID, err := id.ParseJudgmentID(rawID)
	if err != nil {
		return nil, err
	}
	j.ID = judgmentID

	sessionID, err := id.ParseSessionID(rawSession)
	if err != nil {
		return nil, err
	}
	j.SessionID = sessionID

	for _, field := range []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{rawScore, &j.ConfidenceScore},
		{rawTLD, &j.Components.TLDScore},
		{rawKeyword, &j.Components.KeywordScore},
		{rawGeo, &j.Components.GeoScore},
		{rawOrgType, &j.Components.OrgTypeScore},
	} {
		d, err := decimal.NewFromString(field.raw)
		if err != nil {
			return nil, err
		}
		*field.dest = d
	}

	return &j, nil
}
