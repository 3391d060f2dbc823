package candidate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"northstar/internal/judging/models"
	id "northstar/pkg/domain"
	dErrors "northstar/pkg/domain-errors"
	"northstar/pkg/platform/tx"
)

// PostgresStore is the production candidate store.
//
// Schema:
//
//	CREATE TABLE candidates (
//	    id                      UUID PRIMARY KEY,
//	    session_id              UUID NOT NULL,
//	    domain_name             TEXT NOT NULL,
//	    url                     TEXT NOT NULL,
//	    title                   TEXT NOT NULL,
//	    confidence_score        NUMERIC(3,2) NOT NULL,
//	    status                  TEXT NOT NULL,
//	    organization_name_guess TEXT,
//	    program_name_guess      TEXT,
//	    quality_tier_at_creation TEXT NOT NULL,
//	    created_at              TIMESTAMPTZ NOT NULL,
//	    UNIQUE (session_id, domain_name)
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed candidate store.
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

const candidateColumns = `id, session_id, domain_name, url, title, confidence_score,
	status, organization_name_guess, program_name_guess, quality_tier_at_creation, created_at`

// Create stores one candidate.
func (s *PostgresStore) Create(ctx context.Context, candidate *models.Candidate) error {
	query := fmt.Sprintf(`INSERT INTO candidates (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, candidateColumns)

	_, err := s.q(ctx).ExecContext(ctx, query,
		candidate.ID.String(), candidate.SessionID.String(), candidate.DomainName,
		candidate.URL, candidate.Title, candidate.ConfidenceScore.String(), candidate.Status,
		nullString(candidate.OrganizationNameGuess), nullString(candidate.ProgramNameGuess),
		candidate.DomainQualityTierAtCreation, candidate.CreatedAt,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create candidate")
	}
	return nil
}

// ListBySession returns a session's candidates, highest confidence first.
func (s *PostgresStore) ListBySession(ctx context.Context, sessionID id.SessionID) ([]*models.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates
		WHERE session_id = $1
		ORDER BY confidence_score DESC, domain_name ASC`, candidateColumns)
	return s.list(ctx, query, sessionID.String())
}

// ListByStatus returns candidates in a status, highest confidence first.
func (s *PostgresStore) ListByStatus(ctx context.Context, status models.CandidateStatus, limit int) ([]*models.Candidate, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT %s FROM candidates
		WHERE status = $1
		ORDER BY confidence_score DESC, domain_name ASC
		LIMIT $2`, candidateColumns)
	return s.list(ctx, query, status, limit)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Candidate, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidates")
	}
	defer rows.Close()

	var out []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to scan candidate")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidates")
	}
	return out, nil
}

func scanCandidate(rows *sql.Rows) (*models.Candidate, error) {
	var (
		c                 models.Candidate
		rawID, rawSession string
		rawScore          string
		orgGuess          sql.NullString
		programGuess      sql.NullString
	)

	err := rows.Scan(&rawID, &rawSession, &c.DomainName, &c.URL, &c.Title, &rawScore,
		&c.Status, &orgGuess, &programGuess, &c.DomainQualityTierAtCreation, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	candidateID, err := id.ParseCandidateID(rawID)
	if err != nil {
		return nil, err
	}
	c.ID = candidateID

	sessionID, err := id.ParseSessionID(rawSession)
	if err != nil {
		return nil, err
	}
	c.SessionID = sessionID

	score, err := decimal.NewFromString(rawScore)
	if err != nil {
		return nil, err
	}
	c.ConfidenceScore = score

	c.OrganizationNameGuess = orgGuess.String
	c.ProgramNameGuess = programGuess.String

	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
