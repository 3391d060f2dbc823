package domain

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"northstar/internal/domainquality/models"
	id "northstar/pkg/domain"
	dErrors "northstar/pkg/domain-errors"
	"northstar/pkg/platform/tx"
)

// PostgresStore is the production DomainStore backed by Postgres.
//
// Schema:
//
//	CREATE TABLE domains (
//	    id                    UUID PRIMARY KEY,
//	    domain_name           TEXT NOT NULL UNIQUE,
//	    status                TEXT NOT NULL,
//	    quality_tier          TEXT NOT NULL,
//	    best_confidence_score NUMERIC(3,2) NOT NULL,
//	    high_confidence_count INT NOT NULL,
//	    low_confidence_count  INT NOT NULL,
//	    total_results_count   INT NOT NULL,
//	    blacklist_reason      TEXT,
//	    blacklisted_by        TEXT,
//	    blacklisted_at        TIMESTAMPTZ,
//	    no_funds_year         INT,
//	    failure_reason        TEXT,
//	    failure_count         INT NOT NULL DEFAULT 0,
//	    notes                 TEXT,
//	    first_seen_at         TIMESTAMPTZ NOT NULL,
//	    last_seen_at          TIMESTAMPTZ NOT NULL,
//	    version               BIGINT NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed domain store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the transaction bound to the context, or the pool.
func (s *PostgresStore) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

const domainColumns = `id, domain_name, status, quality_tier, best_confidence_score,
	high_confidence_count, low_confidence_count, total_results_count,
	blacklist_reason, blacklisted_by, blacklisted_at, no_funds_year,
	failure_reason, failure_count, notes, first_seen_at, last_seen_at, version`

// GetByName fetches a record by domain name. Returns (nil, nil) on a miss.
func (s *PostgresStore) GetByName(ctx context.Context, domainName string) (*models.DomainRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM domains WHERE domain_name = $1`, domainColumns)

	rec, err := scanDomain(s.q(ctx).QueryRowContext(ctx, query, domainName))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get domain")
	}
	return rec, nil
}

// Create inserts a new record, failing on a duplicate domain name.
func (s *PostgresStore) Create(ctx context.Context, record *models.DomainRecord) error {
	query := fmt.Sprintf(`INSERT INTO domains (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (domain_name) DO NOTHING`, domainColumns)

	res, err := s.q(ctx).ExecContext(ctx, query,
		record.ID.String(), record.DomainName, record.Status, record.QualityTier,
		record.BestConfidenceScore.String(),
		record.HighConfidenceCount, record.LowConfidenceCount, record.TotalResultsCount,
		nullString(record.BlacklistReason), nullString(record.BlacklistedBy), record.BlacklistedAt,
		record.NoFundsYear, nullString(record.FailureReason), record.FailureCount,
		nullString(record.Notes), record.FirstSeenAt, record.LastSeenAt, record.Version,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create domain")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create domain")
	}
	if rows == 0 {
		return dErrors.Newf(dErrors.CodeConflict, "domain %q already exists", record.DomainName)
	}
	return nil
}

// Update replaces a record conditionally on its previous version.
func (s *PostgresStore) Update(ctx context.Context, record *models.DomainRecord) error {
	query := `UPDATE domains SET
			status = $1, quality_tier = $2, best_confidence_score = $3,
			high_confidence_count = $4, low_confidence_count = $5, total_results_count = $6,
			blacklist_reason = $7, blacklisted_by = $8, blacklisted_at = $9,
			no_funds_year = $10, failure_reason = $11, failure_count = $12,
			notes = $13, last_seen_at = $14, version = $15
		WHERE domain_name = $16 AND version = $17`

	res, err := s.q(ctx).ExecContext(ctx, query,
		record.Status, record.QualityTier, record.BestConfidenceScore.String(),
		record.HighConfidenceCount, record.LowConfidenceCount, record.TotalResultsCount,
		nullString(record.BlacklistReason), nullString(record.BlacklistedBy), record.BlacklistedAt,
		record.NoFundsYear, nullString(record.FailureReason), record.FailureCount,
		nullString(record.Notes), record.LastSeenAt, record.Version,
		record.DomainName, record.Version-1,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update domain")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update domain")
	}
	if rows == 0 {
		// Distinguish a vanished row from a lost race.
		var exists bool
		checkErr := s.q(ctx).QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM domains WHERE domain_name = $1)`, record.DomainName).Scan(&exists)
		if checkErr == nil && !exists {
			return dErrors.Newf(dErrors.CodeNotFound, "domain %q not found", record.DomainName)
		}
		return dErrors.Newf(dErrors.CodeConflict, "domain %q version mismatch", record.DomainName)
	}
	return nil
}

// ListByTier returns records in a tier, best confidence first.
func (s *PostgresStore) ListByTier(ctx context.Context, tier models.QualityTier, limit int) ([]*models.DomainRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM domains
		WHERE quality_tier = $1
		ORDER BY best_confidence_score DESC, domain_name ASC
		LIMIT $2`, domainColumns)
	return s.list(ctx, query, tier, limitOrDefault(limit))
}

// ListByStatus returns records in a status, most recently seen first.
func (s *PostgresStore) ListByStatus(ctx context.Context, status models.DomainStatus, limit int) ([]*models.DomainRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM domains
		WHERE status = $1
		ORDER BY last_seen_at DESC
		LIMIT $2`, domainColumns)
	return s.list(ctx, query, status, limitOrDefault(limit))
}

// Search returns records whose name contains the query, case-insensitive.
func (s *PostgresStore) Search(ctx context.Context, search string, limit int) ([]*models.DomainRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM domains
		WHERE domain_name LIKE '%%' || lower($1) || '%%'
		ORDER BY domain_name ASC
		LIMIT $2`, domainColumns)
	return s.list(ctx, query, search, limitOrDefault(limit))
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.DomainRecord, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list domains")
	}
	defer rows.Close()

	var out []*models.DomainRecord
	for rows.Next() {
		rec, err := scanDomain(rows)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to scan domain")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list domains")
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDomain(row rowScanner) (*models.DomainRecord, error) {
	var (
		rec             models.DomainRecord
		rawID           string
		rawScore        string
		blacklistReason sql.NullString
		blacklistedBy   sql.NullString
		blacklistedAt   sql.NullTime
		noFundsYear     sql.NullInt64
		failureReason   sql.NullString
		notes           sql.NullString
	)

	err := row.Scan(
		&rawID, &rec.DomainName, &rec.Status, &rec.QualityTier, &rawScore,
		&rec.HighConfidenceCount, &rec.LowConfidenceCount, &rec.TotalResultsCount,
		&blacklistReason, &blacklistedBy, &blacklistedAt, &noFundsYear,
		&failureReason, &rec.FailureCount, &notes,
		&rec.FirstSeenAt, &rec.LastSeenAt, &rec.Version,
	)
	if err != nil {
		return nil, err
	}

	domainID, err := id.ParseDomainID(rawID)
	if err != nil {
		return nil, err
	}
	rec.ID = domainID

	score, err := decimal.NewFromString(rawScore)
	if err != nil {
		return nil, err
	}
	rec.BestConfidenceScore = score

	rec.BlacklistReason = blacklistReason.String
	rec.BlacklistedBy = blacklistedBy.String
	if blacklistedAt.Valid {
		t := blacklistedAt.Time
		rec.BlacklistedAt = &t
	}
	if noFundsYear.Valid {
		y := int(noFundsYear.Int64)
		rec.NoFundsYear = &y
	}
	rec.FailureReason = failureReason.String
	rec.Notes = notes.String

	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 100
	}
	return limit
}
