// Package ports defines the storage and caching interfaces the domain
// quality tracker depends on.
package ports

import (
	"context"

	"northstar/internal/domainquality/models"
)

// DomainStore persists per-domain reputation records.
type DomainStore interface {
	// GetByName fetches a record by normalized domain name.
	// Returns (nil, nil) when no record exists.
	GetByName(ctx context.Context, domainName string) (*models.DomainRecord, error)

	// Create inserts a new record. Returns CodeConflict if a record with
	// the same domain name already exists.
	Create(ctx context.Context, record *models.DomainRecord) error

	// Update replaces a record conditionally on its version: the stored
	// version must equal record.Version-1. Returns CodeConflict on a
	// version mismatch and CodeNotFound if the record is gone.
	Update(ctx context.Context, record *models.DomainRecord) error

	// ListByTier returns records in a quality tier, ordered by best
	// confidence score descending.
	ListByTier(ctx context.Context, tier models.QualityTier, limit int) ([]*models.DomainRecord, error)

	// ListByStatus returns records in a processing status.
	ListByStatus(ctx context.Context, status models.DomainStatus, limit int) ([]*models.DomainRecord, error)

	// Search returns records whose domain name contains the query
	// substring, case-insensitive.
	Search(ctx context.Context, query string, limit int) ([]*models.DomainRecord, error)
}

// BlacklistCache is a fast-path read cache for blacklist membership. The
// store remains the source of truth; cache misses and failures fall through
// to it.
type BlacklistCache interface {
	// IsBlacklisted returns (verdict, found). found=false means the cache
	// has no opinion and the caller must consult the store.
	IsBlacklisted(ctx context.Context, domainName string) (bool, bool)

	// Set records a blacklist verdict for a domain.
	Set(ctx context.Context, domainName string, blacklisted bool)

	// Invalidate drops a domain's cached verdict.
	Invalidate(ctx context.Context, domainName string)
}
