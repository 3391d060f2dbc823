package domain

import (
	"context"
	"sort"
	"strings"
	"sync"

	"northstar/internal/domainquality/models"
	dErrors "northstar/pkg/domain-errors"
)

// MemoryStore is an in-memory DomainStore for tests and local development.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.DomainRecord // keyed by domain name
}

// NewMemoryStore creates an empty in-memory domain store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*models.DomainRecord),
	}
}

// GetByName fetches a record by domain name. Returns (nil, nil) on a miss.
func (s *MemoryStore) GetByName(_ context.Context, domainName string) (*models.DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[domainName]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// Create inserts a new record, failing on a duplicate domain name.
func (s *MemoryStore) Create(_ context.Context, record *models.DomainRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.DomainName]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "domain %q already exists", record.DomainName)
	}
	s.records[record.DomainName] = record.Clone()
	return nil
}

// Update replaces a record if the stored version is exactly one behind the
// incoming one.
func (s *MemoryStore) Update(_ context.Context, record *models.DomainRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[record.DomainName]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "domain %q not found", record.DomainName)
	}
	if current.Version != record.Version-1 {
		return dErrors.Newf(dErrors.CodeConflict,
			"domain %q version mismatch: have %d, want %d", record.DomainName, current.Version, record.Version-1)
	}
	s.records[record.DomainName] = record.Clone()
	return nil
}

// ListByTier returns records in a tier, best confidence first.
func (s *MemoryStore) ListByTier(_ context.Context, tier models.QualityTier, limit int) ([]*models.DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.DomainRecord
	for _, rec := range s.records {
		if rec.QualityTier == tier {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BestConfidenceScore.GreaterThan(out[j].BestConfidenceScore)
	})
	return truncate(out, limit), nil
}

// ListByStatus returns records in a status, most recently seen first.
func (s *MemoryStore) ListByStatus(_ context.Context, status models.DomainStatus, limit int) ([]*models.DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.DomainRecord
	for _, rec := range s.records {
		if rec.Status == status {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastSeenAt.After(out[j].LastSeenAt)
	})
	return truncate(out, limit), nil
}

// Search returns records whose name contains the query, case-insensitive.
func (s *MemoryStore) Search(_ context.Context, query string, limit int) ([]*models.DomainRecord, error) {
	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.DomainRecord
	for _, rec := range s.records {
		if strings.Contains(rec.DomainName, q) {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DomainName < out[j].DomainName
	})
	return truncate(out, limit), nil
}

func truncate(recs []*models.DomainRecord, limit int) []*models.DomainRecord {
	if limit > 0 && len(recs) > limit {
		return recs[:limit]
	}
	return recs
}
