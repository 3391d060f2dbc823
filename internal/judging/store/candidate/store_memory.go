package candidate

import (
	"context"
	"sort"
	"sync"

	"northstar/internal/judging/models"
	id "northstar/pkg/domain"
)

// MemoryStore is an in-memory candidate store for tests and local
// development. Safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	candidates []*models.Candidate
}

// NewMemoryStore creates an empty in-memory candidate store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Create stores one candidate.
func (s *MemoryStore) Create(_ context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *candidate
	s.candidates = append(s.candidates, &cp)
	return nil
}

// ListBySession returns a session's candidates, highest confidence first.
func (s *MemoryStore) ListBySession(_ context.Context, sessionID id.SessionID) ([]*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Candidate
	for _, c := range s.candidates {
		if c.SessionID == sessionID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sortByConfidence(out)
	return out, nil
}

// ListByStatus returns candidates in a status, highest confidence first.
func (s *MemoryStore) ListByStatus(_ context.Context, status models.CandidateStatus, limit int) ([]*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Candidate
	for _, c := range s.candidates {
		if c.Status == status {
			cp := *c
			out = append(out, &cp)
		}
	}
	sortByConfidence(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortByConfidence(candidates []*models.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ConfidenceScore.GreaterThan(candidates[j].ConfidenceScore)
	})
}
