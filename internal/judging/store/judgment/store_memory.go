package judgment

import (
	"context"
	"sort"
	"sync"

	"northstar/internal/judging/models"
	id "northstar/pkg/domain"
	dErrors "northstar/pkg/domain-errors"
)

// MemoryStore is an in-memory append-only judgment log for tests and local
// development. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	judgments []*models.Judgment
	seen      map[string]struct{} // session|domain pairs
}

// NewMemoryStore creates an empty in-memory judgment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seen: make(map[string]struct{}),
	}
}

func pairKey(sessionID id.SessionID, domainName string) string {
	return sessionID.String() + "|" + domainName
}

// Append writes one judgment record. Duplicate (session, domain) pairs
// conflict, same as the unique constraint on the Postgres store.
func (s *MemoryStore) Append(_ context.Context, judgment *models.Judgment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(judgment.SessionID, judgment.DomainName)
	if _, ok := s.seen[key]; ok {
		return dErrors.Newf(dErrors.CodeConflict,
			"judgment for session %s domain %q already recorded", judgment.SessionID, judgment.DomainName)
	}

	cp := *judgment
	s.judgments = append(s.judgments, &cp)
	s.seen[key] = struct{}{}
	return nil
}

// ExistsForSessionDomain reports whether the pair was already judged.
func (s *MemoryStore) ExistsForSessionDomain(_ context.Context, sessionID id.SessionID, domainName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.seen[pairKey(sessionID, domainName)]
	return ok, nil
}

// ListBySession returns a session's judgments in judging order.
func (s *MemoryStore) ListBySession(_ context.Context, sessionID id.SessionID) ([]*models.Judgment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Judgment
	for _, j := range s.judgments {
		if j.SessionID == sessionID {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].JudgedAt.Before(out[j].JudgedAt)
	})
	return out, nil
}
