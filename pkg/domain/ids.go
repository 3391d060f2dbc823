// Package domain defines typed identifiers shared across the engine.
//
// Each entity gets its own UUID-backed type so the compiler rejects
// cross-entity assignment (a SessionID can never be passed where a
// CandidateID is expected).
package domain

import (
	"github.com/google/uuid"

	dErrors "northstar/pkg/domain-errors"
)

// SessionID identifies one discovery session (the owner of a result batch).
type SessionID uuid.UUID

// DomainID identifies a domain aggregate record.
type DomainID uuid.UUID

// CandidateID identifies a funding source candidate.
type CandidateID uuid.UUID

// JudgmentID identifies one recorded judgment.
type JudgmentID uuid.UUID

// AdminID identifies the admin actor behind blacklist operations.
type AdminID uuid.UUID

func (id SessionID) String() string   { return uuid.UUID(id).String() }
func (id DomainID) String() string    { return uuid.UUID(id).String() }
func (id CandidateID) String() string { return uuid.UUID(id).String() }
func (id JudgmentID) String() string  { return uuid.UUID(id).String() }
func (id AdminID) String() string     { return uuid.UUID(id).String() }

func (id SessionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id DomainID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CandidateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id JudgmentID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id AdminID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// NewSessionID generates a random session identifier.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewDomainID generates a random domain identifier.
func NewDomainID() DomainID { return DomainID(uuid.New()) }

// NewCandidateID generates a random candidate identifier.
func NewCandidateID() CandidateID { return CandidateID(uuid.New()) }

// NewJudgmentID generates a random judgment identifier.
func NewJudgmentID() JudgmentID { return JudgmentID(uuid.New()) }

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s format", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", kind)
	}
	return u, nil
}

// ParseSessionID parses and validates a session ID from its string form.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session_id")
	return SessionID(u), err
}

// ParseDomainID parses and validates a domain ID from its string form.
func ParseDomainID(s string) (DomainID, error) {
	u, err := parseUUID(s, "domain_id")
	return DomainID(u), err
}

// ParseCandidateID parses and validates a candidate ID from its string form.
func ParseCandidateID(s string) (CandidateID, error) {
	u, err := parseUUID(s, "candidate_id")
	return CandidateID(u), err
}

// ParseJudgmentID parses and validates a judgment ID from its string form.
func ParseJudgmentID(s string) (JudgmentID, error) {
	u, err := parseUUID(s, "judgment_id")
	return JudgmentID(u), err
}

// ParseAdminID parses and validates an admin ID from its string form.
func ParseAdminID(s string) (AdminID, error) {
	u, err := parseUUID(s, "admin_id")
	return AdminID(u), err
}
