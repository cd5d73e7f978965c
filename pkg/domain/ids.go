package domain

import (
	"github.com/google/uuid"

	dErrors "lanewise/pkg/domain-errors"
)

// QuoteID uniquely identifies a quote record.
// Invariant: IDs must be valid, non-nil UUIDs.
type QuoteID uuid.UUID

// PolicyID uniquely identifies a bound policy record.
type PolicyID uuid.UUID

// NewQuoteID generates a fresh quote identifier.
func NewQuoteID() QuoteID { return QuoteID(uuid.New()) }

// NewPolicyID generates a fresh policy identifier.
func NewPolicyID() PolicyID { return PolicyID(uuid.New()) }

func (id QuoteID) String() string  { return uuid.UUID(id).String() }
func (id PolicyID) String() string { return uuid.UUID(id).String() }

func (id QuoteID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PolicyID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps IDs as canonical UUID strings in JSON.

func (id QuoteID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id PolicyID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *QuoteID) UnmarshalText(b []byte) error {
	parsed, err := ParseQuoteID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *PolicyID) UnmarshalText(b []byte) error {
	parsed, err := ParsePolicyID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseQuoteID constructs a QuoteID from external input. Use at trust
// boundaries to enforce the UUID invariant; direct casting bypasses validation.
func ParseQuoteID(s string) (QuoteID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return QuoteID{}, err
	}
	return QuoteID(u), nil
}

// ParsePolicyID constructs a PolicyID from external input.
func ParsePolicyID(s string) (PolicyID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return PolicyID{}, err
	}
	return PolicyID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
