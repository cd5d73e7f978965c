// Package events defines the lifecycle event stream. Services emit an event
// after every durable state change; sinks deliver them to Kafka or keep them
// in memory for tests and single-node runs.
package events

import (
	"time"
)

type Type string

const (
	TypeQuoteCreated  Type = "quote.created"
	TypeQuoteRerated  Type = "quote.rerated"
	TypeQuoteExpired  Type = "quote.expired"
	TypeBindStarted   Type = "bind.started"
	TypeBindFailed    Type = "bind.failed"
	TypePolicyBound   Type = "policy.bound"
	TypePolicyActive  Type = "policy.activated"
	TypePolicyCancelled Type = "policy.cancelled"
)

// Event is one lifecycle fact. Reference identifies the quote or policy the
// event is about and doubles as the partition key, so every event for one
// record lands on one partition in order.
type Event struct {
	Type       Type           `json:"type"`
	Reference  string         `json:"reference"`
	AgentID    string         `json:"agent_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Detail     map[string]any `json:"detail,omitempty"`
}
