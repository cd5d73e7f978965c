package binding

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrDeclined reports that the processor rejected the charge.
var ErrDeclined = errors.New("payment declined")

// Authorization is the processor's receipt for an approved charge.
type Authorization struct {
	Token string
}

// Gateway is the port to the payment processor. Authorize places a hold for
// the full premium; a nil error means the charge was approved.
type Gateway interface {
	Authorize(ctx context.Context, amount decimal.Decimal, details PaymentDetails) (*Authorization, error)
}

// StubGateway approves every charge and mints an opaque token. Used when no
// processor is configured, and as the default in local runs.
type StubGateway struct{}

func NewStubGateway() *StubGateway { return &StubGateway{} }

func (g *StubGateway) Authorize(_ context.Context, amount decimal.Decimal, _ PaymentDetails) (*Authorization, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("authorize: amount must be positive, got %s", amount)
	}
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	return &Authorization{Token: "tok_" + hex.EncodeToString(buf)}, nil
}
