package lookup

import (
	"context"
	"fmt"
	"strings"

	contract "lanewise/contracts/lookup"
)

// Cache stores provider responses for the configured TTL. A miss returns
// ErrNotFound; entries older than the TTL are treated as misses.
type Cache interface {
	GetFacts(ctx context.Context, vin string) (*contract.VehicleFacts, error)
	SaveFacts(ctx context.Context, facts *contract.VehicleFacts) error
	GetValue(ctx context.Context, vin string) (*contract.ValueEstimate, error)
	SaveValue(ctx context.Context, estimate *contract.ValueEstimate) error
	GetSafety(ctx context.Context, year int, make, model string) (*contract.SafetyRecord, error)
	SaveSafety(ctx context.Context, record *contract.SafetyRecord) error
}

func safetyKey(year int, make, model string) string {
	return fmt.Sprintf("%d/%s/%s", year, strings.ToLower(make), strings.ToLower(model))
}
