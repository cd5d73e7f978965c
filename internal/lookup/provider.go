// Package lookup enriches rate requests with vehicle data from the external
// provider. Lookups are cached for 24 hours and every source degrades to
// neutral when the provider is unreachable: a failed lookup never blocks a
// quote, it just rates on defaults.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	contract "lanewise/contracts/lookup"
)

// ErrUnavailable reports that the provider could not serve a lookup. Callers
// treat it as a degrade signal, not a failure.
var ErrUnavailable = errors.New("lookup provider unavailable")

// ErrNotFound reports that the provider has no record for the key.
var ErrNotFound = errors.New("lookup record not found")

// Provider is the port to the external vehicle data service.
type Provider interface {
	DecodeVIN(ctx context.Context, vin string) (*contract.VehicleFacts, error)
	EstimateValue(ctx context.Context, vin string) (*contract.ValueEstimate, error)
	SafetyRating(ctx context.Context, year int, make, model string) (*contract.SafetyRecord, error)
}

// HTTPProvider talks to the provider's REST API.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) DecodeVIN(ctx context.Context, vin string) (*contract.VehicleFacts, error) {
	var facts contract.VehicleFacts
	if err := p.get(ctx, "/v1/vins/"+url.PathEscape(vin), &facts); err != nil {
		return nil, err
	}
	return &facts, nil
}

func (p *HTTPProvider) EstimateValue(ctx context.Context, vin string) (*contract.ValueEstimate, error) {
	var estimate contract.ValueEstimate
	if err := p.get(ctx, "/v1/vins/"+url.PathEscape(vin)+"/value", &estimate); err != nil {
		return nil, err
	}
	return &estimate, nil
}

func (p *HTTPProvider) SafetyRating(ctx context.Context, year int, make, model string) (*contract.SafetyRecord, error) {
	path := fmt.Sprintf("/v1/safety/%d/%s/%s", year, url.PathEscape(make), url.PathEscape(model))
	var record contract.SafetyRecord
	if err := p.get(ctx, path, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (p *HTTPProvider) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build lookup request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode lookup response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("lookup request failed: status %d", resp.StatusCode)
	}
}
