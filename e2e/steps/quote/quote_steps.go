package quote

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GetResponseString(field string) (string, error)
	SetQuoteRef(ref string)
	GetQuoteRef() string
}

// RegisterSteps registers quote-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &quoteSteps{tc: tc}

	ctx.Step(`^I request a quote for a standard risk$`, steps.requestStandardQuote)
	ctx.Step(`^I request a quote with no vehicles$`, steps.requestQuoteNoVehicles)
	ctx.Step(`^I save the quote reference$`, steps.saveQuoteReference)
	ctx.Step(`^I fetch the saved quote$`, steps.fetchSavedQuote)
	ctx.Step(`^I re-rate the saved quote with only liability coverage$`, steps.rerateLiabilityOnly)
	ctx.Step(`^the quote status should be "([^"]*)"$`, steps.quoteStatusShouldBe)
	ctx.Step(`^the quote urgency should be "([^"]*)"$`, steps.quoteUrgencyShouldBe)
}

type quoteSteps struct {
	tc TestContext
}

func standardRisk() map[string]any {
	return map[string]any{
		"driver": map[string]any{
			"birth_date":     "1989-03-15T00:00:00Z",
			"years_licensed": 14,
		},
		"vehicles": []map[string]any{{
			"year":           2020,
			"make":           "Toyota",
			"model":          "Camry",
			"vin":            "1HGCM82633A004352",
			"annual_mileage": 11000,
			"usage":          "commute",
		}},
		"location": map[string]any{"state": "CA", "zip": "95814"},
		"coverages": []map[string]any{
			{"type": "liability", "limit": 50000, "selected": true},
			{"type": "collision", "limit": 50000, "deductible": 500, "selected": true},
		},
	}
}

func (s *quoteSteps) requestStandardQuote(ctx context.Context) error {
	return s.tc.POST("/v1/quotes", standardRisk())
}

func (s *quoteSteps) requestQuoteNoVehicles(ctx context.Context) error {
	body := standardRisk()
	body["vehicles"] = []map[string]any{}
	return s.tc.POST("/v1/quotes", body)
}

func (s *quoteSteps) saveQuoteReference(ctx context.Context) error {
	ref, err := s.tc.GetResponseString("reference")
	if err != nil {
		return err
	}
	s.tc.SetQuoteRef(ref)
	return nil
}

func (s *quoteSteps) fetchSavedQuote(ctx context.Context) error {
	return s.tc.GET("/v1/quotes/" + s.tc.GetQuoteRef())
}

func (s *quoteSteps) rerateLiabilityOnly(ctx context.Context) error {
	body := map[string]any{
		"coverages": []map[string]any{
			{"type": "liability", "limit": 100000, "selected": true},
		},
	}
	return s.tc.POST("/v1/quotes/"+s.tc.GetQuoteRef()+"/rerate", body)
}

func (s *quoteSteps) quoteStatusShouldBe(ctx context.Context, expected string) error {
	status, err := s.tc.GetResponseString("status")
	if err != nil {
		return err
	}
	if status != expected {
		return fmt.Errorf("expected quote status %q, got %q", expected, status)
	}
	return nil
}

func (s *quoteSteps) quoteUrgencyShouldBe(ctx context.Context, expected string) error {
	urgency, err := s.tc.GetResponseString("urgency")
	if err != nil {
		return err
	}
	if urgency != expected {
		return fmt.Errorf("expected quote urgency %q, got %q", expected, urgency)
	}
	return nil
}
