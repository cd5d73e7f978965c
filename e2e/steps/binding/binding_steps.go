package binding

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
	UseAdminToken(use bool)
	GetQuoteRef() string
	SetPolicyRef(ref string)
	GetPolicyRef() string
}

// RegisterSteps registers binding and policy step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &bindingSteps{tc: tc}

	ctx.Step(`^I bind the saved quote with a valid card$`, steps.bindWithValidCard)
	ctx.Step(`^I bind the saved quote with card number "([^"]*)"$`, steps.bindWithCardNumber)
	ctx.Step(`^I save the policy reference$`, steps.savePolicyReference)
	ctx.Step(`^I fetch the saved policy$`, steps.fetchSavedPolicy)
	ctx.Step(`^I activate the saved policy$`, steps.activatePolicy)
	ctx.Step(`^I cancel the saved policy as an agent$`, steps.cancelAsAgent)
	ctx.Step(`^I cancel the saved policy as an admin$`, steps.cancelAsAdmin)
	ctx.Step(`^the policy status should be "([^"]*)"$`, steps.policyStatusShouldBe)
}

type bindingSteps struct {
	tc TestContext
}

func cardPayment(number string) map[string]any {
	return map[string]any{
		"payment": map[string]any{
			"method": "card",
			"card": map[string]any{
				"number": number,
				"expiry": "09/29",
				"cvv":    "123",
				"name":   "Pat Doe",
			},
		},
	}
}

func (s *bindingSteps) bindWithValidCard(ctx context.Context) error {
	return s.tc.POST("/v1/quotes/"+s.tc.GetQuoteRef()+"/bind", cardPayment("4111111111111111"))
}

func (s *bindingSteps) bindWithCardNumber(ctx context.Context, number string) error {
	return s.tc.POST("/v1/quotes/"+s.tc.GetQuoteRef()+"/bind", cardPayment(number))
}

func (s *bindingSteps) savePolicyReference(ctx context.Context) error {
	ref, err := s.tc.GetResponseString("reference")
	if err != nil {
		return err
	}
	s.tc.SetPolicyRef(ref)
	return nil
}

func (s *bindingSteps) fetchSavedPolicy(ctx context.Context) error {
	return s.tc.GET("/v1/policies/" + s.tc.GetPolicyRef())
}

func (s *bindingSteps) activatePolicy(ctx context.Context) error {
	return s.tc.POST("/v1/policies/"+s.tc.GetPolicyRef()+"/activate", nil)
}

func (s *bindingSteps) cancelAsAgent(ctx context.Context) error {
	return s.tc.POST("/v1/policies/"+s.tc.GetPolicyRef()+"/cancel", map[string]any{"reason": "requested"})
}

func (s *bindingSteps) cancelAsAdmin(ctx context.Context) error {
	s.tc.UseAdminToken(true)
	defer s.tc.UseAdminToken(false)
	return s.tc.POST("/v1/policies/"+s.tc.GetPolicyRef()+"/cancel", map[string]any{"reason": "non-payment"})
}

func (s *bindingSteps) policyStatusShouldBe(ctx context.Context, expected string) error {
	status, err := s.tc.GetResponseString("status")
	if err != nil {
		return err
	}
	if status != expected {
		return fmt.Errorf("expected policy status %q, got %q", expected, status)
	}
	return nil
}
