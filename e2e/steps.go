package e2e

import (
	"fmt"

	"github.com/cucumber/godog"

	"lanewise/e2e/steps/binding"
	"lanewise/e2e/steps/quote"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	registerCommonSteps(ctx, tc)
	quote.RegisterSteps(ctx, tc)
	binding.RegisterSteps(ctx, tc)
}

func registerCommonSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Step(`^the response status should be (\d+)$`, func(expected int) error {
		if tc.LastStatus() != expected {
			return fmt.Errorf("expected status %d, got %d", expected, tc.LastStatus())
		}
		return nil
	})
	ctx.Step(`^the response error should be "([^"]*)"$`, func(expected string) error {
		code, err := tc.GetResponseString("error")
		if err != nil {
			return err
		}
		if code != expected {
			return fmt.Errorf("expected error %q, got %q", expected, code)
		}
		return nil
	})
	ctx.Step(`^the response should have field "([^"]*)"$`, func(field string) error {
		_, err := tc.GetResponseField(field)
		return err
	})
}
