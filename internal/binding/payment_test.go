package binding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lanewise/pkg/domain"
	derrors "lanewise/pkg/domain-errors"
)

var paymentNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func validCard() PaymentDetails {
	return PaymentDetails{
		Method: domain.PaymentCard,
		Card: &CardDetails{
			Number: "4111 1111 1111 1111",
			Expiry: "08/27",
			CVV:    "123",
			Name:   "Pat Doe",
		},
	}
}

func validACH() PaymentDetails {
	return PaymentDetails{
		Method: domain.PaymentACH,
		ACH: &ACHDetails{
			RoutingNumber: "021000021",
			AccountNumber: "123456789",
			AccountType:   "checking",
			Name:          "Pat Doe",
		},
	}
}

func TestValidCardAccepted(t *testing.T) {
	assert.NoError(t, ValidatePayment(validCard(), paymentNow))
}

func TestValidACHAccepted(t *testing.T) {
	assert.NoError(t, ValidatePayment(validACH(), paymentNow))
}

func TestCardValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CardDetails)
		field  string
	}{
		{"luhn failure", func(c *CardDetails) { c.Number = "4111111111111112" }, "card.number"},
		{"too short", func(c *CardDetails) { c.Number = "411111111111" }, "card.number"},
		{"non-digits", func(c *CardDetails) { c.Number = "4111abcd11111111" }, "card.number"},
		{"expired last month", func(c *CardDetails) { c.Expiry = "03/26" }, "card.expiry"},
		{"malformed expiry", func(c *CardDetails) { c.Expiry = "2027-08" }, "card.expiry"},
		{"month out of range", func(c *CardDetails) { c.Expiry = "13/27" }, "card.expiry"},
		{"cvv too short", func(c *CardDetails) { c.CVV = "12" }, "card.cvv"},
		{"cvv too long", func(c *CardDetails) { c.CVV = "12345" }, "card.cvv"},
		{"cvv letters", func(c *CardDetails) { c.CVV = "12a" }, "card.cvv"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			details := validCard()
			tc.mutate(details.Card)
			err := ValidatePayment(details, paymentNow)
			assert.True(t, derrors.HasCode(err, derrors.CodeInvalidPayment))
			assert.Contains(t, derrors.FieldsOf(err), tc.field)
		})
	}
}

func TestCardValidThroughEndOfExpiryMonth(t *testing.T) {
	details := validCard()
	details.Card.Expiry = "04/26"
	assert.NoError(t, ValidatePayment(details, paymentNow))

	lastInstant := time.Date(2026, 4, 30, 23, 59, 59, 0, time.UTC)
	assert.NoError(t, ValidatePayment(details, lastInstant))

	mayFirst := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Error(t, ValidatePayment(details, mayFirst))
}

func TestACHValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ACHDetails)
		field  string
	}{
		{"routing checksum failure", func(a *ACHDetails) { a.RoutingNumber = "021000022" }, "ach.routing_number"},
		{"routing too short", func(a *ACHDetails) { a.RoutingNumber = "0210000" }, "ach.routing_number"},
		{"account too short", func(a *ACHDetails) { a.AccountNumber = "123" }, "ach.account_number"},
		{"account too long", func(a *ACHDetails) { a.AccountNumber = "123456789012345678" }, "ach.account_number"},
		{"bad account type", func(a *ACHDetails) { a.AccountType = "money-market" }, "ach.account_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			details := validACH()
			tc.mutate(details.ACH)
			err := ValidatePayment(details, paymentNow)
			assert.True(t, derrors.HasCode(err, derrors.CodeInvalidPayment))
			assert.Contains(t, derrors.FieldsOf(err), tc.field)
		})
	}
}

func TestAllViolationsReported(t *testing.T) {
	details := validCard()
	details.Card.Number = "1234"
	details.Card.Expiry = "bad"
	details.Card.CVV = "x"

	err := ValidatePayment(details, paymentNow)
	fields := derrors.FieldsOf(err)
	assert.ElementsMatch(t, []string{"card.number", "card.expiry", "card.cvv"}, fields)
}

func TestMissingInstrumentDetails(t *testing.T) {
	err := ValidatePayment(PaymentDetails{Method: domain.PaymentCard}, paymentNow)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidPayment))

	err = ValidatePayment(PaymentDetails{Method: domain.PaymentACH}, paymentNow)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidPayment))

	err = ValidatePayment(PaymentDetails{Method: "crypto"}, paymentNow)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidPayment))
}

func TestBrandDetection(t *testing.T) {
	cases := []struct {
		number string
		brand  string
	}{
		{"4111111111111111", "visa"},
		{"5555555555554444", "mastercard"},
		{"2221000000000009", "mastercard"},
		{"378282246310005", "amex"},
		{"6011111111111117", "discover"},
		{"9999999999999995", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.brand, brandFor(tc.number), tc.number)
	}
}

func TestLast4(t *testing.T) {
	assert.Equal(t, "1111", last4("4111 1111 1111 1111"))
	assert.Equal(t, "789", last4("789"))
}
