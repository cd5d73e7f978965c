package binding

import (
	"strconv"
	"strings"
	"time"

	"lanewise/pkg/domain"
	derrors "lanewise/pkg/domain-errors"
)

// CardDetails is a card payment instrument as submitted by the agent. The
// full number and CVV exist only in memory during validation and
// authorization; they are never persisted or logged.
type CardDetails struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"` // MM/YY
	CVV    string `json:"cvv"`
	Name   string `json:"name"`
}

// ACHDetails is a bank account payment instrument.
type ACHDetails struct {
	RoutingNumber string `json:"routing_number"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"` // checking or savings
	Name          string `json:"name"`
}

// PaymentDetails is the payment portion of a bind request.
type PaymentDetails struct {
	Method domain.PaymentMethod `json:"method"`
	Card   *CardDetails         `json:"card,omitempty"`
	ACH    *ACHDetails          `json:"ach,omitempty"`
}

// ValidatePayment checks the payment instrument before any state change.
// Violations are collected so the agent sees every problem at once.
func ValidatePayment(details PaymentDetails, now time.Time) error {
	var fields []string
	switch details.Method {
	case domain.PaymentCard:
		if details.Card == nil {
			return derrors.New(derrors.CodeInvalidPayment, "card details are required").
				WithFields("card")
		}
		fields = validateCard(*details.Card, now)
	case domain.PaymentACH:
		if details.ACH == nil {
			return derrors.New(derrors.CodeInvalidPayment, "ach details are required").
				WithFields("ach")
		}
		fields = validateACH(*details.ACH)
	default:
		return derrors.Newf(derrors.CodeInvalidPayment, "unsupported payment method %q", details.Method).
			WithFields("method")
	}
	if len(fields) > 0 {
		return derrors.New(derrors.CodeInvalidPayment, "payment validation failed").
			WithFields(fields...)
	}
	return nil
}

func validateCard(card CardDetails, now time.Time) []string {
	var fields []string
	number := strings.ReplaceAll(strings.ReplaceAll(card.Number, " ", ""), "-", "")
	if !allDigits(number) || len(number) < 13 || len(number) > 19 || !luhnValid(number) {
		fields = append(fields, "card.number")
	}
	if !expiryValid(card.Expiry, now) {
		fields = append(fields, "card.expiry")
	}
	if !allDigits(card.CVV) || len(card.CVV) < 3 || len(card.CVV) > 4 {
		fields = append(fields, "card.cvv")
	}
	return fields
}

func validateACH(ach ACHDetails) []string {
	var fields []string
	if !routingValid(ach.RoutingNumber) {
		fields = append(fields, "ach.routing_number")
	}
	if !allDigits(ach.AccountNumber) || len(ach.AccountNumber) < 4 || len(ach.AccountNumber) > 17 {
		fields = append(fields, "ach.account_number")
	}
	if ach.AccountType != "checking" && ach.AccountType != "savings" {
		fields = append(fields, "ach.account_type")
	}
	return fields
}

// luhnValid runs the Luhn checksum over a digit string.
func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// expiryValid parses MM/YY and accepts cards valid through the end of the
// expiry month.
func expiryValid(expiry string, now time.Time) bool {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	year += 2000
	endOfMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return now.Before(endOfMonth)
}

// routingValid runs the ABA checksum (weights 3, 7, 1) over a nine-digit
// routing number.
func routingValid(routing string) bool {
	if len(routing) != 9 || !allDigits(routing) {
		return false
	}
	weights := [9]int{3, 7, 1, 3, 7, 1, 3, 7, 1}
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(routing[i]-'0') * weights[i]
	}
	return sum%10 == 0
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// brandFor identifies the card network from the number prefix. Unknown
// prefixes are allowed; brand is display metadata, not a gate.
func brandFor(number string) string {
	number = strings.ReplaceAll(strings.ReplaceAll(number, " ", ""), "-", "")
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case hasPrefixInRange(number, 51, 55) || hasPrefixInRange4(number, 2221, 2720):
		return "mastercard"
	case strings.HasPrefix(number, "34") || strings.HasPrefix(number, "37"):
		return "amex"
	case strings.HasPrefix(number, "6011") || strings.HasPrefix(number, "65"):
		return "discover"
	default:
		return ""
	}
}

func hasPrefixInRange(number string, lo, hi int) bool {
	if len(number) < 2 {
		return false
	}
	prefix, err := strconv.Atoi(number[:2])
	return err == nil && prefix >= lo && prefix <= hi
}

func hasPrefixInRange4(number string, lo, hi int) bool {
	if len(number) < 4 {
		return false
	}
	prefix, err := strconv.Atoi(number[:4])
	return err == nil && prefix >= lo && prefix <= hi
}

// last4 returns the display suffix of a card or account number.
func last4(number string) string {
	number = strings.ReplaceAll(strings.ReplaceAll(number, " ", ""), "-", "")
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}
