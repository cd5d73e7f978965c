package rating

import "github.com/shopspring/decimal"

// Fixed fees added after tax. Fees are never taxed.
var (
	policyFee = decimal.NewFromInt(25)
	dmvFee    = decimal.NewFromInt(10)
)

// applyTaxAndFees applies the state premium tax to the post-adjustment amount
// and adds the fixed fees. Unknown states use the documented default tax
// percentage rather than failing the quote.
func applyTaxAndFees(state string, taxable decimal.Decimal) (taxRate, taxAmount decimal.Decimal, fees []Fee, totalFees decimal.Decimal) {
	taxRate = taxPercentFor(state)
	taxAmount = taxable.Mul(taxRate).Div(decimal.NewFromInt(100))

	fees = []Fee{
		{Name: "policy_fee", Amount: policyFee},
		{Name: "dmv_fee", Amount: dmvFee},
	}
	totalFees = policyFee.Add(dmvFee)
	return taxRate, taxAmount, fees, totalFees
}
