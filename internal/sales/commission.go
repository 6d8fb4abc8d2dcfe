package sales

import (
	"github.com/shopspring/decimal"

	"realestate/server/internal/models"
)

var hundred = decimal.NewFromInt(100)

// DefaultCommissionRate applies when no rate is configured
var DefaultCommissionRate = decimal.RequireFromString("5.00")

type CommissionCalculator struct {
	DefaultRate decimal.Decimal
}

func NewCommissionCalculator(defaultRate decimal.Decimal) *CommissionCalculator {
	if !defaultRate.IsPositive() {
		defaultRate = DefaultCommissionRate
	}
	return &CommissionCalculator{DefaultRate: defaultRate}
}

// Compute builds the commission owed to agent on sale. A non-positive rate
// falls back to the default. A non-zero explicit amount is kept as given;
// otherwise the amount is final price * rate / 100 rounded to cents.
func (c *CommissionCalculator) Compute(sale models.Sale, agentID *uint, rate decimal.Decimal, amount *decimal.Decimal) models.Commission {
	if !rate.IsPositive() {
		rate = c.DefaultRate
	}

	commission := models.Commission{
		SaleID:  sale.ID,
		AgentID: agentID,
		Rate:    rate,
	}
	if amount != nil && !amount.IsZero() {
		commission.Amount = *amount
	} else {
		commission.Amount = sale.FinalPrice.Mul(rate).Div(hundred).Round(2)
	}
	return commission
}
