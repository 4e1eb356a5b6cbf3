// Package installment derives zero-interest installment plans from a price
// list indexed by term count.
package installment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/utafrali/variant-service/internal/domain"
	"github.com/utafrali/variant-service/pkg/money"
)

// Calculator renders plans with a fixed currency format.
type Calculator struct {
	format money.Format
}

// NewCalculator returns a Calculator writing amounts with f.
func NewCalculator(f money.Format) *Calculator {
	return &Calculator{format: f}
}

var defaultCalculator = NewCalculator(money.ARS)

// ComputeZeroInterestPlan is Calculator.Compute with the ARS format.
func ComputeZeroInterestPlan(prices domain.PriceList, currentPrice int64, enabled bool) *domain.InstallmentPlan {
	return defaultCalculator.Compute(prices, currentPrice, enabled)
}

// Compute picks the term whose listed price is the largest one not above
// currentPrice, preferring more terms when prices tie, and splits that
// price into equal installments rounded half up to the minor unit.
//
// It returns nil when disabled, when no entry qualifies, or when the best
// entry is a single payment. Entries with a non-positive term or price are
// ignored.
func (c *Calculator) Compute(prices domain.PriceList, currentPrice int64, enabled bool) *domain.InstallmentPlan {
	if !enabled || currentPrice <= 0 {
		return nil
	}

	term, price := 0, int64(0)
	for t, p := range prices {
		if t < 1 || p <= 0 || p > currentPrice {
			continue
		}
		if p > price || (p == price && t > term) {
			term, price = t, p
		}
	}
	if term <= 1 {
		return nil
	}

	per := decimal.NewFromInt(price).
		Div(decimal.NewFromInt(int64(term))).
		Round(0).
		IntPart()
	amount := c.format.Amount(per)

	return &domain.InstallmentPlan{
		TermCount:            term,
		PerInstallmentAmount: per,
		TotalPrice:           price,
		IsZeroInterest:       true,
		DisplayFull:          fmt.Sprintf("%d cuotas de %s sin interés", term, amount),
		DisplayShort:         fmt.Sprintf("%s x%d", amount, term),
	}
}
