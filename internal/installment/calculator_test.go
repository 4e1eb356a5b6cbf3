package installment

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/variant-service/internal/domain"
	"github.com/utafrali/variant-service/pkg/money"
)

func TestComputeZeroInterestPlan_PicksLargestAffordablePrice(t *testing.T) {
	plan := ComputeZeroInterestPlan(domain.PriceList{6: 600000, 12: 1140000}, 1000000, true)

	require.NotNil(t, plan)
	assert.Equal(t, 6, plan.TermCount)
	assert.Equal(t, int64(100000), plan.PerInstallmentAmount)
	assert.Equal(t, int64(600000), plan.TotalPrice)
	assert.True(t, plan.IsZeroInterest)
	assert.Equal(t, "6 cuotas de $100.000 sin interés", plan.DisplayFull)
	assert.Equal(t, "$100.000 x6", plan.DisplayShort)
}

func TestComputeZeroInterestPlan_NoPlan(t *testing.T) {
	tests := []struct {
		name    string
		prices  domain.PriceList
		current int64
		enabled bool
	}{
		{"disabled", domain.PriceList{6: 600000}, 1000000, false},
		{"nil list", nil, 1000000, true},
		{"empty list", domain.PriceList{}, 1000000, true},
		{"all above price", domain.PriceList{3: 1200000, 6: 1300000}, 1000000, true},
		{"single payment wins", domain.PriceList{1: 1000000, 6: 900000}, 1000000, true},
		{"malformed entries", domain.PriceList{0: 100, -3: 200, 6: 0, 12: -5}, 1000000, true},
		{"zero current price", domain.PriceList{6: 600000}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ComputeZeroInterestPlan(tt.prices, tt.current, tt.enabled))
		})
	}
}

func TestComputeZeroInterestPlan_TiesPreferMoreTerms(t *testing.T) {
	plan := ComputeZeroInterestPlan(domain.PriceList{3: 900000, 6: 900000, 1: 900000}, 900000, true)
	require.NotNil(t, plan)
	assert.Equal(t, 6, plan.TermCount)
	assert.Equal(t, int64(150000), plan.PerInstallmentAmount)
}

func TestComputeZeroInterestPlan_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		price int64
		term  int
		want  int64
	}{
		{100, 8, 13}, // 12.5
		{100, 3, 33}, // 33.33
		{200, 3, 67}, // 66.67
		{1000001, 2, 500001},
		{999999, 12, 83333}, // 83333.25
	}

	for _, tt := range tests {
		plan := ComputeZeroInterestPlan(domain.PriceList{tt.term: tt.price}, tt.price, true)
		require.NotNil(t, plan)
		assert.Equal(t, tt.want, plan.PerInstallmentAmount, "%d/%d", tt.price, tt.term)
	}
}

func TestComputeZeroInterestPlan_DisplaysShareOneAmount(t *testing.T) {
	plan := ComputeZeroInterestPlan(domain.PriceList{12: 1140000}, 1200000, true)
	require.NotNil(t, plan)

	assert.Equal(t, int64(95000), plan.PerInstallmentAmount)
	assert.Equal(t, "12 cuotas de $95.000 sin interés", plan.DisplayFull)
	assert.Equal(t, "$95.000 x12", plan.DisplayShort)
}

func TestCalculator_CustomFormat(t *testing.T) {
	c := NewCalculator(money.ParseFormat("USD"))
	plan := c.Compute(domain.PriceList{4: 10000}, 10000, true)
	require.NotNil(t, plan)

	assert.Equal(t, "4 cuotas de US$25.00 sin interés", plan.DisplayFull)
	assert.Equal(t, "US$25.00 x4", plan.DisplayShort)
}

func TestComputeZeroInterestPlan_RoundingBound(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		current := rng.Int63n(5_000_000) + 1
		prices := domain.PriceList{}
		for _, term := range []int{2, 3, 6, 9, 12, 18, 24} {
			prices[term] = rng.Int63n(current*2) + 1
		}

		plan := ComputeZeroInterestPlan(prices, current, true)
		if plan == nil {
			continue
		}
		assert.LessOrEqual(t, plan.TotalPrice, current)
		overshoot := plan.PerInstallmentAmount*int64(plan.TermCount) - current
		assert.LessOrEqual(t, overshoot, int64(plan.TermCount-1))
	}
}
