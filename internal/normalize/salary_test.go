package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-consolidator/internal/types"
)

func TestSalary_Formats(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		min      float64
		max      float64
		currency string
		open     bool
	}{
		{
			name:     "euro range with comma grouping",
			raw:      "€50,000 - €70,000 per year",
			min:      50000,
			max:      70000,
			currency: "EUR",
		},
		{
			name:     "k shorthand range",
			raw:      "50k-70k EUR",
			min:      50000,
			max:      70000,
			currency: "EUR",
		},
		{
			name:     "german period grouping",
			raw:      "50.000 € - 60.000 €",
			min:      50000,
			max:      60000,
			currency: "EUR",
		},
		{
			name:     "cents-styled range",
			raw:      "€50,000.00 - €60,000.00",
			min:      50000,
			max:      60000,
			currency: "EUR",
		},
		{
			name:     "german cents styling",
			raw:      "50.000,00 € - 60.000,00 €",
			min:      50000,
			max:      60000,
			currency: "EUR",
		},
		{
			name:     "single amount with cents",
			raw:      "€4,512.50 per month",
			min:      54150,
			max:      54150,
			currency: "EUR",
		},
		{
			name:     "single bound yields exact range",
			raw:      "€60,000",
			min:      60000,
			max:      60000,
			currency: "EUR",
		},
		{
			name:     "open lower bound keeps exact reading",
			raw:      "€100,000+",
			min:      100000,
			max:      100000,
			currency: "EUR",
			open:     true,
		},
		{
			name:     "hourly rate annualized",
			raw:      "€25/hour",
			min:      25 * 2080,
			max:      25 * 2080,
			currency: "EUR",
		},
		{
			name:     "hourly decimal rate",
			raw:      "37.50/hr USD",
			min:      37.5 * 2080,
			max:      37.5 * 2080,
			currency: "USD",
		},
		{
			name:     "monthly rate annualized",
			raw:      "4,500 EUR per month",
			min:      54000,
			max:      54000,
			currency: "EUR",
		},
		{
			name:     "reversed bounds are swapped",
			raw:      "70k - 50k GBP",
			min:      50000,
			max:      70000,
			currency: "GBP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Salary(tt.raw)
			require.Equal(t, types.KindSalary, v.Kind)
			require.NotNil(t, v.Salary)
			assert.InDelta(t, tt.min, v.Salary.Min, 0.001)
			assert.InDelta(t, tt.max, v.Salary.Max, 0.001)
			assert.Equal(t, tt.currency, v.Salary.Currency)
			assert.Equal(t, tt.open, v.Salary.Open)
		})
	}
}

func TestSalary_Unparsable(t *testing.T) {
	for _, raw := range []string{"", "competitive", "DOE", "attractive package"} {
		v := Salary(raw)
		assert.Equal(t, types.KindUnparsed, v.Kind, "raw=%q", raw)
		assert.Equal(t, raw, v.Raw)
		assert.False(t, v.IsUsable())
	}
}

func TestSalary_Idempotent(t *testing.T) {
	// Normalizing the same raw value twice must agree exactly.
	raw := "€50,000 - €70,000 per year"
	first := Salary(raw)
	second := Salary(raw)
	assert.Equal(t, first, second)
}
