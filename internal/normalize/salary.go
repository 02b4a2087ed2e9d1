package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/job-consolidator/internal/types"
)

// Hours in a working year, for annualizing hourly rates (40 h/week × 52).
const hoursPerYear = 2080

var (
	salaryNumberRe = regexp.MustCompile(`(\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{2})?|\d+(?:[.,]\d{1,2})?)\s*([kK])?`)
	openBoundRe    = regexp.MustCompile(`\d\s*[kK]?\s*\+`)
	groupedRe      = regexp.MustCompile(`^(\d{1,3}(?:[.,]\d{3})+)([.,]\d{2})?$`)
)

var currencyMarkers = []struct {
	marker   string
	currency string
}{
	{"€", "EUR"},
	{"eur", "EUR"},
	{"£", "GBP"},
	{"gbp", "GBP"},
	{"chf", "CHF"},
	{"usd", "USD"},
	{"$", "USD"},
}

// Salary parses magnitude, currency, and period out of heterogeneous salary
// strings and converts to an annualized [min, max] range in the detected
// currency. A single stated amount yields an exact [v, v] range; the
// normalizer never invents a wider band.
func Salary(raw string) types.NormalizedValue {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return unparsed(raw)
	}

	currency := detectCurrency(s)
	period := detectPeriod(s)
	open := openBoundRe.MatchString(s)

	amounts := parseAmounts(s)
	if len(amounts) == 0 {
		return unparsed(raw)
	}

	min := amounts[0]
	max := min
	if len(amounts) > 1 {
		max = amounts[1]
	}
	if max < min {
		min, max = max, min
	}

	switch period {
	case "hourly":
		min *= hoursPerYear
		max *= hoursPerYear
	case "monthly":
		min *= 12
		max *= 12
	}

	return types.NormalizedValue{
		Kind:   types.KindSalary,
		Salary: &types.SalaryRange{Min: min, Max: max, Currency: currency, Open: open},
	}
}

func detectCurrency(s string) string {
	for _, m := range currencyMarkers {
		if strings.Contains(s, m.marker) {
			return m.currency
		}
	}
	return ""
}

func detectPeriod(s string) string {
	switch {
	case strings.Contains(s, "hour") || strings.Contains(s, "/hr") || strings.Contains(s, "/h") || strings.Contains(s, "p.h."):
		return "hourly"
	case strings.Contains(s, "month") || strings.Contains(s, "/mo") || strings.Contains(s, "p.m."):
		return "monthly"
	default:
		return "annual"
	}
}

// parseAmounts extracts up to two numeric magnitudes, handling "Nk"
// shorthand and thousand separators in either comma or period style.
func parseAmounts(s string) []float64 {
	matches := salaryNumberRe.FindAllStringSubmatch(s, 2)
	amounts := make([]float64, 0, 2)
	for _, m := range matches {
		value, ok := parseMagnitude(m[1])
		if !ok {
			continue
		}
		if m[2] != "" {
			value *= 1000
		}
		amounts = append(amounts, value)
	}
	return amounts
}

// parseMagnitude interprets separator style: repeated three-digit groups are
// thousand separators ("50,000", "50.000"), a trailing two-digit group after
// them is a cents fraction ("50,000.00", "50.000,00"), and a bare trailing
// one- or two-digit group is a decimal fraction ("37.5").
func parseMagnitude(token string) (float64, bool) {
	if m := groupedRe.FindStringSubmatch(token); m != nil {
		cleaned := strings.Map(func(r rune) rune {
			if r == ',' || r == '.' {
				return -1
			}
			return r
		}, m[1])
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		if m[2] != "" {
			frac, err := strconv.ParseFloat("0."+m[2][1:], 64)
			if err != nil {
				return 0, false
			}
			v += frac
		}
		return v, true
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", "."), 64)
	return v, err == nil
}
