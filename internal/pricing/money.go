package pricing

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// RoundCents rounds half away from zero to two decimals.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// RoundUpTo rounds v up to the next multiple of step.
func RoundUpTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	// Trim float noise so exact multiples do not jump a step.
	q := decimal.NewFromFloat(v).Div(decimal.NewFromFloat(step)).Round(9)
	return q.Ceil().Mul(decimal.NewFromFloat(step)).InexactFloat64()
}

// ceilCount is math.Ceil tolerant of float noise (0.1*3 must stay 0.3).
func ceilCount(v float64) float64 {
	return math.Ceil(decimal.NewFromFloat(v).Round(9).InexactFloat64())
}

// FormatMoney renders an amount as "$1,250" when whole and "$1,250.50"
// otherwise.
func FormatMoney(v float64) string {
	v = RoundCents(v)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v == math.Trunc(v) {
		return sign + "$" + humanize.Comma(int64(v))
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatQuantity renders counts without a trailing ".00".
func FormatQuantity(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(RoundCents(v), 'f', -1, 64)
}

// FormatLineDisplay renders "unit × qty = extended".
func FormatLineDisplay(unitPrice, quantity float64) string {
	return FormatMoney(unitPrice) + " × " + FormatQuantity(quantity) + " = " + FormatMoney(unitPrice*quantity)
}

func formatDim(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
