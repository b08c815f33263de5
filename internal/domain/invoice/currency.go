package invoice

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is the Ghanaian cedi symbol as rendered for the en-GH locale.
const DefaultCurrencySymbol = "GH₵"

// CurrencyFormatter renders amounts as symbol-prefixed, comma-grouped, two-decimal strings.
type CurrencyFormatter struct {
	Symbol string
}

// NewCurrencyFormatter returns a formatter using symbol, or the cedi symbol when empty.
func NewCurrencyFormatter(symbol string) CurrencyFormatter {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return CurrencyFormatter{Symbol: symbol}
}

// Format renders a decimal string; empty or non-numeric input renders as zero.
func (f CurrencyFormatter) Format(amount string) string {
	return f.FormatFloat(ParseNumber(amount))
}

// FormatFloat renders v. Rounding is half away from zero on the shortest decimal form
// of v, so 1.005 renders as 1.01.
func (f CurrencyFormatter) FormatFloat(v float64) string {
	symbol := f.Symbol
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + symbol + groupThousands(d.StringFixed(2))
}

// FormatCurrency formats amount with the default cedi formatter.
func FormatCurrency(amount string) string {
	return NewCurrencyFormatter("").Format(amount)
}

func groupThousands(fixed string) string {
	intPart, decPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if decPart != "" {
		b.WriteByte('.')
		b.WriteString(decPart)
	}
	return b.String()
}
