package invoice

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
)

// numericPrefix matches the leading decimal literal of a string, the same portion a
// parse-to-float reads before giving up.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber reads the leading number of s as a float64. Empty, non-numeric and
// non-finite input (including "Infinity" and overflow such as "1e400") yields 0.
func ParseNumber(s string) float64 {
	m := numericPrefix.FindString(strings.TrimLeft(s, " \t\n\r\f\v"))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// ComputeTotals computes the monetary breakdown of a set of line items. The discount
// applies to the subtotal and tax applies to the discounted amount.
func ComputeTotals(items []entity.LineItem, taxPercent, discountPercent string) entity.Totals {
	subtotal := 0.0
	for _, item := range items {
		subtotal += ParseNumber(item.Quantity) * ParseNumber(item.Price)
	}

	discountAmount := subtotal * ParseNumber(discountPercent) / 100
	afterDiscount := subtotal - discountAmount
	taxAmount := afterDiscount * ParseNumber(taxPercent) / 100
	total := afterDiscount + taxAmount

	return entity.Totals{
		Subtotal:       ToFixed2(subtotal),
		DiscountAmount: ToFixed2(discountAmount),
		AfterDiscount:  ToFixed2(afterDiscount),
		TaxAmount:      ToFixed2(taxAmount),
		Total:          ToFixed2(total),
	}
}

// LineAmount returns quantity times price for a single line, fixed to two decimals.
func LineAmount(item entity.LineItem) string {
	return ToFixed2(ParseNumber(item.Quantity) * ParseNumber(item.Price))
}

// ToFixed2 rounds v half away from zero to two places using the exact binary value of
// v, so 1.005 (stored as 1.00499...) gives "1.00". Results that round to zero never
// carry a sign, and non-finite input gives "0.00".
func ToFixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', 40, 64))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
