package domain

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount as "$X,XXX.XX". Grouping works on the exact
// decimal digits, so large amounts keep every cent.
func FormatMoney(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	prefix := "$"
	if rounded.IsNegative() {
		prefix = "-$"
		rounded = rounded.Neg()
	}
	_, cents, _ := strings.Cut(rounded.StringFixed(2), ".")
	return prefix + humanize.BigComma(rounded.Truncate(0).BigInt()) + "." + cents
}

// FormatPercent formats a percentage without trailing zeros ("10", "7.5")
func FormatPercent(p decimal.Decimal) string {
	return p.String()
}
