package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatAmount renders a minor-unit amount as a locale-formatted display string,
// e.g. "USD 1,234.50". Unknown currencies fall back to a plain minor-unit rendering.
func FormatAmount(locale string, currencyCode string, minor uint64) string {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%d %s", minor, code)
	}

	printer := message.NewPrinter(tag)
	scale, _ := currency.Cash.Rounding(unit)
	if scale <= 0 {
		return printer.Sprintf("%v %v", unit, minor)
	}

	divisor := uint64(1)
	for i := 0; i < scale; i++ {
		divisor *= 10
	}
	return printer.Sprintf("%v %v.%0*d", unit, minor/divisor, scale, minor%divisor)
}
