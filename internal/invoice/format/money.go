// Package format holds pure rendering helpers for invoices. Every
// function here is deterministic so rendered output stays byte-stable.
package format

import (
	"fmt"
	"strings"
)

var zeroDecimalCurrencies = map[string]struct{}{
	"JPY": {},
	"KRW": {},
	"VND": {},
}

// FormatAmount renders a minor-unit amount as a decimal string, e.g.
// 4800 USD minor units become "48.00".
func FormatAmount(minor int64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := zeroDecimalCurrencies[currency]; ok {
		return fmt.Sprintf("%d", minor)
	}

	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// FormatMoney renders an amount together with its currency code.
func FormatMoney(minor int64, currency string) string {
	return FormatAmount(minor, currency) + " " + strings.ToUpper(strings.TrimSpace(currency))
}
