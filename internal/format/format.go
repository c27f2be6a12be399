package format

import (
	"math"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencySuffix is appended to every formatted price.
const CurrencySuffix = "đ"

var vnPrinter = message.NewPrinter(language.Vietnamese)

// Price renders an amount in whole dong with vi-VN grouping.
// Example: Price(299000) => "299.000đ"
func Price(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return vnPrinter.Sprint(number.Decimal(math.Round(amount), number.MaxFractionDigits(0))) + CurrencySuffix
}

// Number renders an integer with vi-VN grouping and no suffix.
func Number(n int) string {
	return vnPrinter.Sprint(number.Decimal(n))
}

// ParsePriceText keeps only the digits of a displayed price ("299.000đ" => 299000).
// ok is false when the text holds no digits.
func ParsePriceText(text string) (float64, bool) {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")
	if b.Len() == 0 {
		return 0, false
	}
	if digits == "" {
		return 0, true
	}
	var v float64
	for _, r := range digits {
		v = v*10 + float64(r-'0')
	}
	return v, true
}

// OrderTime formats timestamps the way the order API does ("02/01/2006 15:04").
func OrderTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}

// Initial returns the upper-cased first letter of s, used for image placeholders.
func Initial(s string) string {
	for _, r := range strings.TrimSpace(s) {
		return string(unicode.ToUpper(r))
	}
	return "?"
}
