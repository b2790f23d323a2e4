package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// pricePattern matches "R$ 75.432,10": currency prefix, dot thousands
// separators and exactly two decimal digits after a comma.
var pricePattern = regexp.MustCompile(`^R\$ *(\d{1,3}(?:\.\d{3})*|\d+),(\d{2})$`)

var decimalCommaPattern = regexp.MustCompile(`^-?\d+(?:,\d+)?$`)

// ParseError reports text that is not a localized currency amount
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid price format: %q", e.Text)
}

// ParsePrice converts a BRL currency string such as "R$ 75.432,10" into a number
func ParsePrice(text string) (float64, error) {
	normalized := strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
	m := pricePattern.FindStringSubmatch(normalized)
	if m == nil {
		return 0, &ParseError{Text: text}
	}

	integer := strings.ReplaceAll(m[1], ".", "")
	d, err := decimal.NewFromString(integer + "." + m[2])
	if err != nil {
		return 0, &ParseError{Text: text}
	}
	return d.InexactFloat64(), nil
}

// ParseDecimalComma parses a plain decimal-comma number such as "1,22"
func ParseDecimalComma(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if !decimalCommaPattern.MatchString(text) {
		return 0, &ParseError{Text: text}
	}
	d, err := decimal.NewFromString(strings.Replace(text, ",", ".", 1))
	if err != nil {
		return 0, &ParseError{Text: text}
	}
	return d.InexactFloat64(), nil
}

// RoundCents rounds a monetary amount to two decimal places
func RoundCents(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

// FormatAmount renders an amount with two decimals and a dot separator, for CSV
func FormatAmount(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}

// FormatBRL renders an amount the way the FIPE table does, e.g. "R$ 75.432,10"
func FormatBRL(value float64) string {
	fixed := decimal.NewFromFloat(value).Abs().StringFixed(2)
	integer, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if value < 0 {
		b.WriteString("-")
	}
	b.WriteString("R$ ")
	for i, r := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(cents)
	return b.String()
}
