// Package price turns the free-text price strings found on listing pages
// into numeric values with a detected currency.
package price

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// numberRe matches the first maximal digit run, allowing grouping
	// spaces (incl. non-breaking), dots and commas inside it.
	numberRe = regexp.MustCompile(`\d[\d\s\x{00a0}.,]*`)

	// AmountRe matches a digit run immediately followed by a currency
	// marker, e.g. "245 EUR", "199,99 €", "$150". Shared with the
	// extractor, which scans node text for amount occurrences.
	AmountRe = regexp.MustCompile(`(?i)\d[\d\s\x{00a0}.,]*(?:€|eur|\$|usd)`)
)

// Normalize parses a raw price string into a numeric value and a currency
// code. Currency detection runs independently of numeric parsing: a string
// with a euro sign but no digits still reports EUR. Malformed input never
// panics; any parse failure degrades to a nil value.
func Normalize(raw string) (*float64, *string) {
	if raw == "" {
		return nil, nil
	}

	var currency *string
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(raw, "€") || strings.Contains(lower, "eur"):
		cur := "EUR"
		currency = &cur
	case strings.Contains(raw, "$") || strings.Contains(lower, "usd"):
		cur := "USD"
		currency = &cur
	}

	run := numberRe.FindString(raw)
	if run == "" {
		return nil, currency
	}

	numeric := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, run)

	// Disambiguate separators: "1.234,56" is European grouping, a lone
	// comma is a decimal separator, a lone dot stays as-is.
	switch {
	case strings.Contains(numeric, ",") && strings.Contains(numeric, "."):
		numeric = strings.ReplaceAll(numeric, ".", "")
		numeric = strings.ReplaceAll(numeric, ",", ".")
	case strings.Contains(numeric, ","):
		numeric = strings.ReplaceAll(numeric, ",", ".")
	}

	v, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return nil, currency
	}
	return &v, currency
}

// HasCurrencyMarker reports whether s mentions any of the recognized
// currency markers. Used by the extractor to pick price-bearing lines.
func HasCurrencyMarker(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(s, "€") || strings.Contains(s, "$") ||
		strings.Contains(lower, "eur") || strings.Contains(lower, "usd")
}
