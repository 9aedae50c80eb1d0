// Package numeric provides amount parsing shared by the table, totals and
// fallback parsers. OCR output mixes currency glyphs, thousands separators
// and stray punctuation into numbers; everything funnels through
// NormalizeAmount so the cleanup rules live in one place.
package numeric

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/invoscan/invoscan/model"
)

var nonNumeric = regexp.MustCompile(`[^\d.\-]`)

// NormalizeAmount parses an amount string, tolerating the rupee sign,
// thousands separators and surrounding junk. The result is rounded to two
// decimals. ok is false when no number survives the cleanup.
func NormalizeAmount(s string) (v float64, ok bool) {
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.ReplaceAll(s, ",", "")
	s = nonNumeric.ReplaceAllString(strings.TrimSpace(s), "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Malformed amount: the caller treats the field as absent.
		return 0, false
	}
	return model.Round2(f), true
}

// LastAmount extracts the last amount found in text by the given pattern,
// falling back to the loose decimal pattern. Percentage-bearing text never
// yields an amount: "(5.0%)" is a rate, not a value.
func LastAmount(text string, amount, decimal *regexp.Regexp) (float64, bool) {
	if strings.ContainsRune(text, '%') {
		return 0, false
	}
	matches := amount.FindAllString(text, -1)
	if len(matches) == 0 {
		matches = decimal.FindAllString(text, -1)
	}
	if len(matches) == 0 {
		return 0, false
	}
	return NormalizeAmount(matches[len(matches)-1])
}
