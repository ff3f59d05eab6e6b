package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// decimalFigure finds anything shaped like a money figure. Noise banners that
// carry one are treated as real postings.
var decimalFigure = regexp.MustCompile(`\d+\.\d{2}`)

// parseAmount converts a string like "1,234.56", "R 150.00" or "-R1,234.56" to a decimal.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	// Remove currency symbols and whitespace (including Unicode variants)
	s = strings.ReplaceAll(s, "R", "")
	s = strings.ReplaceAll(s, "£", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00A0", "") // non-breaking space

	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// containsAny reports whether lowered text contains any of the (already lowered) needles.
func containsAny(lowered string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(lowered, n) {
			return true
		}
	}
	return false
}

func joinNonEmpty(parts []string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
