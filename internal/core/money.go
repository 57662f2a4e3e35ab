// Package core provides amount parsing for survey answers.
//
// Survey cells hold money either as a single figure ("350", "$350.50",
// "350,50") or as several labelled entries separated by spaces
// ("sueldo:300 beca:$50"), in which case the amount is their sum.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a survey money cell into a non-negative decimal.
//
// Every entry must parse; a single bad entry fails the whole cell rather than
// being skipped. Negative figures are rejected.
//
// Examples:
//
//	ParseAmount("500")                -> 500
//	ParseAmount("$1.250,5")           -> error (ambiguous separators)
//	ParseAmount("1.250")              -> error (thousands or decimals)
//	ParseAmount("sueldo:300 beca:50") -> 350
//	ParseAmount("0")                  -> 0
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrMissingField
	}
	total := decimal.Zero
	for _, entry := range strings.Fields(s) {
		if _, value, ok := strings.Cut(entry, ":"); ok {
			entry = value
		}
		d, err := parseFigure(entry)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(d)
	}
	return total, nil
}

// ParsePercentage parses an optional 0-100 share such as "15" or "15%".
func ParsePercentage(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return nil, nil
	}
	d, err := parseFigure(s)
	if err != nil {
		return nil, ErrInvalidPercentage
	}
	if d.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrInvalidPercentage
	}
	return &d, nil
}

// ParseAge parses a whole number of years. "20.0" is accepted, "20.5" is not.
func ParseAge(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMissingField
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(n), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, ErrInvalidAge
	}
	if d.LessThan(decimal.NewFromInt(math.MinInt32)) || d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, ErrInvalidAge
	}
	return int(d.IntPart()), nil
}

// ParseDifficulty parses an optional 1-5 scale answer.
func ParseDifficulty(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := ParseAge(s)
	if err != nil || n < 1 || n > 5 {
		return nil, ErrInvalidDifficulty
	}
	return &n, nil
}

func parseFigure(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "$", ""))
	if s == "" || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	// A lone comma is a decimal comma; both separators together are ambiguous.
	// So is one separator followed by exactly three digits ("1.250"), which
	// Spanish-locale answers use for thousands.
	if thousandsGrouped(s) {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") || strings.Count(s, ",") > 1 {
			return decimal.Zero, ErrInvalidAmount
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func thousandsGrouped(s string) bool {
	i := strings.LastIndexAny(s, ".,")
	if i <= 0 || strings.IndexAny(s, ".,") != i {
		return false
	}
	return len(s)-i-1 == 3
}
