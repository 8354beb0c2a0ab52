// Package core implements the loan amortization engine: normalizing raw loan
// records, classifying payment rows into typed events, replaying them into a
// day-accurate paydown schedule and rolling the result up for presentation.
//
// Everything in this package is pure: no I/O, no clock reads, no caching.
// All monetary values and rates are decimal.Decimal.
package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date layouts accepted on wire fields. Records come from the remote store
// with dates encoded either as ISO strings or as unix timestamps.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// ParseWireDecimal converts a string-or-number encoded wire field into a
// decimal. It accepts float64/int64/json.Number values as produced by JSON
// decoding and strings with either dot or comma decimal separators.
// The second return value is false when the field is absent or unparsable.
func ParseWireDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return x, true
	case float64:
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(normalizeSeparators(s))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		// json.Number and similar stringers
		if st, ok := v.(interface{ String() string }); ok {
			return ParseWireDecimal(st.String())
		}
		return decimal.Zero, false
	}
}

// ParseWireDate converts a string-or-number encoded wire field into a UTC
// date truncated to midnight. Numeric values are unix seconds (or millis
// when large enough). The second return value is false when absent or
// unparsable.
func ParseWireDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return midnightUTC(x), true
	case float64:
		return unixDate(int64(x)), true
	case int64:
		return unixDate(x), true
	case int:
		return unixDate(int64(x)), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return midnightUTC(t), true
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return unixDate(n), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// ParseWireInt reads an integer wire field (e.g. a day of month).
func ParseWireInt(v any) (int, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return int(x), true
	case int:
		return x, true
	case int64:
		return int(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// ParseWireBool reads a truthy wire flag: true, 1, "1", "true", "yes".
func ParseWireBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes", "y":
			return true
		}
	}
	return false
}

// normalizeSeparators maps comma-decimal and thousands-separated numbers
// onto the dot-decimal form the decimal parser expects. The rightmost of
// the two separators is taken as the decimal mark; the other groups
// thousands. A lone comma is a decimal comma, repeated commas group.
func normalizeSeparators(s string) string {
	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma < 0:
		return s
	case dot < 0:
		if strings.Count(s, ",") == 1 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	default:
		return strings.ReplaceAll(s, ",", "")
	}
}

func unixDate(n int64) time.Time {
	// Millisecond timestamps are 13 digits; anything past the year 33658
	// in seconds is assumed to be millis.
	if n > 1e12 {
		n /= 1000
	}
	return midnightUTC(time.Unix(n, 0).UTC())
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of whole days from a to b.
// Both arguments are expected to be UTC midnights.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
