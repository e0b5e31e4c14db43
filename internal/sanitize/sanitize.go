// Package sanitize normalizes untrusted report payloads before persistence.
// Every function is total: bad input becomes a defined empty value, never an
// error.
package sanitize

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// EmptyToNull returns nil for empty strings and absent values; anything else
// passes through unchanged.
func EmptyToNull(v any) any {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	return v
}

// NumberOrNull parses v as a number. Empty, absent, or non-finite values
// yield nil.
func NumberOrNull(v any) *float64 {
	n, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &n
}

// IntOrNull parses v as an integer, trimming whitespace on string input and
// truncating fractional parts. Empty, absent, or non-numeric values yield nil.
func IntOrNull(v any) *int64 {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	n, ok := toFloat(v)
	if !ok {
		return nil
	}
	i := int64(math.Trunc(n))
	return &i
}

// DateOrNull parses v as a calendar date or timestamp and returns it as an
// RFC 3339 UTC string. Unparseable values yield nil.
func DateOrNull(v any) *string {
	switch d := v.(type) {
	case nil:
		return nil
	case time.Time:
		s := d.UTC().Format(time.RFC3339)
		return &s
	case string:
		if d == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				s := t.UTC().Format(time.RFC3339)
				return &s
			}
		}
		return nil
	default:
		// Numeric inputs are milliseconds since epoch, the convention used
		// by the form clients.
		if n, ok := toFloat(v); ok {
			s := time.UnixMilli(int64(n)).UTC().Format(time.RFC3339)
			return &s
		}
		return nil
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// BoolOrFalse returns true only for true, "true", 1, and "1".
func BoolOrFalse(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true" || b == "1"
	default:
		n, ok := toFloat(v)
		return ok && n == 1
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return toFloat(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if n == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
