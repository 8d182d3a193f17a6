// Package convert normalizes GraphQL response values. The tournament API
// encodes datetimes and decimal amounts as strings on the wire; callers
// want native time.Time and decimal.Decimal values.
package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// datetimeLayouts covers the timestamp shapes the API emits. Layouts with a
// zone offset come first so the offset is honored when present; the rest
// are interpreted as UTC.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateTime parses an ISO-8601-ish timestamp string.
func ParseDateTime(s string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// ParseDecimal parses a numeric string into an exact decimal. Commas used
// as thousands separators are tolerated.
func ParseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}

// DateTime is a Replace converter: timestamp string in, time.Time out.
// nil and unparseable values become nil.
func DateTime(v any) any {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t, err := ParseDateTime(s)
	if err != nil {
		return nil
	}
	return t
}

// Decimal is a Replace converter: numeric string (or number) in,
// decimal.Decimal out. nil and unparseable values become nil.
func Decimal(v any) any {
	switch val := v.(type) {
	case string:
		d, err := ParseDecimal(val)
		if err != nil {
			return nil
		}
		return d
	case float64:
		return decimal.NewFromFloat(val)
	case int:
		return decimal.NewFromInt(int64(val))
	default:
		return nil
	}
}

// Replace applies fn to m[key] in place. A nil map, a missing key, or a
// nil value is a no-op, not an error.
func Replace(m map[string]any, key string, fn func(any) any) {
	if m == nil {
		return
	}
	v, ok := m[key]
	if !ok || v == nil {
		return
	}
	m[key] = fn(v)
}
