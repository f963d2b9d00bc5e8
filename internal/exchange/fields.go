package exchange

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Decode parses a response body keeping numbers as json.Number.
func Decode(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// AsObject returns v as an object, or nil.
func AsObject(v any) Object {
	obj, _ := v.(map[string]any)
	return obj
}

// AsList returns v as a list, or nil.
func AsList(v any) []any {
	list, _ := v.([]any)
	return list
}

// Lookup returns the value of the first key present with a non-null value.
func Lookup(obj Object, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := obj[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Field returns the nested object or list under the first present key.
func Field(obj Object, keys ...string) any {
	v, _ := Lookup(obj, keys...)
	return v
}

// Child returns the object under the first present key.
func Child(obj Object, keys ...string) Object {
	return AsObject(Field(obj, keys...))
}

// Items returns the list under the first present key.
func Items(obj Object, keys ...string) []any {
	return AsList(Field(obj, keys...))
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, val != ""
	case json.Number:
		return val.String(), true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return "", false
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

// String returns the first non-empty scalar among keys, rendered as a string.
func String(obj Object, keys ...string) *string {
	for _, key := range keys {
		if s, ok := scalarString(obj[key]); ok {
			return &s
		}
	}
	return nil
}

// StringLower is String lowercased.
func StringLower(obj Object, keys ...string) *string {
	if s := String(obj, keys...); s != nil {
		out := strings.ToLower(*s)
		return &out
	}
	return nil
}

// StringUpper is String uppercased.
func StringUpper(obj Object, keys ...string) *string {
	if s := String(obj, keys...); s != nil {
		out := strings.ToUpper(*s)
		return &out
	}
	return nil
}

// StringOr returns String or def when every key is absent.
func StringOr(obj Object, def string, keys ...string) string {
	if s := String(obj, keys...); s != nil {
		return *s
	}
	return def
}

// Int64 returns the first key that parses as an integer. Fractions are truncated.
func Int64(obj Object, keys ...string) *int64 {
	for _, key := range keys {
		s, ok := scalarString(obj[key])
		if !ok {
			continue
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &n
		}
		if d, err := decimal.NewFromString(s); err == nil {
			n := d.IntPart()
			return &n
		}
	}
	return nil
}

// Bool returns the first key holding a boolean or a "true"/"false" string.
func Bool(obj Object, keys ...string) *bool {
	for _, key := range keys {
		switch val := obj[key].(type) {
		case bool:
			return &val
		case string:
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

// secondsCutoff separates second from millisecond epochs; 1e11 seconds is year 5138.
const secondsCutoff = 100_000_000_000

// Timestamp returns the first key holding an epoch in seconds or milliseconds,
// normalized to milliseconds. Decimal seconds such as "1700000000.25" are accepted.
func Timestamp(obj Object, keys ...string) *int64 {
	for _, key := range keys {
		s, ok := scalarString(obj[key])
		if !ok {
			continue
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			if ms := ParseDatetime(s); ms != nil {
				return ms
			}
			continue
		}
		if d.Abs().LessThan(decimal.NewFromInt(secondsCutoff)) {
			d = d.Mul(decimal.NewFromInt(1000))
		}
		n := d.IntPart()
		return &n
	}
	return nil
}

// TimestampSeconds treats the first present key as epoch seconds.
func TimestampSeconds(obj Object, keys ...string) *int64 {
	for _, key := range keys {
		s, ok := scalarString(obj[key])
		if !ok {
			continue
		}
		if d, err := decimal.NewFromString(s); err == nil {
			n := d.Mul(decimal.NewFromInt(1000)).IntPart()
			return &n
		}
	}
	return nil
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
}

// ParseDatetime parses ISO8601 or "YYYY-MM-DD HH:MM:SS[.ffffff]" (UTC) into milliseconds.
func ParseDatetime(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			ms := t.UnixMilli()
			return &ms
		}
	}
	return nil
}

// MapEnum translates v through table. Unknown values pass through unchanged.
func MapEnum(table map[string]string, v *string) *string {
	if v == nil {
		return nil
	}
	if mapped, ok := table[*v]; ok {
		return &mapped
	}
	return v
}

// FirstNonEmpty returns the first non-nil, non-empty candidate.
func FirstNonEmpty(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return c
		}
	}
	return nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *p or the zero value.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Levels converts [[price, amount, ...], ...] rows into price levels.
func Levels(rows []any) []PriceLevel {
	out := make([]PriceLevel, 0, len(rows))
	for _, row := range rows {
		cells := AsList(row)
		if len(cells) < 2 {
			if obj := AsObject(row); obj != nil {
				price, amount := String(obj, "price", "p"), String(obj, "size", "amount", "s")
				if price != nil && amount != nil {
					out = append(out, PriceLevel{*price, *amount})
				}
			}
			continue
		}
		price, ok1 := scalarString(cells[0])
		amount, ok2 := scalarString(cells[1])
		if ok1 && ok2 {
			out = append(out, PriceLevel{price, amount})
		}
	}
	return out
}

// CellString returns the i-th cell of a list row.
func CellString(row []any, i int) *string {
	if i < 0 || i >= len(row) {
		return nil
	}
	if s, ok := scalarString(row[i]); ok {
		return &s
	}
	return nil
}
