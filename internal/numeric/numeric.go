// Package numeric provides decimal string arithmetic for normalized exchange records.
// Values travel as strings so no float rounding creeps in before formatting.
package numeric

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts a decimal string into a decimal value.
// On failure, it returns (zero, false).
func Parse(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parsePtr(s *string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	return Parse(*s)
}

func format(d decimal.Decimal) *string {
	out := d.String()
	return &out
}

// Mul returns a*b, or nil when either operand is unknown.
func Mul(a, b *string) *string {
	x, ok := parsePtr(a)
	if !ok {
		return nil
	}
	y, ok := parsePtr(b)
	if !ok {
		return nil
	}
	return format(x.Mul(y))
}

// Add returns a+b, or nil when either operand is unknown.
func Add(a, b *string) *string {
	x, ok := parsePtr(a)
	if !ok {
		return nil
	}
	y, ok := parsePtr(b)
	if !ok {
		return nil
	}
	return format(x.Add(y))
}

// Sub returns a-b, or nil when either operand is unknown.
func Sub(a, b *string) *string {
	x, ok := parsePtr(a)
	if !ok {
		return nil
	}
	y, ok := parsePtr(b)
	if !ok {
		return nil
	}
	return format(x.Sub(y))
}

// Div returns a/b, or nil when either operand is unknown or b is zero.
func Div(a, b *string) *string {
	x, ok := parsePtr(a)
	if !ok {
		return nil
	}
	y, ok := parsePtr(b)
	if !ok || y.IsZero() {
		return nil
	}
	return format(x.Div(y))
}

// Abs returns |a|.
func Abs(a *string) *string {
	x, ok := parsePtr(a)
	if !ok {
		return nil
	}
	return format(x.Abs())
}

// Neg returns -a.
func Neg(a *string) *string {
	x, ok := parsePtr(a)
	if !ok {
		return nil
	}
	return format(x.Neg())
}

// Sign returns -1, 0 or 1, and false when a is not a number.
func Sign(a *string) (int, bool) {
	x, ok := parsePtr(a)
	if !ok {
		return 0, false
	}
	return x.Sign(), true
}

// IsZero reports whether a parses to zero.
func IsZero(a *string) bool {
	x, ok := parsePtr(a)
	return ok && x.IsZero()
}

// Inverse returns 1/a rounded to places decimals, used for leverage and
// margin rate conversions.
func Inverse(a string, places int32) (string, bool) {
	x, ok := Parse(a)
	if !ok || x.IsZero() {
		return "", false
	}
	return decimal.NewFromInt(1).DivRound(x, places).String(), true
}

// PrecisionFromDecimals turns a decimal count into a step string: 2 -> "0.01".
func PrecisionFromDecimals(decimals string) *string {
	n, err := strconv.Atoi(strings.TrimSpace(decimals))
	if err != nil || n < 0 {
		return nil
	}
	return format(decimal.New(1, int32(-n)))
}

// ScaleFromStep derives the effective fractional precision from a decimal "step" string.
func ScaleFromStep(step string) int {
	step = strings.TrimSpace(step)
	if step == "" {
		return 0
	}
	idx := strings.IndexByte(step, '.')
	if idx < 0 {
		return 0
	}
	frac := strings.TrimRight(step[idx+1:], "0")
	return len(frac)
}

// FirstNumber extracts the leading numeric token of strings like "10.0 USD".
func FirstNumber(s string) *string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	if _, ok := Parse(fields[0]); !ok {
		return nil
	}
	out := fields[0]
	return &out
}

// Truncate cuts a to places decimals without rounding; the result keeps
// trailing zeros up to places.
func Truncate(a string, places int32) (string, bool) {
	x, ok := Parse(a)
	if !ok {
		return "", false
	}
	return x.Truncate(places).StringFixed(places), true
}

// TruncateTrim is Truncate without the trailing zero padding.
func TruncateTrim(a string, places int32) (string, bool) {
	x, ok := Parse(a)
	if !ok {
		return "", false
	}
	return x.Truncate(places).String(), true
}

// RoundSignificant rounds a half away from zero to digits significant
// figures: RoundSignificant("35000.7", 5) is "35001".
func RoundSignificant(a string, digits int32) (string, bool) {
	x, ok := Parse(a)
	if !ok || digits <= 0 {
		return "", false
	}
	if x.IsZero() {
		return "0", true
	}
	coefficient := int32(len(new(big.Int).Abs(x.Coefficient()).String()))
	leading := coefficient + x.Exponent()
	return x.Round(digits - leading).String(), true
}
