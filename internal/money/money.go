// Package money provides fixed-precision monetary values backed by integer
// minor units (cents).
//
// All arithmetic in the ledger engine happens on int64 cents, so sums and
// splits never accumulate binary floating-point error. Conversion from
// decimal input happens once, at the boundary, with half-up rounding on the
// third decimal place. Because a cent is the smallest representable unit,
// any residual smaller than one minor unit is exactly zero here.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidAmount is returned when a decimal string cannot be parsed
// into a monetary value.
var ErrInvalidAmount = fmt.Errorf("invalid amount")

// Money is a signed monetary value in minor units (cents).
// The zero value is zero money and ready to use.
type Money struct {
	Cents int64
}

// FromCents wraps a raw cent count.
func FromCents(cents int64) Money {
	return Money{Cents: cents}
}

// FromFloat converts a float amount in major units to Money, rounding
// half away from zero at the cent. Intended for boundary conversion only;
// keep calculations in cents.
func FromFloat(f float64) Money {
	return Money{Cents: int64(math.Round(f * 100))}
}

// Parse converts a decimal string to Money with half-up rounding on the
// third decimal place. Both dot and comma decimal separators are accepted.
// Negative values are rejected; zero is allowed (custom splits may assign
// a zero share).
//
// Examples:
//
//	Parse("12.34") -> 1234 cents
//	Parse("12,345") -> 1235 cents (rounds up)
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Guard the multiplication by 100 below.
	const maxSafe = math.MaxInt64 / 100
	if iv > maxSafe {
		return Money{}, ErrInvalidAmount
	}

	// First two fractional digits are cents; the third decides half-up rounding.
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}

	return Money{Cents: iv*100 + frac}, nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// Cmp compares m against other, returning -1, 0 or 1.
func (m Money) Cmp(other Money) int {
	switch {
	case m.Cents < other.Cents:
		return -1
	case m.Cents > other.Cents:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether m is exactly zero. With integer cents any residual
// below one minor unit is unrepresentable, so this is the tolerance check:
// a balance that rounds below a cent is zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// IsPositive reports whether m is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Cents > 0
}

// IsNegative reports whether m is strictly less than zero.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// Percent returns weight percent of m, rounded half away from zero at the
// cent. Each percentage share is rounded independently; callers must not
// assume a set of shares reconstructs the original amount unless the
// weights sum to 100.
func (m Money) Percent(weight float64) Money {
	return Money{Cents: int64(math.Round(float64(m.Cents) * weight / 100))}
}

// SplitEqual divides m into n shares whose sum reconstructs m exactly.
// The base share is the floor division; the remainder is apportioned one
// cent at a time to the first shares. Callers apply the shares in
// participant order so the distribution is deterministic.
// n must be positive.
func (m Money) SplitEqual(n int) []Money {
	base := m.Cents / int64(n)
	rem := m.Cents % int64(n)
	shares := make([]Money, n)
	for i := range shares {
		shares[i] = Money{Cents: base}
		if int64(i) < rem {
			shares[i].Cents++
		}
	}
	return shares
}

// Float returns the value in major units as a float64. For display and
// percentage math only, never for ledger arithmetic.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// String formats m as a plain decimal with two fractional digits, e.g.
// "12.34" or "-0.50". No currency symbol; formatting with symbols and
// locales is a presentation concern outside the engine.
func (m Money) String() string {
	c := m.Cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
