// Package money provides the quantity and cash primitives for the simulator:
// a fixed-point Size for asset quantities and a multi-currency Wallet with
// pluggable exchange rates.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// sizeFraction is the number of fractional digits a Size can hold. Input with
// more digits is silently truncated towards zero; this is a documented
// precision boundary, not an error.
const sizeFraction = 8

// sizeScale is 10^sizeFraction.
const sizeScale = 100_000_000

// Size is a signed fixed-point quantity with sizeFraction fractional digits,
// stored as a scaled int64. Arithmetic is exact within that precision, which
// keeps position bookkeeping free of float drift in the hot matching loop.
// The zero value is a valid zero quantity.
type Size struct {
	value int64
}

// NewSize converts a float quantity, truncating anything beyond the supported
// precision towards zero.
func NewSize(v float64) Size {
	// The small epsilon absorbs binary-float representation noise without
	// defeating the truncation of genuinely over-precise input.
	return Size{value: int64(math.Trunc(v*sizeScale + math.Copysign(1e-3, v)))}
}

// ParseSize parses a decimal string such as "-10.5". Digits beyond the
// supported precision are truncated, matching NewSize.
func ParseSize(s string) (Size, error) {
	whole, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(whole, "-")

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Size{}, fmt.Errorf("money: parse size %q: %w", s, err)
	}

	v := w * sizeScale
	if frac != "" {
		if len(frac) > sizeFraction {
			frac = frac[:sizeFraction]
		}
		f, err := strconv.ParseUint(frac+strings.Repeat("0", sizeFraction-len(frac)), 10, 64)
		if err != nil {
			return Size{}, fmt.Errorf("money: parse size %q: %w", s, err)
		}
		if neg {
			v -= int64(f)
		} else {
			v += int64(f)
		}
	}
	return Size{value: v}, nil
}

// Sizes is a convenience constructor for whole quantities.
func Sizes(n int64) Size {
	return Size{value: n * sizeScale}
}

func (s Size) Add(o Size) Size { return Size{value: s.value + o.value} }
func (s Size) Sub(o Size) Size { return Size{value: s.value - o.value} }
func (s Size) Neg() Size       { return Size{value: -s.value} }

// Mul multiplies two sizes, truncating the result to the supported precision.
func (s Size) Mul(o Size) Size {
	return Size{value: int64(math.Trunc(s.Float64() * o.Float64() * sizeScale))}
}

// Div divides s by o, truncating the result to the supported precision.
func (s Size) Div(o Size) Size {
	return Size{value: int64(math.Trunc(s.Float64() / o.Float64() * sizeScale))}
}

// Abs returns the absolute quantity.
func (s Size) Abs() Size {
	if s.value < 0 {
		return Size{value: -s.value}
	}
	return s
}

func (s Size) IsZero() bool     { return s.value == 0 }
func (s Size) IsPositive() bool { return s.value > 0 }
func (s Size) IsNegative() bool { return s.value < 0 }

// Sign returns -1, 0 or +1.
func (s Size) Sign() int {
	switch {
	case s.value > 0:
		return 1
	case s.value < 0:
		return -1
	default:
		return 0
	}
}

// Float64 returns the quantity as a float. Exact for quantities a trading
// simulation realistically encounters.
func (s Size) Float64() float64 {
	return float64(s.value) / sizeScale
}

func (s Size) String() string {
	v := s.value
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / sizeScale
	frac := v % sizeScale
	if frac == 0 {
		return sign + strconv.FormatInt(whole, 10)
	}
	f := strconv.FormatInt(frac, 10)
	f = strings.Repeat("0", sizeFraction-len(f)) + f
	f = strings.TrimRight(f, "0")
	return fmt.Sprintf("%s%d.%s", sign, whole, f)
}
