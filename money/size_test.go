package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeArithmetic(t *testing.T) {
	a := NewSize(10.5)
	b := NewSize(2.25)

	assert.Equal(t, "12.75", a.Add(b).String())
	assert.Equal(t, "8.25", a.Sub(b).String())
	assert.Equal(t, "-10.5", a.Neg().String())
	assert.Equal(t, "23.625", a.Mul(b).String())
	assert.InDelta(t, 4.6666, a.Div(b).Float64(), 1e-4)
}

func TestSizeTruncatesExcessPrecision(t *testing.T) {
	// 12 fractional digits do not round-trip: everything beyond the supported
	// precision is dropped, not rounded and not rejected.
	s, err := ParseSize("1.123456789012")
	require.NoError(t, err)
	assert.Equal(t, "1.12345678", s.String())

	assert.Equal(t, "0.00000001", NewSize(0.000000019).String())
}

func TestSizeExactWithinPrecision(t *testing.T) {
	// Classic float trap: 0.1 + 0.2 is exact in fixed point.
	sum := NewSize(0.1).Add(NewSize(0.2))
	assert.Equal(t, "0.3", sum.String())
	assert.True(t, sum.Sub(NewSize(0.3)).IsZero())
}

func TestParseSize(t *testing.T) {
	cases := map[string]string{
		"42":     "42",
		"-10.5":  "-10.5",
		"-0.25":  "-0.25",
		"0.0001": "0.0001",
	}
	for in, want := range cases {
		s, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, s.String())
	}

	_, err := ParseSize("abc")
	require.Error(t, err)
}

func TestSizeSigns(t *testing.T) {
	assert.Equal(t, 1, Sizes(3).Sign())
	assert.Equal(t, -1, Sizes(-3).Sign())
	assert.Equal(t, 0, Size{}.Sign())
	assert.True(t, Sizes(-3).IsNegative())
	assert.Equal(t, Sizes(3), Sizes(-3).Abs())
}
