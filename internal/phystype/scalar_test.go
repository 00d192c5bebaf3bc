package phystype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarRationalMulDivRoundTrip(t *testing.T) {
	a := NewRational(3, 7)
	b := NewRational(5, 11)

	product := a.Mul(b)
	require.Equal(t, 15, product.Numerator)
	require.Equal(t, 77, product.Denominator)

	restored := product.Div(b)
	// Unreduced fractions: (15*11)/(77*5) == 3/7 after cross-multiplication,
	// even though the Go ints themselves aren't literally 3 and 7.
	assert.Equal(t, a.Numerator*restored.Denominator, restored.Numerator*a.Denominator)
}

func TestScalarPowerOfTenMulDivRoundTrip(t *testing.T) {
	a := NewPowerOfTen(-2)
	b := NewPowerOfTen(3)

	product := a.Mul(b)
	assert.Equal(t, 1, product.Exponent)

	restored := product.Div(b)
	assert.Equal(t, a.Exponent, restored.Exponent)
}

func TestUnitMulDivRoundTrip(t *testing.T) {
	meters := NewUnit(ptr(NewRational(1, 1)), [NumBaseUnits]int{Meter: 1})
	seconds := NewUnit(ptr(NewRational(1, 1)), [NumBaseUnits]int{Second: 1})

	speed := Mul(meters, Div(Unit{Exponents: [7]int{}, Scalar: ptr(NewRational(1, 1))}, seconds))
	restored := Div(speed, Div(Unit{Exponents: [7]int{}, Scalar: ptr(NewRational(1, 1))}, seconds))
	assert.True(t, restored.Equals(meters))
}

func ptr[T any](v T) *T { return &v }
