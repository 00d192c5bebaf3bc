package phystype

import (
	"fmt"
	"strings"
)

// NumBaseUnits is the dimensionality of a unit vector: (meter, second, mole,
// ampere, kelvin, candela, kilogram).
const NumBaseUnits = 7

// Base-unit vector indices, in the fixed order the spec mandates.
const (
	Meter = iota
	Second
	Mole
	Ampere
	Kelvin
	Candela
	Kilogram
)

// Unit is a scalar prefix plus a seven-dimensional SI base-unit exponent
// vector. Scalar may be nil (no prefix), in which case GetScalar returns the
// multiplicative identity instead. --disable-scalar-prefixes does not clear
// Scalar; smt.Context.LowerUnit drops the scalar when that flag is set.
type Unit struct {
	Scalar    *Scalar
	Exponents [NumBaseUnits]int
}

// NewUnit builds a Unit. scalar may be nil to omit scalar prefixes entirely.
func NewUnit(scalar *Scalar, exponents [NumBaseUnits]int) Unit {
	return Unit{Scalar: scalar, Exponents: exponents}
}

// GetScalar returns u's scalar prefix, or the identity of mode m if u omits
// scalars (the --disable-scalar-prefixes configuration).
func (u Unit) GetScalar(m Mode) Scalar {
	if u.Scalar != nil {
		return *u.Scalar
	}
	return Identity(m)
}

// Mul multiplies two units: exponents add, scalars multiply.
func Mul(a, b Unit) Unit {
	var out [NumBaseUnits]int
	for i := range out {
		out[i] = a.Exponents[i] + b.Exponents[i]
	}
	return combineScalar(a, b, out, func(s1, s2 Scalar) Scalar { return s1.Mul(s2) })
}

// Div divides two units: exponents subtract, scalars divide.
func Div(a, b Unit) Unit {
	var out [NumBaseUnits]int
	for i := range out {
		out[i] = a.Exponents[i] - b.Exponents[i]
	}
	return combineScalar(a, b, out, func(s1, s2 Scalar) Scalar { return s1.Div(s2) })
}

func combineScalar(a, b Unit, exponents [NumBaseUnits]int, op func(Scalar, Scalar) Scalar) Unit {
	if a.Scalar == nil && b.Scalar == nil {
		return Unit{Scalar: nil, Exponents: exponents}
	}
	mode := Rational
	if a.Scalar != nil {
		mode = a.Scalar.Mode
	} else if b.Scalar != nil {
		mode = b.Scalar.Mode
	}
	s1, s2 := Identity(mode), Identity(mode)
	if a.Scalar != nil {
		s1 = *a.Scalar
	}
	if b.Scalar != nil {
		s2 = *b.Scalar
	}
	result := op(s1, s2)
	return Unit{Scalar: &result, Exponents: exponents}
}

// Dimensionless reports whether all seven base exponents are zero, regardless
// of scalar.
func (u Unit) Dimensionless() bool {
	for _, e := range u.Exponents {
		if e != 0 {
			return false
		}
	}
	return true
}

// Equals reports whether two units have identical exponents and, when both
// carry a scalar, identical scalars.
func (u Unit) Equals(other Unit) bool {
	if u.Exponents != other.Exponents {
		return false
	}
	if (u.Scalar == nil) != (other.Scalar == nil) {
		return false
	}
	if u.Scalar == nil {
		return true
	}
	return *u.Scalar == *other.Scalar
}

func (u Unit) String() string {
	names := []string{"m", "s", "mol", "A", "K", "cd", "kg"}
	var parts []string
	for i, e := range u.Exponents {
		if e != 0 {
			parts = append(parts, fmt.Sprintf("%s^%d", names[i], e))
		}
	}
	scalarStr := ""
	if u.Scalar != nil {
		scalarStr = u.Scalar.String() + "*"
	}
	if len(parts) == 0 {
		return scalarStr + "1"
	}
	return scalarStr + strings.Join(parts, "·")
}
