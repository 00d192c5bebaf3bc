package phystype

// Type is the physical type of a program entity: a Unit, a Frames bitmask,
// and a flag marking types that originated from integer/float literals (or
// from products of literals), which are compatible with anything on either
// side of +, -, or =.
type Type struct {
	Unit       Unit
	Frames     Frames
	IsConstant bool
}

// MulTypes combines two types as t1 * t2. The result's frames are required
// equal to the caller's knowledge (the caller must additionally emit that
// equality as a constraint; MulTypes itself just picks t1's frames for the
// result, mirroring the reference implementation's `Type.frame(lhs_type)`).
// IsConstant propagates only through multiplication, matching the open
// question resolved in DESIGN.md: constants remain constant under * and /,
// never under + or -.
func MulTypes(t1, t2 Type) Type {
	return Type{
		Unit:       Mul(t1.Unit, t2.Unit),
		Frames:     t1.Frames,
		IsConstant: t1.IsConstant && t2.IsConstant,
	}
}

// DivTypes combines two types as t1 / t2, analogous to MulTypes.
func DivTypes(t1, t2 Type) Type {
	return Type{
		Unit:       Div(t1.Unit, t2.Unit),
		Frames:     t1.Frames,
		IsConstant: t1.IsConstant && t2.IsConstant,
	}
}

// Dimensionless reports whether t's unit has all seven base exponents zero.
func Dimensionless(t Type) bool {
	return t.Unit.Dimensionless()
}

// TypesEqual reports the *logical* condition under which t1 and t2 are
// considered the same physical type: exact unit+frame equality, or either
// side being a literal-derived constant (which unifies with anything).
// This is evaluated eagerly here only for tests and for the constraint
// generator's own book-keeping; the constraint actually emitted to the
// solver is the symbolic disjunction built in internal/smt so that the
// solver — not this function — resolves cases depending on symbolic
// (not yet concrete) unit/frame values.
func TypesEqual(t1, t2 Type) bool {
	if t1.IsConstant || t2.IsConstant {
		return true
	}
	return t1.Unit.Equals(t2.Unit) && t1.Frames.Equals(t2.Frames)
}
