package smt

import "github.com/sa4u-go/sa4u/internal/phystype"

// LowerUnit builds a concrete Unit-sorted term from a phystype.Unit, used
// when a literal value or a prior-knowledge table entry fixes a unit
// exactly (as opposed to the abstract per-variable Unit consts that make up
// most of an analysis).
func (c *Context) LowerUnit(u phystype.Unit) Term {
	exps := make([]Term, phystype.NumBaseUnits)
	for i := 0; i < phystype.NumBaseUnits; i++ {
		exps[i] = c.engine.IntVal(u.Exponents[i])
	}
	if !c.scalarsOn {
		return c.engine.MakeUnit(nil, exps)
	}
	s := u.GetScalar(c.mode)
	return c.engine.MakeUnit(c.lowerScalar(s), exps)
}

// lowerScalar converts s into this Context's mode before lowering it, rather
// than trusting s.Mode to already agree with c.mode: table- and
// prior-knowledge-sourced scalars (knowledge.UnitByName and friends) are
// always built as Rational fractions regardless of --power-of-10, so under
// PowerOfTen mode a Rational-mode scalar is converted via FromFraction
// first. Without this, every table unit read its never-set Exponent field
// as 0, making cm indistinguishable from m whenever --power-of-10 was
// passed.
func (c *Context) lowerScalar(s phystype.Scalar) Term {
	if c.mode == phystype.PowerOfTen {
		if s.Mode != phystype.PowerOfTen {
			s = phystype.FromFraction(phystype.PowerOfTen, s.Numerator, s.Denominator)
		}
		return c.engine.IntVal(s.Exponent)
	}
	return c.engine.Rational(s.Numerator, s.Denominator)
}

// LowerFrames builds a concrete Frames-sorted term from a phystype.Frames
// bitmask.
func (c *Context) LowerFrames(f phystype.Frames) Term {
	bits := make([]BoolTerm, phystype.NumFrames)
	for i := 0; i < phystype.NumFrames; i++ {
		bits[i] = c.engine.BoolVal(f[i])
	}
	return c.engine.MakeFrames(bits)
}

// LiteralType builds the Type term for an integer/float literal: dimension-
// less unit carrying the literal's scalar, a fresh (unconstrained) frame,
// and is_constant = true — mirroring type_expr's INTEGER_LITERAL/
// FLOATING_LITERAL handling in the reference implementation.
func (c *Context) LiteralType(value int) Term {
	scalar := phystype.FromLiteral(c.mode, value)
	unit := c.LowerUnit(phystype.NewUnit(&scalar, [phystype.NumBaseUnits]int{}))
	frames := c.engine.FreshFrames("literal_frames")
	return c.engine.MakeType(unit, frames, c.engine.BoolVal(true))
}

// Dimensionless asserts that every base exponent of t's unit is zero,
// mirroring is_dimensionless.
func (c *Context) Dimensionless(t Term) BoolTerm {
	unit := c.engine.UnitOf(t)
	var terms []BoolTerm
	for i := 0; i < phystype.NumBaseUnits; i++ {
		terms = append(terms, c.engine.IntEq(c.engine.ExponentOf(unit, i), c.engine.IntVal(0)))
	}
	return c.engine.And(terms...)
}

// TypesEqual mirrors types_equal: unit and frame equality, tolerated by
// either side being constant.
func (c *Context) TypesEqual(t1, t2 Term) BoolTerm {
	return c.engine.Or(
		c.engine.And(
			c.engine.Eq(c.engine.UnitOf(t1), c.engine.UnitOf(t2)),
			c.engine.Eq(c.engine.FrameOf(t1), c.engine.FrameOf(t2)),
		),
		c.engine.IsConstantOf(t1),
		c.engine.IsConstantOf(t2),
	)
}

// AssignmentCompatible is the disjunction emitted for `=` assignments:
// either the two types are equal,
// or both sides happen to be dimensionless (so base-unit mismatches in the
// symbolic representation are tolerated, matching the reference
// implementation's comment that this "tolerat[es] dimensionless-to-
// dimensionless even when exponents disagree in the symbolic
// representation").
func (c *Context) AssignmentCompatible(lhs, rhs Term) BoolTerm {
	return c.engine.Or(
		c.TypesEqual(lhs, rhs),
		c.engine.And(c.Dimensionless(lhs), c.Dimensionless(rhs)),
	)
}

// MulType builds the Type of lhs*rhs: a fresh product unit (exponents add,
// scalars multiply), lhs's frames, and is_constant = both sides constant.
// The caller is responsible for separately asserting FramesEqual(lhs, rhs).
func (c *Context) MulType(lhs, rhs Term) Term {
	return c.combineType(lhs, rhs, true)
}

// DivType is MulType's quotient analogue (exponents subtract, scalars
// divide).
func (c *Context) DivType(lhs, rhs Term) Term {
	return c.combineType(lhs, rhs, false)
}

func (c *Context) combineType(lhs, rhs Term, multiply bool) Term {
	lu, ru := c.engine.UnitOf(lhs), c.engine.UnitOf(rhs)
	exps := make([]Term, phystype.NumBaseUnits)
	for i := 0; i < phystype.NumBaseUnits; i++ {
		if multiply {
			exps[i] = c.engine.Add(c.engine.ExponentOf(lu, i), c.engine.ExponentOf(ru, i))
		} else {
			exps[i] = c.engine.Sub(c.engine.ExponentOf(lu, i), c.engine.ExponentOf(ru, i))
		}
	}
	var scalar Term
	if c.scalarsOn {
		ls, rs := c.engine.ScalarOf(lu), c.engine.ScalarOf(ru)
		// Power-of-ten scalars are exponents: multiplying adds them and
		// dividing subtracts them.
		switch {
		case c.mode == phystype.PowerOfTen && multiply:
			scalar = c.engine.Add(ls, rs)
		case c.mode == phystype.PowerOfTen:
			scalar = c.engine.Sub(ls, rs)
		case multiply:
			scalar = c.engine.ScalarMul(ls, rs)
		default:
			scalar = c.engine.ScalarDiv(ls, rs)
		}
	}
	unit := c.engine.MakeUnit(scalar, exps)
	return c.engine.MakeType(unit, c.engine.FrameOf(lhs), c.engine.And(c.engine.IsConstantOf(lhs), c.engine.IsConstantOf(rhs)))
}

// FramesEqual asserts lhs and rhs share a Frames value, the constraint
// emitted for `*`/`/` before MulType/DivType's result is used.
func (c *Context) FramesEqual(lhs, rhs Term) BoolTerm {
	return c.engine.Eq(c.engine.FrameOf(lhs), c.engine.FrameOf(rhs))
}

// InvertFrames returns a fresh Frames constant asserted to be the bitwise
// complement of frame, mirroring invert_frame: used when a then-branch of an
// if-guarded frame check contains a return, so the refinement is known to
// hold for the rest of the function.
func (c *Context) InvertFrames(frame Term) (Term, BoolTerm) {
	fresh := c.engine.FreshFrames("inverted_frame")
	var bits []BoolTerm
	for i := 0; i < phystype.NumFrames; i++ {
		bits = append(bits, c.engine.Not(c.engine.Eq(c.engine.FrameBitOf(fresh, i), c.engine.FrameBitOf(frame, i))))
	}
	return fresh, c.engine.And(bits...)
}
