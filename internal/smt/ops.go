package smt

// The constraint generator (internal/genconstraints) builds expressions out
// of Context/Engine primitives but must never import the engine directly;
// these thin passthroughs are its entire surface onto boolean combinators
// and named constants.

// NamedType returns (declaring if necessary) a Type-sorted constant.
func (c *Context) NamedType(name string) Term { return c.engine.TypeConst(name) }

// NamedUnit returns a Unit-sorted constant.
func (c *Context) NamedUnit(name string) Term { return c.engine.UnitConst(name) }

// NamedFrames returns a Frames-sorted constant.
func (c *Context) NamedFrames(name string) Term { return c.engine.FramesConst(name) }

// MakeType constructs a Type value from its three fields.
func (c *Context) MakeType(unit, frames Term, isConstant BoolTerm) Term {
	return c.engine.MakeType(unit, frames, isConstant)
}

// UnitOf/FrameOf/IsConstantOf expose Type's field accessors.
func (c *Context) UnitOf(t Term) Term        { return c.engine.UnitOf(t) }
func (c *Context) FrameOf(t Term) Term       { return c.engine.FrameOf(t) }
func (c *Context) IsConstantOf(t Term) BoolTerm { return c.engine.IsConstantOf(t) }

// Eq/And/Or/Not/BoolVal expose the boolean combinators constraints are built
// from.
func (c *Context) Eq(a, b Term) BoolTerm        { return c.engine.Eq(a, b) }
func (c *Context) And(ts ...BoolTerm) BoolTerm  { return c.engine.And(ts...) }
func (c *Context) Or(ts ...BoolTerm) BoolTerm   { return c.engine.Or(ts...) }
func (c *Context) Not(t BoolTerm) BoolTerm      { return c.engine.Not(t) }
func (c *Context) BoolVal(v bool) BoolTerm      { return c.engine.BoolVal(v) }

// ArgType applies the uninterpreted ArgType(fn, index) function used to type
// a callee's formal parameters.
func (c *Context) ArgType(fn string, index int) Term { return c.engine.ArgType(fn, index) }

// FreshFrames returns a new unconstrained Frames-sorted constant.
func (c *Context) FreshFrames(hint string) Term { return c.engine.FreshFrames(hint) }
