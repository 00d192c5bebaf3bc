// Package smt lowers phystype values into SMT assertions and drives the
// underlying solver. The solver itself — datatypes, uninterpreted functions,
// assumption-based checking with unsat-core extraction — is an external
// collaborator (github.com/aclements/go-z3); this package is the only place
// in sa4u that imports it, so the rest of the analyzer works purely in terms
// of phystype.Type values and opaque Labels.
package smt

import (
	"time"

	"github.com/sa4u-go/sa4u/internal/phystype"
)

// Status is the result of a Check call.
type Status int

const (
	Unsat Status = iota
	Sat
	Unknown
)

// Label names one emitted constraint (an "assumption literal" in solver
// terms). Labels are what an unsat core is made of, and what the constraint
// generator maps back to a source location.
type Label string

// Context owns one SMT solver instance together with the Type/Unit/Frames/
// Rational datatypes and the ArgType uninterpreted function declared over
// them. Each translation-unit worker owns exactly one Context; the spec
// requires that workers never share mutable SMT state.
type Context struct {
	mode      phystype.Mode
	scalarsOn bool
	engine    Engine
}

// Engine is the thin surface this package needs from an SMT solver. A real
// implementation backs it with github.com/aclements/go-z3's Context/Solver
// types; tests back it with an in-memory fake that just records assertions
// and lets a caller dictate the Check result, since exercising a live Z3
// process is out of scope for unit tests.
type Engine interface {
	// DeclareBool returns (creating if necessary) a named boolean constant,
	// used for assumption-literal labels.
	DeclareBool(name string) BoolTerm
	// BoolVal returns the literal true/false boolean term, used for concrete
	// Frames bits and a Type's is_constant field when the value is known
	// outright (as opposed to symbolic).
	BoolVal(v bool) BoolTerm
	// Eq returns a boolean term asserting two terms are equal.
	Eq(a, b Term) BoolTerm
	// Or/And combine boolean terms.
	Or(terms ...BoolTerm) BoolTerm
	And(terms ...BoolTerm) BoolTerm
	Not(t BoolTerm) BoolTerm
	// Implies builds `premise -> consequence`.
	Implies(premise, consequence BoolTerm) BoolTerm
	// Assert adds a (possibly implication-wrapped) assertion to the solver.
	Assert(t BoolTerm)
	// IntConst/IntVal build integer terms for unit exponents and rationals.
	IntConst(name string) Term
	IntVal(v int) Term
	// Rational builds a (numerator, denominator) Rational-sorted term.
	Rational(num, den int) Term
	// TypeConst/UnitConst/FramesConst build named constants of the
	// corresponding declared datatype sort.
	TypeConst(name string) Term
	UnitConst(name string) Term
	FramesConst(name string) Term
	// MakeType/MakeUnit/MakeFrames construct datatype values from fields.
	MakeType(unit, frames Term, isConstant BoolTerm) Term
	MakeUnit(scalar Term, exponents []Term) Term
	MakeFrames(bits []BoolTerm) Term
	// ArgType applies the uninterpreted ArgType(fn, index) function.
	ArgType(fn string, index int) Term
	// FreshFrames returns a new, unconstrained Frames-sorted constant.
	FreshFrames(hint string) Term
	// UnitOf/FrameOf/IsConstantOf are the Type datatype's field accessors.
	UnitOf(t Term) Term
	FrameOf(t Term) Term
	IsConstantOf(t Term) BoolTerm
	// ScalarOf/ExponentOf are the Unit datatype's field accessors.
	ScalarOf(u Term) Term
	ExponentOf(u Term, dim int) Term
	// FrameBitOf is the Frames datatype's i-th boolean field accessor.
	FrameBitOf(f Term, i int) BoolTerm
	// Add/Sub combine integer terms (unit exponents).
	Add(a, b Term) Term
	Sub(a, b Term) Term
	// ScalarMul/ScalarDiv multiply/divide two rational scalar terms — the
	// Go analogue of scalar_multiply/scalar_divide. Context uses them in
	// rational mode only; power-of-ten exponents are combined with Add/Sub.
	ScalarMul(a, b Term) Term
	ScalarDiv(a, b Term) Term
	// IntEq compares two integer-sorted terms.
	IntEq(a, b Term) BoolTerm
	// SetOptions configures unsat-core tracking, thread count, and timeout.
	SetOptions(unsatCore bool, threads int, timeout time.Duration)
	// Check runs the solver against the given assumption labels.
	Check(assumptions []Label) (Status, error)
	// UnsatCore returns the minimal subset of assumptions proving unsat.
	UnsatCore() []Label
	// ToSMTLIB serializes the current assertion set as SMT-LIB2 text, for
	// per-TU cache persistence.
	ToSMTLIB() string
	// LoadSMTLIB merges previously-serialized SMT-LIB2 text into this engine.
	LoadSMTLIB(text string) error
}

// Term is an opaque handle to a value of one of the declared sorts.
type Term interface{ isTerm() }

// BoolTerm is an opaque handle to a boolean-sorted term.
type BoolTerm interface {
	Term
	isBool()
}

// NewContext sets engine's solver options (unsat-core tracking, 4 threads,
// 5-minute timeout) and returns a Context ready to accept constraints. mode and scalarsOn fix
// how Unit values are built for the lifetime of this Context, matching the
// reference implementation's global --power-of-10 / --disable-scalar-prefixes
// flags (set once per run, never per-TU).
func NewContext(engine Engine, mode phystype.Mode, scalarsOn bool) *Context {
	engine.SetOptions(true, 4, 5*time.Minute)
	return &Context{mode: mode, scalarsOn: scalarsOn, engine: engine}
}

// AssertAndTrack is the Go analogue of `assert_and_check`: it declares a
// boolean constant named msg, asserts `msg -> stmt`, and returns msg as a
// fresh assumption literal for the caller's per-TU assumption list.
func (c *Context) AssertAndTrack(stmt BoolTerm, msg string) Label {
	b := c.engine.DeclareBool(msg)
	c.engine.Assert(c.engine.Implies(b, stmt))
	return Label(msg)
}

// Check runs the underlying solver against assumptions, the global,
// all-translation-units-merged analogue of `solver.check(*tu_assertions)`.
func (c *Context) Check(assumptions []Label) (Status, error) {
	return c.engine.Check(assumptions)
}

// UnsatCore returns the minimal failing assumption subset of the most recent
// Check call, mirroring `solver.unsat_core()`.
func (c *Context) UnsatCore() []Label { return c.engine.UnsatCore() }

// ToSMTLIB serializes every assertion made against this Context so far,
// the per-TU cache payload's `Solver` field.
func (c *Context) ToSMTLIB() string { return c.engine.ToSMTLIB() }

// LoadSMTLIB merges previously-serialized SMT-LIB2 text (one cached TU's
// solver) into this Context, mirroring `get_z3_assertions_from_stu`'s
// `Solver().from_string(stu.solver)` step.
func (c *Context) LoadSMTLIB(text string) error { return c.engine.LoadSMTLIB(text) }

// DeclareBool re-declares (or looks up) a named boolean constant directly,
// used to reconstruct a cached TU's assumption-label constants in the
// global Context's own sort space before passing them to Check.
func (c *Context) DeclareBool(name string) BoolTerm { return c.engine.DeclareBool(name) }
