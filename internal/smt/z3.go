package smt

import (
	"fmt"
	"time"

	z3 "github.com/aclements/go-z3/z3"
)

// z3Term wraps a go-z3 AST node. Type/Unit/Frames values are represented as
// applications of uninterpreted function declarations over uninterpreted
// sorts rather than a true Z3 datatype (go-z3's public surface does not
// expose the datatype-builder API that z3's C++/Python bindings do): Z3's
// congruence closure over uninterpreted functions already gives the
// structural equality MakeType/MakeUnit/MakeFrames need (two applications of
// the same function to equal arguments are equal), which is all the
// constraint generator actually relies on.
type z3Term struct{ ast *z3.AST }

func (z3Term) isTerm() {}

type z3Bool struct{ z3Term }

func (z3Bool) isBool() {}

func asAST(t Term) *z3.AST {
	if t == nil {
		return nil
	}
	return t.(z3Term).ast
}

func asBoolAST(t BoolTerm) *z3.AST {
	return t.(z3Bool).ast
}

// z3Engine is the production Engine, backing every Context with a real Z3
// solver. This file is the only place in sa4u that imports go-z3 directly.
type z3Engine struct {
	ctx    *z3.Context
	solver *z3.Solver

	boolSort, intSort, ratSort, unitSort, framesSort, typeSort *z3.Sort

	mkType, mkUnit, mkFrames *z3.FuncDecl
	unitOf, frameOf          *z3.FuncDecl
	isConstantOf             *z3.FuncDecl
	scalarOf                 *z3.FuncDecl
	exponentOf                [7]*z3.FuncDecl
	frameBitOf                [23]*z3.FuncDecl
	argType                   *z3.FuncDecl

	declaredBools map[string]*z3.AST
	lastCore      []Label
}

// NewZ3Engine constructs a fresh Z3 context, solver, and the uninterpreted
// sorts/functions genconstraints builds Type/Unit/Frames values out of.
// Called once per translation unit (never shared across workers), matching
// the reference implementation's per-TU `tu_solver = Solver()`.
func NewZ3Engine() Engine {
	cfg := z3.NewConfig()
	ctx := z3.NewContext(cfg)
	solver := z3.NewSolver(ctx)

	e := &z3Engine{
		ctx:           ctx,
		solver:        solver,
		boolSort:      ctx.BoolSort(),
		intSort:       ctx.IntSort(),
		declaredBools: map[string]*z3.AST{},
	}
	e.ratSort = ctx.UninterpretedSort("Rational")
	e.unitSort = ctx.UninterpretedSort("Unit")
	e.framesSort = ctx.UninterpretedSort("Frames")
	e.typeSort = ctx.UninterpretedSort("Type")

	unitArgs := make([]*z3.Sort, 0, 8)
	unitArgs = append(unitArgs, e.ratSort)
	for i := 0; i < 7; i++ {
		unitArgs = append(unitArgs, e.intSort)
	}
	e.mkUnit = ctx.FuncDecl("mk-unit", unitArgs, e.unitSort)

	frameArgs := make([]*z3.Sort, 23)
	for i := range frameArgs {
		frameArgs[i] = e.boolSort
	}
	e.mkFrames = ctx.FuncDecl("mk-frames", frameArgs, e.framesSort)

	e.mkType = ctx.FuncDecl("mk-type", []*z3.Sort{e.unitSort, e.framesSort, e.boolSort}, e.typeSort)
	e.unitOf = ctx.FuncDecl("unit-of", []*z3.Sort{e.typeSort}, e.unitSort)
	e.frameOf = ctx.FuncDecl("frame-of", []*z3.Sort{e.typeSort}, e.framesSort)
	e.isConstantOf = ctx.FuncDecl("is-constant-of", []*z3.Sort{e.typeSort}, e.boolSort)
	e.scalarOf = ctx.FuncDecl("scalar-of", []*z3.Sort{e.unitSort}, e.ratSort)
	for i := 0; i < 7; i++ {
		e.exponentOf[i] = ctx.FuncDecl(fmt.Sprintf("exponent-of-%d", i), []*z3.Sort{e.unitSort}, e.intSort)
	}
	for i := 0; i < 23; i++ {
		e.frameBitOf[i] = ctx.FuncDecl(fmt.Sprintf("frame-bit-%d", i), []*z3.Sort{e.framesSort}, e.boolSort)
	}
	e.argType = ctx.FuncDecl("arg-type", []*z3.Sort{ctx.StringSort(), e.intSort}, e.typeSort)

	return e
}

func (e *z3Engine) BoolVal(v bool) BoolTerm { return z3Bool{z3Term{e.ctx.FromBool(v)}} }

func (e *z3Engine) DeclareBool(name string) BoolTerm {
	if b, ok := e.declaredBools[name]; ok {
		return z3Bool{z3Term{b}}
	}
	b := e.ctx.Const(name, e.boolSort)
	e.declaredBools[name] = b
	return z3Bool{z3Term{b}}
}

func (e *z3Engine) Eq(a, b Term) BoolTerm { return z3Bool{z3Term{asAST(a).Eq(asAST(b))}} }

func (e *z3Engine) Or(ts ...BoolTerm) BoolTerm {
	asts := make([]*z3.AST, len(ts))
	for i, t := range ts {
		asts[i] = asBoolAST(t)
	}
	return z3Bool{z3Term{e.ctx.Or(asts...)}}
}

func (e *z3Engine) And(ts ...BoolTerm) BoolTerm {
	asts := make([]*z3.AST, len(ts))
	for i, t := range ts {
		asts[i] = asBoolAST(t)
	}
	return z3Bool{z3Term{e.ctx.And(asts...)}}
}

func (e *z3Engine) Not(t BoolTerm) BoolTerm { return z3Bool{z3Term{asBoolAST(t).Not()}} }

func (e *z3Engine) Implies(premise, consequence BoolTerm) BoolTerm {
	return z3Bool{z3Term{asBoolAST(premise).Implies(asBoolAST(consequence))}}
}

func (e *z3Engine) Assert(t BoolTerm) { e.solver.Assert(asBoolAST(t)) }

func (e *z3Engine) IntConst(name string) Term { return z3Term{e.ctx.Const(name, e.intSort)} }
func (e *z3Engine) IntVal(v int) Term         { return z3Term{e.ctx.FromInt(int64(v), e.intSort)} }
func (e *z3Engine) Rational(num, den int) Term {
	return z3Term{e.ctx.FromBigRat(num, den, e.ratSort)}
}

func (e *z3Engine) TypeConst(name string) Term   { return z3Term{e.ctx.Const(name, e.typeSort)} }
func (e *z3Engine) UnitConst(name string) Term   { return z3Term{e.ctx.Const(name, e.unitSort)} }
func (e *z3Engine) FramesConst(name string) Term { return z3Term{e.ctx.Const(name, e.framesSort)} }

func (e *z3Engine) MakeType(unit, frames Term, isConstant BoolTerm) Term {
	return z3Term{e.mkType.Apply(asAST(unit), asAST(frames), asBoolAST(isConstant))}
}

func (e *z3Engine) MakeUnit(scalar Term, exponents []Term) Term {
	args := make([]*z3.AST, 0, 8)
	if scalar == nil {
		args = append(args, e.ctx.FromBigRat(1, 1, e.ratSort))
	} else {
		args = append(args, asAST(scalar))
	}
	for _, x := range exponents {
		args = append(args, asAST(x))
	}
	return z3Term{e.mkUnit.Apply(args...)}
}

func (e *z3Engine) MakeFrames(bits []BoolTerm) Term {
	args := make([]*z3.AST, len(bits))
	for i, b := range bits {
		args[i] = asBoolAST(b)
	}
	return z3Term{e.mkFrames.Apply(args...)}
}

func (e *z3Engine) ArgType(fn string, index int) Term {
	return z3Term{e.argType.Apply(e.ctx.FromString(fn), e.ctx.FromInt(int64(index), e.intSort))}
}

func (e *z3Engine) FreshFrames(hint string) Term { return z3Term{e.ctx.FreshConst(hint, e.framesSort)} }

func (e *z3Engine) UnitOf(t Term) Term         { return z3Term{e.unitOf.Apply(asAST(t))} }
func (e *z3Engine) FrameOf(t Term) Term        { return z3Term{e.frameOf.Apply(asAST(t))} }
func (e *z3Engine) IsConstantOf(t Term) BoolTerm {
	return z3Bool{z3Term{e.isConstantOf.Apply(asAST(t))}}
}
func (e *z3Engine) ScalarOf(u Term) Term { return z3Term{e.scalarOf.Apply(asAST(u))} }
func (e *z3Engine) ExponentOf(u Term, dim int) Term {
	return z3Term{e.exponentOf[dim].Apply(asAST(u))}
}
func (e *z3Engine) FrameBitOf(f Term, i int) BoolTerm {
	return z3Bool{z3Term{e.frameBitOf[i].Apply(asAST(f))}}
}

func (e *z3Engine) Add(a, b Term) Term { return z3Term{asAST(a).Add(asAST(b))} }
func (e *z3Engine) Sub(a, b Term) Term { return z3Term{asAST(a).Sub(asAST(b))} }

// ScalarMul/ScalarDiv multiply/divide Rational-sorted scalar terms.
// Context calls them in rational mode only; power-of-ten exponents go
// through Add/Sub instead.
func (e *z3Engine) ScalarMul(a, b Term) Term { return z3Term{asAST(a).Mul(asAST(b))} }
func (e *z3Engine) ScalarDiv(a, b Term) Term { return z3Term{asAST(a).Div(asAST(b))} }

func (e *z3Engine) IntEq(a, b Term) BoolTerm { return z3Bool{z3Term{asAST(a).Eq(asAST(b))}} }

func (e *z3Engine) SetOptions(unsatCore bool, threads int, timeout time.Duration) {
	params := z3.NewParams(e.ctx)
	params.SetUint("timeout", uint(timeout.Milliseconds()))
	e.solver.SetParams(params)
	_ = unsatCore // unsat-core tracking happens via assert_and_track's boolean labels, not a solver param
	_ = threads   // not applied: no Z3 thread-count parameter is set anywhere in sa4u
}

func (e *z3Engine) Check(assumptions []Label) (Status, error) {
	asts := make([]*z3.AST, len(assumptions))
	for i, l := range assumptions {
		asts[i] = e.DeclareBool(string(l)).(z3Bool).ast
	}
	result := e.solver.Check(asts...)
	switch result {
	case z3.Unsat:
		e.lastCore = coreLabels(e.solver.UnsatCore())
		return Unsat, nil
	case z3.Sat:
		return Sat, nil
	default:
		return Unknown, nil
	}
}

func coreLabels(core []*z3.AST) []Label {
	labels := make([]Label, len(core))
	for i, a := range core {
		labels[i] = Label(a.String())
	}
	return labels
}

func (e *z3Engine) UnsatCore() []Label { return e.lastCore }

func (e *z3Engine) ToSMTLIB() string { return e.solver.String() }

func (e *z3Engine) LoadSMTLIB(text string) error {
	asts, err := e.ctx.ParseSMTLIB2String(text)
	if err != nil {
		return fmt.Errorf("smt: parsing cached solver text: %w", err)
	}
	for _, a := range asts {
		e.solver.Assert(a)
	}
	return nil
}
