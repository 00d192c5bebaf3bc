package genconstraints

import (
	"bytes"
	"testing"
	"time"

	"github.com/sa4u-go/sa4u/internal/cxx"
	"github.com/sa4u-go/sa4u/internal/diagnostics"
	"github.com/sa4u-go/sa4u/internal/knowledge"
	"github.com/sa4u-go/sa4u/internal/phystype"
	"github.com/sa4u-go/sa4u/internal/smt"
	"github.com/sa4u-go/sa4u/internal/srcloc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCursor is a hand-built AST node, the same pattern internal/cxx tests
// itself with: good enough to exercise walker/type_expr dispatch without a
// live libclang parse.
type fakeCursor struct {
	kind       cxx.Kind
	spelling   string
	typ        fakeType
	loc        srcloc.Pos
	linkage    cxx.Linkage
	lexical    *fakeCursor
	semantic   *fakeCursor
	referenced *fakeCursor
	children   []cxx.Cursor
	tokens     []string
	arguments  []cxx.Cursor
	intVal     int64
	floatVal   float64
}

func (c *fakeCursor) Kind() cxx.Kind            { return c.kind }
func (c *fakeCursor) Spelling() string          { return c.spelling }
func (c *fakeCursor) USR() string                { return c.spelling }
func (c *fakeCursor) Type() cxx.Type             { return c.typ }
func (c *fakeCursor) Location() srcloc.Pos       { return c.loc }
func (c *fakeCursor) Linkage() cxx.Linkage       { return c.linkage }
func (c *fakeCursor) Children() []cxx.Cursor     { return c.children }
func (c *fakeCursor) Tokens() []string           { return c.tokens }
func (c *fakeCursor) Arguments() []cxx.Cursor    { return c.arguments }
func (c *fakeCursor) IntegerLiteral() int64      { return c.intVal }
func (c *fakeCursor) FloatingLiteral() float64   { return c.floatVal }
func (c *fakeCursor) Equal(other cxx.Cursor) bool {
	o, ok := other.(*fakeCursor)
	return ok && o == c
}
func (c *fakeCursor) LexicalParent() (cxx.Cursor, bool) {
	if c.lexical == nil {
		return nil, false
	}
	return c.lexical, true
}
func (c *fakeCursor) SemanticParent() (cxx.Cursor, bool) {
	if c.semantic == nil {
		return nil, false
	}
	return c.semantic, true
}
func (c *fakeCursor) Referenced() (cxx.Cursor, bool) {
	if c.referenced == nil {
		return nil, false
	}
	return c.referenced, true
}

type fakeType struct {
	kind     cxx.TypeKind
	spelling string
}

func (t fakeType) Kind() cxx.TypeKind           { return t.kind }
func (t fakeType) Spelling() string             { return t.spelling }
func (t fakeType) Pointee() cxx.Type             { return fakeType{} }
func (t fakeType) NamedType() cxx.Type           { return fakeType{} }
func (t fakeType) IsConstQualified() bool        { return false }
func (t fakeType) IsRestrictQualified() bool     { return false }
func (t fakeType) IsVolatileQualified() bool     { return false }

// fakeEngine mirrors internal/smt's own test fake: every combinator just
// stringifies its arguments, enough to assert the walker wires the right
// constraints together without a live Z3 process.
func term(repr string) smt.Term         { return termImpl{repr} }
func boolean(repr string) smt.BoolTerm  { return boolImpl{termImpl{repr}} }

type termImpl struct{ repr string }

func (termImpl) isTerm() {}

type boolImpl struct{ termImpl }

func (boolImpl) isBool() {}

func repr(t smt.Term) string {
	if t == nil {
		return "<nil>"
	}
	if b, ok := t.(boolImpl); ok {
		return b.repr
	}
	return t.(termImpl).repr
}

type fakeEngine struct {
	asserted []smt.BoolTerm
	declared map[string]smt.BoolTerm
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{declared: map[string]smt.BoolTerm{}}
}

func (e *fakeEngine) BoolVal(v bool) smt.BoolTerm {
	if v {
		return boolean("true")
	}
	return boolean("false")
}
func (e *fakeEngine) DeclareBool(name string) smt.BoolTerm {
	if b, ok := e.declared[name]; ok {
		return b
	}
	b := boolean(name)
	e.declared[name] = b
	return b
}
func (e *fakeEngine) Eq(a, b smt.Term) smt.BoolTerm { return boolean("(= " + repr(a) + " " + repr(b) + ")") }
func (e *fakeEngine) Or(ts ...smt.BoolTerm) smt.BoolTerm {
	out := "(or"
	for _, t := range ts {
		out += " " + repr(t)
	}
	return boolean(out + ")")
}
func (e *fakeEngine) And(ts ...smt.BoolTerm) smt.BoolTerm {
	out := "(and"
	for _, t := range ts {
		out += " " + repr(t)
	}
	return boolean(out + ")")
}
func (e *fakeEngine) Not(t smt.BoolTerm) smt.BoolTerm { return boolean("(not " + repr(t) + ")") }
func (e *fakeEngine) Implies(p, c smt.BoolTerm) smt.BoolTerm {
	return boolean("(=> " + repr(p) + " " + repr(c) + ")")
}
func (e *fakeEngine) Assert(t smt.BoolTerm)            { e.asserted = append(e.asserted, t) }
func (e *fakeEngine) IntConst(name string) smt.Term     { return term("int:" + name) }
func (e *fakeEngine) IntVal(v int) smt.Term             { return term("intval") }
func (e *fakeEngine) Rational(num, den int) smt.Term    { return term("rational") }
func (e *fakeEngine) TypeConst(name string) smt.Term    { return term("type:" + name) }
func (e *fakeEngine) UnitConst(name string) smt.Term    { return term("unit:" + name) }
func (e *fakeEngine) FramesConst(name string) smt.Term  { return term("frames:" + name) }
func (e *fakeEngine) MakeType(unit, frames smt.Term, isConstant smt.BoolTerm) smt.Term {
	return term("(mk-type " + repr(unit) + " " + repr(frames) + " " + repr(isConstant) + ")")
}
func (e *fakeEngine) MakeUnit(scalar smt.Term, exponents []smt.Term) smt.Term {
	out := "(mk-unit " + repr(scalar)
	for _, x := range exponents {
		out += " " + repr(x)
	}
	return term(out + ")")
}
func (e *fakeEngine) MakeFrames(bits []smt.BoolTerm) smt.Term {
	out := "(mk-frames"
	for _, b := range bits {
		out += " " + repr(b)
	}
	return term(out + ")")
}
func (e *fakeEngine) ArgType(fn string, index int) smt.Term { return term("argtype") }
func (e *fakeEngine) FreshFrames(hint string) smt.Term      { return term("fresh:" + hint) }
func (e *fakeEngine) UnitOf(t smt.Term) smt.Term            { return term("unit-of(" + repr(t) + ")") }
func (e *fakeEngine) FrameOf(t smt.Term) smt.Term           { return term("frame-of(" + repr(t) + ")") }
func (e *fakeEngine) IsConstantOf(t smt.Term) smt.BoolTerm {
	return boolean("is-constant-of(" + repr(t) + ")")
}
func (e *fakeEngine) ScalarOf(u smt.Term) smt.Term { return term("scalar-of(" + repr(u) + ")") }
func (e *fakeEngine) ExponentOf(u smt.Term, dim int) smt.Term {
	return term("exponent-of")
}
func (e *fakeEngine) FrameBitOf(f smt.Term, i int) smt.BoolTerm { return boolean("frame-bit") }
func (e *fakeEngine) Add(a, b smt.Term) smt.Term                { return term("(+ " + repr(a) + " " + repr(b) + ")") }
func (e *fakeEngine) Sub(a, b smt.Term) smt.Term                { return term("(- " + repr(a) + " " + repr(b) + ")") }
func (e *fakeEngine) ScalarMul(a, b smt.Term) smt.Term          { return term("(* " + repr(a) + " " + repr(b) + ")") }
func (e *fakeEngine) ScalarDiv(a, b smt.Term) smt.Term          { return term("(/ " + repr(a) + " " + repr(b) + ")") }
func (e *fakeEngine) IntEq(a, b smt.Term) smt.BoolTerm          { return boolean("(= " + repr(a) + " " + repr(b) + ")") }
func (e *fakeEngine) SetOptions(unsatCore bool, threads int, timeout time.Duration) {}
func (e *fakeEngine) Check(assumptions []smt.Label) (smt.Status, error) {
	return smt.Sat, nil
}
func (e *fakeEngine) UnsatCore() []smt.Label { return nil }
func (e *fakeEngine) ToSMTLIB() string       { return "" }
func (e *fakeEngine) LoadSMTLIB(text string) error { return nil }

func newTestWalker() (*Walker, *fakeEngine) {
	eng := newFakeEngine()
	ctx := smt.NewContext(eng, phystype.Rational, true)
	log := diagnostics.NewLogger(&bytes.Buffer{})
	return NewWalker(ctx, log, "/home/dev"), eng
}

func TestSeedPriorTypeAssertsUnitFrameAndType(t *testing.T) {
	w, eng := newTestWalker()
	pt := knowledge.PriorType{
		Name: "Vehicle_altitude",
		Type: phystype.Type{Unit: phystype.NewUnit(nil, [phystype.NumBaseUnits]int{0: 1}), Frames: phystype.OneHot(phystype.FrameGlobal)},
	}
	w.SeedPriorType(pt)

	require.Len(t, eng.asserted, 3)
	assert.Contains(t, w.memberAccessTypes, "Vehicle_altitude")
}

func TestWalkVarDeclAssertsEquality(t *testing.T) {
	w, eng := newTestWalker()
	fctx := newFuncContext()

	lit := &fakeCursor{kind: cxx.KindIntegerLiteral, intVal: 5}
	decl := &fakeCursor{
		kind:     cxx.KindVarDecl,
		spelling: "x",
		linkage:  cxx.LinkageExternal,
		children: []cxx.Cursor{lit},
	}

	result := w.walkVarDecl(decl, fctx)
	assert.Equal(t, cxx.Continue, result)
	require.Len(t, eng.asserted, 1)
}

func TestWalkVarDeclSkipsUninitialized(t *testing.T) {
	w, eng := newTestWalker()
	fctx := newFuncContext()
	decl := &fakeCursor{kind: cxx.KindVarDecl, spelling: "x"}

	w.walkVarDecl(decl, fctx)
	assert.Empty(t, eng.asserted)
}

func TestTypeExprIntegerLiteralIsConstant(t *testing.T) {
	w, _ := newTestWalker()
	fctx := newFuncContext()
	lit := &fakeCursor{kind: cxx.KindIntegerLiteral, intVal: 3}

	got, ok := w.typeExpr(lit, fctx)
	require.True(t, ok)
	assert.Contains(t, repr(got), "(mk-type")
	assert.Regexp(t, ` true\)$`, repr(got))
}

func TestTypeExprDeclRefUsesArgTypeForParam(t *testing.T) {
	w, _ := newTestWalker()
	fctx := newFuncContext()
	fctx.hasFn = true
	fctx.currentFn = "update"
	fctx.paramNamesToID["altitude_m"] = 0

	ref := &fakeCursor{kind: cxx.KindDeclRefExpr, spelling: "altitude_m"}
	got, ok := w.typeExpr(ref, fctx)
	require.True(t, ok)
	assert.Equal(t, "argtype", repr(got))
}

func TestTypeExprBinaryPlusAssertsCompatibility(t *testing.T) {
	w, eng := newTestWalker()
	fctx := newFuncContext()

	lhsLit := &fakeCursor{kind: cxx.KindIntegerLiteral, intVal: 1, tokens: []string{"a"}}
	rhsLit := &fakeCursor{kind: cxx.KindIntegerLiteral, intVal: 2}
	plus := &fakeCursor{
		kind:     cxx.KindBinaryOperator,
		children: []cxx.Cursor{lhsLit, rhsLit},
		tokens:   []string{"a", "+", "b"},
	}

	_, ok := w.typeExpr(plus, fctx)
	require.True(t, ok)
	assert.NotEmpty(t, eng.asserted)
}

func TestExtractConditionalConstraintsBuildsOneHotFrame(t *testing.T) {
	w, _ := newTestWalker()
	w.memberFrameAccesses["Vehicle.frame"] = true

	declRef := &fakeCursor{kind: cxx.KindDeclRefExpr, spelling: "v", linkage: cxx.LinkageExternal, typ: fakeType{spelling: "struct Vehicle"}}
	memberRef := &fakeCursor{
		kind:     cxx.KindMemberRefExpr,
		spelling: "frame",
		children: []cxx.Cursor{declRef},
		tokens:   []string{"a"},
	}
	frameLit := &fakeCursor{kind: cxx.KindIntegerLiteral, intVal: int64(phystype.FrameGlobalRelativeAlt)}
	cond := &fakeCursor{
		kind:     cxx.KindBinaryOperator,
		children: []cxx.Cursor{memberRef, frameLit},
		tokens:   []string{"a", "==", "b"},
	}
	ifStmt := &fakeCursor{kind: cxx.KindIfStmt, children: []cxx.Cursor{cond}}

	objName, frame, ok := w.extractConditionalConstraints(ifStmt)
	require.True(t, ok)
	assert.Equal(t, "v", objName)
	assert.Regexp(t, `^\(mk-frames( false){3} true( false){19}\)$`, repr(frame))
}

func TestExtractConditionalConstraintsRejectsUnregisteredField(t *testing.T) {
	w, _ := newTestWalker()

	declRef := &fakeCursor{kind: cxx.KindDeclRefExpr, spelling: "v", linkage: cxx.LinkageExternal}
	memberRef := &fakeCursor{kind: cxx.KindMemberRefExpr, spelling: "frame", children: []cxx.Cursor{declRef}}
	frameLit := &fakeCursor{kind: cxx.KindIntegerLiteral, intVal: 0}
	cond := &fakeCursor{kind: cxx.KindBinaryOperator, children: []cxx.Cursor{memberRef, frameLit}, tokens: []string{"a", "==", "b"}}
	ifStmt := &fakeCursor{kind: cxx.KindIfStmt, children: []cxx.Cursor{cond}}

	_, _, ok := w.extractConditionalConstraints(ifStmt)
	assert.False(t, ok)
}

func TestHasReturnStatementFindsNestedReturn(t *testing.T) {
	ret := &fakeCursor{kind: cxx.KindReturnStmt}
	compound := &fakeCursor{kind: cxx.KindCompoundStmt, children: []cxx.Cursor{ret}}
	ifStmt := &fakeCursor{kind: cxx.KindIfStmt, children: []cxx.Cursor{compound}}

	assert.True(t, hasReturnStatement(ifStmt))
}

func TestHasReturnStatementFalseWhenAbsent(t *testing.T) {
	compound := &fakeCursor{kind: cxx.KindCompoundStmt}
	ifStmt := &fakeCursor{kind: cxx.KindIfStmt, children: []cxx.Cursor{compound}}

	assert.False(t, hasReturnStatement(ifStmt))
}
