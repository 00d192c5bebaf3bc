package cxx

import (
	"testing"

	"github.com/sa4u-go/sa4u/internal/srcloc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCursor is a hand-built tree used to exercise the pure-function helpers
// in this package without a real libclang parse.
type fakeCursor struct {
	kind      Kind
	spelling  string
	typ       fakeType
	loc       srcloc.Pos
	linkage   Linkage
	lexical   *fakeCursor
	semantic  *fakeCursor
	referenced *fakeCursor
	children  []Cursor
	tokens    []string
	arguments []Cursor
	intVal    int64
	floatVal  float64
}

func (c *fakeCursor) Kind() Kind               { return c.kind }
func (c *fakeCursor) Spelling() string         { return c.spelling }
func (c *fakeCursor) USR() string              { return c.spelling }
func (c *fakeCursor) Type() Type               { return c.typ }
func (c *fakeCursor) Location() srcloc.Pos     { return c.loc }
func (c *fakeCursor) Linkage() Linkage         { return c.linkage }
func (c *fakeCursor) Children() []Cursor       { return c.children }
func (c *fakeCursor) Tokens() []string         { return c.tokens }
func (c *fakeCursor) Arguments() []Cursor      { return c.arguments }
func (c *fakeCursor) IntegerLiteral() int64    { return c.intVal }
func (c *fakeCursor) FloatingLiteral() float64 { return c.floatVal }
func (c *fakeCursor) Equal(other Cursor) bool {
	o, ok := other.(*fakeCursor)
	return ok && o == c
}
func (c *fakeCursor) LexicalParent() (Cursor, bool) {
	if c.lexical == nil {
		return nil, false
	}
	return c.lexical, true
}
func (c *fakeCursor) SemanticParent() (Cursor, bool) {
	if c.semantic == nil {
		return nil, false
	}
	return c.semantic, true
}
func (c *fakeCursor) Referenced() (Cursor, bool) {
	if c.referenced == nil {
		return nil, false
	}
	return c.referenced, true
}

type fakeType struct {
	kind     TypeKind
	spelling string
	pointee  *fakeType
	named    *fakeType
	constQ   bool
}

func (t fakeType) Kind() TypeKind { return t.kind }
func (t fakeType) Spelling() string { return t.spelling }
func (t fakeType) Pointee() Type {
	if t.pointee == nil {
		return fakeType{}
	}
	return *t.pointee
}
func (t fakeType) NamedType() Type {
	if t.named == nil {
		return fakeType{}
	}
	return *t.named
}
func (t fakeType) IsConstQualified() bool    { return t.constQ }
func (t fakeType) IsRestrictQualified() bool { return false }
func (t fakeType) IsVolatileQualified() bool { return false }

func TestFullyQualifiedNameForLocalVarDecl(t *testing.T) {
	fn := &fakeCursor{kind: KindFunctionDecl, spelling: "update"}
	v := &fakeCursor{
		kind:     KindVarDecl,
		spelling: "altitude",
		linkage:  LinkageNone,
		loc:      srcloc.Pos{File: "nav.cpp", Line: 42},
		lexical:  fn,
	}
	assert.Equal(t, "update_altitude_nav.cpp_42", FullyQualifiedName(v))
}

func TestFullyQualifiedNameForExternVarDecl(t *testing.T) {
	v := &fakeCursor{kind: KindVarDecl, spelling: "g_altitude", linkage: LinkageExternal}
	assert.Equal(t, "g_altitude", FullyQualifiedName(v))
}

func TestFullyQualifiedNameForMethod(t *testing.T) {
	tu := &fakeCursor{kind: KindTranslationUnit}
	class := &fakeCursor{kind: KindFunctionDecl, spelling: "Vehicle", semantic: tu}
	method := &fakeCursor{kind: KindFunctionDecl, spelling: "update", semantic: class}
	assert.Equal(t, "Vehicle::update", FullyQualifiedName(method))
}

func TestBinaryOperatorFindsTokenAfterLeftOperand(t *testing.T) {
	left := &fakeCursor{tokens: []string{"x"}}
	bin := &fakeCursor{
		kind:     KindBinaryOperator,
		children: []Cursor{left},
		tokens:   []string{"x", "=", "y"},
	}
	assert.Equal(t, "=", BinaryOperator(bin))
}

func TestIsAssignmentOperator(t *testing.T) {
	left := &fakeCursor{tokens: []string{"x"}}
	assign := &fakeCursor{kind: KindBinaryOperator, children: []Cursor{left}, tokens: []string{"x", "=", "y"}}
	add := &fakeCursor{kind: KindBinaryOperator, children: []Cursor{left}, tokens: []string{"x", "+", "y"}}
	call := &fakeCursor{kind: KindCallExpr, spelling: "="}

	assert.True(t, IsAssignmentOperator(assign))
	assert.False(t, IsAssignmentOperator(add))
	assert.True(t, IsAssignmentOperator(call))
}

func TestLHSAndRHSSkipUnexposedExpr(t *testing.T) {
	realLHS := &fakeCursor{kind: KindDeclRefExpr, spelling: "x"}
	realRHS := &fakeCursor{kind: KindIntegerLiteral, spelling: "1"}
	wrappedRHS := &fakeCursor{kind: KindUnexposedExpr, children: []Cursor{realRHS}}
	assign := &fakeCursor{kind: KindBinaryOperator, children: []Cursor{realLHS, wrappedRHS}}

	require.Same(t, realLHS, LHS(assign).(*fakeCursor))
	require.Same(t, realRHS, RHS(assign).(*fakeCursor))
}

func TestWalkASTBreakStopsImmediately(t *testing.T) {
	visited := []string{}
	leaf := &fakeCursor{spelling: "leaf"}
	root := &fakeCursor{children: []Cursor{
		&fakeCursor{spelling: "a", children: []Cursor{leaf}},
		&fakeCursor{spelling: "b"},
	}}
	WalkAST(root, func(c Cursor) WalkResult {
		visited = append(visited, c.(*fakeCursor).spelling)
		return Break
	})
	assert.Equal(t, []string{"a"}, visited)
}

func TestFullyQualifiedMemberExprJoinsStructFieldChain(t *testing.T) {
	structType := fakeType{spelling: "struct Vehicle"}
	declRef := &fakeCursor{kind: KindDeclRefExpr, spelling: "v", typ: structType}
	memberRef := &fakeCursor{kind: KindMemberRefExpr, spelling: "altitude", children: []Cursor{declRef}}

	assert.Equal(t, "Vehicle.altitude", FullyQualifiedMemberExpr(memberRef))
}

func TestPlainTypeStripsPointerAndConst(t *testing.T) {
	named := fakeType{spelling: "Vehicle"}
	qualified := fakeType{kind: TypeElaborated, spelling: "const Vehicle", constQ: true, named: &named}
	ptr := fakeType{kind: TypePointer, pointee: &qualified}

	assert.Equal(t, "Vehicle", PlainType(ptr).Spelling())
}
