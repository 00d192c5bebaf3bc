package cxx

import (
	"fmt"

	clang "github.com/go-clang/clang-v14/clang"
	"github.com/sa4u-go/sa4u/internal/srcloc"
)

// This file is the only place in sa4u that imports go-clang/clang-v14: it
// wraps libclang's Index/Cursor/Type in the Index/Cursor/Type interfaces the
// rest of the analyzer works with, the Go analogue of clang.cindex in the
// reference implementation.

// clangIndex backs Index with a real libclang parse.
type clangIndex struct {
	idx clang.Index
}

// NewIndex constructs a libclang Index. One Index is shared by every job a
// single worker process parses; libclang indexes are not a translation-unit-
// scoped resource.
func NewIndex() Index {
	return &clangIndex{idx: clang.NewIndex(0, 0)}
}

func (ci *clangIndex) ParseTranslationUnit(cmd CompileCommand) (Cursor, error) {
	tu, err := ci.idx.ParseTranslationUnit(cmd.Filename, cmd.Arguments, nil, clang.TranslationUnit_None)
	if err != clang.Error_Success {
		return nil, fmt.Errorf("cxx: parsing %s: libclang error %d", cmd.Filename, err)
	}
	root := tu.TranslationUnitCursor()
	return &clangCursor{c: root}, nil
}

// clangType backs Type with a libclang clang.Type value.
type clangType struct{ t clang.Type }

func (t clangType) Kind() TypeKind {
	switch t.t.Kind() {
	case clang.Type_Pointer:
		return TypePointer
	case clang.Type_ConstantArray:
		return TypeConstantArray
	case clang.Type_Record:
		return TypeRecord
	case clang.Type_Elaborated:
		return TypeElaborated
	default:
		return TypeUnknown
	}
}

func (t clangType) Spelling() string { return t.t.Spelling() }
func (t clangType) Pointee() Type    { return clangType{t.t.PointeeType()} }
func (t clangType) NamedType() Type  { return clangType{t.t.NamedType()} }

func (t clangType) IsConstQualified() bool    { return t.t.IsConstQualifiedType() }
func (t clangType) IsRestrictQualified() bool { return t.t.IsRestrictQualifiedType() }
func (t clangType) IsVolatileQualified() bool { return t.t.IsVolatileQualifiedType() }

// clangCursor backs Cursor with a libclang clang.Cursor value.
type clangCursor struct{ c clang.Cursor }

var kindTable = map[clang.CursorKind]Kind{
	clang.Cursor_TranslationUnit:    KindTranslationUnit,
	clang.Cursor_VarDecl:            KindVarDecl,
	clang.Cursor_FunctionDecl:       KindFunctionDecl,
	clang.Cursor_ParmDecl:           KindParmDecl,
	clang.Cursor_FieldDecl:          KindFieldDecl,
	clang.Cursor_CallExpr:           KindCallExpr,
	clang.Cursor_BinaryOperator:     KindBinaryOperator,
	clang.Cursor_UnaryOperator:      KindUnaryOperator,
	clang.Cursor_DeclRefExpr:        KindDeclRefExpr,
	clang.Cursor_MemberRefExpr:      KindMemberRefExpr,
	clang.Cursor_ArraySubscriptExpr: KindArraySubscriptExpr,
	clang.Cursor_IntegerLiteral:     KindIntegerLiteral,
	clang.Cursor_FloatingLiteral:    KindFloatingLiteral,
	clang.Cursor_CXXBoolLiteralExpr: KindCXXBoolLiteralExpr,
	clang.Cursor_UnexposedExpr:      KindUnexposedExpr,
	clang.Cursor_IfStmt:             KindIfStmt,
	clang.Cursor_ReturnStmt:         KindReturnStmt,
	clang.Cursor_CompoundStmt:       KindCompoundStmt,
	clang.Cursor_ParenExpr:          KindParenExpr,
	clang.Cursor_CStyleCastExpr:     KindCStyleCastExpr,
	clang.Cursor_InitListExpr:       KindInitListExpr,
}

func (c *clangCursor) Kind() Kind {
	if k, ok := kindTable[c.c.Kind()]; ok {
		return k
	}
	return KindUnknown
}

func (c *clangCursor) Spelling() string { return c.c.Spelling() }
func (c *clangCursor) Type() Type       { return clangType{c.c.Type()} }

func (c *clangCursor) Location() srcloc.Pos {
	file, line, col, _ := c.c.Location().ExpansionLocation()
	return srcloc.Pos{File: file.Name(), Line: int(line), Column: int(col)}
}

func (c *clangCursor) USR() string { return c.c.USR() }

func (c *clangCursor) Linkage() Linkage {
	switch c.c.Linkage() {
	case clang.Linkage_NoLinkage:
		return LinkageNone
	case clang.Linkage_Internal:
		return LinkageInternal
	case clang.Linkage_External, clang.Linkage_UniqueExternal:
		return LinkageExternal
	default:
		return LinkageUnknown
	}
}

func (c *clangCursor) LexicalParent() (Cursor, bool) {
	p := c.c.LexicalParent()
	if p.IsNull() {
		return nil, false
	}
	return &clangCursor{c: p}, true
}

func (c *clangCursor) SemanticParent() (Cursor, bool) {
	p := c.c.SemanticParent()
	if p.IsNull() {
		return nil, false
	}
	return &clangCursor{c: p}, true
}

func (c *clangCursor) Referenced() (Cursor, bool) {
	r := c.c.Referenced()
	if r.IsNull() {
		return nil, false
	}
	return &clangCursor{c: r}, true
}

func (c *clangCursor) Children() []Cursor {
	var out []Cursor
	c.c.Visit(func(cur, _ clang.Cursor) clang.ChildVisitResult {
		out = append(out, &clangCursor{c: cur})
		return clang.ChildVisit_Continue
	})
	return out
}

func (c *clangCursor) Tokens() []string {
	tu := c.c.TranslationUnit()
	rng := c.c.Extent()
	toks := tu.Tokenize(rng)
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Spelling(tu)
	}
	return out
}

func (c *clangCursor) Arguments() []Cursor {
	n := c.c.NumArguments()
	out := make([]Cursor, n)
	for i := 0; i < n; i++ {
		arg := c.c.Argument(uint32(i))
		if arg.IsNull() {
			out[i] = nil
			continue
		}
		out[i] = &clangCursor{c: arg}
	}
	return out
}

func (c *clangCursor) Equal(other Cursor) bool {
	o, ok := other.(*clangCursor)
	return ok && c.c.Equal(o.c)
}

func (c *clangCursor) IntegerLiteral() int64 {
	v, _ := c.c.Evaluate().AsInt()
	return int64(v)
}

func (c *clangCursor) FloatingLiteral() float64 {
	v, _ := c.c.Evaluate().AsDouble()
	return v
}
