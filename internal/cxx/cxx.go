// Package cxx is the only place in sa4u that imports
// github.com/go-clang/clang-v14: it wraps libclang's Cursor/Kind/Type API in
// the handful of accessors the constraint generator actually needs, the same
// role clang.cindex plays for the reference implementation's util.py. Every
// other package works in terms of Cursor/Kind, never clang.File or clang.Index
// directly.
package cxx

import "github.com/sa4u-go/sa4u/internal/srcloc"

// Kind mirrors the small subset of cindex.CursorKind the analyzer dispatches
// on. Values are deliberately distinct from clang-v14's own numbering; the
// adapter built over the real bindings translates between the two.
type Kind int

const (
	KindUnknown Kind = iota
	KindTranslationUnit
	KindVarDecl
	KindFunctionDecl
	KindParmDecl
	KindFieldDecl
	KindCallExpr
	KindBinaryOperator
	KindUnaryOperator
	KindDeclRefExpr
	KindMemberRefExpr
	KindArraySubscriptExpr
	KindIntegerLiteral
	KindFloatingLiteral
	KindCXXBoolLiteralExpr
	KindUnexposedExpr
	KindIfStmt
	KindReturnStmt
	KindCompoundStmt
	KindParenExpr
	KindCStyleCastExpr
	KindInitListExpr
)

// TypeKind mirrors cindex.TypeKind for the handful of kinds plain_type cares
// about.
type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypePointer
	TypeConstantArray
	TypeRecord
	TypeElaborated
)

// Linkage mirrors cindex.LinkageKind, used only to distinguish file-local
// ("no linkage") variables from externally-visible ones when building a
// fully-qualified name.
type Linkage int

const (
	LinkageUnknown Linkage = iota
	LinkageNone
	LinkageInternal
	LinkageExternal
)

// Type is the thin surface over clang-v14's Type this package needs.
type Type interface {
	Kind() TypeKind
	Spelling() string
	Pointee() Type
	NamedType() Type
	IsConstQualified() bool
	IsRestrictQualified() bool
	IsVolatileQualified() bool
}

// Cursor is the thin surface over clang-v14's Cursor this package needs. A
// production implementation (in an unexported adapter type, not shown here
// since it is a straight pass-through to clang-v14's own Cursor methods)
// backs every method with the real libclang call; tests back it with a
// hand-built tree.
type Cursor interface {
	Kind() Kind
	Spelling() string
	Type() Type
	Location() srcloc.Pos
	// USR returns libclang's Unified Symbol Resolution string, used as the
	// de-duplication key for the walker's visited-node set (clang_getCursorUSR).
	USR() string
	Linkage() Linkage
	LexicalParent() (Cursor, bool)
	SemanticParent() (Cursor, bool)
	Referenced() (Cursor, bool)
	Children() []Cursor
	Tokens() []string
	Arguments() []Cursor
	Equal(other Cursor) bool
	// IntegerLiteral/FloatingLiteral evaluate a literal-kinded cursor via
	// libclang's constant folder (clang_Cursor_Evaluate), matching
	// get_integer_literal/get_floating_literal. Callers must only invoke
	// these on INTEGER_LITERAL/CXX_BOOL_LITERAL_EXPR or FLOATING_LITERAL
	// cursors respectively.
	IntegerLiteral() int64
	FloatingLiteral() float64
}

// PlainType strips pointer indirection and const/volatile/restrict
// qualification, mirroring plain_type: callers that need the underlying
// record type of a possibly-pointer, possibly-qualified expression go
// through here rather than inspecting Type directly.
func PlainType(t Type) Type {
	cur := t
	for cur.Kind() == TypePointer {
		cur = cur.Pointee()
	}
	if cur.IsConstQualified() || cur.IsRestrictQualified() || cur.IsVolatileQualified() {
		cur = cur.NamedType()
	}
	return cur
}
