package cxx

import "strings"

// FullyQualifiedName builds the dotted/double-colon-joined name the
// constraint generator uses as a prior-knowledge and per-variable SMT constant
// key, mirroring get_fq_name: VarDecls get a path through lexical parents
// (disambiguated by file:line when the variable has no linkage), everything
// else walks semantic parents joined by "::".
func FullyQualifiedName(c Cursor) string {
	if c.Kind() == KindVarDecl {
		return fqVarName(c)
	}

	name := c.Spelling()
	parent, ok := c.SemanticParent()
	prev := c
	for ok && !parent.Equal(prev) && parent.Kind() != KindTranslationUnit {
		name = parent.Spelling() + "::" + name
		prev = parent
		parent, ok = parent.SemanticParent()
	}
	return name
}

func fqVarName(c Cursor) string {
	var name string
	if c.Linkage() == LinkageNone {
		pos := c.Location()
		name = c.Spelling() + "_" + pos.File + "_" + itoa(pos.Line)
	} else {
		name = c.Spelling()
	}

	parent, ok := c.LexicalParent()
	for ok && parent.Kind() != KindTranslationUnit {
		name = parent.Spelling() + "_" + name
		parent, ok = parent.LexicalParent()
	}
	return name
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

// BinaryOperator returns the operator token of a BinaryOperator cursor
// ("+", "=", "*", ...), mirroring get_binary_op: the operator token is
// whichever token follows the left operand's own token run.
func BinaryOperator(c Cursor) string {
	children := c.Children()
	if len(children) == 0 {
		return ""
	}
	leftTokens := len(children[0].Tokens())
	tokens := c.Tokens()
	if leftTokens >= len(tokens) {
		return ""
	}
	return tokens[leftTokens]
}

// UnaryOperator returns the operator token of a UnaryOperator cursor,
// mirroring get_unary_op.
func UnaryOperator(c Cursor) string {
	tokens := c.Tokens()
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// IsAssignmentOperator reports whether c is a plain `=` BinaryOperator or a
// call to an overloaded `operator=`, mirroring is_assignment_operator.
func IsAssignmentOperator(c Cursor) bool {
	if c.Kind() == KindBinaryOperator && BinaryOperator(c) == "=" {
		return true
	}
	return c.Kind() == KindCallExpr && c.Spelling() == "="
}

// LHS returns the first non-UNEXPOSED_EXPR descendant of c, mirroring
// get_lhs.
func LHS(c Cursor) Cursor {
	var result Cursor
	WalkAST(c, func(cur Cursor) WalkResult {
		if result != nil {
			return Break
		}
		if cur.Kind() != KindUnexposedExpr {
			result = cur
			return Break
		}
		return Recurse
	})
	return result
}

// RHS returns the second non-UNEXPOSED_EXPR descendant of c (skipping the
// first visited node, which is the left-hand side), mirroring get_rhs.
func RHS(c Cursor) Cursor {
	visited := false
	var result Cursor
	WalkAST(c, func(cur Cursor) WalkResult {
		if !visited {
			visited = true
			return Continue
		}
		if cur.Kind() != KindUnexposedExpr {
			result = cur
			return Break
		}
		return Recurse
	})
	return result
}

func argumentsHelper(c Cursor) (Cursor, bool) {
	var result Cursor
	found := false
	WalkAST(c, func(cur Cursor) WalkResult {
		if cur.Kind() != KindUnexposedExpr && !found {
			result = cur
			found = true
			return Break
		}
		return Recurse
	})
	return result, found
}

// Arguments yields c's call arguments, unwrapping the UNEXPOSED_EXPR wrapper
// clang inserts around implicit conversions, mirroring get_arguments. A
// cursor whose argument tree contains nothing but unexposed expressions
// yields nil for that slot.
func Arguments(c Cursor) []Cursor {
	args := c.Arguments()
	out := make([]Cursor, len(args))
	for i, a := range args {
		if a.Kind() != KindUnexposedExpr {
			out[i] = a
			continue
		}
		if found, ok := argumentsHelper(a); ok {
			out[i] = found
		}
	}
	return out
}

// FullyQualifiedMemberExpr renders a chain of DeclRefExpr/MemberRefExpr/
// ArraySubscriptExpr cursors as a dotted path (e.g. "Vehicle.state.altitude"),
// mirroring get_fq_member_expr. Struct-typed DeclRefExprs have their leading
// "struct " prefix stripped, matching the reference implementation's
// `typename[6:]` slice.
func FullyQualifiedMemberExpr(c Cursor) string {
	parts := []string{c.Spelling()}
	WalkAST(c, func(cur Cursor) WalkResult {
		switch cur.Kind() {
		case KindDeclRefExpr:
			t := cur.Type()
			if t.Kind() == TypeConstantArray {
				parts[0] = cur.Spelling() + parts[0]
				return Recurse
			}
			typename := PlainType(t).Spelling()
			typename = strings.TrimPrefix(typename, "struct ")
			parts[0] = typename + "." + parts[0]
			return Recurse
		case KindMemberRefExpr:
			parts[0] = cur.Spelling() + "." + parts[0]
			return Recurse
		case KindArraySubscriptExpr:
			parts[0] = cur.Spelling() + "." + parts[0]
		}
		return Recurse
	})

	if !strings.Contains(parts[0], ".") {
		if ref, ok := c.Referenced(); ok {
			if parent, ok := ref.SemanticParent(); ok {
				parts[0] = parent.Spelling() + "." + parts[0]
			}
		}
	}
	return parts[0]
}
