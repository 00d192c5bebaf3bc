package genconstraints

import (
	"fmt"
	"strings"

	"github.com/sa4u-go/sa4u/internal/cxx"
	"github.com/sa4u-go/sa4u/internal/diagnostics"
	"github.com/sa4u-go/sa4u/internal/phystype"
	"github.com/sa4u-go/sa4u/internal/smt"
)

// typeExpr computes the symbolic Type of an expression cursor, asserting
// constraints along the way (operator compatibility, call-argument types),
// mirroring type_expr. The bool result is false wherever the reference
// implementation's type_expr would fall through and return None.
func (w *Walker) typeExpr(c cxx.Cursor, fctx *funcContext) (smt.Term, bool) {
	if c == nil {
		return nil, false
	}
	w.numExprs++

	switch c.Kind() {
	case cxx.KindCallExpr:
		return w.typeExprCall(c, fctx)

	case cxx.KindDeclRefExpr:
		if fctx.hasFn {
			if id, ok := fctx.paramNamesToID[c.Spelling()]; ok {
				return w.ctx.ArgType(fctx.currentFn, id), true
			}
		}
		referenced, ok := c.Referenced()
		if !ok {
			return nil, false
		}
		varTypename := cxx.FullyQualifiedName(referenced) + "_type"
		t, ok := w.varTypes[varTypename]
		if !ok {
			t = w.ctx.NamedType(varTypename)
			w.varTypes[varTypename] = t
		}
		return t, true

	case cxx.KindUnexposedExpr:
		w.warn(diagnostics.AST001, c.Location(), "calling type_expr on unexposed expression")
		return nil, false

	case cxx.KindBinaryOperator:
		return w.typeExprBinaryOperator(c, fctx)

	case cxx.KindIntegerLiteral, cxx.KindCXXBoolLiteralExpr:
		return w.ctx.LiteralType(int(c.IntegerLiteral())), true

	case cxx.KindFloatingLiteral:
		return w.ctx.LiteralType(int(c.FloatingLiteral())), true

	case cxx.KindMemberRefExpr, cxx.KindArraySubscriptExpr:
		return w.typeExprMemberAccess(c, fctx)

	case cxx.KindUnaryOperator:
		switch cxx.UnaryOperator(c) {
		case "-", "&":
			return w.typeExpr(cxx.LHS(c), fctx)
		}
		return nil, false

	case cxx.KindParenExpr, cxx.KindCStyleCastExpr:
		return w.typeExpr(cxx.LHS(c), fctx)
	}
	return nil, false
}

func (w *Walker) typeExprCall(c cxx.Cursor, fctx *funcContext) (smt.Term, bool) {
	loc := c.Location()
	referenced, ok := c.Referenced()
	if !ok {
		w.warn(diagnostics.AST004, loc, fmt.Sprintf("unknown call to %s in %s on line %d column %d",
			c.Spelling(), loc.File, loc.Line, loc.Column))
		return nil, false
	}

	fqFnName := cxx.FullyQualifiedName(referenced)
	if IsIgnoredFunc(fqFnName) {
		w.ignored++
		return nil, false
	}

	returnTypeName := fqFnName + "_return_type"
	t, ok := w.fnReturnTypes[returnTypeName]
	if !ok {
		t = w.ctx.NamedType(returnTypeName)
		w.fnReturnTypes[returnTypeName] = t
		w.assertAndTrack(w.ctx.Not(w.ctx.IsConstantOf(t)), "return type is not a constant")
	}

	for i, arg := range cxx.Arguments(c) {
		if arg == nil {
			w.ignored++
			w.warn(diagnostics.AST003, loc, fmt.Sprintf("no argument cursor found in %s on line %d", loc.File, loc.Line))
			continue
		}
		argType, ok := w.typeExpr(arg, fctx)
		if !ok {
			w.ignored++
			w.warn(diagnostics.AST003, loc, fmt.Sprintf("unknown argument type in %s on line %d", loc.File, loc.Line))
			break
		}
		w.assertAndTrack(w.ctx.Eq(argType, w.ctx.ArgType(fqFnName, i)),
			fmt.Sprintf("Call to %s in %s on line %d column %d", fqFnName, loc.File, loc.Line, loc.Column))
	}
	return t, true
}

func (w *Walker) typeExprBinaryOperator(c cxx.Cursor, fctx *funcContext) (smt.Term, bool) {
	operator := cxx.BinaryOperator(c)
	loc := c.Location()

	switch operator {
	case "+", "-":
		lhsType, lok := w.typeExpr(cxx.LHS(c), fctx)
		rhsType, rok := w.typeExpr(cxx.RHS(c), fctx)
		if !lok || !rok {
			w.warn(diagnostics.AST001, loc, fmt.Sprintf("untyped expression @ %s line %d", loc.File, loc.Line))
			return nil, false
		}
		w.assertAndTrack(
			w.ctx.Or(w.ctx.Eq(lhsType, rhsType), w.ctx.And(w.ctx.Dimensionless(lhsType), w.ctx.Dimensionless(rhsType))),
			fmt.Sprintf("Applied %s with incompatible types @ %s line %d column %d", operator, loc.File, loc.Line, loc.Column))
		return lhsType, true

	case "*", "/":
		lhsType, lok := w.typeExpr(cxx.LHS(c), fctx)
		rhsType, rok := w.typeExpr(cxx.RHS(c), fctx)
		if !lok || !rok {
			w.warn(diagnostics.AST001, loc, fmt.Sprintf("untyped expression @ %s on line %d", loc.File, loc.Line))
			return nil, false
		}
		w.assertAndTrack(w.ctx.FramesEqual(lhsType, rhsType),
			fmt.Sprintf("Frames must agree in operator %s applied in %s on line %d", operator, loc.File, loc.Line))
		if operator == "*" {
			return w.ctx.MulType(lhsType, rhsType), true
		}
		return w.ctx.DivType(lhsType, rhsType), true
	}
	// Other binary operators (relational, logical, bitwise) aren't typed.
	return nil, false
}

func (w *Walker) typeExprMemberAccess(c cxx.Cursor, fctx *funcContext) (smt.Term, bool) {
	var frameConstraint smt.Term
	if c.Kind() == cxx.KindMemberRefExpr {
		if accessedObject, ok := getNextDeclRefExpr(c); ok {
			objName := cxx.FullyQualifiedName(accessedObject)
			frameConstraint = fctx.activeConstraints[objName]
		}
	}

	exprRepr := cxx.FullyQualifiedMemberExpr(c)
	if IsIgnoredMember(exprRepr) {
		w.ignored++
		return nil, false
	}

	exprType := firstComponent(exprRepr)
	for access := range w.memberFrameAccesses {
		if firstComponent(access) == exprType && len(fctx.activeConstraints) == 0 {
			loc := c.Location()
			w.warn(diagnostics.AST005, loc, fmt.Sprintf("no constraints active for member access @ %s line %d", loc.File, loc.Line))
			break
		}
	}

	t, ok := w.memberAccessTypes[exprRepr]
	if !ok {
		t = w.ctx.NamedType(exprRepr + "_member_type")
		w.memberAccessTypes[exprRepr] = t
	}

	if frameConstraint != nil {
		return w.ctx.MakeType(w.ctx.UnitOf(t), frameConstraint, w.ctx.BoolVal(false)), true
	}
	return t, true
}

func firstComponent(s string) string {
	if i := strings.Index(s, "."); i >= 0 {
		return s[:i]
	}
	return s
}

// extractConditionalConstraints inspects an if-statement's condition for an
// `obj.field == FRAME` / `obj.field != FRAME` comparison against a known
// frame-valued field, returning the constrained object's fully-qualified
// name and the Frames term implied by the comparison, mirroring
// extract_conditional_constraints.
func (w *Walker) extractConditionalConstraints(ifStmt cxx.Cursor) (string, smt.Term, bool) {
	bodyExpr := cxx.LHS(ifStmt)
	if bodyExpr == nil {
		return "", nil, false
	}
	operator := cxx.BinaryOperator(bodyExpr)
	if operator != "==" && operator != "!=" {
		return "", nil, false
	}

	objName, ok := maybeGetConstrainedObject(bodyExpr, w.memberFrameAccesses)
	if !ok {
		return "", nil, false
	}

	literal, ok := maybeGetConstraintLiteral(bodyExpr)
	if !ok {
		return "", nil, false
	}
	if literal < 0 || literal >= phystype.NumFrames {
		w.warn(diagnostics.AST002, bodyExpr.Location(), fmt.Sprintf("unrecognized frame: %d", literal))
		return "", nil, false
	}

	var frames phystype.Frames
	if operator == "==" {
		frames = phystype.OneHot(phystype.FrameID(literal))
	} else {
		frames = phystype.All()
		frames[literal] = false
	}
	return objName, w.ctx.LowerFrames(frames), true
}

// maybeGetConstrainedObject returns the fully-qualified name of the object
// whose frame a `obj.field == FRAME` condition constrains, provided field is
// a registered frame-valued message field.
func maybeGetConstrainedObject(bodyExpr cxx.Cursor, memberFrameAccesses map[string]bool) (string, bool) {
	memberCursor := cxx.LHS(bodyExpr)
	if memberCursor == nil || memberCursor.Kind() != cxx.KindMemberRefExpr {
		return "", false
	}
	if !memberFrameAccesses[cxx.FullyQualifiedMemberExpr(memberCursor)] {
		return "", false
	}
	accessedObject, ok := getNextDeclRefExpr(memberCursor)
	if !ok {
		return "", false
	}
	return cxx.FullyQualifiedName(accessedObject), true
}

// maybeGetConstraintLiteral returns the integer frame ID an `==`/`!=`
// condition's right-hand side names.
func maybeGetConstraintLiteral(bodyExpr cxx.Cursor) (int, bool) {
	rhs := cxx.RHS(bodyExpr)
	if rhs == nil {
		return 0, false
	}
	switch rhs.Kind() {
	case cxx.KindIntegerLiteral, cxx.KindCXXBoolLiteralExpr:
		return int(rhs.IntegerLiteral()), true
	}
	return 0, false
}

// getNextDeclRefExpr returns the first DeclRefExpr reachable in c's subtree,
// the object underlying a member-access chain.
func getNextDeclRefExpr(c cxx.Cursor) (cxx.Cursor, bool) {
	var result cxx.Cursor
	cxx.WalkAST(c, func(cur cxx.Cursor) cxx.WalkResult {
		if result != nil {
			return cxx.Break
		}
		if cur.Kind() == cxx.KindDeclRefExpr {
			result = cur
			return cxx.Break
		}
		return cxx.Recurse
	})
	return result, result != nil
}

// hasReturnStatement reports whether c's subtree contains a return
// statement, used to decide whether an if-guarded frame refinement survives
// past the if-statement (the guard must have returned on every other path).
func hasReturnStatement(c cxx.Cursor) bool {
	found := false
	cxx.WalkAST(c, func(cur cxx.Cursor) cxx.WalkResult {
		if found {
			return cxx.Break
		}
		if cur.Kind() == cxx.KindReturnStmt {
			found = true
			return cxx.Break
		}
		return cxx.Recurse
	})
	return found
}
