// Package genconstraints walks one translation unit's AST and emits SMT
// constraints over symbolic physical types, mirroring the reference
// implementation's walker/type_expr pair: walker dispatches on statement-
// level constructs (declarations, assignments, calls, if-guards) and calls
// type_expr to compute the symbolic Type of an expression, asserting
// constraints along the way.
package genconstraints

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sa4u-go/sa4u/internal/cxx"
	"github.com/sa4u-go/sa4u/internal/diagnostics"
	"github.com/sa4u-go/sa4u/internal/knowledge"
	"github.com/sa4u-go/sa4u/internal/smt"
	"github.com/sa4u-go/sa4u/internal/srcloc"
)

// Walker holds the per-TU symbol tables the constraint generator populates
// and consults as it descends an AST: the SMT context constraints are
// asserted against, prior/protocol knowledge seeded before the walk begins,
// and the running tables of per-variable/per-function/per-member-access
// types the reference implementation keeps as module-level dicts.
type Walker struct {
	ctx *smt.Context
	log *diagnostics.Logger

	varTypes          map[string]smt.Term
	fnReturnTypes     map[string]smt.Term
	memberAccessTypes map[string]smt.Term

	memberFrameAccesses map[string]bool

	homeDir string

	counter  int
	ignored  int
	numExprs int

	// Labels accumulates every assumption literal asserted during the walk —
	// the Go analogue of tu_assertions — for the caller to pass to
	// Context.Check once every TU in a run has been folded in.
	Labels []smt.Label
}

// NewWalker constructs a Walker ready to accept prior knowledge and then
// walk translation units. homeDir restricts analysis to cursors whose
// location falls under homeDir or "/src/", matching the reference
// implementation's `$HOME`/`/src/` filter.
func NewWalker(ctx *smt.Context, log *diagnostics.Logger, homeDir string) *Walker {
	return &Walker{
		ctx:                 ctx,
		log:                 log,
		varTypes:            map[string]smt.Term{},
		fnReturnTypes:       map[string]smt.Term{},
		memberAccessTypes:   map[string]smt.Term{},
		memberFrameAccesses: map[string]bool{},
		homeDir:             homeDir,
	}
}

// SeedPriorType asserts a prior-knowledge variable's unit, frames, and type,
// mirroring parse_variable_description.
func (w *Walker) SeedPriorType(pt knowledge.PriorType) {
	name := pt.Name
	unitConst := w.ctx.NamedUnit(name + "_units")
	framesConst := w.ctx.NamedFrames(name + "_frames")
	typeConst := w.ctx.NamedType(name + "_type")

	w.assertAndTrack(w.ctx.Eq(unitConst, w.ctx.LowerUnit(pt.Type.Unit)),
		fmt.Sprintf("%s unit known from prior type file", name))
	w.assertAndTrack(w.ctx.Eq(framesConst, w.ctx.LowerFrames(pt.Type.Frames)),
		fmt.Sprintf("%s frame known from prior type file", name))

	varType := w.ctx.MakeType(unitConst, framesConst, w.ctx.BoolVal(false))
	w.assertAndTrack(w.ctx.Eq(typeConst, varType),
		fmt.Sprintf("%s known from prior type file", name))
	w.memberAccessTypes[name] = varType
}

// SeedMessageTypes asserts every message-field type and records every
// frame field from a protocol-definition load result, mirroring
// parse_cmasi/parse_mavlink/_load_from_flex_module_api's per-field loop.
func (w *Walker) SeedMessageTypes(result knowledge.LoadResult) {
	for _, mt := range result.Types {
		unitConst := w.ctx.NamedUnit(mt.Name + "_units")
		framesConst := w.ctx.NamedFrames(mt.Name + "_frames")
		returnType := w.ctx.NamedType(mt.Name + "_return_type")
		w.fnReturnTypes[mt.Name+"_return_type"] = returnType

		w.assertAndTrack(w.ctx.Eq(unitConst, w.ctx.LowerUnit(mt.Type.Unit)),
			fmt.Sprintf("%s return unit known from protocol definition", mt.Name))
		w.assertAndTrack(w.ctx.Eq(returnType, w.ctx.MakeType(unitConst, framesConst, w.ctx.BoolVal(false))),
			fmt.Sprintf("%s known from protocol definition", mt.Name))

		w.memberAccessTypes[mt.Name] = returnType
	}
	for _, ff := range result.FrameFields {
		w.memberFrameAccesses[ff.Name] = true
	}
}

func (w *Walker) warn(code string, loc srcloc.Pos, message string) {
	span := srcloc.Single(loc)
	w.log.Log(diagnostics.New(code, message, &span))
}

func (w *Walker) assertAndTrack(stmt smt.BoolTerm, msg string) smt.Label {
	label := w.ctx.AssertAndTrack(stmt, fmt.Sprintf("%s (%d)", msg, w.counter))
	w.counter++
	w.Labels = append(w.Labels, label)
	return label
}

// Walk traverses root (a translation-unit cursor) and asserts every
// constraint the reference implementation's walker would, restricted to
// cursors not covered by ignoreLocations.
func (w *Walker) Walk(root cxx.Cursor, ignoreLocations []srcloc.Pos) {
	fctx := newFuncContext()
	ignored := buildIgnoreSet(ignoreLocations)
	cxx.WalkAST(root, func(c cxx.Cursor) cxx.WalkResult {
		return w.walk(c, fctx, ignored)
	})
}

func buildIgnoreSet(locs []srcloc.Pos) map[string]bool {
	out := map[string]bool{}
	for _, l := range locs {
		out[l.String()] = true
	}
	return out
}

func (w *Walker) ignoreCursor(c cxx.Cursor, ignored map[string]bool) bool {
	return ignored[c.Location().String()]
}

func (w *Walker) walk(c cxx.Cursor, fctx *funcContext, ignored map[string]bool) cxx.WalkResult {
	if w.ignoreCursor(c, ignored) {
		return cxx.Continue
	}

	loc := c.Location()
	if loc.File != "" {
		if !strings.HasPrefix(loc.File, w.homeDir) && !strings.HasPrefix(loc.File, "/src/") {
			return cxx.Continue
		}
		if IsIgnoredDir(filepath.Base(filepath.Dir(loc.File))) {
			return cxx.Continue
		}
	}

	seenKey := fmt.Sprintf("%s_%d_%d_%s", loc.File, loc.Line, loc.Column, c.USR())
	if fctx.seen[seenKey] {
		return cxx.Continue
	}
	fctx.seen[seenKey] = true

	switch c.Kind() {
	case cxx.KindFunctionDecl:
		fctx.currentFn = cxx.FullyQualifiedName(c)
		fctx.hasFn = true
		fctx.paramNamesToID = map[string]int{}
		fctx.nextParamID = 0
		return cxx.Recurse

	case cxx.KindParmDecl:
		fctx.paramNamesToID[c.Spelling()] = fctx.nextParamID
		fctx.nextParamID++
		return cxx.Continue

	case cxx.KindVarDecl:
		return w.walkVarDecl(c, fctx)

	case cxx.KindIfStmt:
		return w.walkIfStmt(c, fctx, ignored)

	case cxx.KindCallExpr:
		return w.walkCallExpr(c, fctx)

	default:
		if cxx.IsAssignmentOperator(c) {
			return w.walkAssignment(c, fctx)
		}
	}
	return cxx.Recurse
}

func (w *Walker) walkVarDecl(c cxx.Cursor, fctx *funcContext) cxx.WalkResult {
	if len(c.Children()) == 0 {
		return cxx.Continue
	}

	rhsType, ok := w.typeExpr(cxx.LHS(c), fctx)
	if !ok {
		return cxx.Continue
	}

	lhsTypename := cxx.FullyQualifiedName(c) + "_type"
	lhsConst, ok := w.varTypes[lhsTypename]
	if !ok {
		lhsConst = w.ctx.NamedType(lhsTypename)
		w.varTypes[lhsTypename] = lhsConst
	}

	loc := c.Location()
	w.assertAndTrack(w.ctx.Eq(lhsConst, rhsType),
		fmt.Sprintf("Variable %s declared in %s on line %d", c.Spelling(), loc.File, loc.Line))
	return cxx.Continue
}

func (w *Walker) walkAssignment(c cxx.Cursor, fctx *funcContext) cxx.WalkResult {
	lhsCursor := cxx.LHS(c)
	if lhsCursor.Spelling() == "operator[]" {
		w.ignored++
		return cxx.Continue
	}

	loc := c.Location()
	lhsType, ok := w.typeExpr(lhsCursor, fctx)
	if !ok {
		w.ignored++
		w.warn(diagnostics.AST001, loc, fmt.Sprintf("unrecognized lhs type @ %s line %d", loc.File, loc.Line))
		return cxx.Continue
	}

	rhsType, ok := w.typeExpr(cxx.RHS(c), fctx)
	if !ok {
		w.ignored++
		w.warn(diagnostics.AST001, loc, fmt.Sprintf("unrecognized rhs type @ %s line %d", loc.File, loc.Line))
		return cxx.Continue
	}

	w.assertAndTrack(w.ctx.AssignmentCompatible(lhsType, rhsType),
		fmt.Sprintf("Assignment to %s in %s on line %d column %d", lhsCursor.Spelling(), loc.File, loc.Line, loc.Column))
	return cxx.Continue
}

func (w *Walker) walkCallExpr(c cxx.Cursor, fctx *funcContext) cxx.WalkResult {
	referenced, ok := c.Referenced()
	if !ok {
		return cxx.Recurse
	}

	fqFnName := cxx.FullyQualifiedName(referenced)
	if IsIgnoredFunc(fqFnName) {
		w.ignored++
		return cxx.Continue
	}

	loc := c.Location()
	args := cxx.Arguments(c)
	for i, arg := range args {
		if arg == nil {
			w.ignored++
			w.warn(diagnostics.AST003, loc, fmt.Sprintf("no argument cursor found in %s on line %d", loc.File, loc.Line))
			continue
		}
		argType, ok := w.typeExpr(arg, fctx)
		if !ok {
			w.ignored++
			w.warn(diagnostics.AST003, loc, fmt.Sprintf("unknown argument type in %s on line %d", loc.File, loc.Line))
			return cxx.Recurse
		}
		w.assertAndTrack(w.ctx.Eq(argType, w.ctx.ArgType(fqFnName, i)),
			fmt.Sprintf("Call to %s in %s on line %d column %d", fqFnName, loc.File, loc.Line, loc.Column))
	}
	return cxx.Recurse
}

func (w *Walker) walkIfStmt(c cxx.Cursor, fctx *funcContext, ignored map[string]bool) cxx.WalkResult {
	objName, frame, ok := w.extractConditionalConstraints(c)
	if !ok {
		return cxx.Recurse
	}

	branch := fctx.clone()
	branch.activeConstraints[objName] = frame
	cxx.WalkAST(c, func(child cxx.Cursor) cxx.WalkResult {
		return w.walk(child, branch, ignored)
	})

	if hasReturnStatement(c) {
		fresh, constraint := w.ctx.InvertFrames(frame)
		w.assertAndTrack(constraint, fmt.Sprintf("frame inverted %d", w.counter))
		fctx.activeConstraints[objName] = fresh
	}
	return cxx.Continue
}
