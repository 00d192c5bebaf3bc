package genconstraints

import (
	"github.com/sa4u-go/sa4u/internal/smt"
)

// funcContext is the per-traversal state the reference implementation threads
// through every walker/type_expr call as a plain dict: which function body
// we're inside, its parameter-to-ArgType-index map, the frame refinements
// currently in scope, and the set of already-visited cursor USRs.
type funcContext struct {
	currentFn      string
	hasFn          bool
	paramNamesToID map[string]int
	nextParamID    int

	// activeConstraints maps a fully-qualified object name to the Frames
	// term known to hold for it at this point in the walk, set by an
	// if-guarded member comparison (`if (obj.frame == X)`) and cleared (or
	// inverted, if the guarded block returns) once the walker leaves the
	// if-statement's subtree.
	activeConstraints map[string]smt.Term

	seen map[string]bool
}

func newFuncContext() *funcContext {
	return &funcContext{
		paramNamesToID:    map[string]int{},
		activeConstraints: map[string]smt.Term{},
		seen:              map[string]bool{},
	}
}

// clone returns a shallow copy sharing the seen set (visited-node dedup is
// TU-global) but an independent activeConstraints map, so that a branch of
// the walk can add or revert a frame refinement without affecting a sibling
// branch.
func (f *funcContext) clone() *funcContext {
	cp := &funcContext{
		currentFn:         f.currentFn,
		hasFn:             f.hasFn,
		paramNamesToID:    f.paramNamesToID,
		nextParamID:       f.nextParamID,
		activeConstraints: map[string]smt.Term{},
		seen:              f.seen,
	}
	for k, v := range f.activeConstraints {
		cp.activeConstraints[k] = v
	}
	return cp
}
