// Package analysis merges every translation unit's serialized constraints
// into one global solver and reports the result, mirroring the reference
// implementation's final check-and-print pass, plus the daemon run loop that
// drives repeated analyses in --run-as-daemon mode.
package analysis

import (
	"fmt"
	"io"

	"github.com/sa4u-go/sa4u/internal/smt"
	"github.com/sa4u-go/sa4u/internal/tu"
)

// MergeTU folds one cached/freshly-walked translation unit's solver text
// into global and reconstructs its assumption-label constants in global's
// own sort space, mirroring get_z3_assertions_from_stu: a cached TU's
// assertions were asserted against a throwaway per-TU solver, and only the
// label names (not the solver object) survive to be reused as assumptions
// against the merged, whole-program solver.
func MergeTU(global *smt.Context, stu *tu.SerializedTU) ([]smt.Label, error) {
	if err := global.LoadSMTLIB(stu.Solver); err != nil {
		return nil, fmt.Errorf("analysis: merging %s: %w", stu.Spelling, err)
	}
	labels := make([]smt.Label, len(stu.Assertions))
	for i, name := range stu.Assertions {
		global.DeclareBool(name)
		labels[i] = smt.Label(name)
	}
	return labels, nil
}

// Report checks global against assumptions and writes a human-readable
// result to out: nothing on a satisfiable program, or an "ERROR!" line
// followed by one unsat-core label per line otherwise, matching the
// reference implementation's final print('ERROR!') / for failure in core:
// print loop. It returns whether the program is sound (Sat).
func Report(global *smt.Context, assumptions []smt.Label, out io.Writer) (bool, error) {
	status, err := global.Check(assumptions)
	if err != nil {
		return false, fmt.Errorf("analysis: check: %w", err)
	}
	if status == smt.Sat {
		return true, nil
	}

	fmt.Fprintln(out, "ERROR!")
	for _, label := range global.UnsatCore() {
		fmt.Fprintln(out, label)
	}
	return false, nil
}
