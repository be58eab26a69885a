// Package raise implements the best-effort procedural to object-oriented
// re-synthesis passes, the inverse direction of lowering.  Raising
// reconstructs a managed map from the emulated-container idiom and rebinds
// `Type_method(&x, args)` free functions onto record methods.  It recognizes
// a closed set of shapes; everything else passes through untouched.
package raise

import (
	"polyc/common"
	"polyc/ir"
	"polyc/report"
	"polyc/sem"
)

// Raiser runs the raising passes over one translation unit's tree.
type Raiser struct {
	prog *ir.Program
	env  *sem.Env

	tgt common.Lang

	diags *report.Diags
}

// Raise rewrites procedural idioms into object-oriented shape for an OO
// target.  The tree is rewritten in place; containers are raised before
// methods so the container runtime is never mistaken for user records.
func Raise(prog *ir.Program, env *sem.Env, src, tgt common.Lang, diags *report.Diags) {
	if src.IsOO() || !tgt.IsOO() {
		return
	}

	r := &Raiser{prog: prog, env: env, tgt: tgt, diags: diags}
	r.raiseContainers()
	r.raiseMethods()
}
