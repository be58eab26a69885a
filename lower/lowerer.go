// Package lower implements the paradigm-crossing lowering passes that turn
// object-oriented constructs into procedural equivalents: class lowering
// (inheritance flattening, constructor and destructor synthesis, virtual
// dispatch through static function-pointer tables), generic lowering
// (single-type-parameter function templates into macros), and container
// emulation (a managed map into a fixed-capacity record plus free functions).
package lower

import (
	"polyc/common"
	"polyc/ir"
	"polyc/report"
	"polyc/sem"
)

// Lowerer runs the lowering passes over one translation unit's tree.
type Lowerer struct {
	prog *ir.Program
	env  *sem.Env

	src, tgt common.Lang

	diags *report.Diags
}

// Lower runs every lowering pass the source/target pair requires.  The tree
// is rewritten in place; passes run in the fixed order class, generic,
// container so that later passes only ever see already-flattened shapes.
func Lower(prog *ir.Program, env *sem.Env, src, tgt common.Lang, diags *report.Diags) {
	l := &Lowerer{
		prog:  prog,
		env:   env,
		src:   src,
		tgt:   tgt,
		diags: diags,
	}

	if !tgt.IsOO() {
		if src.IsOO() {
			l.lowerClasses()
		}

		l.lowerGenerics()
	}

	if src.HasManagedMap() && !tgt.HasManagedMap() {
		l.lowerContainers()
	}
}
