package trans

import (
	"strings"

	"polyc/ir"
	"polyc/report"
	"polyc/rules"
)

// passthroughCallees are runtime names that never need a rule entry and never
// warrant a rule-miss diagnostic.
var passthroughCallees = map[string]bool{
	"malloc":  true,
	"calloc":  true,
	"free":    true,
	"sizeof":  true,
	"exit":    true,
	"rand":    true,
	"srand":   true,
	"time":    true,
	"puts":    true,
	"putchar": true,
	"getchar": true,
}

// calleePath flattens a dotted callee into its source spelling, eg.
// `System.out.println`.  Computed callees (a dereferenced function pointer, a
// selection through a pointer) have no path.
func calleePath(e ir.Expr) (string, bool) {
	switch v := e.(type) {
	case *ir.Identifier:
		return v.Name, true
	case *ir.MemberAccess:
		if v.Arrow {
			return "", false
		}

		base, ok := calleePath(v.X)
		if !ok {
			return "", false
		}

		return base + "." + v.Member, true
	}

	return "", false
}

// rewriteBinary matches the comparison-shaped idioms before descending into
// the operands: a recognized call compared against zero carries an idiom's
// boolean meaning, and some languages spell an idiom as an operator outright.
func (tr *translator) rewriteBinary(v *ir.BinaryExpr) ir.Expr {
	if v.Op == "==" || v.Op == "!=" {
		if out, ok := tr.rewriteZeroCompare(v); ok {
			return out
		}

		if out, ok := tr.rewriteOperatorIdiom(v); ok {
			return out
		}
	}

	v.L = tr.rewriteExpr(v.L)
	v.R = tr.rewriteExpr(v.R)
	return v
}

// rewriteZeroCompare recognizes `f(args) == 0` shapes whose callee carries a
// boolean idiom under zero comparison, eg. `strcmp(a, b) == 0` as string
// equality.
func (tr *translator) rewriteZeroCompare(v *ir.BinaryExpr) (ir.Expr, bool) {
	call, ok := v.L.(*ir.Call)
	other := v.R
	if !ok {
		call, ok = v.R.(*ir.Call)
		other = v.L
	}
	if !ok || !isZero(other) {
		return nil, false
	}

	path, ok := calleePath(call.Fun)
	if !ok {
		return nil, false
	}

	id, to, ok := tr.set.LookupZeroCall(tr.src, tr.tgt, path)
	if !ok {
		return nil, false
	}

	tr.rewriteExprs(call.Args)

	out := tr.buildCall(id, to, call.Args)
	if v.Op == "!=" {
		out = negate(out)
	}

	return out, true
}

// rewriteOperatorIdiom recognizes idioms the source language spells as a
// binary operator, eg. `==` on strings.  The operand types gate the match;
// `==` on numbers is just `==`.
func (tr *translator) rewriteOperatorIdiom(v *ir.BinaryExpr) (ir.Expr, bool) {
	id, to, ok := tr.set.LookupOperator(tr.src, tr.tgt, v.Op)
	neg := false
	if !ok && v.Op == "!=" {
		id, to, ok = tr.set.LookupOperator(tr.src, tr.tgt, "==")
		neg = true
	}
	if !ok {
		return nil, false
	}

	if !tr.isStringOperand(v.L) && !tr.isStringOperand(v.R) {
		return nil, false
	}

	l := tr.rewriteExpr(v.L)
	r := tr.rewriteExpr(v.R)

	out := tr.buildCall(id, to, []ir.Expr{l, r})
	if neg {
		out = negate(out)
	}

	return out, true
}

// rewriteCall substitutes call idioms per the rule table.  Recognition runs
// against the source shape, so the callee is matched before the arguments
// are rewritten.
func (tr *translator) rewriteCall(v *ir.Call) ir.Expr {
	path, ok := calleePath(v.Fun)
	if !ok {
		// computed callees (lowered virtual dispatch) pass through
		v.Fun = tr.rewriteExpr(v.Fun)
		tr.rewriteExprs(v.Args)
		return v
	}

	// full-path idioms: printf, Math.sqrt, System.out.println
	if id, to, ok := tr.set.LookupCall(tr.src, tr.tgt, path); ok && !id.Forms[tr.src].Method {
		tr.rewriteExprs(v.Args)
		return tr.buildCall(id, to, v.Args)
	}

	// subject-first idioms: s.length(), s.equals(t)
	if ma, ok := v.Fun.(*ir.MemberAccess); ok && !ma.Arrow {
		// a method resolvable on a declared class is the user's own, never
		// an idiom and never a miss; the managed map's operations likewise
		// belong to the target runtime
		if recv, ok := tr.typeOf(ma.X); ok {
			m, _ := tr.env.ResolveMethod(recv.Name, ma.Member)
			if m != nil || recv.Name == "HashMap" || recv.Name == "map" {
				ma.X = tr.rewriteExpr(ma.X)
				tr.rewriteExprs(v.Args)
				return v
			}
		}

		if out, handled := tr.rewriteMethodIdiom(v, ma); handled {
			return out
		}
	}

	tr.noteMiss(path)
	v.Fun = tr.rewriteExpr(v.Fun)
	tr.rewriteExprs(v.Args)
	return v
}

// rewriteMethodIdiom recognizes a method-spelled idiom on a receiver.
func (tr *translator) rewriteMethodIdiom(v *ir.Call, ma *ir.MemberAccess) (ir.Expr, bool) {
	id, to, ok := tr.set.LookupCall(tr.src, tr.tgt, ma.Member)
	if !ok || !id.Forms[tr.src].Method {
		return nil, false
	}

	recv := tr.rewriteExpr(ma.X)
	tr.rewriteExprs(v.Args)

	logical := append([]ir.Expr{recv}, v.Args...)
	return tr.buildCall(id, to, logical), true
}

// buildCall materializes the target form of a recognized idiom.  The logical
// argument list is subject-first: a method source form contributes its
// receiver as the first logical argument, and a method target form consumes
// it back.  Order and count are otherwise preserved.
func (tr *translator) buildCall(id *rules.Idiom, to rules.Form, logical []ir.Expr) ir.Expr {
	if out, ok := tr.buildPrint(id, to, logical); ok {
		return out
	}

	var out ir.Expr
	switch {
	case to.Operator && len(logical) == 2:
		out = &ir.BinaryExpr{Op: to.Callee, L: logical[0], R: logical[1]}
	case to.Method && len(logical) > 0:
		arrow := false
		if t, ok := tr.typeOf(logical[0]); ok {
			arrow = t.Ptr
		}

		out = &ir.Call{
			Fun:  &ir.MemberAccess{X: logical[0], Member: to.Callee, Arrow: arrow},
			Args: logical[1:],
		}
	default:
		out = &ir.Call{Fun: &ir.Identifier{Name: to.Callee}, Args: logical}
	}

	if to.NeedsZero && !to.Operator {
		out = &ir.BinaryExpr{Op: "==", L: out, R: zeroLit()}
	}

	return out
}

// negate flips the boolean sense of a built idiom.  Comparison results flip
// their operator; anything else gets a logical not.
func negate(e ir.Expr) ir.Expr {
	if b, ok := e.(*ir.BinaryExpr); ok {
		switch b.Op {
		case "==":
			b.Op = "!="
			return b
		case "!=":
			b.Op = "=="
			return b
		}
	}

	return &ir.UnaryExpr{Op: "!", X: e}
}

// noteMiss records a rule miss for an unrecognized callee.  Calls to
// functions declared in the unit, to user symbols, and to the allowlisted
// runtime names pass silently.
func (tr *translator) noteMiss(path string) {
	if tr.declared[path] || passthroughCallees[path] || tr.missed[path] {
		return
	}

	// an undotted callee resolving to a unit symbol, or to a method of the
	// enclosing class, is the user's own
	if !strings.Contains(path, ".") {
		if _, ok := tr.env.Lookup(path); ok {
			return
		}

		if tr.class != nil {
			if m, _ := tr.env.ResolveMethod(tr.class.Name, path); m != nil {
				return
			}
		}
	}

	tr.missed[path] = true
	tr.diags.Add(report.RuleMiss, path, "no rule for callee; call passed through unchanged")
}

func isZero(e ir.Expr) bool {
	lit, ok := e.(*ir.Literal)
	return ok && lit.Kind == ir.LitInt && lit.Value == "0"
}

func zeroLit() *ir.Literal {
	return &ir.Literal{Kind: ir.LitInt, Value: "0"}
}
