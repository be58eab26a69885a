package emit

import (
	"strings"

	"polyc/common"
	"polyc/ir"
	"polyc/report"
)

// binaryPrec orders the binary operators the emitters parenthesize by.
// Higher binds tighter.
var binaryPrec = map[string]int{
	"*": 10, "/": 10, "%": 10,
	"+": 9, "-": 9,
	"<<": 8, ">>": 8,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"==": 6, "!=": 6,
	"&": 5, "^": 4, "|": 3,
	"&&": 2, "||": 1,
	"=": 0, "+=": 0, "-=": 0, "*=": 0, "/=": 0, "%=": 0,
}

// exprString renders one expression in the given language.  Idiom and
// spelling substitution happened upstream in the translator; this is a
// mechanical walk.
func exprString(lang common.Lang, e ir.Expr) string {
	switch v := e.(type) {
	case nil:
		return ""
	case *ir.Literal:
		return v.Value
	case *ir.Identifier:
		return v.Name
	case *ir.BinaryExpr:
		return binaryString(lang, v)
	case *ir.UnaryExpr:
		x := operand(lang, v.X, 11)
		if v.Postfix {
			return x + v.Op
		}
		return v.Op + x
	case *ir.Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = exprString(lang, a)
		}

		fun := exprString(lang, v.Fun)
		if _, ok := v.Fun.(*ir.UnaryExpr); ok {
			fun = "(" + fun + ")"
		}

		return fun + "(" + strings.Join(args, ", ") + ")"
	case *ir.MemberAccess:
		sep := "."
		if v.Arrow {
			sep = "->"
		}

		return operand(lang, v.X, 11) + sep + v.Member
	case *ir.Index:
		return operand(lang, v.X, 11) + "[" + exprString(lang, v.I) + "]"
	case *ir.Ternary:
		return operand(lang, v.Cond, 1) + " ? " + exprString(lang, v.Then) + " : " + exprString(lang, v.Else)
	case *ir.Cast:
		return "(" + typeString(lang, v.To) + ")" + operand(lang, v.X, 11)
	case *ir.New:
		if v.Count != nil {
			return "new " + typeString(lang, v.Type) + "[" + exprString(lang, v.Count) + "]"
		}

		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = exprString(lang, a)
		}

		return "new " + typeString(lang, v.Type) + "(" + strings.Join(args, ", ") + ")"
	case *ir.Delete:
		if v.Array {
			return "delete[] " + exprString(lang, v.X)
		}

		return "delete " + exprString(lang, v.X)
	default:
		report.ReportICE("exprString: unknown expression kind %T", e)
		return ""
	}
}

func binaryString(lang common.Lang, be *ir.BinaryExpr) string {
	prec := binaryPrec[be.Op]
	l := operand(lang, be.L, prec)
	r := operand(lang, be.R, prec+1)

	// Assignment associates right and its target never needs parens.
	if prec == 0 {
		l = exprString(lang, be.L)
		r = exprString(lang, be.R)
	}

	return l + " " + be.Op + " " + r
}

// operand renders a sub-expression, parenthesizing when it binds looser than
// its context.
func operand(lang common.Lang, e ir.Expr, ctxPrec int) string {
	s := exprString(lang, e)

	switch v := e.(type) {
	case *ir.BinaryExpr:
		if binaryPrec[v.Op] < ctxPrec {
			return "(" + s + ")"
		}
	case *ir.Ternary:
		if ctxPrec > 1 {
			return "(" + s + ")"
		}
	case *ir.Cast, *ir.Delete:
		if ctxPrec >= 11 {
			return "(" + s + ")"
		}
	case *ir.UnaryExpr:
		if ctxPrec >= 11 && !v.Postfix {
			return "(" + s + ")"
		}
	}

	return s
}

// typeString renders a scalar or pointer type name.  Array dimensions attach
// at the declarator, not here.
func typeString(lang common.Lang, t ir.Type) string {
	name := t.Name

	if t.Ptr {
		if lang == common.LangJava {
			// Java has no pointer syntax; an unmapped pointer degrades to
			// its base type.
			return name
		}

		return name + "*"
	}

	return name
}
