package trans

import (
	"strings"

	"polyc/ir"
	"polyc/rules"
)

// buildPrint handles the print idioms whose target spelling is printf.
// Unlike every other idiom, lowering a println means synthesizing a format
// string from the argument's shape; a formatted print only needs its newline
// specifier respelled.
func (tr *translator) buildPrint(id *rules.Idiom, to rules.Form, logical []ir.Expr) (ir.Expr, bool) {
	if to.Callee != "printf" {
		return nil, false
	}

	switch id.Construct {
	case "print-fmt":
		if len(logical) > 0 {
			if lit, ok := logical[0].(*ir.Literal); ok && lit.Kind == ir.LitStr {
				lit.Value = strings.ReplaceAll(lit.Value, "%n", `\n`)
			}
		}

		return &ir.Call{Fun: &ir.Identifier{Name: "printf"}, Args: logical}, true
	case "print-line":
		return tr.printfFor(logical, true), true
	case "print-raw":
		return tr.printfFor(logical, false), true
	}

	return nil, false
}

// printfFor synthesizes a printf call printing the given argument, with or
// without a trailing newline.
func (tr *translator) printfFor(args []ir.Expr, newline bool) ir.Expr {
	nl := ""
	if newline {
		nl = `\n`
	}

	if len(args) == 0 {
		return printfCall(`"`+nl+`"`, nil)
	}

	format, rest := tr.formatFor(args[0])
	return printfCall(`"`+format+nl+`"`, rest)
}

// formatFor derives the format chunk and value arguments for one printed
// expression.  String concatenations flatten into interleaved text and
// specifiers; everything else prints under the specifier its shallow type
// suggests.
func (tr *translator) formatFor(e ir.Expr) (string, []ir.Expr) {
	switch v := e.(type) {
	case *ir.BinaryExpr:
		if v.Op == "+" && (tr.isStringOperand(v.L) || tr.isStringOperand(v.R)) {
			lf, la := tr.formatFor(v.L)
			rf, ra := tr.formatFor(v.R)
			return lf + rf, append(la, ra...)
		}
	case *ir.Literal:
		switch v.Kind {
		case ir.LitStr:
			raw := strings.Trim(v.Value, `"`)
			return strings.ReplaceAll(raw, "%n", `\n`), nil
		case ir.LitChar:
			return "%c", []ir.Expr{v}
		case ir.LitFloat:
			return "%f", []ir.Expr{v}
		}
	}

	return tr.specFor(e), []ir.Expr{e}
}

// specFor picks the printf conversion for an expression by its shallow type.
// Unknown shapes print as integers.
func (tr *translator) specFor(e ir.Expr) string {
	t, ok := tr.typeOf(e)
	if !ok {
		return "%d"
	}

	switch {
	case isStringType(t):
		return "%s"
	case t.Name == "float" || t.Name == "double":
		return "%f"
	case t.Name == "char" && !t.Ptr:
		return "%c"
	}

	return "%d"
}

func printfCall(format string, args []ir.Expr) *ir.Call {
	all := append([]ir.Expr{&ir.Literal{Kind: ir.LitStr, Value: format}}, args...)
	return &ir.Call{Fun: &ir.Identifier{Name: "printf"}, Args: all}
}
