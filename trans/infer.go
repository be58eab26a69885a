package trans

import (
	"polyc/ir"
	"polyc/sem"
)

// typeOf performs the shallow inference the translator needs: receiver
// pointer-ness for member spelling and format-specifier choice for print
// synthesis.  Local scopes live on the environment; the body walk keeps them
// current.  Unknown shapes report no type.
func (tr *translator) typeOf(e ir.Expr) (ir.Type, bool) {
	switch v := e.(type) {
	case *ir.Identifier:
		if sym, ok := tr.env.Lookup(v.Name); ok && sym.Kind == sem.SymVar {
			return sym.VarType, true
		}
	case *ir.Literal:
		switch v.Kind {
		case ir.LitStr:
			return ir.Named("string"), true
		case ir.LitChar:
			return ir.Named("char"), true
		case ir.LitFloat:
			return ir.Named("double"), true
		case ir.LitInt:
			return ir.Named("int"), true
		case ir.LitBool:
			return ir.Named("bool"), true
		}
	case *ir.UnaryExpr:
		inner, ok := tr.typeOf(v.X)
		if !ok {
			return ir.Type{}, false
		}

		switch v.Op {
		case "&":
			inner.Ptr = true
			return inner, true
		case "*":
			if inner.Ptr {
				inner.Ptr = false
				return inner, true
			}
			return ir.Type{}, false
		}

		return inner, true
	case *ir.Index:
		base, ok := tr.typeOf(v.X)
		if !ok {
			return ir.Type{}, false
		}

		if len(base.Dims) > 0 {
			base.Dims = base.Dims[1:]
			return base, true
		}

		if base.Ptr {
			base.Ptr = false
			return base, true
		}
	case *ir.Call:
		if name := v.Callee(); name != "" {
			if sym, ok := tr.env.Lookup(name); ok && sym.Kind == sem.SymFunc {
				return sym.Func.Return, true
			}
		}

		if ma, ok := v.Fun.(*ir.MemberAccess); ok {
			if recv, ok := tr.typeOf(ma.X); ok {
				if m, _ := tr.env.ResolveMethod(recv.Name, ma.Member); m != nil {
					return m.Return, true
				}
			}
		}
	case *ir.MemberAccess:
		recv, ok := tr.typeOf(v.X)
		if !ok {
			return ir.Type{}, false
		}

		return tr.fieldType(recv.Name, v.Member)
	case *ir.Cast:
		return v.To, true
	case *ir.New:
		typ := v.Type
		typ.Ptr = true
		return typ, true
	case *ir.Ternary:
		return tr.typeOf(v.Then)
	}

	return ir.Type{}, false
}

// fieldType resolves a field name against a declared type and its ancestors.
func (tr *translator) fieldType(class, field string) (ir.Type, bool) {
	chain := tr.env.Chain(class)
	if chain == nil {
		if td, ok := tr.env.TypeOf(class); ok {
			chain = []*ir.TypeDecl{td}
		}
	}

	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].Fields {
			if f.Name == field {
				return f.Type, true
			}
		}
	}

	return ir.Type{}, false
}

// isStringOperand reports whether an expression is string-shaped in either
// the source or the target spelling.
func (tr *translator) isStringOperand(e ir.Expr) bool {
	if lit, ok := e.(*ir.Literal); ok {
		return lit.Kind == ir.LitStr
	}

	t, ok := tr.typeOf(e)
	return ok && isStringType(t)
}

// isStringType covers the string spellings of all three languages, including
// a character buffer.
func isStringType(t ir.Type) bool {
	switch {
	case t.Name == "string" || t.Name == "String":
		return true
	case t.Name == "char" && (t.Ptr || len(t.Dims) > 0):
		return true
	}

	return false
}
