package lower

import (
	"polyc/ir"
	"polyc/sem"
)

// typer performs the shallow static type inference the lowering passes need
// to resolve method receivers.  It tracks a stack of local scopes alongside
// the unit environment; it is not a type checker and unknown shapes simply
// report no type.
type typer struct {
	env    *sem.Env
	scopes []map[string]ir.Type
}

func newTyper(env *sem.Env) *typer {
	return &typer{env: env}
}

func (t *typer) pushScope() {
	t.scopes = append(t.scopes, make(map[string]ir.Type))
}

func (t *typer) popScope() {
	t.scopes = t.scopes[:len(t.scopes)-1]
}

func (t *typer) define(name string, typ ir.Type) {
	if len(t.scopes) == 0 {
		t.pushScope()
	}

	t.scopes[len(t.scopes)-1][name] = typ
}

// lookupLocal finds the declared type of a name in the local scopes only.
func (t *typer) lookupLocal(name string) (ir.Type, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if typ, ok := t.scopes[i][name]; ok {
			return typ, true
		}
	}

	return ir.Type{}, false
}

// lookupVar finds the declared type of a name, innermost scope first.
func (t *typer) lookupVar(name string) (ir.Type, bool) {
	if typ, ok := t.lookupLocal(name); ok {
		return typ, true
	}

	if sym, ok := t.env.Lookup(name); ok && sym.Kind == sem.SymVar {
		return sym.VarType, true
	}

	return ir.Type{}, false
}

// typeOf infers the static type of an expression.  The second result is
// false when the shape is not one the lowering passes care about.
func (t *typer) typeOf(e ir.Expr) (ir.Type, bool) {
	switch v := e.(type) {
	case *ir.Identifier:
		return t.lookupVar(v.Name)
	case *ir.UnaryExpr:
		inner, ok := t.typeOf(v.X)
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
	case *ir.MemberAccess:
		recv, ok := t.typeOf(v.X)
		if !ok {
			return ir.Type{}, false
		}

		return t.fieldType(recv.Name, v.Member)
	case *ir.Index:
		base, ok := t.typeOf(v.X)
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

		return ir.Type{}, false
	case *ir.Call:
		if name := v.Callee(); name != "" {
			if sym, ok := t.env.Lookup(name); ok && sym.Kind == sem.SymFunc {
				return sym.Func.Return, true
			}
		}

		// A method call types as the resolved method's return.
		if ma, ok := v.Fun.(*ir.MemberAccess); ok {
			if recv, ok := t.typeOf(ma.X); ok {
				if m, _ := t.env.ResolveMethod(recv.Name, ma.Member); m != nil {
					return m.Return, true
				}
			}
		}

		return ir.Type{}, false
	case *ir.Cast:
		return v.To, true
	case *ir.New:
		typ := v.Type
		typ.Ptr = true
		return typ, true
	case *ir.Ternary:
		return t.typeOf(v.Then)
	}

	return ir.Type{}, false
}

// fieldType resolves a field name against a class and its ancestors.  The
// synthesized `base` field of a flattened record resolves to the base type.
func (t *typer) fieldType(class, field string) (ir.Type, bool) {
	chain := t.env.Chain(class)
	if chain == nil {
		if td, ok := t.env.TypeOf(class); ok {
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

	if len(chain) > 0 && field == "base" && chain[len(chain)-1].Base() != "" {
		return ir.Named(chain[len(chain)-1].Base()), true
	}

	return ir.Type{}, false
}
