// Package sem builds the per-translation-unit symbol and type environment:
// the table of declared types, class hierarchies, and function signatures the
// lowering passes consult.  It is built once from the IR before any pass runs.
package sem

import (
	"fmt"

	"polyc/ir"
)

// Env is the symbol and type environment of one translation unit.
type Env struct {
	// symbols maps each top-level identifier to its record.
	symbols map[string]*Symbol

	// chains maps each class name to its inheritance chain ordered
	// root -> leaf.  Lowering traverses classes in this order so that a base
	// is always flattened before its derivations.
	chains map[string][]*ir.TypeDecl

	// scopes is the local scope stack used during body analysis.
	scopes []map[string]*Symbol
}

// Build constructs the environment for a program.  Inheritance chains are
// validated here: a dangling base reference or an inheritance cycle is a
// fatal input error, not a lowering decision.
func Build(prog *ir.Program) (*Env, error) {
	env := &Env{
		symbols: make(map[string]*Symbol),
		chains:  make(map[string][]*ir.TypeDecl),
	}

	for _, d := range prog.Decls {
		switch v := d.(type) {
		case *ir.FuncDecl:
			env.symbols[v.Name] = &Symbol{Name: v.Name, Kind: SymFunc, Func: v}
		case *ir.TypeDecl:
			if _, ok := env.symbols[v.Name]; ok {
				return nil, fmt.Errorf("type `%s` declared multiple times", v.Name)
			}

			env.symbols[v.Name] = &Symbol{Name: v.Name, Kind: SymType, Type: v}
		case *ir.VarDecl:
			env.symbols[v.Name] = &Symbol{Name: v.Name, Kind: SymVar, VarType: v.Type}
		case *ir.Verbatim:
			// carries no symbols
		}
	}

	// Resolve every class's inheritance chain.
	for _, d := range prog.Decls {
		td, ok := d.(*ir.TypeDecl)
		if !ok {
			continue
		}

		chain, err := env.buildChain(td)
		if err != nil {
			return nil, err
		}

		env.chains[td.Name] = chain
	}

	// Mark overrides now that chains are known.
	for _, d := range prog.Decls {
		if td, ok := d.(*ir.TypeDecl); ok {
			env.markOverrides(td)
		}
	}

	return env, nil
}

// buildChain walks base references up from a type and returns the chain
// ordered root -> leaf.  Chains must be finite and acyclic.
func (env *Env) buildChain(td *ir.TypeDecl) ([]*ir.TypeDecl, error) {
	var reversed []*ir.TypeDecl
	seen := make(map[string]bool)

	for t := td; t != nil; {
		if seen[t.Name] {
			return nil, fmt.Errorf("inheritance cycle through `%s`", t.Name)
		}
		seen[t.Name] = true
		reversed = append(reversed, t)

		base := t.Base()
		if base == "" {
			break
		}

		baseSym, ok := env.symbols[base]
		if !ok || baseSym.Kind != SymType {
			return nil, fmt.Errorf("class `%s` inherits from undeclared type `%s`", t.Name, base)
		}
		t = baseSym.Type
	}

	chain := make([]*ir.TypeDecl, len(reversed))
	for i, t := range reversed {
		chain[len(reversed)-1-i] = t
	}

	return chain, nil
}

// markOverrides sets the Override flag on every method that redeclares a
// virtual method of an ancestor.  Such methods dispatch virtually even
// without a repeated virtual keyword.
func (env *Env) markOverrides(td *ir.TypeDecl) {
	chain := env.chains[td.Name]

	for _, m := range td.Methods {
		for _, anc := range chain {
			if anc == td {
				break
			}

			if am := anc.FindMethod(m.Name); am != nil && am.Virtual {
				m.Override = true
				m.Virtual = true
				break
			}
		}
	}
}

// -----------------------------------------------------------------------------

// Lookup returns the top-level symbol with the given name, searching local
// scopes first.
func (env *Env) Lookup(name string) (*Symbol, bool) {
	for i := len(env.scopes) - 1; i >= 0; i-- {
		if sym, ok := env.scopes[i][name]; ok {
			return sym, true
		}
	}

	sym, ok := env.symbols[name]
	return sym, ok
}

// TypeOf returns the type declaration with the given name, if one exists.
func (env *Env) TypeOf(name string) (*ir.TypeDecl, bool) {
	sym, ok := env.symbols[name]
	if !ok || sym.Kind != SymType {
		return nil, false
	}

	return sym.Type, true
}

// Chain returns the inheritance chain of a class, ordered root -> leaf.
func (env *Env) Chain(name string) []*ir.TypeDecl {
	return env.chains[name]
}

// Classes returns every class chain's leaf in root-first traversal order:
// every base appears before any of its derivations.
func (env *Env) Classes(prog *ir.Program) []*ir.TypeDecl {
	var ordered []*ir.TypeDecl
	emitted := make(map[string]bool)

	for _, d := range prog.Decls {
		td, ok := d.(*ir.TypeDecl)
		if !ok {
			continue
		}

		for _, link := range env.chains[td.Name] {
			if !emitted[link.Name] {
				emitted[link.Name] = true
				ordered = append(ordered, link)
			}
		}
	}

	return ordered
}

// ResolveMethod finds the method with the given name on a class or its
// ancestors, searching leaf -> root.  It returns the method and the class
// that declares it.
func (env *Env) ResolveMethod(class, method string) (*ir.MethodDecl, *ir.TypeDecl) {
	chain := env.chains[class]
	for i := len(chain) - 1; i >= 0; i-- {
		if m := chain[i].FindMethod(method); m != nil {
			return m, chain[i]
		}
	}

	return nil, nil
}

// HasVirtual returns whether the class or any of its ancestors declares a
// virtual method.
func (env *Env) HasVirtual(class string) bool {
	for _, td := range env.chains[class] {
		for _, m := range td.Methods {
			if m.Virtual {
				return true
			}
		}
	}

	return false
}

// -----------------------------------------------------------------------------

// Define registers a top-level symbol after environment construction.
// Lowering passes use it for the functions and types they synthesize.
func (env *Env) Define(sym *Symbol) {
	env.symbols[sym.Name] = sym
}

// PushScope pushes a local scope onto the scope stack.
func (env *Env) PushScope() {
	env.scopes = append(env.scopes, make(map[string]*Symbol))
}

// PopScope pops the innermost local scope.
func (env *Env) PopScope() {
	env.scopes = env.scopes[:len(env.scopes)-1]
}

// DefineVar declares a local variable in the innermost scope.
func (env *Env) DefineVar(name string, typ ir.Type) {
	if len(env.scopes) == 0 {
		env.PushScope()
	}

	env.scopes[len(env.scopes)-1][name] = &Symbol{Name: name, Kind: SymVar, VarType: typ}
}
