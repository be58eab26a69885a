package sem

import "polyc/ir"

// SymbolKind classifies a declared symbol.
type SymbolKind int

// Enumeration of symbol kinds.
const (
	SymFunc SymbolKind = iota
	SymType
	SymVar
)

func (k SymbolKind) String() string {
	switch k {
	case SymFunc:
		return "function"
	case SymType:
		return "type"
	case SymVar:
		return "variable"
	}

	return "unknown"
}

// Symbol is a single named entity declared in a translation unit.
type Symbol struct {
	Name string
	Kind SymbolKind

	// Func is set for function symbols.
	Func *ir.FuncDecl

	// Type is set for type symbols.
	Type *ir.TypeDecl

	// VarType is the declared type for variable symbols.
	VarType ir.Type
}
