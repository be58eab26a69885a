// Package ir defines the language-neutral syntax tree every pass operates on.
// The node set is closed: passes dispatch over it with exhaustive type
// switches, so adding a node kind is a compile-time obligation on every pass.
// Each node owns its children exclusively; the tree has no cycles and no
// shared ownership, so it is freely movable between passes.
package ir

// Node is the abstract interface for all IR nodes.
type Node interface{}

// Decl is a top-level declaration: a function, a type, or a variable.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a block.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a translation unit's tree.
type Program struct {
	// The unit name, generally the input file stem.  Used for output naming
	// and for the wrapping class name when emitting Java.
	Name string

	// The top-level declarations in source order.
	Decls []Decl

	// VTables holds the vtable descriptors synthesized by class lowering.
	// Empty before lowering; never mutated after synthesis.
	VTables []*VTableDescriptor

	// Macros holds the macro definitions synthesized by generic lowering.
	Macros []*MacroDef
}

// -----------------------------------------------------------------------------

// Type is a declared type reference: a base name plus pointer/array shape.
// Type names are plain identifiers; the translator maps them between
// languages through the rule table.
type Type struct {
	// The base type name, eg. `int`, `char`, `Shape`.
	Name string

	// Whether this is a pointer to the base type.
	Ptr bool

	// The array dimension sizes, outermost first.  A nil entry is an unsized
	// dimension.  Empty for scalars.
	Dims []Expr
}

// Void is the canonical void type.
func Void() Type { return Type{Name: "void"} }

// Named returns a scalar type with the given name.
func Named(name string) Type { return Type{Name: name} }

// PtrTo returns a pointer type to the given name.
func PtrTo(name string) Type { return Type{Name: name, Ptr: true} }

// IsVoid returns whether the type is void and not a pointer.
func (t Type) IsVoid() bool { return t.Name == "void" && !t.Ptr && len(t.Dims) == 0 }
