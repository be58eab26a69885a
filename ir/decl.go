package ir

// Param is a single function or method parameter.
type Param struct {
	Name string
	Type Type
}

// Field is a single record field.
type Field struct {
	Name string
	Type Type
}

// FuncDecl is a free function definition.
type FuncDecl struct {
	Name   string
	Return Type
	Params []Param
	Body   *Block

	// TypeParams holds the function's template type parameters, if any.
	// Generic lowering handles the single-parameter case; anything wider is
	// an unsupported construct.
	TypeParams []string
}

// TypeDecl is a struct or class declaration.
type TypeDecl struct {
	Name string

	// Bases lists the declared base types in order.  Single inheritance is
	// the supported shape; more than one entry is rejected by class lowering.
	Bases []string

	// The ordered fields of the record.
	Fields []Field

	// The ordered methods of the class.  Empty for plain records.
	Methods []*MethodDecl

	// TypeParams holds the class's template type parameters, if any.  Class
	// templates are not lowerable and pass through flagged.
	TypeParams []string

	// IsClass distinguishes a class (may have methods, bases) from a plain
	// record.
	IsClass bool
}

// Base returns the single base type name, or "" if the type has no base.
// Callers must have rejected multiple inheritance first.
func (td *TypeDecl) Base() string {
	if len(td.Bases) == 0 {
		return ""
	}

	return td.Bases[0]
}

// FindMethod returns the declared method with the given name, if any.
func (td *TypeDecl) FindMethod(name string) *MethodDecl {
	for _, m := range td.Methods {
		if m.Name == name {
			return m
		}
	}

	return nil
}

// MethodDecl is a method belonging to a TypeDecl.
type MethodDecl struct {
	// The owning type declaration.
	Owner *TypeDecl

	Name   string
	Return Type
	Params []Param
	Body   *Block

	// Virtual marks a dynamically dispatched method.
	Virtual bool

	// Override is true if a same-signature virtual method exists on an
	// ancestor.  Set by the environment builder.
	Override bool

	// Ctor and Dtor mark constructors and destructors.
	Ctor bool
	Dtor bool

	// BaseArgs holds the arguments of an explicit base-initializer on a
	// constructor.  Nil means an implicit no-argument base call.
	BaseArgs []Expr

	// Access is the declared access specifier.  It affects nothing at
	// runtime and is dropped by lowering.
	Access string
}

// VarDecl is a variable declaration.  It appears both at the top level and as
// a statement.
type VarDecl struct {
	Name string
	Type Type

	// The initializer expression, if any.
	Init Expr

	// CtorArgs holds constructor arguments for direct class construction,
	// eg. `Circle c(2);`.  Mutually exclusive with Init.
	CtorArgs []Expr
}

func (fd *FuncDecl) declNode() {}
func (td *TypeDecl) declNode() {}
func (vd *VarDecl) declNode()  {}

// -----------------------------------------------------------------------------

// VTableDescriptor binds the virtual method slots of one class to their
// implementing classes.  It is synthesized once per class during class
// lowering, emitted as one read-only table per class, and never mutated after
// synthesis.  Slot order is inherited from the root of the hierarchy;
// overrides replace the bound implementation in place, so slot count and
// order never change down a chain.
type VTableDescriptor struct {
	// The class the table belongs to.
	Class string

	// Owner is the class that introduced the dispatch slots: the one whose
	// flattened record carries the vtable-pointer field.  Its name forms the
	// synthesized table struct type, and every slot's function pointer takes
	// an Owner-typed self so derived tables alias through the base layout.
	Owner string

	// The ordered dispatch slots.
	Slots []VTableSlot
}

// VTableSlot is a single virtual dispatch slot.
type VTableSlot struct {
	// The method name.
	Method string

	// The class whose implementation the slot is bound to.
	Impl string

	// The method signature, excluding the self parameter.
	Return Type
	Params []Param
}

// TableName returns the emitted name of the class's static vtable value.
func (vt *VTableDescriptor) TableName() string {
	return vt.Class + "_vtable"
}

// StructName returns the emitted name of the table's record type.
func (vt *VTableDescriptor) StructName() string {
	return vt.Owner + "_VTable"
}

// MacroDef is a parameterized macro synthesized by generic lowering from a
// single-type-parameter function template.  Parameters are textual
// substitution, not type-checked; the macro keeps the template's name so call
// sites stay unchanged.
type MacroDef struct {
	Name   string
	Params []string

	// The macro body: the template's single return expression.
	Body Expr
}
