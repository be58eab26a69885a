package sem

import (
	"testing"

	"polyc/ir"
)

func classDecl(name, base string, methods ...*ir.MethodDecl) *ir.TypeDecl {
	td := &ir.TypeDecl{Name: name, IsClass: true, Methods: methods}
	if base != "" {
		td.Bases = []string{base}
	}

	for _, m := range methods {
		m.Owner = td
	}

	return td
}

func TestChainOrder(t *testing.T) {
	prog := &ir.Program{Decls: []ir.Decl{
		classDecl("Square", "Rect"),
		classDecl("Rect", "Shape"),
		classDecl("Shape", ""),
	}}

	env, err := Build(prog)
	if err != nil {
		t.Fatalf("unexpected build error: %s", err.Error())
	}

	chain := env.Chain("Square")
	if len(chain) != 3 {
		t.Fatalf("expected a chain of 3; got %d", len(chain))
	}

	for i, want := range []string{"Shape", "Rect", "Square"} {
		if chain[i].Name != want {
			t.Errorf("chain[%d]: expected `%s`; got `%s`", i, want, chain[i].Name)
		}
	}
}

func TestClassesRootFirst(t *testing.T) {
	// Derived declared before its base: traversal must still put the base
	// first.
	prog := &ir.Program{Decls: []ir.Decl{
		classDecl("Circle", "Shape"),
		classDecl("Shape", ""),
	}}

	env, err := Build(prog)
	if err != nil {
		t.Fatalf("unexpected build error: %s", err.Error())
	}

	classes := env.Classes(prog)
	if len(classes) != 2 {
		t.Fatalf("expected 2 classes; got %d", len(classes))
	}

	if classes[0].Name != "Shape" || classes[1].Name != "Circle" {
		t.Errorf("expected Shape before Circle; got `%s`, `%s`", classes[0].Name, classes[1].Name)
	}
}

func TestInheritanceCycle(t *testing.T) {
	prog := &ir.Program{Decls: []ir.Decl{
		classDecl("A", "B"),
		classDecl("B", "A"),
	}}

	if _, err := Build(prog); err == nil {
		t.Errorf("expected an inheritance cycle error; got none")
	}
}

func TestDanglingBase(t *testing.T) {
	prog := &ir.Program{Decls: []ir.Decl{
		classDecl("Dog", "Animal"),
	}}

	if _, err := Build(prog); err == nil {
		t.Errorf("expected a dangling base error; got none")
	}
}

func TestDuplicateType(t *testing.T) {
	prog := &ir.Program{Decls: []ir.Decl{
		classDecl("Pair", ""),
		classDecl("Pair", ""),
	}}

	if _, err := Build(prog); err == nil {
		t.Errorf("expected a duplicate type error; got none")
	}
}

func TestOverrideMarking(t *testing.T) {
	prog := &ir.Program{Decls: []ir.Decl{
		classDecl("Shape", "", &ir.MethodDecl{Name: "area", Return: ir.Named("double"), Virtual: true}),
		classDecl("Circle", "Shape", &ir.MethodDecl{Name: "area", Return: ir.Named("double")}),
	}}

	env, err := Build(prog)
	if err != nil {
		t.Fatalf("unexpected build error: %s", err.Error())
	}

	m, owner := env.ResolveMethod("Circle", "area")
	if m == nil {
		t.Fatalf("expected area to resolve on Circle")
	}

	if owner.Name != "Circle" {
		t.Errorf("expected the leaf override to win resolution; got `%s`", owner.Name)
	}

	if !m.Override || !m.Virtual {
		t.Errorf("expected the redeclared method to be marked virtual override")
	}

	if !env.HasVirtual("Circle") {
		t.Errorf("expected Circle's chain to carry a virtual method")
	}
}

func TestResolveMethodFallsBackToBase(t *testing.T) {
	prog := &ir.Program{Decls: []ir.Decl{
		classDecl("Shape", "", &ir.MethodDecl{Name: "sides", Return: ir.Named("int")}),
		classDecl("Circle", "Shape"),
	}}

	env, err := Build(prog)
	if err != nil {
		t.Fatalf("unexpected build error: %s", err.Error())
	}

	m, owner := env.ResolveMethod("Circle", "sides")
	if m == nil || owner.Name != "Shape" {
		t.Fatalf("expected sides to resolve on the base class")
	}

	if m, _ := env.ResolveMethod("Circle", "perimeter"); m != nil {
		t.Errorf("expected an undeclared method not to resolve")
	}
}

func TestScopedLookup(t *testing.T) {
	prog := &ir.Program{Decls: []ir.Decl{
		&ir.VarDecl{Name: "x", Type: ir.Named("int")},
	}}

	env, err := Build(prog)
	if err != nil {
		t.Fatalf("unexpected build error: %s", err.Error())
	}

	env.PushScope()
	env.DefineVar("x", ir.PtrTo("char"))

	sym, ok := env.Lookup("x")
	if !ok || !sym.VarType.Ptr {
		t.Errorf("expected the local declaration to shadow the global")
	}

	env.PopScope()

	sym, ok = env.Lookup("x")
	if !ok || sym.VarType.Ptr {
		t.Errorf("expected the global declaration after the scope pops")
	}
}
