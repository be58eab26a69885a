package lower

import (
	"testing"

	"polyc/common"
	"polyc/ir"
	"polyc/report"
	"polyc/sem"
)

func lowerProg(t *testing.T, prog *ir.Program, src, tgt common.Lang) *report.Diags {
	t.Helper()

	env, err := sem.Build(prog)
	if err != nil {
		t.Fatalf("environment build failed: %s", err.Error())
	}

	diags := &report.Diags{}
	Lower(prog, env, src, tgt, diags)
	return diags
}

func findFunc(prog *ir.Program, name string) *ir.FuncDecl {
	for _, d := range prog.Decls {
		if fd, ok := d.(*ir.FuncDecl); ok && fd.Name == name {
			return fd
		}
	}

	return nil
}

func findType(prog *ir.Program, name string) *ir.TypeDecl {
	for _, d := range prog.Decls {
		if td, ok := d.(*ir.TypeDecl); ok && td.Name == name {
			return td
		}
	}

	return nil
}

func calleeOf(t *testing.T, s ir.Stmt) string {
	t.Helper()

	es, ok := s.(*ir.ExprStmt)
	if !ok {
		t.Fatalf("expected an expression statement; got %T", s)
	}

	call, ok := es.X.(*ir.Call)
	if !ok {
		t.Fatalf("expected a call; got %T", es.X)
	}

	return call.Callee()
}

// shapeProg builds a Shape <- Circle hierarchy with one virtual method.
func shapeProg() *ir.Program {
	shape := &ir.TypeDecl{
		Name:    "Shape",
		IsClass: true,
		Fields:  []ir.Field{{Name: "sides", Type: ir.Named("int")}},
	}
	shape.Methods = []*ir.MethodDecl{
		{Owner: shape, Name: "area", Return: ir.Named("double"), Virtual: true, Body: &ir.Block{Stmts: []ir.Stmt{
			&ir.Return{Value: &ir.Literal{Kind: ir.LitFloat, Value: "0.0"}},
		}}},
	}

	circle := &ir.TypeDecl{
		Name:    "Circle",
		IsClass: true,
		Bases:   []string{"Shape"},
		Fields:  []ir.Field{{Name: "r", Type: ir.Named("double")}},
	}
	circle.Methods = []*ir.MethodDecl{
		{Owner: circle, Name: "area", Return: ir.Named("double"), Body: &ir.Block{Stmts: []ir.Stmt{
			&ir.Return{Value: &ir.Identifier{Name: "r"}},
		}}},
	}

	main := &ir.FuncDecl{
		Name:   "main",
		Return: ir.Named("int"),
		Body: &ir.Block{Stmts: []ir.Stmt{
			&ir.VarDecl{Name: "p", Type: ir.PtrTo("Circle"), Init: &ir.New{Type: ir.Named("Circle")}},
			&ir.ExprStmt{X: &ir.Call{
				Fun: &ir.MemberAccess{X: &ir.Identifier{Name: "p"}, Member: "area", Arrow: true},
			}},
			&ir.Return{Value: &ir.Literal{Kind: ir.LitInt, Value: "0"}},
		}},
	}

	return &ir.Program{Name: "shapes", Decls: []ir.Decl{shape, circle, main}}
}

func TestClassFlattening(t *testing.T) {
	prog := shapeProg()
	lowerProg(t, prog, common.LangCpp, common.LangC)

	shape := findType(prog, "Shape")
	if shape == nil || shape.IsClass {
		t.Fatalf("expected Shape to flatten into a plain record")
	}

	// The chain root introduces dispatch, so it carries the table pointer.
	if len(shape.Fields) != 2 || shape.Fields[0].Name != "vtable" || shape.Fields[1].Name != "sides" {
		t.Errorf("unexpected Shape layout: %+v", shape.Fields)
	}

	circle := findType(prog, "Circle")
	if circle == nil {
		t.Fatalf("expected a flattened Circle record")
	}

	// The embedded base is always the first field.
	if len(circle.Fields) != 2 || circle.Fields[0].Name != "base" || circle.Fields[0].Type.Name != "Shape" {
		t.Errorf("unexpected Circle layout: %+v", circle.Fields)
	}
}

func TestVTableSynthesis(t *testing.T) {
	prog := shapeProg()
	lowerProg(t, prog, common.LangCpp, common.LangC)

	if len(prog.VTables) != 2 {
		t.Fatalf("expected 2 vtable descriptors; got %d", len(prog.VTables))
	}

	for _, desc := range prog.VTables {
		if desc.Owner != "Shape" {
			t.Errorf("%s: expected the chain root to own the table field; got `%s`", desc.Class, desc.Owner)
		}

		if len(desc.Slots) != 1 || desc.Slots[0].Method != "area" {
			t.Errorf("%s: unexpected slots %+v", desc.Class, desc.Slots)
		}
	}

	// The derived table rebinds the slot in place.
	if prog.VTables[1].Slots[0].Impl != "Circle" {
		t.Errorf("expected Circle's table to bind its own override; got `%s`", prog.VTables[1].Slots[0].Impl)
	}

	if findFunc(prog, "Shape_area_impl") == nil || findFunc(prog, "Circle_area_impl") == nil {
		t.Errorf("expected a free implementation function per virtual method")
	}
}

func TestCtorSynthesisAndChaining(t *testing.T) {
	prog := shapeProg()
	lowerProg(t, prog, common.LangCpp, common.LangC)

	// Neither class declares a constructor, but both need one to set the
	// table pointer and chain the base.
	shapeInit := findFunc(prog, "Shape_init")
	if shapeInit == nil {
		t.Fatalf("expected a synthesized Shape_init")
	}

	circleInit := findFunc(prog, "Circle_init")
	if circleInit == nil {
		t.Fatalf("expected a synthesized Circle_init")
	}

	if len(circleInit.Body.Stmts) != 2 {
		t.Fatalf("expected base call then table assignment; got %d statements", len(circleInit.Body.Stmts))
	}

	if calleeOf(t, circleInit.Body.Stmts[0]) != "Shape_init" {
		t.Errorf("expected the base constructor to run first")
	}

	es := circleInit.Body.Stmts[1].(*ir.ExprStmt)
	if be, ok := es.X.(*ir.BinaryExpr); !ok || be.Op != "=" {
		t.Errorf("expected the table-pointer assignment after base initialization")
	}
}

func TestConstructionSite(t *testing.T) {
	prog := shapeProg()
	lowerProg(t, prog, common.LangCpp, common.LangC)

	main := findFunc(prog, "main")
	if len(main.Body.Stmts) != 4 {
		t.Fatalf("expected the construction to split into 2 statements; got %d total", len(main.Body.Stmts))
	}

	vd := main.Body.Stmts[0].(*ir.VarDecl)
	if call, ok := vd.Init.(*ir.Call); !ok || call.Callee() != "malloc" {
		t.Errorf("expected the declaration to allocate with malloc; got %T", vd.Init)
	}

	if calleeOf(t, main.Body.Stmts[1]) != "Circle_init" {
		t.Errorf("expected the init call to follow the allocation")
	}
}

func TestDefaultConstructionSite(t *testing.T) {
	prog := shapeProg()
	main := findFunc(prog, "main")
	main.Body.Stmts = []ir.Stmt{
		&ir.VarDecl{Name: "c", Type: ir.Named("Circle")},
		&ir.ExprStmt{X: &ir.Call{
			Fun: &ir.MemberAccess{X: &ir.Identifier{Name: "c"}, Member: "area"},
		}},
		&ir.Return{Value: &ir.Literal{Kind: ir.LitInt, Value: "0"}},
	}

	lowerProg(t, prog, common.LangCpp, common.LangC)

	// An argumentless declaration still constructs: the table pointer is set
	// nowhere else, and the dispatch below reads it.
	got := findFunc(prog, "main")
	if len(got.Body.Stmts) != 4 {
		t.Fatalf("expected the declaration to split into decl and init; got %d statements", len(got.Body.Stmts))
	}

	if calleeOf(t, got.Body.Stmts[1]) != "Circle_init" {
		t.Fatalf("expected the constructor to run before the first dispatch")
	}

	call := got.Body.Stmts[1].(*ir.ExprStmt).X.(*ir.Call)
	if len(call.Args) != 1 {
		t.Fatalf("expected the receiver as the only argument; got %d", len(call.Args))
	}

	if u, ok := call.Args[0].(*ir.UnaryExpr); !ok || u.Op != "&" {
		t.Errorf("expected the receiver by address; got %#v", call.Args[0])
	}
}

func TestBaseTypedConstructionCastsReceiver(t *testing.T) {
	prog := shapeProg()
	main := findFunc(prog, "main")
	main.Body.Stmts = []ir.Stmt{
		&ir.VarDecl{Name: "p", Type: ir.PtrTo("Shape"), Init: &ir.New{Type: ir.Named("Circle")}},
		&ir.Return{Value: &ir.Literal{Kind: ir.LitInt, Value: "0"}},
	}

	lowerProg(t, prog, common.LangCpp, common.LangC)

	got := findFunc(prog, "main")
	if calleeOf(t, got.Body.Stmts[1]) != "Circle_init" {
		t.Fatalf("expected the derived constructor to follow the allocation")
	}

	// The holder is typed by the base; the init function takes the derived
	// record.
	call := got.Body.Stmts[1].(*ir.ExprStmt).X.(*ir.Call)
	cast, ok := call.Args[0].(*ir.Cast)
	if !ok {
		t.Fatalf("expected the receiver cast to the constructed type; got %T", call.Args[0])
	}

	if cast.To.Name != "Circle" || !cast.To.Ptr {
		t.Errorf("cast target: got %+v, want a Circle pointer", cast.To)
	}
}

func TestBaseTypedNewAssignCastsReceiver(t *testing.T) {
	prog := shapeProg()
	main := findFunc(prog, "main")
	main.Params = []ir.Param{{Name: "p", Type: ir.PtrTo("Shape")}}
	main.Body.Stmts = []ir.Stmt{
		&ir.ExprStmt{X: &ir.BinaryExpr{
			Op: "=",
			L:  &ir.Identifier{Name: "p"},
			R:  &ir.New{Type: ir.Named("Circle")},
		}},
	}

	lowerProg(t, prog, common.LangCpp, common.LangC)

	got := findFunc(prog, "main")
	if len(got.Body.Stmts) != 2 {
		t.Fatalf("expected the assignment to split into assign and init; got %d statements", len(got.Body.Stmts))
	}

	if calleeOf(t, got.Body.Stmts[1]) != "Circle_init" {
		t.Fatalf("expected the init call after the allocation")
	}

	call := got.Body.Stmts[1].(*ir.ExprStmt).X.(*ir.Call)
	if cast, ok := call.Args[0].(*ir.Cast); !ok || cast.To.Name != "Circle" {
		t.Errorf("expected the base-typed receiver cast down; got %#v", call.Args[0])
	}
}

func TestVirtualDispatchSite(t *testing.T) {
	prog := shapeProg()
	lowerProg(t, prog, common.LangCpp, common.LangC)

	main := findFunc(prog, "main")
	es := main.Body.Stmts[2].(*ir.ExprStmt)
	call, ok := es.X.(*ir.Call)
	if !ok {
		t.Fatalf("expected a call; got %T", es.X)
	}

	// The call dispatches through the table pointer, not a static name.
	deref, ok := call.Fun.(*ir.UnaryExpr)
	if !ok || deref.Op != "*" {
		t.Fatalf("expected an indirect call through the table; got %T", call.Fun)
	}

	slot, ok := deref.X.(*ir.MemberAccess)
	if !ok || slot.Member != "area" {
		t.Fatalf("expected the area slot selection; got %T", deref.X)
	}

	if len(call.Args) != 1 {
		t.Fatalf("expected the receiver as the only argument")
	}

	if id, ok := call.Args[0].(*ir.Identifier); !ok || id.Name != "p" {
		t.Errorf("expected the receiver pointer to pass through unchanged")
	}
}

func TestDeleteLowersToDestroyThenFree(t *testing.T) {
	point := &ir.TypeDecl{Name: "Point", IsClass: true}
	point.Methods = []*ir.MethodDecl{
		{Owner: point, Name: "Point", Dtor: true, Return: ir.Void(), Body: &ir.Block{}},
	}

	main := &ir.FuncDecl{
		Name:   "main",
		Return: ir.Named("int"),
		Params: []ir.Param{{Name: "p", Type: ir.PtrTo("Point")}},
		Body: &ir.Block{Stmts: []ir.Stmt{
			&ir.ExprStmt{X: &ir.Delete{X: &ir.Identifier{Name: "p"}}},
		}},
	}

	prog := &ir.Program{Decls: []ir.Decl{point, main}}
	lowerProg(t, prog, common.LangCpp, common.LangC)

	got := findFunc(prog, "main")
	if len(got.Body.Stmts) != 2 {
		t.Fatalf("expected destroy then free; got %d statements", len(got.Body.Stmts))
	}

	if calleeOf(t, got.Body.Stmts[0]) != "Point_destroy" {
		t.Errorf("expected the destructor to run before the release")
	}

	if calleeOf(t, got.Body.Stmts[1]) != "free" {
		t.Errorf("expected the release after the destructor")
	}
}

func TestDestructorChainsDerivedFirst(t *testing.T) {
	res := &ir.TypeDecl{Name: "Res", IsClass: true, Fields: []ir.Field{{Name: "h", Type: ir.Named("int")}}}
	res.Methods = []*ir.MethodDecl{
		{Owner: res, Name: "Res", Dtor: true, Return: ir.Void(), Body: &ir.Block{Stmts: []ir.Stmt{
			&ir.ExprStmt{X: &ir.Call{Fun: &ir.Identifier{Name: "release"}, Args: []ir.Expr{&ir.Identifier{Name: "h"}}}},
		}}},
	}

	file := &ir.TypeDecl{Name: "File", IsClass: true, Bases: []string{"Res"}, Fields: []ir.Field{{Name: "fd", Type: ir.Named("int")}}}
	file.Methods = []*ir.MethodDecl{
		{Owner: file, Name: "File", Dtor: true, Return: ir.Void(), Body: &ir.Block{Stmts: []ir.Stmt{
			&ir.ExprStmt{X: &ir.Call{Fun: &ir.Identifier{Name: "close"}, Args: []ir.Expr{&ir.Identifier{Name: "fd"}}}},
		}}},
	}

	prog := &ir.Program{Decls: []ir.Decl{res, file}}
	lowerProg(t, prog, common.LangCpp, common.LangC)

	destroy := findFunc(prog, "File_destroy")
	if destroy == nil {
		t.Fatalf("expected a synthesized File_destroy")
	}

	if len(destroy.Body.Stmts) != 2 {
		t.Fatalf("expected the teardown body then the base call; got %d statements", len(destroy.Body.Stmts))
	}

	if calleeOf(t, destroy.Body.Stmts[0]) != "close" {
		t.Errorf("expected the derived teardown to run first")
	}

	if calleeOf(t, destroy.Body.Stmts[1]) != "Res_destroy" {
		t.Errorf("expected the base destructor to run last")
	}
}

func TestMultipleInheritanceRejected(t *testing.T) {
	a := &ir.TypeDecl{Name: "A", IsClass: true}
	b := &ir.TypeDecl{Name: "B", IsClass: true}
	c := &ir.TypeDecl{Name: "C", IsClass: true, Bases: []string{"A", "B"}}

	prog := &ir.Program{Decls: []ir.Decl{a, b, c}}
	diags := lowerProg(t, prog, common.LangCpp, common.LangC)

	if diags.CountKind(report.UnsupportedConstruct) != 1 {
		t.Fatalf("expected 1 unsupported-construct diagnostic; got %d", diags.CountKind(report.UnsupportedConstruct))
	}

	if findType(prog, "C") != nil {
		t.Errorf("expected the rejected class to leave the declaration list")
	}

	verbatims := 0
	for _, d := range prog.Decls {
		if _, ok := d.(*ir.Verbatim); ok {
			verbatims++
		}
	}

	if verbatims != 1 {
		t.Errorf("expected the rejected class to survive as a verbatim fragment")
	}
}
