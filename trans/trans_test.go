package trans

import (
	"testing"

	"polyc/common"
	"polyc/ir"
	"polyc/report"
	"polyc/rules"
	"polyc/sem"
)

func id(name string) *ir.Identifier {
	return &ir.Identifier{Name: name}
}

func call(fun ir.Expr, args ...ir.Expr) *ir.Call {
	return &ir.Call{Fun: fun, Args: args}
}

func method(recv ir.Expr, name string, args ...ir.Expr) *ir.Call {
	return call(&ir.MemberAccess{X: recv, Member: name}, args...)
}

func strLit(quoted string) *ir.Literal {
	return &ir.Literal{Kind: ir.LitStr, Value: quoted}
}

func translate(t *testing.T, prog *ir.Program, src, tgt common.Lang) *report.Diags {
	t.Helper()

	env, err := sem.Build(prog)
	if err != nil {
		t.Fatalf("Build: %s", err)
	}

	diags := &report.Diags{}
	Translate(prog, env, rules.Defaults(), src, tgt, diags)
	return diags
}

// body wraps statements into a function, declaring string-typed parameters
// for the given names.
func fn(name string, strParams []string, stmts ...ir.Stmt) *ir.FuncDecl {
	fd := &ir.FuncDecl{Name: name, Return: ir.Void(), Body: &ir.Block{Stmts: stmts}}
	for _, p := range strParams {
		fd.Params = append(fd.Params, ir.Param{Name: p, Type: ir.Named("String")})
	}

	return fd
}

func TestMethodIdiomToFreeCall(t *testing.T) {
	stmt := &ir.ExprStmt{X: method(id("s"), "length")}
	prog := &ir.Program{Name: "u", Decls: []ir.Decl{fn("f", []string{"s"}, stmt)}}

	translate(t, prog, common.LangJava, common.LangC)

	out, ok := stmt.X.(*ir.Call)
	if !ok {
		t.Fatalf("got %T, want call", stmt.X)
	}

	if out.Callee() != "strlen" {
		t.Errorf("callee: got %s, want strlen", out.Callee())
	}

	if len(out.Args) != 1 {
		t.Fatalf("got %d args, want 1", len(out.Args))
	}

	if arg, ok := out.Args[0].(*ir.Identifier); !ok || arg.Name != "s" {
		t.Errorf("receiver did not become the first argument: %#v", out.Args[0])
	}
}

func TestFreeCallToMethodIdiom(t *testing.T) {
	stmt := &ir.ExprStmt{X: call(id("strlen"), id("s"))}
	fd := fn("f", nil, stmt)
	fd.Params = []ir.Param{{Name: "s", Type: ir.PtrTo("char")}}
	prog := &ir.Program{Name: "u", Decls: []ir.Decl{fd}}

	translate(t, prog, common.LangC, common.LangJava)

	out, ok := stmt.X.(*ir.Call)
	if !ok {
		t.Fatalf("got %T, want call", stmt.X)
	}

	ma, ok := out.Fun.(*ir.MemberAccess)
	if !ok || ma.Member != "length" {
		t.Fatalf("got %#v, want s.length()", out.Fun)
	}

	if len(out.Args) != 0 {
		t.Errorf("got %d args, want 0", len(out.Args))
	}

	// the parameter type was respelled alongside
	if fd.Params[0].Type.Name != "String" || fd.Params[0].Type.Ptr {
		t.Errorf("param type: got %+v, want String", fd.Params[0].Type)
	}
}

func TestEqualityNeedsZero(t *testing.T) {
	cond := method(id("s"), "equals", id("t"))
	stmt := &ir.If{Cond: cond, Then: &ir.Block{}}
	prog := &ir.Program{Name: "u", Decls: []ir.Decl{fn("f", []string{"s", "t"}, stmt)}}

	translate(t, prog, common.LangJava, common.LangC)

	cmp, ok := stmt.Cond.(*ir.BinaryExpr)
	if !ok || cmp.Op != "==" {
		t.Fatalf("got %#v, want strcmp(...) == 0", stmt.Cond)
	}

	inner, ok := cmp.L.(*ir.Call)
	if !ok || inner.Callee() != "strcmp" || len(inner.Args) != 2 {
		t.Fatalf("got %#v, want strcmp(s, t)", cmp.L)
	}

	if lit, ok := cmp.R.(*ir.Literal); !ok || lit.Value != "0" {
		t.Errorf("got %#v, want 0", cmp.R)
	}
}

func TestZeroCompareRecognition(t *testing.T) {
	eq := &ir.BinaryExpr{Op: "==", L: call(id("strcmp"), id("a"), id("b")), R: &ir.Literal{Kind: ir.LitInt, Value: "0"}}
	ne := &ir.BinaryExpr{Op: "!=", L: call(id("strcmp"), id("a"), id("b")), R: &ir.Literal{Kind: ir.LitInt, Value: "0"}}
	bare := call(id("strcmp"), id("a"), id("b"))

	eqStmt := &ir.If{Cond: eq, Then: &ir.Block{}}
	neStmt := &ir.If{Cond: ne, Then: &ir.Block{}}
	bareStmt := &ir.ExprStmt{X: bare}

	fd := fn("f", nil, eqStmt, neStmt, bareStmt)
	fd.Params = []ir.Param{
		{Name: "a", Type: ir.PtrTo("char")},
		{Name: "b", Type: ir.PtrTo("char")},
	}
	prog := &ir.Program{Name: "u", Decls: []ir.Decl{fd}}

	translate(t, prog, common.LangC, common.LangJava)

	// strcmp(a, b) == 0 becomes a.equals(b)
	out, ok := eqStmt.Cond.(*ir.Call)
	if !ok {
		t.Fatalf("==: got %#v, want a.equals(b)", eqStmt.Cond)
	}
	if ma, ok := out.Fun.(*ir.MemberAccess); !ok || ma.Member != "equals" {
		t.Errorf("==: got %#v, want equals", out.Fun)
	}

	// strcmp(a, b) != 0 becomes !a.equals(b)
	not, ok := neStmt.Cond.(*ir.UnaryExpr)
	if !ok || not.Op != "!" {
		t.Fatalf("!=: got %#v, want !a.equals(b)", neStmt.Cond)
	}

	// a bare strcmp is the three-way comparison
	cmp, ok := bareStmt.X.(*ir.Call)
	if !ok {
		t.Fatalf("bare: got %T, want call", bareStmt.X)
	}
	if ma, ok := cmp.Fun.(*ir.MemberAccess); !ok || ma.Member != "compareTo" {
		t.Errorf("bare: got %#v, want compareTo", cmp.Fun)
	}
}

func TestStringOperatorIdiom(t *testing.T) {
	cond := &ir.BinaryExpr{Op: "==", L: id("a"), R: id("b")}
	numeric := &ir.BinaryExpr{Op: "==", L: id("n"), R: &ir.Literal{Kind: ir.LitInt, Value: "3"}}

	strStmt := &ir.If{Cond: cond, Then: &ir.Block{}}
	numStmt := &ir.If{Cond: numeric, Then: &ir.Block{}}

	fd := fn("f", nil, strStmt, numStmt)
	fd.Params = []ir.Param{
		{Name: "a", Type: ir.Named("string")},
		{Name: "b", Type: ir.Named("string")},
		{Name: "n", Type: ir.Named("int")},
	}
	prog := &ir.Program{Name: "u", Decls: []ir.Decl{fd}}

	translate(t, prog, common.LangCpp, common.LangC)

	cmp, ok := strStmt.Cond.(*ir.BinaryExpr)
	if !ok || cmp.Op != "==" {
		t.Fatalf("got %#v, want strcmp(...) == 0", strStmt.Cond)
	}
	if inner, ok := cmp.L.(*ir.Call); !ok || inner.Callee() != "strcmp" {
		t.Fatalf("got %#v, want strcmp(a, b)", cmp.L)
	}

	// numeric equality is untouched
	if out, ok := numStmt.Cond.(*ir.BinaryExpr); !ok || out.L != numeric.L {
		t.Errorf("numeric ==: got %#v, want pass-through", numStmt.Cond)
	}
}

func TestPrintlnSynthesis(t *testing.T) {
	concat := &ir.BinaryExpr{Op: "+", L: strLit(`"total: "`), R: id("x")}

	lineStmt := &ir.ExprStmt{X: call(id("System.out.println"), concat)}
	strStmt := &ir.ExprStmt{X: call(id("System.out.println"), strLit(`"done"`))}
	emptyStmt := &ir.ExprStmt{X: call(id("System.out.println"))}

	fd := fn("f", nil, lineStmt, strStmt, emptyStmt)
	fd.Params = []ir.Param{{Name: "x", Type: ir.Named("int")}}
	prog := &ir.Program{Name: "u", Decls: []ir.Decl{fd}}

	translate(t, prog, common.LangJava, common.LangC)

	tests := []struct {
		name   string
		x      ir.Expr
		format string
		args   int
	}{
		{"concat", lineStmt.X, `"total: %d\n"`, 1},
		{"string", strStmt.X, `"done\n"`, 0},
		{"empty", emptyStmt.X, `"\n"`, 0},
	}

	for _, tt := range tests {
		out, ok := tt.x.(*ir.Call)
		if !ok || out.Callee() != "printf" {
			t.Errorf("%s: got %#v, want printf", tt.name, tt.x)
			continue
		}

		lit, ok := out.Args[0].(*ir.Literal)
		if !ok || lit.Value != tt.format {
			t.Errorf("%s: format got %#v, want %s", tt.name, out.Args[0], tt.format)
		}

		if len(out.Args)-1 != tt.args {
			t.Errorf("%s: got %d value args, want %d", tt.name, len(out.Args)-1, tt.args)
		}
	}
}

func TestPrintfNewlineSpec(t *testing.T) {
	stmt := &ir.ExprStmt{X: call(id("System.out.printf"), strLit(`"n = %d%n"`), id("n"))}
	fd := fn("f", nil, stmt)
	fd.Params = []ir.Param{{Name: "n", Type: ir.Named("int")}}
	prog := &ir.Program{Name: "u", Decls: []ir.Decl{fd}}

	translate(t, prog, common.LangJava, common.LangC)

	out, ok := stmt.X.(*ir.Call)
	if !ok || out.Callee() != "printf" {
		t.Fatalf("got %#v, want printf", stmt.X)
	}

	if lit := out.Args[0].(*ir.Literal); lit.Value != `"n = %d\n"` {
		t.Errorf("format: got %s, want %s", lit.Value, `"n = %d\n"`)
	}
}

func TestRuleMissDiagnostic(t *testing.T) {
	helper := &ir.FuncDecl{Name: "helper", Return: ir.Void(), Body: &ir.Block{}}
	stmts := []ir.Stmt{
		&ir.ExprStmt{X: call(id("frobnicate"))},
		&ir.ExprStmt{X: call(id("frobnicate"))},
		&ir.ExprStmt{X: call(id("helper"))},
		&ir.ExprStmt{X: call(id("malloc"), &ir.Literal{Kind: ir.LitInt, Value: "8"})},
	}
	prog := &ir.Program{Name: "u", Decls: []ir.Decl{helper, fn("f", nil, stmts...)}}

	diags := translate(t, prog, common.LangC, common.LangJava)

	// one diagnostic per unknown callee, none for unit functions or the
	// runtime allowlist
	if n := diags.CountKind(report.RuleMiss); n != 1 {
		t.Errorf("got %d rule misses, want 1: %v", n, diags.List())
	}
}

func TestLiteralSpelling(t *testing.T) {
	null := &ir.Literal{Kind: ir.LitNull, Value: "null"}
	flag := &ir.Literal{Kind: ir.LitBool, Value: "true"}

	ret := &ir.Return{Value: null}
	assign := &ir.ExprStmt{X: &ir.BinaryExpr{Op: "=", L: id("b"), R: flag}}
	prog := &ir.Program{Name: "u", Decls: []ir.Decl{fn("f", nil, ret, assign)}}

	translate(t, prog, common.LangJava, common.LangC)

	if null.Value != "NULL" {
		t.Errorf("null: got %s, want NULL", null.Value)
	}

	if flag.Value != "1" {
		t.Errorf("true: got %s, want 1", flag.Value)
	}
}

func TestMainShape(t *testing.T) {
	bare := &ir.Return{}
	main := &ir.FuncDecl{
		Name:   "main",
		Return: ir.Void(),
		Params: []ir.Param{{Name: "args", Type: ir.Type{Name: "String", Dims: []ir.Expr{nil}}}},
		Body: &ir.Block{Stmts: []ir.Stmt{
			&ir.If{Cond: id("err"), Then: &ir.Block{Stmts: []ir.Stmt{bare}}},
			&ir.ExprStmt{X: call(id("helper"))},
		}},
	}
	helper := &ir.FuncDecl{Name: "helper", Return: ir.Void(), Body: &ir.Block{}}
	prog := &ir.Program{Name: "u", Decls: []ir.Decl{helper, main}}

	translate(t, prog, common.LangJava, common.LangC)

	if main.Return.Name != "int" {
		t.Errorf("return type: got %s, want int", main.Return.Name)
	}

	if len(main.Params) != 0 {
		t.Errorf("got %d params, want none", len(main.Params))
	}

	// the early bare return now yields 0
	if lit, ok := bare.Value.(*ir.Literal); !ok || lit.Value != "0" {
		t.Errorf("bare return: got %#v, want 0", bare.Value)
	}

	// and the body gained a trailing return 0
	last, ok := main.Body.Stmts[len(main.Body.Stmts)-1].(*ir.Return)
	if !ok {
		t.Fatalf("last statement is %T, want return", main.Body.Stmts[len(main.Body.Stmts)-1])
	}
	if lit, ok := last.Value.(*ir.Literal); !ok || lit.Value != "0" {
		t.Errorf("trailing return: got %#v, want 0", last.Value)
	}
}

func TestUserMethodNotIdiom(t *testing.T) {
	// a user class declaring its own `length` keeps its method call
	td := &ir.TypeDecl{
		Name:    "Route",
		IsClass: true,
		Methods: []*ir.MethodDecl{{Name: "length", Return: ir.Named("int"), Body: &ir.Block{}}},
	}
	td.Methods[0].Owner = td

	stmt := &ir.ExprStmt{X: method(id("r"), "length")}
	fd := fn("f", nil, stmt)
	fd.Params = []ir.Param{{Name: "r", Type: ir.Named("Route")}}
	prog := &ir.Program{Name: "u", Decls: []ir.Decl{td, fd}}

	translate(t, prog, common.LangJava, common.LangCpp)

	out, ok := stmt.X.(*ir.Call)
	if !ok {
		t.Fatalf("got %T, want call", stmt.X)
	}

	if ma, ok := out.Fun.(*ir.MemberAccess); !ok || ma.Member != "length" {
		t.Errorf("got %#v, want the user method call untouched", out.Fun)
	}
}
