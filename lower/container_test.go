package lower

import (
	"testing"

	"polyc/common"
	"polyc/ir"
)

func mapProg(typeName string) *ir.Program {
	return &ir.Program{Decls: []ir.Decl{
		&ir.FuncDecl{
			Name:   "main",
			Return: ir.Named("int"),
			Body: &ir.Block{Stmts: []ir.Stmt{
				&ir.VarDecl{Name: "m", Type: ir.Named(typeName), Init: &ir.New{Type: ir.Named(typeName)}},
				&ir.ExprStmt{X: &ir.Call{
					Fun: &ir.MemberAccess{X: &ir.Identifier{Name: "m"}, Member: "put"},
					Args: []ir.Expr{
						&ir.Literal{Kind: ir.LitInt, Value: "1"},
						&ir.Literal{Kind: ir.LitInt, Value: "10"},
					},
				}},
				&ir.Return{Value: &ir.Call{
					Fun:  &ir.MemberAccess{X: &ir.Identifier{Name: "m"}, Member: "get"},
					Args: []ir.Expr{&ir.Literal{Kind: ir.LitInt, Value: "1"}},
				}},
			}},
		},
	}}
}

func TestContainerLowering(t *testing.T) {
	prog := mapProg("HashMap")
	lowerProg(t, prog, common.LangJava, common.LangC)

	// The runtime is prepended: record plus its four functions, then main.
	if len(prog.Decls) != 6 {
		t.Fatalf("expected 6 declarations after synthesis; got %d", len(prog.Decls))
	}

	record := findType(prog, "HashMap")
	if record == nil {
		t.Fatalf("expected the emulated record to be synthesized")
	}

	if len(record.Fields) != 3 || record.Fields[0].Name != "keys" || record.Fields[2].Name != "count" {
		t.Errorf("unexpected record layout: %+v", record.Fields)
	}

	for _, name := range []string{"hashmap_create", "hashmap_put", "hashmap_get", "hashmap_contains"} {
		if findFunc(prog, name) == nil {
			t.Errorf("expected synthesized function `%s`", name)
		}
	}

	// The capacity macro leads the macro list so the record's array sizes
	// resolve.
	if len(prog.Macros) == 0 || prog.Macros[0].Name != "HASHMAP_SIZE" {
		t.Errorf("expected the capacity macro to be synthesized first")
	}
}

func TestMapDeclNormalized(t *testing.T) {
	prog := mapProg("HashMap")
	lowerProg(t, prog, common.LangJava, common.LangC)

	main := findFunc(prog, "main")
	vd := main.Body.Stmts[0].(*ir.VarDecl)

	if vd.Type.Name != "HashMap" || vd.Type.Ptr {
		t.Errorf("expected a by-value record declaration; got %+v", vd.Type)
	}

	if call, ok := vd.Init.(*ir.Call); !ok || call.Callee() != "hashmap_create" {
		t.Errorf("expected the initializer to become hashmap_create; got %T", vd.Init)
	}
}

func TestMapCallsPassRecordByAddress(t *testing.T) {
	prog := mapProg("HashMap")
	lowerProg(t, prog, common.LangJava, common.LangC)

	main := findFunc(prog, "main")

	put := main.Body.Stmts[1].(*ir.ExprStmt).X.(*ir.Call)
	if put.Callee() != "hashmap_put" {
		t.Fatalf("expected the put call to lower; got `%s`", put.Callee())
	}

	if len(put.Args) != 3 {
		t.Fatalf("expected receiver plus 2 arguments; got %d", len(put.Args))
	}

	if ue, ok := put.Args[0].(*ir.UnaryExpr); !ok || ue.Op != "&" {
		t.Errorf("expected the record passed by address")
	}

	get := main.Body.Stmts[2].(*ir.Return).Value.(*ir.Call)
	if get.Callee() != "hashmap_get" || len(get.Args) != 2 {
		t.Errorf("expected the get call to lower with receiver plus key")
	}
}

func TestCppMapSpellingRecognized(t *testing.T) {
	prog := mapProg("map")
	lowerProg(t, prog, common.LangCpp, common.LangC)

	main := findFunc(prog, "main")
	vd := main.Body.Stmts[0].(*ir.VarDecl)
	if vd.Type.Name != "HashMap" {
		t.Errorf("expected the map declaration to normalize onto the emulated record")
	}
}

func TestMissingKeySentinel(t *testing.T) {
	prog := mapProg("HashMap")
	lowerProg(t, prog, common.LangJava, common.LangC)

	get := findFunc(prog, "hashmap_get")
	last := get.Body.Stmts[len(get.Body.Stmts)-1].(*ir.Return)

	lit, ok := last.Value.(*ir.Literal)
	if !ok || lit.Value != missingKeySentinel {
		t.Errorf("expected a get on an absent key to return the sentinel")
	}
}

func TestNoRuntimeWithoutMapUsage(t *testing.T) {
	prog := &ir.Program{Decls: []ir.Decl{
		&ir.FuncDecl{Name: "main", Return: ir.Named("int"), Body: &ir.Block{}},
	}}

	lowerProg(t, prog, common.LangJava, common.LangC)

	if len(prog.Decls) != 1 || len(prog.Macros) != 0 {
		t.Errorf("expected no runtime synthesis for a unit without maps")
	}
}
