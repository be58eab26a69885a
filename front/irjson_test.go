package front

import (
	"reflect"
	"testing"

	"polyc/common"
	"polyc/ir"
)

func sampleProgram() *ir.Program {
	shape := &ir.TypeDecl{
		Name:    "Shape",
		IsClass: true,
		Fields:  []ir.Field{{Name: "sides", Type: ir.Named("int")}},
	}
	shape.Methods = []*ir.MethodDecl{
		{
			Owner:   shape,
			Name:    "area",
			Return:  ir.Named("double"),
			Virtual: true,
			Body: &ir.Block{Stmts: []ir.Stmt{
				&ir.Return{Value: &ir.Literal{Kind: ir.LitFloat, Value: "0.0"}},
			}},
		},
		{
			Owner:  shape,
			Name:   "Shape",
			Return: ir.Void(),
			Params: []ir.Param{{Name: "n", Type: ir.Named("int")}},
			Ctor:   true,
			Body: &ir.Block{Stmts: []ir.Stmt{
				&ir.ExprStmt{X: &ir.BinaryExpr{
					Op: "=",
					L:  &ir.MemberAccess{X: &ir.Identifier{Name: "this"}, Member: "sides", Arrow: true},
					R:  &ir.Identifier{Name: "n"},
				}},
			}},
		},
	}

	main := &ir.FuncDecl{
		Name:   "main",
		Return: ir.Named("int"),
		Body: &ir.Block{Stmts: []ir.Stmt{
			&ir.VarDecl{
				Name: "s",
				Type: ir.PtrTo("Shape"),
				Init: &ir.New{Type: ir.Named("Shape"), Args: []ir.Expr{
					&ir.Literal{Kind: ir.LitInt, Value: "4"},
				}},
			},
			&ir.VarDecl{
				Name: "grid",
				Type: ir.Type{Name: "int", Dims: []ir.Expr{
					&ir.Literal{Kind: ir.LitInt, Value: "3"},
					nil,
				}},
			},
			&ir.If{
				Cond: &ir.BinaryExpr{
					Op: ">",
					L: &ir.Call{
						Fun: &ir.MemberAccess{X: &ir.Identifier{Name: "s"}, Member: "area", Arrow: true},
					},
					R: &ir.Literal{Kind: ir.LitFloat, Value: "1.0"},
				},
				Then: &ir.Block{Stmts: []ir.Stmt{
					&ir.ExprStmt{X: &ir.UnaryExpr{Op: "++", X: &ir.Index{
						X: &ir.Identifier{Name: "grid"},
						I: &ir.Literal{Kind: ir.LitInt, Value: "0"},
					}, Postfix: true}},
				}},
				Else: &ir.Block{Stmts: []ir.Stmt{&ir.Break{}}},
			},
			&ir.For{
				Init: &ir.VarDecl{Name: "i", Type: ir.Named("int"), Init: &ir.Literal{Kind: ir.LitInt, Value: "0"}},
				Cond: &ir.BinaryExpr{Op: "<", L: &ir.Identifier{Name: "i"}, R: &ir.Literal{Kind: ir.LitInt, Value: "3"}},
				Post: &ir.ExprStmt{X: &ir.UnaryExpr{Op: "++", X: &ir.Identifier{Name: "i"}, Postfix: true}},
				Body: &ir.Block{Stmts: []ir.Stmt{&ir.Continue{}}},
			},
			&ir.Switch{
				Tag: &ir.Identifier{Name: "s"},
				Cases: []ir.SwitchCase{
					{Value: &ir.Literal{Kind: ir.LitNull, Value: "null"}, Body: []ir.Stmt{&ir.Break{}}},
					{Body: []ir.Stmt{&ir.ExprStmt{X: &ir.Delete{X: &ir.Identifier{Name: "s"}}}}},
				},
			},
			&ir.Return{Value: &ir.Ternary{
				Cond: &ir.Cast{To: ir.Named("bool"), X: &ir.Identifier{Name: "s"}},
				Then: &ir.Literal{Kind: ir.LitInt, Value: "0"},
				Else: &ir.Literal{Kind: ir.LitInt, Value: "1"},
			}},
		}},
	}

	return &ir.Program{
		Name: "shapes",
		Decls: []ir.Decl{
			shape,
			&ir.VarDecl{Name: "limit", Type: ir.Named("int"), Init: &ir.Literal{Kind: ir.LitInt, Value: "10"}},
			&ir.Verbatim{Marker: "inline-asm", Text: "asm volatile(\"nop\");"},
			main,
		},
	}
}

func TestProgramRoundTrip(t *testing.T) {
	prog := sampleProgram()

	data, err := EncodeProgram(common.LangCpp, prog)
	if err != nil {
		t.Fatalf("encode failed: %s", err.Error())
	}

	lang, got, err := DecodeProgram(data)
	if err != nil {
		t.Fatalf("decode failed: %s", err.Error())
	}

	if lang != common.LangCpp {
		t.Errorf("expected language `cpp`; got `%s`", lang)
	}

	if !reflect.DeepEqual(got, prog) {
		t.Errorf("decoded tree differs from the source tree")
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "!!!"},
		{"unknown language", `{"language": "fortran", "decls": []}`},
		{"unknown decl kind", `{"language": "c", "decls": [{"kind": "enum"}]}`},
		{"unknown stmt kind", `{"language": "c", "decls": [{"kind": "func", "name": "main", "body": {"kind": "block", "stmts": [{"kind": "goto"}]}}]}`},
		{"unknown expr kind", `{"language": "c", "decls": [{"kind": "var", "name": "x", "type": {"name": "int"}, "init": {"kind": "lambda"}}]}`},
		{"unknown literal kind", `{"language": "c", "decls": [{"kind": "var", "name": "x", "type": {"name": "int"}, "init": {"kind": "literal", "lit": "complex", "value": "1i"}}]}`},
	}

	for _, c := range cases {
		if _, _, err := DecodeProgram([]byte(c.data)); err == nil {
			t.Errorf("%s: expected a decode error; got none", c.name)
		}
	}
}
