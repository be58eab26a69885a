package emit

import (
	"strings"
	"testing"

	"polyc/common"
	"polyc/ir"
)

func intLit(v string) ir.Expr {
	return &ir.Literal{Kind: ir.LitInt, Value: v}
}

func strLit(v string) ir.Expr {
	return &ir.Literal{Kind: ir.LitStr, Value: `"` + v + `"`}
}

func printfStmt(args ...ir.Expr) ir.Stmt {
	return &ir.ExprStmt{X: &ir.Call{Fun: &ir.Identifier{Name: "printf"}, Args: args}}
}

func mustContain(t *testing.T, out string, wants ...string) {
	t.Helper()

	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCEmission(t *testing.T) {
	prog := &ir.Program{
		Name: "count",
		Decls: []ir.Decl{
			&ir.FuncDecl{
				Name:   "main",
				Return: ir.Named("int"),
				Body: &ir.Block{Stmts: []ir.Stmt{
					&ir.For{
						Init: &ir.VarDecl{Name: "i", Type: ir.Named("int"), Init: intLit("0")},
						Cond: &ir.BinaryExpr{Op: "<", L: &ir.Identifier{Name: "i"}, R: intLit("3")},
						Post: &ir.ExprStmt{X: &ir.UnaryExpr{Op: "++", X: &ir.Identifier{Name: "i"}, Postfix: true}},
						Body: &ir.Block{Stmts: []ir.Stmt{
							printfStmt(strLit(`%d\n`), &ir.Identifier{Name: "i"}),
						}},
					},
					&ir.Return{Value: intLit("0")},
				}},
			},
		},
	}

	out := Emit(common.LangC, prog)
	mustContain(t, out,
		"#include <stdio.h>",
		"int main(void) {",
		"for (int i = 0; i < 3; i++) {",
		`printf("%d\n", i);`,
		"return 0;",
	)
}

func TestCPrototypesPrecedeDefinitions(t *testing.T) {
	prog := &ir.Program{Decls: []ir.Decl{
		&ir.FuncDecl{
			Name:   "square",
			Return: ir.Named("int"),
			Params: []ir.Param{{Name: "x", Type: ir.Named("int")}},
			Body: &ir.Block{Stmts: []ir.Stmt{
				&ir.Return{Value: &ir.BinaryExpr{Op: "*", L: &ir.Identifier{Name: "x"}, R: &ir.Identifier{Name: "x"}}},
			}},
		},
		&ir.FuncDecl{Name: "main", Return: ir.Named("int"), Body: &ir.Block{}},
	}}

	out := Emit(common.LangC, prog)

	proto := strings.Index(out, "int square(int x);")
	def := strings.Index(out, "int square(int x) {")
	if proto < 0 || def < 0 || proto > def {
		t.Errorf("expected a prototype before the definition:\n%s", out)
	}

	if strings.Contains(out, "int main(void);") {
		t.Errorf("main must not get a prototype:\n%s", out)
	}
}

func TestJavaWrappingClass(t *testing.T) {
	prog := &ir.Program{
		Name: "calc",
		Decls: []ir.Decl{
			&ir.VarDecl{Name: "total", Type: ir.Named("int"), Init: intLit("0")},
			&ir.FuncDecl{
				Name:   "add",
				Return: ir.Named("int"),
				Params: []ir.Param{{Name: "a", Type: ir.Named("int")}, {Name: "b", Type: ir.Named("int")}},
				Body: &ir.Block{Stmts: []ir.Stmt{
					&ir.Return{Value: &ir.BinaryExpr{Op: "+", L: &ir.Identifier{Name: "a"}, R: &ir.Identifier{Name: "b"}}},
				}},
			},
			&ir.FuncDecl{
				Name:   "main",
				Return: ir.Named("int"),
				Body: &ir.Block{Stmts: []ir.Stmt{
					&ir.Return{Value: intLit("0")},
				}},
			},
		},
	}

	out := Emit(common.LangJava, prog)
	mustContain(t, out,
		"public class calc {",
		"static int total = 0;",
		"public static int add(int a, int b) {",
		"public static void main(String[] args) {",
	)

	// main is void in Java, so its exit value drops.
	if !strings.Contains(out, "return;") || strings.Contains(out, "return 0;") {
		t.Errorf("expected main's return to drop its value:\n%s", out)
	}
}

func TestJavaScanfExpansion(t *testing.T) {
	prog := &ir.Program{
		Name: "reader",
		Decls: []ir.Decl{
			&ir.FuncDecl{
				Name:   "main",
				Return: ir.Named("int"),
				Body: &ir.Block{Stmts: []ir.Stmt{
					&ir.VarDecl{Name: "n", Type: ir.Named("int")},
					&ir.ExprStmt{X: &ir.Call{
						Fun: &ir.Identifier{Name: "scanf"},
						Args: []ir.Expr{
							strLit("%d"),
							&ir.UnaryExpr{Op: "&", X: &ir.Identifier{Name: "n"}},
						},
					}},
				}},
			},
		},
	}

	out := Emit(common.LangJava, prog)
	mustContain(t, out,
		"import java.util.Scanner;",
		"Scanner sc = new Scanner(System.in);",
		"n = sc.nextInt();",
	)
}

func TestJavaPrintfNewline(t *testing.T) {
	prog := &ir.Program{
		Name: "hello",
		Decls: []ir.Decl{
			&ir.FuncDecl{
				Name:   "main",
				Return: ir.Named("int"),
				Body: &ir.Block{Stmts: []ir.Stmt{
					&ir.ExprStmt{X: &ir.Call{
						Fun:  &ir.Identifier{Name: "System.out.printf"},
						Args: []ir.Expr{strLit(`done\n`)},
					}},
				}},
			},
		},
	}

	out := Emit(common.LangJava, prog)
	mustContain(t, out, `System.out.printf("done%n");`)
}

func TestCppPrintfToCout(t *testing.T) {
	prog := &ir.Program{
		Name: "hello",
		Decls: []ir.Decl{
			&ir.FuncDecl{
				Name:   "main",
				Return: ir.Named("int"),
				Body: &ir.Block{Stmts: []ir.Stmt{
					printfStmt(strLit(`total: %d\n`), &ir.Identifier{Name: "x"}),
					&ir.ExprStmt{X: &ir.Call{
						Fun:  &ir.Identifier{Name: "scanf"},
						Args: []ir.Expr{strLit("%d"), &ir.UnaryExpr{Op: "&", X: &ir.Identifier{Name: "x"}}},
					}},
				}},
			},
		},
	}

	out := Emit(common.LangCpp, prog)
	mustContain(t, out,
		"#include <iostream>",
		"using namespace std;",
		`cout << "total: " << x << endl;`,
		"cin >> x;",
	)
}

func TestCppMapDeclaration(t *testing.T) {
	prog := &ir.Program{
		Name: "counts",
		Decls: []ir.Decl{
			&ir.FuncDecl{
				Name:   "main",
				Return: ir.Named("int"),
				Body: &ir.Block{Stmts: []ir.Stmt{
					&ir.VarDecl{Name: "m", Type: ir.Named("map")},
				}},
			},
		},
	}

	out := Emit(common.LangCpp, prog)
	mustContain(t, out,
		"#include <map>",
		"map<int, int> m;",
	)
}

func TestEmitDeterministic(t *testing.T) {
	prog := &ir.Program{
		Name: "twice",
		Decls: []ir.Decl{
			&ir.FuncDecl{
				Name:   "main",
				Return: ir.Named("int"),
				Body: &ir.Block{Stmts: []ir.Stmt{
					printfStmt(strLit(`hi\n`)),
					&ir.Return{Value: intLit("0")},
				}},
			},
		},
	}

	for _, lang := range []common.Lang{common.LangC, common.LangJava, common.LangCpp} {
		first := Emit(lang, prog)
		second := Emit(lang, prog)
		if first != second {
			t.Errorf("%s: emitting the same tree twice diverged", lang)
		}
	}
}
