package raise

import (
	"strings"

	"polyc/common"
	"polyc/ir"
)

// runtimeFuncs are the free functions of the emulated container.
var runtimeFuncs = map[string]bool{
	"hashmap_create":   true,
	"hashmap_put":      true,
	"hashmap_get":      true,
	"hashmap_contains": true,
}

// raiseContainers recognizes the emulated fixed-capacity container and
// raises it back to the target's managed map: the record type, its macro,
// and the four free functions disappear, declarations respell, and every
// runtime call becomes the map operation it emulates.
func (r *Raiser) raiseContainers() {
	if !r.usesRuntime() {
		return
	}

	var decls []ir.Decl
	for _, d := range r.prog.Decls {
		switch v := d.(type) {
		case *ir.FuncDecl:
			if runtimeFuncs[v.Name] {
				continue
			}
		case *ir.TypeDecl:
			if v.Name == "HashMap" {
				continue
			}
		}

		decls = append(decls, d)
	}
	r.prog.Decls = decls

	var macros []*ir.MacroDef
	for _, m := range r.prog.Macros {
		if m.Name == "HASHMAP_SIZE" {
			continue
		}
		macros = append(macros, m)
	}
	r.prog.Macros = macros

	for _, d := range r.prog.Decls {
		switch v := d.(type) {
		case *ir.FuncDecl:
			r.raiseContainerBlock(v.Body)
		case *ir.VarDecl:
			r.raiseMapDecl(v)
		}
	}
}

func (r *Raiser) usesRuntime() bool {
	for _, d := range r.prog.Decls {
		if fd, ok := d.(*ir.FuncDecl); ok && runtimeFuncs[fd.Name] {
			return true
		}
	}

	return false
}

func (r *Raiser) raiseContainerBlock(b *ir.Block) {
	ir.RewriteStmts(b, func(s ir.Stmt) []ir.Stmt {
		switch v := s.(type) {
		case *ir.VarDecl:
			r.raiseMapDecl(v)
		case *ir.ExprStmt:
			// `m = hashmap_create()` has no C++ counterpart; the map
			// default-constructs at its declaration
			if asgn, ok := v.X.(*ir.BinaryExpr); ok && asgn.Op == "=" {
				if call, ok := asgn.R.(*ir.Call); ok && call.Callee() == "hashmap_create" {
					if r.tgt == common.LangCpp {
						return nil
					}

					asgn.R = &ir.New{Type: ir.Named("HashMap")}
					return []ir.Stmt{v}
				}
			}
		}

		ir.RewriteStmtExprs(s, r.raiseContainerExpr)
		return []ir.Stmt{s}
	})
}

// raiseMapDecl respells an emulated-container declaration as the target's
// map declaration.
func (r *Raiser) raiseMapDecl(vd *ir.VarDecl) {
	isCreate := false
	if call, ok := vd.Init.(*ir.Call); ok && call.Callee() == "hashmap_create" {
		isCreate = true
	}
	if vd.Type.Name != "HashMap" && !isCreate {
		vd.Init = ir.RewriteExpr(vd.Init, r.raiseContainerExpr)
		return
	}

	if r.tgt == common.LangCpp {
		vd.Type = ir.Named("map")
		vd.Init = nil
		vd.CtorArgs = nil
		return
	}

	vd.Type = ir.Named("HashMap")
	vd.Init = &ir.New{Type: ir.Named("HashMap")}
	vd.CtorArgs = nil
}

// raiseContainerExpr rewrites one runtime call into the map operation it
// emulates.  The receiver is the first argument with its address-of
// unwrapped.
func (r *Raiser) raiseContainerExpr(e ir.Expr) ir.Expr {
	call, ok := e.(*ir.Call)
	if !ok || len(call.Args) == 0 {
		return e
	}

	name := call.Callee()
	if !strings.HasPrefix(name, "hashmap_") || !runtimeFuncs[name] {
		return e
	}

	recv := call.Args[0]
	if u, ok := recv.(*ir.UnaryExpr); ok && u.Op == "&" {
		recv = u.X
	}
	rest := call.Args[1:]

	if r.tgt == common.LangCpp {
		switch name {
		case "hashmap_put":
			if len(rest) == 2 {
				return &ir.BinaryExpr{Op: "=", L: &ir.Index{X: recv, I: rest[0]}, R: rest[1]}
			}
		case "hashmap_get":
			if len(rest) == 1 {
				return &ir.Index{X: recv, I: rest[0]}
			}
		case "hashmap_contains":
			return &ir.Call{Fun: &ir.MemberAccess{X: recv, Member: "count"}, Args: rest}
		}

		return e
	}

	switch name {
	case "hashmap_put":
		return &ir.Call{Fun: &ir.MemberAccess{X: recv, Member: "put"}, Args: rest}
	case "hashmap_get":
		return &ir.Call{Fun: &ir.MemberAccess{X: recv, Member: "get"}, Args: rest}
	case "hashmap_contains":
		return &ir.Call{Fun: &ir.MemberAccess{X: recv, Member: "containsKey"}, Args: rest}
	}

	return e
}
