package raise

import (
	"strings"

	"polyc/common"
	"polyc/ir"
)

// raisedMethod records one free function rebound onto a record.
type raisedMethod struct {
	typeName string
	decl     *ir.MethodDecl
}

// raiseMethods rebinds `Type_method(self, args)` free functions onto their
// record types.  A function qualifies when its first parameter is a pointer
// to a declared record whose name prefixes the function name; `init` becomes
// a constructor and `destroy` a destructor.  Call sites rewrite to method
// calls, constructor calls fold into the paired declaration (or become
// allocation assignments when they cannot), and destructor calls disappear
// into the managed runtime.
func (r *Raiser) raiseMethods() {
	raised := make(map[string]raisedMethod)

	var decls []ir.Decl
	for _, d := range r.prog.Decls {
		fd, ok := d.(*ir.FuncDecl)
		if !ok {
			decls = append(decls, d)
			continue
		}

		td, method, ok := r.splitMethodName(fd)
		if !ok {
			decls = append(decls, d)
			continue
		}

		raised[fd.Name] = raisedMethod{typeName: td.Name, decl: r.bindMethod(td, fd, method)}
	}
	r.prog.Decls = decls

	if len(raised) == 0 {
		return
	}

	for _, d := range r.prog.Decls {
		switch v := d.(type) {
		case *ir.FuncDecl:
			r.raiseCallBlock(v.Body, raised)
		case *ir.TypeDecl:
			for _, m := range v.Methods {
				r.raiseCallBlock(m.Body, raised)
			}
		}
	}
}

// splitMethodName matches the lowered method naming shape: the first
// parameter is a pointer to a declared record whose name prefixes the
// function's own.
func (r *Raiser) splitMethodName(fd *ir.FuncDecl) (*ir.TypeDecl, string, bool) {
	if len(fd.Params) == 0 || !fd.Params[0].Type.Ptr {
		return nil, "", false
	}

	typeName := fd.Params[0].Type.Name
	td, ok := r.env.TypeOf(typeName)
	if !ok || !strings.HasPrefix(fd.Name, typeName+"_") {
		return nil, "", false
	}

	method := fd.Name[len(typeName)+1:]
	if method == "" {
		return nil, "", false
	}

	return td, method, true
}

// bindMethod moves a free function onto its record as a method, dropping the
// self parameter and folding self references into the implicit receiver.
func (r *Raiser) bindMethod(td *ir.TypeDecl, fd *ir.FuncDecl, method string) *ir.MethodDecl {
	self := fd.Params[0].Name

	md := &ir.MethodDecl{
		Owner:  td,
		Name:   method,
		Return: fd.Return,
		Params: fd.Params[1:],
		Body:   fd.Body,
	}

	switch method {
	case "init":
		md.Ctor = true
		md.Name = td.Name
		md.Return = ir.Void()
	case "destroy":
		md.Dtor = true
	}

	// the rewrite runs bottom-up, so the receiver identifier has already
	// become `this` by the time its selection is offered
	ir.RewriteBlockExprs(md.Body, func(e ir.Expr) ir.Expr {
		switch v := e.(type) {
		case *ir.MemberAccess:
			if id, ok := v.X.(*ir.Identifier); ok && id.Name == "this" {
				return &ir.Identifier{Name: v.Member}
			}
		case *ir.Identifier:
			if v.Name == self {
				return &ir.Identifier{Name: "this"}
			}
		}

		return e
	})

	td.Methods = append(td.Methods, md)
	td.IsClass = true
	return md
}

// raiseCallBlock rewrites raised-function call sites in one block.  It walks
// statements itself so a constructor call can fold into the declaration that
// precedes it.
func (r *Raiser) raiseCallBlock(b *ir.Block, raised map[string]raisedMethod) {
	if b == nil {
		return
	}

	declared := make(map[string]*ir.VarDecl)
	rewrite := func(e ir.Expr) ir.Expr { return r.raiseCallExpr(e, raised) }

	var out []ir.Stmt
	for _, s := range b.Stmts {
		switch v := s.(type) {
		case *ir.VarDecl:
			v.Init = ir.RewriteExpr(v.Init, rewrite)
			declared[v.Name] = v
		case *ir.ExprStmt:
			if call, ok := v.X.(*ir.Call); ok {
				if rm, ok := raised[call.Callee()]; ok {
					if rm.decl.Dtor {
						continue
					}

					if rm.decl.Ctor && len(call.Args) > 0 {
						if r.foldCtor(call, rm, declared) {
							continue
						}

						// the paired function is gone, so a site that
						// cannot fold must not survive as a call
						v.X = ir.RewriteExpr(r.ctorAssign(call, rm), rewrite)
						out = append(out, s)
						continue
					}
				}
			}

			v.X = ir.RewriteExpr(v.X, rewrite)
		case *ir.Block:
			r.raiseCallBlock(v, raised)
		case *ir.If:
			v.Cond = ir.RewriteExpr(v.Cond, rewrite)
			r.raiseCallBlock(v.Then, raised)
			if v.Else != nil {
				r.raiseCallStmt(v.Else, raised, rewrite)
			}
		case *ir.For:
			if v.Init != nil {
				r.raiseCallStmt(v.Init, raised, rewrite)
			}
			v.Cond = ir.RewriteExpr(v.Cond, rewrite)
			if v.Post != nil {
				r.raiseCallStmt(v.Post, raised, rewrite)
			}
			r.raiseCallBlock(v.Body, raised)
		case *ir.While:
			v.Cond = ir.RewriteExpr(v.Cond, rewrite)
			r.raiseCallBlock(v.Body, raised)
		case *ir.DoWhile:
			r.raiseCallBlock(v.Body, raised)
			v.Cond = ir.RewriteExpr(v.Cond, rewrite)
		case *ir.Switch:
			v.Tag = ir.RewriteExpr(v.Tag, rewrite)
			for i := range v.Cases {
				v.Cases[i].Value = ir.RewriteExpr(v.Cases[i].Value, rewrite)
				for _, cs := range v.Cases[i].Body {
					r.raiseCallStmt(cs, raised, rewrite)
				}
			}
		case *ir.Return:
			v.Value = ir.RewriteExpr(v.Value, rewrite)
		}

		out = append(out, s)
	}

	b.Stmts = out
}

func (r *Raiser) raiseCallStmt(s ir.Stmt, raised map[string]raisedMethod, rewrite func(ir.Expr) ir.Expr) {
	if blk, ok := s.(*ir.Block); ok {
		r.raiseCallBlock(blk, raised)
		return
	}

	wrapper := &ir.Block{Stmts: []ir.Stmt{s}}
	r.raiseCallBlock(wrapper, raised)
}

// foldCtor folds `Type_init(&x, args)` into the declaration of x earlier in
// the block.  C++ keeps direct construction syntax; Java allocates.
func (r *Raiser) foldCtor(call *ir.Call, rm raisedMethod, declared map[string]*ir.VarDecl) bool {
	if len(call.Args) == 0 {
		return false
	}

	recv, ok := unwrapAddr(call.Args[0])
	if !ok {
		return false
	}

	vd, ok := declared[recv.Name]
	if !ok || vd.Type.Name != rm.typeName || vd.Init != nil {
		return false
	}

	args := call.Args[1:]
	if r.tgt == common.LangCpp {
		vd.CtorArgs = args
		return true
	}

	vd.Init = &ir.New{Type: ir.Named(rm.typeName), Args: args}
	return true
}

// ctorAssign rewrites a construction site that cannot fold into its paired
// declaration, either because the receiver is a pointer or because the
// declaration sits outside the current block, into an allocation assigned to
// the receiver.
func (r *Raiser) ctorAssign(call *ir.Call, rm raisedMethod) ir.Expr {
	args := call.Args[1:]

	if id, ok := unwrapAddr(call.Args[0]); ok {
		if r.tgt == common.LangCpp {
			// a value receiver keeps value semantics under a temporary
			return &ir.BinaryExpr{Op: "=", L: id, R: &ir.Call{
				Fun:  &ir.Identifier{Name: rm.typeName},
				Args: args,
			}}
		}

		return &ir.BinaryExpr{Op: "=", L: id, R: &ir.New{Type: ir.Named(rm.typeName), Args: args}}
	}

	return &ir.BinaryExpr{Op: "=", L: call.Args[0], R: &ir.New{Type: ir.Named(rm.typeName), Args: args}}
}

// raiseCallExpr rewrites one raised-function call into a method call.
func (r *Raiser) raiseCallExpr(e ir.Expr, raised map[string]raisedMethod) ir.Expr {
	call, ok := e.(*ir.Call)
	if !ok || len(call.Args) == 0 {
		return e
	}

	rm, ok := raised[call.Callee()]
	if !ok || rm.decl.Ctor || rm.decl.Dtor {
		return e
	}

	recv := call.Args[0]
	arrow := false
	if id, ok := unwrapAddr(recv); ok {
		recv = id
	} else if r.tgt == common.LangCpp {
		// no address-of means the call already held a pointer
		arrow = true
	}

	return &ir.Call{
		Fun:  &ir.MemberAccess{X: recv, Member: rm.decl.Name, Arrow: arrow},
		Args: call.Args[1:],
	}
}

func unwrapAddr(e ir.Expr) (*ir.Identifier, bool) {
	u, ok := e.(*ir.UnaryExpr)
	if !ok || u.Op != "&" {
		return nil, false
	}

	id, ok := u.X.(*ir.Identifier)
	return id, ok
}
