package lower

import "polyc/ir"

// rewriteBodies rewrites every function body in the lowered unit: receiver
// references become explicit self-pointer accesses, method calls become
// static or vtable-indirected free-function calls, and object construction
// and deletion become init/destroy plus allocation calls.
func (cl *classLowerer) rewriteBodies() {
	for _, d := range cl.l.prog.Decls {
		fd, ok := d.(*ir.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}

		cl.class = cl.methodOf[fd]

		cl.t.pushScope()
		for _, p := range fd.Params {
			cl.t.define(p.Name, p.Type)
		}

		cl.rewriteBlock(fd.Body)

		cl.t.popScope()
		cl.class = nil
	}
}

func (cl *classLowerer) rewriteBlock(b *ir.Block) {
	if b == nil {
		return
	}

	cl.t.pushScope()
	b.Stmts = cl.rewriteStmtList(b.Stmts)
	cl.t.popScope()
}

func (cl *classLowerer) rewriteStmtList(stmts []ir.Stmt) []ir.Stmt {
	var out []ir.Stmt
	for _, s := range stmts {
		out = append(out, cl.rewriteStmt(s)...)
	}

	return out
}

// rewriteStmt rewrites one statement, possibly expanding it.  Construction
// and deletion sites split into several statements here, before the general
// expression rewrite sees them.
func (cl *classLowerer) rewriteStmt(s ir.Stmt) []ir.Stmt {
	switch v := s.(type) {
	case *ir.VarDecl:
		return cl.rewriteVarDecl(v)
	case *ir.ExprStmt:
		if out, ok := cl.rewriteDeleteStmt(v); ok {
			return out
		}

		if out, ok := cl.rewriteNewAssign(v); ok {
			return out
		}

		v.X = cl.rewriteExpr(v.X)
	case *ir.Block:
		cl.rewriteBlock(v)
	case *ir.If:
		v.Cond = cl.rewriteExpr(v.Cond)
		cl.rewriteBlock(v.Then)
		if v.Else != nil {
			inner := cl.rewriteStmt(v.Else)
			v.Else = singleStmt(inner)
		}
	case *ir.For:
		cl.t.pushScope()
		if v.Init != nil {
			v.Init = singleStmt(cl.rewriteStmt(v.Init))
		}
		v.Cond = cl.rewriteExpr(v.Cond)
		if v.Post != nil {
			v.Post = singleStmt(cl.rewriteStmt(v.Post))
		}
		cl.rewriteBlock(v.Body)
		cl.t.popScope()
	case *ir.While:
		v.Cond = cl.rewriteExpr(v.Cond)
		cl.rewriteBlock(v.Body)
	case *ir.DoWhile:
		cl.rewriteBlock(v.Body)
		v.Cond = cl.rewriteExpr(v.Cond)
	case *ir.Switch:
		v.Tag = cl.rewriteExpr(v.Tag)
		for i := range v.Cases {
			v.Cases[i].Value = cl.rewriteExpr(v.Cases[i].Value)
			v.Cases[i].Body = cl.rewriteStmtList(v.Cases[i].Body)
		}
	case *ir.Return:
		v.Value = cl.rewriteExpr(v.Value)
	}

	return []ir.Stmt{s}
}

// singleStmt folds a rewrite expansion back into a single statement slot.
func singleStmt(stmts []ir.Stmt) ir.Stmt {
	if len(stmts) == 1 {
		return stmts[0]
	}

	return &ir.Block{Stmts: stmts}
}

// rewriteVarDecl splits direct construction (`Circle c(2);`, including the
// argumentless `Circle c;`) and heap construction (`Circle* c = new
// Circle(2);`) into a declaration followed by an init call.
func (cl *classLowerer) rewriteVarDecl(vd *ir.VarDecl) []ir.Stmt {
	defer cl.t.define(vd.Name, vd.Type)

	// A default-constructed object still runs its constructor: the table
	// pointer is set there and nowhere else.  Arrays of objects are left
	// alone; there is no per-element construction.
	if cl.hasInit[vd.Type.Name] && !vd.Type.Ptr && len(vd.Type.Dims) == 0 && vd.Init == nil {
		args := append([]ir.Expr{addrOf(&ir.Identifier{Name: vd.Name})}, cl.rewriteExprs(vd.CtorArgs)...)
		vd.CtorArgs = nil

		return []ir.Stmt{
			vd,
			&ir.ExprStmt{X: &ir.Call{
				Fun:  &ir.Identifier{Name: vd.Type.Name + "_init"},
				Args: args,
			}},
		}
	}

	if nw, ok := vd.Init.(*ir.New); ok && cl.hasInit[nw.Type.Name] && nw.Count == nil {
		recv := initRecv(&ir.Identifier{Name: vd.Name}, vd.Type, nw.Type)
		args := append([]ir.Expr{recv}, cl.rewriteExprs(nw.Args)...)
		vd.Init = mallocFor(nw.Type, nil)

		return []ir.Stmt{
			vd,
			&ir.ExprStmt{X: &ir.Call{
				Fun:  &ir.Identifier{Name: nw.Type.Name + "_init"},
				Args: args,
			}},
		}
	}

	vd.Init = cl.rewriteExpr(vd.Init)
	vd.CtorArgs = cl.rewriteExprs(vd.CtorArgs)
	return []ir.Stmt{vd}
}

// rewriteNewAssign handles `p = new Circle(2);` in statement position.
func (cl *classLowerer) rewriteNewAssign(es *ir.ExprStmt) ([]ir.Stmt, bool) {
	be, ok := es.X.(*ir.BinaryExpr)
	if !ok || be.Op != "=" {
		return nil, false
	}

	nw, ok := be.R.(*ir.New)
	if !ok || !cl.hasInit[nw.Type.Name] || nw.Count != nil {
		return nil, false
	}

	be.L = cl.rewriteExpr(be.L)

	recv := be.L
	if typ, ok := cl.t.typeOf(be.L); ok {
		recv = initRecv(be.L, typ, nw.Type)
	}

	args := append([]ir.Expr{recv}, cl.rewriteExprs(nw.Args)...)
	be.R = mallocFor(nw.Type, nil)

	return []ir.Stmt{
		es,
		&ir.ExprStmt{X: &ir.Call{
			Fun:  &ir.Identifier{Name: nw.Type.Name + "_init"},
			Args: args,
		}},
	}, true
}

// rewriteDeleteStmt handles `delete p;` in statement position: the destroy
// call runs before the memory is released.
func (cl *classLowerer) rewriteDeleteStmt(es *ir.ExprStmt) ([]ir.Stmt, bool) {
	del, ok := es.X.(*ir.Delete)
	if !ok {
		return nil, false
	}

	x := cl.rewriteExpr(del.X)
	freeStmt := &ir.ExprStmt{X: &ir.Call{
		Fun:  &ir.Identifier{Name: "free"},
		Args: []ir.Expr{x},
	}}

	typ, ok := cl.t.typeOf(x)
	if !ok || del.Array || !cl.hasDestroy[typ.Name] {
		return []ir.Stmt{freeStmt}, true
	}

	return []ir.Stmt{
		&ir.ExprStmt{X: &ir.Call{
			Fun:  &ir.Identifier{Name: typ.Name + "_destroy"},
			Args: []ir.Expr{x},
		}},
		freeStmt,
	}, true
}

// -----------------------------------------------------------------------------

func (cl *classLowerer) rewriteExprs(es []ir.Expr) []ir.Expr {
	for i, e := range es {
		es[i] = cl.rewriteExpr(e)
	}

	return es
}

// rewriteExpr rewrites one expression tree.  Recursion is hand-rolled
// because method-call rewriting has to see the receiver before its children
// are renamed out from under it.
func (cl *classLowerer) rewriteExpr(e ir.Expr) ir.Expr {
	switch v := e.(type) {
	case nil:
		return nil
	case *ir.Identifier:
		return cl.rewriteIdent(v)
	case *ir.Literal:
		return v
	case *ir.BinaryExpr:
		v.L = cl.rewriteExpr(v.L)
		v.R = cl.rewriteExpr(v.R)
	case *ir.UnaryExpr:
		v.X = cl.rewriteExpr(v.X)
	case *ir.Call:
		return cl.rewriteCall(v)
	case *ir.MemberAccess:
		return cl.rewriteMember(v)
	case *ir.Index:
		v.X = cl.rewriteExpr(v.X)
		v.I = cl.rewriteExpr(v.I)
	case *ir.Ternary:
		v.Cond = cl.rewriteExpr(v.Cond)
		v.Then = cl.rewriteExpr(v.Then)
		v.Else = cl.rewriteExpr(v.Else)
	case *ir.Cast:
		v.X = cl.rewriteExpr(v.X)
	case *ir.New:
		// Construction in a plain expression position degrades to a bare
		// allocation.
		return mallocFor(v.Type, cl.rewriteExpr(v.Count))
	case *ir.Delete:
		return &ir.Call{
			Fun:  &ir.Identifier{Name: "free"},
			Args: []ir.Expr{cl.rewriteExpr(v.X)},
		}
	}

	return e
}

// rewriteIdent renames `this` and resolves bare field references inside
// method bodies to explicit self accesses.
func (cl *classLowerer) rewriteIdent(id *ir.Identifier) ir.Expr {
	if cl.class == nil {
		return id
	}

	if id.Name == "this" {
		return &ir.Identifier{Name: "self"}
	}

	// Locals and parameters shadow fields; fields shadow globals.
	if _, ok := cl.t.lookupLocal(id.Name); ok && id.Name != "self" {
		return id
	}

	if declaring := cl.findField(cl.class.Name, id.Name); declaring != "" {
		return cl.memberPath(&ir.Identifier{Name: "self"}, true, cl.class.Name, declaring, id.Name)
	}

	return id
}

// rewriteMember fixes field accesses: `this` receivers, and inherited fields
// that now live behind one or more embedded `base` records.
func (cl *classLowerer) rewriteMember(ma *ir.MemberAccess) ir.Expr {
	ma.X = cl.rewriteExpr(ma.X)
	recvType, known := cl.t.typeOf(ma.X)

	if !known || !cl.isClass(recvType.Name) {
		return ma
	}

	declaring := cl.findField(recvType.Name, ma.Member)
	if declaring == "" || declaring == recvType.Name {
		ma.Arrow = recvType.Ptr
		return ma
	}

	return cl.memberPath(ma.X, recvType.Ptr, recvType.Name, declaring, ma.Member)
}

// rewriteCall turns method calls into free-function calls, virtual ones
// dispatching through the vtable pointer.
func (cl *classLowerer) rewriteCall(call *ir.Call) ir.Expr {
	// A bare call to a sibling method picks up the self receiver.
	if name := call.Callee(); name != "" && cl.class != nil {
		if _, isLocal := cl.t.lookupLocal(name); !isLocal {
			if m, declClass := cl.l.env.ResolveMethod(cl.class.Name, name); m != nil && !m.Ctor && !m.Dtor {
				return cl.methodCall(&ir.Identifier{Name: "self"}, ir.PtrTo(cl.class.Name), m, declClass, name, call.Args)
			}
		}
	}

	ma, ok := call.Fun.(*ir.MemberAccess)
	if !ok {
		call.Fun = cl.rewriteExpr(call.Fun)
		call.Args = cl.rewriteExprs(call.Args)
		return call
	}

	ma.X = cl.rewriteExpr(ma.X)
	recvType, known := cl.t.typeOf(ma.X)
	if !known || !cl.isClass(recvType.Name) {
		call.Args = cl.rewriteExprs(call.Args)
		return call
	}

	m, declClass := cl.l.env.ResolveMethod(recvType.Name, ma.Member)
	if m == nil {
		call.Args = cl.rewriteExprs(call.Args)
		return call
	}

	return cl.methodCall(ma.X, recvType, m, declClass, ma.Member, call.Args)
}

// methodCall builds the lowered form of one method invocation.
func (cl *classLowerer) methodCall(recv ir.Expr, recvType ir.Type, m *ir.MethodDecl, declClass *ir.TypeDecl, name string, args []ir.Expr) ir.Expr {
	selfArg := recv
	if !recvType.Ptr {
		selfArg = addrOf(recv)
	}

	loweredArgs := append([]ir.Expr{selfArg}, cl.rewriteExprs(args)...)

	if m.Virtual {
		slot := &ir.MemberAccess{
			X:      cl.vtablePath(recv, recvType.Ptr, recvType.Name),
			Member: name,
			Arrow:  true,
		}

		return &ir.Call{
			Fun:  &ir.UnaryExpr{Op: "*", X: slot},
			Args: loweredArgs,
		}
	}

	return &ir.Call{
		Fun:  &ir.Identifier{Name: declClass.Name + "_" + name},
		Args: loweredArgs,
	}
}

// -----------------------------------------------------------------------------

// isClass reports whether a name denotes a class that survived lowering.
func (cl *classLowerer) isClass(name string) bool {
	if cl.rejected[name] {
		return false
	}

	return len(cl.l.env.Chain(name)) > 0
}

// findField returns the name of the chain member declaring a field, or "".
func (cl *classLowerer) findField(class, field string) string {
	chain := cl.l.env.Chain(class)
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].Fields {
			if f.Name == field {
				return chain[i].Name
			}
		}
	}

	return ""
}

// initRecv builds the receiver argument for a heap-construction init call.
// The holder may be typed by a base of the constructed class; the init
// function takes the derived record, so the receiver is cast down.
func initRecv(recv ir.Expr, holder, constructed ir.Type) ir.Expr {
	if holder.Name == constructed.Name {
		return recv
	}

	return &ir.Cast{To: ir.PtrTo(constructed.Name), X: recv}
}

// mallocFor builds the allocation call replacing a `new` expression.
func mallocFor(t ir.Type, count ir.Expr) ir.Expr {
	size := ir.Expr(&ir.Call{
		Fun:  &ir.Identifier{Name: "sizeof"},
		Args: []ir.Expr{&ir.Identifier{Name: t.Name}},
	})

	if count != nil {
		size = &ir.BinaryExpr{Op: "*", L: count, R: size}
	}

	return &ir.Call{
		Fun:  &ir.Identifier{Name: "malloc"},
		Args: []ir.Expr{size},
	}
}
