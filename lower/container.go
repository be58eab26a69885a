package lower

import (
	"polyc/ir"
	"polyc/sem"
)

// mapCapacity is the fixed capacity of the emulated container.  Exceeding it
// is an unchecked precondition violation of the generated code.
const mapCapacity = "100"

// missingKeySentinel is what a get on an absent key returns.
const missingKeySentinel = "-1"

// mapTypeNames are the managed-map spellings the pass recognizes.
var mapTypeNames = map[string]bool{
	"HashMap":       true,
	"map":           true,
	"unordered_map": true,
}

// mapMethods maps the managed-map operations onto the emulated free
// functions.
var mapMethods = map[string]string{
	"put":         "hashmap_put",
	"get":         "hashmap_get",
	"containsKey": "hashmap_contains",
	"contains":    "hashmap_contains",
}

// containerLowerer rewrites managed-map usage into calls against a
// fixed-capacity record synthesized into the unit.
type containerLowerer struct {
	l    *Lowerer
	t    *typer
	used bool
}

// lowerContainers replaces every managed-map declaration and operation and,
// if any were found, prepends the emulated container type and its four free
// functions.
func (l *Lowerer) lowerContainers() {
	c := &containerLowerer{l: l, t: newTyper(l.env)}

	for _, d := range l.prog.Decls {
		switch v := d.(type) {
		case *ir.FuncDecl:
			if v.Body == nil {
				continue
			}

			c.t.pushScope()
			for _, p := range v.Params {
				c.t.define(p.Name, p.Type)
			}
			c.rewriteBlock(v.Body)
			c.t.popScope()
		case *ir.VarDecl:
			c.rewriteDecl(v)
		}
	}

	if c.used {
		c.synthesizeRuntime()
	}
}

func (c *containerLowerer) rewriteBlock(b *ir.Block) {
	if b == nil {
		return
	}

	c.t.pushScope()
	for _, s := range b.Stmts {
		c.rewriteStmt(s)
	}
	c.t.popScope()
}

func (c *containerLowerer) rewriteStmt(s ir.Stmt) {
	switch v := s.(type) {
	case *ir.VarDecl:
		c.rewriteDecl(v)
	case *ir.ExprStmt:
		v.X = ir.RewriteExpr(v.X, c.rewriteExpr)
	case *ir.Return:
		v.Value = ir.RewriteExpr(v.Value, c.rewriteExpr)
	case *ir.Block:
		c.rewriteBlock(v)
	case *ir.If:
		v.Cond = ir.RewriteExpr(v.Cond, c.rewriteExpr)
		c.rewriteBlock(v.Then)
		if v.Else != nil {
			c.rewriteStmt(v.Else)
		}
	case *ir.For:
		c.t.pushScope()
		if v.Init != nil {
			c.rewriteStmt(v.Init)
		}
		v.Cond = ir.RewriteExpr(v.Cond, c.rewriteExpr)
		if v.Post != nil {
			c.rewriteStmt(v.Post)
		}
		c.rewriteBlock(v.Body)
		c.t.popScope()
	case *ir.While:
		v.Cond = ir.RewriteExpr(v.Cond, c.rewriteExpr)
		c.rewriteBlock(v.Body)
	case *ir.DoWhile:
		c.rewriteBlock(v.Body)
		v.Cond = ir.RewriteExpr(v.Cond, c.rewriteExpr)
	case *ir.Switch:
		v.Tag = ir.RewriteExpr(v.Tag, c.rewriteExpr)
		for i := range v.Cases {
			v.Cases[i].Value = ir.RewriteExpr(v.Cases[i].Value, c.rewriteExpr)
			for _, cs := range v.Cases[i].Body {
				c.rewriteStmt(cs)
			}
		}
	}
}

// rewriteDecl normalizes a managed-map declaration: whatever the source
// initializer looked like, it becomes a value of the emulated record built
// by hashmap_create.
func (c *containerLowerer) rewriteDecl(vd *ir.VarDecl) {
	if !mapTypeNames[vd.Type.Name] {
		vd.Init = ir.RewriteExpr(vd.Init, c.rewriteExpr)
		c.t.define(vd.Name, vd.Type)
		return
	}

	c.used = true
	vd.Type = ir.Named("HashMap")
	vd.Init = &ir.Call{Fun: &ir.Identifier{Name: "hashmap_create"}}
	vd.CtorArgs = nil
	c.t.define(vd.Name, vd.Type)
}

// rewriteExpr turns map method calls into calls of the emulated functions,
// passing the record by address.
func (c *containerLowerer) rewriteExpr(e ir.Expr) ir.Expr {
	call, ok := e.(*ir.Call)
	if !ok {
		return e
	}

	ma, ok := call.Fun.(*ir.MemberAccess)
	if !ok {
		return e
	}

	fn, ok := mapMethods[ma.Member]
	if !ok {
		return e
	}

	recvType, ok := c.t.typeOf(ma.X)
	if !ok || !mapTypeNames[recvType.Name] {
		return e
	}

	recv := ma.X
	if !recvType.Ptr {
		recv = addrOf(recv)
	}

	c.used = true
	return &ir.Call{
		Fun:  &ir.Identifier{Name: fn},
		Args: append([]ir.Expr{recv}, call.Args...),
	}
}

// -----------------------------------------------------------------------------
// Runtime synthesis.

// synthesizeRuntime prepends the emulated container: a capacity macro, the
// record type, and create/put/get/contains.  Get on a missing key returns a
// sentinel rather than failing.
func (c *containerLowerer) synthesizeRuntime() {
	c.l.prog.Macros = append([]*ir.MacroDef{{
		Name: "HASHMAP_SIZE",
		Body: intLit(mapCapacity),
	}}, c.l.prog.Macros...)

	record := &ir.TypeDecl{
		Name: "HashMap",
		Fields: []ir.Field{
			{Name: "keys", Type: ir.Type{Name: "int", Dims: []ir.Expr{ident("HASHMAP_SIZE")}}},
			{Name: "vals", Type: ir.Type{Name: "int", Dims: []ir.Expr{ident("HASHMAP_SIZE")}}},
			{Name: "count", Type: ir.Named("int")},
		},
	}

	runtime := []ir.Decl{
		record,
		c.createFunc(),
		c.putFunc(),
		c.getFunc(),
		c.containsFunc(),
	}

	c.l.prog.Decls = append(runtime, c.l.prog.Decls...)

	c.l.env.Define(&sem.Symbol{Name: "HashMap", Kind: sem.SymType, Type: record})
	for _, d := range runtime[1:] {
		fd := d.(*ir.FuncDecl)
		c.l.env.Define(&sem.Symbol{Name: fd.Name, Kind: sem.SymFunc, Func: fd})
	}
}

// createFunc builds: HashMap hashmap_create() { HashMap m; m.count = 0; return m; }
func (c *containerLowerer) createFunc() *ir.FuncDecl {
	return &ir.FuncDecl{
		Name:   "hashmap_create",
		Return: ir.Named("HashMap"),
		Body: &ir.Block{Stmts: []ir.Stmt{
			&ir.VarDecl{Name: "m", Type: ir.Named("HashMap")},
			assign(member("m", "count", false), intLit("0")),
			&ir.Return{Value: ident("m")},
		}},
	}
}

// putFunc builds the linear-scan put: an existing key is overwritten in
// place, a new key appends.
func (c *containerLowerer) putFunc() *ir.FuncDecl {
	keyAt := &ir.Index{X: member("m", "keys", true), I: ident("i")}
	valAt := &ir.Index{X: member("m", "vals", true), I: ident("i")}

	return &ir.FuncDecl{
		Name:   "hashmap_put",
		Return: ir.Void(),
		Params: []ir.Param{
			{Name: "m", Type: ir.PtrTo("HashMap")},
			{Name: "k", Type: ir.Named("int")},
			{Name: "v", Type: ir.Named("int")},
		},
		Body: &ir.Block{Stmts: []ir.Stmt{
			scanLoop(&ir.Block{Stmts: []ir.Stmt{
				&ir.If{
					Cond: &ir.BinaryExpr{Op: "==", L: keyAt, R: ident("k")},
					Then: &ir.Block{Stmts: []ir.Stmt{
						assign(valAt, ident("v")),
						&ir.Return{},
					}},
				},
			}}),
			assign(&ir.Index{X: member("m", "keys", true), I: member("m", "count", true)}, ident("k")),
			assign(&ir.Index{X: member("m", "vals", true), I: member("m", "count", true)}, ident("v")),
			&ir.ExprStmt{X: &ir.UnaryExpr{Op: "++", X: member("m", "count", true), Postfix: true}},
		}},
	}
}

// getFunc builds the linear-scan get with the missing-key sentinel.
func (c *containerLowerer) getFunc() *ir.FuncDecl {
	keyAt := &ir.Index{X: member("m", "keys", true), I: ident("i")}
	valAt := &ir.Index{X: member("m", "vals", true), I: ident("i")}

	return &ir.FuncDecl{
		Name:   "hashmap_get",
		Return: ir.Named("int"),
		Params: []ir.Param{
			{Name: "m", Type: ir.PtrTo("HashMap")},
			{Name: "k", Type: ir.Named("int")},
		},
		Body: &ir.Block{Stmts: []ir.Stmt{
			scanLoop(&ir.Block{Stmts: []ir.Stmt{
				&ir.If{
					Cond: &ir.BinaryExpr{Op: "==", L: keyAt, R: ident("k")},
					Then: &ir.Block{Stmts: []ir.Stmt{&ir.Return{Value: valAt}}},
				},
			}}),
			&ir.Return{Value: intLit(missingKeySentinel)},
		}},
	}
}

func (c *containerLowerer) containsFunc() *ir.FuncDecl {
	keyAt := &ir.Index{X: member("m", "keys", true), I: ident("i")}

	return &ir.FuncDecl{
		Name:   "hashmap_contains",
		Return: ir.Named("int"),
		Params: []ir.Param{
			{Name: "m", Type: ir.PtrTo("HashMap")},
			{Name: "k", Type: ir.Named("int")},
		},
		Body: &ir.Block{Stmts: []ir.Stmt{
			scanLoop(&ir.Block{Stmts: []ir.Stmt{
				&ir.If{
					Cond: &ir.BinaryExpr{Op: "==", L: keyAt, R: ident("k")},
					Then: &ir.Block{Stmts: []ir.Stmt{&ir.Return{Value: intLit("1")}}},
				},
			}}),
			&ir.Return{Value: intLit("0")},
		}},
	}
}

// scanLoop builds `for (int i = 0; i < m->count; i++) body`.
func scanLoop(body *ir.Block) ir.Stmt {
	return &ir.For{
		Init: &ir.VarDecl{Name: "i", Type: ir.Named("int"), Init: intLit("0")},
		Cond: &ir.BinaryExpr{Op: "<", L: ident("i"), R: member("m", "count", true)},
		Post: &ir.ExprStmt{X: &ir.UnaryExpr{Op: "++", X: ident("i"), Postfix: true}},
		Body: body,
	}
}

func ident(name string) ir.Expr {
	return &ir.Identifier{Name: name}
}

func intLit(v string) ir.Expr {
	return &ir.Literal{Kind: ir.LitInt, Value: v}
}

func member(recv, field string, arrow bool) ir.Expr {
	return &ir.MemberAccess{X: ident(recv), Member: field, Arrow: arrow}
}

func assign(l, r ir.Expr) ir.Stmt {
	return &ir.ExprStmt{X: &ir.BinaryExpr{Op: "=", L: l, R: r}}
}
