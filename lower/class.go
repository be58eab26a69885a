package lower

import (
	"polyc/emit"
	"polyc/ir"
	"polyc/report"
)

// classLowerer holds the per-unit state of class lowering.
type classLowerer struct {
	l *Lowerer
	t *typer

	// vtOwner maps a class name to the class whose flattened record carries
	// the vtable-pointer field for its chain.
	vtOwner map[string]string

	// descriptors maps a class name to its synthesized vtable descriptor.
	descriptors map[string]*ir.VTableDescriptor

	// rejected records classes replaced by verbatim fragments; references to
	// them are left untouched.
	rejected map[string]bool

	// methodOf maps each synthesized free function back to the class whose
	// method it was, so body rewriting knows its receiver context.
	methodOf map[*ir.FuncDecl]*ir.TypeDecl

	// hasInit and hasDestroy record which classes ended up with synthesized
	// init/destroy functions; construction and deletion sites consult them.
	hasInit    map[string]bool
	hasDestroy map[string]bool

	// current receiver context while rewriting a method body, nil inside
	// free functions.
	class *ir.TypeDecl
}

// lowerClasses flattens every class into a record plus free functions and
// rewrites all construction, destruction, and method-call sites.
func (l *Lowerer) lowerClasses() {
	cl := &classLowerer{
		l:           l,
		t:           newTyper(l.env),
		vtOwner:     make(map[string]string),
		descriptors: make(map[string]*ir.VTableDescriptor),
		rejected:    make(map[string]bool),
		methodOf:    make(map[*ir.FuncDecl]*ir.TypeDecl),
		hasInit:     make(map[string]bool),
		hasDestroy:  make(map[string]bool),
	}

	cl.rejectUnsupported()
	cl.synthesizeVTables()
	cl.flattenDecls()
	cl.rewriteBodies()
}

// rejectUnsupported flags multiple inheritance and class templates.  The
// offending declaration is kept as a verbatim fragment so the rest of the
// unit still translates.
func (cl *classLowerer) rejectUnsupported() {
	for i, d := range cl.l.prog.Decls {
		td, ok := d.(*ir.TypeDecl)
		if !ok || !td.IsClass {
			continue
		}

		switch {
		case len(td.Bases) > 1:
			cl.l.diags.Add(report.UnsupportedConstruct, td.Name,
				"multiple inheritance cannot be flattened into a single base prefix")
		case len(td.TypeParams) > 0:
			cl.l.diags.Add(report.UnsupportedConstruct, td.Name,
				"class templates are not lowerable")
		default:
			continue
		}

		cl.rejected[td.Name] = true
		cl.l.prog.Decls[i] = &ir.Verbatim{
			Marker: "UNSUPPORTED " + td.Name,
			Text:   emit.RenderDecl(cl.l.src, td),
		}
	}
}

// -----------------------------------------------------------------------------

// synthesizeVTables builds one descriptor per class whose chain dispatches
// virtually.  Traversal is root-first so a derived table always starts from
// its base's slots; overrides rebind a slot in place, so slot count and order
// are identical down a chain.
func (cl *classLowerer) synthesizeVTables() {
	for _, td := range cl.l.env.Classes(cl.l.prog) {
		if !td.IsClass || cl.chainRejected(td.Name) {
			continue
		}

		var slots []ir.VTableSlot
		owner := td.Name
		if baseDesc := cl.descriptors[td.Base()]; baseDesc != nil {
			slots = append(slots, baseDesc.Slots...)
			owner = baseDesc.Owner
		}

		for _, m := range td.Methods {
			if !m.Virtual || m.Ctor || m.Dtor {
				continue
			}

			rebound := false
			for i := range slots {
				if slots[i].Method == m.Name {
					slots[i].Impl = td.Name
					rebound = true
					break
				}
			}

			if !rebound {
				slots = append(slots, ir.VTableSlot{
					Method: m.Name,
					Impl:   td.Name,
					Return: m.Return,
					Params: m.Params,
				})
			}
		}

		if len(slots) == 0 {
			continue
		}

		desc := &ir.VTableDescriptor{Class: td.Name, Owner: owner, Slots: slots}
		cl.descriptors[td.Name] = desc
		cl.vtOwner[td.Name] = owner
		cl.l.prog.VTables = append(cl.l.prog.VTables, desc)
	}
}

// chainRejected reports whether a class or any ancestor was rejected.
func (cl *classLowerer) chainRejected(class string) bool {
	for _, td := range cl.l.env.Chain(class) {
		if cl.rejected[td.Name] {
			return true
		}
	}

	return cl.rejected[class]
}

// -----------------------------------------------------------------------------

// flattenDecls replaces each class declaration with a flattened record
// followed by its synthesized free functions: constructors, destructor,
// static methods, then virtual implementations.
func (cl *classLowerer) flattenDecls() {
	var out []ir.Decl
	for _, d := range cl.l.prog.Decls {
		td, ok := d.(*ir.TypeDecl)
		if !ok || !td.IsClass || cl.rejected[td.Name] {
			out = append(out, d)
			continue
		}

		out = append(out, cl.flattenRecord(td))
		out = append(out, cl.synthesizeFuncs(td)...)
	}

	cl.l.prog.Decls = out
}

// flattenRecord builds the procedural record for one class.  The embedded
// base is always the first field; the vtable pointer follows it in the class
// that introduces dispatch.
func (cl *classLowerer) flattenRecord(td *ir.TypeDecl) *ir.TypeDecl {
	var fields []ir.Field

	if base := td.Base(); base != "" {
		fields = append(fields, ir.Field{Name: "base", Type: ir.Named(base)})
	}

	if cl.vtOwner[td.Name] == td.Name {
		fields = append(fields, ir.Field{
			Name: "vtable",
			Type: ir.PtrTo(td.Name + "_VTable"),
		})
	}

	fields = append(fields, td.Fields...)

	return &ir.TypeDecl{Name: td.Name, Fields: fields}
}

// synthesizeFuncs turns a class's methods into free functions.  A class with
// a base or a vtable but no user constructor gets a default one so the
// chaining and table-pointer invariants still hold.
func (cl *classLowerer) synthesizeFuncs(td *ir.TypeDecl) []ir.Decl {
	var out []ir.Decl
	sawCtor, sawDtor := false, false

	for _, m := range td.Methods {
		if m.Ctor {
			sawCtor = true
			out = append(out, cl.synthesizeCtor(td, m))
		}
	}

	if !sawCtor && (td.Base() != "" || cl.vtOwner[td.Name] != "") {
		out = append(out, cl.synthesizeCtor(td, nil))
	}

	for _, m := range td.Methods {
		if m.Dtor {
			sawDtor = true
			out = append(out, cl.synthesizeDtor(td, m))
		}
	}

	// A derived class without its own destructor still has to tear its base
	// down, so it gets a default one.
	if !sawDtor && td.Base() != "" && cl.chainHasDtor(td.Base()) {
		out = append(out, cl.synthesizeDtor(td, nil))
	}

	for _, m := range td.Methods {
		if m.Ctor || m.Dtor || m.Virtual {
			continue
		}
		out = append(out, cl.methodFunc(td, m, td.Name+"_"+m.Name))
	}

	for _, m := range td.Methods {
		if m.Virtual && !m.Ctor && !m.Dtor {
			out = append(out, cl.methodFunc(td, m, td.Name+"_"+m.Name+"_impl"))
		}
	}

	return out
}

// synthesizeCtor builds `Class_init`.  Statement order is fixed: base
// initialization, vtable-pointer assignment, then the user body.  m may be
// nil for a synthesized default constructor.
func (cl *classLowerer) synthesizeCtor(td *ir.TypeDecl, m *ir.MethodDecl) ir.Decl {
	body := &ir.Block{}

	if base := td.Base(); base != "" {
		var baseArgs []ir.Expr
		if m != nil {
			baseArgs = m.BaseArgs
		}

		args := append([]ir.Expr{addrOf(selfField("base"))}, baseArgs...)
		body.Stmts = append(body.Stmts, &ir.ExprStmt{X: &ir.Call{
			Fun:  &ir.Identifier{Name: base + "_init"},
			Args: args,
		}})
	}

	if desc := cl.descriptors[td.Name]; desc != nil {
		body.Stmts = append(body.Stmts, &ir.ExprStmt{X: &ir.BinaryExpr{
			Op: "=",
			L:  cl.vtablePath(&ir.Identifier{Name: "self"}, true, td.Name),
			R:  addrOf(&ir.Identifier{Name: desc.TableName()}),
		}})
	}

	var params []ir.Param
	if m != nil {
		params = m.Params
		if m.Body != nil {
			body.Stmts = append(body.Stmts, m.Body.Stmts...)
		}
	}

	fd := &ir.FuncDecl{
		Name:   td.Name + "_init",
		Return: ir.Void(),
		Params: append([]ir.Param{{Name: "self", Type: ir.PtrTo(td.Name)}}, params...),
		Body:   body,
	}

	cl.methodOf[fd] = td
	cl.hasInit[td.Name] = true
	return fd
}

// synthesizeDtor builds `Class_destroy`: the user teardown body first, the
// base destructor last.  m may be nil for a synthesized default destructor.
func (cl *classLowerer) synthesizeDtor(td *ir.TypeDecl, m *ir.MethodDecl) ir.Decl {
	body := &ir.Block{}
	if m != nil && m.Body != nil {
		body.Stmts = append(body.Stmts, m.Body.Stmts...)
	}

	if base := td.Base(); base != "" && cl.chainHasDtor(base) {
		body.Stmts = append(body.Stmts, &ir.ExprStmt{X: &ir.Call{
			Fun:  &ir.Identifier{Name: base + "_destroy"},
			Args: []ir.Expr{addrOf(selfField("base"))},
		}})
	}

	fd := &ir.FuncDecl{
		Name:   td.Name + "_destroy",
		Return: ir.Void(),
		Params: []ir.Param{{Name: "self", Type: ir.PtrTo(td.Name)}},
		Body:   body,
	}

	cl.methodOf[fd] = td
	cl.hasDestroy[td.Name] = true
	return fd
}

// chainHasDtor reports whether a class or any ancestor declares a destructor.
func (cl *classLowerer) chainHasDtor(class string) bool {
	for _, td := range cl.l.env.Chain(class) {
		for _, m := range td.Methods {
			if m.Dtor {
				return true
			}
		}
	}

	return false
}

// methodFunc builds the free function for a regular or virtual method.
func (cl *classLowerer) methodFunc(td *ir.TypeDecl, m *ir.MethodDecl, name string) ir.Decl {
	fd := &ir.FuncDecl{
		Name:   name,
		Return: m.Return,
		Params: append([]ir.Param{{Name: "self", Type: ir.PtrTo(td.Name)}}, m.Params...),
		Body:   m.Body,
	}

	cl.methodOf[fd] = td
	return fd
}

// -----------------------------------------------------------------------------
// Expression helpers.

func addrOf(e ir.Expr) ir.Expr {
	return &ir.UnaryExpr{Op: "&", X: e}
}

func selfField(field string) ir.Expr {
	return &ir.MemberAccess{X: &ir.Identifier{Name: "self"}, Member: field, Arrow: true}
}

// memberPath builds the access path from an expression of class `from` to a
// field declared on ancestor `declaring`, stepping through one embedded
// `base` field per inheritance link.
func (cl *classLowerer) memberPath(x ir.Expr, xIsPtr bool, from, declaring, member string) ir.Expr {
	chain := cl.l.env.Chain(from)

	declIdx := -1
	for i, td := range chain {
		if td.Name == declaring {
			declIdx = i
			break
		}
	}

	cur := x
	arrow := xIsPtr
	if declIdx >= 0 {
		for i := 0; i < len(chain)-1-declIdx; i++ {
			cur = &ir.MemberAccess{X: cur, Member: "base", Arrow: arrow}
			arrow = false
		}
	}

	return &ir.MemberAccess{X: cur, Member: member, Arrow: arrow}
}

// vtablePath builds the access path to the vtable-pointer field of an object
// of static class `class`.
func (cl *classLowerer) vtablePath(x ir.Expr, xIsPtr bool, class string) ir.Expr {
	return cl.memberPath(x, xIsPtr, class, cl.vtOwner[class], "vtable")
}
