package emit

import (
	"strings"

	"polyc/common"
	"polyc/ir"
)

// cHeaders maps a callee to the header that declares it.  The include set of
// an emitted file is computed by scanning the tree for these names.
var cHeaders = map[string]string{
	"printf": "stdio.h", "scanf": "stdio.h", "puts": "stdio.h",
	"putchar": "stdio.h", "getchar": "stdio.h", "fprintf": "stdio.h",
	"malloc": "stdlib.h", "free": "stdlib.h", "exit": "stdlib.h",
	"atoi": "stdlib.h", "atof": "stdlib.h", "atol": "stdlib.h",
	"rand": "stdlib.h", "srand": "stdlib.h", "abs": "stdlib.h",
	"strlen": "string.h", "strcmp": "string.h", "strcpy": "string.h",
	"strcat": "string.h", "strstr": "string.h", "strncpy": "string.h",
	"sqrt": "math.h", "pow": "math.h", "fabs": "math.h",
	"ceil": "math.h", "floor": "math.h", "round": "math.h",
	"log": "math.h", "log10": "math.h", "exp": "math.h",
	"sin": "math.h", "cos": "math.h", "tan": "math.h",
	"toupper": "ctype.h", "tolower": "ctype.h",
	"isalpha": "ctype.h", "isdigit": "ctype.h", "isspace": "ctype.h",
}

// headerOrder fixes the include emission order.
var headerOrder = []string{"stdio.h", "stdlib.h", "string.h", "math.h", "ctype.h"}

type cEmitter struct {
	writer
	prog *ir.Program
}

// emitC renders a whole unit as a C translation unit: includes, macros,
// record types with their dispatch tables, prototypes, then definitions.
func emitC(prog *ir.Program) string {
	e := &cEmitter{prog: prog}

	e.emitIncludes()
	e.emitMacros()
	e.emitRecords()
	e.emitPrototypes()
	e.emitVTables()
	e.emitDefinitions()

	return e.result()
}

func (e *cEmitter) emitIncludes() {
	needed := make(map[string]bool)
	ir.VisitExprs(e.prog, func(x ir.Expr) {
		if call, ok := x.(*ir.Call); ok {
			if h, ok := cHeaders[call.Callee()]; ok {
				needed[h] = true
			}
		}
	})

	any := false
	for _, h := range headerOrder {
		if needed[h] {
			e.linef("#include <%s>", h)
			any = true
		}
	}

	if any {
		e.blank()
	}
}

func (e *cEmitter) emitMacros() {
	for _, m := range e.prog.Macros {
		if len(m.Params) == 0 {
			e.linef("#define %s %s", m.Name, exprString(common.LangC, m.Body))
		} else {
			e.linef("#define %s(%s) (%s)", m.Name, strings.Join(m.Params, ", "), exprString(common.LangC, m.Body))
		}
	}

	if len(e.prog.Macros) > 0 {
		e.blank()
	}
}

// emitRecords emits every record type.  When the unit dispatches virtually,
// records and table structs are forward-declared first so the mutual
// pointer references resolve.
func (e *cEmitter) emitRecords() {
	if len(e.prog.VTables) > 0 {
		e.emitVTableStructs()
	}

	for _, d := range e.prog.Decls {
		td, ok := d.(*ir.TypeDecl)
		if !ok {
			continue
		}

		if len(e.prog.VTables) > 0 {
			e.linef("struct %s {", td.Name)
		} else {
			e.linef("typedef struct {")
		}

		e.indent++
		for _, f := range td.Fields {
			e.linef("%s;", cDeclarator(f.Type, f.Name))
		}
		e.indent--

		if len(e.prog.VTables) > 0 {
			e.linef("};")
		} else {
			e.linef("} %s;", td.Name)
		}
		e.blank()
	}
}

// emitVTableStructs forward-declares every record, then defines one table
// struct per dispatching chain.
func (e *cEmitter) emitVTableStructs() {
	for _, d := range e.prog.Decls {
		if td, ok := d.(*ir.TypeDecl); ok {
			e.linef("typedef struct %s %s;", td.Name, td.Name)
		}
	}

	owners := make(map[string]bool)
	for _, vt := range e.prog.VTables {
		if owners[vt.Owner] {
			continue
		}
		owners[vt.Owner] = true
		e.linef("typedef struct %s %s;", vt.StructName(), vt.StructName())
	}
	e.blank()

	owners = make(map[string]bool)
	for _, vt := range e.prog.VTables {
		if owners[vt.Owner] {
			continue
		}
		owners[vt.Owner] = true

		e.linef("struct %s {", vt.StructName())
		e.indent++
		for _, slot := range vt.Slots {
			e.linef("%s (*%s)(%s);", typeString(common.LangC, slot.Return), slot.Method, slotParams(vt.Owner, slot))
		}
		e.indent--
		e.linef("};")
		e.blank()
	}
}

// slotParams renders a dispatch slot's parameter list, self first.
func slotParams(owner string, slot ir.VTableSlot) string {
	parts := []string{owner + "* self"}
	for _, p := range slot.Params {
		parts = append(parts, cDeclarator(p.Type, p.Name))
	}

	return strings.Join(parts, ", ")
}

// emitVTables emits one static table per class, binding each slot to its
// resolved implementation.  Tables come after the prototypes so the
// implementation names are in scope.
func (e *cEmitter) emitVTables() {
	for _, vt := range e.prog.VTables {
		e.linef("static %s %s = {", vt.StructName(), vt.TableName())
		e.indent++
		for _, slot := range vt.Slots {
			impl := slot.Impl + "_" + slot.Method + "_impl"
			if slot.Impl != vt.Owner {
				// The implementation takes its own class; the slot takes the
				// chain owner.  The base-prefix layout makes the cast sound.
				impl = "(" + typeString(common.LangC, slot.Return) + " (*)(" + slotSigTypes(vt.Owner, slot) + "))" + impl
			}
			e.linef("%s,", impl)
		}
		e.indent--
		e.linef("};")
		e.blank()
	}
}

func slotSigTypes(owner string, slot ir.VTableSlot) string {
	parts := []string{owner + "*"}
	for _, p := range slot.Params {
		parts = append(parts, typeString(common.LangC, p.Type))
	}

	return strings.Join(parts, ", ")
}

func (e *cEmitter) emitPrototypes() {
	any := false
	for _, d := range e.prog.Decls {
		if fd, ok := d.(*ir.FuncDecl); ok && fd.Name != "main" {
			e.linef("%s;", cSignature(fd))
			any = true
		}
	}

	if any {
		e.blank()
	}
}

func (e *cEmitter) emitDefinitions() {
	for _, d := range e.prog.Decls {
		switch v := d.(type) {
		case *ir.FuncDecl:
			e.linef("%s {", cSignature(v))
			e.indent++
			e.emitBlockStmts(v.Body)
			e.indent--
			e.linef("}")
			e.blank()
		case *ir.VarDecl:
			e.emitVarDecl(v)
		case *ir.Verbatim:
			e.emitVerbatim(v)
		}
	}
}

func (e *cEmitter) emitVerbatim(v *ir.Verbatim) {
	e.linef("/* %s */", v.Marker)
	e.raw(strings.TrimRight(v.Text, "\n") + "\n")
	e.linef("/* END %s */", v.Marker)
	e.blank()
}

// cSignature renders a function header.
func cSignature(fd *ir.FuncDecl) string {
	params := make([]string, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = cDeclarator(p.Type, p.Name)
	}

	paramStr := strings.Join(params, ", ")
	if paramStr == "" {
		paramStr = "void"
	}

	return typeString(common.LangC, fd.Return) + " " + fd.Name + "(" + paramStr + ")"
}

// cDeclarator renders `type name` with C array dimensions trailing the name.
func cDeclarator(t ir.Type, name string) string {
	dims := ""
	for _, d := range t.Dims {
		dims += "[" + exprString(common.LangC, d) + "]"
	}

	base := t.Name
	if t.Ptr {
		base += "*"
	}

	return base + " " + name + dims
}

// -----------------------------------------------------------------------------
// Statements.

func (e *cEmitter) emitBlockStmts(b *ir.Block) {
	if b == nil {
		return
	}

	for _, s := range b.Stmts {
		e.emitStmt(s)
	}
}

func (e *cEmitter) emitStmt(s ir.Stmt) {
	switch v := s.(type) {
	case *ir.VarDecl:
		e.emitVarDecl(v)
	case *ir.ExprStmt:
		e.linef("%s;", exprString(common.LangC, v.X))
	case *ir.Block:
		e.linef("{")
		e.indent++
		e.emitBlockStmts(v)
		e.indent--
		e.linef("}")
	case *ir.If:
		e.emitIf(v)
	case *ir.For:
		e.linef("for (%s; %s; %s) {", inlineStmtC(v.Init), exprString(common.LangC, v.Cond), inlineStmtC(v.Post))
		e.indent++
		e.emitBlockStmts(v.Body)
		e.indent--
		e.linef("}")
	case *ir.While:
		e.linef("while (%s) {", exprString(common.LangC, v.Cond))
		e.indent++
		e.emitBlockStmts(v.Body)
		e.indent--
		e.linef("}")
	case *ir.DoWhile:
		e.linef("do {")
		e.indent++
		e.emitBlockStmts(v.Body)
		e.indent--
		e.linef("} while (%s);", exprString(common.LangC, v.Cond))
	case *ir.Switch:
		e.linef("switch (%s) {", exprString(common.LangC, v.Tag))
		e.indent++
		for _, c := range v.Cases {
			if c.Value == nil {
				e.linef("default:")
			} else {
				e.linef("case %s:", exprString(common.LangC, c.Value))
			}

			e.indent++
			for _, cs := range c.Body {
				e.emitStmt(cs)
			}
			e.indent--
		}
		e.indent--
		e.linef("}")
	case *ir.Break:
		e.linef("break;")
	case *ir.Continue:
		e.linef("continue;")
	case *ir.Return:
		if v.Value == nil {
			e.linef("return;")
		} else {
			e.linef("return %s;", exprString(common.LangC, v.Value))
		}
	case *ir.Verbatim:
		e.emitVerbatim(v)
	}
}

func (e *cEmitter) emitIf(v *ir.If) {
	e.linef("if (%s) {", exprString(common.LangC, v.Cond))
	e.indent++
	e.emitBlockStmts(v.Then)
	e.indent--

	// fold else-if chains onto the closing brace
	for {
		alt, ok := v.Else.(*ir.If)
		if !ok {
			break
		}

		e.linef("} else if (%s) {", exprString(common.LangC, alt.Cond))
		e.indent++
		e.emitBlockStmts(alt.Then)
		e.indent--
		v = alt
	}

	switch alt := v.Else.(type) {
	case nil:
		e.linef("}")
	case *ir.Block:
		e.linef("} else {")
		e.indent++
		e.emitBlockStmts(alt)
		e.indent--
		e.linef("}")
	default:
		e.linef("} else {")
		e.indent++
		e.emitStmt(alt)
		e.indent--
		e.linef("}")
	}
}

func (e *cEmitter) emitVarDecl(vd *ir.VarDecl) {
	if vd.Init != nil {
		e.linef("%s = %s;", cDeclarator(vd.Type, vd.Name), exprString(common.LangC, vd.Init))
	} else {
		e.linef("%s;", cDeclarator(vd.Type, vd.Name))
	}
}

// inlineStmtC renders a statement without its trailing newline for use in a
// for-clause.
func inlineStmtC(s ir.Stmt) string {
	switch v := s.(type) {
	case nil:
		return ""
	case *ir.VarDecl:
		if v.Init != nil {
			return cDeclarator(v.Type, v.Name) + " = " + exprString(common.LangC, v.Init)
		}
		return cDeclarator(v.Type, v.Name)
	case *ir.ExprStmt:
		return exprString(common.LangC, v.X)
	}

	return ""
}
