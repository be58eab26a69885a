package emit

import (
	"strings"

	"polyc/common"
	"polyc/ir"
)

// cppHeaders maps callees onto the headers the emitted file must include.
var cppHeaders = map[string]string{
	"printf": "iostream", "scanf": "iostream", "puts": "iostream",
	"getchar": "iostream", "putchar": "iostream",
	"stoi": "string", "stol": "string", "stod": "string",
	"sqrt": "cmath", "pow": "cmath", "fabs": "cmath",
	"ceil": "cmath", "floor": "cmath", "round": "cmath",
	"log": "cmath", "log10": "cmath", "exp": "cmath",
	"sin": "cmath", "cos": "cmath", "tan": "cmath",
	"toupper": "cctype", "tolower": "cctype",
	"isalpha": "cctype", "isdigit": "cctype", "isspace": "cctype",
	"malloc": "cstdlib", "free": "cstdlib", "exit": "cstdlib",
	"abs": "cstdlib", "rand": "cstdlib", "srand": "cstdlib",
}

var cppHeaderOrder = []string{"iostream", "string", "cmath", "cctype", "cstdlib", "map"}

type cppEmitter struct {
	writer
	prog *ir.Program
}

// emitCpp renders a unit as a C++ translation unit.  Output stays in the
// std namespace the way hand-written course code does.
func emitCpp(prog *ir.Program) string {
	e := &cppEmitter{prog: prog}

	e.emitIncludes()

	for _, m := range prog.Macros {
		if len(m.Params) == 0 {
			e.linef("#define %s %s", m.Name, exprString(common.LangCpp, m.Body))
		} else {
			e.linef("#define %s(%s) (%s)", m.Name, strings.Join(m.Params, ", "), exprString(common.LangCpp, m.Body))
		}
	}
	if len(prog.Macros) > 0 {
		e.blank()
	}

	for _, d := range prog.Decls {
		switch v := d.(type) {
		case *ir.TypeDecl:
			e.raw(renderCppType(v, e.indent))
			e.blank()
		case *ir.FuncDecl:
			e.emitFunc(v)
		case *ir.VarDecl:
			e.emitVarDecl(v)
		case *ir.Verbatim:
			e.emitVerbatim(v)
		}
	}

	return e.result()
}

func (e *cppEmitter) emitIncludes() {
	needed := map[string]bool{}
	ir.VisitExprs(e.prog, func(x ir.Expr) {
		switch v := x.(type) {
		case *ir.Call:
			if h, ok := cppHeaders[v.Callee()]; ok {
				needed[h] = true
			}
		case *ir.Literal:
			if v.Kind == ir.LitStr {
				needed["string"] = true
			}
		}
	})

	for _, d := range e.prog.Decls {
		switch v := d.(type) {
		case *ir.TypeDecl:
			for _, f := range v.Fields {
				if f.Type.Name == "map" {
					needed["map"] = true
				}
			}
		case *ir.FuncDecl:
			ir.RewriteStmts(v.Body, func(s ir.Stmt) []ir.Stmt {
				if vd, ok := s.(*ir.VarDecl); ok && vd.Type.Name == "map" {
					needed["map"] = true
				}
				return []ir.Stmt{s}
			})
		}
	}

	any := false
	for _, h := range cppHeaderOrder {
		if needed[h] {
			e.linef("#include <%s>", h)
			any = true
		}
	}

	if any {
		e.blank()
		e.linef("using namespace std;")
		e.blank()
	}
}

func (e *cppEmitter) emitVerbatim(v *ir.Verbatim) {
	e.linef("/* %s */", v.Marker)
	e.raw(strings.TrimRight(v.Text, "\n") + "\n")
	e.linef("/* END %s */", v.Marker)
	e.blank()
}

func (e *cppEmitter) emitVarDecl(vd *ir.VarDecl) {
	decl := cppDeclarator(vd.Type, vd.Name)

	switch {
	case vd.CtorArgs != nil:
		args := make([]string, len(vd.CtorArgs))
		for i, a := range vd.CtorArgs {
			args[i] = exprString(common.LangCpp, a)
		}
		e.linef("%s(%s);", decl, strings.Join(args, ", "))
	case vd.Init != nil:
		e.linef("%s = %s;", decl, exprString(common.LangCpp, vd.Init))
	default:
		e.linef("%s;", decl)
	}
}

func (e *cppEmitter) emitFunc(fd *ir.FuncDecl) {
	params := make([]string, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = cppDeclarator(p.Type, p.Name)
	}

	if len(fd.TypeParams) > 0 {
		e.linef("template <typename %s>", strings.Join(fd.TypeParams, ", typename "))
	}

	e.linef("%s %s(%s) {", typeString(common.LangCpp, fd.Return), fd.Name, strings.Join(params, ", "))
	e.indent++
	e.emitBlockStmts(fd.Body)
	e.indent--
	e.linef("}")
	e.blank()
}

// -----------------------------------------------------------------------------

func (e *cppEmitter) emitBlockStmts(b *ir.Block) {
	if b == nil {
		return
	}

	for _, s := range b.Stmts {
		e.emitStmt(s)
	}
}

func (e *cppEmitter) emitStmt(s ir.Stmt) {
	switch v := s.(type) {
	case *ir.VarDecl:
		e.emitVarDecl(v)
	case *ir.ExprStmt:
		if call, ok := v.X.(*ir.Call); ok && e.emitIdiomCall(call) {
			return
		}

		e.linef("%s;", exprString(common.LangCpp, v.X))
	case *ir.Block:
		e.linef("{")
		e.indent++
		e.emitBlockStmts(v)
		e.indent--
		e.linef("}")
	case *ir.If:
		e.emitIf(v)
	case *ir.For:
		e.linef("for (%s; %s; %s) {", e.inlineStmt(v.Init), exprString(common.LangCpp, v.Cond), e.inlineStmt(v.Post))
		e.indent++
		e.emitBlockStmts(v.Body)
		e.indent--
		e.linef("}")
	case *ir.While:
		e.linef("while (%s) {", exprString(common.LangCpp, v.Cond))
		e.indent++
		e.emitBlockStmts(v.Body)
		e.indent--
		e.linef("}")
	case *ir.DoWhile:
		e.linef("do {")
		e.indent++
		e.emitBlockStmts(v.Body)
		e.indent--
		e.linef("} while (%s);", exprString(common.LangCpp, v.Cond))
	case *ir.Switch:
		e.linef("switch (%s) {", exprString(common.LangCpp, v.Tag))
		e.indent++
		for _, c := range v.Cases {
			if c.Value == nil {
				e.linef("default:")
			} else {
				e.linef("case %s:", exprString(common.LangCpp, c.Value))
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
			e.linef("return %s;", exprString(common.LangCpp, v.Value))
		}
	case *ir.Verbatim:
		e.emitVerbatim(v)
	}
}

func (e *cppEmitter) emitIf(v *ir.If) {
	e.linef("if (%s) {", exprString(common.LangCpp, v.Cond))
	e.indent++
	e.emitBlockStmts(v.Then)
	e.indent--

	for {
		alt, ok := v.Else.(*ir.If)
		if !ok {
			break
		}

		e.linef("} else if (%s) {", exprString(common.LangCpp, alt.Cond))
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

// emitIdiomCall expands printf into a cout chain and scanf into a cin chain.
// It reports whether it consumed the statement.
func (e *cppEmitter) emitIdiomCall(call *ir.Call) bool {
	switch call.Callee() {
	case "printf":
		e.linef("%s;", printfToCout(call))
		return true
	case "scanf":
		if len(call.Args) < 2 {
			return false
		}

		parts := make([]string, 0, len(call.Args)-1)
		for _, a := range call.Args[1:] {
			if u, ok := a.(*ir.UnaryExpr); ok && u.Op == "&" {
				a = u.X
			}
			parts = append(parts, exprString(common.LangCpp, a))
		}

		e.linef("cin >> %s;", strings.Join(parts, " >> "))
		return true
	case "puts":
		if len(call.Args) == 1 {
			e.linef("cout << %s << endl;", exprString(common.LangCpp, call.Args[0]))
			return true
		}
	}

	return false
}

// printfToCout parses a printf format string and interleaves its literal
// chunks with the value arguments as stream inserts.
func printfToCout(call *ir.Call) string {
	if len(call.Args) == 0 {
		return "cout << endl"
	}

	lit, ok := call.Args[0].(*ir.Literal)
	if !ok || lit.Kind != ir.LitStr {
		return "cout << " + exprString(common.LangCpp, call.Args[0])
	}

	fmtStr := strings.Trim(lit.Value, `"`)
	rest := call.Args[1:]

	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, `"`+cur.String()+`"`)
			cur.Reset()
		}
	}

	argIdx := 0
	for i := 0; i < len(fmtStr); i++ {
		switch {
		case fmtStr[i] == '%' && i+1 < len(fmtStr) && fmtStr[i+1] == '%':
			cur.WriteByte('%')
			i++
		case fmtStr[i] == '%' && i+1 < len(fmtStr):
			flush()
			// skip width/precision/length noise up to the conversion
			j := i + 1
			for j < len(fmtStr) && strings.ContainsRune("diouxXeEfgGaAcspnlhqjzt.0123456789-+ #*L", rune(fmtStr[j])) {
				j++
			}
			if argIdx < len(rest) {
				parts = append(parts, exprString(common.LangCpp, rest[argIdx]))
				argIdx++
			}
			i = j - 1
		case strings.HasPrefix(fmtStr[i:], `\n`):
			flush()
			parts = append(parts, "endl")
			i++
		default:
			cur.WriteByte(fmtStr[i])
		}
	}
	flush()

	if len(parts) == 0 {
		return "cout << endl"
	}

	return "cout << " + strings.Join(parts, " << ")
}

func (e *cppEmitter) inlineStmt(s ir.Stmt) string {
	switch v := s.(type) {
	case nil:
		return ""
	case *ir.VarDecl:
		if v.Init != nil {
			return cppDeclarator(v.Type, v.Name) + " = " + exprString(common.LangCpp, v.Init)
		}
		return cppDeclarator(v.Type, v.Name)
	case *ir.ExprStmt:
		return exprString(common.LangCpp, v.X)
	}

	return ""
}

// -----------------------------------------------------------------------------

// cppTypeString spells a type in C++, expanding the managed map's type
// arguments.
func cppTypeString(t ir.Type) string {
	if t.Name == "map" && !t.Ptr {
		return "map<int, int>"
	}

	return typeString(common.LangCpp, t)
}

// cppDeclarator renders `type name` with trailing array dimensions.
func cppDeclarator(t ir.Type, name string) string {
	dims := ""
	for _, d := range t.Dims {
		dims += "[" + exprString(common.LangCpp, d) + "]"
	}

	return cppTypeString(t) + " " + name + dims
}

// renderCppType renders a record or class declaration, including the class
// shapes that only appear inside verbatim fragments.
func renderCppType(td *ir.TypeDecl, indent int) string {
	var w writer
	w.indent = indent

	header := "struct " + td.Name
	if td.IsClass {
		header = "class " + td.Name
		if len(td.Bases) > 0 {
			header += " : public " + strings.Join(td.Bases, ", public ")
		}
	}

	if len(td.TypeParams) > 0 {
		w.linef("template <typename %s>", strings.Join(td.TypeParams, ", typename "))
	}

	w.linef("%s {", header)
	if td.IsClass {
		w.linef("public:")
	}
	w.indent++

	for _, f := range td.Fields {
		w.linef("%s;", cppDeclarator(f.Type, f.Name))
	}

	for _, m := range td.Methods {
		params := make([]string, len(m.Params))
		for i, p := range m.Params {
			params[i] = cppDeclarator(p.Type, p.Name)
		}

		sig := ""
		switch {
		case m.Ctor:
			sig = td.Name + "(" + strings.Join(params, ", ") + ")"
		case m.Dtor:
			sig = "~" + td.Name + "()"
		default:
			sig = typeString(common.LangCpp, m.Return) + " " + m.Name + "(" + strings.Join(params, ", ") + ")"
			if m.Virtual && !m.Override {
				sig = "virtual " + sig
			}
		}

		w.linef("%s {", sig)

		inner := &cppEmitter{}
		inner.indent = w.indent + 1
		inner.emitBlockStmts(m.Body)
		w.raw(inner.result())

		w.linef("}")
	}

	w.indent--
	w.linef("};")

	return w.result()
}
