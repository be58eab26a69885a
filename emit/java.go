package emit

import (
	"strings"

	"polyc/common"
	"polyc/ir"
)

type javaEmitter struct {
	writer
	prog *ir.Program

	usesScanner bool
	usesMap     bool
	usesMath    bool
}

// emitJava renders a unit as one Java source file: every free function
// becomes a static method of a wrapping class named after the unit.
func emitJava(prog *ir.Program) string {
	e := &javaEmitter{prog: prog}
	e.scan()

	if e.usesScanner {
		e.linef("import java.util.Scanner;")
	}
	if e.usesMap {
		e.linef("import java.util.HashMap;")
	}
	if e.usesMath {
		e.linef("import java.lang.Math;")
	}
	if e.usesScanner || e.usesMap || e.usesMath {
		e.blank()
	}

	name := prog.Name
	if name == "" {
		name = "Main"
	}

	e.linef("public class %s {", name)
	e.indent++

	for _, d := range e.prog.Decls {
		switch v := d.(type) {
		case *ir.VarDecl:
			e.emitStaticVar(v)
		case *ir.FuncDecl:
			e.blank()
			e.emitMethod(v)
		case *ir.TypeDecl:
			e.blank()
			e.emitClass(v)
		case *ir.Verbatim:
			e.emitVerbatim(v)
		}
	}

	e.indent--
	e.linef("}")

	return e.result()
}

// scan decides the import preamble from the tree's feature usage.
func (e *javaEmitter) scan() {
	ir.VisitExprs(e.prog, func(x ir.Expr) {
		switch v := x.(type) {
		case *ir.Call:
			if v.Callee() == "scanf" {
				e.usesScanner = true
			}
		case *ir.Identifier:
			if strings.HasPrefix(v.Name, "Math.") {
				e.usesMath = true
			}
		case *ir.New:
			if v.Type.Name == "HashMap" {
				e.usesMap = true
			}
		}
	})

	for _, d := range e.prog.Decls {
		if fd, ok := d.(*ir.FuncDecl); ok {
			e.scanDeclaredMaps(fd.Body)
		}
	}
}

func (e *javaEmitter) scanDeclaredMaps(b *ir.Block) {
	if b == nil {
		return
	}

	ir.RewriteStmts(b, func(s ir.Stmt) []ir.Stmt {
		if vd, ok := s.(*ir.VarDecl); ok && vd.Type.Name == "HashMap" {
			e.usesMap = true
		}
		return []ir.Stmt{s}
	})
}

func (e *javaEmitter) emitVerbatim(v *ir.Verbatim) {
	e.linef("/* %s */", v.Marker)
	e.raw(strings.TrimRight(v.Text, "\n") + "\n")
	e.linef("/* END %s */", v.Marker)
}

func (e *javaEmitter) emitStaticVar(vd *ir.VarDecl) {
	if vd.Init != nil {
		e.linef("static %s = %s;", javaDeclarator(vd.Type, vd.Name), exprString(common.LangJava, vd.Init))
	} else {
		e.linef("static %s;", javaDeclarator(vd.Type, vd.Name))
	}
}

func (e *javaEmitter) emitMethod(fd *ir.FuncDecl) {
	isMain := fd.Name == "main"

	if isMain {
		e.linef("public static void main(String[] args) {")
	} else {
		params := make([]string, len(fd.Params))
		for i, p := range fd.Params {
			params[i] = javaDeclarator(p.Type, p.Name)
		}

		e.linef("public static %s %s(%s) {", javaTypeString(fd.Return), fd.Name, strings.Join(params, ", "))
	}

	e.indent++
	if isMain && e.usesScanner {
		e.linef("Scanner sc = new Scanner(System.in);")
	}
	e.emitBlockStmts(fd.Body, isMain)
	e.indent--
	e.linef("}")
}

// emitClass renders a raised or verbatim class shape.
func (e *javaEmitter) emitClass(td *ir.TypeDecl) {
	header := "class " + td.Name
	if base := td.Base(); base != "" {
		header += " extends " + base
	}

	e.linef("%s {", header)
	e.indent++

	for _, f := range td.Fields {
		e.linef("%s;", javaDeclarator(f.Type, f.Name))
	}

	for _, m := range td.Methods {
		e.blank()
		params := make([]string, len(m.Params))
		for i, p := range m.Params {
			params[i] = javaDeclarator(p.Type, p.Name)
		}

		switch {
		case m.Ctor:
			e.linef("%s(%s) {", td.Name, strings.Join(params, ", "))
		default:
			e.linef("%s %s(%s) {", javaTypeString(m.Return), m.Name, strings.Join(params, ", "))
		}

		e.indent++
		e.emitBlockStmts(m.Body, false)
		e.indent--
		e.linef("}")
	}

	e.indent--
	e.linef("}")
}

// -----------------------------------------------------------------------------

func (e *javaEmitter) emitBlockStmts(b *ir.Block, inMain bool) {
	if b == nil {
		return
	}

	for _, s := range b.Stmts {
		e.emitStmt(s, inMain)
	}
}

func (e *javaEmitter) emitStmt(s ir.Stmt, inMain bool) {
	switch v := s.(type) {
	case *ir.VarDecl:
		e.emitVarDecl(v)
	case *ir.ExprStmt:
		if call, ok := v.X.(*ir.Call); ok && e.emitIdiomCall(call) {
			return
		}

		e.linef("%s;", exprString(common.LangJava, v.X))
	case *ir.Block:
		e.linef("{")
		e.indent++
		e.emitBlockStmts(v, inMain)
		e.indent--
		e.linef("}")
	case *ir.If:
		e.emitIf(v, inMain)
	case *ir.For:
		e.linef("for (%s; %s; %s) {", e.inlineStmt(v.Init), exprString(common.LangJava, v.Cond), e.inlineStmt(v.Post))
		e.indent++
		e.emitBlockStmts(v.Body, inMain)
		e.indent--
		e.linef("}")
	case *ir.While:
		e.linef("while (%s) {", exprString(common.LangJava, v.Cond))
		e.indent++
		e.emitBlockStmts(v.Body, inMain)
		e.indent--
		e.linef("}")
	case *ir.DoWhile:
		e.linef("do {")
		e.indent++
		e.emitBlockStmts(v.Body, inMain)
		e.indent--
		e.linef("} while (%s);", exprString(common.LangJava, v.Cond))
	case *ir.Switch:
		e.linef("switch (%s) {", exprString(common.LangJava, v.Tag))
		e.indent++
		for _, c := range v.Cases {
			if c.Value == nil {
				e.linef("default:")
			} else {
				e.linef("case %s:", exprString(common.LangJava, c.Value))
			}

			e.indent++
			for _, cs := range c.Body {
				e.emitStmt(cs, inMain)
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
		// main became void, so its returns drop their exit value
		if v.Value == nil || inMain {
			e.linef("return;")
		} else {
			e.linef("return %s;", exprString(common.LangJava, v.Value))
		}
	case *ir.Verbatim:
		e.emitVerbatim(v)
	}
}

func (e *javaEmitter) emitIf(v *ir.If, inMain bool) {
	e.linef("if (%s) {", exprString(common.LangJava, v.Cond))
	e.indent++
	e.emitBlockStmts(v.Then, inMain)
	e.indent--

	for {
		alt, ok := v.Else.(*ir.If)
		if !ok {
			break
		}

		e.linef("} else if (%s) {", exprString(common.LangJava, alt.Cond))
		e.indent++
		e.emitBlockStmts(alt.Then, inMain)
		e.indent--
		v = alt
	}

	switch alt := v.Else.(type) {
	case nil:
		e.linef("}")
	case *ir.Block:
		e.linef("} else {")
		e.indent++
		e.emitBlockStmts(alt, inMain)
		e.indent--
		e.linef("}")
	default:
		e.linef("} else {")
		e.indent++
		e.emitStmt(alt, inMain)
		e.indent--
		e.linef("}")
	}
}

func (e *javaEmitter) emitVarDecl(vd *ir.VarDecl) {
	decl := javaDeclarator(vd.Type, vd.Name)

	switch {
	case vd.Init != nil:
		e.linef("%s = %s;", decl, exprString(common.LangJava, vd.Init))
	case len(vd.Type.Dims) > 0 && vd.Type.Dims[0] != nil:
		// sized array declarations allocate up front
		dims := ""
		for _, d := range vd.Type.Dims {
			dims += "[" + exprString(common.LangJava, d) + "]"
		}
		e.linef("%s = new %s%s;", decl, javaTypeString(ir.Type{Name: vd.Type.Name}), dims)
	default:
		e.linef("%s;", decl)
	}
}

// emitIdiomCall expands the print and scan idioms that have no direct call
// form in Java.  It reports whether it consumed the statement.
func (e *javaEmitter) emitIdiomCall(call *ir.Call) bool {
	switch call.Callee() {
	case "System.out.printf":
		args := make([]string, len(call.Args))
		for i, a := range call.Args {
			args[i] = exprString(common.LangJava, a)
		}

		if len(args) > 0 {
			// %n is the portable newline in Java format strings
			args[0] = strings.ReplaceAll(args[0], `\n`, "%n")
		}

		e.linef("System.out.printf(%s);", strings.Join(args, ", "))
		return true
	case "scanf":
		e.emitScanf(call)
		return true
	}

	return false
}

// emitScanf expands one scanf call into per-variable Scanner reads, picking
// the read by the matching format specifier.
func (e *javaEmitter) emitScanf(call *ir.Call) {
	var specs []string
	if len(call.Args) > 0 {
		if lit, ok := call.Args[0].(*ir.Literal); ok && lit.Kind == ir.LitStr {
			specs = formatSpecs(strings.Trim(lit.Value, `"`))
		}
	}

	for i, arg := range call.Args[1:] {
		target := arg
		if u, ok := arg.(*ir.UnaryExpr); ok && u.Op == "&" {
			target = u.X
		}

		name := exprString(common.LangJava, target)

		spec := "%d"
		if i < len(specs) {
			spec = specs[i]
		}

		switch spec {
		case "%d", "%i":
			e.linef("%s = sc.nextInt();", name)
		case "%f":
			e.linef("%s = sc.nextFloat();", name)
		case "%lf", "%g":
			e.linef("%s = sc.nextDouble();", name)
		case "%s":
			e.linef("%s = sc.next();", name)
		case "%c":
			e.linef("%s = sc.next().charAt(0);", name)
		default:
			e.linef("%s = sc.nextLine();", name)
		}
	}
}

// formatSpecs extracts the conversion specifiers of a C format string.
func formatSpecs(fmt string) []string {
	var specs []string
	for i := 0; i+1 < len(fmt); i++ {
		if fmt[i] == '%' && fmt[i+1] != '%' {
			specs = append(specs, fmt[i:i+2])
			i++
		}
	}

	return specs
}

// inlineStmt renders a for-clause component.
func (e *javaEmitter) inlineStmt(s ir.Stmt) string {
	switch v := s.(type) {
	case nil:
		return ""
	case *ir.VarDecl:
		if v.Init != nil {
			return javaDeclarator(v.Type, v.Name) + " = " + exprString(common.LangJava, v.Init)
		}
		return javaDeclarator(v.Type, v.Name)
	case *ir.ExprStmt:
		return exprString(common.LangJava, v.X)
	}

	return ""
}

// -----------------------------------------------------------------------------

// javaTypeString spells a type in Java, expanding the managed map's type
// arguments.
func javaTypeString(t ir.Type) string {
	if t.Name == "HashMap" {
		return "HashMap<Integer, Integer>"
	}

	return typeString(common.LangJava, t)
}

// javaDeclarator renders `type name`, with array dimensions moving onto the
// type.
func javaDeclarator(t ir.Type, name string) string {
	base := javaTypeString(t)
	for range t.Dims {
		base += "[]"
	}

	return base + " " + name
}
