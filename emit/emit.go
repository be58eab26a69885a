// Package emit renders lowered trees as target-language source text.  Each
// emitter is a mechanical walk plus the handful of output idioms that only
// exist at the text level: include and import synthesis, print and scan
// expansion, and the wrapping class for Java.  Emission is pure: the same
// tree always yields the same text.
package emit

import (
	"polyc/common"
	"polyc/ir"
	"polyc/report"
)

// Emit renders a whole unit in the given language.
func Emit(lang common.Lang, prog *ir.Program) string {
	switch lang {
	case common.LangC:
		return emitC(prog)
	case common.LangJava:
		return emitJava(prog)
	case common.LangCpp:
		return emitCpp(prog)
	}

	report.ReportICE("Emit: no emitter for language `%s`", lang)
	return ""
}

// RenderDecl renders a single declaration in the given language.  The
// lowering passes use it to preserve the source spelling of constructs they
// reject.
func RenderDecl(lang common.Lang, d ir.Decl) string {
	switch lang {
	case common.LangC:
		e := &cEmitter{prog: &ir.Program{}}
		switch v := d.(type) {
		case *ir.TypeDecl:
			e.linef("typedef struct {")
			e.indent++
			for _, f := range v.Fields {
				e.linef("%s;", cDeclarator(f.Type, f.Name))
			}
			e.indent--
			e.linef("} %s;", v.Name)
		case *ir.FuncDecl:
			e.linef("%s {", cSignature(v))
			e.indent++
			e.emitBlockStmts(v.Body)
			e.indent--
			e.linef("}")
		case *ir.VarDecl:
			e.emitVarDecl(v)
		case *ir.Verbatim:
			return v.Text
		}
		return e.result()

	case common.LangJava:
		e := &javaEmitter{prog: &ir.Program{}}
		switch v := d.(type) {
		case *ir.TypeDecl:
			e.emitClass(v)
		case *ir.FuncDecl:
			e.emitMethod(v)
		case *ir.VarDecl:
			e.emitStaticVar(v)
		case *ir.Verbatim:
			return v.Text
		}
		return e.result()

	case common.LangCpp:
		switch v := d.(type) {
		case *ir.TypeDecl:
			return renderCppType(v, 0)
		case *ir.FuncDecl:
			e := &cppEmitter{prog: &ir.Program{}}
			e.emitFunc(v)
			return e.result()
		case *ir.VarDecl:
			e := &cppEmitter{prog: &ir.Program{}}
			e.emitVarDecl(v)
			return e.result()
		case *ir.Verbatim:
			return v.Text
		}
	}

	report.ReportICE("RenderDecl: no renderer for language `%s`", lang)
	return ""
}
