// Package trans implements the rule-driven statement and expression
// translator.  It is a pure structural rewrite: control flow maps one to one,
// declared types are respelled through the rule table, literal spellings are
// adjusted, and call idioms are substituted per rule.  Paradigm-specific work
// never happens here; by the time the translator runs, the lowering (or
// raising) passes have already shaped the tree for the target paradigm.
package trans

import (
	"polyc/common"
	"polyc/ir"
	"polyc/report"
	"polyc/rules"
	"polyc/sem"
)

// translator rewrites one translation unit's tree in place.
type translator struct {
	prog *ir.Program
	env  *sem.Env
	set  *rules.Set

	src, tgt common.Lang

	diags *report.Diags

	// declared holds every function and macro name defined in the unit,
	// including ones synthesized by lowering.  A call to one of them is
	// never a rule miss.
	declared map[string]bool

	// missed dedupes rule-miss diagnostics by callee.
	missed map[string]bool

	// class is the enclosing type while rewriting a method body, nil inside
	// free functions.
	class *ir.TypeDecl
}

// Translate rewrites the tree into the target language's shape.  Types,
// literals, and call idioms are substituted; unrecognized calls pass through
// with a diagnostic.
func Translate(prog *ir.Program, env *sem.Env, set *rules.Set, src, tgt common.Lang, diags *report.Diags) {
	tr := &translator{
		prog:     prog,
		env:      env,
		set:      set,
		src:      src,
		tgt:      tgt,
		diags:    diags,
		declared: make(map[string]bool),
		missed:   make(map[string]bool),
	}

	for _, d := range prog.Decls {
		if fd, ok := d.(*ir.FuncDecl); ok {
			tr.declared[fd.Name] = true
		}
	}
	for _, m := range prog.Macros {
		tr.declared[m.Name] = true
	}

	tr.mapDeclTypes()
	tr.rewriteBodies()

	if tgt != common.LangJava {
		tr.fixMain()
	}
}

// mapType respells one declared type for the target language.
func (tr *translator) mapType(t ir.Type) ir.Type {
	return tr.set.MapType(tr.src, tr.tgt, t)
}

// mapDeclTypes respells every type slot of the top-level declarations.
// Statement-level variable declarations are handled during the body walk so
// scope tracking sees the mapped types.
func (tr *translator) mapDeclTypes() {
	for _, d := range tr.prog.Decls {
		switch v := d.(type) {
		case *ir.FuncDecl:
			v.Return = tr.mapType(v.Return)
			for i := range v.Params {
				v.Params[i].Type = tr.mapType(v.Params[i].Type)
			}
		case *ir.TypeDecl:
			for i := range v.Fields {
				v.Fields[i].Type = tr.mapType(v.Fields[i].Type)
			}

			for _, m := range v.Methods {
				m.Return = tr.mapType(m.Return)
				for i := range m.Params {
					m.Params[i].Type = tr.mapType(m.Params[i].Type)
				}
			}
		case *ir.VarDecl:
			v.Type = tr.mapType(v.Type)
		}
	}
}

// rewriteBodies walks every executable body with a scope stack, rewriting
// expressions and statement-level declarations.
func (tr *translator) rewriteBodies() {
	for _, d := range tr.prog.Decls {
		switch v := d.(type) {
		case *ir.FuncDecl:
			if v.Body == nil {
				continue
			}

			tr.env.PushScope()
			for _, p := range v.Params {
				tr.env.DefineVar(p.Name, p.Type)
			}
			tr.rewriteBlock(v.Body)
			tr.env.PopScope()
		case *ir.TypeDecl:
			tr.class = v
			for _, m := range v.Methods {
				if m.Body == nil {
					continue
				}

				tr.env.PushScope()
				tr.env.DefineVar("this", ir.Named(v.Name))
				for _, p := range m.Params {
					tr.env.DefineVar(p.Name, p.Type)
				}
				tr.rewriteBlock(m.Body)
				tr.rewriteExprs(m.BaseArgs)
				tr.env.PopScope()
			}
			tr.class = nil
		case *ir.VarDecl:
			v.Init = tr.rewriteExpr(v.Init)
			tr.rewriteExprs(v.CtorArgs)
		}
	}

	for _, m := range tr.prog.Macros {
		m.Body = tr.rewriteExpr(m.Body)
	}
}

func (tr *translator) rewriteBlock(b *ir.Block) {
	if b == nil {
		return
	}

	tr.env.PushScope()
	for _, s := range b.Stmts {
		tr.rewriteStmt(s)
	}
	tr.env.PopScope()
}

func (tr *translator) rewriteStmt(s ir.Stmt) {
	switch v := s.(type) {
	case *ir.VarDecl:
		v.Type = tr.mapType(v.Type)
		v.Init = tr.rewriteExpr(v.Init)
		tr.rewriteExprs(v.CtorArgs)
		tr.env.DefineVar(v.Name, v.Type)
	case *ir.ExprStmt:
		v.X = tr.rewriteExpr(v.X)
	case *ir.Return:
		v.Value = tr.rewriteExpr(v.Value)
	case *ir.Block:
		tr.rewriteBlock(v)
	case *ir.If:
		v.Cond = tr.rewriteExpr(v.Cond)
		tr.rewriteBlock(v.Then)
		if v.Else != nil {
			tr.rewriteStmt(v.Else)
		}
	case *ir.For:
		tr.env.PushScope()
		if v.Init != nil {
			tr.rewriteStmt(v.Init)
		}
		v.Cond = tr.rewriteExpr(v.Cond)
		if v.Post != nil {
			tr.rewriteStmt(v.Post)
		}
		tr.rewriteBlock(v.Body)
		tr.env.PopScope()
	case *ir.While:
		v.Cond = tr.rewriteExpr(v.Cond)
		tr.rewriteBlock(v.Body)
	case *ir.DoWhile:
		tr.rewriteBlock(v.Body)
		v.Cond = tr.rewriteExpr(v.Cond)
	case *ir.Switch:
		v.Tag = tr.rewriteExpr(v.Tag)
		for i := range v.Cases {
			v.Cases[i].Value = tr.rewriteExpr(v.Cases[i].Value)
			for _, cs := range v.Cases[i].Body {
				tr.rewriteStmt(cs)
			}
		}
	}
}

// rewriteExpr rewrites one expression top-down.  Idiom recognition must see
// source shapes, so pattern nodes (binary comparisons, calls) are matched
// before their children are rewritten.
func (tr *translator) rewriteExpr(e ir.Expr) ir.Expr {
	switch v := e.(type) {
	case *ir.Literal:
		return tr.rewriteLiteral(v)
	case *ir.Identifier:
		return v
	case *ir.BinaryExpr:
		return tr.rewriteBinary(v)
	case *ir.UnaryExpr:
		v.X = tr.rewriteExpr(v.X)
		return v
	case *ir.Call:
		return tr.rewriteCall(v)
	case *ir.MemberAccess:
		v.X = tr.rewriteExpr(v.X)
		return v
	case *ir.Index:
		v.X = tr.rewriteExpr(v.X)
		v.I = tr.rewriteExpr(v.I)
		return v
	case *ir.Ternary:
		v.Cond = tr.rewriteExpr(v.Cond)
		v.Then = tr.rewriteExpr(v.Then)
		v.Else = tr.rewriteExpr(v.Else)
		return v
	case *ir.Cast:
		v.To = tr.mapType(v.To)
		v.X = tr.rewriteExpr(v.X)
		return v
	case *ir.New:
		v.Type = tr.mapType(v.Type)
		tr.rewriteExprs(v.Args)
		v.Count = tr.rewriteExpr(v.Count)
		return v
	case *ir.Delete:
		v.X = tr.rewriteExpr(v.X)
		return v
	case nil:
		return nil
	}

	report.ReportICE("rewriteExpr: unknown expression kind %T", e)
	return e
}

func (tr *translator) rewriteExprs(es []ir.Expr) {
	for i, e := range es {
		es[i] = tr.rewriteExpr(e)
	}
}

// rewriteLiteral adjusts literal spellings that differ between languages.
// The values of other literal kinds are carried verbatim; truncation and
// rounding behavior of the target runtime is not adjusted.
func (tr *translator) rewriteLiteral(l *ir.Literal) ir.Expr {
	switch l.Kind {
	case ir.LitBool:
		if tr.tgt == common.LangC {
			if l.Value == "true" {
				l.Value = "1"
			} else {
				l.Value = "0"
			}
		}
	case ir.LitNull:
		switch tr.tgt {
		case common.LangC:
			l.Value = "NULL"
		case common.LangJava:
			l.Value = "null"
		case common.LangCpp:
			l.Value = "nullptr"
		}
	}

	return l
}

// fixMain gives the entry point the procedural shape: an int return with a
// trailing `return 0;`.  A bare return from a void-shaped source main
// becomes `return 0;` as well.
func (tr *translator) fixMain() {
	for _, d := range tr.prog.Decls {
		fd, ok := d.(*ir.FuncDecl)
		if !ok || fd.Name != "main" || fd.Body == nil {
			continue
		}

		fd.Return = ir.Named("int")
		fd.Params = nil

		ir.RewriteStmts(fd.Body, func(s ir.Stmt) []ir.Stmt {
			if ret, ok := s.(*ir.Return); ok && ret.Value == nil {
				ret.Value = &ir.Literal{Kind: ir.LitInt, Value: "0"}
			}

			return []ir.Stmt{s}
		})

		if n := len(fd.Body.Stmts); n == 0 {
			fd.Body.Stmts = append(fd.Body.Stmts, &ir.Return{Value: &ir.Literal{Kind: ir.LitInt, Value: "0"}})
		} else if _, ok := fd.Body.Stmts[n-1].(*ir.Return); !ok {
			fd.Body.Stmts = append(fd.Body.Stmts, &ir.Return{Value: &ir.Literal{Kind: ir.LitInt, Value: "0"}})
		}
	}
}
