package ir

import "polyc/report"

// RewriteExpr rewrites an expression tree bottom-up: children are rewritten
// first, then f is applied to the node itself.  f must return a non-nil
// expression.  The switch below is exhaustive over the expression kinds; an
// unknown kind is an internal error.
func RewriteExpr(e Expr, f func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}

	switch v := e.(type) {
	case *Literal, *Identifier:
		// leaves
	case *BinaryExpr:
		v.L = RewriteExpr(v.L, f)
		v.R = RewriteExpr(v.R, f)
	case *UnaryExpr:
		v.X = RewriteExpr(v.X, f)
	case *Call:
		v.Fun = RewriteExpr(v.Fun, f)
		rewriteExprs(v.Args, f)
	case *MemberAccess:
		v.X = RewriteExpr(v.X, f)
	case *Index:
		v.X = RewriteExpr(v.X, f)
		v.I = RewriteExpr(v.I, f)
	case *Ternary:
		v.Cond = RewriteExpr(v.Cond, f)
		v.Then = RewriteExpr(v.Then, f)
		v.Else = RewriteExpr(v.Else, f)
	case *Cast:
		v.X = RewriteExpr(v.X, f)
	case *New:
		rewriteExprs(v.Args, f)
		v.Count = RewriteExpr(v.Count, f)
	case *Delete:
		v.X = RewriteExpr(v.X, f)
	default:
		report.ReportICE("RewriteExpr: unknown expression kind %T", e)
	}

	return f(e)
}

func rewriteExprs(es []Expr, f func(Expr) Expr) {
	for i, e := range es {
		es[i] = RewriteExpr(e, f)
	}
}

// RewriteStmtExprs applies an expression rewriter to every expression inside
// a statement, recursing into nested blocks.
func RewriteStmtExprs(s Stmt, f func(Expr) Expr) {
	if s == nil {
		return
	}

	switch v := s.(type) {
	case *Block:
		RewriteBlockExprs(v, f)
	case *If:
		v.Cond = RewriteExpr(v.Cond, f)
		RewriteBlockExprs(v.Then, f)
		RewriteStmtExprs(v.Else, f)
	case *For:
		RewriteStmtExprs(v.Init, f)
		v.Cond = RewriteExpr(v.Cond, f)
		RewriteStmtExprs(v.Post, f)
		RewriteBlockExprs(v.Body, f)
	case *While:
		v.Cond = RewriteExpr(v.Cond, f)
		RewriteBlockExprs(v.Body, f)
	case *DoWhile:
		RewriteBlockExprs(v.Body, f)
		v.Cond = RewriteExpr(v.Cond, f)
	case *Switch:
		v.Tag = RewriteExpr(v.Tag, f)
		for i := range v.Cases {
			v.Cases[i].Value = RewriteExpr(v.Cases[i].Value, f)
			for _, cs := range v.Cases[i].Body {
				RewriteStmtExprs(cs, f)
			}
		}
	case *Return:
		v.Value = RewriteExpr(v.Value, f)
	case *ExprStmt:
		v.X = RewriteExpr(v.X, f)
	case *VarDecl:
		v.Init = RewriteExpr(v.Init, f)
		rewriteExprs(v.CtorArgs, f)
	case *Break, *Continue, *Verbatim:
		// no expressions
	default:
		report.ReportICE("RewriteStmtExprs: unknown statement kind %T", s)
	}
}

// RewriteBlockExprs applies an expression rewriter to every expression in a
// block.
func RewriteBlockExprs(b *Block, f func(Expr) Expr) {
	if b == nil {
		return
	}

	for _, s := range b.Stmts {
		RewriteStmtExprs(s, f)
	}
}

// -----------------------------------------------------------------------------

// RewriteStmts rewrites the statement lists of a block bottom-up.  f maps
// each statement to its replacement list, letting a pass expand one statement
// into several (or drop one by returning an empty list).  Nested blocks are
// rewritten before their enclosing statement is offered to f.
func RewriteStmts(b *Block, f func(Stmt) []Stmt) {
	if b == nil {
		return
	}

	var out []Stmt
	for _, s := range b.Stmts {
		rewriteInnerStmts(s, f)
		out = append(out, f(s)...)
	}

	b.Stmts = out
}

func rewriteInnerStmts(s Stmt, f func(Stmt) []Stmt) {
	switch v := s.(type) {
	case *Block:
		RewriteStmts(v, f)
	case *If:
		RewriteStmts(v.Then, f)
		rewriteInnerStmts(v.Else, f)
	case *For:
		RewriteStmts(v.Body, f)
	case *While:
		RewriteStmts(v.Body, f)
	case *DoWhile:
		RewriteStmts(v.Body, f)
	case *Switch:
		for i := range v.Cases {
			var out []Stmt
			for _, cs := range v.Cases[i].Body {
				rewriteInnerStmts(cs, f)
				out = append(out, f(cs)...)
			}
			v.Cases[i].Body = out
		}
	case nil, *Break, *Continue, *Return, *ExprStmt, *VarDecl, *Verbatim:
		// no nested statement lists
	default:
		report.ReportICE("RewriteStmts: unknown statement kind %T", s)
	}
}

// -----------------------------------------------------------------------------

// VisitExprs visits every expression in the program read-only.  Emitters use
// it to scan for features (print idioms, string functions) that determine the
// output preamble.
func VisitExprs(prog *Program, visit func(Expr)) {
	id := func(e Expr) Expr {
		visit(e)
		return e
	}

	for _, d := range prog.Decls {
		switch v := d.(type) {
		case *FuncDecl:
			RewriteBlockExprs(v.Body, id)
		case *TypeDecl:
			for _, m := range v.Methods {
				RewriteBlockExprs(m.Body, id)
				rewriteExprs(m.BaseArgs, id)
			}
		case *VarDecl:
			v.Init = RewriteExpr(v.Init, id)
			rewriteExprs(v.CtorArgs, id)
		case *Verbatim:
		default:
			report.ReportICE("VisitExprs: unknown declaration kind %T", d)
		}
	}

	for _, m := range prog.Macros {
		m.Body = RewriteExpr(m.Body, id)
	}
}
