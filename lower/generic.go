package lower

import (
	"polyc/emit"
	"polyc/ir"
	"polyc/report"
)

// lowerGenerics converts single-type-parameter function templates into
// parameterized macros.  The macro keeps the template's name, so call sites
// need no rewriting at all.  Templates outside the supported shape are kept
// as verbatim fragments and flagged.
func (l *Lowerer) lowerGenerics() {
	var out []ir.Decl
	seen := make(map[string]bool)

	for _, d := range l.prog.Decls {
		fd, ok := d.(*ir.FuncDecl)
		if !ok || len(fd.TypeParams) == 0 {
			out = append(out, d)
			continue
		}

		if len(fd.TypeParams) > 1 {
			l.diags.Add(report.UnsupportedConstruct, fd.Name,
				"templates with %d type parameters cannot become a macro", len(fd.TypeParams))
			out = append(out, &ir.Verbatim{
				Marker: "UNSUPPORTED " + fd.Name,
				Text:   emit.RenderDecl(l.src, fd),
			})
			continue
		}

		body, ok := singleReturn(fd.Body)
		if !ok {
			l.diags.Add(report.UnsupportedConstruct, fd.Name,
				"template body is not a single return expression")
			out = append(out, &ir.Verbatim{
				Marker: "UNSUPPORTED " + fd.Name,
				Text:   emit.RenderDecl(l.src, fd),
			})
			continue
		}

		// One macro per template name, however many specializations the
		// front end handed over.
		if seen[fd.Name] {
			continue
		}
		seen[fd.Name] = true

		params := make([]string, len(fd.Params))
		for i, p := range fd.Params {
			params[i] = p.Name
		}

		l.prog.Macros = append(l.prog.Macros, &ir.MacroDef{
			Name:   fd.Name,
			Params: params,
			Body:   body,
		})
	}

	l.prog.Decls = out
}

// singleReturn matches the one body shape generic lowering accepts.
func singleReturn(b *ir.Block) (ir.Expr, bool) {
	if b == nil || len(b.Stmts) != 1 {
		return nil, false
	}

	ret, ok := b.Stmts[0].(*ir.Return)
	if !ok || ret.Value == nil {
		return nil, false
	}

	return ret.Value, true
}
