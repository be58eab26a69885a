package front

import (
	"encoding/json"
	"fmt"

	"polyc/common"
	"polyc/ir"
	"polyc/report"
)

// The neutral IR interchange format: a language tag plus a kind-tagged node
// tree.  External front ends hand trees over in this format, and the debug
// dump writes it back out, so dumps feed straight back into the pipeline.

type jsonProgram struct {
	Language string      `json:"language"`
	Name     string      `json:"name,omitempty"`
	Decls    []*jsonNode `json:"decls"`
}

type jsonType struct {
	Name string      `json:"name"`
	Ptr  bool        `json:"ptr,omitempty"`
	Dims []*jsonNode `json:"dims,omitempty"`
}

type jsonParam struct {
	Name string    `json:"name"`
	Type *jsonType `json:"type"`
}

type jsonMethod struct {
	Name       string       `json:"name"`
	Return     *jsonType    `json:"return,omitempty"`
	Params     []*jsonParam `json:"params,omitempty"`
	Body       *jsonNode    `json:"body,omitempty"`
	Virtual    bool         `json:"virtual,omitempty"`
	Ctor       bool         `json:"ctor,omitempty"`
	Dtor       bool         `json:"dtor,omitempty"`
	BaseArgs   []*jsonNode  `json:"base-args,omitempty"`
	Access     string       `json:"access,omitempty"`
}

type jsonCase struct {
	Value *jsonNode   `json:"value,omitempty"`
	Body  []*jsonNode `json:"body,omitempty"`
}

// jsonNode is the kind-tagged union over declarations, statements, and
// expressions.  Only the fields its kind names are populated.
type jsonNode struct {
	Kind string `json:"kind"`

	Name       string        `json:"name,omitempty"`
	Value      string        `json:"value,omitempty"`
	Lit        string        `json:"lit,omitempty"`
	Op         string        `json:"op,omitempty"`
	Postfix    bool          `json:"postfix,omitempty"`
	Member     string        `json:"member,omitempty"`
	Arrow      bool          `json:"arrow,omitempty"`
	Array      bool          `json:"array,omitempty"`
	Marker     string        `json:"marker,omitempty"`
	Text       string        `json:"text,omitempty"`
	Type       *jsonType     `json:"type,omitempty"`
	Return     *jsonType     `json:"return,omitempty"`
	Params     []*jsonParam  `json:"params,omitempty"`
	Fields     []*jsonParam  `json:"fields,omitempty"`
	Bases      []string      `json:"bases,omitempty"`
	TypeParams []string      `json:"type-params,omitempty"`
	Class      bool          `json:"class,omitempty"`
	Methods    []*jsonMethod `json:"methods,omitempty"`

	Fun      *jsonNode   `json:"fun,omitempty"`
	X        *jsonNode   `json:"x,omitempty"`
	Index    *jsonNode   `json:"i,omitempty"`
	Left     *jsonNode   `json:"l,omitempty"`
	Right    *jsonNode   `json:"r,omitempty"`
	Cond     *jsonNode   `json:"cond,omitempty"`
	Then     *jsonNode   `json:"then,omitempty"`
	Else     *jsonNode   `json:"else,omitempty"`
	Init     *jsonNode   `json:"init,omitempty"`
	Post     *jsonNode   `json:"post,omitempty"`
	Body     *jsonNode   `json:"body,omitempty"`
	Count    *jsonNode   `json:"count,omitempty"`
	Args     []*jsonNode `json:"args,omitempty"`
	CtorArgs []*jsonNode `json:"ctor-args,omitempty"`
	Stmts    []*jsonNode `json:"stmts,omitempty"`
	Cases    []*jsonCase `json:"cases,omitempty"`
	Tag      *jsonNode   `json:"tag,omitempty"`
}

var litNames = map[ir.LitKind]string{
	ir.LitInt:   "int",
	ir.LitFloat: "float",
	ir.LitStr:   "str",
	ir.LitChar:  "char",
	ir.LitBool:  "bool",
	ir.LitNull:  "null",
}

var litKinds = map[string]ir.LitKind{
	"int":   ir.LitInt,
	"float": ir.LitFloat,
	"str":   ir.LitStr,
	"char":  ir.LitChar,
	"bool":  ir.LitBool,
	"null":  ir.LitNull,
}

// -----------------------------------------------------------------------------

// EncodeProgram serializes a tree into the interchange format.
func EncodeProgram(lang common.Lang, prog *ir.Program) ([]byte, error) {
	jp := &jsonProgram{Language: lang.String(), Name: prog.Name}
	for _, d := range prog.Decls {
		jp.Decls = append(jp.Decls, encodeDecl(d))
	}

	return json.MarshalIndent(jp, "", "  ")
}

// DecodeProgram deserializes the interchange format into a tree.
func DecodeProgram(data []byte) (common.Lang, *ir.Program, error) {
	jp := &jsonProgram{}
	if err := json.Unmarshal(data, jp); err != nil {
		return common.LangUnknown, nil, err
	}

	lang := common.ParseLang(jp.Language)
	if lang == common.LangUnknown {
		return common.LangUnknown, nil, fmt.Errorf("unknown source language `%s`", jp.Language)
	}

	prog := &ir.Program{Name: jp.Name}
	for _, jn := range jp.Decls {
		d, err := decodeDecl(jn)
		if err != nil {
			return common.LangUnknown, nil, err
		}

		prog.Decls = append(prog.Decls, d)
	}

	return lang, prog, nil
}

// -----------------------------------------------------------------------------

func encodeType(t ir.Type) *jsonType {
	jt := &jsonType{Name: t.Name, Ptr: t.Ptr}
	for _, d := range t.Dims {
		jt.Dims = append(jt.Dims, encodeExpr(d))
	}

	return jt
}

func decodeType(jt *jsonType) (ir.Type, error) {
	if jt == nil {
		return ir.Void(), nil
	}

	t := ir.Type{Name: jt.Name, Ptr: jt.Ptr}
	for _, jd := range jt.Dims {
		// a null entry is an unsized dimension
		if jd == nil {
			t.Dims = append(t.Dims, nil)
			continue
		}

		d, err := decodeExpr(jd)
		if err != nil {
			return ir.Type{}, err
		}
		t.Dims = append(t.Dims, d)
	}

	return t, nil
}

func encodeParams(params []ir.Param) []*jsonParam {
	var out []*jsonParam
	for _, p := range params {
		out = append(out, &jsonParam{Name: p.Name, Type: encodeType(p.Type)})
	}

	return out
}

func decodeParams(jps []*jsonParam) ([]ir.Param, error) {
	var out []ir.Param
	for _, jp := range jps {
		t, err := decodeType(jp.Type)
		if err != nil {
			return nil, err
		}

		out = append(out, ir.Param{Name: jp.Name, Type: t})
	}

	return out, nil
}

// -----------------------------------------------------------------------------

func encodeDecl(d ir.Decl) *jsonNode {
	switch v := d.(type) {
	case *ir.FuncDecl:
		return &jsonNode{
			Kind:       "func",
			Name:       v.Name,
			Return:     encodeType(v.Return),
			Params:     encodeParams(v.Params),
			TypeParams: v.TypeParams,
			Body:       encodeBlock(v.Body),
		}
	case *ir.TypeDecl:
		jn := &jsonNode{
			Kind:       "record",
			Name:       v.Name,
			Bases:      v.Bases,
			TypeParams: v.TypeParams,
			Class:      v.IsClass,
		}

		for _, f := range v.Fields {
			jn.Fields = append(jn.Fields, &jsonParam{Name: f.Name, Type: encodeType(f.Type)})
		}

		for _, m := range v.Methods {
			jm := &jsonMethod{
				Name:    m.Name,
				Return:  encodeType(m.Return),
				Params:  encodeParams(m.Params),
				Body:    encodeBlock(m.Body),
				Virtual: m.Virtual,
				Ctor:    m.Ctor,
				Dtor:    m.Dtor,
				Access:  m.Access,
			}
			for _, a := range m.BaseArgs {
				jm.BaseArgs = append(jm.BaseArgs, encodeExpr(a))
			}

			jn.Methods = append(jn.Methods, jm)
		}

		return jn
	case *ir.VarDecl:
		return encodeVarDecl(v)
	case *ir.Verbatim:
		return &jsonNode{Kind: "verbatim", Marker: v.Marker, Text: v.Text}
	}

	report.ReportICE("encodeDecl: unknown declaration kind %T", d)
	return nil
}

func decodeDecl(jn *jsonNode) (ir.Decl, error) {
	switch jn.Kind {
	case "func":
		ret, err := decodeType(jn.Return)
		if err != nil {
			return nil, err
		}

		params, err := decodeParams(jn.Params)
		if err != nil {
			return nil, err
		}

		body, err := decodeBlock(jn.Body)
		if err != nil {
			return nil, err
		}

		return &ir.FuncDecl{
			Name:       jn.Name,
			Return:     ret,
			Params:     params,
			TypeParams: jn.TypeParams,
			Body:       body,
		}, nil
	case "record":
		td := &ir.TypeDecl{
			Name:       jn.Name,
			Bases:      jn.Bases,
			TypeParams: jn.TypeParams,
			IsClass:    jn.Class,
		}

		for _, jf := range jn.Fields {
			t, err := decodeType(jf.Type)
			if err != nil {
				return nil, err
			}
			td.Fields = append(td.Fields, ir.Field{Name: jf.Name, Type: t})
		}

		for _, jm := range jn.Methods {
			ret, err := decodeType(jm.Return)
			if err != nil {
				return nil, err
			}

			params, err := decodeParams(jm.Params)
			if err != nil {
				return nil, err
			}

			body, err := decodeBlock(jm.Body)
			if err != nil {
				return nil, err
			}

			md := &ir.MethodDecl{
				Owner:   td,
				Name:    jm.Name,
				Return:  ret,
				Params:  params,
				Body:    body,
				Virtual: jm.Virtual,
				Ctor:    jm.Ctor,
				Dtor:    jm.Dtor,
				Access:  jm.Access,
			}

			for _, ja := range jm.BaseArgs {
				a, err := decodeExpr(ja)
				if err != nil {
					return nil, err
				}
				md.BaseArgs = append(md.BaseArgs, a)
			}

			td.Methods = append(td.Methods, md)
		}

		return td, nil
	case "var":
		return decodeVarDecl(jn)
	case "verbatim":
		return &ir.Verbatim{Marker: jn.Marker, Text: jn.Text}, nil
	}

	return nil, fmt.Errorf("unknown declaration kind `%s`", jn.Kind)
}

func encodeVarDecl(v *ir.VarDecl) *jsonNode {
	jn := &jsonNode{Kind: "var", Name: v.Name, Type: encodeType(v.Type), Init: encodeExpr(v.Init)}
	for _, a := range v.CtorArgs {
		jn.CtorArgs = append(jn.CtorArgs, encodeExpr(a))
	}

	return jn
}

func decodeVarDecl(jn *jsonNode) (*ir.VarDecl, error) {
	t, err := decodeType(jn.Type)
	if err != nil {
		return nil, err
	}

	init, err := decodeExpr(jn.Init)
	if err != nil {
		return nil, err
	}

	vd := &ir.VarDecl{Name: jn.Name, Type: t, Init: init}
	for _, ja := range jn.CtorArgs {
		a, err := decodeExpr(ja)
		if err != nil {
			return nil, err
		}
		vd.CtorArgs = append(vd.CtorArgs, a)
	}

	return vd, nil
}

// -----------------------------------------------------------------------------

func encodeBlock(b *ir.Block) *jsonNode {
	if b == nil {
		return nil
	}

	jn := &jsonNode{Kind: "block"}
	for _, s := range b.Stmts {
		jn.Stmts = append(jn.Stmts, encodeStmt(s))
	}

	return jn
}

func decodeBlock(jn *jsonNode) (*ir.Block, error) {
	if jn == nil {
		return nil, nil
	}

	b := &ir.Block{}
	for _, js := range jn.Stmts {
		s, err := decodeStmt(js)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}

	return b, nil
}

func encodeStmt(s ir.Stmt) *jsonNode {
	switch v := s.(type) {
	case *ir.Block:
		return encodeBlock(v)
	case *ir.If:
		return &jsonNode{Kind: "if", Cond: encodeExpr(v.Cond), Then: encodeBlock(v.Then), Else: encodeStmt(v.Else)}
	case *ir.For:
		return &jsonNode{
			Kind: "for",
			Init: encodeStmt(v.Init),
			Cond: encodeExpr(v.Cond),
			Post: encodeStmt(v.Post),
			Body: encodeBlock(v.Body),
		}
	case *ir.While:
		return &jsonNode{Kind: "while", Cond: encodeExpr(v.Cond), Body: encodeBlock(v.Body)}
	case *ir.DoWhile:
		return &jsonNode{Kind: "do-while", Cond: encodeExpr(v.Cond), Body: encodeBlock(v.Body)}
	case *ir.Switch:
		jn := &jsonNode{Kind: "switch", Tag: encodeExpr(v.Tag)}
		for _, c := range v.Cases {
			jc := &jsonCase{Value: encodeExpr(c.Value)}
			for _, cs := range c.Body {
				jc.Body = append(jc.Body, encodeStmt(cs))
			}
			jn.Cases = append(jn.Cases, jc)
		}
		return jn
	case *ir.Break:
		return &jsonNode{Kind: "break"}
	case *ir.Continue:
		return &jsonNode{Kind: "continue"}
	case *ir.Return:
		return &jsonNode{Kind: "return", X: encodeExpr(v.Value)}
	case *ir.ExprStmt:
		return &jsonNode{Kind: "expr", X: encodeExpr(v.X)}
	case *ir.VarDecl:
		return encodeVarDecl(v)
	case *ir.Verbatim:
		return &jsonNode{Kind: "verbatim", Marker: v.Marker, Text: v.Text}
	case nil:
		return nil
	}

	report.ReportICE("encodeStmt: unknown statement kind %T", s)
	return nil
}

func decodeStmt(jn *jsonNode) (ir.Stmt, error) {
	if jn == nil {
		return nil, nil
	}

	switch jn.Kind {
	case "block":
		return decodeBlock(jn)
	case "if":
		cond, err := decodeExpr(jn.Cond)
		if err != nil {
			return nil, err
		}

		then, err := decodeBlock(jn.Then)
		if err != nil {
			return nil, err
		}

		alt, err := decodeStmt(jn.Else)
		if err != nil {
			return nil, err
		}

		return &ir.If{Cond: cond, Then: then, Else: alt}, nil
	case "for":
		init, err := decodeStmt(jn.Init)
		if err != nil {
			return nil, err
		}

		cond, err := decodeExpr(jn.Cond)
		if err != nil {
			return nil, err
		}

		post, err := decodeStmt(jn.Post)
		if err != nil {
			return nil, err
		}

		body, err := decodeBlock(jn.Body)
		if err != nil {
			return nil, err
		}

		return &ir.For{Init: init, Cond: cond, Post: post, Body: body}, nil
	case "while":
		cond, err := decodeExpr(jn.Cond)
		if err != nil {
			return nil, err
		}

		body, err := decodeBlock(jn.Body)
		if err != nil {
			return nil, err
		}

		return &ir.While{Cond: cond, Body: body}, nil
	case "do-while":
		cond, err := decodeExpr(jn.Cond)
		if err != nil {
			return nil, err
		}

		body, err := decodeBlock(jn.Body)
		if err != nil {
			return nil, err
		}

		return &ir.DoWhile{Cond: cond, Body: body}, nil
	case "switch":
		tag, err := decodeExpr(jn.Tag)
		if err != nil {
			return nil, err
		}

		sw := &ir.Switch{Tag: tag}
		for _, jc := range jn.Cases {
			val, err := decodeExpr(jc.Value)
			if err != nil {
				return nil, err
			}

			c := ir.SwitchCase{Value: val}
			for _, js := range jc.Body {
				cs, err := decodeStmt(js)
				if err != nil {
					return nil, err
				}
				c.Body = append(c.Body, cs)
			}

			sw.Cases = append(sw.Cases, c)
		}

		return sw, nil
	case "break":
		return &ir.Break{}, nil
	case "continue":
		return &ir.Continue{}, nil
	case "return":
		val, err := decodeExpr(jn.X)
		if err != nil {
			return nil, err
		}

		return &ir.Return{Value: val}, nil
	case "expr":
		x, err := decodeExpr(jn.X)
		if err != nil {
			return nil, err
		}

		return &ir.ExprStmt{X: x}, nil
	case "var":
		return decodeVarDecl(jn)
	case "verbatim":
		return &ir.Verbatim{Marker: jn.Marker, Text: jn.Text}, nil
	}

	return nil, fmt.Errorf("unknown statement kind `%s`", jn.Kind)
}

// -----------------------------------------------------------------------------

func encodeExprs(es []ir.Expr) []*jsonNode {
	var out []*jsonNode
	for _, e := range es {
		out = append(out, encodeExpr(e))
	}

	return out
}

func decodeExprs(jns []*jsonNode) ([]ir.Expr, error) {
	var out []ir.Expr
	for _, jn := range jns {
		e, err := decodeExpr(jn)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, nil
}

func encodeExpr(e ir.Expr) *jsonNode {
	switch v := e.(type) {
	case nil:
		return nil
	case *ir.Literal:
		return &jsonNode{Kind: "literal", Lit: litNames[v.Kind], Value: v.Value}
	case *ir.Identifier:
		return &jsonNode{Kind: "ident", Name: v.Name}
	case *ir.BinaryExpr:
		return &jsonNode{Kind: "binary", Op: v.Op, Left: encodeExpr(v.L), Right: encodeExpr(v.R)}
	case *ir.UnaryExpr:
		return &jsonNode{Kind: "unary", Op: v.Op, X: encodeExpr(v.X), Postfix: v.Postfix}
	case *ir.Call:
		return &jsonNode{Kind: "call", Fun: encodeExpr(v.Fun), Args: encodeExprs(v.Args)}
	case *ir.MemberAccess:
		return &jsonNode{Kind: "member", X: encodeExpr(v.X), Member: v.Member, Arrow: v.Arrow}
	case *ir.Index:
		return &jsonNode{Kind: "index", X: encodeExpr(v.X), Index: encodeExpr(v.I)}
	case *ir.Ternary:
		return &jsonNode{Kind: "ternary", Cond: encodeExpr(v.Cond), Then: encodeExpr(v.Then), Else: encodeExpr(v.Else)}
	case *ir.Cast:
		return &jsonNode{Kind: "cast", Type: encodeType(v.To), X: encodeExpr(v.X)}
	case *ir.New:
		return &jsonNode{Kind: "new", Type: encodeType(v.Type), Args: encodeExprs(v.Args), Count: encodeExpr(v.Count)}
	case *ir.Delete:
		return &jsonNode{Kind: "delete", X: encodeExpr(v.X), Array: v.Array}
	}

	report.ReportICE("encodeExpr: unknown expression kind %T", e)
	return nil
}

func decodeExpr(jn *jsonNode) (ir.Expr, error) {
	if jn == nil {
		return nil, nil
	}

	switch jn.Kind {
	case "literal":
		kind, ok := litKinds[jn.Lit]
		if !ok {
			return nil, fmt.Errorf("unknown literal kind `%s`", jn.Lit)
		}

		return &ir.Literal{Kind: kind, Value: jn.Value}, nil
	case "ident":
		return &ir.Identifier{Name: jn.Name}, nil
	case "binary":
		l, err := decodeExpr(jn.Left)
		if err != nil {
			return nil, err
		}

		r, err := decodeExpr(jn.Right)
		if err != nil {
			return nil, err
		}

		return &ir.BinaryExpr{Op: jn.Op, L: l, R: r}, nil
	case "unary":
		x, err := decodeExpr(jn.X)
		if err != nil {
			return nil, err
		}

		return &ir.UnaryExpr{Op: jn.Op, X: x, Postfix: jn.Postfix}, nil
	case "call":
		fun, err := decodeExpr(jn.Fun)
		if err != nil {
			return nil, err
		}

		args, err := decodeExprs(jn.Args)
		if err != nil {
			return nil, err
		}

		return &ir.Call{Fun: fun, Args: args}, nil
	case "member":
		x, err := decodeExpr(jn.X)
		if err != nil {
			return nil, err
		}

		return &ir.MemberAccess{X: x, Member: jn.Member, Arrow: jn.Arrow}, nil
	case "index":
		x, err := decodeExpr(jn.X)
		if err != nil {
			return nil, err
		}

		i, err := decodeExpr(jn.Index)
		if err != nil {
			return nil, err
		}

		return &ir.Index{X: x, I: i}, nil
	case "ternary":
		cond, err := decodeExpr(jn.Cond)
		if err != nil {
			return nil, err
		}

		then, err := decodeExpr(jn.Then)
		if err != nil {
			return nil, err
		}

		alt, err := decodeExpr(jn.Else)
		if err != nil {
			return nil, err
		}

		return &ir.Ternary{Cond: cond, Then: then, Else: alt}, nil
	case "cast":
		to, err := decodeType(jn.Type)
		if err != nil {
			return nil, err
		}

		x, err := decodeExpr(jn.X)
		if err != nil {
			return nil, err
		}

		return &ir.Cast{To: to, X: x}, nil
	case "new":
		t, err := decodeType(jn.Type)
		if err != nil {
			return nil, err
		}

		args, err := decodeExprs(jn.Args)
		if err != nil {
			return nil, err
		}

		count, err := decodeExpr(jn.Count)
		if err != nil {
			return nil, err
		}

		return &ir.New{Type: t, Args: args, Count: count}, nil
	case "delete":
		x, err := decodeExpr(jn.X)
		if err != nil {
			return nil, err
		}

		return &ir.Delete{X: x, Array: jn.Array}, nil
	}

	return nil, fmt.Errorf("unknown expression kind `%s`", jn.Kind)
}
