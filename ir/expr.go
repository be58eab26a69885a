package ir

// LitKind classifies a literal.
type LitKind int

// Enumeration of literal kinds.
const (
	LitInt LitKind = iota
	LitFloat
	LitStr
	LitChar
	LitBool
	LitNull
)

// Literal is a literal constant.  The value is kept in source spelling; the
// translator rewrites spellings that differ between languages (`true`/`1`,
// `NULL`/`null`/`nullptr`).
type Literal struct {
	Kind  LitKind
	Value string
}

// Identifier is a name reference.
type Identifier struct {
	Name string
}

// BinaryExpr is a binary operator application.  Assignment is a binary
// expression with the `=` (or compound) operator, as in the source languages.
type BinaryExpr struct {
	Op   string
	L, R Expr
}

// UnaryExpr is a unary operator application.  Postfix distinguishes `x++`
// from `++x`.
type UnaryExpr struct {
	Op      string
	X       Expr
	Postfix bool
}

// Call is a function or method call.  A method call has a *MemberAccess
// callee; a lowered virtual call has a `*`-dereference callee.
type Call struct {
	Fun  Expr
	Args []Expr
}

// Callee returns the called name when the callee is a plain identifier, or ""
// otherwise.
func (c *Call) Callee() string {
	if id, ok := c.Fun.(*Identifier); ok {
		return id.Name
	}

	return ""
}

// MemberAccess is a field or method selection.  Arrow selects through a
// pointer.
type MemberAccess struct {
	X      Expr
	Member string
	Arrow  bool
}

// Index is an array subscript.
type Index struct {
	X Expr
	I Expr
}

// Ternary is a conditional expression.
type Ternary struct {
	Cond, Then, Else Expr
}

// Cast is an explicit type conversion.  Truncation and rounding behavior of
// the target runtime is preserved syntactically only.
type Cast struct {
	To Type
	X  Expr
}

// New is an object or array allocation.  Count is non-nil for array
// allocation `new T[n]`.
type New struct {
	Type  Type
	Args  []Expr
	Count Expr
}

// Delete is an object or array deallocation.
type Delete struct {
	X     Expr
	Array bool
}

func (e *Literal) exprNode()      {}
func (e *Identifier) exprNode()   {}
func (e *BinaryExpr) exprNode()   {}
func (e *UnaryExpr) exprNode()    {}
func (e *Call) exprNode()         {}
func (e *MemberAccess) exprNode() {}
func (e *Index) exprNode()        {}
func (e *Ternary) exprNode()      {}
func (e *Cast) exprNode()         {}
func (e *New) exprNode()          {}
func (e *Delete) exprNode()       {}
