package ir

// Block is a brace-delimited statement sequence.
type Block struct {
	Stmts []Stmt
}

// If is a conditional statement.  Else is either nil, a *Block, or another
// *If (an else-if chain).
type If struct {
	Cond Expr
	Then *Block
	Else Stmt
}

// For is a three-clause loop.  Init and Post may be nil; Cond may be nil for
// an infinite loop.
type For struct {
	Init Stmt
	Cond Expr
	Post Stmt
	Body *Block
}

// While is a pre-test loop.
type While struct {
	Cond Expr
	Body *Block
}

// DoWhile is a post-test loop.
type DoWhile struct {
	Body *Block
	Cond Expr
}

// Switch is a multi-way branch.
type Switch struct {
	Tag   Expr
	Cases []SwitchCase
}

// SwitchCase is one arm of a switch.  A nil Value marks the default arm.
type SwitchCase struct {
	Value Expr
	Body  []Stmt
}

// Break is a break statement.
type Break struct{}

// Continue is a continue statement.
type Continue struct{}

// Return is a return statement.  Value may be nil.
type Return struct {
	Value Expr
}

// ExprStmt is an expression evaluated for effect.
type ExprStmt struct {
	X Expr
}

// Verbatim carries an unsupported fragment: the original construct rendered
// in its source language, emitted unmodified inside a marker comment.  It is
// the escape hatch for recognized-but-not-lowerable shapes and appears both
// as a declaration and as a statement.
type Verbatim struct {
	// The marker describing why the fragment was not translated.
	Marker string

	// The original fragment text.
	Text string
}

func (b *Block) stmtNode()    {}
func (s *If) stmtNode()       {}
func (s *For) stmtNode()      {}
func (s *While) stmtNode()    {}
func (s *DoWhile) stmtNode()  {}
func (s *Switch) stmtNode()   {}
func (s *Break) stmtNode()    {}
func (s *Continue) stmtNode() {}
func (s *Return) stmtNode()   {}
func (s *ExprStmt) stmtNode() {}
func (vd *VarDecl) stmtNode() {}
func (v *Verbatim) stmtNode() {}
func (v *Verbatim) declNode() {}
