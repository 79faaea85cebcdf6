package ast

import "github.com/glipt-org/glipt/lang/token"

type (
	// LitKind identifies the kind of a literal expression.
	LitKind int8

	// Literal is a number, string, boolean or nil literal.
	Literal struct {
		Pos  token.Position
		Kind LitKind
		Num  float64 // if Kind == LitNumber
		Str  string  // if Kind == LitString
		Bool bool    // if Kind == LitBool
	}

	// Name is a reference to a variable.
	Name struct {
		Pos  token.Position
		Name string
	}

	// Unary is a unary operator expression: -x, not x.
	Unary struct {
		Pos token.Position
		Op  token.Token
		X   Expr
	}

	// Binary is a binary operator expression, including the short-circuiting
	// 'and' and 'or'.
	Binary struct {
		Pos  token.Position
		Op   token.Token
		X, Y Expr
	}

	// Assign assigns to a variable: x = v. At script top level this defines
	// or updates a global; in a function it declares or mutates a local, or
	// writes through an upvalue. Used as a subexpression in a function, an
	// assignment to a name that is neither a local nor an upvalue writes a
	// global.
	Assign struct {
		Pos   token.Position
		Name  string
		Value Expr
	}

	// CompoundAssign is x op= v for op in + - * /.
	CompoundAssign struct {
		Pos    token.Position
		Op     token.Token // PLUS, MINUS, STAR or SLASH
		Target Expr        // *Name, *Index or *Dot
		Value  Expr
	}

	// Call is a function call: fn(args...).
	Call struct {
		Pos  token.Position
		Fn   Expr
		Args []Expr
	}

	// Index is x[i].
	Index struct {
		Pos    token.Position
		X, Key Expr
	}

	// IndexSet is x[i] = v.
	IndexSet struct {
		Pos    token.Position
		X, Key Expr
		Value  Expr
	}

	// Dot is x.name.
	Dot struct {
		Pos  token.Position
		X    Expr
		Name string
	}

	// DotSet is x.name = v.
	DotSet struct {
		Pos   token.Position
		X     Expr
		Name  string
		Value Expr
	}

	// List is a list literal: [a, b, c].
	List struct {
		Pos   token.Position
		Elems []Expr
	}

	// MapEntry is one key: value pair of a map literal. Keys are
	// compile-time strings.
	MapEntry struct {
		Pos   token.Position
		Key   string
		Value Expr
	}

	// Map is a map literal: {a: 1, "b c": 2}.
	Map struct {
		Pos     token.Position
		Entries []MapEntry
	}

	// Lambda is a function literal: fn(params) { body }.
	Lambda struct {
		Pos    token.Position
		Params []string
		Body   *Block
	}

	// Pipe is x |> f, sugar for f(x).
	Pipe struct {
		Pos token.Position
		X   Expr
		Fn  Expr
	}

	// Range is lo..hi, an end-exclusive numeric range.
	Range struct {
		Pos    token.Position
		Lo, Hi Expr
	}

	// Exec is the exec expression: exec cmd.
	Exec struct {
		Pos token.Position
		Cmd Expr
	}

	// Match is a match expression: the subject is compared against each
	// arm's pattern in order, and the first equal arm's body is the result.
	Match struct {
		Pos     token.Position
		Subject Expr
		Arms    []MatchArm
	}

	// MatchArm is one arm of a match expression. A nil Pattern is the
	// wildcard arm. The body is either an Expr or a *Block.
	MatchArm struct {
		Pos     token.Position
		Pattern Expr // nil for the wildcard '_'
		Body    Node
	}
)

// Kinds of literals.
const (
	LitNumber LitKind = iota
	LitString
	LitBool
	LitNil
)

func (n *Literal) Position() token.Position        { return n.Pos }
func (n *Name) Position() token.Position           { return n.Pos }
func (n *Unary) Position() token.Position          { return n.Pos }
func (n *Binary) Position() token.Position         { return n.Pos }
func (n *Assign) Position() token.Position         { return n.Pos }
func (n *CompoundAssign) Position() token.Position { return n.Pos }
func (n *Call) Position() token.Position           { return n.Pos }
func (n *Index) Position() token.Position          { return n.Pos }
func (n *IndexSet) Position() token.Position       { return n.Pos }
func (n *Dot) Position() token.Position            { return n.Pos }
func (n *DotSet) Position() token.Position         { return n.Pos }
func (n *List) Position() token.Position           { return n.Pos }
func (n *Map) Position() token.Position            { return n.Pos }
func (n *Lambda) Position() token.Position         { return n.Pos }
func (n *Pipe) Position() token.Position           { return n.Pos }
func (n *Range) Position() token.Position          { return n.Pos }
func (n *Exec) Position() token.Position           { return n.Pos }
func (n *Match) Position() token.Position          { return n.Pos }

func (*Literal) expr()        {}
func (*Name) expr()           {}
func (*Unary) expr()          {}
func (*Binary) expr()         {}
func (*Assign) expr()         {}
func (*CompoundAssign) expr() {}
func (*Call) expr()           {}
func (*Index) expr()          {}
func (*IndexSet) expr()       {}
func (*Dot) expr()            {}
func (*DotSet) expr()         {}
func (*List) expr()           {}
func (*Map) expr()            {}
func (*Lambda) expr()         {}
func (*Pipe) expr()           {}
func (*Range) expr()          {}
func (*Exec) expr()           {}
func (*Match) expr()          {}
