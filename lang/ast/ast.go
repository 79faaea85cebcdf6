// Package ast declares the abstract syntax tree of the Glipt language. The
// parser produces these nodes and the compiler consumes them; every node
// carries the line and column of the token that started it.
package ast

import "github.com/glipt-org/glipt/lang/token"

// Node is the interface implemented by all AST nodes.
type Node interface {
	// Position returns the source position of the node's first token.
	Position() token.Position
}

// Expr is implemented by all expression nodes.
type Expr interface {
	Node
	expr()
}

// Stmt is implemented by all statement nodes.
type Stmt interface {
	Node
	stmt()
}

// Program is the root node of a parsed script: the ordered top-level
// statements of one source file.
type Program struct {
	// Name is the filename, which may be empty if the program was not read
	// from a file.
	Name  string
	Stmts []Stmt
}

func (n *Program) Position() token.Position {
	if len(n.Stmts) > 0 {
		return n.Stmts[0].Position()
	}
	return token.Position{}
}
