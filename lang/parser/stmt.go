package parser

import (
	"github.com/glipt-org/glipt/lang/ast"
	"github.com/glipt-org/glipt/lang/token"
)

// permission kinds accepted by the allow statement.
var permKinds = map[string]bool{
	"read":  true,
	"write": true,
	"net":   true,
	"exec":  true,
	"env":   true,
}

func (p *parser) parseStmt() ast.Stmt {
	pos := p.val.Pos

	switch p.tok {
	case token.LET:
		p.advance()
		name := p.expect(token.IDENT)
		p.expect(token.EQ)
		return &ast.Let{Pos: pos, Name: name.Str, Value: p.parseExpr()}

	case token.FN:
		// a named fn at statement level is a declaration; an anonymous one is
		// an expression statement (a lambda).
		if p.peekIsIdent() {
			p.advance()
			name := p.expect(token.IDENT)
			params := p.parseParams()
			body := p.parseBlock()
			return &ast.FnDecl{Pos: pos, Name: name.Str, Params: params, Body: body}
		}
		return &ast.ExprStmt{X: p.parseExpr()}

	case token.IF:
		return p.parseIf()

	case token.WHILE:
		p.advance()
		cond := p.parseExpr()
		return &ast.While{Pos: pos, Cond: cond, Body: p.parseBlock()}

	case token.FOR:
		p.advance()
		name := p.expect(token.IDENT)
		p.expect(token.IN)
		iterable := p.parseExpr()
		return &ast.For{Pos: pos, Var: name.Str, Iterable: iterable, Body: p.parseBlock()}

	case token.RETURN:
		p.advance()
		var val ast.Expr
		if p.startsExpr() {
			val = p.parseExpr()
		}
		return &ast.Return{Pos: pos, Value: val}

	case token.BREAK:
		p.advance()
		return &ast.Break{Pos: pos}

	case token.CONTINUE:
		p.advance()
		return &ast.Continue{Pos: pos}

	case token.ALLOW:
		p.advance()
		var kind string
		kpos := p.val.Pos
		switch p.tok {
		case token.EXEC:
			// exec is both a permission kind and a keyword
			kind = "exec"
			p.advance()
		case token.IDENT:
			kind = p.val.Str
			p.advance()
		default:
			p.errorf("expected permission kind, found %#v", p.tok)
		}
		if kind != "" && !permKinds[kind] {
			p.errorAt(kpos, "invalid permission kind "+kind)
		}
		target := p.expect(token.STRING)
		return &ast.Allow{Pos: pos, Kind: kind, Target: target.Str}

	case token.IMPORT:
		p.advance()
		path := p.expect(token.STRING)
		name := moduleName(path.Str)
		if p.got(token.AS) {
			name = p.expect(token.IDENT).Str
		}
		return &ast.Import{Pos: pos, Path: path.Str, Name: name}

	case token.ON:
		p.advance()
		if tok := p.tok; tok != token.FAILURE {
			p.errorf("expected failure after on, found %#v", tok)
		} else {
			p.advance()
		}
		return &ast.OnFailure{Pos: pos, Body: p.parseBlock()}

	case token.PARALLEL:
		p.advance()
		par := &ast.Parallel{Pos: pos}
		p.expect(token.LBRACE)
		for p.tok != token.RBRACE && p.tok != token.EOF {
			par.Cmds = append(par.Cmds, p.parseExpr())
		}
		p.expect(token.RBRACE)
		return par

	case token.LBRACE:
		return p.parseBlock()

	default:
		return &ast.ExprStmt{X: p.parseExpr()}
	}
}

func (p *parser) parseIf() ast.Stmt {
	pos := p.val.Pos
	p.advance() // if
	cond := p.parseExpr()
	then := p.parseBlock()
	stmt := &ast.If{Pos: pos, Cond: cond, Then: then}
	if p.got(token.ELSE) {
		if p.tok == token.IF {
			stmt.Else = p.parseIf()
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	return stmt
}

func (p *parser) parseBlock() *ast.Block {
	blk := &ast.Block{Pos: p.val.Pos}
	p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		before := p.val.Pos
		blk.Stmts = append(blk.Stmts, p.parseStmt())
		if p.val.Pos == before && p.tok != token.RBRACE && p.tok != token.EOF {
			p.errorf("unexpected %#v", p.tok)
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return blk
}

func (p *parser) parseParams() []string {
	p.expect(token.LPAREN)
	var params []string
	for p.tok != token.RPAREN && p.tok != token.EOF {
		params = append(params, p.expect(token.IDENT).Str)
		if !p.got(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

// peekIsIdent reports whether the token after the current one is an
// identifier, without consuming anything. It is only used to distinguish a
// named fn declaration from a lambda expression.
func (p *parser) peekIsIdent() bool {
	var val token.Value
	return p.scanner.PeekToken(&val) == token.IDENT
}

// startsExpr reports whether the current token may begin an expression; it
// decides if a return statement has a value.
func (p *parser) startsExpr() bool {
	switch p.tok {
	case token.IDENT, token.NUMBER, token.STRING, token.TRUE, token.FALSE,
		token.NIL, token.LPAREN, token.LBRACK, token.LBRACE, token.MINUS,
		token.NOT, token.FN, token.EXEC, token.MATCH:
		return true
	}
	return false
}
