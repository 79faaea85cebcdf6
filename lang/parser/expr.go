package parser

import (
	"github.com/glipt-org/glipt/lang/ast"
	"github.com/glipt-org/glipt/lang/token"
)

// parseExpr parses a full expression, including assignments (assignments
// are expressions: they leave the assigned value).
func (p *parser) parseExpr() ast.Expr {
	x := p.parsePipe()

	switch p.tok {
	case token.EQ:
		pos := p.val.Pos
		p.advance()
		val := p.parseExpr()
		switch t := x.(type) {
		case *ast.Name:
			return &ast.Assign{Pos: t.Pos, Name: t.Name, Value: val}
		case *ast.Index:
			return &ast.IndexSet{Pos: t.Pos, X: t.X, Key: t.Key, Value: val}
		case *ast.Dot:
			return &ast.DotSet{Pos: t.Pos, X: t.X, Name: t.Name, Value: val}
		default:
			p.errorAt(pos, "invalid assignment target")
			return x
		}

	case token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ:
		op := p.tok - token.PLUS_EQ + token.PLUS
		pos := p.val.Pos
		p.advance()
		val := p.parseExpr()
		switch x.(type) {
		case *ast.Name, *ast.Index, *ast.Dot:
			return &ast.CompoundAssign{Pos: pos, Op: op, Target: x, Value: val}
		default:
			p.errorAt(pos, "invalid assignment target")
			return x
		}
	}
	return x
}

func (p *parser) parsePipe() ast.Expr {
	x := p.parseOr()
	for p.tok == token.PIPE {
		pos := p.val.Pos
		p.advance()
		x = &ast.Pipe{Pos: pos, X: x, Fn: p.parseOr()}
	}
	return x
}

func (p *parser) parseOr() ast.Expr {
	x := p.parseAnd()
	for p.tok == token.OR {
		pos := p.val.Pos
		p.advance()
		x = &ast.Binary{Pos: pos, Op: token.OR, X: x, Y: p.parseAnd()}
	}
	return x
}

func (p *parser) parseAnd() ast.Expr {
	x := p.parseEquality()
	for p.tok == token.AND {
		pos := p.val.Pos
		p.advance()
		x = &ast.Binary{Pos: pos, Op: token.AND, X: x, Y: p.parseEquality()}
	}
	return x
}

func (p *parser) parseEquality() ast.Expr {
	x := p.parseComparison()
	for p.tok == token.EQL || p.tok == token.NEQ {
		op, pos := p.tok, p.val.Pos
		p.advance()
		x = &ast.Binary{Pos: pos, Op: op, X: x, Y: p.parseComparison()}
	}
	return x
}

func (p *parser) parseComparison() ast.Expr {
	x := p.parseRange()
	for p.tok == token.LT || p.tok == token.LE || p.tok == token.GT || p.tok == token.GE {
		op, pos := p.tok, p.val.Pos
		p.advance()
		x = &ast.Binary{Pos: pos, Op: op, X: x, Y: p.parseRange()}
	}
	return x
}

func (p *parser) parseRange() ast.Expr {
	x := p.parseTerm()
	if p.tok == token.DOTDOT {
		pos := p.val.Pos
		p.advance()
		return &ast.Range{Pos: pos, Lo: x, Hi: p.parseTerm()}
	}
	return x
}

func (p *parser) parseTerm() ast.Expr {
	x := p.parseFactor()
	for p.tok == token.PLUS || p.tok == token.MINUS {
		op, pos := p.tok, p.val.Pos
		p.advance()
		x = &ast.Binary{Pos: pos, Op: op, X: x, Y: p.parseFactor()}
	}
	return x
}

func (p *parser) parseFactor() ast.Expr {
	x := p.parseUnary()
	for p.tok == token.STAR || p.tok == token.SLASH || p.tok == token.PERCENT {
		op, pos := p.tok, p.val.Pos
		p.advance()
		x = &ast.Binary{Pos: pos, Op: op, X: x, Y: p.parseUnary()}
	}
	return x
}

func (p *parser) parseUnary() ast.Expr {
	switch p.tok {
	case token.MINUS, token.NOT:
		op, pos := p.tok, p.val.Pos
		p.advance()
		return &ast.Unary{Pos: pos, Op: op, X: p.parseUnary()}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.tok {
		case token.LPAREN:
			pos := p.val.Pos
			p.advance()
			var args []ast.Expr
			for p.tok != token.RPAREN && p.tok != token.EOF {
				args = append(args, p.parseExpr())
				if !p.got(token.COMMA) {
					break
				}
			}
			p.expect(token.RPAREN)
			x = &ast.Call{Pos: pos, Fn: x, Args: args}

		case token.LBRACK:
			pos := p.val.Pos
			p.advance()
			key := p.parseExpr()
			p.expect(token.RBRACK)
			x = &ast.Index{Pos: pos, X: x, Key: key}

		case token.DOT:
			pos := p.val.Pos
			p.advance()
			name := p.expect(token.IDENT)
			x = &ast.Dot{Pos: pos, X: x, Name: name.Str}

		default:
			return x
		}
	}
}

func (p *parser) parsePrimary() ast.Expr {
	pos := p.val.Pos

	switch p.tok {
	case token.NUMBER:
		n := p.val.Num
		p.advance()
		return &ast.Literal{Pos: pos, Kind: ast.LitNumber, Num: n}

	case token.STRING:
		s := p.val.Str
		p.advance()
		return &ast.Literal{Pos: pos, Kind: ast.LitString, Str: s}

	case token.TRUE, token.FALSE:
		b := p.tok == token.TRUE
		p.advance()
		return &ast.Literal{Pos: pos, Kind: ast.LitBool, Bool: b}

	case token.NIL:
		p.advance()
		return &ast.Literal{Pos: pos, Kind: ast.LitNil}

	case token.IDENT:
		name := p.val.Str
		p.advance()
		return &ast.Name{Pos: pos, Name: name}

	case token.LPAREN:
		p.advance()
		x := p.parseExpr()
		p.expect(token.RPAREN)
		return x

	case token.LBRACK:
		p.advance()
		lst := &ast.List{Pos: pos}
		for p.tok != token.RBRACK && p.tok != token.EOF {
			lst.Elems = append(lst.Elems, p.parseExpr())
			if !p.got(token.COMMA) {
				break
			}
		}
		p.expect(token.RBRACK)
		return lst

	case token.LBRACE:
		p.advance()
		m := &ast.Map{Pos: pos}
		for p.tok != token.RBRACE && p.tok != token.EOF {
			kpos := p.val.Pos
			var key string
			switch p.tok {
			case token.IDENT, token.STRING:
				key = p.val.Str
				p.advance()
			default:
				p.errorf("expected map key, found %#v", p.tok)
				p.advance()
			}
			p.expect(token.COLON)
			m.Entries = append(m.Entries, ast.MapEntry{Pos: kpos, Key: key, Value: p.parseExpr()})
			if !p.got(token.COMMA) {
				break
			}
		}
		p.expect(token.RBRACE)
		return m

	case token.FN:
		p.advance()
		params := p.parseParams()
		body := p.parseBlock()
		return &ast.Lambda{Pos: pos, Params: params, Body: body}

	case token.EXEC:
		p.advance()
		return &ast.Exec{Pos: pos, Cmd: p.parseOr()}

	case token.MATCH:
		return p.parseMatch()

	case token.PARALLEL:
		// parallel(...) in expression position calls the parallel native
		// directly; the block form is a statement (see parseStmt)
		var next token.Value
		if p.scanner.PeekToken(&next) == token.LPAREN {
			p.advance()
			return &ast.Name{Pos: pos, Name: "parallel"}
		}
		fallthrough

	default:
		p.errorf("expected expression, found %#v", p.tok)
		p.advance()
		return &ast.Literal{Pos: pos, Kind: ast.LitNil}
	}
}

func (p *parser) parseMatch() ast.Expr {
	pos := p.val.Pos
	p.advance() // match
	m := &ast.Match{Pos: pos, Subject: p.parsePipe()}
	p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		arm := ast.MatchArm{Pos: p.val.Pos}
		if p.tok == token.IDENT && p.val.Str == "_" {
			p.advance() // wildcard, nil pattern
		} else {
			arm.Pattern = p.parsePipe()
		}
		p.expect(token.ARROW)
		if p.tok == token.LBRACE {
			arm.Body = p.parseBlock()
		} else {
			arm.Body = p.parsePipe()
		}
		m.Arms = append(m.Arms, arm)
		if !p.got(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE)
	return m
}
