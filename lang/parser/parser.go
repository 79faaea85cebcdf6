// Package parser implements the parser that transforms Glipt source code
// into an abstract syntax tree (AST).
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glipt-org/glipt/lang/ast"
	"github.com/glipt-org/glipt/lang/scanner"
	"github.com/glipt-org/glipt/lang/token"
)

// ParseFile parses the source file and returns the AST and any error
// encountered. The error, if non-nil, joins every syntax error found.
func ParseFile(file string) (*ast.Program, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return ParseChunk(file, b)
}

// ParseChunk parses a single program from a slice of bytes under the name
// specified in filename, used only for position reporting.
func ParseChunk(filename string, src []byte) (*ast.Program, error) {
	var p parser
	p.init(filename, src)
	prog := p.parseProgram()
	prog.Name = filename
	return prog, errors.Join(p.errs...)
}

// parser parses source files and generates an AST.
type parser struct {
	filename string
	scanner  scanner.Scanner
	errs     []error

	// current token
	tok token.Token
	val token.Value
}

func (p *parser) init(filename string, src []byte) {
	p.filename = filename
	p.scanner.Init(src, p.errorAt)
	p.advance()
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

func (p *parser) errorAt(pos token.Position, msg string) {
	p.errs = append(p.errs, scanner.Error{Pos: pos, Msg: msg})
}

func (p *parser) errorf(format string, args ...interface{}) {
	p.errorAt(p.val.Pos, fmt.Sprintf(format, args...))
}

// expect consumes the current token if it is of the specified type, and
// reports an error otherwise. It returns the value of the consumed token.
func (p *parser) expect(tok token.Token) token.Value {
	val := p.val
	if p.tok != tok {
		p.errorf("expected %v, found %#v", tok, p.tok)
		// do not consume the unexpected token, it may be meaningful to the
		// caller's caller (e.g. a closing brace).
		if p.tok == token.EOF || p.tok == token.RBRACE {
			return val
		}
	}
	p.advance()
	return val
}

// got consumes the current token if it is of the specified type and returns
// true, otherwise it leaves the token and returns false.
func (p *parser) got(tok token.Token) bool {
	if p.tok == tok {
		p.advance()
		return true
	}
	return false
}

func (p *parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for p.tok != token.EOF {
		before := p.val.Pos
		prog.Stmts = append(prog.Stmts, p.parseStmt())
		if p.val.Pos == before && p.tok != token.EOF {
			// no progress was made, skip the offending token
			p.errorf("unexpected %#v", p.tok)
			p.advance()
		}
	}
	return prog
}

// moduleName returns the default binding name for an imported path: the
// base name without the extension.
func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
