// Package scanner tokenizes Glipt source files for the parser to consume.
package scanner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/glipt-org/glipt/lang/token"
)

// Error describes a scanning error at a source position.
type Error struct {
	Pos token.Position
	Msg string
}

func (e Error) Error() string { return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Col, e.Msg) }

// Scanner tokenizes source files for the parser to consume.
type Scanner struct {
	// immutable state after Init
	src  []byte
	err  func(pos token.Position, msg string)

	// mutable scanning state
	sb   strings.Builder // writes to Builder never fail, so errors are ignored
	cur  rune            // current character, -1 at end of file
	off  int             // byte offset of cur
	roff int             // reading offset (position after cur)
	line int             // 1-based line of cur
	col  int             // 1-based column of cur
}

// hashbang prefix; a hashbang line is skipped like any other '#' comment,
// on whichever line it appears
var hashBang = [2]byte{'#', '!'}

// Init initializes the scanner to tokenize a new source buffer. The error
// handler is called for each error encountered; it may be nil.
func (s *Scanner) Init(src []byte, errHandler func(token.Position, string)) {
	s.src = src
	s.err = errHandler

	s.sb.Reset()
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.line = 1
	s.col = 0

	s.advance()
}

// peek returns the byte following the most recently read character without
// advancing the scanner. If the scanner is at EOF, peek returns 0.
func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

// read the next Unicode char into s.cur; s.cur < 0 means end-of-file.
func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		if s.cur == '\n' {
			s.line++
			s.col = 0
		}
		s.cur = -1
		return
	}

	if s.cur == '\n' {
		s.line++
		s.col = 0
	}
	s.off = s.roff

	// fast path if the rune is an ASCII char, no decoding necessary
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.pos(), "illegal UTF-8 encoding")
		}
	}
	s.roff += w
	s.cur = r
	s.col++
}

func (s *Scanner) pos() token.Position {
	return token.Position{Line: s.line, Col: s.col}
}

func (s *Scanner) error(pos token.Position, msg string) {
	if s.err != nil {
		s.err(pos, msg)
	}
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch {
		case s.cur == ' ' || s.cur == '\t' || s.cur == '\r' || s.cur == '\n':
			s.advance()
		case s.cur == '#':
			// comment to end of line; this also swallows a leading hashbang
			for s.cur != '\n' && s.cur >= 0 {
				s.advance()
			}
		default:
			return
		}
	}
}

// Scan reads the next token, filling val with its raw text, decoded value
// and position, and returns its type. At end of input it returns token.EOF
// forever.
func (s *Scanner) Scan(val *token.Value) token.Token {
	s.skipWhitespaceAndComments()

	*val = token.Value{Pos: s.pos()}
	start := s.off

	switch cur := s.cur; {
	case cur < 0:
		return token.EOF

	case isNameStart(cur):
		for isNamePart(s.cur) {
			s.advance()
		}
		val.Raw = string(s.src[start:s.off])
		val.Str = val.Raw
		return token.LookupIdent(val.Raw)

	case isDigit(cur), cur == '.' && isDigit(rune(s.peek())):
		return s.number(val, start)

	case cur == '"':
		return s.stringLit(val, start)

	default:
		s.advance()
		tok := token.ILLEGAL
		switch cur {
		case '+':
			tok = s.ifEq(token.PLUS_EQ, token.PLUS)
		case '-':
			if s.cur == '>' {
				s.advance()
				tok = token.ARROW
			} else {
				tok = s.ifEq(token.MINUS_EQ, token.MINUS)
			}
		case '*':
			tok = s.ifEq(token.STAR_EQ, token.STAR)
		case '/':
			tok = s.ifEq(token.SLASH_EQ, token.SLASH)
		case '%':
			tok = token.PERCENT
		case '=':
			tok = s.ifEq(token.EQL, token.EQ)
		case '!':
			if s.cur == '=' {
				s.advance()
				tok = token.NEQ
			} else {
				s.error(val.Pos, "unexpected character '!'")
			}
		case '<':
			tok = s.ifEq(token.LE, token.LT)
		case '>':
			tok = s.ifEq(token.GE, token.GT)
		case '(':
			tok = token.LPAREN
		case ')':
			tok = token.RPAREN
		case '[':
			tok = token.LBRACK
		case ']':
			tok = token.RBRACK
		case '{':
			tok = token.LBRACE
		case '}':
			tok = token.RBRACE
		case ',':
			tok = token.COMMA
		case '.':
			if s.cur == '.' {
				s.advance()
				tok = token.DOTDOT
			} else {
				tok = token.DOT
			}
		case ':':
			tok = token.COLON
		case '|':
			if s.cur == '>' {
				s.advance()
				tok = token.PIPE
			} else {
				s.error(val.Pos, "unexpected character '|'")
			}
		default:
			s.error(val.Pos, fmt.Sprintf("unexpected character %q", cur))
		}
		val.Raw = string(s.src[start:s.off])
		return tok
	}
}

// PeekToken scans the next token without consuming it. Errors encountered
// during the peek are not reported; they surface again when the token is
// actually scanned.
func (s *Scanner) PeekToken(val *token.Value) token.Token {
	cur, off, roff, line, col, err := s.cur, s.off, s.roff, s.line, s.col, s.err
	s.err = nil
	tok := s.Scan(val)
	s.cur, s.off, s.roff, s.line, s.col, s.err = cur, off, roff, line, col, err
	return tok
}

// ifEq consumes a trailing '=' and returns eq, otherwise returns plain.
func (s *Scanner) ifEq(eq, plain token.Token) token.Token {
	if s.cur == '=' {
		s.advance()
		return eq
	}
	return plain
}

func (s *Scanner) number(val *token.Value, start int) token.Token {
	for isDigit(s.cur) {
		s.advance()
	}
	// fraction, but not the '..' range punctuation
	if s.cur == '.' && s.peek() != '.' {
		s.advance()
		for isDigit(s.cur) {
			s.advance()
		}
	}
	// exponent
	if s.cur == 'e' || s.cur == 'E' {
		s.advance()
		if s.cur == '+' || s.cur == '-' {
			s.advance()
		}
		if !isDigit(s.cur) {
			s.error(s.pos(), "malformed number exponent")
		}
		for isDigit(s.cur) {
			s.advance()
		}
	}

	val.Raw = string(s.src[start:s.off])
	f, err := strconv.ParseFloat(val.Raw, 64)
	if err != nil {
		s.error(val.Pos, fmt.Sprintf("invalid number literal %s", val.Raw))
	}
	val.Num = f
	return token.NUMBER
}

func (s *Scanner) stringLit(val *token.Value, start int) token.Token {
	s.advance() // opening quote
	s.sb.Reset()
	for s.cur != '"' {
		if s.cur < 0 || s.cur == '\n' {
			s.error(val.Pos, "unterminated string literal")
			break
		}
		if s.cur == '\\' {
			s.advance()
			switch s.cur {
			case 'n':
				s.sb.WriteByte('\n')
			case 't':
				s.sb.WriteByte('\t')
			case 'r':
				s.sb.WriteByte('\r')
			case '"':
				s.sb.WriteByte('"')
			case '\\':
				s.sb.WriteByte('\\')
			case '0':
				s.sb.WriteByte(0)
			default:
				s.error(s.pos(), fmt.Sprintf("invalid escape sequence \\%c", s.cur))
			}
			s.advance()
			continue
		}
		s.sb.WriteRune(s.cur)
		s.advance()
	}
	if s.cur == '"' {
		s.advance() // closing quote
	}
	val.Raw = string(s.src[start:s.off])
	val.Str = s.sb.String()
	return token.STRING
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNamePart(r rune) bool {
	return isNameStart(r) || isDigit(r)
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }
