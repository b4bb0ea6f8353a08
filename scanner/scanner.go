// Package scanner turns Satori source text into a token stream. It is a
// single-pass, left-to-right scan with no backtracking, in the mold of the
// teacher's own hand-rolled rune scan in gothird's internals.go (scan) and
// io.go (ioCore.readRune) -- except here the scanner classifies what it
// reads into token.Kind instead of handing raw runes to a VM.
package scanner

import (
	"fmt"

	"github.com/satori-lang/satori/token"
)

// Scanner holds the left-to-right scan position over one source buffer.
type Scanner struct {
	src  string
	file string

	start  int // byte offset of the token currently being scanned
	cur    int // byte offset of the scan cursor
	line   int
	column int

	// startLine/startColumn record the origin of the token pinned at start.
	startLine   int
	startColumn int
}

// Option configures a Scanner at construction.
type Option interface{ apply(s *Scanner) }

type fileOption string

func (f fileOption) apply(s *Scanner) { s.file = string(f) }

// WithFile attaches a file name used only for diagnostics carried on
// Illegal tokens' Message field; it does not affect token positions.
func WithFile(name string) Option { return fileOption(name) }

// New constructs a Scanner over src.
func New(src string, opts ...Option) *Scanner {
	s := &Scanner{src: src, line: 1, column: 1}
	for _, opt := range opts {
		opt.apply(s)
	}
	return s
}

// All drains the scanner to end-of-input, returning every token including
// the final EOF. The parser consumes this slice (parser.New), and the
// -t/--tokens CLI mode prints it.
func All(src string, opts ...Option) []token.Token {
	s := New(src, opts...)
	var out []token.Token
	for {
		t := s.Next()
		out = append(out, t)
		if t.Kind == token.EOF {
			return out
		}
	}
}

func (s *Scanner) atEnd() bool { return s.cur >= len(s.src) }

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.cur]
}

func (s *Scanner) peekAt(off int) byte {
	if s.cur+off >= len(s.src) {
		return 0
	}
	return s.src[s.cur+off]
}

func (s *Scanner) advance() byte {
	b := s.src[s.cur]
	s.cur++
	if b == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return b
}

func (s *Scanner) match(b byte) bool {
	if s.atEnd() || s.src[s.cur] != b {
		return false
	}
	s.advance()
	return true
}

func (s *Scanner) make(kind token.Kind) token.Token {
	return token.Token{
		Kind:   kind,
		Lexeme: s.src[s.start:s.cur],
		Line:   s.startLine,
		Column: s.startColumn,
	}
}

func (s *Scanner) errorf(format string, args ...interface{}) token.Token {
	msg := fmt.Sprintf(format, args...)
	if s.file != "" {
		msg = s.file + ": " + msg
	}
	return token.Token{
		Kind:    token.Illegal,
		Lexeme:  s.src[s.start:s.cur],
		Line:    s.startLine,
		Column:  s.startColumn,
		Message: msg,
	}
}

// Next scans and returns the next token, including skipping whitespace and
// line comments. A \r is always ignored (both bare \r and \r\n forms).
func (s *Scanner) Next() token.Token {
	s.skipIgnored()

	s.start = s.cur
	s.startLine, s.startColumn = s.line, s.column

	if s.atEnd() {
		return s.make(token.EOF)
	}

	b := s.advance()

	if b == '\n' {
		return s.make(token.Newline)
	}

	if isDigit(b) {
		return s.number()
	}
	if isIdentStart(b) {
		return s.identifier()
	}
	if b == '"' {
		return s.string()
	}

	switch b {
	case ',':
		return s.make(token.Comma)
	case '.':
		if s.match('.') {
			return s.make(token.DotDot)
		}
		return s.make(token.Dot)
	case '+':
		if s.match('=') {
			return s.make(token.PlusEqual)
		}
		return s.make(token.Plus)
	case '-':
		if s.match('=') {
			return s.make(token.MinusEqual)
		}
		if s.match('>') {
			return s.make(token.Arrow)
		}
		return s.make(token.Minus)
	case '*':
		if s.match('=') {
			return s.make(token.StarEqual)
		}
		return s.make(token.Star)
	case '/':
		if s.match('=') {
			return s.make(token.SlashEqual)
		}
		return s.make(token.Slash)
	case '%':
		return s.make(token.Percent)
	case '!':
		if s.match('=') {
			return s.make(token.BangEqual)
		}
		return s.make(token.Bang)
	case '=':
		if s.match('=') {
			return s.make(token.EqualEqual)
		}
		return s.make(token.Equal)
	case '<':
		if s.match('=') {
			return s.make(token.LessEqual)
		}
		return s.make(token.Less)
	case '>':
		if s.match('=') {
			return s.make(token.GreaterEqual)
		}
		return s.make(token.Greater)
	case ':':
		if s.match('=') {
			return s.make(token.ColonEqual)
		}
		return s.make(token.Colon)
	case '(':
		return s.make(token.LParen)
	case ')':
		return s.make(token.RParen)
	case '{':
		return s.make(token.LBrace)
	case '}':
		return s.make(token.RBrace)
	case '[':
		return s.make(token.LBracket)
	case ']':
		return s.make(token.RBracket)
	}

	return s.errorf("unexpected byte %q", b)
}

// skipIgnored consumes spaces, tabs, carriage returns, and // line comments.
// It stops at a newline, which Next turns into a significant Newline token.
func (s *Scanner) skipIgnored() {
	for {
		switch s.peek() {
		case ' ', '\t', '\r':
			s.advance()
		case '/':
			if s.peekAt(1) == '/' {
				for !s.atEnd() && s.peek() != '\n' {
					s.advance()
				}
				continue
			}
			return
		default:
			return
		}
	}
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance() // '.'
		for isDigit(s.peek()) {
			s.advance()
		}
		return s.make(token.Float)
	}
	return s.make(token.Int)
}

func (s *Scanner) identifier() token.Token {
	for isIdentPart(s.peek()) {
		s.advance()
	}
	text := s.src[s.start:s.cur]
	if kind, ok := token.Keywords[text]; ok {
		return s.make(kind)
	}
	return s.make(token.Identifier)
}

// string scans a double-quoted literal. The opening quote was already
// consumed by Next. The returned lexeme includes both quote characters per
// the spec; the scanner does not interpret escapes.
func (s *Scanner) string() token.Token {
	for {
		if s.atEnd() {
			return s.errorf("unterminated string literal")
		}
		if s.peek() == '"' {
			s.advance()
			return s.make(token.String)
		}
		s.advance() // embedded newlines are allowed and counted by advance
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}
