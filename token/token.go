// Package token defines the lexical token kinds and the Token record
// produced by the scanner and consumed by the parser.
package token

import "fmt"

// Kind enumerates every distinct token spelling the scanner produces.
type Kind int

const (
	Illegal Kind = iota
	EOF
	Newline

	// literals
	Identifier
	Int
	Float
	String

	// punctuation
	Comma
	Dot
	DotDot

	// one/two-character operators
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	Equal
	EqualEqual
	BangEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	ColonEqual
	PlusEqual
	MinusEqual
	StarEqual
	SlashEqual
	Arrow

	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Colon

	// reserved words
	KwAnd
	KwOr
	KwNot
	KwIf
	KwElse
	KwThen
	KwFor
	KwIn
	KwLoop
	KwWhile
	KwBreak
	KwContinue
	KwReturn
	KwStruct
	KwLet
	KwImport
	KwDefer
	KwSpawn
	KwPanic
	KwTrue
	KwFalse
	KwNil

	// reserved type names
	KwInt
	KwFloat
	KwBool
	KwString
	KwVoid
	KwByte

	kindCount
)

var kindNames = [kindCount]string{
	Illegal:      "illegal",
	EOF:          "eof",
	Newline:      "newline",
	Identifier:   "identifier",
	Int:          "int",
	Float:        "float",
	String:       "string",
	Comma:        ",",
	Dot:          ".",
	DotDot:       "..",
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Percent:      "%",
	Bang:         "!",
	Equal:        "=",
	EqualEqual:   "==",
	BangEqual:    "!=",
	Less:         "<",
	LessEqual:    "<=",
	Greater:      ">",
	GreaterEqual: ">=",
	ColonEqual:   ":=",
	PlusEqual:    "+=",
	MinusEqual:   "-=",
	StarEqual:    "*=",
	SlashEqual:   "/=",
	Arrow:        "->",
	LParen:       "(",
	RParen:       ")",
	LBrace:       "{",
	RBrace:       "}",
	LBracket:     "[",
	RBracket:     "]",
	Colon:        ":",
	KwAnd:        "and",
	KwOr:         "or",
	KwNot:        "not",
	KwIf:         "if",
	KwElse:       "else",
	KwThen:       "then",
	KwFor:        "for",
	KwIn:         "in",
	KwLoop:       "loop",
	KwWhile:      "while",
	KwBreak:      "break",
	KwContinue:   "continue",
	KwReturn:     "return",
	KwStruct:     "struct",
	KwLet:        "let",
	KwImport:     "import",
	KwDefer:      "defer",
	KwSpawn:      "spawn",
	KwPanic:      "panic",
	KwTrue:       "true",
	KwFalse:      "false",
	KwNil:        "nil",
	KwInt:        "int",
	KwFloat:      "float",
	KwBool:       "bool",
	KwString:     "string",
	KwVoid:       "void",
	KwByte:       "byte",
}

// String renders the kind's canonical spelling, or "kind(n)" for an
// out-of-range value.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Keywords maps every reserved spelling to its keyword Kind. Built once at
// init so the scanner's identifier recognizer is a single map lookup after
// scanning the identifier's runes, the same "deterministic keyword lookup"
// the spec calls for.
var Keywords = map[string]Kind{
	"and": KwAnd, "or": KwOr, "not": KwNot,
	"if": KwIf, "else": KwElse, "then": KwThen,
	"for": KwFor, "in": KwIn, "loop": KwLoop, "while": KwWhile,
	"break": KwBreak, "continue": KwContinue, "return": KwReturn,
	"struct": KwStruct, "let": KwLet, "import": KwImport,
	"defer": KwDefer, "spawn": KwSpawn, "panic": KwPanic,
	"true": KwTrue, "false": KwFalse, "nil": KwNil,
	"int": KwInt, "float": KwFloat, "bool": KwBool,
	"string": KwString, "void": KwVoid, "byte": KwByte,
}

// Token is an immutable scan result: a kind, the source slice it came from,
// and its line/column origin (both 1-based).
type Token struct {
	Kind    Kind
	Lexeme  string
	Line    int
	Column  int
	Message string // set only on Illegal tokens: the diagnostic payload
}

func (t Token) String() string {
	if t.Kind == Illegal {
		return fmt.Sprintf("%d:%d: illegal %q: %s", t.Line, t.Column, t.Lexeme, t.Message)
	}
	return fmt.Sprintf("%d:%d: %v %q", t.Line, t.Column, t.Kind, t.Lexeme)
}

// IsKeyword reports whether k is one of the reserved-word kinds.
func IsKeyword(k Kind) bool {
	return k >= KwAnd && k <= KwByte
}
