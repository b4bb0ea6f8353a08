package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satori-lang/satori/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestNumbersIntVsFloat(t *testing.T) {
	toks := All("1 2.5 3.")
	require.Len(t, toks, 5) // int, float, int, dot, eof
	assert.Equal(t, token.Int, toks[0].Kind)
	assert.Equal(t, "1", toks[0].Lexeme)
	assert.Equal(t, token.Float, toks[1].Kind)
	assert.Equal(t, "2.5", toks[1].Lexeme)
	assert.Equal(t, token.Int, toks[2].Kind)
	assert.Equal(t, "3", toks[2].Lexeme)
	assert.Equal(t, token.Dot, toks[3].Kind)
}

func TestIdentifierVsKeyword(t *testing.T) {
	toks := All("let x = if")
	assert.Equal(t, []token.Kind{token.KwLet, token.Identifier, token.Equal, token.KwIf, token.EOF}, kinds(toks))
}

func TestTwoCharOperators(t *testing.T) {
	toks := All("== != <= >= := += -= *= /= ->")
	want := []token.Kind{
		token.EqualEqual, token.BangEqual, token.LessEqual, token.GreaterEqual,
		token.ColonEqual, token.PlusEqual, token.MinusEqual, token.StarEqual,
		token.SlashEqual, token.Arrow, token.EOF,
	}
	assert.Equal(t, want, kinds(toks))
}

func TestLineCommentsSkipped(t *testing.T) {
	toks := All("1 // a comment\n2")
	assert.Equal(t, []token.Kind{token.Int, token.Newline, token.Int, token.EOF}, kinds(toks))
}

func TestStringLiteral(t *testing.T) {
	toks := All(`"hello world"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, `"hello world"`, toks[0].Lexeme)
}

func TestUnterminatedStringIsIllegal(t *testing.T) {
	toks := All(`"oops`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Illegal, toks[0].Kind)
	assert.Contains(t, toks[0].Message, "unterminated")
}

func TestUnexpectedByteIsIllegal(t *testing.T) {
	toks := All("1 $ 2")
	require.Len(t, toks, 4)
	assert.Equal(t, token.Illegal, toks[1].Kind)
	assert.Contains(t, toks[1].Message, "unexpected byte")
}

func TestLineAndColumnTracking(t *testing.T) {
	toks := All("ab\ncd")
	require.Len(t, toks, 4) // ident, newline, ident, eof
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Column)
	assert.Equal(t, 2, toks[2].Line)
	assert.Equal(t, 1, toks[2].Column)
}

func TestNewlineIsSignificant(t *testing.T) {
	toks := All("1\n\n2")
	assert.Equal(t, []token.Kind{token.Int, token.Newline, token.Newline, token.Int, token.EOF}, kinds(toks))
}

func TestAllAlwaysEndsInEOF(t *testing.T) {
	toks := All("")
	require.Len(t, toks, 1)
	assert.Equal(t, token.EOF, toks[0].Kind)
}
