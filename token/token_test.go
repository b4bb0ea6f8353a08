package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "+", Plus.String())
	assert.Equal(t, "identifier", Identifier.String())
	assert.Equal(t, "if", KwIf.String())
	assert.Equal(t, "kind(9999)", Kind(9999).String())
}

func TestKeywordsTable(t *testing.T) {
	for word, kind := range Keywords {
		assert.Equal(t, word, kind.String())
		assert.True(t, IsKeyword(kind), "expected %s to be a keyword kind", word)
	}
}

func TestIsKeywordExcludesNonKeywords(t *testing.T) {
	assert.False(t, IsKeyword(Identifier))
	assert.False(t, IsKeyword(Plus))
	assert.False(t, IsKeyword(EOF))
}

func TestTokenString(t *testing.T) {
	tok := Token{Kind: Identifier, Lexeme: "x", Line: 3, Column: 5}
	assert.Equal(t, `3:5: identifier "x"`, tok.String())

	ill := Token{Kind: Illegal, Lexeme: "$", Line: 1, Column: 1, Message: "unexpected character"}
	assert.Equal(t, `1:1: illegal "$": unexpected character`, ill.String())
}
