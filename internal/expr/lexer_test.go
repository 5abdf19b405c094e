package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexBasicTokens(t *testing.T) {
	tokens, err := Lex(`a.b + 12 - 3.5 == "hi" && x[1] != 'c'`)
	require.NoError(t, err)

	var kinds []TokenKind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{
		TokIdent, TokPunct, TokIdent, TokPunct, TokInt, TokPunct, TokFloat,
		TokPunct, TokString, TokPunct, TokIdent, TokPunct, TokInt, TokPunct,
		TokPunct, TokChar, TokEOF,
	}, kinds)
}

func TestLexMultiCharPunctGreedy(t *testing.T) {
	tokens, err := Lex("a<<b>>=c")
	require.NoError(t, err)
	assert.Equal(t, "<<", tokens[1].Text)
	assert.Equal(t, ">>", tokens[3].Text)
	assert.Equal(t, "=", tokens[4].Text)
}

func TestLexIntegerAndHex(t *testing.T) {
	tokens, err := Lex("0x1F + 42")
	require.NoError(t, err)
	assert.Equal(t, int64(31), tokens[0].IntVal)
	assert.Equal(t, int64(42), tokens[2].IntVal)
}

func TestLexStringEscapes(t *testing.T) {
	tokens, err := Lex(`"a\tbA"`)
	require.NoError(t, err)
	assert.Equal(t, "a\tbA", tokens[0].Text)
}

func TestLexKeywords(t *testing.T) {
	tokens, err := Lex("true false null this")
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{TokTrue, TokFalse, TokNull, TokThis, TokEOF}, []TokenKind{
		tokens[0].Kind, tokens[1].Kind, tokens[2].Kind, tokens[3].Kind, tokens[4].Kind,
	})
}

func TestLexUnexpectedCharacter(t *testing.T) {
	_, err := Lex("a @ b")
	assert.Error(t, err)
}
