package lexer

import (
	"testing"

	"github.com/daivm/dai/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextToken_Operators(t *testing.T) {
	input := `var x = 1 + 2 * 3 - 4 / 2 % 2; x += 1; x -= 1; x *= 2; x /= 2;`
	l := New(input)
	want := []token.Type{
		token.VAR, token.IDENT, token.ASSIGN, token.INT, token.PLUS, token.INT,
		token.STAR, token.INT, token.MINUS, token.INT, token.SLASH, token.INT,
		token.PERCENT, token.INT, token.SEMI,
		token.IDENT, token.PLUS_EQ, token.INT, token.SEMI,
		token.IDENT, token.MINUS_EQ, token.INT, token.SEMI,
		token.IDENT, token.STAR_EQ, token.INT, token.SEMI,
		token.IDENT, token.SLASH_EQ, token.INT, token.SEMI,
		token.EOF,
	}
	for i, wt := range want {
		tok := l.NextToken()
		require.Equalf(t, wt, tok.Type, "token %d: literal=%q", i, tok.Literal)
	}
}

func TestNextToken_Keywords(t *testing.T) {
	input := "class extend insvar classvar classfn self super fn return if elif else while for in break continue var con true false nil and or not"
	l := New(input)
	want := []token.Type{
		token.CLASS, token.EXTEND, token.INSVAR, token.CLASSVAR, token.CLASSFN,
		token.SELF, token.SUPER, token.FN, token.RETURN, token.IF, token.ELIF,
		token.ELSE, token.WHILE, token.FOR, token.IN, token.BREAK, token.CONTINUE,
		token.VAR, token.CON, token.TRUE, token.FALSE, token.NIL, token.AND,
		token.OR, token.NOT, token.EOF,
	}
	for _, wt := range want {
		tok := l.NextToken()
		require.Equal(t, wt, tok.Type)
	}
}

func TestNextToken_NumberBases(t *testing.T) {
	cases := []struct {
		input, literal string
		tt             token.Type
	}{
		{"123", "123", token.INT},
		{"1_000_000", "1_000_000", token.INT},
		{"0x1F", "0x1F", token.INT},
		{"0o17", "0o17", token.INT},
		{"0b1010", "0b1010", token.INT},
		{"1.5", "1.5", token.FLOAT},
		{"1e10", "1e10", token.FLOAT},
		{"1.5e-3", "1.5e-3", token.FLOAT},
	}
	for _, c := range cases {
		l := New(c.input)
		tok := l.NextToken()
		assert.Equal(t, c.tt, tok.Type, c.input)
		assert.Equal(t, c.literal, tok.Literal, c.input)
	}
}

func TestNextToken_StringEscapes(t *testing.T) {
	l := New(`"hello\nworld" "a\"b"`)
	tok := l.NextToken()
	assert.Equal(t, token.STRING, tok.Type)
	assert.Equal(t, "hello\nworld", tok.Literal)
	tok = l.NextToken()
	assert.Equal(t, `a"b`, tok.Literal)
}

func TestNextToken_Comments(t *testing.T) {
	l := New("1 // comment\n/* block */ 2")
	tok := l.NextToken()
	assert.Equal(t, "1", tok.Literal)
	tok = l.NextToken()
	assert.Equal(t, "2", tok.Literal)
}

func TestNextToken_UnicodeIdentifier(t *testing.T) {
	l := New("var café = 1;")
	tok := l.NextToken()
	assert.Equal(t, token.VAR, tok.Type)
	tok = l.NextToken()
	assert.Equal(t, token.IDENT, tok.Type)
	assert.Equal(t, "café", tok.Literal)
}

func TestNextToken_InvalidSeparatorPlacement(t *testing.T) {
	l := New("1__0")
	l.NextToken()
	require.NotEmpty(t, l.Errors())
}

func TestNextToken_IllegalChar(t *testing.T) {
	l := New("$")
	tok := l.NextToken()
	assert.Equal(t, token.ILLEGAL, tok.Type)
	require.NotEmpty(t, l.Errors())
}
