package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kievzenit/cyc/internal/compiler_errors"
)

func tokenize(t *testing.T, text string) ([]Token, compiler_errors.ErrorHandler) {
	t.Helper()

	eh := compiler_errors.NewErrorHandler()
	tokens := NewLexer(NewSourceFile("test.cy", text), eh).Tokenize()
	require.NotEmpty(t, tokens)
	require.Equal(t, EOF, tokens[len(tokens)-1].Kind)

	return tokens, eh
}

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Kind)
	}
	return out
}

func significant(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind != IGNORED {
			out = append(out, t)
		}
	}
	return out
}

func TestTokenizeIsLossless(t *testing.T) {
	sources := []string{
		"int x = 3\nfloat y = 1.5\n",
		"class Point\n\tint x\n\tint y\n",
		"// comment\nint f(int a, int b)\n\treturn a + b /* sum */\n",
		"ascii s = \"a\\tb\"\n",
		"int x = 1 + \\  \n\t\t2\n",
		"  \t \r\n\n",
		"int x = 1 $ 2\n",
		"ascii s = \"unterminated\n",
	}

	for _, src := range sources {
		tokens, _ := tokenize(t, src)

		var sb strings.Builder
		for _, tok := range tokens {
			sb.WriteString(tok.Lexeme)
		}
		assert.Equal(t, src, sb.String())
	}
}

func TestTokenizeDeclarations(t *testing.T) {
	tokens, eh := tokenize(t, "int x = 3\nfloat y = 1.5\n")
	require.False(t, eh.HasErrors())

	sig := significant(tokens)
	assert.Equal(t, []TokenKind{
		INT, IDENTIFIER, EQUAL, INT_LITERAL, NEWLINE,
		FLOAT, IDENTIFIER, EQUAL, FLOAT_LITERAL, NEWLINE,
		EOF,
	}, kinds(sig))

	assert.Equal(t, "x", sig[1].Lexeme)
	assert.Equal(t, int32(3), sig[3].Literal)
	assert.Equal(t, 1, sig[3].Line)
	assert.Equal(t, 1.5, sig[8].Literal)
	assert.Equal(t, 2, sig[8].Line)
	assert.Equal(t, 8, sig[3].Offset)
}

func TestTokenizeOperators(t *testing.T) {
	tokens, eh := tokenize(t, "a++ -- != == <= >= < > ! = + - * / %")
	require.False(t, eh.HasErrors())

	assert.Equal(t, []TokenKind{
		IDENTIFIER, PLUS_PLUS, MINUS_MINUS, BANG_EQUAL, EQUAL_EQUAL,
		LESS_EQUAL, GREATER_EQUAL, LESS, GREATER, BANG, EQUAL,
		PLUS, MINUS, STAR, SLASH, PERCENT, EOF,
	}, kinds(significant(tokens)))
}

func TestTokenizeKeywordsAndTypes(t *testing.T) {
	tokens, _ := tokenize(t, "class if else while for return and or true false null void bool int8 utf8 ~dtor _x x1")

	assert.Equal(t, []TokenKind{
		CLASS, IF, ELSE, WHILE, FOR, RETURN, AND, OR, TRUE, FALSE, NULL,
		VOID, BOOL, INT8, UTF8, IDENTIFIER, IDENTIFIER, IDENTIFIER, EOF,
	}, kinds(significant(tokens)))
}

func TestTokenizeIndentation(t *testing.T) {
	tokens, _ := tokenize(t, "class A\n\tint x\n\t\tint y\nint z\n")

	indents := map[string]int{}
	for _, tok := range significant(tokens) {
		if tok.Kind == IDENTIFIER {
			indents[tok.Lexeme] = tok.Indent
		}
	}

	assert.Equal(t, map[string]int{"A": 0, "x": 1, "y": 2, "z": 0}, indents)
}

func TestTokenizeSpacesDoNotIndent(t *testing.T) {
	tokens, _ := tokenize(t, "    int x\n")

	for _, tok := range significant(tokens) {
		assert.Equal(t, 0, tok.Indent)
	}
}

func TestTokenizeLineContinuation(t *testing.T) {
	tokens, eh := tokenize(t, "int x = 1 + \\\n\t\t2\nint y\n")
	require.False(t, eh.HasErrors())

	sig := significant(tokens)
	assert.Equal(t, []TokenKind{
		INT, IDENTIFIER, EQUAL, INT_LITERAL, PLUS, INT_LITERAL, NEWLINE,
		INT, IDENTIFIER, NEWLINE,
		EOF,
	}, kinds(sig))

	assert.Equal(t, 2, sig[5].Line)
	assert.Equal(t, 0, sig[5].Indent)
	assert.Equal(t, 3, sig[8].Line)
}

func TestTokenizeComments(t *testing.T) {
	tokens, eh := tokenize(t, "int x // trailing\n/* a\nb */ int y\n")
	require.False(t, eh.HasErrors())

	sig := significant(tokens)
	assert.Equal(t, []TokenKind{INT, IDENTIFIER, NEWLINE, INT, IDENTIFIER, NEWLINE, EOF}, kinds(sig))
	assert.Equal(t, 3, sig[4].Line)
}

func TestTokenizeStrings(t *testing.T) {
	tokens, eh := tokenize(t, "\"plain\" \"tab\\there\" \"two\nlines\" x")
	require.False(t, eh.HasErrors())

	sig := significant(tokens)
	require.Len(t, sig, 5)
	assert.Equal(t, "plain", sig[0].Literal)
	assert.Equal(t, "tab\there", sig[1].Literal)
	assert.Equal(t, "two\nlines", sig[2].Literal)
	assert.Equal(t, 2, sig[3].Line)
}

func TestTokenizeReportsAndContinues(t *testing.T) {
	tokens, eh := tokenize(t, "int x = 1 $ 2\n")

	require.Len(t, eh.Errors(), 1)
	err, ok := eh.Errors()[0].(*compiler_errors.SourceError)
	require.True(t, ok)
	assert.Equal(t, compiler_errors.PhaseLexical, err.Phase)
	assert.Equal(t, 10, err.Offset)
	assert.Contains(t, err.Message, "'$'")

	assert.Equal(t, []TokenKind{INT, IDENTIFIER, EQUAL, INT_LITERAL, INT_LITERAL, NEWLINE, EOF}, kinds(significant(tokens)))
}

func TestTokenizeUnterminated(t *testing.T) {
	_, eh := tokenize(t, "ascii s = \"oops\n")
	require.Len(t, eh.Errors(), 1)
	assert.Contains(t, eh.Errors()[0].GetMessage(), "unterminated string")

	_, eh = tokenize(t, "/* never closed")
	require.Len(t, eh.Errors(), 1)
	assert.Contains(t, eh.Errors()[0].GetMessage(), "unterminated block comment")
}

func TestTokenizeIntegerOverflow(t *testing.T) {
	tokens, eh := tokenize(t, "int x = 99999999999\n")

	require.Len(t, eh.Errors(), 1)
	sig := significant(tokens)
	assert.Equal(t, INT_LITERAL, sig[3].Kind)
	assert.Nil(t, sig[3].Literal)
}

func TestTokenizeEmpty(t *testing.T) {
	tokens, eh := tokenize(t, "")

	assert.False(t, eh.HasErrors())
	assert.Equal(t, []TokenKind{EOF}, kinds(tokens))
}

func TestTokenKindStringPanicsOnIllegalKind(t *testing.T) {
	assert.Equal(t, "FLOAT_LITERAL", FLOAT_LITERAL.String())
	assert.Panics(t, func() { _ = TokenKind(-1).String() })
}
