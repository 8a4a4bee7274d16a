package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kievzenit/cyc/internal/compiler_errors"
)

func newUnexpectedError(unexpected rune) string {
	return fmt.Sprintf("unexpected character: '%s'", string(unexpected))
}

func newExpectedError(expected rune, what string) string {
	return fmt.Sprintf("unterminated %s, expected '%s'", what, string(expected))
}

// Lexer turns one source file into a lossless token stream: whitespace and
// comments are kept as IGNORED tokens, so concatenating every lexeme
// reproduces the input exactly.
type Lexer struct {
	src    *SourceFile
	cursor *Cursor

	tokens []Token

	line      int
	startLine int
	indent    int

	eh compiler_errors.ErrorHandler
}

func NewLexer(src *SourceFile, eh compiler_errors.ErrorHandler) *Lexer {
	return &Lexer{
		src:    src,
		cursor: NewCursor(src.Runes()),

		tokens: make([]Token, 0),

		line: 1,

		eh: eh,
	}
}

func (l *Lexer) Tokenize() []Token {
	l.cursor.Start()
	l.startLine = l.line
	l.processIndentation()

	for !l.cursor.IsAtEnd(0) {
		l.cursor.Start()
		l.startLine = l.line
		l.processToken()
	}

	l.cursor.Start()
	l.startLine = l.line
	l.addToken(EOF, nil)

	return l.tokens
}

func (l *Lexer) processToken() {
	c := l.cursor.Advance()

	switch c {
	case '(':
		l.addToken(LEFT_PAREN, nil)
	case ')':
		l.addToken(RIGHT_PAREN, nil)
	case '[':
		l.addToken(LEFT_BRACKET, nil)
	case ']':
		l.addToken(RIGHT_BRACKET, nil)
	case ',':
		l.addToken(COMMA, nil)
	case '.':
		l.addToken(DOT, nil)
	case ':':
		l.addToken(COLON, nil)
	case ';':
		l.addToken(SEMICOLON, nil)
	case '*':
		l.addToken(STAR, nil)
	case '%':
		l.addToken(PERCENT, nil)
	case '-':
		l.addToken(l.either('-', MINUS_MINUS, MINUS), nil)
	case '+':
		l.addToken(l.either('+', PLUS_PLUS, PLUS), nil)
	case '!':
		l.addToken(l.either('=', BANG_EQUAL, BANG), nil)
	case '=':
		l.addToken(l.either('=', EQUAL_EQUAL, EQUAL), nil)
	case '<':
		l.addToken(l.either('=', LESS_EQUAL, LESS), nil)
	case '>':
		l.addToken(l.either('=', GREATER_EQUAL, GREATER), nil)

	case '/':
		switch {
		case l.match('/'):
			l.processLineComment()
		case l.match('*'):
			l.processBlockComment()
		default:
			l.addToken(SLASH, nil)
		}

	case '\\':
		l.processContinuation()

	case ' ', '\t', '\r':
		l.processWhitespace()

	case '\n':
		l.processNewline()

	case '"':
		l.processStringLiteral()

	default:
		switch {
		case isDigit(c):
			l.processNumber()
		case isIdentifierStart(c):
			l.processIdentifier()
		default:
			l.addError(newUnexpectedError(c))
			l.addToken(IGNORED, nil)
		}
	}
}

func (l *Lexer) processWhitespace() {
	for isSpace(l.cursor.Peek()) && !l.cursor.IsAtEnd(0) {
		l.cursor.Advance()
	}
	l.addToken(IGNORED, nil)
}

// processNewline ends the current line and measures the indentation of the
// next one. Only leading tabs count.
func (l *Lexer) processNewline() {
	l.addToken(NEWLINE, nil)

	l.line++
	l.indent = 0

	l.cursor.Start()
	l.startLine = l.line
	l.processIndentation()
}

func (l *Lexer) processIndentation() {
	for !l.cursor.IsAtEnd(0) && l.cursor.Peek() == '\t' {
		l.cursor.Advance()
		l.indent++
	}

	if l.cursor.Pos() > l.cursor.StartPos() {
		l.addToken(IGNORED, nil)
	}
}

// processContinuation handles a backslash followed by optional whitespace and a
// line break. The break does not end the logical line and the next line keeps
// the current indentation.
func (l *Lexer) processContinuation() {
	offset := 0
	for !l.cursor.IsAtEnd(offset) {
		r := l.peekAt(offset)
		if r == '\n' {
			for range offset + 1 {
				l.cursor.Advance()
			}
			l.addToken(IGNORED, nil)
			l.line++
			return
		}
		if !isSpace(r) {
			break
		}
		offset++
	}

	l.addError(newUnexpectedError('\\'))
	l.addToken(IGNORED, nil)
}

func (l *Lexer) processLineComment() {
	for !l.cursor.IsAtEnd(0) && l.cursor.Peek() != '\n' {
		l.cursor.Advance()
	}
	l.addToken(IGNORED, nil)
}

func (l *Lexer) processBlockComment() {
	for {
		if l.cursor.IsAtEnd(0) {
			l.addError(newExpectedError('/', "block comment"))
			l.addToken(IGNORED, nil)
			return
		}

		if l.cursor.Peek() == '*' && l.cursor.PeekNext() == '/' {
			l.cursor.Advance()
			l.cursor.Advance()
			l.addToken(IGNORED, nil)
			return
		}

		if l.cursor.Advance() == '\n' {
			l.line++
		}
	}
}

func (l *Lexer) processStringLiteral() {
	var sb strings.Builder
	escaped := false

	for {
		if l.cursor.IsAtEnd(0) {
			l.addError(newExpectedError('"', "string literal"))
			l.addToken(IGNORED, nil)
			return
		}

		c := l.cursor.Advance()
		if c == '"' {
			break
		}

		if c == '\n' {
			l.line++
		}

		if c != '\\' || l.cursor.IsAtEnd(0) {
			sb.WriteRune(c)
			continue
		}

		escaped = true
		esc := l.cursor.Advance()
		switch esc {
		case 'n':
			sb.WriteRune('\n')
		case 't':
			sb.WriteRune('\t')
		case 'r':
			sb.WriteRune('\r')
		case '0':
			sb.WriteRune(0)
		case '\\', '"':
			sb.WriteRune(esc)
		case '\n':
			l.line++
			sb.WriteRune(esc)
		default:
			sb.WriteRune('\\')
			sb.WriteRune(esc)
		}
	}

	if !escaped {
		l.addToken(STR_LITERAL, l.cursor.Slice(1, -1))
		return
	}
	l.addToken(STR_LITERAL, sb.String())
}

func (l *Lexer) processNumber() {
	for isDigit(l.cursor.Peek()) {
		l.cursor.Advance()
	}

	if l.cursor.Peek() == '.' && isDigit(l.cursor.PeekNext()) {
		l.cursor.Advance()
		for isDigit(l.cursor.Peek()) {
			l.cursor.Advance()
		}

		value, err := strconv.ParseFloat(l.cursor.Text(), 64)
		if err != nil {
			l.addError(fmt.Sprintf("invalid float literal: %s", l.cursor.Text()))
			l.addToken(FLOAT_LITERAL, nil)
			return
		}
		l.addToken(FLOAT_LITERAL, value)
		return
	}

	value, err := strconv.ParseInt(l.cursor.Text(), 10, 32)
	if err != nil {
		l.addError(fmt.Sprintf("integer literal out of range: %s", l.cursor.Text()))
		l.addToken(INT_LITERAL, nil)
		return
	}
	l.addToken(INT_LITERAL, int32(value))
}

func (l *Lexer) processIdentifier() {
	for isIdentifierPart(l.cursor.Peek()) {
		l.cursor.Advance()
	}

	text := l.cursor.Text()
	if kind, ok := keywords[text]; ok {
		l.addToken(kind, nil)
		return
	}
	if kind, ok := typeNames[text]; ok {
		l.addToken(kind, nil)
		return
	}

	l.addToken(IDENTIFIER, nil)
}

func (l *Lexer) either(next rune, matched TokenKind, otherwise TokenKind) TokenKind {
	if l.match(next) {
		return matched
	}
	return otherwise
}

func (l *Lexer) match(expected rune) bool {
	if l.cursor.IsAtEnd(0) || l.cursor.Peek() != expected {
		return false
	}
	l.cursor.Advance()
	return true
}

func (l *Lexer) peekAt(offset int) rune {
	switch offset {
	case 0:
		return l.cursor.Peek()
	case 1:
		return l.cursor.PeekNext()
	}

	runes := l.src.Runes()
	return runes[l.cursor.Pos()+offset]
}

func (l *Lexer) addToken(kind TokenKind, literal any) {
	l.tokens = append(l.tokens, Token{
		Kind:    kind,
		Lexeme:  l.cursor.Text(),
		Literal: literal,

		Indent:   l.indent,
		Line:     l.startLine,
		Offset:   l.cursor.StartPos(),
		FileName: l.src.Name,
	})
}

func (l *Lexer) addError(message string) {
	l.eh.AddError(compiler_errors.NewSourceError(
		compiler_errors.PhaseLexical,
		l.src.Name,
		l.startLine,
		l.cursor.StartPos(),
		message,
	))
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '~'
}

func isIdentifierPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
