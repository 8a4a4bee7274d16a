package lexer

import (
	"fmt"

	"github.com/kievzenit/cyc/internal/compiler_errors"
)

// ParseError is raised when the token stream does not match what the grammar
// expects. It carries the offending token for positioning.
type ParseError struct {
	Token   Token
	Message string
}

func NewParseError(token Token, message string) *ParseError {
	return &ParseError{
		Token:   token,
		Message: message,
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: syntax error at %s: %s", e.Token.FileName, e.Token.Line, e.Token, e.Message)
}

func (e *ParseError) GetMessage() string {
	switch e.Token.Kind {
	case EOF:
		return fmt.Sprintf("%s (at end of input)", e.Message)
	case NEWLINE:
		return fmt.Sprintf("%s (at end of line)", e.Message)
	}
	return fmt.Sprintf("%s (found '%s')", e.Message, e.Token.Lexeme)
}

func (e *ParseError) GetPhase() compiler_errors.Phase { return compiler_errors.PhaseSyntax }
func (e *ParseError) GetFileName() string             { return e.Token.FileName }
func (e *ParseError) GetLine() int                    { return e.Token.Line }
func (e *ParseError) GetOffset() int                  { return e.Token.Offset }

// TokenCursor gives the parser a view of the token stream without IGNORED
// tokens. Runs of NEWLINE collapse into one, leading NEWLINEs are dropped and a
// NEWLINE always precedes the final EOF.
type TokenCursor struct {
	tokens []Token
	pos    int
}

func NewTokenCursor(raw []Token) *TokenCursor {
	tokens := make([]Token, 0, len(raw))

	last := func() *Token {
		if len(tokens) == 0 {
			return nil
		}
		return &tokens[len(tokens)-1]
	}

	for _, t := range raw {
		switch t.Kind {
		case IGNORED:
			continue

		case NEWLINE:
			if prev := last(); prev == nil || prev.Kind == NEWLINE {
				continue
			}

		case EOF:
			if prev := last(); prev != nil && prev.Kind != NEWLINE {
				tokens = append(tokens, Token{
					Kind:     NEWLINE,
					Indent:   prev.Indent,
					Line:     prev.Line,
					Offset:   t.Offset,
					FileName: t.FileName,
				})
			}
			tokens = append(tokens, t)
			return &TokenCursor{tokens: tokens}
		}

		tokens = append(tokens, t)
	}

	eof := EOFToken
	if prev := last(); prev != nil {
		eof.FileName = prev.FileName
		eof.Line = prev.Line
		if prev.Kind != NEWLINE {
			tokens = append(tokens, Token{Kind: NEWLINE, Indent: prev.Indent, Line: prev.Line, FileName: prev.FileName})
		}
	}
	tokens = append(tokens, eof)

	return &TokenCursor{tokens: tokens}
}

// Tokens returns the normalized stream, ending in EOF.
func (tc *TokenCursor) Tokens() []Token {
	return tc.tokens
}

func (tc *TokenCursor) Peek() Token {
	return tc.PeekAt(0)
}

// PeekAt looks offset tokens away from the current one. Reads past the end
// yield the final EOF token, reads before the start yield EOFToken.
func (tc *TokenCursor) PeekAt(offset int) Token {
	idx := tc.pos + offset
	if idx < 0 {
		return EOFToken
	}
	if idx >= len(tc.tokens) {
		return tc.tokens[len(tc.tokens)-1]
	}
	return tc.tokens[idx]
}

func (tc *TokenCursor) Previous() Token {
	return tc.PeekAt(-1)
}

// Advance consumes the current token and returns it. The cursor never moves
// past EOF.
func (tc *TokenCursor) Advance() Token {
	t := tc.Peek()
	if t.Kind != EOF {
		tc.pos++
	}
	return t
}

func (tc *TokenCursor) IsAtEnd() bool {
	return tc.Peek().Kind == EOF
}

func (tc *TokenCursor) Check(kind TokenKind) bool {
	return tc.CheckAt(kind, 0)
}

func (tc *TokenCursor) CheckAt(kind TokenKind, offset int) bool {
	return tc.PeekAt(offset).Kind == kind
}

func (tc *TokenCursor) CheckAny(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if tc.Check(kind) {
			return true
		}
	}
	return false
}

// CheckAll reports whether the upcoming tokens match kinds in sequence.
func (tc *TokenCursor) CheckAll(kinds ...TokenKind) bool {
	for i, kind := range kinds {
		if !tc.CheckAt(kind, i) {
			return false
		}
	}
	return true
}

func (tc *TokenCursor) Match(kind TokenKind) bool {
	if !tc.Check(kind) {
		return false
	}
	tc.Advance()
	return true
}

func (tc *TokenCursor) MatchAny(kinds ...TokenKind) bool {
	if !tc.CheckAny(kinds...) {
		return false
	}
	tc.Advance()
	return true
}

func (tc *TokenCursor) Consume(kind TokenKind, message string) (Token, error) {
	if tc.Check(kind) {
		return tc.Advance(), nil
	}
	return Token{}, NewParseError(tc.Peek(), message)
}

func (tc *TokenCursor) ConsumeAny(message string, kinds ...TokenKind) (Token, error) {
	if tc.CheckAny(kinds...) {
		return tc.Advance(), nil
	}
	return Token{}, NewParseError(tc.Peek(), message)
}
