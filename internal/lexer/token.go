package lexer

import (
	"fmt"
)

type TokenKind int

const (
	EOF TokenKind = iota
	NEWLINE
	IGNORED

	LEFT_PAREN    // (
	RIGHT_PAREN   // )
	LEFT_BRACKET  // [
	RIGHT_BRACKET // ]
	COMMA         // ,
	DOT           // .
	COLON         // :
	SEMICOLON     // ;

	MINUS         // -
	MINUS_MINUS   // --
	PLUS          // +
	PLUS_PLUS     // ++
	SLASH         // /
	STAR          // *
	PERCENT       // %
	BANG          // !
	BANG_EQUAL    // !=
	EQUAL         // =
	EQUAL_EQUAL   // ==
	GREATER       // >
	GREATER_EQUAL // >=
	LESS          // <
	LESS_EQUAL    // <=

	IDENTIFIER
	STR_LITERAL
	INT_LITERAL
	FLOAT_LITERAL

	AND
	OR
	CLASS
	ELSE
	FALSE
	FOR
	IF
	NULL
	RETURN
	TRUE
	WHILE

	VOID
	BOOL
	INT
	INT8
	INT16
	INT32
	INT64
	INT128
	FLOAT
	FLOAT16
	FLOAT32
	FLOAT64
	FLOAT128
	ASCII
	UTF8
)

var tokenKindNames = map[TokenKind]string{
	EOF:     "EOF",
	NEWLINE: "NEWLINE",
	IGNORED: "IGNORED",

	LEFT_PAREN:    "LEFT_PAREN",
	RIGHT_PAREN:   "RIGHT_PAREN",
	LEFT_BRACKET:  "LEFT_BRACKET",
	RIGHT_BRACKET: "RIGHT_BRACKET",
	COMMA:         "COMMA",
	DOT:           "DOT",
	COLON:         "COLON",
	SEMICOLON:     "SEMICOLON",

	MINUS:         "MINUS",
	MINUS_MINUS:   "MINUS_MINUS",
	PLUS:          "PLUS",
	PLUS_PLUS:     "PLUS_PLUS",
	SLASH:         "SLASH",
	STAR:          "STAR",
	PERCENT:       "PERCENT",
	BANG:          "BANG",
	BANG_EQUAL:    "BANG_EQUAL",
	EQUAL:         "EQUAL",
	EQUAL_EQUAL:   "EQUAL_EQUAL",
	GREATER:       "GREATER",
	GREATER_EQUAL: "GREATER_EQUAL",
	LESS:          "LESS",
	LESS_EQUAL:    "LESS_EQUAL",

	IDENTIFIER:    "IDENTIFIER",
	STR_LITERAL:   "STR_LITERAL",
	INT_LITERAL:   "INT_LITERAL",
	FLOAT_LITERAL: "FLOAT_LITERAL",

	AND:    "AND",
	OR:     "OR",
	CLASS:  "CLASS",
	ELSE:   "ELSE",
	FALSE:  "FALSE",
	FOR:    "FOR",
	IF:     "IF",
	NULL:   "NULL",
	RETURN: "RETURN",
	TRUE:   "TRUE",
	WHILE:  "WHILE",

	VOID:     "VOID",
	BOOL:     "BOOL",
	INT:      "INT",
	INT8:     "INT8",
	INT16:    "INT16",
	INT32:    "INT32",
	INT64:    "INT64",
	INT128:   "INT128",
	FLOAT:    "FLOAT",
	FLOAT16:  "FLOAT16",
	FLOAT32:  "FLOAT32",
	FLOAT64:  "FLOAT64",
	FLOAT128: "FLOAT128",
	ASCII:    "ASCII",
	UTF8:     "UTF8",
}

func (tk TokenKind) String() string {
	name, ok := tokenKindNames[tk]
	if !ok {
		panic(fmt.Sprintf("TokenKind.String(): received illegal token kind: %d", tk))
	}
	return name
}

var keywords = map[string]TokenKind{
	"and":    AND,
	"or":     OR,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"if":     IF,
	"null":   NULL,
	"return": RETURN,
	"true":   TRUE,
	"while":  WHILE,
}

var typeNames = map[string]TokenKind{
	"void":     VOID,
	"bool":     BOOL,
	"int":      INT,
	"int8":     INT8,
	"int16":    INT16,
	"int32":    INT32,
	"int64":    INT64,
	"int128":   INT128,
	"float":    FLOAT,
	"float16":  FLOAT16,
	"float32":  FLOAT32,
	"float64":  FLOAT64,
	"float128": FLOAT128,
	"ascii":    ASCII,
	"utf8":     UTF8,
}

// TypeKinds lists the token kinds that name a primitive type.
var TypeKinds = []TokenKind{
	VOID, BOOL,
	INT, INT8, INT16, INT32, INT64, INT128,
	FLOAT, FLOAT16, FLOAT32, FLOAT64, FLOAT128,
	ASCII, UTF8,
}

func (tk TokenKind) IsPrimitiveType() bool {
	return tk >= VOID && tk <= UTF8
}

type Token struct {
	Kind    TokenKind
	Lexeme  string
	Literal any

	Indent   int
	Line     int
	Offset   int
	FileName string
}

// EOFToken is returned by cursors read past either end of their input.
var EOFToken = Token{Kind: EOF}

func (t Token) hasLiteral() bool {
	switch t.Kind {
	case STR_LITERAL, INT_LITERAL, FLOAT_LITERAL:
		return t.Literal != nil
	}

	return false
}

func (t Token) String() string {
	switch {
	case t.hasLiteral():
		return fmt.Sprintf("%s(%v)", t.Kind, t.Literal)
	case t.Kind == IDENTIFIER:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Lexeme)
	}

	return t.Kind.String()
}
