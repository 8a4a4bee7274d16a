package compiler_errors

import (
	"fmt"
	"sync"
)

type Phase int

const (
	PhaseLexical Phase = iota
	PhaseSyntax
	PhaseSemantic
	PhaseType
)

func (p Phase) String() string {
	switch p {
	case PhaseLexical:
		return "lexical"
	case PhaseSyntax:
		return "syntax"
	case PhaseSemantic:
		return "semantic"
	case PhaseType:
		return "type"
	default:
		panic(fmt.Sprintf("Phase.String(): received illegal phase: %d", p))
	}
}

type CompilerError interface {
	GetMessage() string
}

// PositionedError is a CompilerError anchored to a place in a source file.
type PositionedError interface {
	CompilerError
	GetPhase() Phase
	GetFileName() string
	GetLine() int
	GetOffset() int
}

type ErrorHandler interface {
	AddError(err CompilerError)
	HasErrors() bool
	Errors() []CompilerError
}

type CompilerErrorHandler struct {
	mu     sync.Mutex
	errors []CompilerError
}

func NewErrorHandler() ErrorHandler {
	return &CompilerErrorHandler{
		errors: make([]CompilerError, 0),
	}
}

func (eh *CompilerErrorHandler) AddError(err CompilerError) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	eh.errors = append(eh.errors, err)
}

func (eh *CompilerErrorHandler) HasErrors() bool {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	return len(eh.errors) > 0
}

// Errors returns a copy of the collected errors in the order they were added.
func (eh *CompilerErrorHandler) Errors() []CompilerError {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	errs := make([]CompilerError, len(eh.errors))
	copy(errs, eh.errors)
	return errs
}

type SourceError struct {
	Phase   Phase
	Message string

	FileName string
	Line     int
	Offset   int
}

func NewSourceError(phase Phase, fileName string, line, offset int, message string) *SourceError {
	return &SourceError{
		Phase:   phase,
		Message: message,

		FileName: fileName,
		Line:     line,
		Offset:   offset,
	}
}

func (e *SourceError) GetMessage() string  { return e.Message }
func (e *SourceError) GetPhase() Phase     { return e.Phase }
func (e *SourceError) GetFileName() string { return e.FileName }
func (e *SourceError) GetLine() int        { return e.Line }
func (e *SourceError) GetOffset() int      { return e.Offset }

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s:%d: %s error: %s", e.FileName, e.Line, e.Phase, e.Message)
}
