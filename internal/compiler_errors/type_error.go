package compiler_errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeUnresolvedType         ErrorCode = "UNRESOLVED_TYPE"
	CodeRecursiveType          ErrorCode = "RECURSIVE_TYPE"
	CodeDuplicateType          ErrorCode = "DUPLICATE_TYPE"
	CodeInvalidMember          ErrorCode = "INVALID_MEMBER"
	CodeBitSizeMismatch        ErrorCode = "BIT_SIZE_MISMATCH"
	CodeUnsupportedBackendType ErrorCode = "UNSUPPORTED_BACKEND_TYPE"
	CodeTableSealed            ErrorCode = "TABLE_SEALED"
	CodeUnsupported            ErrorCode = "UNSUPPORTED"
)

// TypeError is a fatal type-table or backend-type failure.
type TypeError struct {
	Code    ErrorCode
	Name    string
	Message string
	Err     error

	FileName string
	Line     int
}

func NewTypeError(code ErrorCode, name string, format string, args ...any) *TypeError {
	return &TypeError{
		Code:    code,
		Name:    name,
		Message: fmt.Sprintf(format, args...),
	}
}

func WrapTypeError(err error, code ErrorCode, name string, message string) *TypeError {
	return &TypeError{
		Code:    code,
		Name:    name,
		Message: message,
		Err:     err,
	}
}

// At anchors the error to a source location.
func (e *TypeError) At(fileName string, line int) *TypeError {
	e.FileName = fileName
	e.Line = line
	return e
}

func (e *TypeError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Name != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Code, e.Name, e.Message)
	}
	if e.FileName != "" {
		msg = fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TypeError) GetMessage() string {
	return e.Error()
}

func (e *TypeError) Unwrap() error {
	return e.Err
}

func IsCode(err error, code ErrorCode) bool {
	var te *TypeError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}
