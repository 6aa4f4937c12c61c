package diagnostics

import (
	"fmt"

	"github.com/funvibe/traitscope/internal/token"
)

// Code is a stable diagnostic identifier, usable for tooling and
// suppression independently of message wording.
type Code string

const (
	// ErrT001 — ambiguous associated type: two or more distinct traits in
	// the supertrait closure of one bound set declare the requested name.
	ErrT001 Code = "T001"

	// ErrT002 — the value of an associated type reachable through an
	// explicit-binding bound is required but was not supplied.
	ErrT002 Code = "T002"

	// ErrT003 — manifest error: the trait table or query description
	// could not be loaded or referenced an unknown trait.
	ErrT003 Code = "T003"
)

// DiagnosticError is a user-facing diagnostic with a stable code and a
// source position. It is a regular value, not a control-flow exception:
// resolvers return slices of these and keep going.
type DiagnosticError struct {
	Code    Code
	Token   token.Token
	File    string
	Message string
}

func NewError(code Code, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Token:   tok,
		Message: message,
	}
}

func (e *DiagnosticError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("[%s] %s:%d:%d: %s", e.Code, e.File, e.Token.Line, e.Token.Column, e.Message)
	}
	if e.Token.Line > 0 {
		return fmt.Sprintf("[%s] %d:%d: %s", e.Code, e.Token.Line, e.Token.Column, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
