// Package diag provides the shared diagnostic error type used by every
// phase of the toolchain (lexer, preprocessor, parser, codegen, link).
//
// Grounded on _examples/lookbusy1344-arm_emulator/parser/errors.go: a
// Position-carrying Error plus an ErrorList aggregator, printed one
// diagnostic per line as "path:line:column: error: message" per spec.md 6.
package diag

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/g10toolchain/token"
)

// Kind categorizes a diagnostic by the phase-specific taxonomy in
// spec.md 7.
type Kind int

const (
	Unknown Kind = iota
	LexError
	PreprocessError
	EvalError
	ParseError
	CodegenError
	LinkError
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case PreprocessError:
		return "preprocess error"
	case EvalError:
		return "evaluation error"
	case ParseError:
		return "parse error"
	case CodegenError:
		return "codegen error"
	case LinkError:
		return "link error"
	default:
		return "error"
	}
}

// Error is a single diagnostic, optionally carrying a source position.
type Error struct {
	Pos     token.Position
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: error: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("error: %s", e.Message)
}

// New creates a diagnostic error with a source position.
func New(pos token.Position, kind Kind, message string) *Error {
	return &Error{Pos: pos, Kind: kind, Message: message}
}

// Newf creates a diagnostic error with a formatted message.
func Newf(pos token.Position, kind Kind, format string, args ...any) *Error {
	return New(pos, kind, fmt.Sprintf(format, args...))
}

// NoPos creates a diagnostic error with no source position (e.g. a
// whole-invocation failure like "no object files given").
func NoPos(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// List collects diagnostics from a single phase.
type List struct {
	Errors []*Error
}

// Add appends an error to the list.
func (l *List) Add(err *Error) {
	l.Errors = append(l.Errors, err)
}

// Addf appends a formatted error to the list.
func (l *List) Addf(pos token.Position, kind Kind, format string, args ...any) {
	l.Add(Newf(pos, kind, format, args...))
}

// HasErrors reports whether the list is non-empty.
func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}

// Error implements the error interface, rendering one diagnostic per
// line.
func (l *List) Error() string {
	var sb strings.Builder
	for _, e := range l.Errors {
		sb.WriteString(e.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// First returns the first recorded error, or nil if the list is empty.
func (l *List) First() *Error {
	if len(l.Errors) == 0 {
		return nil
	}
	return l.Errors[0]
}
