// Package diagnostics describes errors reported to the user while
// compiling or running a program.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/vela/internal/token"
)

// ErrorCode classifies a diagnostic.
type ErrorCode string

const (
	ErrL001 ErrorCode = "L001" // lexical error
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // expression expected
	ErrP003 ErrorCode = "P003" // nesting too deep
	ErrC001 ErrorCode = "C001" // too many constants
	ErrC002 ErrorCode = "C002" // needs more stack than the VM has
	ErrR001 ErrorCode = "R001" // runtime error
)

// DiagnosticError is one reported problem, tied to a source line.
type DiagnosticError struct {
	Code    ErrorCode
	Line    int
	Where   string // " at 'x'", " at end", or empty
	Message string
	File    string
}

// NewError builds a diagnostic located at tok. source is the buffer tok was
// scanned from; it is only used to render the offending lexeme.
func NewError(code ErrorCode, tok token.Token, source, message string) *DiagnosticError {
	where := ""
	switch tok.Type {
	case token.EOF:
		where = " at end"
	case token.ILLEGAL:
		// the message already describes the token
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme(source))
	}
	return &DiagnosticError{
		Code:    code,
		Line:    tok.Line,
		Where:   where,
		Message: message,
	}
}

// NewRuntimeError builds the diagnostic for a runtime error on line.
func NewRuntimeError(line int, message string) *DiagnosticError {
	return &DiagnosticError{
		Code:    ErrR001,
		Line:    line,
		Message: message,
	}
}

// Error renders the diagnostic as "[line N] Error at 'x': message".
// Runtime errors render as "message\n[line N] in script".
func (e *DiagnosticError) Error() string {
	if e.Code == ErrR001 {
		return fmt.Sprintf("%s\n[line %d] in script", e.Message, e.Line)
	}
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(" ")
	}
	fmt.Fprintf(&sb, "[line %d] Error%s: %s", e.Line, e.Where, e.Message)
	return sb.String()
}

// Join renders a list of diagnostics one per line.
func Join(errs []*DiagnosticError) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
