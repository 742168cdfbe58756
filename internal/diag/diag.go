// Package diag provides diagnostic (error/warning) types for the interpreter.
package diag

import (
	"fmt"

	"golox/internal/span"
)

// Phase identifies which stage of the pipeline produced a diagnostic.
type Phase int

const (
	Scan Phase = iota
	Parse
	Resolve
	Runtime
)

func (p Phase) String() string {
	switch p {
	case Scan:
		return "scan"
	case Parse:
		return "parse"
	case Resolve:
		return "resolve"
	case Runtime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic represents a structured error record from any pipeline phase.
type Diagnostic struct {
	Phase    Phase     `json:"phase"`    // pipeline stage that reported it
	Code     string    `json:"code"`     // stable error code, e.g. "E1001"
	Severity Severity  `json:"severity"` // error or warning
	Message  string    `json:"message"`  // human-readable description
	Span     span.Span `json:"span"`     // source location
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	loc := fmt.Sprintf("%d:%d", d.Span.Start.Line, d.Span.Start.Column)
	return fmt.Sprintf("[%s] %s %s at %s: %s", d.Code, d.Phase, d.Severity, loc, d.Message)
}

// Errorf creates an error diagnostic at the given span.
func Errorf(phase Phase, code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Phase:    phase,
		Code:     code,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}
