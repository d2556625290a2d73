// Package loxerr defines the diagnostic error type shared by the scanner,
// parser, resolver and evaluator.
package loxerr

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/nrobinson/golox/token"
)

var colorEnabled = term.IsTerminal(int(os.Stderr.Fd()))

var (
	bold = color.New(color.Bold)
	red  = color.New(color.FgRed)
)

func colorSprint(c *color.Color, a ...any) string {
	if !colorEnabled {
		return fmt.Sprint(a...)
	}
	return c.Sprint(a...)
}

// Error is a diagnostic produced during scanning, parsing, static resolution,
// or evaluation of a Lox program.
//
// Compile-time errors format as "[line N] Error<where>: <message>".
// Runtime errors format as "<message>\n[line N]", per the Lox diagnostic
// contract.
type Error struct {
	Line    int
	Where   string // e.g. " at 'foo'" or " at end"; empty if not applicable
	Msg     string
	Runtime bool
}

// New creates a compile-time [*Error] reported against the given line, with
// no token-specific location.
func New(line int, format string, args ...any) error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// NewFromToken creates a compile-time [*Error] which points at tok.
func NewFromToken(tok token.Token, format string, args ...any) error {
	where := fmt.Sprintf(" at '%s'", tok.Lexeme)
	if tok.Type == token.EOF {
		where = " at end"
	}
	return &Error{Line: tok.Line, Where: where, Msg: fmt.Sprintf(format, args...)}
}

// NewRuntime creates a runtime [*Error] which occurred at the given line.
func NewRuntime(line int, format string, args ...any) error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...), Runtime: true}
}

// NewRuntimeFromToken creates a runtime [*Error] which occurred at tok's
// line. Runtime errors deep within built-ins should use the nearest call
// site's token, per spec.
func NewRuntimeFromToken(tok token.Token, format string, args ...any) error {
	return NewRuntime(tok.Line, format, args...)
}

func (e *Error) Error() string {
	if e.Runtime {
		return fmt.Sprintf("%s\n[line %d]", e.Msg, e.Line)
	}
	prefix := colorSprint(bold, fmt.Sprintf("[line %d]", e.Line))
	return fmt.Sprintf("%s %s%s: %s", prefix, colorSprint(red, "Error"), e.Where, e.Msg)
}

// Errors is a list of [*Error]s, used to accumulate diagnostics from a single
// phase (scanning, parsing, resolving) without failing fast.
type Errors []*Error

// Add appends a compile-time error to the list.
func (e *Errors) Add(line int, format string, args ...any) {
	*e = append(*e, New(line, format, args...).(*Error))
}

// AddFromToken appends a compile-time error pointing at tok to the list.
func (e *Errors) AddFromToken(tok token.Token, format string, args ...any) {
	*e = append(*e, NewFromToken(tok, format, args...).(*Error))
}

// Err sorts the accumulated errors by line and joins them, returning nil if
// the list is empty. A caller that stores the result in an `error` should use
// this method rather than returning Errors directly, so that an empty list
// becomes an untyped nil.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	slices.SortStableFunc(e, func(a, b *Error) int { return a.Line - b.Line })
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, "\n"))
}
