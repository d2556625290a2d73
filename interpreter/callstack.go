package interpreter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/nrobinson/golox/token"
)

// callStack tracks the chain of in-progress Call expressions, so that an
// uncaught runtime error can report where it occurred (spec §4.3's call
// mechanics don't require this; it's an ambient diagnostic-quality feature
// the driver surfaces alongside the pinned error message).
type callStack struct {
	frames []stackFrame
}

type stackFrame struct {
	Callee string
	Paren  token.Token
}

func newCallStack() *callStack {
	return &callStack{}
}

func (cs *callStack) Push(callee string, paren token.Token) {
	cs.frames = append(cs.frames, stackFrame{Callee: callee, Paren: paren})
}

func (cs *callStack) Pop() {
	cs.frames = cs.frames[:len(cs.frames)-1]
}

var (
	bold = color.New(color.Bold)
)

// StackTrace formats the call stack most-recent-call-first, padding the line
// columns to a common width so nested calls read cleanly.
func (cs *callStack) StackTrace() string {
	if len(cs.frames) == 0 {
		return ""
	}
	var b strings.Builder
	bold.Fprintln(&b, "Stack Trace (most recent call first):")
	locations := make([]string, len(cs.frames))
	width := 0
	for idx, frame := range cs.frames {
		locations[idx] = fmt.Sprintf("[line %d]", frame.Paren.Line)
		width = max(width, runewidth.StringWidth(locations[idx]))
	}
	for idx := len(cs.frames) - 1; idx >= 0; idx-- {
		location := runewidth.FillRight(locations[idx], width)
		fmt.Fprintf(&b, "  %s in %s\n", location, cs.frames[idx].Callee)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
