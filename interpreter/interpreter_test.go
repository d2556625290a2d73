package interpreter_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/nrobinson/golox/interpreter"
	"github.com/nrobinson/golox/parser"
	"github.com/nrobinson/golox/resolver"
)

// run scans, parses, resolves and evaluates src against a fresh
// interpreter, capturing whatever it writes to stdout. It fails the test
// immediately on any compile-time error, since these tests exercise
// evaluator semantics, not the parser/resolver.
func run(t *testing.T, src string) (stdout string, err error) {
	t.Helper()

	stmts, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) returned unexpected error: %s", src, err)
	}
	locals, err := resolver.Resolve(stmts)
	if err != nil {
		t.Fatalf("Resolve(%q) returned unexpected error: %s", src, err)
	}

	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("creating pipe: %s", pipeErr)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	interp := interpreter.New()
	err = interp.Interpret(stmts, locals)

	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)

	return buf.String(), err
}

func TestEndToEndScenarios(t *testing.T) {
	// Literal expected stdout scenarios.
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "arithmetic", src: `print 1 + 2;`, want: "3\n"},
		{
			name: "global redeclaration shadowing at top level",
			src:  `var a = "hi"; var a = "bye"; print a;`,
			want: "bye\n",
		},
		{
			name: "recursive fibonacci",
			src:  `fun fib(n) { if (n < 2) return n; return fib(n-1) + fib(n-2); } print fib(10);`,
			want: "55\n",
		},
		{
			name: "method call",
			src:  `class Greeter { greet(name) { print "hi " + name; } } Greeter().greet("world");`,
			want: "hi world\n",
		},
		{
			name: "super call",
			src: `class A { m() { print "A"; } } class B < A { m() { super.m(); print "B"; } } B().m();`,
			want: "A\nB\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.src)
			if err != nil {
				t.Fatalf("Interpret(%q) returned unexpected error: %s", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("Interpret(%q) stdout = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestClosureStability(t *testing.T) {
	src := `
fun makeCounter() {
  var i = 0;
  fun c() {
    i = i + 1;
    return i;
  }
  return c;
}
var counter1 = makeCounter();
var counter2 = makeCounter();
print counter1();
print counter1();
print counter2();
`
	got, err := run(t, src)
	if err != nil {
		t.Fatalf("Interpret() returned unexpected error: %s", err)
	}
	want := "1\n2\n1\n"
	if got != want {
		t.Errorf("Interpret() stdout = %q, want %q (two counters must be independent)", got, want)
	}
}

func TestShadowingRestoresOuterBindingOnBlockExit(t *testing.T) {
	src := `
var x = 1;
{
  var x = 2;
  print x;
}
print x;
`
	got, err := run(t, src)
	if err != nil {
		t.Fatalf("Interpret() returned unexpected error: %s", err)
	}
	if got != "2\n1\n" {
		t.Errorf("Interpret() stdout = %q, want %q", got, "2\n1\n")
	}
}

func TestInitAlwaysReturnsThis(t *testing.T) {
	src := `
class A {
  init() {
    return;
  }
}
var a = A();
print a.init() == a;
`
	got, err := run(t, src)
	if err != nil {
		t.Fatalf("Interpret() returned unexpected error: %s", err)
	}
	if got != "true\n" {
		t.Errorf("Interpret() stdout = %q, want %q", got, "true\n")
	}
}

func TestAndOrReturnDeterminingOperand(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{src: `print 1 or 2;`, want: "1\n"},
		{src: `print nil or "x";`, want: "x\n"},
		{src: `print 1 and 2;`, want: "2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := run(t, tt.src)
			if err != nil {
				t.Fatalf("Interpret(%q) returned unexpected error: %s", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("Interpret(%q) stdout = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestAndShortCircuitsWithoutEvaluatingRight(t *testing.T) {
	// If "and" didn't short-circuit, calling the undefined crash() would
	// raise a runtime error instead of silently yielding nil.
	got, err := run(t, `print nil and crash();`)
	if err != nil {
		t.Fatalf("Interpret() returned unexpected error: %s", err)
	}
	if got != "nil\n" {
		t.Errorf("Interpret() stdout = %q, want %q", got, "nil\n")
	}
}

func TestLeftToRightArgumentEvaluation(t *testing.T) {
	src := `
fun tag(n) {
  print n;
  return n;
}
fun f(a, b, c) {}
f(tag(1), tag(2), tag(3));
`
	got, err := run(t, src)
	if err != nil {
		t.Fatalf("Interpret() returned unexpected error: %s", err)
	}
	if got != "1\n2\n3\n" {
		t.Errorf("Interpret() stdout = %q, want %q", got, "1\n2\n3\n")
	}
}

func TestNumberPrintingStripsTrailingZero(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{src: `print 3.0;`, want: "3\n"},
		{src: `print 3.5;`, want: "3.5\n"},
		{src: `print nil;`, want: "nil\n"},
		{src: `print true;`, want: "true\n"},
	}
	for _, tt := range tests {
		got, err := run(t, tt.src)
		if err != nil {
			t.Fatalf("Interpret(%q) returned unexpected error: %s", tt.src, err)
		}
		if got != tt.want {
			t.Errorf("Interpret(%q) stdout = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{name: "undefined global variable", src: `print x;`, wantMsg: "Undefined variable 'x'."},
		{name: "add number to bool", src: `print 1 + true;`, wantMsg: "Operands must be two numbers or two strings."},
		{name: "subtract non-numbers", src: `print "a" - "b";`, wantMsg: "Operands must be numbers."},
		{name: "negate a string", src: `print -"a";`, wantMsg: "Operand must be a number."},
		{name: "call a number", src: `var x = 1; x();`, wantMsg: "Can only call functions and classes."},
		{name: "wrong arity", src: `fun f(a) {} f();`, wantMsg: "Expected 1 arguments but got 0."},
		{name: "get on a non-instance", src: `"abc".length;`, wantMsg: "Only instances have properties."},
		{name: "set on a non-instance", src: `"abc".length = 1;`, wantMsg: "Only instances have fields."},
		{name: "undefined property", src: `class A {} A().missing;`, wantMsg: "Undefined property 'missing'."},
		{name: "non-class superclass", src: `var NotAClass = 1; class A < NotAClass {}`, wantMsg: "Superclass must be a class."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.src)
			if err == nil {
				t.Fatalf("Interpret(%q) = nil error, want one containing %q", tt.src, tt.wantMsg)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Interpret(%q) error = %q, want to contain %q", tt.src, err, tt.wantMsg)
			}
		})
	}
}

func TestUninitializedGlobalReadsAsNil(t *testing.T) {
	got, err := run(t, `var x; print x;`)
	if err != nil {
		t.Fatalf("Interpret() returned unexpected error: %s", err)
	}
	if got != "nil\n" {
		t.Errorf("Interpret() stdout = %q, want %q", got, "nil\n")
	}
}

func TestStackTraceSurvivesARuntimeError(t *testing.T) {
	src := `
fun crash() {
  return 1 + true;
}
fun wrapper() {
  crash();
}
wrapper();
`
	stmts, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %s", err)
	}
	locals, err := resolver.Resolve(stmts)
	if err != nil {
		t.Fatalf("Resolve() returned unexpected error: %s", err)
	}

	interp := interpreter.New()
	if err := interp.Interpret(stmts, locals); err == nil {
		t.Fatal("Interpret() = nil error, want a runtime error from 1 + true")
	}

	trace := interp.StackTrace()
	if trace == "" {
		t.Fatal("StackTrace() = \"\", want the in-flight call frames from the failing call")
	}
	if !strings.Contains(trace, "crash") || !strings.Contains(trace, "wrapper") {
		t.Errorf("StackTrace() = %q, want it to mention both crash and wrapper", trace)
	}
}

func TestStackTraceEmptyAfterSuccessfulInterpret(t *testing.T) {
	src := `fun f() { return 1; } f();`
	stmts, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %s", err)
	}
	locals, err := resolver.Resolve(stmts)
	if err != nil {
		t.Fatalf("Resolve() returned unexpected error: %s", err)
	}

	interp := interpreter.New()
	if err := interp.Interpret(stmts, locals); err != nil {
		t.Fatalf("Interpret() returned unexpected error: %s", err)
	}
	if trace := interp.StackTrace(); trace != "" {
		t.Errorf("StackTrace() = %q, want \"\" after every call returned normally", trace)
	}
}

func TestDuplicateMethodNamesLastWins(t *testing.T) {
	src := `
class A {
  m() { print "first"; }
  m() { print "second"; }
}
A().m();
`
	got, err := run(t, src)
	if err != nil {
		t.Fatalf("Interpret() returned unexpected error: %s", err)
	}
	if got != "second\n" {
		t.Errorf("Interpret() stdout = %q, want %q", got, "second\n")
	}
}
