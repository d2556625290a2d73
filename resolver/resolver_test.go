package resolver_test

import (
	"strings"
	"testing"

	"github.com/nrobinson/golox/parser"
	"github.com/nrobinson/golox/resolver"
)

func resolve(t *testing.T, src string) error {
	t.Helper()
	stmts, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) returned unexpected error: %s", src, err)
	}
	_, err = resolver.Resolve(stmts)
	return err
}

func TestResolveValidProgramsSucceed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "global redeclaration is allowed", src: `var a = 1; var a = 2;`},
		{name: "closure over enclosing local", src: `fun outer() { var a = 1; fun inner() { return a; } return inner; }`},
		{name: "class with superclass and super call", src: `class A { m() {} } class B < A { m() { super.m(); } }`},
		{name: "return inside function", src: `fun f() { return 1; }`},
		{name: "bare return inside initializer", src: `class A { init() { return; } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := resolve(t, tt.src); err != nil {
				t.Errorf("Resolve(%q) returned unexpected error: %s", tt.src, err)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{
			name:    "redeclaration in same block scope",
			src:     `{ var a = 1; var a = 2; }`,
			wantMsg: "Already a variable with this name in this scope.",
		},
		{
			name:    "read local in its own initializer",
			src:     `{ var a = a; }`,
			wantMsg: "Can't read local variable in its own initializer.",
		},
		{
			name:    "return from top-level code",
			src:     `return 1;`,
			wantMsg: "Can't return from top-level code.",
		},
		{
			name:    "return a value from an initializer",
			src:     `class A { init() { return 1; } }`,
			wantMsg: "Can't return a value from an initializer.",
		},
		{
			name:    "this outside a class",
			src:     `print this;`,
			wantMsg: "Can't use 'this' outside of a class.",
		},
		{
			name:    "super outside a class",
			src:     `fun f() { super.m(); }`,
			wantMsg: "Can't use 'super' outside of a class.",
		},
		{
			name:    "super in a class with no superclass",
			src:     `class A { m() { super.m(); } }`,
			wantMsg: "Can't use 'super' in a class with no superclass.",
		},
		{
			name:    "class inherits from itself",
			src:     `class A < A {}`,
			wantMsg: "A class can't inherit from itself.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolve(t, tt.src)
			if err == nil {
				t.Fatalf("Resolve(%q) = nil error, want one containing %q", tt.src, tt.wantMsg)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Resolve(%q) error = %q, want to contain %q", tt.src, err, tt.wantMsg)
			}
		})
	}
}

func TestResolveRunsToCompletionAcrossMultipleErrors(t *testing.T) {
	src := `this; super.m();`
	err := resolve(t, src)
	if err == nil {
		t.Fatal("Resolve() = nil error, want non-nil")
	}
	if got := strings.Count(err.Error(), "\n") + 1; got != 2 {
		t.Errorf("Resolve() reported %d errors, want 2 (both this and super are invalid here):\n%s", got, err)
	}
}
