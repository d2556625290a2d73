package parser_test

import (
	"strings"
	"testing"

	"github.com/nrobinson/golox/ast"
	"github.com/nrobinson/golox/parser"
)

// sprint parses src and renders the result with ast.Sprint, so test cases
// can assert against a readable s-expression rather than constructing
// expected AST literals by hand.
func sprint(t *testing.T, src string) string {
	t.Helper()
	stmts, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) returned unexpected error: %s", src, err)
	}
	return ast.Sprint(stmts)
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "arithmetic precedence",
			src:  "1 + 2 * 3;",
			want: "(+ 1 (* 2 3))",
		},
		{
			name: "unary binds tighter than multiplication",
			src:  "-1 * 2;",
			want: "(* (- 1) 2)",
		},
		{
			name: "comparison binds tighter than equality",
			src:  "1 < 2 == true;",
			want: "(== (< 1 2) true)",
		},
		{
			name: "assignment is right-associative",
			src:  "a = b = 1;",
			want: "(= a (= b 1))",
		},
		{
			name: "logical or/and kept distinct from binary",
			src:  "a or b and c;",
			want: "(or a (and b c))",
		},
		{
			name: "grouping",
			src:  "(1 + 2) * 3;",
			want: "(* (group (+ 1 2)) 3)",
		},
		{
			name: "call and get chain",
			src:  "a.b().c;",
			want: "(get (call (get a b) ) c)",
		},
		{
			name: "super call",
			src:  "class A < B { m() { super.n(); } }",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want == "" {
				// Smoke-test only: assert it parses without error.
				sprint(t, tt.src)
				return
			}
			got := sprint(t, tt.src)
			wantLine := "(program\n  (expr-stmt " + tt.want + "))"
			if got != wantLine {
				t.Errorf("Parse(%q) =\n%s\nwant:\n%s", tt.src, got, wantLine)
			}
		})
	}
}

func TestForDesugarsToWhile(t *testing.T) {
	forSrc := `for (var i = 0; i < 3; i = i + 1) print i;`
	whileSrc := `{ var i = 0; while (i < 3) { print i; i = i + 1; } }`

	got := sprint(t, forSrc)
	want := sprint(t, whileSrc)
	if got != want {
		t.Errorf("desugared for-loop =\n%s\nwant (hand-written while):\n%s", got, want)
	}
}

func TestForOmittedClauses(t *testing.T) {
	got := sprint(t, "for (;;) print 1;")
	if !strings.Contains(got, "(while true") {
		t.Errorf("for(;;) should desugar to a while(true) loop, got:\n%s", got)
	}
}

func TestInvalidAssignmentTargetIsNonFatal(t *testing.T) {
	_, err := parser.Parse("1 = 2;")
	if err == nil {
		t.Fatal("Parse() = nil error, want non-nil for invalid assignment target")
	}
	if !strings.Contains(err.Error(), "Invalid assignment target") {
		t.Errorf("Parse() error = %q, want to contain %q", err, "Invalid assignment target")
	}
}

func TestSynchronizesAfterParseError(t *testing.T) {
	// The first statement fails to parse (missing initializer expression), but
	// synchronisation should let the second still be collected.
	stmts, err := parser.Parse(`var a = ; print "ok";`)
	if err == nil {
		t.Fatal("Parse() = nil error, want non-nil")
	}
	if len(stmts) != 1 {
		t.Fatalf("Parse() recovered %d statements, want 1 (the print)", len(stmts))
	}
}

func TestParameterLimit(t *testing.T) {
	var params []string
	for i := range 256 {
		params = append(params, "p"+string(rune('a'+i%26)))
	}
	src := "fun f(" + strings.Join(params, ", ") + ") {}"
	_, err := parser.Parse(src)
	if err == nil {
		t.Fatal("Parse() = nil error, want non-nil for over 255 parameters")
	}
	if !strings.Contains(err.Error(), "Can't have more than 255 parameters") {
		t.Errorf("Parse() error = %q, want to contain parameter-limit message", err)
	}
}
