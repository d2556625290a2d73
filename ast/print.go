package ast

import (
	"fmt"
	"strings"
)

// Print prints stmts to stdout as an indented s-expression, for the `-p`
// debugging flag.
func Print(stmts []Stmt) {
	fmt.Println(Sprint(stmts))
}

// Sprint formats stmts as an indented s-expression.
func Sprint(stmts []Stmt) string {
	var b strings.Builder
	fmt.Fprint(&b, "(program")
	for _, stmt := range stmts {
		fmt.Fprint(&b, "\n  ", sprintStmt(stmt, 1))
	}
	fmt.Fprint(&b, ")")
	return b.String()
}

func sprintStmt(stmt Stmt, depth int) string {
	switch s := stmt.(type) {
	case *Expression:
		return sexpr(depth, "expr-stmt "+sprintExpr(s.Expr))
	case *Print:
		return sexpr(depth, "print "+sprintExpr(s.Expr))
	case *Var:
		if s.Initializer == nil {
			return sexpr(depth, "var "+s.Name.Lexeme)
		}
		return sexpr(depth, "var "+s.Name.Lexeme+" "+sprintExpr(s.Initializer))
	case *Block:
		children := make([]string, len(s.Stmts))
		for i, inner := range s.Stmts {
			children[i] = sprintStmt(inner, depth+1)
		}
		return sexpr(depth, "block", children...)
	case *If:
		children := []string{sprintStmt(s.Then, depth+1)}
		if s.Else != nil {
			children = append(children, sprintStmt(s.Else, depth+1))
		}
		return sexpr(depth, "if "+sprintExpr(s.Condition), children...)
	case *While:
		return sexpr(depth, "while "+sprintExpr(s.Condition), sprintStmt(s.Body, depth+1))
	case *Function:
		params := make([]string, len(s.Params))
		for i, p := range s.Params {
			params[i] = p.Lexeme
		}
		var children []string
		for _, inner := range s.Body {
			children = append(children, sprintStmt(inner, depth+1))
		}
		return sexpr(depth, "fun "+s.Name.Lexeme+" ("+strings.Join(params, " ")+")", children...)
	case *Return:
		if s.Value == nil {
			return sexpr(depth, "return")
		}
		return sexpr(depth, "return "+sprintExpr(s.Value))
	case *Class:
		var children []string
		if s.Superclass != nil {
			children = append(children, "< "+s.Superclass.Name.Lexeme)
		}
		for _, m := range s.Methods {
			children = append(children, sprintStmt(m, depth+1))
		}
		return sexpr(depth, "class "+s.Name.Lexeme, children...)
	default:
		panic(fmt.Sprintf("ast.Print: unhandled statement type %T", stmt))
	}
}

func sprintExpr(expr Expr) string {
	switch e := expr.(type) {
	case *Literal:
		return fmt.Sprint(e.Value)
	case *Variable:
		return e.Name.Lexeme
	case *Assign:
		return "(= " + e.Name.Lexeme + " " + sprintExpr(e.Value) + ")"
	case *Unary:
		return "(" + e.Op.Lexeme + " " + sprintExpr(e.Operand) + ")"
	case *Binary:
		return "(" + e.Op.Lexeme + " " + sprintExpr(e.Left) + " " + sprintExpr(e.Right) + ")"
	case *Logical:
		return "(" + e.Op.Lexeme + " " + sprintExpr(e.Left) + " " + sprintExpr(e.Right) + ")"
	case *Grouping:
		return "(group " + sprintExpr(e.Expr) + ")"
	case *Call:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = sprintExpr(a)
		}
		return "(call " + sprintExpr(e.Callee) + " " + strings.Join(args, " ") + ")"
	case *Get:
		return "(get " + sprintExpr(e.Object) + " " + e.Name.Lexeme + ")"
	case *Set:
		return "(set " + sprintExpr(e.Object) + " " + e.Name.Lexeme + " " + sprintExpr(e.Value) + ")"
	case *This:
		return "this"
	case *Super:
		return "(super " + e.Method.Lexeme + ")"
	default:
		panic(fmt.Sprintf("ast.Print: unhandled expression type %T", expr))
	}
}

func sexpr(depth int, name string, children ...string) string {
	if len(children) == 0 {
		return "(" + name + ")"
	}
	var b strings.Builder
	fmt.Fprint(&b, "(", name)
	indent := strings.Repeat("  ", depth+1)
	for _, child := range children {
		fmt.Fprint(&b, "\n", indent, child)
	}
	fmt.Fprint(&b, ")")
	return b.String()
}
