// Package resolver implements the static resolution pass described in spec
// §4.2: a single top-down traversal of the statement list that computes, for
// every variable-referencing expression, the lexical depth at which its
// declaration will be found at evaluation time, and that diagnoses a fixed
// set of semantic errors which the parser's grammar can't rule out.
//
// Grounded on the teacher's scope-stack design (golox/interpreter/resolver.go)
// for declare/define/resolve, and on its class-body handling
// (golox/analyse/checksemantics.go) for the this/super/init diagnostics.
package resolver

import (
	"github.com/nrobinson/golox/ast"
	"github.com/nrobinson/golox/loxerr"
	"github.com/nrobinson/golox/token"
)

// Locals maps a variable-referencing expression node (by identity; see
// ast package doc) to the number of environment hops between its evaluation
// site and the scope in which it's declared. An expression absent from the
// map refers to a global.
type Locals map[ast.Expr]int

// Resolve runs the resolver over stmts and returns the locals table. If any
// semantic error is found, Resolve still completes the full traversal (spec
// §4.2 "runs to completion even when it emits errors") and returns every
// error it found alongside a nil Locals.
func Resolve(stmts []ast.Stmt) (Locals, error) {
	r := &resolver{locals: Locals{}}
	r.resolveStmts(stmts)
	if err := r.errs.Err(); err != nil {
		return nil, err
	}
	return r.locals, nil
}

type identState int

const (
	stateDeclared identState = iota
	stateDefined
)

// scope maps a name declared in this lexical scope to whether it has been
// defined yet (spec §4.2's declared/defined marker).
type scope map[string]identState

type funcType int

const (
	funcNone funcType = iota
	funcFunction
	funcMethod
	funcInitializer
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

type resolver struct {
	scopes      []scope
	curFunc     funcType
	curClass    classType
	locals      Locals
	errs        loxerr.Errors
}

func (r *resolver) pushScope() {
	r.scopes = append(r.scopes, scope{})
}

func (r *resolver) popScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) peekScope() scope {
	return r.scopes[len(r.scopes)-1]
}

// declare marks name as declared-but-not-yet-defined in the innermost scope.
// Redeclaration within the same (non-global) scope is an error (spec §4.2);
// the global scope is implicit (not on the stack) and so is never checked
// here, permitting redeclaration at the top level.
func (r *resolver) declare(tok token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	s := r.peekScope()
	if _, ok := s[tok.Lexeme]; ok {
		r.errs.AddFromToken(tok, "Already a variable with this name in this scope.")
		return
	}
	s[tok.Lexeme] = stateDeclared
}

func (r *resolver) define(tok token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.peekScope()[tok.Lexeme] = stateDefined
}

// resolveLocal scans the scope stack innermost-first and, if found, records
// the hop count from the current scope to the declaring one.
func (r *resolver) resolveLocal(expr ast.Expr, tok token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][tok.Lexeme]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
	// Not found on the stack: it's a global, resolved at runtime.
}

func (r *resolver) resolveStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Var:
		r.resolveVarStmt(s)
	case *ast.Function:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, funcFunction)
	case *ast.Class:
		r.resolveClassStmt(s)
	case *ast.Expression:
		r.resolveExpr(s.Expr)
	case *ast.Print:
		r.resolveExpr(s.Expr)
	case *ast.Block:
		r.pushScope()
		r.resolveStmts(s.Stmts)
		r.popScope()
	case *ast.If:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *ast.While:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)
	case *ast.Return:
		r.resolveReturnStmt(s)
	default:
		panic("resolver: unhandled statement type")
	}
}

func (r *resolver) resolveVarStmt(s *ast.Var) {
	r.declare(s.Name)
	if s.Initializer != nil {
		r.resolveExpr(s.Initializer)
	}
	r.define(s.Name)
}

func (r *resolver) resolveFunction(fn *ast.Function, typ funcType) {
	prevFunc := r.curFunc
	r.curFunc = typ
	defer func() { r.curFunc = prevFunc }()

	r.pushScope()
	defer r.popScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
}

func (r *resolver) resolveClassStmt(s *ast.Class) {
	prevClass := r.curClass
	r.curClass = classClass
	defer func() { r.curClass = prevClass }()

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.errs.AddFromToken(s.Superclass.Name, "A class can't inherit from itself.")
		} else {
			r.resolveExpr(s.Superclass)
		}
		r.curClass = classSubclass

		r.pushScope()
		r.peekScope()["super"] = stateDefined
		defer r.popScope()
	}

	r.pushScope()
	r.peekScope()["this"] = stateDefined
	defer r.popScope()

	for _, method := range s.Methods {
		funcTyp := funcMethod
		if method.Name.Lexeme == "init" {
			funcTyp = funcInitializer
		}
		r.resolveFunction(method, funcTyp)
	}
}

func (r *resolver) resolveReturnStmt(s *ast.Return) {
	if r.curFunc == funcNone {
		r.errs.AddFromToken(s.Keyword, "Can't return from top-level code.")
	}
	if s.Value != nil {
		if r.curFunc == funcInitializer {
			r.errs.AddFromToken(s.Keyword, "Can't return a value from an initializer.")
		}
		r.resolveExpr(s.Value)
	}
}

func (r *resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
		// nothing to resolve
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if state, ok := r.peekScope()[e.Name.Lexeme]; ok && state == stateDeclared {
				r.errs.AddFromToken(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name)
	case *ast.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name)
	case *ast.Unary:
		r.resolveExpr(e.Operand)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Grouping:
		r.resolveExpr(e.Expr)
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}
	case *ast.Get:
		r.resolveExpr(e.Object)
	case *ast.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *ast.This:
		if r.curClass == classNone {
			r.errs.AddFromToken(e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, e.Keyword)
	case *ast.Super:
		switch r.curClass {
		case classNone:
			r.errs.AddFromToken(e.Keyword, "Can't use 'super' outside of a class.")
		case classClass:
			r.errs.AddFromToken(e.Keyword, "Can't use 'super' in a class with no superclass.")
		default:
			r.resolveLocal(e, e.Keyword)
		}
	default:
		panic("resolver: unhandled expression type")
	}
}
