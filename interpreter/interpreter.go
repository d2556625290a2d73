// Package interpreter implements the tree-walking evaluator: it executes a
// resolved statement list, maintaining the nested environment chain that
// closures, classes and `super` lookup all depend on.
package interpreter

import (
	"fmt"

	"github.com/nrobinson/golox/ast"
	"github.com/nrobinson/golox/loxerr"
	"github.com/nrobinson/golox/resolver"
	"github.com/nrobinson/golox/token"
)

// Interpreter executes Lox statements against a persistent global
// environment, so that successive calls to Interpret (REPL lines) observe
// each other's top-level declarations.
type Interpreter struct {
	globals  *environment
	locals   resolver.Locals
	replMode bool
	calls    *callStack
}

// Option configures an Interpreter at construction.
type Option func(*Interpreter)

// REPLMode causes a bare expression statement's value to be printed, per
// spec §6's REPL contract.
func REPLMode() Option {
	return func(i *Interpreter) { i.replMode = true }
}

// New constructs an Interpreter with the clock built-in already defined in
// its global environment (spec §4.3's "Built-in clock").
func New(opts ...Option) *Interpreter {
	globals := newEnvironment(nil)
	globals.Define("clock", newClockFunction())
	i := &Interpreter{globals: globals, calls: newCallStack()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Interpret executes stmts using the locals table produced by resolving
// them. Only one kind of error can reach the caller: a runtime error,
// surfaced as a *loxerr.Error by the panic/recover boundary below — the
// one place this interpreter uses host-exception unwinding, reserved for
// the non-ordinary case (spec §9's "Non-local return" note). Ordinary
// control flow (statement execution, return) is threaded through
// stmtResult values instead.
func (i *Interpreter) Interpret(stmts []ast.Stmt, locals resolver.Locals) (err error) {
	i.locals = locals
	i.calls = newCallStack()
	defer func() {
		if r := recover(); r != nil {
			if loxErr, ok := r.(*loxerr.Error); ok {
				err = loxErr
				return
			}
			panic(r)
		}
	}()
	for _, stmt := range stmts {
		i.execStmt(i.globals, stmt)
	}
	return nil
}

// StackTrace returns the formatted call stack as it stood when the most
// recent Interpret call ended: the frames in flight at an uncaught runtime
// error, or "" if that call completed normally. It is for diagnostic
// reporting by the driver.
func (i *Interpreter) StackTrace() string {
	return i.calls.StackTrace()
}

// stmtResult is the union a statement's execution reports: either it ran
// to completion (stmtNormal) or it's unwinding a return (stmtReturn). It's
// threaded explicitly through block and control-flow execution rather than
// raised as an exception, per spec §9's preference for ordinary non-local
// control flow.
type stmtResult interface{ isStmtResult() }

type stmtNormal struct{}

func (stmtNormal) isStmtResult() {}

type stmtReturn struct{ Value loxObject }

func (stmtReturn) isStmtResult() {}

func (i *Interpreter) execStmt(env *environment, stmt ast.Stmt) stmtResult {
	switch s := stmt.(type) {
	case *ast.Var:
		i.execVar(env, s)
	case *ast.Function:
		i.execFunction(env, s)
	case *ast.Class:
		i.execClass(env, s)
	case *ast.Expression:
		i.execExpression(env, s)
	case *ast.Print:
		i.execPrint(env, s)
	case *ast.Block:
		return i.executeBlock(s.Stmts, newEnvironment(env))
	case *ast.If:
		return i.execIf(env, s)
	case *ast.While:
		return i.execWhile(env, s)
	case *ast.Return:
		return i.execReturn(env, s)
	default:
		panic(fmt.Sprintf("interpreter: unexpected statement type %T", stmt))
	}
	return stmtNormal{}
}

func (i *Interpreter) execVar(env *environment, s *ast.Var) {
	var value loxObject = loxNil{}
	if s.Initializer != nil {
		value = i.evalExpr(env, s.Initializer)
	}
	env.Define(s.Name.Lexeme, value)
}

func (i *Interpreter) execFunction(env *environment, s *ast.Function) {
	env.Define(s.Name.Lexeme, &loxFunction{decl: s, closure: env})
}

// execClass implements spec §4.3's Class statement: the class's own name
// is defined as nil before its methods are built, so a method body can
// refer to the class (e.g. for a factory pattern), and so that the final
// env.Assign finds an existing binding to fill in.
func (i *Interpreter) execClass(env *environment, s *ast.Class) {
	var superclass *loxClass
	if s.Superclass != nil {
		superObj := i.evalExpr(env, s.Superclass)
		sc, ok := superObj.(*loxClass)
		if !ok {
			panic(loxerr.NewRuntimeFromToken(s.Superclass.Name, "Superclass must be a class."))
		}
		superclass = sc
	}

	env.Define(s.Name.Lexeme, nil)

	methodEnv := env
	if superclass != nil {
		methodEnv = newEnvironment(env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*loxFunction, len(s.Methods))
	for _, methodDecl := range s.Methods {
		methods[methodDecl.Name.Lexeme] = &loxFunction{
			decl:          methodDecl,
			closure:       methodEnv,
			isInitializer: methodDecl.Name.Lexeme == "init",
		}
	}

	class := &loxClass{name: s.Name.Lexeme, superclass: superclass, methods: methods}
	env.Assign(s.Name, class)
}

func (i *Interpreter) execExpression(env *environment, s *ast.Expression) {
	value := i.evalExpr(env, s.Expr)
	if i.replMode {
		fmt.Println(value.String())
	}
}

func (i *Interpreter) execPrint(env *environment, s *ast.Print) {
	value := i.evalExpr(env, s.Expr)
	fmt.Println(value.String())
}

// executeBlock runs stmts under env, stopping at the first non-normal
// result (a return unwinding through it). Every exit path — normal
// fallthrough, return, or a runtime-error panic propagating past this
// frame — simply lets env go out of scope; there's no environment to
// restore since each block owns a freshly allocated child.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *environment) stmtResult {
	for _, stmt := range stmts {
		if result := i.execStmt(env, stmt); result != (stmtNormal{}) {
			return result
		}
	}
	return stmtNormal{}
}

func (i *Interpreter) execIf(env *environment, s *ast.If) stmtResult {
	if i.evalExpr(env, s.Condition).Truthy() {
		return i.execStmt(env, s.Then)
	} else if s.Else != nil {
		return i.execStmt(env, s.Else)
	}
	return stmtNormal{}
}

func (i *Interpreter) execWhile(env *environment, s *ast.While) stmtResult {
	for i.evalExpr(env, s.Condition).Truthy() {
		if result := i.execStmt(env, s.Body); result != (stmtNormal{}) {
			return result
		}
	}
	return stmtNormal{}
}

func (i *Interpreter) execReturn(env *environment, s *ast.Return) stmtResult {
	var value loxObject = loxNil{}
	if s.Value != nil {
		value = i.evalExpr(env, s.Value)
	}
	return stmtReturn{Value: value}
}

func (i *Interpreter) evalExpr(env *environment, expr ast.Expr) loxObject {
	switch e := expr.(type) {
	case *ast.Literal:
		return i.evalLiteral(e)
	case *ast.Variable:
		return i.lookUpVariable(env, e.Name, e)
	case *ast.Assign:
		return i.evalAssign(env, e)
	case *ast.Unary:
		return i.evalUnary(env, e)
	case *ast.Binary:
		return i.evalBinary(env, e)
	case *ast.Logical:
		return i.evalLogical(env, e)
	case *ast.Grouping:
		return i.evalExpr(env, e.Expr)
	case *ast.Call:
		return i.evalCall(env, e)
	case *ast.Get:
		return i.evalGet(env, e)
	case *ast.Set:
		return i.evalSet(env, e)
	case *ast.This:
		return i.lookUpVariable(env, e.Keyword, e)
	case *ast.Super:
		return i.evalSuper(env, e)
	default:
		panic(fmt.Sprintf("interpreter: unexpected expression type %T", expr))
	}
}

func (i *Interpreter) evalLiteral(e *ast.Literal) loxObject {
	switch v := e.Value.(type) {
	case float64:
		return loxNumber(v)
	case string:
		return loxString(v)
	case bool:
		return loxBool(v)
	case nil:
		return loxNil{}
	default:
		panic(fmt.Sprintf("interpreter: unexpected literal value type %T", e.Value))
	}
}

// lookUpVariable resolves a Variable/This reference using the locals
// table built by the resolver: a recorded depth reads at that depth,
// otherwise the name is a global (spec §4.4).
func (i *Interpreter) lookUpVariable(env *environment, tok token.Token, expr ast.Expr) loxObject {
	if distance, ok := i.locals[expr]; ok {
		return env.GetAt(distance, tok.Lexeme)
	}
	return i.globals.Get(tok)
}

func (i *Interpreter) evalAssign(env *environment, e *ast.Assign) loxObject {
	value := i.evalExpr(env, e.Value)
	if distance, ok := i.locals[e]; ok {
		env.AssignAt(distance, e.Name.Lexeme, value)
	} else {
		i.globals.Assign(e.Name, value)
	}
	return value
}

func (i *Interpreter) evalUnary(env *environment, e *ast.Unary) loxObject {
	operand := i.evalExpr(env, e.Operand)
	switch e.Op.Type {
	case token.Bang:
		return loxBool(!operand.Truthy())
	case token.Minus:
		n, ok := operand.(loxNumber)
		if !ok {
			panic(loxerr.NewRuntimeFromToken(e.Op, "Operand must be a number."))
		}
		return -n
	default:
		panic(fmt.Sprintf("interpreter: unexpected unary operator %s", e.Op.Type))
	}
}

func (i *Interpreter) evalBinary(env *environment, e *ast.Binary) loxObject {
	left := i.evalExpr(env, e.Left)
	right := i.evalExpr(env, e.Right)

	switch e.Op.Type {
	case token.Equal:
		return loxBool(left.Equals(right))
	case token.NotEqual:
		return loxBool(!left.Equals(right))
	case token.Plus:
		return evalPlus(e.Op, left, right)
	}

	switch e.Op.Type {
	case token.Minus, token.Asterisk, token.Slash, token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		ln, lok := left.(loxNumber)
		rn, rok := right.(loxNumber)
		if !lok || !rok {
			panic(loxerr.NewRuntimeFromToken(e.Op, "Operands must be numbers."))
		}
		switch e.Op.Type {
		case token.Minus:
			return ln - rn
		case token.Asterisk:
			return ln * rn
		case token.Slash:
			return ln / rn
		case token.Less:
			return loxBool(ln < rn)
		case token.LessEqual:
			return loxBool(ln <= rn)
		case token.Greater:
			return loxBool(ln > rn)
		case token.GreaterEqual:
			return loxBool(ln >= rn)
		}
	}
	panic(fmt.Sprintf("interpreter: unexpected binary operator %s", e.Op.Type))
}

func evalPlus(op token.Token, left, right loxObject) loxObject {
	if ln, ok := left.(loxNumber); ok {
		if rn, ok := right.(loxNumber); ok {
			return ln + rn
		}
	}
	if ls, ok := left.(loxString); ok {
		if rs, ok := right.(loxString); ok {
			return ls + rs
		}
	}
	panic(loxerr.NewRuntimeFromToken(op, "Operands must be two numbers or two strings."))
}

// evalLogical implements short-circuiting and/or, returning the operand
// value that determined the result rather than a coerced boolean (spec
// §4.3, §8's "and/or return operand").
func (i *Interpreter) evalLogical(env *environment, e *ast.Logical) loxObject {
	left := i.evalExpr(env, e.Left)
	switch e.Op.Type {
	case token.Or:
		if left.Truthy() {
			return left
		}
	case token.And:
		if !left.Truthy() {
			return left
		}
	default:
		panic(fmt.Sprintf("interpreter: unexpected logical operator %s", e.Op.Type))
	}
	return i.evalExpr(env, e.Right)
}

func (i *Interpreter) evalCall(env *environment, e *ast.Call) loxObject {
	callee := i.evalExpr(env, e.Callee)
	args := make([]loxObject, len(e.Args))
	for j, arg := range e.Args {
		args[j] = i.evalExpr(env, arg)
	}

	callable, ok := callee.(loxCallable)
	if !ok {
		panic(loxerr.NewRuntimeFromToken(e.Paren, "Can only call functions and classes."))
	}
	if len(args) != callable.Arity() {
		panic(loxerr.NewRuntimeFromToken(e.Paren, "Expected %d arguments but got %d.", callable.Arity(), len(args)))
	}

	// Pop only on a successful return: a panic unwinding through this call
	// (a runtime error) must leave this frame in place so StackTrace can
	// report it after Interpret's recover catches the error.
	i.calls.Push(callee.String(), e.Paren)
	result := callable.Call(i, args)
	i.calls.Pop()
	return result
}

func (i *Interpreter) evalGet(env *environment, e *ast.Get) loxObject {
	object := i.evalExpr(env, e.Object)
	instance, ok := object.(*loxInstance)
	if !ok {
		panic(loxerr.NewRuntimeFromToken(e.Name, "Only instances have properties."))
	}
	return instance.get(e.Name)
}

func (i *Interpreter) evalSet(env *environment, e *ast.Set) loxObject {
	object := i.evalExpr(env, e.Object)
	instance, ok := object.(*loxInstance)
	if !ok {
		panic(loxerr.NewRuntimeFromToken(e.Name, "Only instances have fields."))
	}
	value := i.evalExpr(env, e.Value)
	instance.set(e.Name, value)
	return value
}

// evalSuper implements spec §4.3's Super semantics: super is read at its
// recorded depth (yielding the superclass), this is read at depth-1
// (yielding the bound instance), and the method is looked up on the
// superclass chain before being bound to that instance.
func (i *Interpreter) evalSuper(env *environment, e *ast.Super) loxObject {
	distance := i.locals[e]
	superclass := env.GetAt(distance, "super").(*loxClass)
	instance := env.GetAt(distance-1, "this").(*loxInstance)
	method, ok := superclass.findMethod(e.Method.Lexeme)
	if !ok {
		panic(loxerr.NewRuntimeFromToken(e.Method, "Undefined property '%s'.", e.Method.Lexeme))
	}
	return method.bind(instance)
}
