package interpreter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nrobinson/golox/ast"
	"github.com/nrobinson/golox/loxerr"
	"github.com/nrobinson/golox/token"
)

// loxObject is a runtime value: nil, a boolean, a number, a string, or a
// callable (function, bound method, class, or the clock built-in) per
// spec §3's tagged Value variant.
type loxObject interface {
	String() string
	Truthy() bool
	Equals(other loxObject) bool
}

// loxCallable is implemented by every object that can appear as a Call
// expression's callee: user functions, bound methods, classes (construction)
// and built-ins.
type loxCallable interface {
	loxObject
	Arity() int
	Call(interp *Interpreter, args []loxObject) loxObject
}

type loxNil struct{}

var _ loxObject = loxNil{}

func (loxNil) String() string        { return "nil" }
func (loxNil) Truthy() bool          { return false }
func (loxNil) Equals(o loxObject) bool {
	_, ok := o.(loxNil)
	return ok
}

type loxBool bool

var _ loxObject = loxBool(false)

func (b loxBool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b loxBool) Truthy() bool { return bool(b) }
func (b loxBool) Equals(o loxObject) bool {
	ob, ok := o.(loxBool)
	return ok && b == ob
}

type loxNumber float64

var _ loxObject = loxNumber(0)

// String strips a trailing ".0" per spec §6's print format.
func (n loxNumber) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}
func (n loxNumber) Truthy() bool { return true }
func (n loxNumber) Equals(o loxObject) bool {
	on, ok := o.(loxNumber)
	return ok && n == on
}

type loxString string

var _ loxObject = loxString("")

func (s loxString) String() string { return string(s) }
func (s loxString) Truthy() bool   { return true }
func (s loxString) Equals(o loxObject) bool {
	os, ok := o.(loxString)
	return ok && s == os
}

// loxFunction is a user-defined function or method value: a declaration
// paired with the environment captured at definition time (spec §3's
// LoxFunction). isInitializer marks methods named "init", which always
// return their bound instance regardless of body (spec §3, §4.3).
type loxFunction struct {
	decl          *ast.Function
	closure       *environment
	isInitializer bool
}

var _ loxCallable = (*loxFunction)(nil)

func (f *loxFunction) String() string { return fmt.Sprintf("<fn %s>", f.decl.Name.Lexeme) }
func (f *loxFunction) Truthy() bool   { return true }
func (f *loxFunction) Equals(o loxObject) bool {
	of, ok := o.(*loxFunction)
	return ok && f == of
}
func (f *loxFunction) Arity() int { return len(f.decl.Params) }

func (f *loxFunction) Call(interp *Interpreter, args []loxObject) loxObject {
	env := newEnvironment(f.closure)
	for i, param := range f.decl.Params {
		env.Define(param.Lexeme, args[i])
	}
	result := interp.executeBlock(f.decl.Body, env)
	if f.isInitializer {
		return f.closure.GetAt(0, "this")
	}
	if ret, ok := result.(stmtReturn); ok {
		return ret.Value
	}
	return loxNil{}
}

// bind returns a copy of the method whose closure is extended by one
// environment binding "this" to instance (spec §3's invariant for a
// method's closure chain, §4.3's "Method binding").
func (f *loxFunction) bind(instance *loxInstance) *loxFunction {
	env := newEnvironment(f.closure)
	env.Define("this", instance)
	return &loxFunction{decl: f.decl, closure: env, isInitializer: f.isInitializer}
}

// nativeFunction is a built-in callable implemented in Go, such as clock.
type nativeFunction struct {
	name  string
	arity int
	fn    func(args []loxObject) loxObject
}

var _ loxCallable = (*nativeFunction)(nil)

func (n *nativeFunction) String() string { return "<native fn>" }
func (n *nativeFunction) Truthy() bool   { return true }
func (n *nativeFunction) Equals(o loxObject) bool {
	on, ok := o.(*nativeFunction)
	return ok && n == on
}
func (n *nativeFunction) Arity() int { return n.arity }
func (n *nativeFunction) Call(_ *Interpreter, args []loxObject) loxObject {
	return n.fn(args)
}

func newClockFunction() *nativeFunction {
	return &nativeFunction{
		name:  "clock",
		arity: 0,
		fn: func([]loxObject) loxObject {
			return loxNumber(float64(time.Now().UnixNano()) / 1e9)
		},
	}
}

// loxClass is a class value: a name, an optional superclass, and its own
// method table (spec §3's LoxClass). Calling a class constructs an
// instance (spec §4.3's "Class called as function").
type loxClass struct {
	name       string
	superclass *loxClass
	methods    map[string]*loxFunction
}

var _ loxCallable = (*loxClass)(nil)

func (c *loxClass) String() string { return c.name }
func (c *loxClass) Truthy() bool   { return true }
func (c *loxClass) Equals(o loxObject) bool {
	oc, ok := o.(*loxClass)
	return ok && c == oc
}

// findMethod looks up name on this class's own table, else recurses to the
// superclass (spec §4.3's findMethod).
func (c *loxClass) findMethod(name string) (*loxFunction, bool) {
	if m, ok := c.methods[name]; ok {
		return m, true
	}
	if c.superclass != nil {
		return c.superclass.findMethod(name)
	}
	return nil, false
}

// Arity is the initializer's arity, or 0 if the class has none (spec §4.3).
func (c *loxClass) Arity() int {
	if init, ok := c.findMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

func (c *loxClass) Call(interp *Interpreter, args []loxObject) loxObject {
	instance := &loxInstance{class: c, fields: map[string]loxObject{}}
	if init, ok := c.findMethod("init"); ok {
		init.bind(instance).Call(interp, args)
	}
	return instance
}

// loxInstance is an instance of a loxClass, holding its own field values
// (spec §3's LoxInstance). Methods live on the class and are bound lazily
// on property access, never copied per instance (spec §9).
type loxInstance struct {
	class  *loxClass
	fields map[string]loxObject
}

var _ loxObject = (*loxInstance)(nil)

func (i *loxInstance) String() string { return i.class.name + " instance" }
func (i *loxInstance) Truthy() bool   { return true }
func (i *loxInstance) Equals(o loxObject) bool {
	oi, ok := o.(*loxInstance)
	return ok && i == oi
}

// get implements Get expression semantics (spec §4.3): fields shadow
// methods, a found method is bound to the instance before being returned.
func (i *loxInstance) get(name token.Token) loxObject {
	if v, ok := i.fields[name.Lexeme]; ok {
		return v
	}
	if m, ok := i.class.findMethod(name.Lexeme); ok {
		return m.bind(i)
	}
	panic(loxerr.NewRuntimeFromToken(name, "Undefined property '%s'.", name.Lexeme))
}

func (i *loxInstance) set(name token.Token, value loxObject) {
	i.fields[name.Lexeme] = value
}
