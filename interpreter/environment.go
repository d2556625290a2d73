package interpreter

import (
	"github.com/nrobinson/golox/loxerr"
	"github.com/nrobinson/golox/token"
)

// environment is a single lexical scope: a set of name-to-value bindings
// and a link to the enclosing scope. The chain from the current call down
// to the global environment mirrors the nesting of blocks, functions and
// closures at evaluation time.
//
// A binding present in values with a nil loxObject means the name has been
// declared but never assigned a value (spec §3's "undefined" sentinel); a
// binding holding loxNil{} means it holds the Lox value nil. The two are
// never conflated: Go's nil interface value only ever appears as the
// sentinel, since loxNil{} (not Go nil) is what evaluating `nil` produces.
type environment struct {
	parent *environment
	values map[string]loxObject
}

func newEnvironment(parent *environment) *environment {
	return &environment{parent: parent, values: make(map[string]loxObject)}
}

// Define declares name in this environment and binds it to value. Passing a
// Go nil loxObject (rather than loxNil{}) declares name without a value:
// reading it before assignment yields Lox nil rather than a runtime error
// (spec §9's decision for uninitialized globals, extended uniformly to
// uninitialized locals). execClass uses this to declare a class's own name
// before its methods are built.
func (e *environment) Define(name string, value loxObject) {
	e.values[name] = value
}

// Get looks up name starting in this environment and walking outward,
// reporting a runtime error if name was never declared anywhere on the
// chain.
func (e *environment) Get(tok token.Token) loxObject {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[tok.Lexeme]; ok {
			if v == nil {
				return loxNil{}
			}
			return v
		}
	}
	panic(loxerr.NewRuntimeFromToken(tok, "Undefined variable '%s'.", tok.Lexeme))
}

// GetAt looks up name in the environment distance hops up the parent
// chain, per the resolver's locals table. The resolver already proved the
// binding exists there, so this never needs to report a user-facing error.
func (e *environment) GetAt(distance int, name string) loxObject {
	v := e.ancestor(distance).values[name]
	if v == nil {
		return loxNil{}
	}
	return v
}

// Assign sets an existing binding of name to value, searching outward from
// this environment. It reports a runtime error if name was never declared
// anywhere on the chain.
func (e *environment) Assign(tok token.Token, value loxObject) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[tok.Lexeme]; ok {
			env.values[tok.Lexeme] = value
			return
		}
	}
	panic(loxerr.NewRuntimeFromToken(tok, "Undefined variable '%s'.", tok.Lexeme))
}

// AssignAt is the resolved-distance counterpart to Assign.
func (e *environment) AssignAt(distance int, name string, value loxObject) {
	e.ancestor(distance).values[name] = value
}

func (e *environment) ancestor(distance int) *environment {
	env := e
	for range distance {
		env = env.parent
	}
	return env
}
