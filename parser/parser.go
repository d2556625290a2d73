// Package parser implements a recursive-descent parser which turns Lox
// source code into an abstract syntax tree (spec §4.1).
package parser

import (
	"github.com/nrobinson/golox/ast"
	"github.com/nrobinson/golox/loxerr"
	"github.com/nrobinson/golox/scanner"
	"github.com/nrobinson/golox/token"
)

const maxArgs = 255

// unwind is panicked by the parser to synchronise after a parse error. It is
// recovered by safelyParseDecl and never escapes the package.
type unwind struct{}

// Parse scans and parses src, returning the statements of the program.
// If a syntax error is encountered, a best-effort (possibly incomplete)
// statement list is still returned alongside the error, so that callers such
// as the resolver can run on whatever was salvaged (spec §7).
func Parse(src string) ([]ast.Stmt, error) {
	tokens, err := scanner.New(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.parseProgram(), p.errs.Err()
}

type parser struct {
	tokens []token.Token
	pos    int
	errs   loxerr.Errors
}

func (p *parser) parseProgram() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.EOF) {
		if stmt := p.safelyParseDecl(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// safelyParseDecl parses a single declaration, recovering from a parse error
// by synchronising to the next statement boundary (spec §4.1 "Error
// recovery"). A statement that failed to parse contributes nil, which the
// caller skips.
func (p *parser) safelyParseDecl() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(unwind); ok {
				p.synchronize()
				stmt = nil
			} else {
				panic(r)
			}
		}
	}()
	return p.declaration()
}

func (p *parser) synchronize() {
	for !p.check(token.EOF) {
		if p.peek().Type == token.Semicolon {
			p.advance()
			return
		}
		switch p.peek().Type {
		case token.Class, token.Function, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

func (p *parser) declaration() ast.Stmt {
	switch {
	case p.match(token.Class):
		return p.classDecl()
	case p.match(token.Function):
		return p.function("function")
	case p.match(token.Var):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *parser) classDecl() ast.Stmt {
	name := p.consume(token.Ident, "Expect class name.")
	var superclass *ast.Variable
	if p.match(token.Less) {
		superclassName := p.consume(token.Ident, "Expect superclass name.")
		superclass = &ast.Variable{Name: superclassName}
	}
	p.consume(token.LeftBrace, "Expect '{' before class body.")
	var methods []*ast.Function
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		methods = append(methods, p.function("method"))
	}
	p.consume(token.RightBrace, "Expect '}' after class body.")
	return &ast.Class{Name: name, Superclass: superclass, Methods: methods}
}

func (p *parser) function(kind string) *ast.Function {
	name := p.consume(token.Ident, "Expect %s name.", kind)
	p.consume(token.LeftParen, "Expect '(' after %s name.", kind)
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArgs {
				p.errorAt(p.peek(), "Can't have more than %d parameters.", maxArgs)
			}
			params = append(params, p.consume(token.Ident, "Expect parameter name."))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters.")
	p.consume(token.LeftBrace, "Expect '{' before %s body.", kind)
	body := p.block()
	return &ast.Function{Name: name, Params: params, Body: body}
}

func (p *parser) varDecl() ast.Stmt {
	name := p.consume(token.Ident, "Expect variable name.")
	var initializer ast.Expr
	if p.match(token.Assign) {
		initializer = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")
	return &ast.Var{Name: name, Initializer: initializer}
}

func (p *parser) statement() ast.Stmt {
	switch {
	case p.match(token.Print):
		return p.printStmt()
	case p.match(token.Return):
		return p.returnStmt()
	case p.match(token.While):
		return p.whileStmt()
	case p.match(token.For):
		return p.forStmt()
	case p.match(token.If):
		return p.ifStmt()
	case p.match(token.LeftBrace):
		return &ast.Block{Stmts: p.block()}
	default:
		return p.exprStmt()
	}
}

func (p *parser) printStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	return &ast.Print{Expr: expr}
}

func (p *parser) returnStmt() ast.Stmt {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after return value.")
	return &ast.Return{Keyword: keyword, Value: value}
}

func (p *parser) whileStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'while'.")
	condition := p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")
	body := p.statement()
	return &ast.While{Condition: condition, Body: body}
}

// forStmt desugars `for (init; cond; incr) body` into
// `{ init; while (cond) { body; incr; } }` in the parser, per spec §4.1.
func (p *parser) forStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'for'.")

	var initializer ast.Stmt
	switch {
	case p.match(token.Semicolon):
		// no initializer
	case p.match(token.Var):
		initializer = p.varDecl()
	default:
		initializer = p.exprStmt()
	}

	var condition ast.Expr
	if !p.check(token.Semicolon) {
		condition = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after loop condition.")

	var update ast.Expr
	if !p.check(token.RightParen) {
		update = p.expression()
	}
	p.consume(token.RightParen, "Expect ')' after for clauses.")

	body := p.statement()

	if update != nil {
		body = &ast.Block{Stmts: []ast.Stmt{body, &ast.Expression{Expr: update}}}
	}
	if condition == nil {
		condition = &ast.Literal{Value: true}
	}
	body = &ast.While{Condition: condition, Body: body}
	if initializer != nil {
		body = &ast.Block{Stmts: []ast.Stmt{initializer, body}}
	}
	return body
}

func (p *parser) ifStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'if'.")
	condition := p.expression()
	p.consume(token.RightParen, "Expect ')' after if condition.")
	then := p.statement()
	var elseBranch ast.Stmt
	if p.match(token.Else) {
		elseBranch = p.statement()
	}
	return &ast.If{Condition: condition, Then: then, Else: elseBranch}
}

func (p *parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		if stmt := p.safelyParseDecl(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
	return stmts
}

func (p *parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	return &ast.Expression{Expr: expr}
}

func (p *parser) expression() ast.Expr {
	return p.assignment()
}

// assignment handles `(call ".")? IDENT "=" assignment | logicOr`, per spec
// §4.1. The left-hand side is parsed as an ordinary expression first; it is
// then checked for being a valid assignment target.
func (p *parser) assignment() ast.Expr {
	expr := p.or()

	if p.match(token.Assign) {
		equals := p.previous()
		value := p.assignment() // right-associative
		switch left := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{Name: left.Name, Value: value}
		case *ast.Get:
			return &ast.Set{Object: left.Object, Name: left.Name, Value: value}
		default:
			p.errorAt(equals, "Invalid assignment target.")
		}
	}

	return expr
}

func (p *parser) or() ast.Expr {
	expr := p.and()
	for p.match(token.Or) {
		op := p.previous()
		right := p.and()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) and() ast.Expr {
	expr := p.equality()
	for p.match(token.And) {
		op := p.previous()
		right := p.equality()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.NotEqual, token.Equal) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.Greater, token.GreaterEqual, token.Less, token.LessEqual) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.Minus, token.Plus) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.Slash, token.Asterisk) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		operand := p.unary()
		return &ast.Unary{Op: op, Operand: operand}
	}
	return p.call()
}

func (p *parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.consume(token.Ident, "Expect property name after '.'.")
			expr = &ast.Get{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArgs {
				p.errorAt(p.peek(), "Can't have more than %d arguments.", maxArgs)
			}
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.consume(token.RightParen, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Paren: paren, Args: args}
}

func (p *parser) primary() ast.Expr {
	switch {
	case p.match(token.False):
		return &ast.Literal{Value: false}
	case p.match(token.True):
		return &ast.Literal{Value: true}
	case p.match(token.Nil):
		return &ast.Literal{Value: nil}
	case p.match(token.Number, token.String):
		return &ast.Literal{Value: p.previous().Literal}
	case p.match(token.Super):
		keyword := p.previous()
		p.consume(token.Dot, "Expect '.' after 'super'.")
		method := p.consume(token.Ident, "Expect superclass method name.")
		return &ast.Super{Keyword: keyword, Method: method}
	case p.match(token.This):
		return &ast.This{Keyword: p.previous()}
	case p.match(token.Ident):
		return &ast.Variable{Name: p.previous()}
	case p.match(token.LeftParen):
		expr := p.expression()
		p.consume(token.RightParen, "Expect ')' after expression.")
		return &ast.Grouping{Expr: expr}
	default:
		p.errorAt(p.peek(), "Expect expression.")
		panic(unwind{})
	}
}

// --- token stream helpers ---

func (p *parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) check(t token.Type) bool {
	return p.peek().Type == t
}

func (p *parser) advance() token.Token {
	tok := p.peek()
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

func (p *parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *parser) previous() token.Token {
	return p.tokens[p.pos-1]
}

// consume advances past the current token if it has type t, reporting a
// fatal parse error and unwinding to the nearest statement boundary
// otherwise.
func (p *parser) consume(t token.Type, format string, args ...any) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorAt(p.peek(), format, args...)
	panic(unwind{})
}

// errorAt records a non-fatal diagnostic against tok. Callers that need the
// parser to synchronise afterwards must panic(unwind{}) themselves.
func (p *parser) errorAt(tok token.Token, format string, args ...any) {
	p.errs = append(p.errs, loxerr.NewFromToken(tok, format, args...).(*loxerr.Error))
}
