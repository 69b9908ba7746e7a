// Package parser defines Parse, which parses a sequence of lexical tokens
// into an abstract syntax tree using recursive descent with precedence
// climbing for expressions.
package parser

import (
	"fmt"

	"github.com/marcuscaisey/lox/ast"
	"github.com/marcuscaisey/lox/loxerr"
	"github.com/marcuscaisey/lox/token"
)

const maxArgs = 255

// parseError unwinds the parser back to the nearest statement boundary; it's
// recovered in safeDeclaration and is never a RuntimeError.
type parseError struct{}

type parser struct {
	tokens   []token.Token
	pos      int
	reporter *loxerr.Reporter
}

// Parse parses tokens (as produced by scanner.Scan, terminated by an EOF
// token) into an *ast.Program. Diagnostics are reported through reporter;
// the returned program may be incomplete if any were raised.
func Parse(tokens []token.Token, reporter *loxerr.Reporter) *ast.Program {
	p := &parser{tokens: tokens, reporter: reporter}
	var stmts []ast.Stmt
	for !p.check(token.EOF) {
		if stmt, ok := p.safeDeclaration(); ok {
			stmts = append(stmts, stmt)
		}
	}
	return &ast.Program{Stmts: stmts}
}

func (p *parser) safeDeclaration() (stmt ast.Stmt, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isParseErr := r.(parseError); !isParseErr {
				panic(r)
			}
			p.synchronize()
			ok = false
		}
	}()
	return p.declaration(), true
}

func (p *parser) declaration() ast.Stmt {
	switch {
	case p.match(token.Class):
		return p.classDecl()
	case p.match(token.Fun):
		return p.function("function")
	case p.match(token.Var):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *parser) classDecl() ast.Stmt {
	class := p.previous()
	name := p.mustMatch(token.Identifier, "Expect class name.")
	var superclass *ast.Variable
	if p.match(token.Less) {
		superclassName := p.mustMatch(token.Identifier, "Expect superclass name.")
		superclass = &ast.Variable{Name: superclassName}
	}
	p.mustMatch(token.LeftBrace, "Expect '{' before class body.")
	var methods []*ast.Function
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		methods = append(methods, p.function("method"))
	}
	rightBrace := p.mustMatch(token.RightBrace, "Expect '}' after class body.")
	return &ast.Class{Class: class, Name: name, Superclass: superclass, Methods: methods, RightBrace: rightBrace}
}

func (p *parser) function(kind string) *ast.Function {
	var funTok token.Token
	if kind == "function" {
		funTok = p.previous()
	}
	name := p.mustMatch(token.Identifier, "Expect %s name.", kind)
	p.mustMatch(token.LeftParen, "Expect '(' after %s name.", kind)
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArgs {
				p.errorAtCurrent("Can't have more than %d parameters.", maxArgs)
			}
			params = append(params, p.mustMatch(token.Identifier, "Expect parameter name."))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.mustMatch(token.RightParen, "Expect ')' after parameters.")
	p.mustMatch(token.LeftBrace, "Expect '{' before %s body.", kind)
	body := p.blockStmt()
	return &ast.Function{Fun: funTok, Name: name, Params: params, Body: body}
}

func (p *parser) varDecl() ast.Stmt {
	varTok := p.previous()
	name := p.mustMatch(token.Identifier, "Expect variable name.")
	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
	}
	semicolon := p.mustMatch(token.Semicolon, "Expect ';' after variable declaration.")
	return &ast.Var{Var: varTok, Name: name, Initialiser: init, Semicolon: semicolon}
}

func (p *parser) statement() ast.Stmt {
	switch {
	case p.match(token.For):
		return p.forStmt()
	case p.match(token.If):
		return p.ifStmt()
	case p.match(token.Print):
		return p.printStmt()
	case p.match(token.Return):
		return p.returnStmt()
	case p.match(token.While):
		return p.whileStmt()
	case p.match(token.LeftBrace):
		return p.blockStmt()
	default:
		return p.exprStmt()
	}
}

// forStmt desugars for (init; cond; incr) body into
// { init; while (cond) { body; incr; } }, per spec.
func (p *parser) forStmt() ast.Stmt {
	forTok := p.previous()
	p.mustMatch(token.LeftParen, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.match(token.Semicolon):
		// no initialiser
	case p.match(token.Var):
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.mustMatch(token.Semicolon, "Expect ';' after loop condition.")

	var incr ast.Expr
	if !p.check(token.RightParen) {
		incr = p.expression()
	}
	rightParen := p.mustMatch(token.RightParen, "Expect ')' after for clauses.")

	body := p.statement()

	if incr != nil {
		body = &ast.Block{
			LeftBrace:  rightParen,
			Stmts:      []ast.Stmt{body, &ast.Expression{Expr: incr, Semicolon: rightParen}},
			RightBrace: rightParen,
		}
	}
	if cond == nil {
		cond = &ast.Literal{Value: token.Token{Type: token.True, Lexeme: "true"}}
	}
	body = &ast.While{While: forTok, Condition: cond, Body: body}
	if init != nil {
		body = &ast.Block{LeftBrace: forTok, Stmts: []ast.Stmt{init, body}, RightBrace: rightParen}
	}
	return body
}

func (p *parser) ifStmt() ast.Stmt {
	ifTok := p.previous()
	p.mustMatch(token.LeftParen, "Expect '(' after 'if'.")
	cond := p.expression()
	p.mustMatch(token.RightParen, "Expect ')' after if condition.")
	then := p.statement()
	var elseStmt ast.Stmt
	if p.match(token.Else) {
		elseStmt = p.statement()
	}
	return &ast.If{If: ifTok, Condition: cond, Then: then, Else: elseStmt}
}

func (p *parser) printStmt() ast.Stmt {
	printTok := p.previous()
	expr := p.expression()
	semicolon := p.mustMatch(token.Semicolon, "Expect ';' after value.")
	return &ast.Print{Print: printTok, Expr: expr, Semicolon: semicolon}
}

func (p *parser) returnStmt() ast.Stmt {
	returnTok := p.previous()
	var value ast.Expr
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	semicolon := p.mustMatch(token.Semicolon, "Expect ';' after return value.")
	return &ast.Return{Return: returnTok, Value: value, Semicolon: semicolon}
}

func (p *parser) whileStmt() ast.Stmt {
	whileTok := p.previous()
	p.mustMatch(token.LeftParen, "Expect '(' after 'while'.")
	cond := p.expression()
	p.mustMatch(token.RightParen, "Expect ')' after condition.")
	body := p.statement()
	return &ast.While{While: whileTok, Condition: cond, Body: body}
}

func (p *parser) blockStmt() *ast.Block {
	leftBrace := p.previous()
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		if stmt, ok := p.safeDeclaration(); ok {
			stmts = append(stmts, stmt)
		}
	}
	rightBrace := p.mustMatch(token.RightBrace, "Expect '}' after block.")
	return &ast.Block{LeftBrace: leftBrace, Stmts: stmts, RightBrace: rightBrace}
}

func (p *parser) exprStmt() ast.Stmt {
	expr := p.expression()
	semicolon := p.mustMatch(token.Semicolon, "Expect ';' after expression.")
	return &ast.Expression{Expr: expr, Semicolon: semicolon}
}

func (p *parser) expression() ast.Expr {
	return p.assignment()
}

// assignment parses (call ".")? IDENT "=" assignment | logic_or. The target
// validity check happens after the fact: an invalid target is reported but
// the statement is not aborted, per spec.
func (p *parser) assignment() ast.Expr {
	expr := p.or()
	if p.match(token.Equal) {
		equals := p.previous()
		value := p.assignment()
		switch e := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{Name: e.Name, Value: value}
		case *ast.Get:
			return &ast.Set{Object: e.Object, Name: e.Name, Value: value}
		default:
			p.reporter.Report(equals.Start.Line, fmt.Sprintf(" at '%s'", equals.Lexeme), "Invalid assignment target.")
			return expr
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
	return p.binary(p.comparison, token.BangEqual, token.EqualEqual)
}

func (p *parser) comparison() ast.Expr {
	return p.binary(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *parser) term() ast.Expr {
	return p.binary(p.factor, token.Minus, token.Plus)
}

func (p *parser) factor() ast.Expr {
	return p.binary(p.unary, token.Slash, token.Star)
}

// binary parses a left-associative binary expression over the given
// operators, with next parsing an operand of the next-highest precedence.
func (p *parser) binary(next func() ast.Expr, types ...token.Type) ast.Expr {
	expr := next()
	for p.match(types...) {
		op := p.previous()
		right := next()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		right := p.unary()
		return &ast.Unary{Op: op, Right: right}
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
			name := p.mustMatch(token.Identifier, "Expect property name after '.'.")
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
				p.errorAtCurrent("Can't have more than %d arguments.", maxArgs)
			}
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	rightParen := p.mustMatch(token.RightParen, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Args: args, RightParen: rightParen}
}

func (p *parser) primary() ast.Expr {
	switch {
	case p.match(token.False, token.True, token.Nil, token.Number, token.String):
		return &ast.Literal{Value: p.previous()}
	case p.match(token.Super):
		super := p.previous()
		p.mustMatch(token.Dot, "Expect '.' after 'super'.")
		method := p.mustMatch(token.Identifier, "Expect superclass method name.")
		return &ast.Super{Super: super, Method: method}
	case p.match(token.This):
		return &ast.This{This: p.previous()}
	case p.match(token.Identifier):
		return &ast.Variable{Name: p.previous()}
	case p.match(token.LeftParen):
		leftParen := p.previous()
		expr := p.expression()
		rightParen := p.mustMatch(token.RightParen, "Expect ')' after expression.")
		return &ast.Grouping{LeftParen: leftParen, Expr: expr, RightParen: rightParen}
	default:
		p.errorAtCurrent("Expect expression.")
		panic(parseError{})
	}
}

// synchronize discards tokens until it's just consumed a ';' or is
// positioned at a statement-starter keyword, so parsing can resume after an
// error.
func (p *parser) synchronize() {
	for !p.check(token.EOF) {
		if p.peek().Type == token.Semicolon {
			p.advance()
			return
		}
		switch p.peek().Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

func (p *parser) check(t token.Type) bool {
	return p.peek().Type == t
}

func (p *parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// mustMatch consumes the current token if it's of type t, reporting an
// error and unwinding to the nearest statement boundary otherwise.
func (p *parser) mustMatch(t token.Type, format string, args ...any) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorAtCurrent(format, args...)
	panic(parseError{})
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

func (p *parser) errorAtCurrent(format string, args ...any) {
	tok := p.peek()
	where := fmt.Sprintf(" at '%s'", tok.Lexeme)
	if tok.Type == token.EOF {
		where = " at end"
	}
	p.reporter.Report(tok.Start.Line, where, fmt.Sprintf(format, args...))
}
