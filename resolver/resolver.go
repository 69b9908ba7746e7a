// Package resolver implements the static pass that binds every variable
// reference to the lexical scope hop-distance of its declaration, and flags
// misuse of return, this, super and class inheritance.
package resolver

import (
	"fmt"
	"iter"

	"github.com/marcuscaisey/lox/ast"
	"github.com/marcuscaisey/lox/loxerr"
	"github.com/marcuscaisey/lox/token"
)

// functionType tracks what kind of function (if any) is currently being
// resolved, so return/this rules can be checked.
type functionType int

const (
	functionNone functionType = iota
	functionFunction
	functionInitializer
	functionMethod
)

// classType tracks what kind of class (if any) is currently being resolved.
type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// scope maps a name to whether it's been fully defined yet: declared-but-
// not-yet-defined names are present with a false value, so a reference
// inside its own initialiser can be rejected.
type scope map[string]bool

// scopeStack is the resolver's stack of lexical scopes, innermost last.
// It's a LIFO stack specialised to scope rather than a generic container,
// since the resolver is its only user and the only operations it needs are
// push/pop/peek/len and an innermost-first walk for hop-distance counting.
type scopeStack []scope

func (s *scopeStack) push(sc scope) {
	*s = append(*s, sc)
}

func (s *scopeStack) pop() {
	*s = (*s)[:len(*s)-1]
}

func (s scopeStack) peek() scope {
	return s[len(s)-1]
}

func (s scopeStack) len() int {
	return len(s)
}

// backward iterates the scope stack from innermost to outermost, yielding
// each scope's index in the stack alongside it.
func (s scopeStack) backward() iter.Seq2[int, scope] {
	return func(yield func(int, scope) bool) {
		for i := len(s) - 1; i >= 0; i-- {
			if !yield(i, s[i]) {
				return
			}
		}
	}
}

type resolver struct {
	reporter *loxerr.Reporter
	scopes   scopeStack
	depths   map[ast.Expr]int

	currentFunction functionType
	currentClass    classType
}

// Resolve walks program, returning a map from each Variable/Assign
// expression to the number of lexical scopes between its occurrence and the
// declaration it refers to. An expression absent from the map refers to a
// global. Diagnostics are reported through reporter.
func Resolve(program *ast.Program, reporter *loxerr.Reporter) map[ast.Expr]int {
	r := &resolver{
		reporter: reporter,
		depths:   make(map[ast.Expr]int),
	}
	r.resolveStmts(program.Stmts)
	return r.depths
}

func (r *resolver) resolveStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()
	case *ast.Class:
		r.resolveClassStmt(s)
	case *ast.Expression:
		r.resolveExpr(s.Expr)
	case *ast.Function:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, functionFunction)
	case *ast.If:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *ast.Print:
		r.resolveExpr(s.Expr)
	case *ast.Return:
		if r.currentFunction == functionNone {
			r.reportToken(s.Return, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == functionInitializer {
				r.reportToken(s.Return, "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}
	case *ast.Var:
		r.declare(s.Name)
		if s.Initialiser != nil {
			r.resolveExpr(s.Initialiser)
		}
		r.define(s.Name)
	case *ast.While:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)
	default:
		panic(fmt.Sprintf("resolver: unhandled statement type %T", stmt))
	}
}

func (r *resolver) resolveClassStmt(s *ast.Class) {
	enclosingClass := r.currentClass
	r.currentClass = classClass
	defer func() { r.currentClass = enclosingClass }()

	if s.Superclass != nil && s.Superclass.Name.Lexeme == s.Name.Lexeme {
		r.reportToken(s.Superclass.Name, "A class can't inherit from itself.")
	}

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		r.currentClass = classSubclass
		r.resolveExpr(s.Superclass)
		r.beginScope()
		r.scopes.peek()[token.SuperIdent] = true
	}

	r.beginScope()
	r.scopes.peek()[token.ThisIdent] = true

	for _, method := range s.Methods {
		fnType := functionMethod
		if method.Name.Lexeme == token.InitIdent {
			fnType = functionInitializer
		}
		r.resolveFunction(method, fnType)
	}

	r.endScope()
	if s.Superclass != nil {
		r.endScope()
	}
}

func (r *resolver) resolveFunction(fn *ast.Function, typ functionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = typ
	defer func() { r.currentFunction = enclosingFunction }()

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body.Stmts)
	r.endScope()
}

func (r *resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}
	case *ast.Get:
		r.resolveExpr(e.Object)
	case *ast.Grouping:
		r.resolveExpr(e.Expr)
	case *ast.Literal:
		// no identifiers to resolve
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *ast.Super:
		switch r.currentClass {
		case classNone:
			r.reportToken(e.Super, "Can't use 'super' outside of a class.")
		case classClass:
			r.reportToken(e.Super, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e, e.Super)
	case *ast.This:
		if r.currentClass == classNone {
			r.reportToken(e.This, "Can't use 'this' outside of a class.")
		}
		r.resolveLocal(e, e.This)
	case *ast.Unary:
		r.resolveExpr(e.Right)
	case *ast.Variable:
		if r.scopes.len() > 0 {
			if defined, ok := r.scopes.peek()[e.Name.Lexeme]; ok && !defined {
				r.reportToken(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name)
	default:
		panic(fmt.Sprintf("resolver: unhandled expression type %T", expr))
	}
}

// resolveLocal walks the scope stack from innermost outward looking for
// name; on a hit it records the hop distance in the depth map keyed by the
// node's own identity. A miss leaves expr unmapped, so the interpreter
// treats it as a global.
func (r *resolver) resolveLocal(expr ast.Expr, name token.Token) {
	for i, s := range r.scopes.backward() {
		if _, ok := s[name.Lexeme]; ok {
			r.depths[expr] = r.scopes.len() - 1 - i
			return
		}
	}
}

func (r *resolver) beginScope() {
	r.scopes.push(scope{})
}

func (r *resolver) endScope() {
	r.scopes.pop()
}

// declare adds name to the innermost scope, marked as not yet defined. It
// reports a redeclaration error if name is already declared there; global
// (scope-stack-empty) redeclaration is not an error.
func (r *resolver) declare(name token.Token) {
	if r.scopes.len() == 0 {
		return
	}
	s := r.scopes.peek()
	if _, ok := s[name.Lexeme]; ok {
		r.reportToken(name, "Already a variable with this name in this scope.")
	}
	s[name.Lexeme] = false
}

func (r *resolver) define(name token.Token) {
	if r.scopes.len() == 0 {
		return
	}
	r.scopes.peek()[name.Lexeme] = true
}

func (r *resolver) reportToken(tok token.Token, message string) {
	where := fmt.Sprintf(" at '%s'", tok.Lexeme)
	if tok.Type == token.EOF {
		where = " at end"
	}
	r.reporter.Report(tok.Start.Line, where, message)
}
