// Package interpreter implements the tree-walking evaluator over the AST:
// nested environments, closures, class/instance dispatch and the small set
// of runtime errors.
package interpreter

import (
	"fmt"
	"io"

	"github.com/marcuscaisey/lox/ast"
	"github.com/marcuscaisey/lox/loxerr"
	"github.com/marcuscaisey/lox/token"
)

// maxCallDepth bounds Lox call recursion so that unbounded recursion raises
// a runtime error instead of exhausting the host goroutine's stack.
const maxCallDepth = 255

// stmtResult is returned by statement execution. nil means the statement
// ran to completion; a returnSignal means a return statement is unwinding
// the call stack back to the enclosing Call. It's never an error and is
// never handled by the panic/recover machinery used for RuntimeError.
type stmtResult any

// returnSignal carries a return statement's value up through nested
// statement execution back to LoxFunction.Call.
type returnSignal struct {
	value Value
}

// Interpreter walks an AST, evaluating expressions to Values and executing
// statements for their side effects.
type Interpreter struct {
	Globals  *Environment
	env      *Environment
	depths   map[ast.Expr]int
	reporter *loxerr.Reporter
	stdout   io.Writer
	callDepth int
}

// New returns an Interpreter which writes print statement output to stdout,
// resolves variable references using depths (as produced by
// resolver.Resolve) and reports runtime errors through reporter.
func New(stdout io.Writer, depths map[ast.Expr]int, reporter *loxerr.Reporter) *Interpreter {
	globals := NewEnvironment()
	defineGlobals(globals)
	return &Interpreter{
		Globals:  globals,
		env:      globals,
		depths:   depths,
		reporter: reporter,
		stdout:   stdout,
	}
}

// SetDepths replaces the resolver depth map used for subsequent variable
// lookups. The REPL calls this before each line, since every line is
// scanned, parsed and resolved independently but interpreted against the
// same long-lived global environment.
func (in *Interpreter) SetDepths(depths map[ast.Expr]int) {
	in.depths = depths
}

// Interpret executes program's statements in order. A RuntimeError raised
// anywhere during execution is recovered here, reported, and stops
// execution of the remaining top-level statements.
func (in *Interpreter) Interpret(program *ast.Program) (err *loxerr.RuntimeError) {
	defer func() {
		if r := recover(); r != nil {
			if rtErr, ok := r.(*loxerr.RuntimeError); ok {
				in.reporter.ReportRuntimeError(rtErr)
				err = rtErr
				return
			}
			panic(r)
		}
	}()
	for _, stmt := range program.Stmts {
		in.execStmt(stmt)
	}
	return nil
}

func (in *Interpreter) execStmt(stmt ast.Stmt) stmtResult {
	switch s := stmt.(type) {
	case *ast.Block:
		return in.executeBlock(s.Stmts, in.env.Child())
	case *ast.Class:
		return in.execClassStmt(s)
	case *ast.Expression:
		in.eval(s.Expr)
		return nil
	case *ast.Function:
		fn := &LoxFunction{decl: s, closure: in.env}
		in.env.Define(s.Name.Lexeme, fn)
		return nil
	case *ast.If:
		if isTruthy(in.eval(s.Condition)) {
			return in.execStmt(s.Then)
		} else if s.Else != nil {
			return in.execStmt(s.Else)
		}
		return nil
	case *ast.Print:
		fmt.Fprintln(in.stdout, stringify(in.eval(s.Expr)))
		return nil
	case *ast.Return:
		var value Value
		if s.Value != nil {
			value = in.eval(s.Value)
		}
		return returnSignal{value: value}
	case *ast.Var:
		var value Value
		if s.Initialiser != nil {
			value = in.eval(s.Initialiser)
		}
		in.env.Define(s.Name.Lexeme, value)
		return nil
	case *ast.While:
		for isTruthy(in.eval(s.Condition)) {
			if result := in.execStmt(s.Body); result != nil {
				return result
			}
		}
		return nil
	default:
		panic(fmt.Sprintf("interpreter: unhandled statement type %T", stmt))
	}
}

func (in *Interpreter) execClassStmt(s *ast.Class) stmtResult {
	var superclass *LoxClass
	if s.Superclass != nil {
		v := in.evalVariable(s.Superclass)
		sc, ok := v.(*LoxClass)
		if !ok {
			panic(loxerr.NewRuntimeError(s.Superclass.Name, "Superclass must be a class."))
		}
		superclass = sc
	}

	in.env.Define(s.Name.Lexeme, nil)

	classEnv := in.env
	if superclass != nil {
		classEnv = in.env.Child()
		classEnv.Define(tokenSuperIdent, superclass)
	}

	methods := make(map[string]*LoxFunction, len(s.Methods))
	for _, method := range s.Methods {
		methods[method.Name.Lexeme] = &LoxFunction{
			decl:          method,
			closure:       classEnv,
			isInitializer: method.Name.Lexeme == tokenInitIdent,
		}
	}

	class := &LoxClass{Name: s.Name.Lexeme, Superclass: superclass, Methods: methods}
	in.env.Assign(s.Name.Lexeme, class)
	return nil
}

// executeBlock runs stmts with env as the current environment, restoring
// the previous environment on every exit path: normal completion, a
// returnSignal, or a RuntimeError panic unwinding through it.
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) stmtResult {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()

	for _, stmt := range stmts {
		if result := in.execStmt(stmt); result != nil {
			return result
		}
	}
	return nil
}

func (in *Interpreter) eval(expr ast.Expr) Value {
	switch e := expr.(type) {
	case *ast.Assign:
		value := in.eval(e.Value)
		in.assignVariable(e, e.Name, value)
		return value
	case *ast.Binary:
		return in.evalBinary(e)
	case *ast.Call:
		return in.evalCall(e)
	case *ast.Get:
		return in.evalGet(e)
	case *ast.Grouping:
		return in.eval(e.Expr)
	case *ast.Literal:
		return literalValue(e.Value)
	case *ast.Logical:
		return in.evalLogical(e)
	case *ast.Set:
		return in.evalSet(e)
	case *ast.Super:
		return in.evalSuper(e)
	case *ast.This:
		return in.lookUpVariable(e, e.This)
	case *ast.Unary:
		return in.evalUnary(e)
	case *ast.Variable:
		return in.evalVariable(e)
	default:
		panic(fmt.Sprintf("interpreter: unhandled expression type %T", expr))
	}
}

// literalValue converts a literal token (true, false, nil, a number or a
// string) to the Value it denotes.
func literalValue(tok token.Token) Value {
	switch tok.Type {
	case token.True:
		return true
	case token.False:
		return false
	case token.Nil:
		return nil
	default:
		return tok.Literal
	}
}

func (in *Interpreter) evalVariable(e *ast.Variable) Value {
	return in.lookUpVariable(e, e.Name)
}

// lookUpVariable reads tok.Lexeme, consulting the resolver's depth map keyed
// on expr's identity: a hit reads distance hops up the environment chain; a
// miss falls back to globals, raising "Undefined variable" if absent there
// too.
func (in *Interpreter) lookUpVariable(expr ast.Expr, tok token.Token) Value {
	name := tok.Lexeme
	if distance, ok := in.depths[expr]; ok {
		return in.env.GetAt(distance, name)
	}
	if v, ok := in.Globals.Get(name); ok {
		return v
	}
	panic(loxerr.NewRuntimeError(tok, "Undefined variable '%s'.", name))
}

// assignVariable assigns value to tok.Lexeme, consulting the depth map the
// same way lookUpVariable does.
func (in *Interpreter) assignVariable(expr ast.Expr, tok token.Token, value Value) {
	name := tok.Lexeme
	if distance, ok := in.depths[expr]; ok {
		in.env.AssignAt(distance, name, value)
		return
	}
	if in.Globals.Assign(name, value) {
		return
	}
	panic(loxerr.NewRuntimeError(tok, "Undefined variable '%s'.", name))
}

func (in *Interpreter) evalLogical(e *ast.Logical) Value {
	left := in.eval(e.Left)
	if e.Op.Type == token.Or {
		if isTruthy(left) {
			return left
		}
	} else {
		if !isTruthy(left) {
			return left
		}
	}
	return in.eval(e.Right)
}

func (in *Interpreter) evalUnary(e *ast.Unary) Value {
	right := in.eval(e.Right)
	switch e.Op.Type {
	case token.Minus:
		n, ok := right.(float64)
		if !ok {
			panic(loxerr.NewRuntimeError(e.Op, "Operand must be a number."))
		}
		return -n
	case token.Bang:
		return !isTruthy(right)
	default:
		panic(fmt.Sprintf("interpreter: unhandled unary operator %s", e.Op.Type))
	}
}

func (in *Interpreter) evalBinary(e *ast.Binary) Value {
	left := in.eval(e.Left)
	right := in.eval(e.Right)
	switch e.Op.Type {
	case token.Plus:
		if ln, ok := left.(float64); ok {
			if rn, ok := right.(float64); ok {
				return ln + rn
			}
		}
		if ls, ok := left.(string); ok {
			if rs, ok := right.(string); ok {
				return ls + rs
			}
		}
		panic(loxerr.NewRuntimeError(e.Op, "Operands must be two numbers or two strings."))
	case token.Minus:
		return numericBinary(in, e.Op, left, right, func(a, b float64) Value { return a - b })
	case token.Star:
		return numericBinary(in, e.Op, left, right, func(a, b float64) Value { return a * b })
	case token.Slash:
		return numericBinary(in, e.Op, left, right, func(a, b float64) Value {
			if b == 0 {
				panic(loxerr.NewRuntimeError(e.Op, "Division by zero."))
			}
			return a / b
		})
	case token.Greater:
		return numericBinary(in, e.Op, left, right, func(a, b float64) Value { return a > b })
	case token.GreaterEqual:
		return numericBinary(in, e.Op, left, right, func(a, b float64) Value { return a >= b })
	case token.Less:
		return numericBinary(in, e.Op, left, right, func(a, b float64) Value { return a < b })
	case token.LessEqual:
		return numericBinary(in, e.Op, left, right, func(a, b float64) Value { return a <= b })
	case token.EqualEqual:
		return valuesEqual(left, right)
	case token.BangEqual:
		return !valuesEqual(left, right)
	default:
		panic(fmt.Sprintf("interpreter: unhandled binary operator %s", e.Op.Type))
	}
}

// numericBinary requires both operands to be numbers, raising a RuntimeError
// attributed to op otherwise.
func numericBinary(in *Interpreter, op token.Token, left, right Value, f func(a, b float64) Value) Value {
	ln, ok := left.(float64)
	if !ok {
		panic(loxerr.NewRuntimeError(op, "Operand must be a number."))
	}
	rn, ok := right.(float64)
	if !ok {
		panic(loxerr.NewRuntimeError(op, "Operand must be a number."))
	}
	return f(ln, rn)
}

func (in *Interpreter) evalCall(e *ast.Call) Value {
	callee := in.eval(e.Callee)
	args := make([]Value, len(e.Args))
	for i, arg := range e.Args {
		args[i] = in.eval(arg)
	}

	callable, ok := callee.(Callable)
	if !ok {
		panic(loxerr.NewRuntimeError(e.RightParen, "Can only call functions and classes."))
	}
	if len(args) != callable.Arity() {
		panic(loxerr.NewRuntimeError(e.RightParen, "Expected %d arguments but got %d.", callable.Arity(), len(args)))
	}

	if in.callDepth >= maxCallDepth {
		panic(loxerr.NewRuntimeError(e.RightParen, "Stack overflow."))
	}
	in.callDepth++
	defer func() { in.callDepth-- }()
	return callable.Call(in, args)
}

func (in *Interpreter) evalGet(e *ast.Get) Value {
	object := in.eval(e.Object)
	instance, ok := object.(*LoxInstance)
	if !ok {
		panic(loxerr.NewRuntimeError(e.Name, "Only instances have properties."))
	}
	v, ok := instance.Get(e.Name.Lexeme)
	if !ok {
		panic(loxerr.NewRuntimeError(e.Name, "Undefined property '%s'.", e.Name.Lexeme))
	}
	return v
}

func (in *Interpreter) evalSet(e *ast.Set) Value {
	object := in.eval(e.Object)
	instance, ok := object.(*LoxInstance)
	if !ok {
		panic(loxerr.NewRuntimeError(e.Name, "Only instances have fields."))
	}
	value := in.eval(e.Value)
	instance.Set(e.Name.Lexeme, value)
	return value
}

func (in *Interpreter) evalSuper(e *ast.Super) Value {
	distance := in.depths[e]
	superclass := in.env.GetAt(distance, tokenSuperIdent).(*LoxClass)
	instance := in.env.GetAt(distance-1, tokenThisIdent).(*LoxInstance)
	method := superclass.findMethod(e.Method.Lexeme)
	if method == nil {
		panic(loxerr.NewRuntimeError(e.Method, "Undefined property '%s'.", e.Method.Lexeme))
	}
	return method.bind(instance)
}
