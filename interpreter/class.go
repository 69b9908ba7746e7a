package interpreter

import (
	"fmt"

	"github.com/marcuscaisey/lox/ast"
)

// LoxFunction is a callable holding a reference to its declaration, the
// closure environment captured when the declaration was evaluated, and
// whether it's a class initializer (which always returns the instance,
// regardless of its return statements).
type LoxFunction struct {
	decl          *ast.Function
	closure       *Environment
	isInitializer bool
}

// Arity returns the number of parameters the function declares.
func (f *LoxFunction) Arity() int {
	return len(f.decl.Params)
}

// Call binds args to the function's parameters in a fresh environment
// enclosing its closure, then executes its body. A Return unwind yields its
// value; falling off the end yields nil, except in an initializer, which
// always yields this.
func (f *LoxFunction) Call(interp *Interpreter, args []Value) Value {
	env := f.closure.Child()
	for i, param := range f.decl.Params {
		env.Define(param.Lexeme, args[i])
	}

	result := interp.executeBlock(f.decl.Body.Stmts, env)
	if f.isInitializer {
		return f.closure.GetAt(0, tokenThisIdent)
	}
	if ret, ok := result.(returnSignal); ok {
		return ret.value
	}
	return nil
}

func (f *LoxFunction) String() string {
	return fmt.Sprintf("<fn %s>", f.decl.Name.Lexeme)
}

// bind returns a copy of f whose closure is one level deeper, with `this`
// bound to instance. Used when a method is looked up on an instance.
func (f *LoxFunction) bind(instance *LoxInstance) *LoxFunction {
	env := f.closure.Child()
	env.Define(tokenThisIdent, instance)
	return &LoxFunction{decl: f.decl, closure: env, isInitializer: f.isInitializer}
}

const (
	tokenThisIdent  = "this"
	tokenSuperIdent = "super"
	tokenInitIdent  = "init"
)

// LoxClass is a callable holding a name, an optional superclass and a
// method table. Calling it constructs a fresh LoxInstance and, if an init
// method exists, invokes it with the call's arguments.
type LoxClass struct {
	Name       string
	Superclass *LoxClass
	Methods    map[string]*LoxFunction
}

// Arity returns the initializer's arity, or 0 if there isn't one.
func (c *LoxClass) Arity() int {
	if init := c.findMethod(tokenInitIdent); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs a new instance of c, running its initializer (if any)
// with args.
func (c *LoxClass) Call(interp *Interpreter, args []Value) Value {
	instance := &LoxInstance{class: c, fields: make(map[string]Value)}
	if init := c.findMethod(tokenInitIdent); init != nil {
		init.bind(instance).Call(interp, args)
	}
	return instance
}

func (c *LoxClass) String() string {
	return c.Name
}

// findMethod looks up name in c's own method table, then recurses into the
// superclass chain.
func (c *LoxClass) findMethod(name string) *LoxFunction {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.findMethod(name)
	}
	return nil
}

// LoxInstance is a field map plus a back-reference to its class for method
// lookup.
type LoxInstance struct {
	class  *LoxClass
	fields map[string]Value
}

func (i *LoxInstance) String() string {
	return i.class.Name + " instance"
}

// Get looks up name as a field first, then as a bound method. A method hit
// returns a fresh LoxFunction whose closure defines `this` as i.
func (i *LoxInstance) Get(name string) (Value, bool) {
	if v, ok := i.fields[name]; ok {
		return v, true
	}
	if m := i.class.findMethod(name); m != nil {
		return m.bind(i), true
	}
	return nil, false
}

// Set creates or overwrites the field name with value.
func (i *LoxInstance) Set(name string, value Value) {
	i.fields[name] = value
}
