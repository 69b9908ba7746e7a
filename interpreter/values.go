package interpreter

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a dynamic Lox runtime value: nil, a bool, a float64 number, a
// string, a Callable, or a *LoxInstance. Only Callable and *LoxInstance have
// reference identity; the others have value semantics.
type Value any

// Callable is implemented by every value that can appear in a call
// expression: native functions, LoxFunction and *LoxClass.
type Callable interface {
	Arity() int
	Call(interp *Interpreter, args []Value) Value
	String() string
}

// isTruthy reports Lox truthiness: only nil and false are falsey.
func isTruthy(v Value) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// valuesEqual implements Lox equality: nil equals only nil; numbers compare
// by IEEE-754 equality (so NaN != NaN); callables and instances compare by
// reference identity; everything else compares by Go equality.
func valuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case *LoxInstance:
		bv, ok := b.(*LoxInstance)
		return ok && av == bv
	case *LoxClass:
		bv, ok := b.(*LoxClass)
		return ok && av == bv
	case *LoxFunction:
		bv, ok := b.(*LoxFunction)
		return ok && av == bv
	default:
		return a == b
	}
}

// stringify renders v as the print statement displays it.
func stringify(v Value) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return stringifyNumber(val)
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func stringifyNumber(n float64) string {
	s := strconv.FormatFloat(n, 'f', -1, 64)
	return strings.TrimSuffix(s, ".0")
}

func typeName(v Value) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *LoxInstance:
		return "instance"
	default:
		return "callable"
	}
}
