package ast_test

import (
	"testing"

	"github.com/marcuscaisey/lox/ast"
	"github.com/marcuscaisey/lox/token"
)

func TestBinary_StartEnd(t *testing.T) {
	left := &ast.Literal{Value: token.Token{Lexeme: "1", Start: token.Position{Line: 1, Column: 0}, End: token.Position{Line: 1, Column: 1}}}
	right := &ast.Literal{Value: token.Token{Lexeme: "2", Start: token.Position{Line: 1, Column: 4}, End: token.Position{Line: 1, Column: 5}}}
	bin := &ast.Binary{Left: left, Op: token.Token{Lexeme: "+"}, Right: right}

	if got, want := bin.Start(), left.Start(); got != want {
		t.Errorf("Start() = %v, want %v", got, want)
	}
	if got, want := bin.End(), right.End(); got != want {
		t.Errorf("End() = %v, want %v", got, want)
	}
}

func TestVariable_IdentityDistinguishesOccurrences(t *testing.T) {
	// Two textually-identical Variable nodes must be distinct map keys, as
	// required by the resolver's identity-keyed depth map.
	a := &ast.Variable{Name: token.Token{Lexeme: "x"}}
	b := &ast.Variable{Name: token.Token{Lexeme: "x"}}
	depths := map[ast.Expr]int{a: 0, b: 1}
	if depths[a] == depths[b] {
		t.Fatal("distinct nodes collided in the map despite identical lexemes")
	}
}

func TestFunction_StartUsesNameWhenNoFunToken(t *testing.T) {
	name := token.Token{Lexeme: "greet", Start: token.Position{Line: 2, Column: 2}}
	fn := &ast.Function{Name: name, Body: &ast.Block{LeftBrace: name, RightBrace: name}}
	if got, want := fn.Start(), name.Start; got != want {
		t.Errorf("Start() = %v, want %v (method with no leading fun keyword)", got, want)
	}
}
