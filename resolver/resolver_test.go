package resolver_test

import (
	"bytes"
	"testing"

	"github.com/marcuscaisey/lox/ast"
	"github.com/marcuscaisey/lox/loxerr"
	"github.com/marcuscaisey/lox/parser"
	"github.com/marcuscaisey/lox/resolver"
	"github.com/marcuscaisey/lox/scanner"
	"github.com/marcuscaisey/lox/token"
)

func resolve(t *testing.T, src string) (*ast.Program, map[ast.Expr]int, string) {
	t.Helper()
	file := token.NewFile("test.lox", []byte(src))
	var buf bytes.Buffer
	reporter := loxerr.NewReporter(&buf)
	tokens := scanner.Scan(file, reporter)
	program := parser.Parse(tokens, reporter)
	depths := resolver.Resolve(program, reporter)
	return program, depths, buf.String()
}

func TestResolve_LocalVariableDistance(t *testing.T) {
	_, depths, errOutput := resolve(t, `
		var a = "global";
		{
			var a = "local";
			print a;
		}
	`)
	if errOutput != "" {
		t.Fatalf("unexpected diagnostics: %s", errOutput)
	}
	if len(depths) != 1 {
		t.Fatalf("got %d resolved expressions, want 1", len(depths))
	}
	for _, d := range depths {
		if d != 0 {
			t.Errorf("got distance %d, want 0 (innermost scope)", d)
		}
	}
}

func TestResolve_GlobalReferenceUnmapped(t *testing.T) {
	_, depths, errOutput := resolve(t, `
		var a = 1;
		print a;
	`)
	if errOutput != "" {
		t.Fatalf("unexpected diagnostics: %s", errOutput)
	}
	if len(depths) != 0 {
		t.Errorf("got %d resolved expressions, want 0 (global reference left unmapped)", len(depths))
	}
}

func TestResolve_ReadOwnInitializerIsError(t *testing.T) {
	_, _, errOutput := resolve(t, `{ var a = a; }`)
	want := "Can't read local variable in its own initializer."
	if !bytes.Contains([]byte(errOutput), []byte(want)) {
		t.Errorf("diagnostics %q doesn't contain %q", errOutput, want)
	}
}

func TestResolve_RedeclarationInSameLocalScopeIsError(t *testing.T) {
	_, _, errOutput := resolve(t, `{ var a = 1; var a = 2; }`)
	want := "Already a variable with this name in this scope."
	if !bytes.Contains([]byte(errOutput), []byte(want)) {
		t.Errorf("diagnostics %q doesn't contain %q", errOutput, want)
	}
}

func TestResolve_RedeclarationAtGlobalScopeIsNotError(t *testing.T) {
	_, _, errOutput := resolve(t, `var a = 1; var a = 2;`)
	if errOutput != "" {
		t.Errorf("unexpected diagnostics for global redeclaration: %s", errOutput)
	}
}

func TestResolve_ReturnAtTopLevelIsError(t *testing.T) {
	_, _, errOutput := resolve(t, `return 1;`)
	want := "Can't return from top-level code."
	if !bytes.Contains([]byte(errOutput), []byte(want)) {
		t.Errorf("diagnostics %q doesn't contain %q", errOutput, want)
	}
}

func TestResolve_ReturnValueFromInitializerIsError(t *testing.T) {
	_, _, errOutput := resolve(t, `class A { init() { return 1; } }`)
	want := "Can't return a value from an initializer."
	if !bytes.Contains([]byte(errOutput), []byte(want)) {
		t.Errorf("diagnostics %q doesn't contain %q", errOutput, want)
	}
}

func TestResolve_BareReturnFromInitializerIsAllowed(t *testing.T) {
	_, _, errOutput := resolve(t, `class A { init() { return; } }`)
	if errOutput != "" {
		t.Errorf("unexpected diagnostics: %s", errOutput)
	}
}

func TestResolve_ThisOutsideClassIsError(t *testing.T) {
	_, _, errOutput := resolve(t, `print this;`)
	want := "Can't use 'this' outside of a class."
	if !bytes.Contains([]byte(errOutput), []byte(want)) {
		t.Errorf("diagnostics %q doesn't contain %q", errOutput, want)
	}
}

func TestResolve_SuperOutsideClassIsError(t *testing.T) {
	_, _, errOutput := resolve(t, `print super.a;`)
	want := "Can't use 'super' outside of a class."
	if !bytes.Contains([]byte(errOutput), []byte(want)) {
		t.Errorf("diagnostics %q doesn't contain %q", errOutput, want)
	}
}

func TestResolve_SuperWithoutSuperclassIsError(t *testing.T) {
	_, _, errOutput := resolve(t, `class A { m() { super.m(); } }`)
	want := "Can't use 'super' in a class with no superclass."
	if !bytes.Contains([]byte(errOutput), []byte(want)) {
		t.Errorf("diagnostics %q doesn't contain %q", errOutput, want)
	}
}

func TestResolve_ClassInheritingFromItselfIsError(t *testing.T) {
	_, _, errOutput := resolve(t, `class A < A {}`)
	want := "A class can't inherit from itself."
	if !bytes.Contains([]byte(errOutput), []byte(want)) {
		t.Errorf("diagnostics %q doesn't contain %q", errOutput, want)
	}
}
