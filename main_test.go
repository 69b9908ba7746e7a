package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/marcuscaisey/lox/loxerr"
)

func runSrc(t *testing.T, src string) (stdout, stderr string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	reporter := loxerr.NewReporter(&errBuf)
	run(src, "test.lox", &out, reporter)
	return out.String(), errBuf.String()
}

func TestRun_EndToEndScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "arithmetic",
			src:  `print 1 + 2;`,
			want: "3\n",
		},
		{
			name: "closure captures declaration-time binding",
			src:  `var a = "g"; { fun f(){ print a; } f(); var a = "l"; f(); }`,
			want: "g\ng\n",
		},
		{
			name: "recursive fibonacci",
			src:  `fun fib(n){ if (n<2) return n; return fib(n-2)+fib(n-1); } print fib(7);`,
			want: "13\n",
		},
		{
			name: "for loop summation",
			src:  `var s=0; for (var i=1; i<=5; i=i+1) s=s+i; print s;`,
			want: "15\n",
		},
		{
			name: "single inheritance with super",
			src: `class A { greet(){ print "hi"; } } ` +
				`class B < A { greet(){ super.greet(); print "hey"; } } B().greet();`,
			want: "hi\nhey\n",
		},
		{
			name: "initializer and field mutation",
			src:  `class Bagel { init(){ this.n = 0; } } var b = Bagel(); b.n = b.n + 1; print b.n;`,
			want: "1\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr := runSrc(t, tt.src)
			if stderr != "" {
				t.Fatalf("unexpected diagnostics: %s", stderr)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestRun_ErrorScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "mixed operand types to +",
			src:  `print "a" + 1;`,
			want: "Operands must be two numbers or two strings.",
		},
		{
			name: "top-level return",
			src:  `return 1;`,
			want: "Can't return from top-level code.",
		},
		{
			name: "read own initializer",
			src:  `{ var a = a; }`,
			want: "Can't read local variable in its own initializer.",
		},
		{
			name: "class inherits from itself",
			src:  `class A < A {}`,
			want: "A class can't inherit from itself.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr := runSrc(t, tt.src)
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("diagnostics %q doesn't contain %q", stderr, tt.want)
			}
		})
	}
}

func TestRun_RuntimeErrorDiagnosticFormat(t *testing.T) {
	_, stderr := runSrc(t, `print "a" + 1;`)
	want := "Operands must be two numbers or two strings.\n[line 1]"
	if !strings.Contains(stderr, want) {
		t.Errorf("diagnostics %q doesn't contain %q (runtime format is <message>\\n[line N])", stderr, want)
	}
}

func TestRun_StaticErrorDiagnosticFormat(t *testing.T) {
	_, stderr := runSrc(t, `var ;`)
	if !strings.HasPrefix(stderr, "[line 1] Error") {
		t.Errorf("diagnostics %q doesn't start with the static error prefix", stderr)
	}
}

func TestRun_DivisionByZero(t *testing.T) {
	_, stderr := runSrc(t, `print 1 / 0;`)
	if !strings.Contains(stderr, "Division by zero.") {
		t.Errorf("diagnostics %q doesn't contain %q", stderr, "Division by zero.")
	}
}

func TestRun_StackOverflowIsRuntimeErrorNotCrash(t *testing.T) {
	_, stderr := runSrc(t, `fun f() { return f(); } f();`)
	if !strings.Contains(stderr, "Stack overflow.") {
		t.Errorf("diagnostics %q doesn't contain %q", stderr, "Stack overflow.")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantCode int
	}{
		{"success", `print 1;`, 0},
		{"static error", `var ;`, 65},
		{"runtime error", `print 1 + "a";`, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errBuf bytes.Buffer
			reporter := loxerr.NewReporter(&errBuf)
			run(tt.src, "test.lox", &out, reporter)
			if got := exitCode(reporter); got != tt.wantCode {
				t.Errorf("exitCode() = %d, want %d", got, tt.wantCode)
			}
		})
	}
}
