// Package loxerr defines the diagnostic types and sink used throughout the
// scanner, parser, resolver and interpreter.
package loxerr

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/marcuscaisey/lox/token"
)

// RuntimeError is raised by the interpreter when evaluation fails at run
// time. It's recovered at the top of Interpret and reported distinctly from
// static errors: a runtime error message is printed before its "[line N]"
// suffix, rather than after an "Error<where>:" prefix.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", e.Message, e.Token.Start.Line)
}

// NewRuntimeError builds a *RuntimeError whose message is constructed from
// format and args as in fmt.Sprintf, attributed to tok.
func NewRuntimeError(tok token.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

// Reporter is the sink that every stage of the pipeline (scanner, parser,
// resolver, interpreter) reports diagnostics through. It replaces a
// process-wide global with an explicit instance owned by the driver, so that
// e.g. the REPL can reset its error flags between lines without disturbing
// global state.
type Reporter struct {
	w               io.Writer
	errColor        *color.Color
	hadError        bool
	hadRuntimeError bool
}

// NewReporter returns a Reporter which writes diagnostics to w. Colouring is
// enabled or disabled automatically by fatih/color's package-level setting,
// which is based on whether the process's standard output is a terminal (via
// its isatty check), not on w itself.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w, errColor: color.New(color.FgRed, color.Bold)}
}

// Report records a static error (scanner, parser or resolver) at line,
// formatted as "[line N] Error<where>: <message>". where is empty for
// scanner errors, " at end" for a parser error at EOF, or " at '<lexeme>'"
// for a parser error elsewhere.
func (r *Reporter) Report(line int, where, message string) {
	r.hadError = true
	fmt.Fprintf(r.w, "[line %d] %s%s: %s\n", line, r.errColor.Sprint("Error"), where, message)
}

// ReportRuntimeError records a runtime error, formatted as
// "<message>\n[line N]".
func (r *Reporter) ReportRuntimeError(err *RuntimeError) {
	r.hadRuntimeError = true
	fmt.Fprintln(r.w, err.Error())
}

// HadError reports whether Report has been called since the last Reset.
func (r *Reporter) HadError() bool {
	return r.hadError
}

// HadRuntimeError reports whether ReportRuntimeError has been called since
// the last Reset.
func (r *Reporter) HadRuntimeError() bool {
	return r.hadRuntimeError
}

// Reset clears both error flags. The REPL calls this after each line so
// that one bad line doesn't poison the exit status of later ones.
func (r *Reporter) Reset() {
	r.hadError = false
	r.hadRuntimeError = false
}
