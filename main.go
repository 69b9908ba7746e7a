// Command lox is the driver for the Lox tree-walking interpreter: argument
// handling, file reading, the interactive prompt loop and ownership of the
// diagnostic sink (a loxerr.Reporter) live here, outside the core
// scan/parse/resolve/interpret pipeline.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"

	"github.com/marcuscaisey/lox/interpreter"
	"github.com/marcuscaisey/lox/loxerr"
	"github.com/marcuscaisey/lox/parser"
	"github.com/marcuscaisey/lox/resolver"
	"github.com/marcuscaisey/lox/scanner"
	"github.com/marcuscaisey/lox/token"
)

var cmd = flag.String("c", "", "Program passed in as a string")

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: lox [script]")
}

func main() {
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if *cmd != "" {
		reporter := loxerr.NewReporter(os.Stderr)
		run(*cmd, "<command-line>", os.Stdout, reporter)
		os.Exit(exitCode(reporter))
	}

	switch flag.NArg() {
	case 0:
		runREPL()
	case 1:
		os.Exit(runFile(flag.Arg(0)))
	default:
		usage()
		os.Exit(64)
	}
}

// runFile reads name, interprets it, and returns the process exit code:
// 65 after a static error, 70 after a runtime error, 0 otherwise. A file
// that can't be read is a driver-level fatal error, not a Lox diagnostic.
func runFile(name string) int {
	src, err := os.ReadFile(name)
	if err != nil {
		log.Fatal(err)
	}
	reporter := loxerr.NewReporter(os.Stderr)
	run(string(src), filepath.Base(name), os.Stdout, reporter)
	return exitCode(reporter)
}

func exitCode(reporter *loxerr.Reporter) int {
	switch {
	case reporter.HadError():
		return 65
	case reporter.HadRuntimeError():
		return 70
	default:
		return 0
	}
}

// runREPL reads one line per "> " prompt, scanning, parsing, resolving and
// interpreting it independently. A blank line is ignored; "exit" or
// end-of-input ends the session. The reporter's error flags are reset after
// each line so that one bad line doesn't affect the next.
func runREPL() {
	cfg := &readline.Config{Prompt: "> "}
	if homeDir, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(homeDir, ".lox_history")
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		log.Fatalf("can't start REPL: %s", err)
	}
	defer rl.Close()

	reporter := loxerr.NewReporter(os.Stderr)
	interp := interpreter.New(os.Stdout, nil, reporter)

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return
			}
			fmt.Fprintf(os.Stderr, "readline: %s\n", err)
			return
		}
		if line == "exit" {
			return
		}
		if line == "" {
			continue
		}
		runLine(line, interp, reporter)
		reporter.Reset()
	}
}

// runLine scans, parses, resolves and interprets src using the REPL's
// long-lived interpreter (so that top-level var/fun declarations persist
// across lines), rebuilding the depth map each time since it's derived from
// a fresh parse.
func runLine(src string, interp *interpreter.Interpreter, reporter *loxerr.Reporter) {
	file := token.NewFile("<stdin>", []byte(src))
	tokens := scanner.Scan(file, reporter)
	program := parser.Parse(tokens, reporter)
	if reporter.HadError() {
		return
	}
	depths := resolver.Resolve(program, reporter)
	if reporter.HadError() {
		return
	}
	interp.SetDepths(depths)
	interp.Interpret(program)
}

// run scans, parses, resolves and interprets src (named name for
// diagnostics), writing program output to stdout.
func run(src, name string, stdout io.Writer, reporter *loxerr.Reporter) {
	file := token.NewFile(name, []byte(src))
	tokens := scanner.Scan(file, reporter)
	program := parser.Parse(tokens, reporter)
	if reporter.HadError() {
		return
	}
	depths := resolver.Resolve(program, reporter)
	if reporter.HadError() {
		return
	}
	interp := interpreter.New(stdout, depths, reporter)
	interp.Interpret(program)
}
