// Command jlvm is the host shell for the interpreter: run a source file,
// evaluate an inline expression, or drop into a line-at-a-time REPL when
// stdin is a terminal. Grounded structurally on cmd/funxy/main.go's
// flag-then-dispatch shape (help / -e / run-file / REPL-if-no-file), ported
// from its hand-rolled os.Args scanning to github.com/spf13/pflag, with
// github.com/rs/zerolog for -debug diagnostics, github.com/mattn/go-isatty
// for the same "is this a real terminal" check builtins_term.go makes
// before deciding whether to colorize output, and github.com/pkg/errors for
// wrapping a stdin read failure and for errors.As when reporting eval errors.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/jlvm/jlvm/internal/eval"
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/stdlib"
	"github.com/jlvm/jlvm/internal/value"
)

var log zerolog.Logger

func main() {
	var (
		evalExpr = pflag.StringP("eval", "e", "", "evaluate an expression and print its value")
		debug    = pflag.BoolP("debug", "d", false, "log each evaluated chunk to stderr")
		noColor  = pflag.Bool("no-color", false, "disable colorized error output")
	)
	pflag.Parse()

	level := zerolog.WarnLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !colorize(*noColor)}).
		With().Timestamp().Logger().Level(level)

	session := eval.NewSession()
	if err := stdlib.LoadPrelude(session); err != nil {
		fatal(err)
	}

	switch {
	case *evalExpr != "":
		runString(session, "<eval>", *evalExpr, true)
	case pflag.NArg() > 0:
		runFile(session, pflag.Arg(0))
	case isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()):
		repl(session)
	default:
		data, err := readAll(os.Stdin)
		if err != nil {
			fatal(errors.Wrap(err, "reading stdin"))
		}
		runString(session, "<stdin>", data, false)
	}
}

func colorize(noColor bool) bool {
	if noColor {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func runFile(session *eval.Session, path string) {
	log.Debug().Str("file", path).Msg("evaluating file")
	out, err := session.EvalFile(path)
	if err != nil {
		reportError(path, err)
		os.Exit(1)
	}
	_ = out
}

func runString(session *eval.Session, file, source string, print bool) {
	log.Debug().Str("file", file).Msg("evaluating source")
	out, err := session.EvalString(file, source)
	if err != nil {
		reportError(file, err)
		os.Exit(1)
	}
	if print {
		fmt.Println(value.Show(out))
	}
}

// repl reads one line at a time, evaluating each as its own top-level form
// against the same persistent Session so earlier bindings stay visible —
// cmd/funxy has no REPL of its own to ground this on directly, so the loop
// shape instead follows Session.EvalString's documented one-form-per-call
// contract (internal/eval's own doc comment) applied line by line.
func repl(session *eval.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("jlvm> ")
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			out, err := session.EvalString("<repl>", line+"\n")
			if err != nil {
				reportError("<repl>", err)
			} else {
				fmt.Println(value.Show(out))
			}
		}
		fmt.Print("jlvm> ")
	}
	fmt.Println()
}

func reportError(file string, err error) {
	var jerr jlerror.Error
	if errors.As(err, &jerr) {
		fmt.Fprintf(os.Stderr, "ERROR: %s: %s\n", jerr.Kind(), jerr.Message())
		for _, f := range jerr.Backtrace() {
			fmt.Fprintf(os.Stderr, "  at %s (%s:%d)\n", f.Func, f.File, f.Line)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func readAll(f *os.File) (string, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var buf []byte
	for scanner.Scan() {
		buf = append(buf, scanner.Bytes()...)
		buf = append(buf, '\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return string(buf), nil
}
