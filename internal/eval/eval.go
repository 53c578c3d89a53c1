// Package eval is the top-level entry point tying parse -> macroexpand ->
// compile -> run together (spec.md §A.4's eval/include_string/evalfile
// surface): internal/parser turns source text into an ast.Expr tree,
// internal/macro hygienically expands any macro invocations in it,
// internal/interp's Compiler lowers the expanded tree to bytecode, and
// internal/interp's VM executes it.
//
// Grounded on the teacher's internal/evaluator.Evaluator's top-level
// Eval/New entry points — a single struct wrapping a reusable VM the
// caller drives across many source strings from one REPL/file-eval
// session, preserving globals between calls the same way the teacher's
// Evaluator preserves its root Environment.
package eval

import (
	"os"

	"github.com/jlvm/jlvm/internal/ast"
	"github.com/jlvm/jlvm/internal/interp"
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/macro"
	"github.com/jlvm/jlvm/internal/parser"
	"github.com/jlvm/jlvm/internal/value"
)

// macroDef is a registered `macro name(params...) body end` definition
// (spec.md §4.5): unlike a `function`, a macro's body operates on unevaluated
// argument Exprs, so it's expanded entirely at this parse/macroexpand stage,
// never compiled or called through internal/method's dispatch.
type macroDef struct {
	paramNames []string
	body       ast.Node
}

// Session wraps one VM instance across repeated evaluations, the same
// globals-persist-across-calls model a REPL or `include`d file needs.
type Session struct {
	vm     *interp.VM
	macros map[string]*macroDef
}

func NewSession() *Session {
	return &Session{vm: interp.NewVM(), macros: map[string]*macroDef{}}
}

// EvalString implements `eval(Meta.parse(str))`/`include_string` (spec.md
// §A.4): parse, macroexpand, compile, and run source text as one
// top-level form, returning its last expression's value.
func (s *Session) EvalString(file, source string) (value.Value, error) {
	block, errs := parser.ParseProgram(source)
	if len(errs) > 0 {
		return value.Value{}, jlerror.NewParseError(errs[0].Error(), 0, 0)
	}
	s.registerMacros(block)
	expanded := s.expandMacros(block)
	chunk, err := interp.CompileTopLevel(file, expanded)
	if err != nil {
		return value.Value{}, err
	}
	return s.vm.Run(chunk, nil)
}

// registerMacros scans n for top-level (and nested) `macrodef` forms and
// records them, so a macro defined earlier in a file — or an earlier
// EvalString call in this same session — is available to calls later in the
// same tree, the way `include`-ing a file full of macro definitions works.
func (s *Session) registerMacros(n ast.Node) {
	ast.Walk(n, func(node ast.Node) {
		e, ok := node.(*ast.Expr)
		if !ok || e.Head.Name() != "macrodef" {
			return
		}
		name := e.Args[0].Obj.(*value.Symbol).Name()
		paramsExpr := e.Args[1].Obj.(*ast.Expr)
		names := make([]string, 0, len(paramsExpr.Args))
		for _, p := range paramsExpr.Args {
			pe := p.Obj.(*ast.Expr)
			names = append(names, pe.Args[0].Obj.(*value.Symbol).Name())
		}
		s.macros[name] = &macroDef{paramNames: names, body: e.Args[2].Obj.(ast.Node)}
	})
}

// expandMacros replaces every `@name(args...)` invocation with its
// hygienically-expanded macro body (spec.md §4.5): call-site argument Exprs
// are substituted for the macro's own parameter names (unevaluated, the way
// a macro sees its arguments as syntax rather than values), then any name
// the body introduces as a fresh binding is gensym-renamed via
// internal/macro so it can't capture a call-site variable of the same name.
// ast.Transform's recursion into the replaced node's own children means a
// macro invocation nested inside another's expansion is picked up in the
// same pass.
func (s *Session) expandMacros(n ast.Node) ast.Node {
	return ast.Transform(n, func(node ast.Node) ast.Node {
		e, ok := node.(*ast.Expr)
		if !ok || e.Head.Name() != "macrocall" {
			return node
		}
		name := e.Args[0].Obj.(*value.Symbol).Name()
		def, ok := s.macros[name]
		if !ok {
			return node
		}
		bindings := map[string]value.Value{}
		isParam := make(map[string]bool, len(def.paramNames))
		for i, pname := range def.paramNames {
			isParam[pname] = true
			if i+1 < len(e.Args) {
				bindings[pname] = e.Args[i+1]
			}
		}
		// Collect gensym candidates from the macro's own (unsubstituted)
		// body, skipping its parameter names: a parameter is already bound
		// to the call-site argument Expr via substitution below, so it must
		// keep referring to whatever the caller passed, never a fresh name.
		// Only names the body introduces beyond its parameters — like `t` in
		// `local t = a; a = b; b = t` — need gensym-renaming to avoid
		// capturing a caller variable that happens to share that name.
		renames := map[string]*value.Symbol{}
		for _, name := range macro.CollectIntroducedNames(def.body) {
			if !isParam[name] {
				renames[name] = macro.Gensym(name)
			}
		}
		substituted := substituteParams(def.body, bindings)
		return macro.Expand(substituted, renames)
	})
}

// substituteParams replaces each occurrence of a macro parameter symbol
// with its bound call-site argument Expr — syntactic substitution, not
// evaluation, mirroring macro.expand's own Args-walking shape but keyed on
// parameter bindings instead of gensym aliases.
func substituteParams(n ast.Node, bindings map[string]value.Value) ast.Node {
	e, ok := n.(*ast.Expr)
	if !ok {
		return n
	}
	newArgs := make([]value.Value, len(e.Args))
	changed := false
	for i, a := range e.Args {
		newArgs[i] = a
		if a.Tag != value.TagObj {
			continue
		}
		if sym, ok := a.Obj.(*value.Symbol); ok {
			if bound, ok := bindings[sym.Name()]; ok {
				newArgs[i] = bound
				changed = true
			}
			continue
		}
		if node, ok := a.Obj.(ast.Node); ok {
			rewritten := substituteParams(node, bindings)
			if rewritten != node {
				newArgs[i] = value.Obj(rewritten)
				changed = true
			}
		}
	}
	if !changed {
		return e
	}
	return &ast.Expr{Head: e.Head, Args: newArgs}
}

// EvalFile implements `include(path)`: read a file and evaluate its
// contents as one top-level form, the source file's own path becoming the
// chunk's name for backtrace reporting.
func (s *Session) EvalFile(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Value{}, jlerror.NewLoadError(path, err)
	}
	return s.EvalString(path, string(data))
}

// VM exposes the underlying VM for callers (internal/stdlib, cmd/jlvm)
// that need direct access to Globals/Functions, e.g. to preload a
// standard-library source set before the user's own code runs.
func (s *Session) VM() *interp.VM { return s.vm }
