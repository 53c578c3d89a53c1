// Package macro implements the hygienic-expansion mechanics of spec.md
// §4.5: gensym'd renaming of symbols introduced by a macro body, and the
// esc(x) escape hatch that opts a symbol back out of renaming so it refers
// to the macro call site's own scope. The macro *invocation* itself (binding
// a macro's parameters to the call site's argument Exprs and evaluating the
// body) lives in internal/eval, which owns the parse->macroexpand->lower->
// interpret pipeline (spec.md §4.5) and is the only package positioned to
// actually run Julia code; this package is the pure tree-rewriting half.
//
// Grounded on the teacher's environment-chaining pattern in
// internal/evaluator/evaluator.go (a new Environment per call scope,
// generalized here from runtime variable scoping to compile-time symbol
// renaming) and on internal/ast's Walk/Transform traversal.
package macro

import (
	"strconv"
	"sync/atomic"

	"github.com/jlvm/jlvm/internal/ast"
	"github.com/jlvm/jlvm/internal/config"
	"github.com/jlvm/jlvm/internal/value"
)

var gensymCounter uint64

// Gensym returns a fresh symbol guaranteed not to collide with any
// user-written identifier (spec.md §4.5: "renamed via gensym"). Under
// config.DeterministicGensym (set by the test harness, see
// internal/config) the name is a plain incrementing counter so golden
// output is reproducible; otherwise a uuid suffix is used so two
// concurrent expansions can never collide even across process restarts
// with a persisted stdlib cache (SPEC_FULL §B's sqlite-backed bundle cache
// makes cross-run collision a real, if remote, concern plain counters
// don't guard against).
func Gensym(base string) *value.Symbol {
	if config.DeterministicGensym {
		n := atomic.AddUint64(&gensymCounter, 1)
		return value.Intern("##" + base + "#" + strconv.FormatUint(n, 10))
	}
	return value.Intern("##" + base + "#" + value.NewUUID().String())
}

// escapeHead is the synthetic Expr head Esc wraps a node in; Expand strips
// exactly one level of this wrapper per traversal pass (spec.md §4.5:
// "stripping one level of esc per traversal").
const escapeHead = "##escape##"

// Esc marks n as referring to the macro call site's own scope, exempting
// it from the gensym-renaming pass (spec.md §4.5: "unless wrapped in
// esc(x)").
func Esc(n ast.Node) *ast.Expr {
	return ast.NewExpr(escapeHead, value.Obj(n))
}

// Expand rewrites the Expr tree a macro body produced: every unescaped
// Symbol is replaced by its gensym alias from renames (computed once per
// expansion, consistently, so repeated occurrences of the same
// macro-introduced name keep referring to the same binding), and any
// `esc(...)` wrapper is removed along with exempting its contents from
// rewriting.
func Expand(n ast.Node, renames map[string]*value.Symbol) ast.Node {
	return expand(n, renames, false)
}

func expand(n ast.Node, renames map[string]*value.Symbol, underEscape bool) ast.Node {
	e, ok := n.(*ast.Expr)
	if !ok {
		return n
	}
	if e.Head.Name() == escapeHead && len(e.Args) == 1 {
		inner := e.Args[0]
		if inner.Tag == value.TagObj {
			if node, ok := inner.Obj.(ast.Node); ok {
				return expand(node, renames, true)
			}
		}
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
			if underEscape {
				continue
			}
			alias, ok := renames[sym.Name()]
			if !ok {
				continue
			}
			newArgs[i] = value.Obj(alias)
			changed = true
			continue
		}
		if node, ok := a.Obj.(ast.Node); ok {
			rewritten := expand(node, renames, underEscape)
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

// CollectIntroducedNames walks body (before expansion) and returns the set
// of bare symbol names that appear as assignment/binding targets — the
// candidates Expand's caller (internal/eval) should gensym, as opposed to
// names that merely reference an existing outer binding and must NOT be
// renamed. This subset's heuristic: any symbol appearing as the first
// argument of an `=`/`local`/`for`/`function`-headed Expr.
func CollectIntroducedNames(body ast.Node) []string {
	seen := map[string]bool{}
	var names []string
	ast.Walk(body, func(n ast.Node) {
		e, ok := n.(*ast.Expr)
		if !ok {
			return
		}
		switch e.Head.Name() {
		case "=", "local", "for", "function":
			if len(e.Args) == 0 {
				return
			}
			target := e.Args[0]
			if target.Tag != value.TagObj {
				return
			}
			if sym, ok := target.Obj.(*value.Symbol); ok {
				if !seen[sym.Name()] {
					seen[sym.Name()] = true
					names = append(names, sym.Name())
				}
			}
		}
	})
	return names
}
