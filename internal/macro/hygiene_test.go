package macro

import (
	"testing"

	"github.com/jlvm/jlvm/internal/ast"
	"github.com/jlvm/jlvm/internal/config"
	"github.com/jlvm/jlvm/internal/value"
)

func TestGensymDeterministicUnderTestMode(t *testing.T) {
	config.DeterministicGensym = true
	defer func() { config.DeterministicGensym = false }()
	a := Gensym("x")
	b := Gensym("x")
	if a.Name() == b.Name() {
		t.Fatalf("expected distinct gensyms, got %q twice", a.Name())
	}
}

func TestExpandRenamesUnescapedSymbol(t *testing.T) {
	body := ast.NewExpr("=", value.Obj(value.Intern("tmp")), value.Int64(1))
	alias := value.Intern("##tmp#1")
	out := Expand(body, map[string]*value.Symbol{"tmp": alias})
	e := out.(*ast.Expr)
	got := e.Args[0].Obj.(*value.Symbol)
	if got.Name() != alias.Name() {
		t.Fatalf("expected rename to %q, got %q", alias.Name(), got.Name())
	}
}

func TestExpandLeavesEscapedSymbolAlone(t *testing.T) {
	inner := ast.NewExpr("=", value.Obj(value.Intern("tmp")), value.Int64(1))
	escaped := Esc(inner)
	out := Expand(escaped, map[string]*value.Symbol{"tmp": value.Intern("##tmp#1")})
	e := out.(*ast.Expr)
	got := e.Args[0].Obj.(*value.Symbol)
	if got.Name() != "tmp" {
		t.Fatalf("expected esc to preserve original name, got %q", got.Name())
	}
}

func TestCollectIntroducedNamesFindsAssignmentTargets(t *testing.T) {
	body := ast.NewExpr("block",
		value.Obj(ast.NewExpr("=", value.Obj(value.Intern("a")), value.Int64(1))),
		value.Obj(ast.NewExpr("=", value.Obj(value.Intern("b")), value.Int64(2))),
	)
	names := CollectIntroducedNames(body)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("expected [a b], got %v", names)
	}
}
