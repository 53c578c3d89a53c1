package ast

import (
	"testing"

	"github.com/jlvm/jlvm/internal/value"
)

func TestExprShowRendersHeadAndArgs(t *testing.T) {
	e := NewExpr("call", value.SymVal("+"), value.Int64(1), value.Int64(2))
	got := e.Show()
	want := ":(call :+ 1 2)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWalkVisitsNestedExprs(t *testing.T) {
	inner := NewExpr("call", value.SymVal("+"), value.Int64(1), value.Int64(2))
	outer := NewExpr("block", value.Obj(inner))
	var heads []string
	Walk(outer, func(n Node) {
		if e, ok := n.(*Expr); ok {
			heads = append(heads, e.Head.Name())
		}
	})
	if len(heads) != 2 || heads[0] != "block" || heads[1] != "call" {
		t.Fatalf("expected [block call], got %v", heads)
	}
}

func TestTransformIdentityPreservesStructure(t *testing.T) {
	e := NewExpr("call", value.SymVal("x"), value.SymVal("y"))
	out := Transform(e, func(n Node) Node {
		return n
	})
	if out.(*Expr).Head.Name() != "call" {
		t.Fatal("identity transform should preserve structure")
	}
}

func TestQuoteNodeDoesNotExpand(t *testing.T) {
	qn := NewQuoteNode(value.SymVal("x"))
	if qn.Show() != ":(:x)" {
		t.Fatalf("unexpected QuoteNode Show: %s", qn.Show())
	}
}
