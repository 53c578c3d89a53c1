package parser

import (
	"testing"

	"github.com/jlvm/jlvm/internal/ast"
	"github.com/jlvm/jlvm/internal/value"
)

func mustParse(t *testing.T, src string) *ast.Expr {
	t.Helper()
	block, errs := ParseProgram(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return block
}

func TestParsesAssignmentExpr(t *testing.T) {
	block := mustParse(t, "x = 1 + 2\n")
	if block.Head.Name() != "block" || len(block.Args) != 1 {
		t.Fatalf("expected one-statement block, got %s", block.Show())
	}
	assign, ok := block.Args[0].Obj.(*ast.Expr)
	if !ok || assign.Head.Name() != "=" {
		t.Fatalf("expected top-level assignment, got %v", block.Args[0])
	}
	rhs, ok := assign.Args[1].Obj.(*ast.Expr)
	if !ok || rhs.Head.Name() != "+" {
		t.Fatalf("expected rhs to be a + Expr, got %v", assign.Args[1])
	}
	if rhs.Args[0].AsInt64() != 1 || rhs.Args[1].AsInt64() != 2 {
		t.Fatalf("unexpected operands: %+v", rhs.Args)
	}
}

func TestParsesIfElseifElse(t *testing.T) {
	block := mustParse(t, "if x\n  1\nelseif y\n  2\nelse\n  3\nend")
	ifExpr := block.Args[0].Obj.(*ast.Expr)
	if ifExpr.Head.Name() != "if" || len(ifExpr.Args) != 3 {
		t.Fatalf("expected 3-arg if (cond, then, elseif-chain), got %s", ifExpr.Show())
	}
	nested, ok := ifExpr.Args[2].Obj.(*ast.Expr)
	if !ok || nested.Head.Name() != "if" {
		t.Fatalf("expected nested elseif to desugar to another if, got %v", ifExpr.Args[2])
	}
}

func TestParsesWhileLoop(t *testing.T) {
	block := mustParse(t, "while x < 10\n  x = x + 1\nend")
	wExpr := block.Args[0].Obj.(*ast.Expr)
	if wExpr.Head.Name() != "while" {
		t.Fatalf("expected while Expr, got %s", wExpr.Show())
	}
}

func TestParsesCallAndBroadcastCall(t *testing.T) {
	block := mustParse(t, "f(1, 2)\ng.(x)\n")
	call := block.Args[0].Obj.(*ast.Expr)
	if call.Head.Name() != "call" || len(call.Args) != 3 {
		t.Fatalf("expected call with 2 args, got %s", call.Show())
	}
	bcast := block.Args[1].Obj.(*ast.Expr)
	if bcast.Head.Name() != "broadcast_call" {
		t.Fatalf("expected broadcast_call, got %s", bcast.Show())
	}
}

func TestParsesIndexAndTuple(t *testing.T) {
	block := mustParse(t, "a[1]\n(1, 2, 3)\n")
	ref := block.Args[0].Obj.(*ast.Expr)
	if ref.Head.Name() != "ref" {
		t.Fatalf("expected ref Expr, got %s", ref.Show())
	}
	tup := block.Args[1].Obj.(*ast.Expr)
	if tup.Head.Name() != "tuple" || len(tup.Args) != 3 {
		t.Fatalf("expected 3-elem tuple, got %s", tup.Show())
	}
}

func TestParsesUnaryMinusAsCall(t *testing.T) {
	block := mustParse(t, "-x\n")
	neg := block.Args[0].Obj.(*ast.Expr)
	if neg.Head.Name() != "call" {
		t.Fatalf("expected unary minus to desugar to a call, got %s", neg.Show())
	}
	callee := neg.Args[0].Obj.(*value.Symbol)
	if callee.Name() != "-" {
		t.Fatalf("expected callee '-', got %s", callee.Name())
	}
}
