package interp

import (
	"testing"

	"github.com/jlvm/jlvm/internal/ast"
	"github.com/jlvm/jlvm/internal/value"
)

func TestArithmeticAddInt64Literals(t *testing.T) {
	body := ast.NewExpr("+", value.Int64(2), value.Int64(3))
	chunk, err := Compile("test", body, nil)
	if err != nil {
		t.Fatal(err)
	}
	vm := NewVM()
	out, err := vm.Run(chunk, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64() != 5 {
		t.Fatalf("expected 5, got %v", out.AsInt64())
	}
}

func TestAssignmentAndLocalLoad(t *testing.T) {
	body := ast.NewExpr("block",
		value.Obj(ast.NewExpr("=", value.Obj(value.Intern("x")), value.Int64(10))),
		value.Obj(ast.NewExpr("+", value.Obj(value.Intern("x")), value.Int64(1))),
	)
	chunk, err := Compile("test", body, nil)
	if err != nil {
		t.Fatal(err)
	}
	vm := NewVM()
	out, err := vm.Run(chunk, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64() != 11 {
		t.Fatalf("expected 11, got %v", out.AsInt64())
	}
}

func TestIfBranchesToElse(t *testing.T) {
	body := ast.NewExpr("if",
		value.Obj(ast.NewExpr("<", value.Int64(5), value.Int64(1))),
		value.Int64(100),
		value.Int64(200),
	)
	chunk, err := Compile("test", body, nil)
	if err != nil {
		t.Fatal(err)
	}
	vm := NewVM()
	out, err := vm.Run(chunk, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64() != 200 {
		t.Fatalf("expected 200, got %v", out.AsInt64())
	}
}

func TestWhileLoopAccumulates(t *testing.T) {
	body := ast.NewExpr("block",
		value.Obj(ast.NewExpr("=", value.Obj(value.Intern("i")), value.Int64(0))),
		value.Obj(ast.NewExpr("=", value.Obj(value.Intern("acc")), value.Int64(0))),
		value.Obj(ast.NewExpr("while",
			value.Obj(ast.NewExpr("<", value.Obj(value.Intern("i")), value.Int64(5))),
			value.Obj(ast.NewExpr("block",
				value.Obj(ast.NewExpr("=", value.Obj(value.Intern("acc")),
					value.Obj(ast.NewExpr("+", value.Obj(value.Intern("acc")), value.Obj(value.Intern("i")))))),
				value.Obj(ast.NewExpr("=", value.Obj(value.Intern("i")),
					value.Obj(ast.NewExpr("+", value.Obj(value.Intern("i")), value.Int64(1))))),
			)),
		)),
		value.Obj(value.Intern("acc")),
	)
	chunk, err := Compile("test", body, nil)
	if err != nil {
		t.Fatal(err)
	}
	vm := NewVM()
	out, err := vm.Run(chunk, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64() != 10 {
		t.Fatalf("expected 10 (0+1+2+3+4), got %v", out.AsInt64())
	}
}

func TestCallDispatchesBuiltinShow(t *testing.T) {
	body := ast.NewExpr("call", value.Obj(value.Intern("show")), value.Int64(42))
	chunk, err := Compile("test", body, nil)
	if err != nil {
		t.Fatal(err)
	}
	vm := NewVM()
	out, err := vm.Run(chunk, nil)
	if err != nil {
		t.Fatal(err)
	}
	if value.Show(out) != `"42"` {
		t.Fatalf(`expected show(42) == "\"42\"", got %v`, value.Show(out))
	}
}
