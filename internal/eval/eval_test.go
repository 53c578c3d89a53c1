package eval

import (
	"math"
	"testing"

	"github.com/jlvm/jlvm/internal/heap"
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/value"
)

func TestEvalStringArithmetic(t *testing.T) {
	s := NewSession()
	out, err := s.EvalString("test", "1 + 2 * 3\n")
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64Generic() != 7 {
		t.Fatalf("expected 7, got %v", out.AsInt64Generic())
	}
}

func TestEvalStringPersistsGlobalsAcrossCalls(t *testing.T) {
	s := NewSession()
	if _, err := s.EvalString("test", "x = 10\n"); err != nil {
		t.Fatal(err)
	}
	out, err := s.EvalString("test", "x + 5\n")
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64Generic() != 15 {
		t.Fatalf("expected 15, got %v", out.AsInt64Generic())
	}
}

func TestEvalStringIfWhile(t *testing.T) {
	s := NewSession()
	out, err := s.EvalString("test", "n = 0\nwhile n < 5\n  n = n + 1\nend\nn\n")
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64Generic() != 5 {
		t.Fatalf("expected 5, got %v", out.AsInt64Generic())
	}
}

func TestEvalStringSyntaxErrorReturnsError(t *testing.T) {
	s := NewSession()
	if _, err := s.EvalString("test", "if\n"); err == nil {
		t.Fatal("expected a parse error for a malformed if")
	}
}

// TestBroadcastCallFusionSinCos covers scenario 1: two elementwise function
// calls combined through a user-defined binary function, each side broadcast
// with "f.(args)" (this subset has no infix ".op" sugar, only the
// parenthesized broadcast-call form), materializing to the elementwise
// combination of the two per-element results.
func TestBroadcastCallFusionSinCos(t *testing.T) {
	s := NewSession()
	src := `
function addxy(a, b)
    return a + b
end
x = [0.0, 1.0, 2.0]
r = addxy.(sin.(x), cos.(x))
r
`
	out, err := s.EvalString("test", src)
	if err != nil {
		t.Fatal(err)
	}
	arr, ok := out.Obj.(*heap.Array)
	if !ok {
		t.Fatalf("expected array result, got %v", out)
	}
	if arr.Len() != 3 {
		t.Fatalf("expected length 3, got %d", arr.Len())
	}
	xs := []float64{0.0, 1.0, 2.0}
	for i, xv := range xs {
		v, err := arr.Get(int64(i + 1))
		if err != nil {
			t.Fatal(err)
		}
		want := math.Sin(xv) + math.Cos(xv)
		if v.AsFloat64() != want {
			t.Fatalf("r[%d]: got %v want %v", i+1, v.AsFloat64(), want)
		}
	}
}

// TestDispatchDiagonalRule covers scenario 2: a `where T` short-form method
// whose two parameters share the same type variable only matches when both
// arguments are the same concrete type, and fails with a MethodError
// otherwise (spec.md §4.2's diagonal dispatch rule).
func TestDispatchDiagonalRule(t *testing.T) {
	s := NewSession()
	if _, err := s.EvalString("test", "same_type(x::T, y::T) where T = (x, y)\n"); err != nil {
		t.Fatal(err)
	}

	out, err := s.EvalString("test", "same_type(1, 2)\n")
	if err != nil {
		t.Fatal(err)
	}
	tup, ok := out.Obj.(*value.Tuple)
	if !ok || tup.Len() != 2 {
		t.Fatalf("expected a 2-tuple, got %v", out)
	}
	if tup.Elems[0].AsInt64Generic() != 1 || tup.Elems[1].AsInt64Generic() != 2 {
		t.Fatalf("expected (1, 2), got %v", out)
	}

	if _, err := s.EvalString("test", "same_type(1, 2.0)\n"); err == nil {
		t.Fatal("expected a MethodError when T can't unify Int64 and Float64")
	} else if jerr, ok := err.(jlerror.Error); !ok || jerr.Kind() != "MethodError" {
		t.Fatalf("expected MethodError, got %v", err)
	}
}

// TestCompoundFieldAssignment covers scenario 3: `c.n += 5; c.n *= 3` on a
// mutable struct field, each compound assignment loading and storing the
// field exactly once per operation rather than re-evaluating `c`.
func TestCompoundFieldAssignment(t *testing.T) {
	s := NewSession()
	src := `
mutable struct Counter
    n::Int64
end
c = Counter(0)
c.n += 5
c.n *= 3
c.n
`
	out, err := s.EvalString("test", src)
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64Generic() != 15 {
		t.Fatalf("expected 15, got %v", out.AsInt64Generic())
	}
}

// TestMissingArithmeticAndCoalesce covers scenario 4: `missing` propagates
// through arithmetic and `==`, `isequal` treats two `missing`s as equal
// (unlike `==`), and `coalesce` picks the first non-missing argument.
func TestMissingArithmeticAndCoalesce(t *testing.T) {
	s := NewSession()

	out, err := s.EvalString("test", "missing + 1\n")
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsMissing() {
		t.Fatalf("expected missing + 1 to be missing, got %v", out)
	}

	out, err = s.EvalString("test", "missing == missing\n")
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsMissing() {
		t.Fatalf("expected missing == missing to be missing, got %v", out)
	}

	out, err = s.EvalString("test", "isequal(missing, missing)\n")
	if err != nil {
		t.Fatal(err)
	}
	if !out.AsBool() {
		t.Fatalf("expected isequal(missing, missing) to be true, got %v", out)
	}

	out, err = s.EvalString("test", "coalesce(missing, missing, 7)\n")
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64Generic() != 7 {
		t.Fatalf("expected coalesce to pick 7, got %v", out)
	}
}

// TestBroadcastShapeMismatchRaisesDimensionMismatch covers scenario 5: a
// broadcast-call over two arrays of incompatible, non-1 lengths raises
// DimensionMismatch naming both shapes rather than silently truncating.
func TestBroadcastShapeMismatchRaisesDimensionMismatch(t *testing.T) {
	s := NewSession()
	src := `
function addxy(a, b)
    return a + b
end
a = [1, 2]
b = [1, 2, 3]
addxy.(a, b)
`
	_, err := s.EvalString("test", src)
	if err == nil {
		t.Fatal("expected a DimensionMismatch error")
	}
	jerr, ok := err.(jlerror.Error)
	if !ok || jerr.Kind() != "DimensionMismatch" {
		t.Fatalf("expected DimensionMismatch, got %v", err)
	}
}

// TestMacroHygieneSwap covers scenario 6: a `@swap(x, y)` macro's own
// internal temporary (`t`) can't capture the caller's variables of the same
// name, while its parameters still refer to whatever the caller passed.
func TestMacroHygieneSwap(t *testing.T) {
	s := NewSession()
	src := `
macro swap(a, b)
    local t = a
    a = b
    b = t
end
x = 1
y = 2
@swap(x, y)
`
	if _, err := s.EvalString("test", src); err != nil {
		t.Fatal(err)
	}
	out, err := s.EvalString("test", "x\n")
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64Generic() != 2 {
		t.Fatalf("expected x == 2 after swap, got %v", out.AsInt64Generic())
	}
	out, err = s.EvalString("test", "y\n")
	if err != nil {
		t.Fatal(err)
	}
	if out.AsInt64Generic() != 1 {
		t.Fatalf("expected y == 1 after swap, got %v", out.AsInt64Generic())
	}
}
