package numkernel

import (
	"testing"

	"github.com/jlvm/jlvm/internal/heap"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

func vec(vals ...float64) *heap.Array {
	elems := make([]value.Value, len(vals))
	for i, v := range vals {
		elems[i] = value.Float64(v)
	}
	return heap.NewArrayFrom(types.Float64, []int{len(vals)}, elems)
}

func TestDotProduct(t *testing.T) {
	a := vec(1, 2, 3)
	b := vec(4, 5, 6)
	got, err := Dot(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got != 32 {
		t.Fatalf("expected 32, got %v", got)
	}
}

func TestMatMulIdentity(t *testing.T) {
	a := heap.NewArrayFrom(types.Float64, []int{2, 2},
		[]value.Value{value.Float64(1), value.Float64(0), value.Float64(0), value.Float64(1)})
	b := heap.NewArrayFrom(types.Float64, []int{2, 2},
		[]value.Value{value.Float64(1), value.Float64(2), value.Float64(3), value.Float64(4)})
	out, err := MatMul(a, b)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := out.Get(1, 2)
	if v.AsFloat64() != 3 {
		t.Fatalf("expected identity*b == b, got %v at [1,2]", v.AsFloat64())
	}
}

func TestMatMulDimensionMismatchErrors(t *testing.T) {
	a := heap.NewArrayFrom(types.Float64, []int{2, 3}, make([]value.Value, 6))
	b := heap.NewArrayFrom(types.Float64, []int{2, 2}, make([]value.Value, 4))
	if _, err := MatMul(a, b); err == nil {
		t.Fatal("expected DimensionMismatch for incompatible inner dimensions")
	}
}
