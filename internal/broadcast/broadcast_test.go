package broadcast

import (
	"testing"

	"github.com/jlvm/jlvm/internal/heap"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

func addFn(args []value.Value) (value.Value, error) {
	return value.Float64(args[0].AsFloat64Generic() + args[1].AsFloat64Generic()), nil
}

func vec(vals ...int64) *heap.Array {
	elems := make([]value.Value, len(vals))
	for i, v := range vals {
		elems[i] = value.Int64(v)
	}
	return heap.NewArrayFrom(types.Int64, []int{len(vals)}, elems)
}

func TestBroadcastShapeScalarAndArray(t *testing.T) {
	shape, err := BroadcastShape([]int{3}, nil)
	if err != nil || len(shape) != 1 || shape[0] != 3 {
		t.Fatalf("expected [3], got %v err=%v", shape, err)
	}
}

func TestBroadcastShapeMismatchErrors(t *testing.T) {
	if _, err := BroadcastShape([]int{3}, []int{4}); err == nil {
		t.Fatal("expected DimensionMismatch for incompatible shapes")
	}
}

func TestMaterializeArrayScalar(t *testing.T) {
	a := vec(1, 2, 3)
	bc := New("+", addFn, value.Obj(a), value.Float64(10))
	out, err := Materialize(value.Obj(bc))
	if err != nil {
		t.Fatal(err)
	}
	arr := out.Obj.(*heap.Array)
	for i := int64(1); i <= 3; i++ {
		v, _ := arr.Get(i)
		want := float64(i) + 10
		if v.AsFloat64() != want {
			t.Fatalf("index %d: got %v want %v", i, v.AsFloat64(), want)
		}
	}
}

func TestMaterializeAllScalarShortCircuits(t *testing.T) {
	out, err := Broadcast("+", addFn, value.Float64(1), value.Float64(2))
	if err != nil {
		t.Fatal(err)
	}
	if out.AsFloat64() != 3 {
		t.Fatalf("expected 3, got %v", out.AsFloat64())
	}
}

func TestMaterializeIntoDetectsAliasing(t *testing.T) {
	a := vec(1, 2, 3)
	bc := New("+", addFn, value.Obj(a), value.Float64(1))
	if err := MaterializeInto(a, value.Obj(bc)); err != nil {
		t.Fatal(err)
	}
	v, _ := a.Get(1)
	if v.AsFloat64() != 2 {
		t.Fatalf("expected a[1] updated to 2 via unaliased snapshot, got %v", v.AsFloat64())
	}
	v3, _ := a.Get(3)
	if v3.AsFloat64() != 4 {
		t.Fatalf("expected a[3] = 3+1 = 4 using the pre-mutation snapshot, got %v", v3.AsFloat64())
	}
}

func TestCombineStyleArrayDominatesScalar(t *testing.T) {
	s := Combine(ScalarStyle, ArrayStyle(2))
	if !s.IsArray() || s.NDim() != 2 {
		t.Fatalf("expected array style ndim=2, got %+v", s)
	}
}

// TestFlattenRemovesNestedBroadcasted covers spec's fusion guarantee
// directly: a two-level-nested Broadcasted (an outer "+" over two inner
// per-leaf functions of the same array) flattens into a single Broadcasted
// whose Args are all leaves, and materializing it agrees with materializing
// the unflattened original.
func TestFlattenRemovesNestedBroadcasted(t *testing.T) {
	x := vec(0, 1, 2)
	double := New("double", func(args []value.Value) (value.Value, error) {
		return value.Float64(args[0].AsFloat64Generic() * 2), nil
	}, value.Obj(x))
	triple := New("triple", func(args []value.Value) (value.Value, error) {
		return value.Float64(args[0].AsFloat64Generic() * 3), nil
	}, value.Obj(x))
	outer := New("+", addFn, value.Obj(double), value.Obj(triple))

	flat := Flatten(outer)
	if len(flat.Args) != 2 {
		t.Fatalf("expected 2 flattened leaves (x, x), got %d", len(flat.Args))
	}
	for _, a := range flat.Args {
		if _, ok := asBroadcasted(a); ok {
			t.Fatalf("expected flat.Args to contain no nested Broadcasted, got %v", a)
		}
	}

	want, err := Materialize(value.Obj(outer))
	if err != nil {
		t.Fatal(err)
	}
	got, err := Materialize(value.Obj(flat))
	if err != nil {
		t.Fatal(err)
	}
	wantArr, gotArr := want.Obj.(*heap.Array), got.Obj.(*heap.Array)
	for i := int64(1); i <= 3; i++ {
		wv, _ := wantArr.Get(i)
		gv, _ := gotArr.Get(i)
		if wv.AsFloat64() != gv.AsFloat64() {
			t.Fatalf("index %d: flatten changed the result, got %v want %v", i, gv.AsFloat64(), wv.AsFloat64())
		}
	}
}
