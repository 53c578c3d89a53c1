package heap

import (
	"testing"

	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

func TestArrayColMajorAndBounds(t *testing.T) {
	a := NewArray(types.Int64, []int{2, 3})
	for i := 0; i < 6; i++ {
		a.Mem.Data[i] = value.Int64(int64(i))
	}
	v, err := a.Get(2, 1)
	if err != nil || v.AsInt64() != 1 {
		t.Fatalf("Get(2,1) should be column-major index 1, got %v err=%v", v, err)
	}
	if _, err := a.Get(3, 1); err == nil {
		t.Fatal("Get(3,1) should bounds-error on a 2x3 array")
	}
}

func TestStructMutableImmutable(t *testing.T) {
	mutT := &types.DataType{Name: "C", FieldNames: []string{"n"}, FieldTypes: []types.Type{types.Int64}, IsMutable: true}
	s := NewStruct(mutT, []value.Value{value.Int64(0)})
	if err := s.SetField("n", value.Int64(5)); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetField("n")
	if got.AsInt64() != 5 {
		t.Fatalf("expected 5, got %v", got)
	}

	immT := &types.DataType{Name: "P", FieldNames: []string{"x"}, FieldTypes: []types.Type{types.Int64}, IsMutable: false}
	imm := NewStruct(immT, []value.Value{value.Int64(1)})
	if err := imm.SetField("x", value.Int64(2)); err == nil {
		t.Fatal("setfield! on an immutable struct should error")
	}
}

func TestStructIdentity(t *testing.T) {
	mutT := &types.DataType{Name: "C", FieldNames: []string{"n"}, FieldTypes: []types.Type{types.Int64}, IsMutable: true}
	a := NewStruct(mutT, []value.Value{value.Int64(1)})
	b := NewStruct(mutT, []value.Value{value.Int64(1)})
	if value.Identical(value.Obj(a), value.Obj(a)) != true {
		t.Fatal("a === a should hold")
	}
	if value.Identical(value.Obj(a), value.Obj(b)) {
		t.Fatal("two distinct struct instances must not be === even with equal fields")
	}
}

func TestDictAndSet(t *testing.T) {
	d := NewDict(types.StringT, types.Int64)
	d.Set(value.Obj(value.NewString("a")), value.Int64(1))
	d.Set(value.Obj(value.NewString("a")), value.Int64(2))
	got, err := d.Get(value.Obj(value.NewString("a")))
	if err != nil || got.AsInt64() != 2 {
		t.Fatalf("expected overwrite to 2, got %v err=%v", got, err)
	}
	if _, err := d.Get(value.Obj(value.NewString("missing-key"))); err == nil {
		t.Fatal("Get on a missing key should raise KeyError")
	}

	s := NewSet(types.Int64)
	if !s.Push(value.Int64(1)) {
		t.Fatal("first push should succeed")
	}
	if s.Push(value.Int64(1)) {
		t.Fatal("duplicate push should report false")
	}
	if s.Len() != 1 {
		t.Fatalf("expected len 1, got %d", s.Len())
	}
}
