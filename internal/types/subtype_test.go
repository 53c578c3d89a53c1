package types

import "testing"

func vecOf(elem Type) *DataType {
	return &DataType{Name: "Vector", Params: []Type{elem}, Super: Any}
}

func tupleOf(elems ...Type) *TupleType {
	return &TupleType{Elems: elems}
}

func TestTupleCovariance(t *testing.T) {
	if !Subtype(tupleOf(Int64), tupleOf(named("Int64"))) {
		t.Fatal("Tuple{Int} should be <: Tuple{Int}")
	}
	number := NewAbstract("Number", Any)
	Int64.Super = number
	defer func() { Int64.Super = Any }()
	if !Subtype(tupleOf(Int64), tupleOf(Type(number))) {
		t.Fatal("Tuple{Int} should be <: Tuple{Number} (covariant)")
	}
}

func TestArrayInvariance(t *testing.T) {
	number := NewAbstract("Number", Any)
	Int64.Super = number
	defer func() { Int64.Super = Any }()
	if Subtype(vecOf(Int64), vecOf(Type(number))) {
		t.Fatal("Vector{Int} must NOT be <: Vector{Number} (invariant)")
	}
	if !Subtype(vecOf(Int64), vecOf(Int64)) {
		t.Fatal("Vector{Int} <: Vector{Int} should hold (reflexivity)")
	}
}

func TestUnionDistribution(t *testing.T) {
	u := NewUnion(Int64, Float64)
	if !Subtype(Int64, u) {
		t.Fatal("Int64 <: Union{Int64,Float64} should hold")
	}
	if !Subtype(u, Any) {
		t.Fatal("Union{...} <: Any should hold")
	}
	if Subtype(u, Int64) {
		t.Fatal("Union{Int64,Float64} <: Int64 should NOT hold")
	}
}

func TestBottomAndAny(t *testing.T) {
	if !Subtype(Bottom, Int64) {
		t.Fatal("Bottom <: anything")
	}
	if !Subtype(Int64, Any) {
		t.Fatal("anything <: Any")
	}
}

func TestUnionAllInstantiation(t *testing.T) {
	number := NewAbstract("Number", Any)
	tv := TypeVar{Name: "T", Upper: number}
	ua := &UnionAll{Var: tv, Body: vecOf(tv)}
	Int64.Super = number
	defer func() { Int64.Super = Any }()
	concrete := ua.Instantiate(Int64)
	dt, ok := concrete.(*DataType)
	if !ok || dt.Name != "Vector" || !dt.Params[0].Equal(Int64) {
		t.Fatalf("expected Vector{Int64}, got %v", concrete)
	}
}

func TestPromoteType(t *testing.T) {
	if p := PromoteType(Int64, Float64); !p.Equal(Float64) {
		t.Fatalf("Int ∪ Float -> Float64, got %v", p)
	}
	if p := PromoteType(Bool, Int8); !p.Equal(Int8) {
		t.Fatalf("Bool ∪ Int8 -> Int8, got %v", p)
	}
	if p := PromoteType(Float16, Float32); !p.Equal(Float32) {
		t.Fatalf("Float16 ∪ Float32 -> Float32, got %v", p)
	}
}
