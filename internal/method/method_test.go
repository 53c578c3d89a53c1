package method

import (
	"testing"

	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

func echoBody() Body {
	return &BuiltinBody{Fn: func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return args[0], nil
	}}
}

func TestDispatchPicksMostSpecific(t *testing.T) {
	gf := NewGenericFunction("f")
	gf.AddMethod(&Method{Params: []Param{{Name: "x", Type: types.Any}}, Body: echoBody()})
	gf.AddMethod(&Method{Params: []Param{{Name: "x", Type: types.Int64}}, Body: echoBody()})

	m, _, err := gf.Dispatch([]value.Value{value.Int64(1)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Params) != 1 || !m.Params[0].Type.Equal(types.Int64) {
		t.Fatalf("expected the Int64-specialized method to win, got params %v", m.Params)
	}

	m2, _, err := gf.Dispatch([]value.Value{value.Obj(value.NewString("s"))}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !m2.Params[0].Type.Equal(types.Any) {
		t.Fatalf("expected the Any fallback for a string arg, got %v", m2.Params)
	}
}

func TestDispatchNoMatchRaisesMethodError(t *testing.T) {
	gf := NewGenericFunction("f")
	gf.AddMethod(&Method{Params: []Param{{Name: "x", Type: types.Int64}}, Body: echoBody()})
	_, _, err := gf.Dispatch([]value.Value{value.Obj(value.NewString("s"))}, nil)
	if err == nil {
		t.Fatal("expected MethodError")
	}
	if _, ok := err.(*jlerror.MethodError); !ok {
		t.Fatalf("expected *jlerror.MethodError, got %T", err)
	}
}

func TestDiagonalRuleRejectsMixedBinding(t *testing.T) {
	tv := types.TypeVar{Name: "T", Upper: types.Any}
	gf := NewGenericFunction("same")
	gf.AddMethod(&Method{
		Params:    []Param{{Name: "x", Type: tv}, {Name: "y", Type: tv}},
		WhereVars: []types.TypeVar{tv},
		Diagonal:  map[string]bool{"T": true},
		Body:      echoBody(),
	})

	if _, _, err := gf.Dispatch([]value.Value{value.Int64(1), value.Int64(2)}, nil); err != nil {
		t.Fatalf("same-type T,T call should match: %v", err)
	}
	if _, _, err := gf.Dispatch([]value.Value{value.Int64(1), value.Float64(2.0)}, nil); err == nil {
		t.Fatal("mismatched T,T bindings (Int64 vs Float64) should fail to match under the diagonal rule")
	}
}

func TestIncomparableMethodsCompareAsTie(t *testing.T) {
	intT := &types.DataType{Name: "IntLike", Super: types.Any}
	strT := &types.DataType{Name: "StrLike", Super: types.Any}
	gf := NewGenericFunction("g")
	gf.AddMethod(&Method{Params: []Param{{Name: "x", Type: intT}, {Name: "y", Type: types.Any}}, Body: echoBody()})
	gf.AddMethod(&Method{Params: []Param{{Name: "x", Type: types.Any}, {Name: "y", Type: strT}}, Body: echoBody()})
	// Neither method's pair of params dominates the other's, so a call
	// matching both via Any fallbacks elsewhere would be ambiguous; here we
	// directly probe compareSpecificity since constructing two argument
	// values of unrelated custom DataTypes is awkward without the heap
	// package's struct machinery.
	a := gf.Methods[0]
	b := gf.Methods[1]
	if compareSpecificity(a, b) != tie {
		t.Fatalf("expected incomparable methods to tie, got %v", compareSpecificity(a, b))
	}
}

func TestBindKwargsDefaultsAndSplat(t *testing.T) {
	m := &Method{
		KwNames:   []string{"atol"},
		KwDefault: map[string]value.Value{"atol": value.Float64(1e-8)},
		KwSplat:   "rest",
	}
	bound, err := BindKwargs(m, map[string]value.Value{"rtol": value.Float64(0.1)})
	if err != nil {
		t.Fatal(err)
	}
	if bound["atol"].AsFloat64() != 1e-8 {
		t.Fatalf("expected default atol, got %v", bound["atol"])
	}
	nt, ok := bound["rest"].Obj.(*value.NamedTuple)
	if !ok {
		t.Fatalf("expected rest to be a NamedTuple, got %T", bound["rest"].Obj)
	}
	if v, ok := nt.Get("rtol"); !ok || v.AsFloat64() != 0.1 {
		t.Fatalf("expected splatted rtol=0.1 in rest, got %v ok=%v", v, ok)
	}
}

func TestBindKwargsMissingRequiredErrors(t *testing.T) {
	m := &Method{KwNames: []string{"dims"}}
	if _, err := BindKwargs(m, map[string]value.Value{}); err == nil {
		t.Fatal("expected ArgumentError for missing required keyword")
	}
}

func TestBindKwargsUnknownNameWithoutSplatErrors(t *testing.T) {
	m := &Method{}
	if _, err := BindKwargs(m, map[string]value.Value{"bogus": value.Int64(1)}); err == nil {
		t.Fatal("expected ArgumentError for unrecognized keyword argument")
	}
}
