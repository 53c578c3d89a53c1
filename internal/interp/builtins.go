package interp

import (
	"math"

	"github.com/jlvm/jlvm/internal/heap"
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/method"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

// RegisterBuiltins installs the handful of operators and supplemented
// functions the interpreter core itself provides as native Go methods
// (SPEC_FULL §C), as opposed to the pure-Julia-source standard library
// internal/stdlib loads. Grounded on the teacher's RegisterBuiltins /
// registerFPTraitMethods in internal/vm/vm_builtins.go, which installs
// native operator implementations as globals the same way — generalized
// here from trait-class placeholders to concrete generic-function methods.
func RegisterBuiltins(vm *VM) {
	arith := map[string]func(a, b float64) float64{
		"+": func(a, b float64) float64 { return a + b },
		"-": func(a, b float64) float64 { return a - b },
		"*": func(a, b float64) float64 { return a * b },
		"/": func(a, b float64) float64 { return a / b },
	}
	for name, fn := range arith {
		name, fn := name, fn
		gf := vm.Function(name)
		gf.AddMethod(&method.Method{
			Params: []method.Param{{Name: "a", Type: types.Any}, {Name: "b", Type: types.Any}},
			Body: &method.BuiltinBody{Fn: func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
				if len(args) != 2 {
					return value.Value{}, jlerror.NewArgumentError(name + " takes exactly 2 arguments")
				}
				a, b := args[0], args[1]
				// missing propagates through arithmetic rather than dispatching
				// further (Julia: `missing + 1 === missing`).
				if a.IsMissing() || b.IsMissing() {
					return value.Missing(), nil
				}
				if a.IsFloat() || b.IsFloat() {
					return value.Float64(fn(a.AsFloat64Generic(), b.AsFloat64Generic())), nil
				}
				result := fn(a.AsFloat64Generic(), b.AsFloat64Generic())
				return value.Int64(int64(result)), nil
			}},
		})
	}

	neg := vm.Function("-")
	neg.AddMethod(&method.Method{
		Params: []method.Param{{Name: "a", Type: types.Any}},
		Body: &method.BuiltinBody{Fn: func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			a := args[0]
			if a.IsFloat() {
				return value.Float64(-a.AsFloat64Generic()), nil
			}
			return value.Int64(-a.AsInt64Generic()), nil
		}},
	})

	// `missing` has no dedicated token the way `nothing` does (spec.md §3.1
	// draws no syntactic line between them, but this subset's lexer only
	// special-cases `nothing`), so it's seeded here as an ordinary global
	// instead, the same way a `Missing` singleton would be bound in Base.
	vm.Globals["missing"] = value.Missing()

	registerShow(vm)
	registerCopy(vm)
	registerHash(vm)
	registerMissing(vm)
	registerLength(vm)
	registerMath(vm)
}

// registerMissing implements isequal/ismissing/coalesce (SPEC_FULL §C),
// the handful of three-valued-logic helpers this subset's compiled opcodes
// (OpEq/OpNe) don't already cover on their own.
func registerMissing(vm *VM) {
	isequal := vm.Function("isequal")
	isequal.AddMethod(&method.Method{
		Params: []method.Param{{Name: "a", Type: types.Any}, {Name: "b", Type: types.Any}},
		Body: &method.BuiltinBody{Fn: func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.Bool(value.IsEqual(args[0], args[1])), nil
		}},
	})
	ismissing := vm.Function("ismissing")
	ismissing.AddMethod(&method.Method{
		Params: []method.Param{{Name: "x", Type: types.Any}},
		Body: &method.BuiltinBody{Fn: func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.Bool(args[0].IsMissing()), nil
		}},
	})
	coalesce := vm.Function("coalesce")
	coalesce.AddMethod(&method.Method{
		Variadic:     true,
		VariadicType: types.Any,
		Params:       []method.Param{{Name: "xs", Type: types.Any}},
		Body: &method.BuiltinBody{Fn: func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			for _, a := range args {
				if !a.IsMissing() {
					return a, nil
				}
			}
			return value.Missing(), nil
		}},
	})
}

// registerLength backs the for-loop desugaring in internal/interp/compile.go
// as well as ordinary user calls to `length`.
func registerLength(vm *VM) {
	gf := vm.Function("length")
	gf.AddMethod(&method.Method{
		Params: []method.Param{{Name: "x", Type: types.Any}},
		Body: &method.BuiltinBody{Fn: func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			if len(args) != 1 {
				return value.Value{}, jlerror.NewArgumentError("length takes exactly 1 argument")
			}
			if args[0].Tag == value.TagObj {
				switch o := args[0].Obj.(type) {
				case *heap.Array:
					return value.Int64(int64(o.Len())), nil
				case *value.JLString:
					return value.Int64(int64(o.Len())), nil
				case *value.Tuple:
					return value.Int64(int64(o.Len())), nil
				}
			}
			return value.Value{}, jlerror.NewMethodError("length", []string{args[0].JLType().String()})
		}},
	})
}

// registerMath wires sin/cos through Go's math package: no example in the
// retrieval pack imports a dedicated trig library, and gonum's own API
// (already wired for numkernel's BLAS calls) doesn't expose elementwise
// scalar trig either, so this is stdlib by elimination rather than default.
func registerMath(vm *VM) {
	trig := map[string]func(float64) float64{"sin": math.Sin, "cos": math.Cos}
	for name, fn := range trig {
		name, fn := name, fn
		gf := vm.Function(name)
		gf.AddMethod(&method.Method{
			Params: []method.Param{{Name: "x", Type: types.Any}},
			Body: &method.BuiltinBody{Fn: func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
				if len(args) != 1 {
					return value.Value{}, jlerror.NewArgumentError(name + " takes exactly 1 argument")
				}
				return value.Float64(fn(args[0].AsFloat64Generic())), nil
			}},
		})
	}
}

func registerShow(vm *VM) {
	for _, name := range []string{"show", "string", "print"} {
		name := name
		gf := vm.Function(name)
		gf.AddMethod(&method.Method{
			Params: []method.Param{{Name: "x", Type: types.Any}},
			Body: &method.BuiltinBody{Fn: func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
				if len(args) != 1 {
					return value.Value{}, jlerror.NewArgumentError(name + " takes exactly 1 argument")
				}
				return value.Obj(value.NewString(value.Show(args[0]))), nil
			}},
		})
	}
}

// registerCopy implements copy/deepcopy (SPEC_FULL §C): shallow vs. full
// recursive duplication of mutable heap kinds, identity for everything else.
func registerCopy(vm *VM) {
	shallow := vm.Function("copy")
	shallow.AddMethod(&method.Method{
		Params: []method.Param{{Name: "x", Type: types.Any}},
		Body: &method.BuiltinBody{Fn: func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return copyValue(args[0], false), nil
		}},
	})
	deep := vm.Function("deepcopy")
	deep.AddMethod(&method.Method{
		Params: []method.Param{{Name: "x", Type: types.Any}},
		Body: &method.BuiltinBody{Fn: func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return copyValue(args[0], true), nil
		}},
	})
}

func copyValue(v value.Value, deep bool) value.Value {
	if v.Tag != value.TagObj {
		return v
	}
	switch o := v.Obj.(type) {
	case *heap.Array:
		return value.Obj(o.Copy())
	case *heap.Struct:
		if deep {
			return value.Obj(o.DeepCopy())
		}
		return value.Obj(o.Copy())
	}
	return v
}

func registerHash(vm *VM) {
	gf := vm.Function("hash")
	gf.AddMethod(&method.Method{
		Params: []method.Param{{Name: "x", Type: types.Any}},
		Body: &method.BuiltinBody{Fn: func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.UInt64(value.Hash(args[0], 0)), nil
		}},
	})
}
