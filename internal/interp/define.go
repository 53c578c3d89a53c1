package interp

import (
	"github.com/jlvm/jlvm/internal/bytecode"
	"github.com/jlvm/jlvm/internal/heap"
	"github.com/jlvm/jlvm/internal/method"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

// MethodSpec is a compile-time description of a `function`/short-form
// definition, stashed as a chunk constant and consumed by OpDefineMethod at
// the point in program order the definition is reached: the method table a
// call dispatches through is VM runtime state, so registration can't happen
// until the owning VM exists, unlike every other constant a chunk carries.
type MethodSpec struct {
	Name         string
	Params       []method.Param
	Variadic     bool
	VariadicType types.Type
	WhereVars    []types.TypeVar
	Diagonal     map[string]bool
	ParamNames   []string
	Chunk        *bytecode.Chunk
}

func (m *MethodSpec) JLType() types.Type      { return types.Any }
func (m *MethodSpec) Show() string            { return "#method:" + m.Name }
func (m *MethodSpec) Hash(seed uint64) uint64 { return seed ^ 0xa5a5a5a5a5a5a5a5 }

// StructSpec is the analogous compile-time description of a
// `struct`/`mutable struct` definition.
type StructSpec struct {
	Type *types.DataType
}

func (s *StructSpec) JLType() types.Type      { return types.Any }
func (s *StructSpec) Show() string            { return "#struct:" + s.Type.Name }
func (s *StructSpec) Hash(seed uint64) uint64 { return seed ^ 0x5a5a5a5a5a5a5a5a }

// defineMethod runs OpDefineMethod: build the runtime Method from spec and
// add it to spec.Name's generic function.
func (vm *VM) defineMethod(spec *MethodSpec) {
	m := &method.Method{
		Params:       spec.Params,
		Variadic:     spec.Variadic,
		VariadicType: spec.VariadicType,
		WhereVars:    spec.WhereVars,
		Diagonal:     spec.Diagonal,
		Body:         &CompiledBody{Chunk: spec.Chunk, ParamNames: spec.ParamNames},
	}
	vm.Function(spec.Name).AddMethod(m)
}

// defineStruct runs OpDefineStruct: register the type so later `::Name`
// annotations resolve to it, and install a default positional constructor —
// `Point(1, 2)` is just a call to a generic function named "Point" like any
// other (spec.md §4.2), so construction needs no opcode of its own.
func (vm *VM) defineStruct(spec *StructSpec) {
	types.RegisterStruct(spec.Type)
	vm.Function(spec.Type.Name).AddMethod(&method.Method{
		Params: structCtorParams(spec.Type),
		Body:   &method.BuiltinBody{Fn: structConstructor(spec.Type)},
	})
}

func structCtorParams(t *types.DataType) []method.Param {
	params := make([]method.Param, len(t.FieldNames))
	for i, name := range t.FieldNames {
		ft := t.FieldTypes[i]
		if ft == nil {
			ft = types.Any
		}
		params[i] = method.Param{Name: name, Type: ft}
	}
	return params
}

func structConstructor(t *types.DataType) func([]value.Value, map[string]value.Value) (value.Value, error) {
	return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		fields := make([]value.Value, len(args))
		copy(fields, args)
		return value.Obj(heap.NewStruct(t, fields)), nil
	}
}
