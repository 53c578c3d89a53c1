package interp

import (
	"github.com/jlvm/jlvm/internal/broadcast"
	"github.com/jlvm/jlvm/internal/bytecode"
	"github.com/jlvm/jlvm/internal/heap"
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/method"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

func (vm *VM) readU16(frame *Frame) uint16 {
	op := frame.chunk.ReadU16(frame.ip)
	frame.ip += 2
	return op
}

// step executes a single already-fetched opcode against frame, returning
// (returnValue, true, nil) on OpReturn/OpHalt, or (zero, false, err) to keep
// the frame's execFrame loop going (err non-nil only on a raise, handled by
// vm.unwind one level up). Grounded on the teacher's executeOneOp switch in
// internal/vm/vm_exec.go, regrammared from Funxy's opcode set onto
// internal/bytecode's.
func (vm *VM) step(frame *Frame, op bytecode.Opcode) (value.Value, bool, error) {
	switch op {
	case bytecode.OpConstLoad:
		idx := vm.readU16(frame)
		vm.push(frame.chunk.Constants[idx])
	case bytecode.OpPop:
		vm.pop()
	case bytecode.OpDup:
		vm.push(vm.peek(0))
	case bytecode.OpLocalLoad:
		slot := vm.readU16(frame)
		vm.push(vm.stack[frame.base+int(slot)])
	case bytecode.OpLocalStore:
		slot := vm.readU16(frame)
		vm.stack[frame.base+int(slot)] = vm.peek(0)
	case bytecode.OpGlobalLoad:
		idx := vm.readU16(frame)
		name := frame.chunk.Constants[idx].Obj.(*value.Symbol).Name()
		v, ok := vm.Globals[name]
		if !ok {
			return value.Value{}, false, jlerror.NewUndefVarError(name)
		}
		vm.push(v)
	case bytecode.OpGlobalStore:
		idx := vm.readU16(frame)
		name := frame.chunk.Constants[idx].Obj.(*value.Symbol).Name()
		vm.Globals[name] = vm.peek(0)

	case bytecode.OpAddI64:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Int64(a.AsInt64() + b.AsInt64()))
	case bytecode.OpSubI64:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Int64(a.AsInt64() - b.AsInt64()))
	case bytecode.OpMulI64:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Int64(a.AsInt64() * b.AsInt64()))
	case bytecode.OpAddF64:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Float64(a.AsFloat64() + b.AsFloat64()))
	case bytecode.OpSubF64:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Float64(a.AsFloat64() - b.AsFloat64()))
	case bytecode.OpMulF64:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Float64(a.AsFloat64() * b.AsFloat64()))
	case bytecode.OpDivF64:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Float64(a.AsFloat64() / b.AsFloat64()))

	case bytecode.OpAddDyn, bytecode.OpSubDyn, bytecode.OpMulDyn, bytecode.OpDivDyn,
		bytecode.OpModDyn, bytecode.OpPowDyn:
		b, a := vm.pop(), vm.pop()
		result, err := vm.dispatchOperator(dynOpName(op), []value.Value{a, b})
		if err != nil {
			return value.Value{}, false, err
		}
		vm.push(result)
	case bytecode.OpNegDyn:
		a := vm.pop()
		result, err := vm.dispatchOperator("-", []value.Value{a})
		if err != nil {
			return value.Value{}, false, err
		}
		vm.push(result)

	case bytecode.OpEq:
		b, a := vm.pop(), vm.pop()
		vm.push(value.EqualsTri(a, b).ToValue())
	case bytecode.OpNe:
		b, a := vm.pop(), vm.pop()
		switch value.EqualsTri(a, b) {
		case value.TriMissing:
			vm.push(value.Missing())
		case value.TriTrue:
			vm.push(value.Bool(false))
		default:
			vm.push(value.Bool(true))
		}
	case bytecode.OpLt:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Bool(value.IsLess(a, b)))
	case bytecode.OpLe:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Bool(value.IsLess(a, b) || value.IsEqual(a, b)))
	case bytecode.OpGt:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Bool(value.IsLess(b, a)))
	case bytecode.OpGe:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Bool(value.IsLess(b, a) || value.IsEqual(a, b)))

	case bytecode.OpNot:
		a := vm.pop()
		vm.push(value.Bool(!a.AsBool()))
	case bytecode.OpAnd:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Bool(a.AsBool() && b.AsBool()))
	case bytecode.OpOr:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Bool(a.AsBool() || b.AsBool()))

	case bytecode.OpIndexLoadI64, bytecode.OpIndexLoadF64, bytecode.OpIndexLoadDyn:
		idx := vm.pop()
		target := vm.pop()
		v, err := indexGet(target, idx)
		if err != nil {
			return value.Value{}, false, err
		}
		vm.push(v)
	case bytecode.OpIndexStoreI64, bytecode.OpIndexStoreF64, bytecode.OpIndexStoreDyn:
		v := vm.pop()
		idx := vm.pop()
		target := vm.pop()
		if err := indexSet(target, idx, v); err != nil {
			return value.Value{}, false, err
		}
		vm.push(v)

	case bytecode.OpFieldLoad:
		idx := vm.readU16(frame)
		field := frame.chunk.Constants[idx].Obj.(*value.Symbol).Name()
		target := vm.pop()
		s, ok := target.Obj.(*heap.Struct)
		if !ok {
			return value.Value{}, false, jlerror.NewTypeError("getfield", "struct", target.JLType().String())
		}
		v, err := s.GetField(field)
		if err != nil {
			return value.Value{}, false, err
		}
		vm.push(v)
	case bytecode.OpFieldStore:
		idx := vm.readU16(frame)
		field := frame.chunk.Constants[idx].Obj.(*value.Symbol).Name()
		v := vm.pop()
		target := vm.pop()
		s, ok := target.Obj.(*heap.Struct)
		if !ok {
			return value.Value{}, false, jlerror.NewTypeError("setfield!", "struct", target.JLType().String())
		}
		if err := s.SetField(field, v); err != nil {
			return value.Value{}, false, err
		}
		vm.push(v)

	case bytecode.OpCall:
		argc := int(vm.readU16(frame))
		args := make([]value.Value, argc)
		for i := argc - 1; i >= 0; i-- {
			args[i] = vm.pop()
		}
		fnVal := vm.pop()
		name := fnVal.Obj.(*value.Symbol).Name()
		result, err := vm.Call(name, args, nil)
		if err != nil {
			return value.Value{}, false, err
		}
		vm.push(result)

	case bytecode.OpBranch:
		target := vm.readU16(frame)
		frame.ip = int(target)
	case bytecode.OpBranchIf:
		target := vm.readU16(frame)
		if vm.pop().AsBool() {
			frame.ip = int(target)
		}
	case bytecode.OpBranchIfNot:
		target := vm.readU16(frame)
		if !vm.pop().AsBool() {
			frame.ip = int(target)
		}
	case bytecode.OpReturn:
		return vm.pop(), true, nil

	case bytecode.OpMakeTuple:
		n := int(vm.readU16(frame))
		elems := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			elems[i] = vm.pop()
		}
		vm.push(value.Obj(value.NewTuple(elems...)))

	case bytecode.OpBroadcastDot:
		argc := int(vm.readU16(frame))
		args := make([]value.Value, argc)
		for i := argc - 1; i >= 0; i-- {
			args[i] = vm.pop()
		}
		fnVal := vm.pop()
		name := fnVal.Obj.(*value.Symbol).Name()
		result, err := vm.dotCall(name, args)
		if err != nil {
			return value.Value{}, false, err
		}
		vm.push(result)

	case bytecode.OpThrow:
		raised := vm.pop()
		if eo, ok := raised.Obj.(jlerrObj); ok {
			return value.Value{}, false, eo.err
		}
		return value.Value{}, false, jlerror.NewArgumentError(value.Show(raised))

	case bytecode.OpQuoteLoad:
		idx := vm.readU16(frame)
		vm.push(frame.chunk.Constants[idx])

	case bytecode.OpDefineMethod:
		idx := vm.readU16(frame)
		vm.defineMethod(frame.chunk.Constants[idx].Obj.(*MethodSpec))
		vm.push(value.Nothing())

	case bytecode.OpDefineStruct:
		idx := vm.readU16(frame)
		vm.defineStruct(frame.chunk.Constants[idx].Obj.(*StructSpec))
		vm.push(value.Nothing())

	case bytecode.OpMakeArray:
		n := int(vm.readU16(frame))
		elems := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			elems[i] = vm.pop()
		}
		elemType := types.Any
		if n > 0 {
			elemType = elems[0].JLType()
			for _, e := range elems[1:] {
				elemType = types.PromoteType(elemType, e.JLType())
			}
		}
		vm.push(value.Obj(heap.NewArrayFrom(elemType, []int{n}, elems)))

	case bytecode.OpHalt:
		// The compiled body leaves its last expression's value on top of the
		// frame's operand stack, above the local slots.
		if vm.sp > frame.base+frame.chunk.NumLocals {
			return vm.pop(), true, nil
		}
		return value.Value{Tag: value.TagNothing}, true, nil

	default:
		return value.Value{}, false, jlerror.NewArgumentError("unimplemented opcode: " + op.String())
	}
	return value.Value{}, false, nil
}

func dynOpName(op bytecode.Opcode) string {
	switch op {
	case bytecode.OpAddDyn:
		return "+"
	case bytecode.OpSubDyn:
		return "-"
	case bytecode.OpMulDyn:
		return "*"
	case bytecode.OpDivDyn:
		return "/"
	case bytecode.OpModDyn:
		return "%"
	case bytecode.OpPowDyn:
		return "^"
	}
	return "?"
}

// dispatchOperator routes an operator name through the same generic-function
// table user-defined methods register into (spec.md §4.2: operators are
// ordinary generic functions, not special VM forms).
func (vm *VM) dispatchOperator(name string, args []value.Value) (value.Value, error) {
	return vm.Call(name, args, nil)
}

// Call implements the call contract of spec.md §4.2: look up (or lazily
// create) the named generic function, dispatch to its best method, and
// execute that method's body — either natively (BuiltinBody) or by
// recursing into a fresh VM frame (CompiledBody).
func (vm *VM) Call(name string, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	gf := vm.Function(name)
	m, _, err := gf.Dispatch(args, kwargs)
	if err != nil {
		return value.Value{}, err
	}
	bound, err := method.BindKwargs(m, kwargs)
	if err != nil {
		return value.Value{}, err
	}
	switch body := m.Body.(type) {
	case *method.BuiltinBody:
		return body.Fn(args, bound)
	case *CompiledBody:
		return vm.Run(body.Chunk, args)
	}
	return value.Value{}, jlerror.NewArgumentError("method " + name + " has no body")
}

// dotCall implements the elementwise form of a call (spec.md §4.4.5's `f.(
// args...)`): builds a broadcast.Fn closure over Call and materializes it.
func (vm *VM) dotCall(name string, args []value.Value) (value.Value, error) {
	fn := func(scalarArgs []value.Value) (value.Value, error) {
		return vm.Call(name, scalarArgs, nil)
	}
	return broadcast.Broadcast(name, fn, args...)
}

// indexGet implements getindex (spec.md §3.2/§4.3): column-major array
// indexing, or tuple/range/dict lookup for the other indexable heap kinds.
func indexGet(target, idx value.Value) (value.Value, error) {
	switch o := target.Obj.(type) {
	case *heap.Array:
		return o.Get(idx.AsInt64())
	case *heap.SubArray:
		return o.Get(idx.AsInt64())
	case *value.Tuple:
		i := idx.AsInt64() - 1
		if i < 0 || int(i) >= len(o.Elems) {
			return value.Value{}, jlerror.NewBoundsError("a tuple", value.Show(idx))
		}
		return o.Elems[i], nil
	case *heap.Dict:
		v, ok := o.Lookup(idx)
		if !ok {
			return value.Value{}, jlerror.NewKeyError(value.Show(idx))
		}
		return v, nil
	case value.Range:
		return o.At(idx.AsInt64()), nil
	}
	return value.Value{}, jlerror.NewTypeError("getindex", "indexable", target.JLType().String())
}

// indexSet implements setindex! for the mutable indexable kinds.
func indexSet(target, idx, v value.Value) error {
	switch o := target.Obj.(type) {
	case *heap.Array:
		return o.Set(v, idx.AsInt64())
	case *heap.Dict:
		o.Set(idx, v)
		return nil
	}
	return jlerror.NewTypeError("setindex!", "mutable indexable", target.JLType().String())
}
