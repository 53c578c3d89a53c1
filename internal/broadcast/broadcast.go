package broadcast

import (
	"github.com/jlvm/jlvm/internal/heap"
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

// Fn is the callable a Broadcasted applies elementwise. internal/interp
// supplies a closure over internal/method's Dispatch for user functions;
// keeping this as a plain Go func avoids a broadcast->method->interp import
// cycle, since interp is what eventually depends on broadcast, not the
// other way around.
type Fn func(args []value.Value) (value.Value, error)

// Broadcasted is a lazy elementwise computation description (spec.md
// §4.4.1). args may themselves be nested *Broadcasted, arrays, ranges,
// tuples, or scalars.
type Broadcasted struct {
	Style Style
	F     Fn
	FName string // for Show and error messages
	Args  []value.Value

	axesCached bool
	axes       []int
}

func New(fname string, f Fn, args ...value.Value) *Broadcasted {
	styles := make([]Style, len(args))
	for i, a := range args {
		styles[i] = styleOf(a)
	}
	return &Broadcasted{Style: CombineAll(styles...), F: f, FName: fname, Args: args}
}

func (b *Broadcasted) JLType() types.Type { return broadcastedType }
func (b *Broadcasted) Show() string       { return "Broadcasted(" + b.FName + ")" }
func (b *Broadcasted) Hash(seed uint64) uint64 {
	h := seed ^ 0x2545f4914f6cdd1d
	for _, a := range b.Args {
		h = value.Hash(a, h)
	}
	return h
}

// Axes computes and caches the broadcast's output shape (spec.md §4.4.1:
// "axes is computed lazily and cached").
func (b *Broadcasted) Axes() ([]int, error) {
	if b.axesCached {
		return b.axes, nil
	}
	shapes := make([][]int, len(b.Args))
	for i, a := range b.Args {
		shapes[i] = shapeOf(a)
	}
	shape, err := BroadcastShape(shapes...)
	if err != nil {
		return nil, err
	}
	b.axes = shape
	b.axesCached = true
	return shape, nil
}

func styleOf(v value.Value) Style {
	if v.Tag != value.TagObj {
		return ScalarStyle
	}
	switch o := v.Obj.(type) {
	case *Broadcasted:
		return o.Style
	case *heap.Array:
		return ArrayStyle(o.Ndims())
	case *heap.SubArray:
		return ArrayStyle(1)
	case value.Range:
		return ArrayStyle(1)
	case *value.Tuple:
		return TupleStyle
	}
	return ScalarStyle
}

func shapeOf(v value.Value) []int {
	if v.Tag != value.TagObj {
		return nil
	}
	switch o := v.Obj.(type) {
	case *Broadcasted:
		s, _ := o.Axes()
		return s
	case *heap.Array:
		return o.Shape
	case *heap.SubArray:
		return []int{o.Length}
	case value.Range:
		return []int{int(o.Length())}
	case *value.Tuple:
		return []int{len(o.Elems)}
	}
	return nil
}

// at returns the scalar value of participant v at flat 0-based output index
// i, honoring scalar broadcast (every index maps to the sole value) and
// nested-Broadcasted recursion (spec.md §4.4.3's per-argument selector
// role, applied directly here rather than precompiled since this subset
// materializes eagerly rather than JIT-compiling the fused loop).
func at(v value.Value, i int, outShape []int) (value.Value, error) {
	if v.Tag != value.TagObj {
		return v, nil
	}
	switch o := v.Obj.(type) {
	case *Broadcasted:
		return o.evalAt(i, outShape)
	case *heap.Array:
		return indexBroadcast(o.Shape, outShape, i, func(flat int) (value.Value, error) {
			return o.Get(unflattenOneBased(o.Shape, flat)...)
		})
	case *heap.SubArray:
		return indexBroadcast([]int{o.Length}, outShape, i, func(flat int) (value.Value, error) {
			return o.Get(int64(flat + 1))
		})
	case value.Range:
		vals := value.RangeValues(o)
		return indexBroadcast([]int{len(vals)}, outShape, i, func(flat int) (value.Value, error) {
			return vals[flat], nil
		})
	case *value.Tuple:
		return indexBroadcast([]int{len(o.Elems)}, outShape, i, func(flat int) (value.Value, error) {
			return o.Elems[flat], nil
		})
	}
	return v, nil
}

// indexBroadcast maps an output flat index to the participant's own flat
// index, treating any singleton dimension of the participant's shape as
// broadcasting over the corresponding output dimension (spec.md §4.4.6's
// newindexer/newindex: keeps[d] = size!=1, defaults[d] replaces singleton
// dims).
func indexBroadcast(pShape, outShape []int, outFlat int, get func(int) (value.Value, error)) (value.Value, error) {
	outIdx := unflattenZeroBased(outShape, outFlat)
	pIdx := make([]int, len(pShape))
	for d := range pShape {
		if d < len(outIdx) {
			if pShape[d] == 1 {
				pIdx[d] = 0
			} else {
				pIdx[d] = outIdx[d]
			}
		}
	}
	flat := flattenColMajor(pShape, pIdx)
	return get(flat)
}

func unflattenZeroBased(shape []int, flat int) []int {
	idx := make([]int, len(shape))
	for d := 0; d < len(shape); d++ {
		idx[d] = flat % dimOrOne(shape, d)
		flat /= dimOrOne(shape, d)
	}
	return idx
}

func unflattenOneBased(shape []int, flat int) []int64 {
	zero := unflattenZeroBased(shape, flat)
	out := make([]int64, len(zero))
	for i, z := range zero {
		out[i] = int64(z + 1)
	}
	return out
}

func dimOrOne(shape []int, d int) int {
	if d >= len(shape) || shape[d] == 0 {
		return 1
	}
	return shape[d]
}

func flattenColMajor(shape, idx []int) int {
	stride := 1
	flat := 0
	for d := 0; d < len(shape); d++ {
		flat += idx[d] * stride
		stride *= dimOrOne(shape, d)
	}
	return flat
}

// evalAt evaluates this Broadcasted's function at output flat index i
// against outShape (the materializing caller's already-resolved full
// output shape, so nested Broadcasteds don't recompute their own narrower
// axes independently — spec.md §4.4.3's flatten-fusion guarantee that
// `flatten(bc)[i] == bc[i]` for every index).
func (b *Broadcasted) evalAt(i int, outShape []int) (value.Value, error) {
	args := make([]value.Value, len(b.Args))
	for j, a := range b.Args {
		v, err := at(a, i, outShape)
		if err != nil {
			return value.Value{}, err
		}
		args[j] = v
	}
	return b.F(args)
}

var broadcastedType = types.NewConcrete("Broadcasted", types.Any, nil, nil, false)

// Materialize implements spec.md §4.4.4: copy(bc) for a lazy Broadcasted,
// identity for anything else. All-scalar arguments short-circuit to a
// direct f(args...) call (spec.md §4.4.5).
func Materialize(v value.Value) (value.Value, error) {
	bc, ok := asBroadcasted(v)
	if !ok {
		return v, nil
	}
	bc = Flatten(bc)
	shape, err := bc.Axes()
	if err != nil {
		return value.Value{}, err
	}
	if len(shape) == 0 {
		return bc.evalAt(0, shape)
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	elemType := inferElemType(bc, shape)
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		ev, err := bc.evalAt(i, shape)
		if err != nil {
			return value.Value{}, err
		}
		out[i] = ev
	}
	return value.Obj(heap.NewArrayFrom(elemType, shape, out)), nil
}

func asBroadcasted(v value.Value) (*Broadcasted, bool) {
	if v.Tag != value.TagObj {
		return nil, false
	}
	bc, ok := v.Obj.(*Broadcasted)
	return bc, ok
}

// inferElemType over-approximates combine_eltypes (spec.md §4.4.4) by
// evaluating the function once at index 0 and taking the result's type;
// exact for homogeneous inputs, which is this subset's only supported case
// (spec.md names this an over-approximation, not an exact static type).
func inferElemType(bc *Broadcasted, shape []int) types.Type {
	v, err := bc.evalAt(0, shape)
	if err != nil {
		return types.Any
	}
	return v.JLType()
}

// MaterializeInto implements materialize!/copyto! (spec.md §4.4.4):
// shape-checks dest against bc, then writes elementwise, aliasing-safe by
// taking a defensive copy of any leaf argument that shares dest's Memory.
func MaterializeInto(dest *heap.Array, v value.Value) error {
	bc, ok := asBroadcasted(v)
	if !ok {
		return copyScalarInto(dest, v)
	}
	bc = Flatten(bc)
	shape, err := bc.Axes()
	if err != nil {
		return err
	}
	if !sameShape(shape, dest.Shape) {
		return jlerror.NewDimensionMismatch(shape, dest.Shape)
	}
	safe := unalias(bc, dest)
	n := 1
	for _, d := range dest.Shape {
		n *= d
	}
	for i := 0; i < n; i++ {
		ev, err := safe.evalAt(i, shape)
		if err != nil {
			return err
		}
		idx := unflattenOneBased(dest.Shape, i)
		if err := dest.Set(ev, idx...); err != nil {
			return err
		}
	}
	return nil
}

func copyScalarInto(dest *heap.Array, v value.Value) error {
	for i := 0; i < dest.Len(); i++ {
		idx := unflattenOneBased(dest.Shape, i)
		if err := dest.Set(v, idx...); err != nil {
			return err
		}
	}
	return nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// unalias returns bc, or a shallow-copied equivalent whose leaf arguments
// sharing dest's Memory have been snapshotted first (spec.md §4.4.4:
// "copyto! MUST honor aliasing... a temporary copy of the aliased leaf is
// made").
func unalias(bc *Broadcasted, dest *heap.Array) *Broadcasted {
	aliased := false
	newArgs := make([]value.Value, len(bc.Args))
	for i, a := range bc.Args {
		if arr, ok := a.Obj.(*heap.Array); ok && arr.Mem == dest.Mem {
			newArgs[i] = value.Obj(arr.Copy())
			aliased = true
			continue
		}
		newArgs[i] = a
	}
	if !aliased {
		return bc
	}
	return &Broadcasted{Style: bc.Style, F: bc.F, FName: bc.FName, Args: newArgs}
}

// Flatten implements spec.md §4.4.3's fusion guarantee: rebuild bc so every
// argument is a leaf (array/range/tuple/scalar, never a nested Broadcasted),
// composing a single Fn that reproduces the original nested evaluation.
// flatten(bc) and bc must agree index-for-index — `copy(flatten(bc)) ==
// copy(bc)` — since Flatten only regroups how the same leaf values reach F,
// it never changes which leaf contributes to which output element.
func Flatten(bc *Broadcasted) *Broadcasted {
	leaves, eval := flattenBroadcasted(bc)
	styles := make([]Style, len(leaves))
	for i, l := range leaves {
		styles[i] = styleOf(l)
	}
	return &Broadcasted{
		Style: CombineAll(styles...),
		F:     func(args []value.Value) (value.Value, error) { return eval(args) },
		FName: bc.FName,
		Args:  leaves,
	}
}

// flattenValue returns v's own leaf list and a selector that, given that
// slice of (already-resolved, per-output-index) leaf values, reproduces v's
// value at that index — identity for anything that isn't itself a
// Broadcasted, recursive composition otherwise.
func flattenValue(v value.Value) ([]value.Value, func([]value.Value) (value.Value, error)) {
	bc, ok := asBroadcasted(v)
	if !ok {
		return []value.Value{v}, func(args []value.Value) (value.Value, error) { return args[0], nil }
	}
	return flattenBroadcasted(bc)
}

func flattenBroadcasted(bc *Broadcasted) ([]value.Value, func([]value.Value) (value.Value, error)) {
	var leaves []value.Value
	subEvals := make([]func([]value.Value) (value.Value, error), len(bc.Args))
	spans := make([][2]int, len(bc.Args))
	for i, a := range bc.Args {
		subLeaves, subEval := flattenValue(a)
		start := len(leaves)
		leaves = append(leaves, subLeaves...)
		spans[i] = [2]int{start, len(leaves)}
		subEvals[i] = subEval
	}
	f := bc.F
	eval := func(args []value.Value) (value.Value, error) {
		callArgs := make([]value.Value, len(subEvals))
		for i, se := range subEvals {
			span := spans[i]
			v, err := se(args[span[0]:span[1]])
			if err != nil {
				return value.Value{}, err
			}
			callArgs[i] = v
		}
		return f(callArgs)
	}
	return leaves, eval
}

// Broadcast implements spec.md §4.4.5's convenience form: instantiate +
// materialize, with an all-scalar fast path returning f(args...) directly.
func Broadcast(fname string, f Fn, args ...value.Value) (value.Value, error) {
	allScalar := true
	for _, a := range args {
		if styleOf(a) != ScalarStyle {
			allScalar = false
			break
		}
	}
	if allScalar {
		return f(args)
	}
	bc := New(fname, f, args...)
	return Materialize(value.Obj(bc))
}
