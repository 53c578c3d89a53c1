// Package heap implements the mutable heap object kinds of spec.md §3.1:
// Array (a handle to a Memory block plus a shape tuple, column-major),
// mutable Struct instances, and the Dict/Set hash containers. Every
// allocation is tagged with a uuid identity (google/uuid, per SPEC_FULL's
// domain stack) so `objectid(x)` and reference-identity (`===`) have a
// stable key independent of the host GC's pointer reuse, generalizing the
// teacher's heap-object precedent in internal/vm/objects.go (CompiledFunction/
// ObjClosure/ObjUpvalue, identified there only by Go pointer identity).
package heap

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

// Memory is the contiguous backing store for one or more Arrays (spec.md
// §3.1's "heap-allocated Memory block").
type Memory struct {
	ID   uuid.UUID
	Elem types.Type
	Data []value.Value
}

func NewMemory(elem types.Type, n int) *Memory {
	return &Memory{ID: value.NewUUID(), Elem: elem, Data: make([]value.Value, n)}
}

// Array is a handle to a Memory block plus a shape tuple, column-major
// (spec.md §3.1). 1-D is Vector, 2-D is Matrix; N-D shares this same type.
type Array struct {
	ID     uuid.UUID
	Mem    *Memory
	Shape  []int // length == product(Shape) invariant (spec.md §3.2)
	Offset int   // for views created via reshape/slicing within the same Memory
	elem   types.Type
}

// NewArray allocates a fresh Array of the given shape, with elem the
// declared element type, backed by a freshly allocated Memory block.
func NewArray(elem types.Type, shape []int) *Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Array{
		ID:    value.NewUUID(),
		Mem:   NewMemory(elem, n),
		Shape: append([]int(nil), shape...),
		elem:  elem,
	}
}

// NewArrayFrom wraps an existing flat slice of values as an Array of the
// given shape (column-major order matching the values' positional order).
func NewArrayFrom(elem types.Type, shape []int, data []value.Value) *Array {
	return &Array{
		ID:    value.NewUUID(),
		Mem:   &Memory{ID: value.NewUUID(), Elem: elem, Data: data},
		Shape: append([]int(nil), shape...),
		elem:  elem,
	}
}

func (a *Array) Ndims() int { return len(a.Shape) }
func (a *Array) Len() int   { return len(a.Mem.Data) - a.Offset }
func (a *Array) ElemType() types.Type { return a.elem }

func (a *Array) JLType() types.Type {
	name := "Array"
	if len(a.Shape) == 1 {
		name = "Vector"
	} else if len(a.Shape) == 2 {
		name = "Matrix"
	}
	return &types.DataType{Name: name, Params: []types.Type{a.elem}, Super: types.Any}
}

func (a *Array) Show() string {
	var b strings.Builder
	b.WriteString(shapeDesc(a.Shape))
	b.WriteString("[")
	for i, v := range a.Mem.Data[a.Offset:] {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(value.Show(v))
	}
	b.WriteString("]")
	return b.String()
}

func shapeDesc(shape []int) string {
	switch len(shape) {
	case 1:
		return ""
	default:
		var b strings.Builder
		for i, d := range shape {
			if i > 0 {
				b.WriteString("x")
			}
			b.WriteString(itoa(d))
		}
		b.WriteString(" ")
		return b.String()
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func (a *Array) Hash(seed uint64) uint64 {
	h := seed ^ 0xff51afd7ed558ccd
	for _, v := range a.Mem.Data[a.Offset:] {
		h = value.Hash(v, h)
	}
	return h
}

// ColMajorIndex converts a 1-based multi-index into a 0-based flat offset
// using column-major strides (spec.md §3.1).
func (a *Array) ColMajorIndex(idx []int64) (int, error) {
	if len(idx) != len(a.Shape) {
		// Julia also allows linear indexing of any array with a single index.
		if len(idx) == 1 {
			return a.LinearIndex(idx[0])
		}
		return 0, jlerror.NewArgumentError("wrong number of indices")
	}
	stride := 1
	offset := 0
	for d := 0; d < len(a.Shape); d++ {
		i := int(idx[d])
		if i < 1 || i > a.Shape[d] {
			return 0, boundsErr(a.Shape, idx)
		}
		offset += (i - 1) * stride
		stride *= a.Shape[d]
	}
	return offset, nil
}

// LinearIndex bounds-checks and resolves a single 1-based linear index
// (spec.md §3.2: "indexing is 1-based and bounds-checked on every
// getindex/setindex").
func (a *Array) LinearIndex(i int64) (int, error) {
	if i < 1 || int(i) > a.Len() {
		return 0, jlerror.NewBoundsError(shapeStr(a.Shape), itoa(int(i)))
	}
	return int(i) - 1, nil
}

func boundsErr(shape []int, idx []int64) error {
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = itoa(int(v))
	}
	return jlerror.NewBoundsError(shapeStr(shape), strings.Join(parts, ", "))
}

func shapeStr(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = itoa(d)
	}
	return strings.Join(parts, "x") + "-element array"
}

// Get reads the element at 1-based multi-index idx.
func (a *Array) Get(idx ...int64) (value.Value, error) {
	off, err := a.ColMajorIndex(idx)
	if err != nil {
		return value.Value{}, err
	}
	return a.Mem.Data[a.Offset+off], nil
}

// Set writes v at 1-based multi-index idx (mutation, spec.md §3.3).
func (a *Array) Set(v value.Value, idx ...int64) error {
	off, err := a.ColMajorIndex(idx)
	if err != nil {
		return err
	}
	a.Mem.Data[a.Offset+off] = v
	return nil
}

// Copy returns a fresh Array with its own Memory block (spec.md §C
// supplement: copy/deepcopy give a new identity).
func (a *Array) Copy() *Array {
	data := make([]value.Value, a.Len())
	copy(data, a.Mem.Data[a.Offset:])
	return NewArrayFrom(a.elem, a.Shape, data)
}

// SubArray is a (parent, offset, length) view into a Vector{T} (spec.md §3.1).
type SubArray struct {
	ID     uuid.UUID
	Parent *Array
	Offset int
	Length int
}

func NewSubArray(parent *Array, offset, length int) *SubArray {
	return &SubArray{ID: value.NewUUID(), Parent: parent, Offset: offset, Length: length}
}

func (s *SubArray) JLType() types.Type {
	return &types.DataType{Name: "SubArray", Params: []types.Type{s.Parent.elem}, Super: types.Any}
}
func (s *SubArray) Show() string {
	vals := make([]value.Value, s.Length)
	for i := 0; i < s.Length; i++ {
		vals[i] = s.Parent.Mem.Data[s.Parent.Offset+s.Offset+i]
	}
	return NewArrayFrom(s.Parent.elem, []int{s.Length}, vals).Show()
}
func (s *SubArray) Hash(seed uint64) uint64 {
	h := seed
	for i := 0; i < s.Length; i++ {
		h = value.Hash(s.Parent.Mem.Data[s.Parent.Offset+s.Offset+i], h)
	}
	return h
}

func (s *SubArray) Get(i int64) (value.Value, error) {
	if i < 1 || int(i) > s.Length {
		return value.Value{}, jlerror.NewBoundsError(itoa(s.Length)+"-element view", itoa(int(i)))
	}
	return s.Parent.Mem.Data[s.Parent.Offset+s.Offset+int(i)-1], nil
}

func (s *SubArray) Set(v value.Value, i int64) error {
	if i < 1 || int(i) > s.Length {
		return jlerror.NewBoundsError(itoa(s.Length)+"-element view", itoa(int(i)))
	}
	s.Parent.Mem.Data[s.Parent.Offset+s.Offset+int(i)-1] = v
	return nil
}
