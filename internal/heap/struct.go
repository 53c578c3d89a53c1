package heap

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

// Struct is a heap record for a mutable struct instance, or an inline-style
// record for an immutable one (spec.md §3.1: "reference to a heap record
// when mutable, inline otherwise"). We always box through a pointer here —
// Go's GC makes the inline-vs-boxed distinction an optimization rather than
// a semantic one, so immutability is enforced at SetField rather than by
// value-vs-pointer representation, matching how the teacher's
// RecordInstance is always reference-typed regardless of a Funxy record's
// declared mutability.
type Struct struct {
	ID        uuid.UUID
	TypeName  string
	Type      *types.DataType
	Fields    []value.Value // positional, matching Type.FieldNames order
	IsMutable bool
}

func NewStruct(t *types.DataType, fields []value.Value) *Struct {
	return &Struct{ID: value.NewUUID(), TypeName: t.Name, Type: t, Fields: fields, IsMutable: t.IsMutable}
}

func (s *Struct) JLType() types.Type { return s.Type }

func (s *Struct) Show() string {
	var b strings.Builder
	b.WriteString(s.TypeName)
	b.WriteString("(")
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(value.Show(f))
	}
	b.WriteString(")")
	return b.String()
}

func (s *Struct) Hash(seed uint64) uint64 {
	h := seed ^ 0xc2b2ae3d27d4eb4f
	for _, f := range s.Fields {
		h = value.Hash(f, h)
	}
	return h
}

func (s *Struct) fieldIndex(name string) int {
	for i, n := range s.Type.FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

// GetField implements FieldLoad (spec.md §4.3).
func (s *Struct) GetField(name string) (value.Value, error) {
	i := s.fieldIndex(name)
	if i < 0 {
		return value.Value{}, jlerror.NewUndefFieldError(s.TypeName, name)
	}
	return s.Fields[i], nil
}

// SetField implements FieldStore (spec.md §4.3); compound assignment
// (`obj.field += e`) is the caller's responsibility to lower into a single
// GetField followed by a single SetField call so `obj` is evaluated once
// (spec.md §4.3's "Compound assignment on struct fields").
func (s *Struct) SetField(name string, v value.Value) error {
	i := s.fieldIndex(name)
	if i < 0 {
		return jlerror.NewUndefFieldError(s.TypeName, name)
	}
	if !s.IsMutable {
		return jlerror.NewArgumentError("setfield!: immutable struct of type " + s.TypeName + " cannot be changed")
	}
	s.Fields[i] = v
	return nil
}

// Copy returns a struct with a fresh heap identity and the same field
// values (spec.md §C supplement's shallow `copy`).
func (s *Struct) Copy() *Struct {
	fields := make([]value.Value, len(s.Fields))
	copy(fields, s.Fields)
	return &Struct{ID: value.NewUUID(), TypeName: s.TypeName, Type: s.Type, Fields: fields, IsMutable: s.IsMutable}
}

// DeepCopy recursively copies any nested Array/Struct fields.
func (s *Struct) DeepCopy() *Struct {
	fields := make([]value.Value, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = deepCopyValue(f)
	}
	return &Struct{ID: value.NewUUID(), TypeName: s.TypeName, Type: s.Type, Fields: fields, IsMutable: s.IsMutable}
}

func deepCopyValue(v value.Value) value.Value {
	if v.Tag != value.TagObj {
		return v
	}
	switch o := v.Obj.(type) {
	case *Array:
		return value.Obj(o.Copy())
	case *Struct:
		return value.Obj(o.DeepCopy())
	}
	return v
}
