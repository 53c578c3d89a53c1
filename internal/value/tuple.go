package value

import (
	"strings"

	"github.com/jlvm/jlvm/internal/types"
)

// Tuple is an immutable ordered heterogeneous sequence (spec.md §3.1).
type Tuple struct {
	Elems []Value
	typ   types.Type // cached Tuple-type, built lazily from element types
}

func NewTuple(elems ...Value) *Tuple { return &Tuple{Elems: elems} }

func (t *Tuple) Len() int { return len(t.Elems) }

func (t *Tuple) JLType() types.Type {
	if t.typ == nil {
		elemTypes := make([]types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elemTypes[i] = e.JLType()
		}
		t.typ = &types.TupleType{Elems: elemTypes}
	}
	return t.typ
}

func (t *Tuple) Show() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = Show(e)
	}
	suffix := ""
	if len(t.Elems) == 1 {
		suffix = ","
	}
	return "(" + strings.Join(parts, ", ") + suffix + ")"
}

func (t *Tuple) Hash(seed uint64) uint64 {
	h := seed ^ 0x9e3779b97f4a7c15
	for _, e := range t.Elems {
		h = Hash(e, h)
	}
	return h
}

// NamedTuple is a Tuple plus an ordered field-name list; fields are
// accessible both by name and by positional index (spec.md §3.1).
type NamedTuple struct {
	Names []string
	Elems []Value
}

func NewNamedTuple(names []string, elems []Value) *NamedTuple {
	return &NamedTuple{Names: names, Elems: elems}
}

func (n *NamedTuple) Get(name string) (Value, bool) {
	for i, nm := range n.Names {
		if nm == name {
			return n.Elems[i], true
		}
	}
	return Value{}, false
}

func (n *NamedTuple) JLType() types.Type {
	elemTypes := make([]types.Type, len(n.Elems))
	for i, e := range n.Elems {
		elemTypes[i] = e.JLType()
	}
	return &types.TupleType{Elems: elemTypes}
}

func (n *NamedTuple) Show() string {
	parts := make([]string, len(n.Elems))
	for i, e := range n.Elems {
		parts[i] = n.Names[i] + " = " + Show(e)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (n *NamedTuple) Hash(seed uint64) uint64 {
	h := seed ^ 0x517cc1b727220a95
	for i, e := range n.Elems {
		h ^= Hash(SymVal(n.Names[i]), h)
		h = Hash(e, h)
	}
	return h
}
