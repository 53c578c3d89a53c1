// Package types implements Julia's type lattice: concrete and abstract
// DataTypes, parametric instantiation, Union, UnionAll, Type{T}, and the `<:`
// subtyping relation with the diagonal rule (spec.md §4.1). It is grounded on
// the teacher's internal/typesystem package (types.go/kinds.go/unify.go),
// generalized from a Hindley-Milner type-variable lattice to Julia's
// nominal-subtyping lattice.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the interface every member of the type lattice satisfies.
type Type interface {
	String() string
	// Equal reports structural equality (not subtyping).
	Equal(Type) bool
}

// TypeVar is a free parameter of a UnionAll, e.g. the T in `Vector{T} where T<:Number`.
type TypeVar struct {
	Name  string
	Lower Type // defaults to Bottom
	Upper Type // defaults to Any
}

func (v TypeVar) String() string {
	if v.Upper != nil && !v.Upper.Equal(Any) {
		if v.Lower != nil && !v.Lower.Equal(Bottom) {
			return fmt.Sprintf("%s>:%s where %s<:%s", v.Name, v.Lower, v.Name, v.Upper)
		}
		return fmt.Sprintf("%s where %s<:%s", v.Name, v.Name, v.Upper)
	}
	return v.Name
}

func (v TypeVar) Equal(o Type) bool {
	ov, ok := o.(TypeVar)
	return ok && ov.Name == v.Name
}

func (v TypeVar) bound() (Type, Type) {
	lo, hi := v.Lower, v.Upper
	if lo == nil {
		lo = Bottom
	}
	if hi == nil {
		hi = Any
	}
	return lo, hi
}

// DataType represents a concrete or abstract nominal type, possibly
// parametric with already-bound parameters (e.g. Vector{Int} has Params
// [Int]; Vector{T} where T is represented as a UnionAll wrapping a DataType
// whose Params contain the TypeVar).
type DataType struct {
	Name       string
	Params     []Type // bound (or free-variable) type parameters, in order
	Super      Type   // declared supertype; nil means Any
	IsAbstract bool
	// FieldTypes, in declaration order, for struct types (may reference Params).
	FieldNames []string
	FieldTypes []Type
	IsMutable  bool
}

func (d *DataType) String() string {
	if len(d.Params) == 0 {
		return d.Name
	}
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s{%s}", d.Name, strings.Join(parts, ","))
}

func (d *DataType) Equal(o Type) bool {
	od, ok := o.(*DataType)
	if !ok || od.Name != d.Name || len(od.Params) != len(d.Params) {
		return false
	}
	for i := range d.Params {
		if !d.Params[i].Equal(od.Params[i]) {
			return false
		}
	}
	return true
}

func (d *DataType) supertype() Type {
	if d.Super == nil {
		return Any
	}
	return d.Super
}

// Union is a normalized, flattened, deduplicated union of member types.
// An empty Union is Bottom (Union{}).
type Union struct {
	Members []Type
}

// NewUnion builds a normalized Union: flattens nested unions, drops
// duplicates, and collapses a singleton to its sole member.
func NewUnion(members ...Type) Type {
	var flat []Type
	var flatten func(Type)
	flatten = func(t Type) {
		if u, ok := t.(*Union); ok {
			for _, m := range u.Members {
				flatten(m)
			}
			return
		}
		flat = append(flat, t)
	}
	for _, m := range members {
		flatten(m)
	}
	// Dedup.
	out := flat[:0:0]
	for _, t := range flat {
		dup := false
		for _, o := range out {
			if t.Equal(o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	switch len(out) {
	case 0:
		return Bottom
	case 1:
		return out[0]
	default:
		return &Union{Members: out}
	}
}

func (u *Union) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return fmt.Sprintf("Union{%s}", strings.Join(parts, ","))
}

func (u *Union) Equal(o Type) bool {
	ou, ok := o.(*Union)
	if !ok || len(ou.Members) != len(u.Members) {
		return false
	}
	for i := range u.Members {
		if !u.Members[i].Equal(ou.Members[i]) {
			return false
		}
	}
	return true
}

// UnionAll is a type with one free quantified parameter, e.g.
// `Vector{T} where T<:Number`. Body is the type with Var free inside it.
type UnionAll struct {
	Var  TypeVar
	Body Type
}

func (ua *UnionAll) String() string {
	return fmt.Sprintf("%s where %s", ua.Body.String(), ua.Var.String())
}

func (ua *UnionAll) Equal(o Type) bool {
	ou, ok := o.(*UnionAll)
	return ok && ou.Var.Name == ua.Var.Name && ua.Body.Equal(ou.Body)
}

// Instantiate substitutes Var with arg throughout Body, returning a concrete
// (or still-parametric, if nested) type.
func (ua *UnionAll) Instantiate(arg Type) Type {
	return substitute(ua.Body, ua.Var.Name, arg)
}

func substitute(t Type, name string, with Type) Type {
	switch v := t.(type) {
	case TypeVar:
		if v.Name == name {
			return with
		}
		return v
	case *DataType:
		if len(v.Params) == 0 {
			return v
		}
		newParams := make([]Type, len(v.Params))
		changed := false
		for i, p := range v.Params {
			newParams[i] = substitute(p, name, with)
			if !newParams[i].Equal(p) {
				changed = true
			}
		}
		if !changed {
			return v
		}
		nd := *v
		nd.Params = newParams
		return &nd
	case *Union:
		newMembers := make([]Type, len(v.Members))
		for i, m := range v.Members {
			newMembers[i] = substitute(m, name, with)
		}
		return NewUnion(newMembers...)
	case *TupleType:
		newElems := make([]Type, len(v.Elems))
		for i, e := range v.Elems {
			newElems[i] = substitute(e, name, with)
		}
		return &TupleType{Elems: newElems, Variadic: v.Variadic}
	case *TypeType:
		return &TypeType{T: substitute(v.T, name, with)}
	case *UnionAll:
		if v.Var.Name == name {
			return v // shadowed, stop here
		}
		return &UnionAll{Var: v.Var, Body: substitute(v.Body, name, with)}
	default:
		return t
	}
}

// TupleType models Tuple{A,B,...}; covariant in its elements (spec.md §4.1).
// Variadic tuple types (Tuple{Int, Vararg{Any}}) have Variadic=true and the
// last element is the repeated tail type.
type TupleType struct {
	Elems    []Type
	Variadic bool
}

func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	suffix := ""
	if t.Variadic {
		suffix = "..."
	}
	return fmt.Sprintf("Tuple{%s%s}", strings.Join(parts, ","), suffix)
}

func (t *TupleType) Equal(o Type) bool {
	ot, ok := o.(*TupleType)
	if !ok || len(ot.Elems) != len(t.Elems) || ot.Variadic != t.Variadic {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Equal(ot.Elems[i]) {
			return false
		}
	}
	return true
}

// TypeType is the singleton type `Type{T}` whose sole instance is T itself.
type TypeType struct {
	T Type
}

func (t *TypeType) String() string { return fmt.Sprintf("Type{%s}", t.T.String()) }
func (t *TypeType) Equal(o Type) bool {
	ot, ok := o.(*TypeType)
	return ok && t.T.Equal(ot.T)
}

// Bottom is Union{}, the empty type, subtype of everything.
var Bottom Type = &Union{}

// Any is the root of the nominal supertype chain.
var Any Type = &DataType{Name: "Any", IsAbstract: true}

func init() {
	// Bottom prints as Union{} per Julia convention; give it a distinct
	// Stringer without changing its identity as an empty *Union.
}

// NewAbstract declares a new abstract DataType with the given supertype
// (Any if nil).
func NewAbstract(name string, super Type) *DataType {
	return &DataType{Name: name, IsAbstract: true, Super: super}
}

// NewConcrete declares a new concrete DataType.
func NewConcrete(name string, super Type, fieldNames []string, fieldTypes []Type, mutable bool) *DataType {
	return &DataType{Name: name, Super: super, FieldNames: fieldNames, FieldTypes: fieldTypes, IsMutable: mutable}
}
