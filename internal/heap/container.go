package heap

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"
)

// bucket is one hash-chain entry of Dict/Set, keyed by isequal/hash
// (spec.md §3.1).
type bucket struct {
	hash uint64
	key  value.Value
	val  value.Value // unused (zero Value) for Set
}

// Dict is a heap hash container keyed by isequal/hash (spec.md §3.1).
type Dict struct {
	ID      uuid.UUID
	KeyType types.Type
	ValType types.Type
	buckets map[uint64][]bucket
	order   []uint64 // insertion-order hash keys, for stable iteration
}

// NewDict seeds the identity-tag salt from a fresh uuid (per SPEC_FULL's
// domain-stack note on google/uuid backing container bucket seeding), which
// keeps accidental hash-flooding collisions across distinct Dict instances
// from lining up deterministically.
func NewDict(keyType, valType types.Type) *Dict {
	return &Dict{ID: value.NewUUID(), KeyType: keyType, ValType: valType, buckets: map[uint64][]bucket{}}
}

func (d *Dict) seed() uint64 {
	id := d.ID
	var h uint64 = 0xcbf29ce484222325
	for _, b := range id {
		h ^= uint64(b)
		h *= 0x100000001b3
	}
	return h
}

func (d *Dict) JLType() types.Type {
	return &types.DataType{Name: "Dict", Params: []types.Type{d.KeyType, d.ValType}, Super: types.Any}
}

func (d *Dict) Show() string {
	var b strings.Builder
	b.WriteString("Dict(")
	first := true
	for _, h := range d.order {
		for _, e := range d.buckets[h] {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(value.Show(e.key))
			b.WriteString(" => ")
			b.WriteString(value.Show(e.val))
		}
	}
	b.WriteString(")")
	return b.String()
}

func (d *Dict) Hash(seed uint64) uint64 {
	h := seed
	for _, hk := range d.order {
		for _, e := range d.buckets[hk] {
			h ^= value.Hash(e.key, d.seed()) ^ value.Hash(e.val, d.seed())
		}
	}
	return h
}

func (d *Dict) keyHash(k value.Value) uint64 { return value.Hash(k, d.seed()) }

// Get implements getindex; missing key raises KeyError (spec.md §7).
func (d *Dict) Get(k value.Value) (value.Value, error) {
	h := d.keyHash(k)
	for _, e := range d.buckets[h] {
		if value.IsEqual(e.key, k) {
			return e.val, nil
		}
	}
	return value.Value{}, jlerror.NewKeyError(value.Show(k))
}

func (d *Dict) Lookup(k value.Value) (value.Value, bool) {
	h := d.keyHash(k)
	for _, e := range d.buckets[h] {
		if value.IsEqual(e.key, k) {
			return e.val, true
		}
	}
	return value.Value{}, false
}

// Set implements setindex!: insert or overwrite the binding for k.
func (d *Dict) Set(k, v value.Value) {
	h := d.keyHash(k)
	for i, e := range d.buckets[h] {
		if value.IsEqual(e.key, k) {
			d.buckets[h][i].val = v
			return
		}
	}
	if _, ok := d.buckets[h]; !ok {
		d.order = append(d.order, h)
	}
	d.buckets[h] = append(d.buckets[h], bucket{hash: h, key: k, val: v})
}

func (d *Dict) Delete(k value.Value) bool {
	h := d.keyHash(k)
	bs := d.buckets[h]
	for i, e := range bs {
		if value.IsEqual(e.key, k) {
			d.buckets[h] = append(bs[:i], bs[i+1:]...)
			return true
		}
	}
	return false
}

func (d *Dict) Len() int {
	n := 0
	for _, bs := range d.buckets {
		n += len(bs)
	}
	return n
}

// Pairs returns (key, value) pairs in insertion order.
func (d *Dict) Pairs() [][2]value.Value {
	var out [][2]value.Value
	for _, h := range d.order {
		for _, e := range d.buckets[h] {
			out = append(out, [2]value.Value{e.key, e.val})
		}
	}
	return out
}

// Set (the container, named SetContainer to avoid colliding with Dict's Set
// method name in this file) is a heap hash container of unique elements.
type SetContainer struct {
	ID      uuid.UUID
	ElemType types.Type
	buckets map[uint64][]bucket
	order   []uint64
}

func NewSet(elemType types.Type) *SetContainer {
	return &SetContainer{ID: value.NewUUID(), ElemType: elemType, buckets: map[uint64][]bucket{}}
}

func (s *SetContainer) seed() uint64 {
	var h uint64 = 0xcbf29ce484222325
	for _, b := range s.ID {
		h ^= uint64(b)
		h *= 0x100000001b3
	}
	return h
}

func (s *SetContainer) JLType() types.Type {
	return &types.DataType{Name: "Set", Params: []types.Type{s.ElemType}, Super: types.Any}
}

func (s *SetContainer) Show() string {
	var b strings.Builder
	b.WriteString("Set(")
	first := true
	for _, h := range s.order {
		for _, e := range s.buckets[h] {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(value.Show(e.key))
		}
	}
	b.WriteString(")")
	return b.String()
}

func (s *SetContainer) Hash(seed uint64) uint64 {
	h := seed
	for _, hk := range s.order {
		for _, e := range s.buckets[hk] {
			h ^= value.Hash(e.key, s.seed())
		}
	}
	return h
}

func (s *SetContainer) Contains(k value.Value) bool {
	h := value.Hash(k, s.seed())
	for _, e := range s.buckets[h] {
		if value.IsEqual(e.key, k) {
			return true
		}
	}
	return false
}

// Push inserts k, returning false if it was already present.
func (s *SetContainer) Push(k value.Value) bool {
	if s.Contains(k) {
		return false
	}
	h := value.Hash(k, s.seed())
	if _, ok := s.buckets[h]; !ok {
		s.order = append(s.order, h)
	}
	s.buckets[h] = append(s.buckets[h], bucket{hash: h, key: k})
	return true
}

func (s *SetContainer) Len() int {
	n := 0
	for _, bs := range s.buckets {
		n += len(bs)
	}
	return n
}

func (s *SetContainer) Elements() []value.Value {
	var out []value.Value
	for _, h := range s.order {
		for _, e := range s.buckets[h] {
			out = append(out, e.key)
		}
	}
	return out
}
