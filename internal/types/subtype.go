package types

// env tracks UnionAll variable bindings discovered while walking `<:`, so
// that e.g. `Vector{T} where T<:Number <: Vector{S} where S<:Number` can
// check existential satisfiability. Grounded on the teacher's Subst-carrying
// walk in internal/typesystem/unify.go, repurposed from unification to the
// one-directional subtype existential check Julia's runtime performs.
type env struct {
	bindings map[string]Type
}

func newEnv() *env { return &env{bindings: map[string]Type{}} }

// Subtype reports whether a <: b under Julia's subtyping rules: reflexivity,
// supertype-chain walking, Union distribution on either side, covariant
// Tuple instantiation, invariant parametric instantiation elsewhere, and
// UnionAll quantifier handling (spec.md §4.1).
func Subtype(a, b Type) bool {
	return subtype(a, b, newEnv())
}

func subtype(a, b Type, e *env) bool {
	if a == nil || b == nil {
		return false
	}
	// Bottom is a subtype of everything; Any is a supertype of everything.
	if isBottom(a) {
		return true
	}
	if b == Any {
		return true
	}
	if ua, ok := b.(*UnionAll); ok {
		// a <: (T where bounds) iff exists a binding of T satisfying bounds
		// such that a <: body[T:=binding]. We search for the binding
		// Julia's algorithm would find: take a's own corresponding
		// parameter if a is the same constructor, else fall back to the
		// variable's upper bound (the widest legal choice).
		candidate := inferWitness(a, ua)
		lo, hi := ua.Var.bound()
		if !subtype(lo, candidate, e) || !subtype(candidate, hi, e) {
			// fall back to upper bound, still must satisfy lo<:hi
			candidate = hi
		}
		return subtype(a, ua.Instantiate(candidate), e)
	}
	if ua, ok := a.(*UnionAll); ok {
		// a UnionAll is <: b iff its body is <: b for the full bound range,
		// i.e. for the widest legal instantiation (its upper bound), since
		// UnionAll as a value describes the family, and familial subtyping
		// in Julia tests the body against the variable kept free — we
		// approximate with the upper-bound instantiation, which is exact
		// whenever b does not itself mention the same variable name.
		return subtype(ua.Instantiate(ua.Var.Upper), b, e)
	}
	if av, ok := a.(TypeVar); ok {
		_, hi := av.bound()
		return subtype(hi, b, e)
	}
	if bv, ok := b.(TypeVar); ok {
		lo, _ := bv.bound()
		return subtype(a, lo, e) // conservative: a must be below the var's floor
	}

	// Union distribution: A <: Union{B,C} iff A<:B or A<:C.
	if bu, ok := b.(*Union); ok {
		for _, m := range bu.Members {
			if subtype(a, m, e) {
				return true
			}
		}
		return false
	}
	// Union{A,B} <: C iff A<:C and B<:C.
	if au, ok := a.(*Union); ok {
		for _, m := range au.Members {
			if !subtype(m, b, e) {
				return false
			}
		}
		return true
	}

	switch bt := b.(type) {
	case *TypeType:
		at, ok := a.(*TypeType)
		return ok && Subtype(at.T, bt.T) && Subtype(bt.T, at.T) // Type{T} invariant-by-equality in this subset
	case *TupleType:
		at, ok := a.(*TupleType)
		if !ok {
			return false
		}
		return tupleSubtype(at, bt)
	case *DataType:
		ad, ok := a.(*DataType)
		if !ok {
			return false
		}
		return dataTypeSubtype(ad, bt, e)
	}
	return a.Equal(b)
}

func isBottom(t Type) bool {
	u, ok := t.(*Union)
	return ok && len(u.Members) == 0
}

// inferWitness picks the type argument a "offers" a UnionAll's quantified
// variable when a is the same nominal constructor as the UnionAll's body.
func inferWitness(a Type, ua *UnionAll) Type {
	bodyDT, ok := ua.Body.(*DataType)
	if !ok {
		return ua.Var.Upper
	}
	ad, ok := a.(*DataType)
	if !ok || ad.Name != bodyDT.Name || len(ad.Params) != len(bodyDT.Params) {
		return ua.Var.Upper
	}
	for i, p := range bodyDT.Params {
		if tv, ok := p.(TypeVar); ok && tv.Name == ua.Var.Name {
			return ad.Params[i]
		}
	}
	return ua.Var.Upper
}

func tupleSubtype(a, b *TupleType) bool {
	// Covariant, elementwise (spec.md §4.1). Fixed-length must match arity
	// unless b is variadic with enough fixed elements satisfied.
	if !b.Variadic {
		if a.Variadic || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Subtype(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	}
	fixed := len(b.Elems) - 1
	if len(a.Elems) < fixed {
		return false
	}
	for i := 0; i < fixed; i++ {
		if !Subtype(a.Elems[i], b.Elems[i]) {
			return false
		}
	}
	tail := b.Elems[fixed]
	for i := fixed; i < len(a.Elems); i++ {
		if !Subtype(a.Elems[i], tail) {
			return false
		}
	}
	return true
}

func dataTypeSubtype(a, b *DataType, e *env) bool {
	if a.Name == b.Name {
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !paramSubtype(a.Name, a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	}
	// Walk a's supertype chain.
	sup := a.supertype()
	if sup == nil || sup == a || sup.Equal(a) {
		return false
	}
	return subtype(sup, b, e)
}

// paramSubtype applies Array invariance vs the general default of invariance
// for non-Tuple parametric containers (spec.md §4.1: "Array-types are
// invariant"). Every DataType parameter in this subset is invariant except
// where the parameter's own type is itself a TupleType, which stays
// covariant through the normal Subtype recursion.
func paramSubtype(containerName string, a, b Type) bool {
	if _, ok := a.(*TupleType); ok {
		return Subtype(a, b)
	}
	return a.Equal(b)
}

// IsConcrete reports whether t denotes a concrete (instantiable) type: a
// non-abstract DataType with fully concrete parameters, a TupleType of
// concrete elements, or a primitive/singleton.
func IsConcrete(t Type) bool {
	switch v := t.(type) {
	case *DataType:
		if v.IsAbstract {
			return false
		}
		for _, p := range v.Params {
			if _, isVar := p.(TypeVar); isVar {
				return false
			}
			if !IsConcrete(p) {
				return false
			}
		}
		return true
	case *TupleType:
		for _, el := range v.Elems {
			if !IsConcrete(el) {
				return false
			}
		}
		return true
	case *Union:
		return false
	case *UnionAll:
		return false
	case *TypeType:
		return true
	case TypeVar:
		return false
	}
	return true
}
