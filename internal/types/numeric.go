package types

// Numeric tower ordering (spec.md §4.1): promote_type returns the smallest
// common concrete supertype. Ordering mirrors Julia's actual promotion
// table: Bool < Int8 < Int16 < Int32 < Int64 < Int128 (unsigned widens
// alongside signed of the same byte width but never silently crosses
// sign), Float16 < Float32 < Float64, and any Int/Float pair promotes to
// Float64.
var (
	Bool    = NewConcrete("Bool", Any, nil, nil, false)
	Int8    = NewConcrete("Int8", Any, nil, nil, false)
	Int16   = NewConcrete("Int16", Any, nil, nil, false)
	Int32   = NewConcrete("Int32", Any, nil, nil, false)
	Int64   = NewConcrete("Int64", Any, nil, nil, false)
	Int128  = NewConcrete("Int128", Any, nil, nil, false)
	UInt8   = NewConcrete("UInt8", Any, nil, nil, false)
	UInt16  = NewConcrete("UInt16", Any, nil, nil, false)
	UInt32  = NewConcrete("UInt32", Any, nil, nil, false)
	UInt64  = NewConcrete("UInt64", Any, nil, nil, false)
	Float16 = NewConcrete("Float16", Any, nil, nil, false)
	Float32 = NewConcrete("Float32", Any, nil, nil, false)
	Float64 = NewConcrete("Float64", Any, nil, nil, false)
	CharT   = NewConcrete("Char", Any, nil, nil, false)
	StringT = NewConcrete("String", Any, nil, nil, false)
	NothingT = NewConcrete("Nothing", Any, nil, nil, false)
	MissingT = NewConcrete("Missing", Any, nil, nil, false)
)

// rank gives each numeric DataType an integer position in the promotion
// lattice; -1 means "not a numeric type known to this table".
var rank = map[string]int{
	"Bool": 0,
	"Int8": 1, "UInt8": 1,
	"Int16": 2, "UInt16": 2,
	"Int32": 3, "UInt32": 3,
	"Int64": 4, "UInt64": 4,
	"Int128": 5,
	"Float16": 10, "Float32": 11, "Float64": 12,
}

func isUnsigned(name string) bool {
	switch name {
	case "UInt8", "UInt16", "UInt32", "UInt64":
		return true
	}
	return false
}

func isFloatName(name string) bool {
	switch name {
	case "Float16", "Float32", "Float64":
		return true
	}
	return false
}

func isIntName(name string) bool {
	r, ok := rank[name]
	return ok && r < 10
}

// PromoteType returns the smallest common concrete numeric supertype of a
// and b following Julia's promotion table, or nil if neither is numeric.
func PromoteType(a, b Type) Type {
	ad, aok := a.(*DataType)
	bd, bok := b.(*DataType)
	if !aok || !bok {
		return nil
	}
	ar, aHas := rank[ad.Name]
	br, bHas := rank[bd.Name]
	if !aHas || !bHas {
		return nil
	}
	if ad.Name == bd.Name {
		return ad
	}
	aFloat, bFloat := isFloatName(ad.Name), isFloatName(bd.Name)
	if aFloat || bFloat {
		if aFloat && bFloat {
			return byName(max(ar, br))
		}
		// Int ∪ Float → Float64 (spec.md §4.1).
		return Float64
	}
	// Both integral (Bool counts as Int8-ish rank 0).
	if isUnsigned(ad.Name) != isUnsigned(bd.Name) {
		// Mixed signedness: widen to the next signed rank that can hold both,
		// matching Julia's actual promote_type(UInt, Int) behavior of
		// picking a signed type one rank wider when ranks are equal.
		hiRank := ar
		if br > hiRank {
			hiRank = br
		}
		if hiRank >= 5 {
			return Int128
		}
		return named(rankNameSigned(hiRank + 1))
	}
	return byName(max(ar, br))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func byName(r int) Type {
	for name, rr := range rank {
		if rr == r && !isUnsigned(name) {
			return named(name)
		}
	}
	return Int64
}

func rankNameSigned(r int) string {
	switch r {
	case 0:
		return "Int8"
	case 1:
		return "Int8"
	case 2:
		return "Int16"
	case 3:
		return "Int32"
	case 4:
		return "Int64"
	default:
		return "Int128"
	}
}

func named(name string) Type {
	switch name {
	case "Bool":
		return Bool
	case "Int8":
		return Int8
	case "Int16":
		return Int16
	case "Int32":
		return Int32
	case "Int64":
		return Int64
	case "Int128":
		return Int128
	case "UInt8":
		return UInt8
	case "UInt16":
		return UInt16
	case "UInt32":
		return UInt32
	case "UInt64":
		return UInt64
	case "Float16":
		return Float16
	case "Float32":
		return Float32
	case "Float64":
		return Float64
	}
	return Int64
}

// IsNumeric reports whether t is one of the concrete numeric DataTypes
// tracked by the promotion table.
func IsNumeric(t Type) bool {
	d, ok := t.(*DataType)
	if !ok {
		return false
	}
	_, has := rank[d.Name]
	return has
}
