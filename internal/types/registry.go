package types

// Number/Integer/AbstractFloat give the numeric tower an abstract spine
// (spec.md §4.1's nominal hierarchy): Int64 <: Integer <: Number <: Any,
// Float64 <: AbstractFloat <: Number <: Any, the same shape Julia's own
// Base declares.
var (
	Number        = NewAbstract("Number", Any)
	Integer       = NewAbstract("Integer", Number)
	AbstractFloat = NewAbstract("AbstractFloat", Number)
)

func init() {
	for _, t := range []*DataType{Bool, Int8, Int16, Int32, Int64, Int128, UInt8, UInt16, UInt32, UInt64} {
		t.Super = Integer
	}
	for _, t := range []*DataType{Float16, Float32, Float64} {
		t.Super = AbstractFloat
	}
	for name, t := range map[string]*DataType{
		"Any": Any.(*DataType), "Number": Number, "Integer": Integer, "AbstractFloat": AbstractFloat,
		"Bool": Bool, "Int8": Int8, "Int16": Int16, "Int32": Int32, "Int64": Int64, "Int128": Int128,
		"UInt8": UInt8, "UInt16": UInt16, "UInt32": UInt32, "UInt64": UInt64,
		"Float16": Float16, "Float32": Float32, "Float64": Float64,
		"Char": CharT, "String": StringT, "Nothing": NothingT, "Missing": MissingT,
	} {
		registry[name] = t
	}
}

// registry resolves a bare type name (as written in a `::T` annotation or a
// `struct` declaration's supertype) to its DataType — the lookup table a
// parametric type system normally builds at module-load time, kept minimal
// here since this subset has no user-declared abstract hierarchy beyond
// `struct`/`mutable struct` (spec.md §6.1).
var registry = map[string]Type{}

// Lookup resolves name against the builtin numeric/sentinel types and any
// struct type registered via RegisterStruct, returning (nil, false) if name
// is unknown; what an unknown name means is left to the caller.
func Lookup(name string) (Type, bool) {
	t, ok := registry[name]
	return t, ok
}

// RegisterStruct makes a struct type declared by `struct`/`mutable struct`
// resolvable by name in later `::Name` annotations and dispatch signatures.
func RegisterStruct(d *DataType) { registry[d.Name] = d }
