// Package bytecode defines the instruction set and Chunk container
// internal/interp's compiler emits and its VM executes (spec.md §4.3).
// Grounded on the teacher's internal/vm/opcodes.go (the
// Opcode byte enum) and internal/vm/chunk.go (the Chunk container),
// regrammared from Funxy's trait/record/pattern-matching instruction set
// down to spec.md §4.3's minimum instruction categories plus the typed
// numeric-arithmetic variants §4.3 requires for type preservation.
package bytecode

// Opcode is a single VM instruction (spec.md §4.3's minimum categories).
type Opcode byte

const (
	// Stack/constant/variable access.
	OpConstLoad Opcode = iota
	OpPop
	OpDup
	OpLocalLoad
	OpLocalStore
	OpGlobalLoad
	OpGlobalStore

	// Typed arithmetic — per-type variants return the exact input element
	// type (spec.md §4.3's "Type preservation"); OpAddDyn etc. fall back to
	// full method-table dispatch when operand types weren't known at lowering.
	OpAddI64
	OpSubI64
	OpMulI64
	OpAddF64
	OpSubF64
	OpMulF64
	OpDivF64
	OpAddDyn
	OpSubDyn
	OpMulDyn
	OpDivDyn
	OpModDyn
	OpPowDyn
	OpNegDyn

	// Comparison (always dynamic: result may be three-valued on missing).
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Logic.
	OpNot
	OpAnd
	OpOr

	// Indexing, per-element-type specializations plus a generic fallback
	// (spec.md §4.3). Out-of-range raises BoundsError at execution time.
	OpIndexLoadI64
	OpIndexLoadF64
	OpIndexLoadDyn
	OpIndexStoreI64
	OpIndexStoreF64
	OpIndexStoreDyn

	// Struct field access (mutable structs only for store).
	OpFieldLoad
	OpFieldStore

	// Calls — each routes through internal/method's Dispatch (spec.md §4.2).
	OpCall
	OpCallKw
	OpCallSplat
	OpCallKwSplat

	// Control flow.
	OpBranch
	OpBranchIf
	OpBranchIfNot
	OpReturn

	// Aggregate construction.
	OpMakeTuple
	OpMakeNamedTuple
	OpMakeArray
	OpMakeRange
	OpMakeClosure
	OpMakeDict
	OpMakeSet

	// Broadcast (spec.md §4.4).
	OpBroadcastDot

	// Exceptions (spec.md §7).
	OpCatch
	OpThrow

	// Quote/macro support (spec.md §4.5): push a literal AST node as a value.
	OpQuoteLoad

	// OpDefineMethod/OpDefineStruct register a `function`/`struct` definition
	// with the running VM at the point in program order it's reached — the
	// method table and type registry are runtime state a Chunk's constants
	// can't mutate directly, so each reads a *MethodSpec/*StructSpec constant
	// (see internal/interp/vm.go) and performs the registration itself.
	OpDefineMethod
	OpDefineStruct

	OpHalt
)

var opcodeNames = map[Opcode]string{
	OpConstLoad:      "ConstLoad",
	OpPop:            "Pop",
	OpDup:            "Dup",
	OpLocalLoad:      "LocalLoad",
	OpLocalStore:     "LocalStore",
	OpGlobalLoad:     "GlobalLoad",
	OpGlobalStore:    "GlobalStore",
	OpAddI64:         "AddI64",
	OpSubI64:         "SubI64",
	OpMulI64:         "MulI64",
	OpAddF64:         "AddF64",
	OpSubF64:         "SubF64",
	OpMulF64:         "MulF64",
	OpDivF64:         "DivF64",
	OpAddDyn:         "AddDyn",
	OpSubDyn:         "SubDyn",
	OpMulDyn:         "MulDyn",
	OpDivDyn:         "DivDyn",
	OpModDyn:         "ModDyn",
	OpPowDyn:         "PowDyn",
	OpNegDyn:         "NegDyn",
	OpEq:             "Eq",
	OpNe:             "Ne",
	OpLt:             "Lt",
	OpLe:             "Le",
	OpGt:             "Gt",
	OpGe:             "Ge",
	OpNot:            "Not",
	OpAnd:            "And",
	OpOr:             "Or",
	OpIndexLoadI64:   "IndexLoadI64",
	OpIndexLoadF64:   "IndexLoadF64",
	OpIndexLoadDyn:   "IndexLoadDyn",
	OpIndexStoreI64:  "IndexStoreI64",
	OpIndexStoreF64:  "IndexStoreF64",
	OpIndexStoreDyn:  "IndexStoreDyn",
	OpFieldLoad:      "FieldLoad",
	OpFieldStore:     "FieldStore",
	OpCall:           "Call",
	OpCallKw:         "CallKw",
	OpCallSplat:      "CallSplat",
	OpCallKwSplat:    "CallKwSplat",
	OpBranch:         "Branch",
	OpBranchIf:       "BranchIf",
	OpBranchIfNot:    "BranchIfNot",
	OpReturn:         "Return",
	OpMakeTuple:      "MakeTuple",
	OpMakeNamedTuple: "MakeNamedTuple",
	OpMakeArray:      "MakeArray",
	OpMakeRange:      "MakeRange",
	OpMakeClosure:    "MakeClosure",
	OpMakeDict:       "MakeDict",
	OpMakeSet:        "MakeSet",
	OpBroadcastDot:   "BroadcastDot",
	OpCatch:          "Catch",
	OpThrow:          "Throw",
	OpQuoteLoad:      "QuoteLoad",
	OpDefineMethod:   "DefineMethod",
	OpDefineStruct:   "DefineStruct",
	OpHalt:           "Halt",
}

func (op Opcode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "Unknown"
}
