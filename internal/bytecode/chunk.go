package bytecode

import "github.com/jlvm/jlvm/internal/value"

// HandlerEntry is one row of a Chunk's exception handler table (spec.md §7):
// a `try` region [TryStart,TryEnd) whose failures unwind to HandlerPC with
// the raised value bound to a local slot.
type HandlerEntry struct {
	TryStart   int
	TryEnd     int
	HandlerPC  int
	CatchLocal int // local-variable slot `catch e` binds into, -1 if unbound
	FinallyPC  int // -1 if no finally block
}

// Chunk is one compiled function/top-level body's bytecode, constant pool,
// and per-offset line/column table for error reporting (spec.md §4.3).
// Grounded on the teacher's internal/vm/chunk.go, generalized from a single
// evaluator.Object constant slice to value.Value (this VM's own tagged
// union) and extended with a handler table for the try/catch/finally model
// spec.md §7 describes.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	Lines     []int
	Columns   []int
	File      string
	Handlers  []HandlerEntry
	NumLocals int
}

func NewChunk(file string) *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 256),
		Constants: make([]value.Value, 0, 64),
		Lines:     make([]int, 0, 256),
		Columns:   make([]int, 0, 256),
		File:      file,
	}
}

func (c *Chunk) emit(b byte, line, col int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	c.Columns = append(c.Columns, col)
}

// WriteOp appends a bare opcode with no operand bytes.
func (c *Chunk) WriteOp(op Opcode, line, col int) int {
	pos := len(c.Code)
	c.emit(byte(op), line, col)
	return pos
}

// WriteOpU16 appends an opcode followed by a 2-byte big-endian operand
// (local slot index, jump target, constant index, argument count, ...).
func (c *Chunk) WriteOpU16(op Opcode, operand uint16, line, col int) int {
	pos := len(c.Code)
	c.emit(byte(op), line, col)
	c.emit(byte(operand>>8), line, col)
	c.emit(byte(operand), line, col)
	return pos
}

// PatchU16 overwrites the 2-byte operand starting at codeOffset+1 (used to
// backpatch forward jump targets once the destination is known).
func (c *Chunk) PatchU16(codeOffset int, operand uint16) {
	c.Code[codeOffset+1] = byte(operand >> 8)
	c.Code[codeOffset+2] = byte(operand)
}

func (c *Chunk) ReadU16(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}

// AddConstant interns v into the constant pool, returning its index.
func (c *Chunk) AddConstant(v value.Value) uint16 {
	c.Constants = append(c.Constants, v)
	return uint16(len(c.Constants) - 1)
}

func (c *Chunk) Len() int { return len(c.Code) }

// AddHandler registers a try region, returning its index in Handlers;
// internal/interp's VM.unwind scans Handlers when an instruction raises.
func (c *Chunk) AddHandler(h HandlerEntry) int {
	c.Handlers = append(c.Handlers, h)
	return len(c.Handlers) - 1
}
