package bytecode

import (
	"testing"

	"github.com/jlvm/jlvm/internal/value"
)

func TestWriteOpU16RoundTrip(t *testing.T) {
	c := NewChunk("test.jl")
	pos := c.WriteOpU16(OpGlobalLoad, 0xBEEF, 1, 1)
	if Opcode(c.Code[pos]) != OpGlobalLoad {
		t.Fatalf("expected OpGlobalLoad at %d, got %v", pos, Opcode(c.Code[pos]))
	}
	if got := c.ReadU16(pos + 1); got != 0xBEEF {
		t.Fatalf("expected 0xBEEF, got %#x", got)
	}
}

func TestPatchU16BackpatchesForwardJump(t *testing.T) {
	c := NewChunk("test.jl")
	jumpPos := c.WriteOpU16(OpBranchIfNot, 0, 2, 1)
	c.WriteOp(OpPop, 3, 1)
	target := uint16(c.Len())
	c.PatchU16(jumpPos, target)
	if got := c.ReadU16(jumpPos + 1); got != target {
		t.Fatalf("expected patched target %d, got %d", target, got)
	}
}

func TestAddConstantIndexesSequentially(t *testing.T) {
	c := NewChunk("test.jl")
	i0 := c.AddConstant(value.Int64(1))
	i1 := c.AddConstant(value.Int64(2))
	if i0 != 0 || i1 != 1 {
		t.Fatalf("expected sequential constant indices 0,1, got %d,%d", i0, i1)
	}
	if c.Constants[i1].AsInt64() != 2 {
		t.Fatalf("expected constant 1 to be 2, got %v", c.Constants[i1])
	}
}

func TestAddHandlerReturnsIndex(t *testing.T) {
	c := NewChunk("test.jl")
	i := c.AddHandler(HandlerEntry{TryStart: 0, TryEnd: 5, HandlerPC: 10, CatchLocal: 0, FinallyPC: -1})
	if i != 0 {
		t.Fatalf("expected first handler index 0, got %d", i)
	}
	if c.Handlers[0].HandlerPC != 10 {
		t.Fatalf("expected HandlerPC 10, got %d", c.Handlers[0].HandlerPC)
	}
}
