package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daivm/dai/opcode"
)

func TestWriteOpAndOperands_RoundTripBigEndian(t *testing.T) {
	c := NewChunk()
	off := c.WriteOp(opcode.Constant, 1)
	c.WriteU16(0x1234, 1)
	off2 := c.WriteOp(opcode.GetLocal, 2)
	c.WriteU8(7, 2)

	assert.Equal(t, 0, off)
	assert.Equal(t, uint16(0x1234), c.ReadU16(off+1))
	assert.Equal(t, uint8(7), c.ReadU8(off2+1))
	assert.Equal(t, []byte{byte(opcode.Constant), 0x12, 0x34, byte(opcode.GetLocal), 7}, c.Code)
}

func TestLineAt_TracksOnePerByte(t *testing.T) {
	c := NewChunk()
	c.WriteOp(opcode.Constant, 10)
	c.WriteU16(0, 10)
	c.WriteOp(opcode.Return, 11)

	assert.Equal(t, 10, c.LineAt(0))
	assert.Equal(t, 10, c.LineAt(2))
	assert.Equal(t, 11, c.LineAt(3))
	assert.Equal(t, 0, c.LineAt(-1), "out of range reads must not panic")
	assert.Equal(t, 0, c.LineAt(999))
}

func TestAddConstant_ReturnsSequentialIndices(t *testing.T) {
	c := NewChunk()
	a := c.AddConstant("x")
	b := c.AddConstant(42)
	assert.Equal(t, uint16(0), a)
	assert.Equal(t, uint16(1), b)
	require.Len(t, c.Constants, 2)
	assert.Equal(t, "x", c.Constants[0])
}

func TestPatchU16_BackfillsForwardJumpOffset(t *testing.T) {
	c := NewChunk()
	c.WriteOp(opcode.JumpIfFalse, 1)
	placeholder := c.Len()
	c.WriteU16(0xFFFF, 1)
	c.WriteOp(opcode.Return, 2)

	dest := c.Len() - (placeholder + 2)
	c.PatchU16(placeholder, uint16(dest))

	assert.Equal(t, uint16(dest), c.ReadU16(placeholder))
}

func TestLen_TracksCurrentStreamLength(t *testing.T) {
	c := NewChunk()
	assert.Equal(t, 0, c.Len())
	c.WriteOp(opcode.Return, 1)
	assert.Equal(t, 1, c.Len())
}
