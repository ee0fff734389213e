// Package bytecode defines the Chunk a Function owns: its instruction
// bytes, a parallel per-byte source-line table, and its constant pool. All
// multi-byte operands are big-endian (spec §6.3).
package bytecode

import (
	"encoding/binary"

	"github.com/daivm/dai/opcode"
)

// Chunk is a contiguous bytecode buffer with a line table and constants.
// It is never persisted; it exists only in the running VM's memory.
type Chunk struct {
	Code      []byte
	Lines     []int // Lines[i] is the source line of Code[i]
	Constants []interface{}
}

// NewChunk returns an empty chunk ready for the compiler to emit into.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends one byte with its source line and returns its offset.
func (c *Chunk) Write(b byte, line int) int {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// WriteOp appends an opcode byte and returns its offset.
func (c *Chunk) WriteOp(op opcode.Op, line int) int {
	return c.Write(byte(op), line)
}

// WriteU8 appends a single-byte operand.
func (c *Chunk) WriteU8(v uint8, line int) {
	c.Write(v, line)
}

// WriteU16 appends a two-byte big-endian operand.
func (c *Chunk) WriteU16(v uint16, line int) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	c.Write(buf[0], line)
	c.Write(buf[1], line)
}

// AddConstant appends a value to the constant pool and returns its index.
// The compiler is responsible for deduplicating where it cares to.
func (c *Chunk) AddConstant(v interface{}) uint16 {
	c.Constants = append(c.Constants, v)
	return uint16(len(c.Constants) - 1)
}

// ReadU8 reads a single-byte operand at ip.
func (c *Chunk) ReadU8(ip int) uint8 {
	return c.Code[ip]
}

// ReadU16 reads a two-byte big-endian operand at ip.
func (c *Chunk) ReadU16(ip int) uint16 {
	return binary.BigEndian.Uint16(c.Code[ip : ip+2])
}

// PatchU16 overwrites the u16 operand at ip, used to back-patch forward
// jump targets once the jump destination is known.
func (c *Chunk) PatchU16(ip int, v uint16) {
	binary.BigEndian.PutUint16(c.Code[ip:ip+2], v)
}

// LineAt returns the source line recorded for byte offset ip.
func (c *Chunk) LineAt(ip int) int {
	if ip < 0 || ip >= len(c.Lines) {
		return 0
	}
	return c.Lines[ip]
}

// Len returns the current instruction-stream length, i.e. the offset the
// next Write call will land at.
func (c *Chunk) Len() int { return len(c.Code) }
