package compiler

import (
	"github.com/daivm/dai/bytecode"
	"github.com/daivm/dai/symbols"
)

// loopContext tracks the backpatch sites a break/continue inside the
// current loop needs: continue jumps straight to the loop's re-test
// point, break jumps are collected and patched to the loop's exit once
// the whole loop body has compiled (the exit offset isn't known yet
// while the body is still being emitted).
type loopContext struct {
	continueTarget int
	breakJumps     []int
}

// scope is one compile-time function (or top-level module) scope: its
// own instruction chunk, its own symbol table, and its own loop-nesting
// stack so break/continue inside a nested function never reaches past
// that function's own loops.
type scope struct {
	chunk   *bytecode.Chunk
	symbols *symbols.Table
	loops   []*loopContext

	lastOp     opcodeMarker
	previousOp opcodeMarker
}

type opcodeMarker struct {
	pos   int
	valid bool
}

func newScope(st *symbols.Table) *scope {
	return &scope{chunk: bytecode.NewChunk(), symbols: st}
}

func (s *scope) pushLoop(continueTarget int) *loopContext {
	lc := &loopContext{continueTarget: continueTarget}
	s.loops = append(s.loops, lc)
	return lc
}

func (s *scope) popLoop() {
	s.loops = s.loops[:len(s.loops)-1]
}

func (s *scope) currentLoop() *loopContext {
	if len(s.loops) == 0 {
		return nil
	}
	return s.loops[len(s.loops)-1]
}
