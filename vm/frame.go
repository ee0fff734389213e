package vm

import (
	"github.com/daivm/dai/bytecode"
	"github.com/daivm/dai/object"
)

// frame is one call-frame entry: the executing function/closure, its
// instruction pointer, and the base offset into the VM's shared operand
// stack where its locals begin (spec §4.5 frame fields).
type frame struct {
	closure  *object.Closure // nil for the top-level module frame
	fn       *object.Function
	module   *object.Module
	chunk    *bytecode.Chunk
	ip       int
	basePtr  int
	receiver object.Value // self, when this frame is a method call
	hasSelf  bool

	// returnCallback runs immediately after the callee frame pops,
	// before control resumes in the caller — used to finish class
	// construction once __init__ returns (spec §4.5 step 2).
	returnCallback func(vm *VM, result object.Value) (object.Value, error)
}

// calleeSlot returns the stack index the caller's callee value occupied
// before this frame was pushed — where its result must land once it
// returns. The outermost module frame has no callee slot beneath it.
func (f *frame) calleeSlot() int {
	if f.fn == nil {
		return f.basePtr
	}
	if f.hasSelf {
		return f.basePtr
	}
	return f.basePtr - 1
}

func (f *frame) line() int {
	if f.ip <= 0 {
		return f.chunk.LineAt(0)
	}
	return f.chunk.LineAt(f.ip - 1)
}

func (f *frame) name() string {
	if f.fn != nil && f.fn.Name != "" {
		return f.fn.Name
	}
	if f.module != nil {
		return f.module.Name
	}
	return "<anonymous>"
}

func (f *frame) filename() string {
	if f.fn != nil {
		return f.fn.Filename
	}
	if f.module != nil {
		return f.module.Filename
	}
	return "<unknown>"
}
