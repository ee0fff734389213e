// Package vm implements the dai stack machine: fetch-decode-execute over
// the bytecode the compiler package produces, the Call n convention for
// every callable kind, method/property dispatch through the object
// package's Operations vtables, and the arithmetic/iteration semantics
// spec.md §4.4/§4.5 describe. Its overall shape — a run loop wrapping
// each step's error with frame context, an explicit call-frame stack
// separate from the Go call stack, push/pop/current helpers — is grounded
// on the teacher's vm.Execute/run/executeInstruction/decorateError and
// ExecutionContext/CallFrame split, generalized from PHP's register
// machine to a value-stack machine and stripped of exception handlers,
// generators, and output buffering, none of which this object model has.
package vm

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/daivm/dai/bytecode"
	"github.com/daivm/dai/daierr"
	"github.com/daivm/dai/gc"
	"github.com/daivm/dai/intern"
	"github.com/daivm/dai/object"
	"github.com/daivm/dai/opcode"
)

const (
	maxFrames = 65
	maxStack  = 1 << 14 // ~16K operand slots, per spec §4.5
)

// state mirrors spec §4.5's VM state enum, used to gate GC triggering
// (collection only ever runs while the VM is actually executing).
type state int

const (
	statePending state = iota
	stateCompiling
	stateRunning
)

// VM is one dai interpreter instance: its own operand stack, call-frame
// stack, heap bookkeeping, and module registry. VMs never share an
// intern table or a Collector (spec §5 concurrency model: one VM, one
// host thread, no cross-VM sharing).
type VM struct {
	frames     [maxFrames]frame
	frameCount int

	stack [maxStack]object.Value
	sp    int

	intern *intern.Table
	gc     *gc.Collector

	modules map[string]*object.Module
	loading map[string]bool

	builtins     []object.Value
	builtinNames map[string]int

	transients []object.Value // pinned GC roots for in-flight native calls

	state state

	// Importer loads and compiles a module by resolved path; wired by the
	// embedding layer so the vm package itself never touches the
	// filesystem or the compiler package directly (spec §4.6 import).
	Importer func(vm *VM, path, fromFile string) (*object.Module, error)

	// Stdout is where the print/println built-ins write; a host embedding
	// the interpreter can redirect it, and tests substitute a buffer.
	Stdout io.Writer

	lastPopped object.Value // mirrors the original's DaiVM_lastPopedStackElem, for a REPL to echo an expression statement's value
}

// New returns a VM sharing tbl for string interning, so separately
// compiled modules handed to the same VM get pointer-identical strings
// for free (spec §3.2).
func New(tbl *intern.Table) *VM {
	vm := &VM{
		intern:       tbl,
		gc:           gc.New(),
		modules:      make(map[string]*object.Module),
		loading:      make(map[string]bool),
		builtinNames: make(map[string]int),
		Stdout:       os.Stdout,
	}
	// Every string tbl mints from now on — whether interned by this VM's
	// own bytecode (binaryAdd's string concat), by the compiler building
	// a module against the same shared table, or by an embedder's
	// SetString — gets linked into this VM's own collector so its Marked
	// bit is cycled correctly on every pass instead of only ever being set.
	tbl.SetTracker(vm.track)
	return vm
}

// Intern exposes the VM's shared string table to built-ins that need to
// produce or deduplicate a string result.
func (vm *VM) Intern() *intern.Table { return vm.intern }

// GC exposes the collector so built-ins holding roots outside the
// operand stack can Pause/Resume around them.
func (vm *VM) GC() *gc.Collector { return vm.gc }

// RegisterBuiltin adds fn as a VM-wide builtin global, returning the slot
// index the compiler's symbols.Table.DefineBuiltin must be given.
func (vm *VM) RegisterBuiltin(name string, fn object.HeapObject) int {
	idx := len(vm.builtins)
	vm.builtins = append(vm.builtins, object.Obj(fn))
	vm.builtinNames[name] = idx
	return idx
}

// Modules exposes the filename->Module registry for the import built-in.
func (vm *VM) Modules() map[string]*object.Module { return vm.modules }

// Loading reports whether filename names a module currently mid-load, so
// the import built-in can hand back a partially-initialized module on a
// circular import instead of re-entering RunModule on it.
func (vm *VM) Loading(filename string) bool { return vm.loading[filename] }

// CurrentFilename returns the filename of the innermost executing frame,
// the "importing file" the import built-in resolves relative paths
// against (spec §4.6 module search path).
func (vm *VM) CurrentFilename() string { return vm.curFrame().filename() }

// LastPopped returns the most recent value discarded by a Pop
// instruction, the value a bare expression statement just produced — a
// REPL's only way to recover and echo it, since ExpressionStatement
// compiles to push-then-pop with nothing left on the stack afterward.
func (vm *VM) LastPopped() object.Value { return vm.lastPopped }

// track links a freshly built heap object into the GC's allocation list
// and triggers a collection first if the byte budget demands it
// (spec §4.5 GC triggering, checked "after any allocation where new >
// old" — we check proactively instead, which is equivalent for a
// single-threaded VM since no allocation can race the check).
func (vm *VM) track(o object.HeapObject) object.HeapObject {
	if vm.state == stateRunning && vm.gc.ShouldCollect() {
		vm.collect()
	}
	return vm.gc.Track(o)
}

func (vm *VM) collect() {
	roots := gc.Roots{
		Stack:      append([]object.Value{}, vm.stack[:vm.sp]...),
		Transients: vm.transients,
	}
	for i := 0; i < vm.frameCount; i++ {
		f := &vm.frames[i]
		if f.closure != nil {
			roots.Frames = append(roots.Frames, f.closure)
		}
		if f.fn != nil {
			roots.Frames = append(roots.Frames, f.fn)
		}
		if f.module != nil {
			roots.Modules = append(roots.Modules, f.module)
		}
	}
	for _, b := range vm.builtins {
		if b.IsObject() {
			roots.Transients = append(roots.Transients, b)
		}
	}
	for _, m := range vm.modules {
		roots.Modules = append(roots.Modules, m)
	}
	vm.gc.Collect(roots, vm.intern)
}

// PinTransient keeps v alive across a native call that may trigger
// allocation and collection while holding a reference the operand stack
// doesn't see (spec §5 re-entrancy hazard).
func (vm *VM) PinTransient(v object.Value) func() {
	vm.transients = append(vm.transients, v)
	idx := len(vm.transients) - 1
	return func() {
		vm.transients = append(vm.transients[:idx], vm.transients[idx+1:]...)
	}
}

// ---- operand stack ----

func (vm *VM) push(v object.Value) error {
	if vm.sp >= maxStack {
		return daierr.StackOverflowError("operand stack exhausted")
	}
	vm.stack[vm.sp] = v
	vm.sp++
	return nil
}

func (vm *VM) pop() object.Value {
	vm.sp--
	v := vm.stack[vm.sp]
	vm.stack[vm.sp] = object.Value{}
	return v
}

func (vm *VM) popN(n int) []object.Value {
	out := make([]object.Value, n)
	copy(out, vm.stack[vm.sp-n:vm.sp])
	for i := vm.sp - n; i < vm.sp; i++ {
		vm.stack[i] = object.Value{}
	}
	vm.sp -= n
	return out
}

func (vm *VM) peek(fromTop int) object.Value {
	return vm.stack[vm.sp-1-fromTop]
}

func (vm *VM) curFrame() *frame { return &vm.frames[vm.frameCount-1] }

func (vm *VM) pushFrame(f frame) error {
	if vm.frameCount >= maxFrames {
		return daierr.StackOverflowError("call stack exceeded %d frames", maxFrames)
	}
	vm.frames[vm.frameCount] = f
	vm.frameCount++
	return nil
}

func (vm *VM) popFrame() frame {
	vm.frameCount--
	return vm.frames[vm.frameCount]
}

// ---- entry points ----

// RunModule compiles-and-runs a module's top-level code, registering it
// under filename so subsequent imports reuse it (spec §4.6). Callers pass
// an already-compiled module whose Chunk is ready to execute from 0.
func (vm *VM) RunModule(mod *object.Module) (object.Value, error) {
	vm.modules[mod.Filename] = mod
	vm.loading[mod.Filename] = true
	defer delete(vm.loading, mod.Filename)

	if err := vm.pushFrame(frame{module: mod, chunk: mod.Chunk, basePtr: vm.sp}); err != nil {
		return object.Value{}, err
	}
	vm.state = stateRunning
	result, err := vm.run()
	mod.Compiled = true
	return result, err
}

// Call invokes fn (a Closure, BoundMethod, BuiltinFunction, CFunction, or
// Class) with args, driving the run loop as needed for a callable that
// pushes its own frame. This is the entry point the embedding package
// uses for its get_function/call_function surface (spec §6.1), mirroring
// the original cbdai API's daicall_push_function/pusharg/execute sequence
// collapsed into one Go call.
func (vm *VM) Call(fn object.Value, args []object.Value) (object.Value, error) {
	base := vm.sp
	if err := vm.push(fn); err != nil {
		return object.Value{}, err
	}
	for _, a := range args {
		if err := vm.push(a); err != nil {
			vm.sp = base
			return object.Value{}, err
		}
	}

	origDepth := vm.frameCount
	result, done, err := vm.executeCall(len(args))
	if err != nil {
		vm.sp = base
		return object.Value{}, err
	}
	if done {
		return result, nil
	}
	if vm.frameCount == origDepth {
		// A native callable (BuiltinFunction/CFunction/BoundBuiltinMethod)
		// already ran synchronously; its result sits on the stack top.
		return vm.pop(), nil
	}

	vm.state = stateRunning
	return vm.runUntil(origDepth)
}

// run is the fetch-decode-execute core loop for a module's top-level
// execution, stopping once the frame RunModule pushed returns.
func (vm *VM) run() (object.Value, error) {
	return vm.runUntil(vm.frameCount - 1)
}

// runUntil executes instructions until a Return/ReturnValue unwinds the
// frame stack down to (or past) baseDepth, or the first error, which is
// annotated with the innermost frame's name/file/line before propagating
// (mirrors the teacher's decorateError wrapping, simplified to fit a Go
// error chain instead of a custom VMError formatter).
func (vm *VM) runUntil(baseDepth int) (object.Value, error) {
	for {
		f := vm.curFrame()
		if f.ip >= len(f.chunk.Code) {
			return object.Value{}, vm.fail(f, fmt.Errorf("fell off the end of %s with no Return", f.name()))
		}
		op := opcode.Op(f.chunk.Code[f.ip])
		f.ip++

		result, done, err := vm.step(f, op)
		if err != nil {
			return object.Value{}, vm.fail(f, err)
		}
		if done {
			if vm.frameCount <= baseDepth {
				return result, nil
			}
		}
	}
}

// fail wraps err with the failing frame's context, matching the
// traceback shape spec §6.4 describes (function, file, line, innermost
// first) — callers further up prepend their own frame as the error
// continues unwinding through nested run() calls is unnecessary here
// since run() only returns to the host once, at the outermost frame.
func (vm *VM) fail(f *frame, err error) error {
	if re, ok := daierr.AsRuntime(err); ok {
		return re.WithFrame(f.name(), f.filename(), f.line())
	}
	return err
}

// step executes one decoded instruction. It returns (result, true, nil)
// only when a Return/ReturnValue has unwound all the way past the frame
// that called run() (the module or top-level call), signalling run to
// stop.
func (vm *VM) step(f *frame, op opcode.Op) (object.Value, bool, error) {
	switch op {
	case opcode.Constant:
		idx := f.readU16()
		v := f.chunk.Constants[idx].(object.Value)
		return object.Value{}, false, vm.push(v)
	case opcode.True:
		return object.Value{}, false, vm.push(object.Bool(true))
	case opcode.False:
		return object.Value{}, false, vm.push(object.Bool(false))
	case opcode.Nil:
		return object.Value{}, false, vm.push(object.Nil)
	case opcode.Undefined:
		return object.Value{}, false, vm.push(object.Undefined)

	case opcode.Array:
		n := int(f.readU16())
		elems := vm.popN(n)
		return object.Value{}, false, vm.push(object.Obj(vm.track(object.NewArray(elems))))
	case opcode.Map:
		n := int(f.readU16())
		pairs := vm.popN(2 * n)
		m := object.NewMap()
		for i := 0; i < n; i++ {
			if err := m.Set(pairs[2*i], pairs[2*i+1]); err != nil {
				return object.Value{}, false, err
			}
		}
		return object.Value{}, false, vm.push(object.Obj(vm.track(m)))
	case opcode.TupleOp:
		n := int(f.readU16())
		elems := vm.popN(n)
		return object.Value{}, false, vm.push(object.Obj(vm.track(object.NewTuple(elems))))

	case opcode.Add:
		return object.Value{}, false, vm.binaryAdd()
	case opcode.Sub:
		return object.Value{}, false, vm.arith(op)
	case opcode.Mul:
		return object.Value{}, false, vm.arith(op)
	case opcode.Div:
		return object.Value{}, false, vm.arith(op)
	case opcode.Mod:
		return object.Value{}, false, vm.arith(op)
	case opcode.Binary:
		sub := opcode.BinarySubOp(f.readU8())
		return object.Value{}, false, vm.binaryBitwise(sub)
	case opcode.Minus:
		return object.Value{}, false, vm.unaryMinus()
	case opcode.Bang:
		v := vm.pop()
		return object.Value{}, false, vm.push(object.Bool(!v.Truthy()))
	case opcode.BitwiseNot:
		v := vm.pop()
		if !v.IsInt() {
			return object.Value{}, false, daierr.TypeError("~ requires int, got %s", v.TypeName())
		}
		return object.Value{}, false, vm.push(object.Int(^v.AsInt()))

	case opcode.Equal:
		b, a := vm.pop(), vm.pop()
		return object.Value{}, false, vm.push(object.Bool(object.Equal(a, b)))
	case opcode.NotEqual:
		b, a := vm.pop(), vm.pop()
		return object.Value{}, false, vm.push(object.Bool(!object.Equal(a, b)))
	case opcode.GreaterThan:
		return object.Value{}, false, vm.compare(false)
	case opcode.GreaterEqualThan:
		return object.Value{}, false, vm.compare(true)

	case opcode.AndJump:
		off := f.readU16()
		if !vm.peek(0).Truthy() {
			f.jumpForward(int(off))
		}
		return object.Value{}, false, nil
	case opcode.OrJump:
		off := f.readU16()
		if vm.peek(0).Truthy() {
			f.jumpForward(int(off))
		}
		return object.Value{}, false, nil

	case opcode.JumpIfFalse:
		off := f.readU16()
		if !vm.pop().Truthy() {
			f.jumpForward(int(off))
		}
		return object.Value{}, false, nil
	case opcode.Jump:
		off := f.readU16()
		f.jumpForward(int(off))
		return object.Value{}, false, nil
	case opcode.JumpBack:
		off := f.readU16()
		f.ip -= int(off)
		return object.Value{}, false, nil

	case opcode.IterInit:
		// The iterable was already stored into this slot by the SetLocal
		// that precedes IterInit in for-in compilation; IterInit reads it
		// back out and overwrites the slot with the resulting iterator,
		// touching nothing else on the operand stack.
		slot := f.readU8()
		v := vm.stack[f.basePtr+int(slot)]
		if !v.IsObject() {
			return object.Value{}, false, daierr.TypeError("%s is not iterable", v.TypeName())
		}
		it, err := object.IterInit(v.AsObject())
		if err != nil {
			return object.Value{}, false, err
		}
		vm.stack[f.basePtr+int(slot)] = object.Obj(vm.track(it))
		return object.Value{}, false, nil
	case opcode.IterNext:
		slot := f.readU8()
		end := f.readU16()
		it := vm.stack[f.basePtr+int(slot)]
		idx, elem, ok := object.IterNext(it.AsObject())
		if !ok {
			f.jumpForward(int(end))
			return object.Value{}, false, nil
		}
		if err := vm.push(idx); err != nil {
			return object.Value{}, false, err
		}
		return object.Value{}, false, vm.push(elem)

	case opcode.Pop:
		vm.lastPopped = vm.pop()
		return object.Value{}, false, nil
	case opcode.PopN:
		n := f.readU8()
		vm.sp -= int(n)
		return object.Value{}, false, nil

	case opcode.DefineGlobal:
		idx := f.readU16()
		f.module.Globals[idx] = vm.pop()
		return object.Value{}, false, nil
	case opcode.GetGlobal:
		idx := f.readU16()
		return object.Value{}, false, vm.push(f.module.Globals[idx])
	case opcode.SetGlobal:
		idx := f.readU16()
		f.module.Globals[idx] = vm.pop()
		return object.Value{}, false, nil
	case opcode.GetLocal:
		slot := f.readU8()
		return object.Value{}, false, vm.push(vm.stack[f.basePtr+int(slot)])
	case opcode.SetLocal:
		slot := f.readU8()
		vm.stack[f.basePtr+int(slot)] = vm.pop()
		return object.Value{}, false, nil
	case opcode.GetBuiltin:
		idx := f.readU8()
		return object.Value{}, false, vm.push(vm.builtins[idx])
	case opcode.GetFree:
		idx := f.readU8()
		return object.Value{}, false, vm.push(f.closure.Frees[idx])
	case opcode.SetFunctionDefault:
		idx := f.readU8()
		v := vm.pop()
		fnVal := vm.peek(0)
		fn, ok := fnVal.AsObject().(*object.Function)
		if !ok {
			if cl, isClosure := fnVal.AsObject().(*object.Closure); isClosure {
				fn = cl.Fn
			}
		}
		if fn != nil {
			fn.Defaults[idx] = v
		}
		return object.Value{}, false, nil
	case opcode.Closure:
		fnIdx := f.readU16()
		freeCount := int(f.readU8())
		fnObj := f.chunk.Constants[fnIdx].(object.Value).AsObject().(*object.Function)
		frees := vm.popN(freeCount)
		cl := object.NewClosure(fnObj, frees)
		return object.Value{}, false, vm.push(object.Obj(vm.track(cl)))

	case opcode.Call:
		argc := int(f.readU8())
		return vm.executeCall(argc)

	case opcode.ReturnValue:
		v := vm.pop()
		return vm.doReturn(v)
	case opcode.Return:
		return vm.doReturn(object.Nil)

	case opcode.Class:
		nameIdx := f.readU16()
		name := constString(f.chunk, nameIdx)
		cls := object.NewClass(name, nil)
		return object.Value{}, false, vm.push(object.Obj(vm.track(cls)))
	case opcode.Inherit:
		parentVal := vm.pop()
		parent, ok := parentVal.AsObject().(*object.Class)
		if !ok {
			return object.Value{}, false, daierr.TypeError("cannot inherit from non-class value")
		}
		child := vm.peek(0).AsObject().(*object.Class)
		inheritFrom(child, parent)
		return object.Value{}, false, nil
	case opcode.DefineField:
		nameIdx := f.readU16()
		isConst := f.readU8() != 0
		def := vm.pop()
		cls := vm.peek(0).AsObject().(*object.Class)
		cls.DefineInstanceField(constString(f.chunk, nameIdx), isConst, def)
		return object.Value{}, false, nil
	case opcode.DefineClassField:
		nameIdx := f.readU16()
		isConst := f.readU8() != 0
		def := vm.pop()
		cls := vm.peek(0).AsObject().(*object.Class)
		cls.DefineClassField(constString(f.chunk, nameIdx), isConst, def)
		return object.Value{}, false, nil
	case opcode.DefineMethod:
		nameIdx := f.readU16()
		methodVal := vm.pop()
		cls := vm.peek(0).AsObject().(*object.Class)
		cls.DefineInstanceMethod(constString(f.chunk, nameIdx), asClosure(methodVal))
		return object.Value{}, false, nil
	case opcode.DefineClassMethod:
		nameIdx := f.readU16()
		methodVal := vm.pop()
		cls := vm.peek(0).AsObject().(*object.Class)
		cls.DefineClassMethod(constString(f.chunk, nameIdx), asClosure(methodVal))
		return object.Value{}, false, nil
	case opcode.End:
		return object.Value{}, false, nil

	case opcode.GetProperty:
		nameIdx := f.readU16()
		recv := vm.pop()
		if !recv.IsObject() {
			return object.Value{}, false, daierr.TypeError("%s has no properties", recv.TypeName())
		}
		v, err := object.GetProperty(recv.AsObject(), constString(f.chunk, nameIdx))
		if err != nil {
			return object.Value{}, false, err
		}
		return object.Value{}, false, vm.push(v)
	case opcode.SetProperty:
		nameIdx := f.readU16()
		recv := vm.pop()
		val := vm.pop()
		if !recv.IsObject() {
			return object.Value{}, false, daierr.TypeError("%s has no settable properties", recv.TypeName())
		}
		if err := object.SetProperty(recv.AsObject(), constString(f.chunk, nameIdx), val); err != nil {
			return object.Value{}, false, err
		}
		return object.Value{}, false, nil
	case opcode.GetSelfProperty:
		nameIdx := f.readU16()
		v, err := object.GetProperty(f.receiver.AsObject(), constString(f.chunk, nameIdx))
		if err != nil {
			return object.Value{}, false, err
		}
		return object.Value{}, false, vm.push(v)
	case opcode.SetSelfProperty:
		nameIdx := f.readU16()
		val := vm.pop()
		if err := object.SetProperty(f.receiver.AsObject(), constString(f.chunk, nameIdx), val); err != nil {
			return object.Value{}, false, err
		}
		return object.Value{}, false, nil
	case opcode.GetSuperProperty:
		nameIdx := f.readU16()
		name := constString(f.chunk, nameIdx)
		if f.fn == nil || f.fn.Superclass == nil {
			return object.Value{}, false, daierr.PropertyError("super used outside of an inherited method")
		}
		m, _ := f.fn.Superclass.LookupInstanceMethod(name)
		if m == nil {
			return object.Value{}, false, daierr.PropertyError("no superclass method %q", name)
		}
		return object.Value{}, false, vm.push(object.Obj(object.NewBoundMethod(f.receiver, m)))

	case opcode.Subscript:
		idx := vm.pop()
		coll := vm.pop()
		if !coll.IsObject() {
			return object.Value{}, false, daierr.TypeError("%s is not subscriptable", coll.TypeName())
		}
		v, err := object.SubscriptGet(coll.AsObject(), idx)
		if err != nil {
			return object.Value{}, false, err
		}
		return object.Value{}, false, vm.push(v)
	case opcode.SubscriptSet:
		idx := vm.pop()
		coll := vm.pop()
		val := vm.pop()
		if !coll.IsObject() {
			return object.Value{}, false, daierr.TypeError("%s does not support subscript assignment", coll.TypeName())
		}
		if err := object.SubscriptSet(coll.AsObject(), idx, val); err != nil {
			return object.Value{}, false, err
		}
		return object.Value{}, false, nil

	case opcode.CallMethod:
		nameIdx := f.readU16()
		argc := int(f.readU8())
		return vm.executeCallMethod(constString(f.chunk, nameIdx), argc)
	case opcode.CallSelfMethod:
		nameIdx := f.readU16()
		argc := int(f.readU8())
		return vm.executeCallSelfMethod(constString(f.chunk, nameIdx), argc)
	case opcode.CallSuperMethod:
		nameIdx := f.readU16()
		argc := int(f.readU8())
		return vm.executeCallSuperMethod(constString(f.chunk, nameIdx), argc)

	default:
		return object.Value{}, false, fmt.Errorf("unimplemented opcode %s", op)
	}
}

func constString(chunk *bytecode.Chunk, idx uint16) string {
	return chunk.Constants[idx].(object.Value).AsObject().(*object.String).Bytes
}

func asClosure(v object.Value) *object.Closure {
	return v.AsObject().(*object.Closure)
}

// inheritFrom retroactively applies the parent-first instance-field
// layout copy NewClass performs at construction time, since the compiler
// always emits Class before evaluating and Inherit-ing the parent
// expression (spec §4.4 class compilation order).
func inheritFrom(child, parent *object.Class) {
	child.Parent = parent
	for _, name := range parent.InstanceFieldOrder {
		def := *parent.InstanceFields[name]
		child.InstanceFields[name] = &def
		child.InstanceFieldOrder = append(child.InstanceFieldOrder, name)
	}
}

func (f *frame) readU8() uint8 {
	v := f.chunk.ReadU8(f.ip)
	f.ip++
	return v
}

func (f *frame) readU16() uint16 {
	v := f.chunk.ReadU16(f.ip)
	f.ip += 2
	return v
}

// jumpForward applies a forward jump offset recorded relative to the
// instruction pointer just past the offset's own two bytes, matching
// compiler.patchJump's math.
func (f *frame) jumpForward(off int) {
	f.ip += off
}

// ---- arithmetic ----

func (vm *VM) binaryAdd() error {
	b, a := vm.pop(), vm.pop()
	if a.IsObject() && a.AsObject().Kind() == object.ObjString {
		bs, ok := b.AsObject().(*object.String)
		if !b.IsObject() || !ok {
			return daierr.TypeError("cannot add %s to string", b.TypeName())
		}
		as := a.AsObject().(*object.String)
		joined := object.Concat(as, bs)
		return vm.push(object.Obj(vm.intern.Intern(joined.Bytes)))
	}
	return vm.numericBinary(a, b, opcode.Add)
}

func (vm *VM) arith(op opcode.Op) error {
	b, a := vm.pop(), vm.pop()
	return vm.numericBinary(a, b, op)
}

func (vm *VM) numericBinary(a, b object.Value, op opcode.Op) error {
	if !a.IsNumber() || !b.IsNumber() {
		return daierr.TypeError("%s op %s requires numbers", a.TypeName(), b.TypeName())
	}
	if a.IsFloat() || b.IsFloat() {
		af, bf := toFloat(a), toFloat(b)
		switch op {
		case opcode.Add:
			return vm.push(object.Float(af + bf))
		case opcode.Sub:
			return vm.push(object.Float(af - bf))
		case opcode.Mul:
			return vm.push(object.Float(af * bf))
		case opcode.Div:
			if bf == 0 {
				return daierr.ZeroDivisionError("float division by zero")
			}
			return vm.push(object.Float(af / bf))
		case opcode.Mod:
			if bf == 0 {
				return daierr.ZeroDivisionError("float modulo by zero")
			}
			return vm.push(object.Float(math.Mod(af, bf)))
		}
	}
	ai, bi := a.AsInt(), b.AsInt()
	switch op {
	case opcode.Add:
		return vm.push(object.Int(ai + bi))
	case opcode.Sub:
		return vm.push(object.Int(ai - bi))
	case opcode.Mul:
		return vm.push(object.Int(ai * bi))
	case opcode.Div:
		if bi == 0 {
			return daierr.ZeroDivisionError("integer division by zero")
		}
		return vm.push(object.Int(ai / bi))
	case opcode.Mod:
		if bi == 0 {
			return daierr.ZeroDivisionError("integer modulo by zero")
		}
		return vm.push(object.Int(ai % bi))
	}
	return fmt.Errorf("vm: unreachable arithmetic opcode %s", op)
}

func toFloat(v object.Value) float64 {
	if v.IsFloat() {
		return v.AsFloat()
	}
	return float64(v.AsInt())
}

func (vm *VM) unaryMinus() error {
	v := vm.pop()
	switch {
	case v.IsInt():
		return vm.push(object.Int(-v.AsInt()))
	case v.IsFloat():
		return vm.push(object.Float(-v.AsFloat()))
	default:
		return daierr.TypeError("unary - requires a number, got %s", v.TypeName())
	}
}

func (vm *VM) binaryBitwise(sub opcode.BinarySubOp) error {
	b, a := vm.pop(), vm.pop()
	if !a.IsInt() || !b.IsInt() {
		return daierr.TypeError("bitwise operators require int operands")
	}
	ai, bi := a.AsInt(), b.AsInt()
	switch sub {
	case opcode.BinShl:
		return vm.push(object.Int(ai << uint(bi)))
	case opcode.BinShr:
		return vm.push(object.Int(ai >> uint(bi)))
	case opcode.BinAnd:
		return vm.push(object.Int(ai & bi))
	case opcode.BinOr:
		return vm.push(object.Int(ai | bi))
	case opcode.BinXor:
		return vm.push(object.Int(ai ^ bi))
	}
	return fmt.Errorf("vm: unknown binary sub-op %d", sub)
}

// compare implements GreaterThan/GreaterEqualThan; `<`/`<=` reach here
// too with operands pre-swapped by the compiler (spec §4.4).
func (vm *VM) compare(orEqual bool) error {
	b, a := vm.pop(), vm.pop()
	if !a.IsInt() || !b.IsInt() {
		return daierr.TypeError("relational operators require int operands")
	}
	ai, bi := a.AsInt(), b.AsInt()
	if orEqual {
		return vm.push(object.Bool(ai >= bi))
	}
	return vm.push(object.Bool(ai > bi))
}

// ---- calls ----

// executeCall implements the Call n convention of spec §4.5: the callee
// sits at stack depth argc below the arguments, and each callable kind
// handles the window differently.
func (vm *VM) executeCall(argc int) (object.Value, bool, error) {
	calleeIdx := vm.sp - argc - 1
	callee := vm.stack[calleeIdx]
	if !callee.IsObject() {
		return object.Value{}, false, daierr.TypeError("%s is not callable", callee.TypeName())
	}
	switch obj := callee.AsObject().(type) {
	case *object.Class:
		return vm.callClass(obj, calleeIdx, argc)
	case *object.BoundMethod:
		return vm.callBoundMethod(obj, calleeIdx, argc)
	case *object.BoundBuiltinMethod:
		return vm.callBoundBuiltin(obj, calleeIdx, argc)
	case *object.BuiltinFunction:
		return vm.callBuiltin(obj, calleeIdx, argc)
	case *object.CFunction:
		return vm.callCFunction(obj, calleeIdx, argc)
	case *object.Closure:
		return object.Value{}, false, vm.callClosure(obj, calleeIdx, argc)
	case *object.Function:
		cl := object.NewClosure(obj, nil)
		vm.track(cl)
		return object.Value{}, false, vm.callClosure(cl, calleeIdx, argc)
	default:
		return object.Value{}, false, daierr.TypeError("%s is not callable", callee.AsObject().Kind())
	}
}

// callClass is step 2 of the Call convention: allocate an Instance,
// overwrite the callee slot with it, invoke __init__ if declared, and
// install a return_callback that enforces every field got set before
// the instance is usable (spec §4.5 step 2, §8 construction invariant).
func (vm *VM) callClass(cls *object.Class, calleeIdx, argc int) (object.Value, bool, error) {
	inst := object.NewInstance(cls)
	vm.track(inst)
	receiver := object.Obj(inst)
	vm.stack[calleeIdx] = receiver

	init := cls.Init()
	if init == nil {
		vm.sp -= argc
		inst.Initialized = true
		return object.Value{}, false, vm.push(receiver)
	}

	finish := func(vm *VM, _ object.Value) (object.Value, error) {
		if !inst.AllFieldsSet() {
			return object.Value{}, daierr.New(daierr.ErrTypeError, "%s.__init__ did not set every declared field", cls.Name)
		}
		inst.Initialized = true
		return receiver, nil
	}
	if err := vm.pushFrameForClosure(init, calleeIdx, argc, receiver, finish); err != nil {
		return object.Value{}, false, err
	}
	return object.Value{}, false, nil
}

func (vm *VM) callBoundMethod(bm *object.BoundMethod, calleeIdx, argc int) (object.Value, bool, error) {
	vm.stack[calleeIdx] = bm.Receiver
	return object.Value{}, false, vm.pushFrameForClosure(bm.Method, calleeIdx, argc, bm.Receiver, nil)
}

// callBoundBuiltin invokes a host-implemented Array/String/Map method with
// its receiver, the built-in analogue of callBoundMethod.
func (vm *VM) callBoundBuiltin(bb *object.BoundBuiltinMethod, calleeIdx, argc int) (object.Value, bool, error) {
	args := append([]object.Value{}, vm.stack[calleeIdx+1:calleeIdx+1+argc]...)
	result, err := bb.Fn.Fn(bb.Receiver, args)
	vm.sp = calleeIdx
	if err != nil {
		return object.Value{}, false, err
	}
	return object.Value{}, false, vm.push(result)
}

func (vm *VM) callBuiltin(bf *object.BuiltinFunction, calleeIdx, argc int) (object.Value, bool, error) {
	args := append([]object.Value{}, vm.stack[calleeIdx+1:calleeIdx+1+argc]...)
	result, err := bf.Fn(object.Nil, args)
	vm.sp = calleeIdx
	if err != nil {
		return object.Value{}, false, err
	}
	return object.Value{}, false, vm.push(result)
}

func (vm *VM) callCFunction(cf *object.CFunction, calleeIdx, argc int) (object.Value, bool, error) {
	args := append([]object.Value{}, vm.stack[calleeIdx+1:calleeIdx+1+argc]...)
	result, err := cf.Trampoline(args)
	vm.sp = calleeIdx
	if err != nil {
		return object.Value{}, false, err
	}
	return object.Value{}, false, vm.push(result)
}

func (vm *VM) callClosure(cl *object.Closure, calleeIdx, argc int) error {
	return vm.pushFrameForClosure(cl, calleeIdx, argc, object.Nil, nil)
}

// pushFrameForClosure implements step 6 of the Call convention: arity
// check, default-filling, and pushing a new frame whose locals window
// starts right after the callee slot, or AT the callee slot when the
// closure is an instance method (fn.HasSelf), since the callee slot
// already holds the receiver by the time a Class/BoundMethod call
// reaches here and compileFunctionLiteral reserved local 0 for it.
func (vm *VM) pushFrameForClosure(cl *object.Closure, calleeIdx, argc int, receiver object.Value, cb func(*VM, object.Value) (object.Value, error)) error {
	fn := cl.Fn

	arity := fn.Arity()
	if argc > arity {
		return daierr.New(daierr.ErrTypeError, "%s expects at most %d arguments, got %d", fn.Name, arity, argc)
	}
	for i := argc; i < arity; i++ {
		if !fn.Params[i].HasDefault {
			return daierr.New(daierr.ErrTypeError, "%s missing required argument %q", fn.Name, fn.Params[i].Name)
		}
		if err := vm.push(fn.Defaults[i]); err != nil {
			return err
		}
	}

	basePtr := calleeIdx + 1
	if fn.HasSelf {
		basePtr = calleeIdx
	}

	needed := fn.MaxLocals - (vm.sp - basePtr)
	for i := 0; i < needed; i++ {
		if err := vm.push(object.Nil); err != nil {
			return err
		}
	}

	return vm.pushFrame(frame{
		closure:        cl,
		fn:             fn,
		module:         fn.Module,
		chunk:          fn.Chunk,
		basePtr:        basePtr,
		receiver:       receiver,
		hasSelf:        fn.HasSelf,
		returnCallback: cb,
	})
}

// doReturn pops the current frame, writes its result into the caller's
// stack window (overwriting the callee slot and discarding the arg/local
// window above it), runs any pending return_callback, and resumes the
// caller. When the popped frame was the outermost one run() pushed, it
// reports done=true with the final value instead.
func (vm *VM) doReturn(result object.Value) (object.Value, bool, error) {
	finished := vm.popFrame()
	vm.sp = finished.calleeSlot()

	if finished.returnCallback != nil {
		var err error
		result, err = finished.returnCallback(vm, result)
		if err != nil {
			return object.Value{}, false, err
		}
	}

	if vm.frameCount == 0 {
		return result, true, nil
	}
	if err := vm.push(result); err != nil {
		return object.Value{}, false, err
	}
	return result, true, nil
}

// ---- method dispatch ----

func (vm *VM) executeCallMethod(name string, argc int) (object.Value, bool, error) {
	calleeIdx := vm.sp - argc - 1
	recv := vm.stack[calleeIdx]
	if !recv.IsObject() {
		return object.Value{}, false, daierr.TypeError("%s has no methods", recv.TypeName())
	}
	bound, ok := object.GetMethod(recv.AsObject(), name)
	if !ok {
		return object.Value{}, false, daierr.PropertyError("no method %q on %s", name, recv.AsObject().Kind())
	}
	vm.stack[calleeIdx] = bound
	return vm.executeCall(argc)
}

func (vm *VM) executeCallSelfMethod(name string, argc int) (object.Value, bool, error) {
	f := vm.curFrame()
	if !f.receiver.IsObject() {
		return object.Value{}, false, daierr.PropertyError("self used outside of a method")
	}
	bound, ok := object.GetMethod(f.receiver.AsObject(), name)
	if !ok {
		return object.Value{}, false, daierr.PropertyError("no method %q on %s", name, f.receiver.AsObject().Kind())
	}
	if err := vm.push(bound); err != nil {
		return object.Value{}, false, err
	}
	// shift args up past the newly pushed callee slot
	calleeIdx := vm.sp - argc - 1
	vm.shiftCalleeAboveArgs(calleeIdx, argc)
	return vm.executeCall(argc)
}

func (vm *VM) executeCallSuperMethod(name string, argc int) (object.Value, bool, error) {
	f := vm.curFrame()
	if f.fn == nil || f.fn.Superclass == nil {
		return object.Value{}, false, daierr.PropertyError("super used outside of an inherited method")
	}
	m, _ := f.fn.Superclass.LookupInstanceMethod(name)
	if m == nil {
		return object.Value{}, false, daierr.PropertyError("no superclass method %q", name)
	}
	bound := object.Obj(object.NewBoundMethod(f.receiver, m))
	if err := vm.push(bound); err != nil {
		return object.Value{}, false, err
	}
	calleeIdx := vm.sp - argc - 1
	vm.shiftCalleeAboveArgs(calleeIdx, argc)
	return vm.executeCall(argc)
}

// shiftCalleeAboveArgs moves the just-pushed callee value (currently on
// top of the stack) down below the already-pushed argc arguments, so the
// Call n window convention (callee at top-n-1) holds for CallSelfMethod/
// CallSuperMethod, whose args were compiled before the callee is known.
func (vm *VM) shiftCalleeAboveArgs(calleeIdx, argc int) {
	callee := vm.pop()
	for i := vm.sp - 1; i >= calleeIdx; i-- {
		vm.stack[i+1] = vm.stack[i]
	}
	vm.stack[calleeIdx] = callee
	vm.sp++
}
