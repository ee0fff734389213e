package object

import (
	"fmt"

	"github.com/daivm/dai/bytecode"
)

// Param is one declared parameter: its name and whether it declares a
// default. The default value itself lives in Function.Defaults, stored
// there by SetFunctionDefault when the function is defined.
type Param struct {
	Name       string
	HasDefault bool
}

// Function is a compiled callable: arity, local/stack footprint, its own
// chunk, and bookkeeping used for error messages and `super` resolution.
type Function struct {
	Header
	Name          string
	Filename      string
	Params        []Param
	Defaults      []Value // Defaults[i] valid iff Params[i].HasDefault
	MaxLocals     int
	MaxStackDepth int
	Chunk         *bytecode.Chunk
	Superclass    *Class // set when bound as a method, for super.name resolution
	Module        *Module

	// HasSelf is true for instance methods, which reserve local slot 0
	// for the implicit receiver (spec §4.4 class compilation); it tells
	// the VM's call convention whether the callee slot doubles as local
	// 0 or whether locals start one slot above it.
	HasSelf bool
}

func NewFunction(name, filename string) *Function {
	return &Function{
		Header:   Header{kind: ObjFunction},
		Name:     name,
		Filename: filename,
		Chunk:    bytecode.NewChunk(),
	}
}

func (f *Function) Arity() int { return len(f.Params) }

func (f *Function) Ops() *Operations { return functionOps }

var functionOps = &Operations{
	String: func(self HeapObject, depth int) string {
		f := self.(*Function)
		if f.Name == "" {
			return "<function>"
		}
		return fmt.Sprintf("<function %s>", f.Name)
	},
}

// Closure pairs a Function with its captured free-variable values, copied
// in by value at Closure-instruction time (spec §8 closure-capture
// property).
type Closure struct {
	Header
	Fn    *Function
	Frees []Value
}

func NewClosure(fn *Function, frees []Value) *Closure {
	return &Closure{Header: Header{kind: ObjClosure}, Fn: fn, Frees: frees}
}

func (c *Closure) Ops() *Operations { return closureOps }

var closureOps = &Operations{
	String: func(self HeapObject, depth int) string {
		c := self.(*Closure)
		if c.Fn.Name == "" {
			return "<closure>"
		}
		return fmt.Sprintf("<closure %s>", c.Fn.Name)
	},
}

// BoundMethod pairs a receiver with the closure invoked for it.
type BoundMethod struct {
	Header
	Receiver Value
	Method   *Closure
}

func NewBoundMethod(receiver Value, method *Closure) *BoundMethod {
	return &BoundMethod{Header: Header{kind: ObjBoundMethod}, Receiver: receiver, Method: method}
}

func (b *BoundMethod) Ops() *Operations { return boundMethodOps }

var boundMethodOps = &Operations{
	String: func(self HeapObject, depth int) string {
		b := self.(*BoundMethod)
		return fmt.Sprintf("<bound method %s>", b.Method.Fn.Name)
	},
}

// BuiltinFunction is a host-implemented callable exposed to scripts, such
// as print/len/range (spec §4.6 supplemented built-in surface).
type BuiltinFunction struct {
	Header
	Name string
	Fn   func(receiver Value, args []Value) (Value, error)
}

func NewBuiltinFunction(name string, fn func(Value, []Value) (Value, error)) *BuiltinFunction {
	return &BuiltinFunction{Header: Header{kind: ObjBuiltinFunction}, Name: name, Fn: fn}
}

func (b *BuiltinFunction) Ops() *Operations { return builtinFunctionOps }

var builtinFunctionOps = &Operations{
	String: func(self HeapObject, depth int) string {
		return fmt.Sprintf("<builtin %s>", self.(*BuiltinFunction).Name)
	},
}

// BoundBuiltinMethod pairs a receiver with a host-implemented method, the
// built-in analogue of BoundMethod used for Array/String/Map methods
// (spec §4.6 supplemented built-in surface).
type BoundBuiltinMethod struct {
	Header
	Receiver Value
	Fn       *BuiltinFunction
}

func NewBoundBuiltinMethod(receiver Value, fn *BuiltinFunction) *BoundBuiltinMethod {
	return &BoundBuiltinMethod{Header: Header{kind: ObjBoundBuiltinMethod}, Receiver: receiver, Fn: fn}
}

func (b *BoundBuiltinMethod) Ops() *Operations { return boundBuiltinMethodOps }

var boundBuiltinMethodOps = &Operations{
	String: func(self HeapObject, depth int) string {
		return fmt.Sprintf("<bound builtin %s>", self.(*BoundBuiltinMethod).Fn.Name)
	},
}

// CFunction is a host function registered through the embedding API
// (spec §6.1 register_function); it additionally stores the declared
// arity and a trampoline that unpacks stack args into the host's calling
// convention.
type CFunction struct {
	Header
	Name      string
	Arity     int
	Trampoline func(args []Value) (Value, error)
}

func NewCFunction(name string, arity int, trampoline func([]Value) (Value, error)) *CFunction {
	return &CFunction{Header: Header{kind: ObjCFunction}, Name: name, Arity: arity, Trampoline: trampoline}
}

func (c *CFunction) Ops() *Operations { return cFunctionOps }

var cFunctionOps = &Operations{
	String: func(self HeapObject, depth int) string {
		return fmt.Sprintf("<native %s>", self.(*CFunction).Name)
	},
}
