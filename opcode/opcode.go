// Package opcode defines the dai bytecode instruction set: one byte per
// opcode, followed by zero or more big-endian operand bytes at a width
// fixed per opcode.
package opcode

import "fmt"

// Op identifies one bytecode instruction.
type Op byte

// Constants & literals.
const (
	Constant Op = iota // u16 constant-pool index -> push
	True               // push true
	False              // push false
	Nil                // push nil
	Undefined          // push undefined sentinel
	Array              // u16 N: pop N, push array
	Map                // u16 N: pop 2N, push map
)

// Arithmetic & logic.
const (
	Add Op = iota + 16
	Sub
	Mul
	Div
	Mod
	Binary // u8 sub-op selecting shl/shr/and/or/xor
	Subscript
	SubscriptSet
	Equal
	NotEqual
	GreaterThan
	GreaterEqualThan
	Not
	AndJump // u16 forward offset, short-circuit and
	OrJump  // u16 forward offset, short-circuit or
	Minus   // unary -
	Bang    // unary !
	BitwiseNot
)

// BinarySubOp selects the concrete operation for a Binary instruction.
type BinarySubOp byte

const (
	BinShl BinarySubOp = iota
	BinShr
	BinAnd
	BinOr
	BinXor
)

// Control flow.
const (
	JumpIfFalse Op = iota + 48
	Jump
	JumpBack
	IterInit // u8 iterator slot
	IterNext // u8 slot, u16 forward offset to loop end
)

// Stack bookkeeping.
const (
	Pop Op = iota + 64
	PopN // u8 count
)

// Globals, locals, frees, builtins.
const (
	DefineGlobal Op = iota + 72
	GetGlobal
	SetGlobal
	GetLocal // u8
	SetLocal // u8
	GetBuiltin
	SetFunctionDefault // u8 param index
	Closure            // u16 function-constant index, u8 free count
	GetFree            // u8
)

// Calls & returns.
const (
	Call Op = iota + 96 // u8 argc
	ReturnValue
	Return // implicit nil
)

// Classes & OOP.
const (
	Class Op = iota + 112
	DefineField       // u16 name index, u8 is_const
	DefineMethod      // u16
	DefineClassField  // u16, u8
	DefineClassMethod // u16
	GetProperty       // u16
	SetProperty       // u16
	GetSelfProperty   // u16
	SetSelfProperty   // u16
	GetSuperProperty  // u16
	Inherit
	CallMethod     // u16 name, u8 argc
	CallSelfMethod // u16, u8
	CallSuperMethod // u16, u8
	End
)

// Tuple is the one opcode added beyond the distilled instruction set, to
// compile `(a, b, c)` tuple literals without reusing the Array encoding
// (arrays and tuples are distinct heap kinds with distinct operations).
const (
	TupleOp Op = iota + 136 // u16 N: pop N, push tuple
)

var names = map[Op]string{
	Constant: "Constant", True: "True", False: "False", Nil: "Nil", Undefined: "Undefined",
	Array: "Array", Map: "Map",
	Add: "Add", Sub: "Sub", Mul: "Mul", Div: "Div", Mod: "Mod", Binary: "Binary",
	Subscript: "Subscript", SubscriptSet: "SubscriptSet",
	Equal: "Equal", NotEqual: "NotEqual", GreaterThan: "GreaterThan", GreaterEqualThan: "GreaterEqualThan",
	Not: "Not", AndJump: "AndJump", OrJump: "OrJump", Minus: "Minus", Bang: "Bang", BitwiseNot: "BitwiseNot",
	JumpIfFalse: "JumpIfFalse", Jump: "Jump", JumpBack: "JumpBack", IterInit: "IterInit", IterNext: "IterNext",
	Pop: "Pop", PopN: "PopN",
	DefineGlobal: "DefineGlobal", GetGlobal: "GetGlobal", SetGlobal: "SetGlobal",
	GetLocal: "GetLocal", SetLocal: "SetLocal", GetBuiltin: "GetBuiltin",
	SetFunctionDefault: "SetFunctionDefault", Closure: "Closure", GetFree: "GetFree",
	Call: "Call", ReturnValue: "ReturnValue", Return: "Return",
	Class: "Class", DefineField: "DefineField", DefineMethod: "DefineMethod",
	DefineClassField: "DefineClassField", DefineClassMethod: "DefineClassMethod",
	GetProperty: "GetProperty", SetProperty: "SetProperty",
	GetSelfProperty: "GetSelfProperty", SetSelfProperty: "SetSelfProperty", GetSuperProperty: "GetSuperProperty",
	Inherit: "Inherit", CallMethod: "CallMethod", CallSelfMethod: "CallSelfMethod", CallSuperMethod: "CallSuperMethod",
	End:     "End",
	TupleOp: "Tuple",
}

func (op Op) String() string {
	if n, ok := names[op]; ok {
		return n
	}
	return fmt.Sprintf("Op(%d)", byte(op))
}

// OperandWidths returns the byte width of each operand this opcode reads,
// in order. An empty slice means the opcode takes no operands.
func OperandWidths(op Op) []int {
	switch op {
	case Closure, DefineField, DefineClassField, CallMethod, CallSelfMethod, CallSuperMethod:
		return []int{2, 1}
	case Constant, Array, Map, AndJump, OrJump, JumpIfFalse, Jump, JumpBack,
		DefineGlobal, GetGlobal, SetGlobal, Class, DefineMethod, DefineClassMethod,
		GetProperty, SetProperty, GetSelfProperty, SetSelfProperty, GetSuperProperty, TupleOp:
		return []int{2}
	case Binary, GetLocal, SetLocal, GetBuiltin, SetFunctionDefault, GetFree, Call, PopN, IterInit:
		return []int{1}
	case IterNext:
		return []int{1, 2}
	default:
		return nil
	}
}

// Width returns the total instruction width (opcode byte plus operands).
func Width(op Op) int {
	total := 1
	for _, w := range OperandWidths(op) {
		total += w
	}
	return total
}
