// Package object implements the dai runtime value model: the tagged-union
// Value type and the heap object kinds it can reference, each dispatching
// through a per-kind Operations vtable rather than type-switch downcasts.
package object

import "fmt"

// Kind discriminates a Value's storage without needing a type assertion.
type Kind byte

const (
	KindUndefined Kind = iota // internal sentinel, never user-visible
	KindNil
	KindBool
	KindInt
	KindFloat
	KindObject
)

// Value is the uniform runtime value: nil, bool, int64, float64, or a
// reference to a heap object. Integer overflow wraps (Go's default int64
// arithmetic already does this).
type Value struct {
	Kind Kind
	b    bool
	i    int64
	f    float64
	obj  HeapObject
}

// Undefined is the internal sentinel value used for unset array/map slots
// and exhausted iterators. Scripts never observe it directly.
var Undefined = Value{Kind: KindUndefined}

// Nil is the script-visible absence-of-value.
var Nil = Value{Kind: KindNil}

func Bool(b bool) Value   { return Value{Kind: KindBool, b: b} }
func Int(i int64) Value   { return Value{Kind: KindInt, i: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, f: f} }
func Obj(o HeapObject) Value {
	if o == nil {
		return Nil
	}
	return Value{Kind: KindObject, obj: o}
}

func (v Value) AsBool() bool       { return v.b }
func (v Value) AsInt() int64       { return v.i }
func (v Value) AsFloat() float64   { return v.f }
func (v Value) AsObject() HeapObject { return v.obj }

func (v Value) IsUndefined() bool { return v.Kind == KindUndefined }
func (v Value) IsNil() bool       { return v.Kind == KindNil }
func (v Value) IsInt() bool       { return v.Kind == KindInt }
func (v Value) IsFloat() bool     { return v.Kind == KindFloat }
func (v Value) IsNumber() bool    { return v.Kind == KindInt || v.Kind == KindFloat }
func (v Value) IsObject() bool    { return v.Kind == KindObject }

// ObjectKindIs reports whether v holds a heap object of the given kind.
func (v Value) ObjectKindIs(k ObjectKind) bool {
	return v.Kind == KindObject && v.obj != nil && v.obj.Kind() == k
}

// Truthy implements dai's truthiness rule: nil is false, bool is itself,
// int is true iff nonzero, everything else (float, objects) is true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNil, KindUndefined:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	default:
		return true
	}
}

// TypeName returns the user-facing type name used in error messages.
func (v Value) TypeName() string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindObject:
		return v.obj.Kind().String()
	default:
		return "unknown"
	}
}

// String renders v for display, delegating to the heap object's String op
// for KindObject (cycle-safe via the depth budget threaded through).
func (v Value) String() string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindObject:
		return Stringify(v.obj, defaultDepthBudget)
	default:
		return "?"
	}
}

// defaultDepthBudget bounds recursive string/equal traversal so cyclic
// containers terminate (spec §3.3, §8).
const defaultDepthBudget = 64

// floatEqualTolerance is the fixed tolerance used for float == float,
// intentionally not tightened (spec §9 open question c).
const floatEqualTolerance = 1e-10

// Equal implements Value equality: numeric kinds compare exactly except
// float-float which uses a fixed tolerance; cross-kind numeric comparisons
// are never equal; object equality delegates to the object's Equal op.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindUndefined, KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		diff := a.f - b.f
		if diff < 0 {
			diff = -diff
		}
		return diff <= floatEqualTolerance
	case KindObject:
		tri := EqualObjects(a.obj, b.obj, defaultDepthBudget)
		return tri == 1
	default:
		return false
	}
}
