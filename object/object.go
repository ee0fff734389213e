package object

import "github.com/daivm/dai/daierr"

// ObjectKind identifies the concrete shape of a heap object.
type ObjectKind byte

const (
	ObjString ObjectKind = iota
	ObjFunction
	ObjClosure
	ObjBuiltinFunction
	ObjCFunction
	ObjBoundMethod
	ObjBoundBuiltinMethod
	ObjClass
	ObjInstance
	ObjArray
	ObjArrayIterator
	ObjMap
	ObjMapIterator
	ObjRangeIterator
	ObjTuple
	ObjModule
	ObjError
	ObjStruct
)

var objectKindNames = map[ObjectKind]string{
	ObjString: "string", ObjFunction: "function", ObjClosure: "closure",
	ObjBuiltinFunction: "builtin_function", ObjCFunction: "c_function",
	ObjBoundMethod: "bound_method", ObjBoundBuiltinMethod: "bound_builtin_method",
	ObjClass: "class", ObjInstance: "instance",
	ObjArray: "array", ObjArrayIterator: "array_iterator",
	ObjMap: "map", ObjMapIterator: "map_iterator",
	ObjRangeIterator: "range_iterator", ObjTuple: "tuple",
	ObjModule: "module", ObjError: "error", ObjStruct: "struct",
}

func (k ObjectKind) String() string {
	if n, ok := objectKindNames[k]; ok {
		return n
	}
	return "object"
}

// Header is embedded by every concrete heap object kind; it carries the
// GC bookkeeping (mark flag, intrusive allocation-list link) common to all
// of them.
type Header struct {
	kind    ObjectKind
	marked  bool
	next    HeapObject
	tracked bool
}

func (h *Header) Kind() ObjectKind  { return h.kind }
func (h *Header) Marked() bool      { return h.marked }
func (h *Header) SetMarked(m bool)  { h.marked = m }
func (h *Header) Next() HeapObject  { return h.next }
func (h *Header) SetNext(n HeapObject) { h.next = n }

// Tracked reports whether this object has already been linked into a
// Collector's sweep list; Collector.Track uses this to stay idempotent
// when the same object (e.g. a string returned again from an intern
// table cache hit) is handed to it more than once.
func (h *Header) Tracked() bool     { return h.tracked }
func (h *Header) SetTracked(t bool) { h.tracked = t }

// HeapObject is implemented by every concrete heap object. Operation
// dispatch goes through Ops(), never a type switch, per the design note
// to avoid dynamic downcasts: each constructor wires up an Operations
// table suited to its kind.
type HeapObject interface {
	Kind() ObjectKind
	Marked() bool
	SetMarked(bool)
	Next() HeapObject
	SetNext(HeapObject)
	Tracked() bool
	SetTracked(bool)
	Ops() *Operations
}

// Operations is the per-kind vtable the spec calls the Operation vtable.
// Any slot may be nil; callers must raise a typed error rather than panic
// when a required slot is absent (spec §3.2).
type Operations struct {
	GetProperty  func(self HeapObject, name string) (Value, error)
	SetProperty  func(self HeapObject, name string, v Value) error
	SubscriptGet func(self HeapObject, index Value) (Value, error)
	SubscriptSet func(self HeapObject, index Value, v Value) error
	String       func(self HeapObject, depth int) string
	Equal        func(a, b HeapObject, depth int) int // 1 equal, 0 not equal, -1 depth exhausted
	Hash         func(self HeapObject) (uint64, error)
	IterInit     func(self HeapObject) (HeapObject, error)
	IterNext     func(iter HeapObject) (index Value, elem Value, ok bool)
	GetMethod    func(self HeapObject, name string) (Value, bool)
}

// GetProperty dispatches self's GetProperty op, or raises PropertyError
// when the kind doesn't support property access at all.
func GetProperty(self HeapObject, name string) (Value, error) {
	ops := self.Ops()
	if ops == nil || ops.GetProperty == nil {
		return Value{}, daierr.PropertyError("%s has no property %q", self.Kind(), name)
	}
	return ops.GetProperty(self, name)
}

// SetProperty dispatches self's SetProperty op.
func SetProperty(self HeapObject, name string, v Value) error {
	ops := self.Ops()
	if ops == nil || ops.SetProperty == nil {
		return daierr.PropertyError("%s has no settable property %q", self.Kind(), name)
	}
	return ops.SetProperty(self, name, v)
}

// SubscriptGet dispatches self's SubscriptGet op.
func SubscriptGet(self HeapObject, index Value) (Value, error) {
	ops := self.Ops()
	if ops == nil || ops.SubscriptGet == nil {
		return Value{}, daierr.TypeError("%s is not subscriptable", self.Kind())
	}
	return ops.SubscriptGet(self, index)
}

// SubscriptSet dispatches self's SubscriptSet op.
func SubscriptSet(self HeapObject, index Value, v Value) error {
	ops := self.Ops()
	if ops == nil || ops.SubscriptSet == nil {
		return daierr.TypeError("%s does not support subscript assignment", self.Kind())
	}
	return ops.SubscriptSet(self, index, v)
}

// Stringify dispatches self's String op, falling back to "<kind>" when
// absent.
func Stringify(self HeapObject, depth int) string {
	if self == nil {
		return "nil"
	}
	ops := self.Ops()
	if ops == nil || ops.String == nil {
		return "<" + self.Kind().String() + ">"
	}
	if depth <= 0 {
		return cycleMarker(self.Kind())
	}
	return ops.String(self, depth)
}

func cycleMarker(k ObjectKind) string {
	switch k {
	case ObjMap:
		return "{...}"
	case ObjTuple:
		return "(...)"
	default:
		return "[...]"
	}
}

// EqualObjects dispatches a's Equal op against b; differing kinds are
// never equal without needing the op at all.
func EqualObjects(a, b HeapObject, depth int) int {
	if a == nil || b == nil {
		if a == b {
			return 1
		}
		return 0
	}
	if a == b {
		return 1
	}
	if a.Kind() != b.Kind() {
		return 0
	}
	if depth <= 0 {
		return -1
	}
	ops := a.Ops()
	if ops == nil || ops.Equal == nil {
		return 0
	}
	return ops.Equal(a, b, depth)
}

// Hash dispatches self's Hash op; used as map keys, which requires the
// value's kind to support hashing (arrays and maps do not; tuples do).
func Hash(self HeapObject) (uint64, error) {
	ops := self.Ops()
	if ops == nil || ops.Hash == nil {
		return 0, daierr.TypeError("%s is not hashable", self.Kind())
	}
	return ops.Hash(self)
}

// IterInit dispatches self's IterInit op, producing an iterator object.
func IterInit(self HeapObject) (HeapObject, error) {
	ops := self.Ops()
	if ops == nil || ops.IterInit == nil {
		return nil, daierr.TypeError("%s is not iterable", self.Kind())
	}
	return ops.IterInit(self)
}

// IterNext advances iter, returning (index, element, true) or (_, _,
// false) once exhausted.
func IterNext(iter HeapObject) (Value, Value, bool) {
	ops := iter.Ops()
	if ops == nil || ops.IterNext == nil {
		return Value{}, Value{}, false
	}
	return ops.IterNext(iter)
}

// GetMethod looks up a method by name on self, delegating to its GetMethod
// op (classes, instances, and the built-in methods of strings, arrays and
// maps); returns ok=false when unsupported or missing.
func GetMethod(self HeapObject, name string) (Value, bool) {
	ops := self.Ops()
	if ops == nil || ops.GetMethod == nil {
		return Value{}, false
	}
	return ops.GetMethod(self, name)
}
