package object

import (
	"fmt"
	"sort"

	"github.com/daivm/dai/daierr"
)

// Array is dai's growable element vector. Growth doubles capacity when
// full; shrink halves capacity once length drops to a quarter of it
// (spec §3.2).
type Array struct {
	Header
	elems []Value
}

func NewArray(elems []Value) *Array {
	if elems == nil {
		elems = []Value{}
	}
	return &Array{Header: Header{kind: ObjArray}, elems: elems}
}

func (a *Array) Len() int { return len(a.elems) }

func (a *Array) At(i int) Value { return a.elems[i] }

func (a *Array) Elements() []Value { return a.elems }

func (a *Array) Append(v Value) {
	a.elems = append(a.elems, v)
}

func (a *Array) Set(i int, v Value) { a.elems[i] = v }

// Pop removes and returns the last element.
func (a *Array) Pop() (Value, error) {
	if len(a.elems) == 0 {
		return Value{}, daierr.IndexError("pop from empty array")
	}
	v := a.elems[len(a.elems)-1]
	a.elems = a.elems[:len(a.elems)-1]
	a.Shrink()
	return v, nil
}

// InsertAt inserts v at position i, shifting later elements up by one.
func (a *Array) InsertAt(i int, v Value) error {
	if i < 0 || i > len(a.elems) {
		return indexOutOfRange(int64(i), len(a.elems))
	}
	a.elems = append(a.elems, Value{})
	copy(a.elems[i+1:], a.elems[i:])
	a.elems[i] = v
	return nil
}

// RemoveAt removes and returns the element at position i.
func (a *Array) RemoveAt(i int) (Value, error) {
	if i < 0 || i >= len(a.elems) {
		return Value{}, indexOutOfRange(int64(i), len(a.elems))
	}
	v := a.elems[i]
	a.elems = append(a.elems[:i], a.elems[i+1:]...)
	a.Shrink()
	return v, nil
}

// Clear empties the array in place.
func (a *Array) Clear() { a.elems = a.elems[:0] }

// Contains reports whether v is equal to any element, using the same
// depth-bounded equality containers use for their own Equal op.
func (a *Array) Contains(v Value) bool {
	for _, e := range a.elems {
		if valueEqualDepth(e, v, defaultDepthBudget) {
			return true
		}
	}
	return false
}

// Sort orders elements in place by dai's comparable-value ordering: ints
// and floats compare numerically against each other, strings compare
// byte-wise; mixing either family is a TypeError, since there is no
// sensible total order across them.
func (a *Array) Sort() error {
	var sortErr error
	sort.SliceStable(a.elems, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		less, err := lessValue(a.elems[i], a.elems[j])
		if err != nil {
			sortErr = err
			return false
		}
		return less
	})
	return sortErr
}

func lessValue(x, y Value) (bool, error) {
	switch {
	case x.IsNumber() && y.IsNumber():
		return toFloatValue(x) < toFloatValue(y), nil
	case x.Kind == KindObject && x.obj.Kind() == ObjString &&
		y.Kind == KindObject && y.obj.Kind() == ObjString:
		return x.obj.(*String).Bytes < y.obj.(*String).Bytes, nil
	default:
		return false, daierr.TypeError("cannot compare %s and %s", x.TypeName(), y.TypeName())
	}
}

func toFloatValue(v Value) float64 {
	if v.IsFloat() {
		return v.AsFloat()
	}
	return float64(v.AsInt())
}

// Shrink halves the underlying slice capacity once length falls to a
// quarter of it or below, per the amortized growth/shrink invariant.
func (a *Array) Shrink() {
	if cap(a.elems) > 0 && len(a.elems) <= cap(a.elems)/4 {
		shrunk := make([]Value, len(a.elems), cap(a.elems)/2+1)
		copy(shrunk, a.elems)
		a.elems = shrunk
	}
}

func (a *Array) Ops() *Operations { return arrayOps }

var arrayOps = &Operations{
	SubscriptGet: func(self HeapObject, index Value) (Value, error) {
		a := self.(*Array)
		if !index.IsInt() {
			return Value{}, indexTypeError()
		}
		i := index.AsInt()
		if i < 0 || i >= int64(len(a.elems)) {
			return Value{}, indexOutOfRange(i, len(a.elems))
		}
		return a.elems[i], nil
	},
	SubscriptSet: func(self HeapObject, index Value, v Value) error {
		a := self.(*Array)
		if !index.IsInt() {
			return indexTypeError()
		}
		i := index.AsInt()
		if i < 0 || i >= int64(len(a.elems)) {
			return indexOutOfRange(i, len(a.elems))
		}
		a.elems[i] = v
		return nil
	},
	String: func(self HeapObject, depth int) string {
		a := self.(*Array)
		parts := make([]string, len(a.elems))
		for i, e := range a.elems {
			parts[i] = elementString(e, depth-1)
		}
		return "[" + joinStrings(parts, ", ") + "]"
	},
	Equal: func(x, y HeapObject, depth int) int {
		a, b := x.(*Array), y.(*Array)
		if len(a.elems) != len(b.elems) {
			return 0
		}
		for i := range a.elems {
			if !valueEqualDepth(a.elems[i], b.elems[i], depth-1) {
				return 0
			}
		}
		return 1
	},
	IterInit: func(self HeapObject) (HeapObject, error) {
		return NewArrayIterator(self.(*Array)), nil
	},
	GetMethod: func(self HeapObject, name string) (Value, bool) {
		impl, ok := arrayMethods[name]
		if !ok {
			return Value{}, false
		}
		fn := NewBuiltinFunction(name, func(recv Value, args []Value) (Value, error) {
			return impl(recv.AsObject().(*Array), args)
		})
		return Obj(NewBoundBuiltinMethod(Obj(self), fn)), true
	},
}

// arrayMethods backs the Array built-in method set (append/pop/length/
// insert/remove/sort/contains/clear), dispatched through GetMethod the
// same way Class/Instance dispatch user-defined methods.
var arrayMethods = map[string]func(a *Array, args []Value) (Value, error){
	"append": func(a *Array, args []Value) (Value, error) {
		if len(args) != 1 {
			return Value{}, daierr.TypeError("append expects 1 argument, got %d", len(args))
		}
		a.Append(args[0])
		return Nil, nil
	},
	"pop": func(a *Array, args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, daierr.TypeError("pop expects 0 arguments, got %d", len(args))
		}
		return a.Pop()
	},
	"length": func(a *Array, args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, daierr.TypeError("length expects 0 arguments, got %d", len(args))
		}
		return Int(int64(a.Len())), nil
	},
	"insert": func(a *Array, args []Value) (Value, error) {
		if len(args) != 2 {
			return Value{}, daierr.TypeError("insert expects 2 arguments, got %d", len(args))
		}
		if !args[0].IsInt() {
			return Value{}, indexTypeError()
		}
		if err := a.InsertAt(int(args[0].AsInt()), args[1]); err != nil {
			return Value{}, err
		}
		return Nil, nil
	},
	"remove": func(a *Array, args []Value) (Value, error) {
		if len(args) != 1 {
			return Value{}, daierr.TypeError("remove expects 1 argument, got %d", len(args))
		}
		if !args[0].IsInt() {
			return Value{}, indexTypeError()
		}
		return a.RemoveAt(int(args[0].AsInt()))
	},
	"sort": func(a *Array, args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, daierr.TypeError("sort expects 0 arguments, got %d", len(args))
		}
		return Nil, a.Sort()
	},
	"contains": func(a *Array, args []Value) (Value, error) {
		if len(args) != 1 {
			return Value{}, daierr.TypeError("contains expects 1 argument, got %d", len(args))
		}
		return Bool(a.Contains(args[0])), nil
	},
	"clear": func(a *Array, args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, daierr.TypeError("clear expects 0 arguments, got %d", len(args))
		}
		a.Clear()
		return Nil, nil
	},
}

// elementString renders a contained value, routing through the depth
// budget so nested containers terminate on cycles.
func elementString(v Value, depth int) string {
	if v.Kind == KindObject {
		return Stringify(v.obj, depth)
	}
	return v.String()
}

// valueEqualDepth is Equal but depth-bounded, used by container Equal ops
// so a cyclic container's equality check terminates (spec §3.3, §8).
func valueEqualDepth(a, b Value, depth int) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == KindObject {
		return EqualObjects(a.obj, b.obj, depth) == 1
	}
	return Equal(a, b)
}

// ArrayIterator walks an Array's elements in order.
type ArrayIterator struct {
	Header
	arr    *Array
	cursor int
}

func NewArrayIterator(a *Array) *ArrayIterator {
	return &ArrayIterator{Header: Header{kind: ObjArrayIterator}, arr: a}
}

// Array returns the array this iterator walks, so the GC can keep it
// alive for as long as the iterator itself is reachable.
func (it *ArrayIterator) Array() *Array { return it.arr }

func (it *ArrayIterator) Ops() *Operations { return arrayIteratorOps }

var arrayIteratorOps = &Operations{
	String: func(self HeapObject, depth int) string {
		return fmt.Sprintf("<array_iterator at %d>", self.(*ArrayIterator).cursor)
	},
	IterNext: func(self HeapObject) (Value, Value, bool) {
		it := self.(*ArrayIterator)
		if it.cursor >= it.arr.Len() {
			return Value{}, Value{}, false
		}
		idx := Int(int64(it.cursor))
		elem := it.arr.At(it.cursor)
		it.cursor++
		return idx, elem, true
	},
}
