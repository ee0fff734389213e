package object

// Tuple is an immutable sequence produced by a parenthesized comma
// expression, e.g. `(1, 2, 3)`. Distinct from Array: no append/set ops.
type Tuple struct {
	Header
	elems []Value
}

func NewTuple(elems []Value) *Tuple {
	if elems == nil {
		elems = []Value{}
	}
	return &Tuple{Header: Header{kind: ObjTuple}, elems: elems}
}

func (t *Tuple) Len() int          { return len(t.elems) }
func (t *Tuple) At(i int) Value    { return t.elems[i] }
func (t *Tuple) Elements() []Value { return t.elems }

func (t *Tuple) Ops() *Operations { return tupleOps }

var tupleOps = &Operations{
	SubscriptGet: func(self HeapObject, index Value) (Value, error) {
		t := self.(*Tuple)
		if !index.IsInt() {
			return Value{}, indexTypeError()
		}
		i := index.AsInt()
		if i < 0 || i >= int64(len(t.elems)) {
			return Value{}, indexOutOfRange(i, len(t.elems))
		}
		return t.elems[i], nil
	},
	String: func(self HeapObject, depth int) string {
		t := self.(*Tuple)
		parts := make([]string, len(t.elems))
		for i, e := range t.elems {
			parts[i] = elementString(e, depth-1)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + joinStrings(parts, ", ") + ")"
	},
	Equal: func(x, y HeapObject, depth int) int {
		a, b := x.(*Tuple), y.(*Tuple)
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
		return NewArrayIterator(NewArray(self.(*Tuple).elems)), nil
	},
	Hash: func(self HeapObject) (uint64, error) {
		t := self.(*Tuple)
		hashes := make([]uint64, len(t.elems))
		for i, e := range t.elems {
			h, err := HashValue(e)
			if err != nil {
				return 0, err
			}
			hashes[i] = h
		}
		return combineHashes(hashes), nil
	},
}
