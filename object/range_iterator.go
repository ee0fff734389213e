package object

import "fmt"

// RangeIterator produces integers from start to end (exclusive) stepping
// by step, used by the `range(...)` built-in.
type RangeIterator struct {
	Header
	start, end, step int64
	current          int64
	index            int64
}

func NewRangeIterator(start, end, step int64) *RangeIterator {
	return &RangeIterator{
		Header:  Header{kind: ObjRangeIterator},
		start:   start,
		end:     end,
		step:    step,
		current: start,
	}
}

func (it *RangeIterator) Ops() *Operations { return rangeIteratorOps }

func (it *RangeIterator) exhausted() bool {
	if it.step > 0 {
		return it.current >= it.end
	}
	if it.step < 0 {
		return it.current <= it.end
	}
	return true
}

var rangeIteratorOps = &Operations{
	String: func(self HeapObject, depth int) string {
		it := self.(*RangeIterator)
		return fmt.Sprintf("<range_iterator %d..%d step %d>", it.current, it.end, it.step)
	},
	IterNext: func(self HeapObject) (Value, Value, bool) {
		it := self.(*RangeIterator)
		if it.exhausted() {
			return Value{}, Value{}, false
		}
		idx := Int(it.index)
		elem := Int(it.current)
		it.current += it.step
		it.index++
		return idx, elem, true
	},
}
