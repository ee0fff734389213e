package object

import "github.com/daivm/dai/daierr"

// mapEntry is one slot in a Map's ordered backing store; deleted entries
// are tombstoned rather than compacted so live MapIterators stay valid.
type mapEntry struct {
	key     Value
	val     Value
	deleted bool
}

// Map is dai's hash map. Keys hash via HashValue (delegating to the key's
// own Hash op for object keys); bucket collisions chain by entry index.
// Iteration order follows insertion order of still-live entries.
type Map struct {
	Header
	buckets map[uint64][]int
	entries []mapEntry
	count   int
}

func NewMap() *Map {
	return &Map{Header: Header{kind: ObjMap}, buckets: make(map[uint64][]int)}
}

func (m *Map) Len() int { return m.count }

func (m *Map) find(key Value) (int, error) {
	h, err := HashValue(key)
	if err != nil {
		return -1, err
	}
	for _, idx := range m.buckets[h] {
		e := &m.entries[idx]
		if e.deleted {
			continue
		}
		if valueEqualDepth(e.key, key, defaultDepthBudget) {
			return idx, nil
		}
	}
	return -1, nil
}

func (m *Map) Get(key Value) (Value, bool, error) {
	idx, err := m.find(key)
	if err != nil {
		return Value{}, false, err
	}
	if idx < 0 {
		return Value{}, false, nil
	}
	return m.entries[idx].val, true, nil
}

func (m *Map) Set(key Value, val Value) error {
	idx, err := m.find(key)
	if err != nil {
		return err
	}
	if idx >= 0 {
		m.entries[idx].val = val
		return nil
	}
	h, err := HashValue(key)
	if err != nil {
		return err
	}
	m.entries = append(m.entries, mapEntry{key: key, val: val})
	newIdx := len(m.entries) - 1
	m.buckets[h] = append(m.buckets[h], newIdx)
	m.count++
	return nil
}

func (m *Map) Delete(key Value) (bool, error) {
	idx, err := m.find(key)
	if err != nil {
		return false, err
	}
	if idx < 0 {
		return false, nil
	}
	m.entries[idx].deleted = true
	m.count--
	return true, nil
}

// Pairs returns live (key, value) pairs in insertion order.
func (m *Map) Pairs() [][2]Value {
	out := make([][2]Value, 0, m.count)
	for _, e := range m.entries {
		if !e.deleted {
			out = append(out, [2]Value{e.key, e.val})
		}
	}
	return out
}

func (m *Map) Ops() *Operations { return mapOps }

var mapOps = &Operations{
	SubscriptGet: func(self HeapObject, index Value) (Value, error) {
		m := self.(*Map)
		v, ok, err := m.Get(index)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return Value{}, keyError(index)
		}
		return v, nil
	},
	SubscriptSet: func(self HeapObject, index Value, v Value) error {
		return self.(*Map).Set(index, v)
	},
	String: func(self HeapObject, depth int) string {
		m := self.(*Map)
		pairs := m.Pairs()
		parts := make([]string, len(pairs))
		for i, kv := range pairs {
			parts[i] = elementString(kv[0], depth-1) + ": " + elementString(kv[1], depth-1)
		}
		return "{" + joinStrings(parts, ", ") + "}"
	},
	Equal: func(x, y HeapObject, depth int) int {
		a, b := x.(*Map), y.(*Map)
		if a.count != b.count {
			return 0
		}
		for _, kv := range a.Pairs() {
			bv, ok, err := b.Get(kv[0])
			if err != nil || !ok || !valueEqualDepth(kv[1], bv, depth-1) {
				return 0
			}
		}
		return 1
	},
	IterInit: func(self HeapObject) (HeapObject, error) {
		return NewMapIterator(self.(*Map)), nil
	},
	GetMethod: func(self HeapObject, name string) (Value, bool) {
		impl, ok := mapMethods[name]
		if !ok {
			return Value{}, false
		}
		fn := NewBuiltinFunction(name, func(recv Value, args []Value) (Value, error) {
			return impl(recv.AsObject().(*Map), args)
		})
		return Obj(NewBoundBuiltinMethod(Obj(self), fn)), true
	},
}

// mapMethods backs the Map built-in method set (keys/values/length/
// contains/remove), dispatched through GetMethod.
var mapMethods = map[string]func(m *Map, args []Value) (Value, error){
	"keys": func(m *Map, args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, daierr.TypeError("keys expects 0 arguments, got %d", len(args))
		}
		pairs := m.Pairs()
		keys := make([]Value, len(pairs))
		for i, kv := range pairs {
			keys[i] = kv[0]
		}
		return Obj(NewArray(keys)), nil
	},
	"values": func(m *Map, args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, daierr.TypeError("values expects 0 arguments, got %d", len(args))
		}
		pairs := m.Pairs()
		vals := make([]Value, len(pairs))
		for i, kv := range pairs {
			vals[i] = kv[1]
		}
		return Obj(NewArray(vals)), nil
	},
	"length": func(m *Map, args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, daierr.TypeError("length expects 0 arguments, got %d", len(args))
		}
		return Int(int64(m.Len())), nil
	},
	"contains": func(m *Map, args []Value) (Value, error) {
		if len(args) != 1 {
			return Value{}, daierr.TypeError("contains expects 1 argument, got %d", len(args))
		}
		idx, err := m.find(args[0])
		if err != nil {
			return Value{}, err
		}
		return Bool(idx >= 0), nil
	},
	"remove": func(m *Map, args []Value) (Value, error) {
		if len(args) != 1 {
			return Value{}, daierr.TypeError("remove expects 1 argument, got %d", len(args))
		}
		ok, err := m.Delete(args[0])
		if err != nil {
			return Value{}, err
		}
		return Bool(ok), nil
	},
}

// MapIterator walks a Map's live entries in insertion order.
type MapIterator struct {
	Header
	m      *Map
	cursor int
}

func NewMapIterator(m *Map) *MapIterator {
	return &MapIterator{Header: Header{kind: ObjMapIterator}, m: m}
}

// Map returns the map this iterator walks, so the GC can keep it alive
// for as long as the iterator itself is reachable.
func (it *MapIterator) Map() *Map { return it.m }

func (it *MapIterator) Ops() *Operations { return mapIteratorOps }

var mapIteratorOps = &Operations{
	String: func(self HeapObject, depth int) string { return "<map_iterator>" },
	IterNext: func(self HeapObject) (Value, Value, bool) {
		it := self.(*MapIterator)
		for it.cursor < len(it.m.entries) {
			e := it.m.entries[it.cursor]
			it.cursor++
			if !e.deleted {
				return e.key, e.val, true
			}
		}
		return Value{}, Value{}, false
	},
}
