// Package gc implements the tri-color mark-and-sweep collector the VM
// drives after every allocation that grows the heap (spec §4.5 GC
// triggering). It has no precedent anywhere in the example pack — the
// teacher's PHP runtime leans on Go's own garbage collector for its
// values package and never implements one of its own — so this package
// is built from the spec's root/threshold description directly rather
// than adapted from any existing source.
package gc

import (
	"github.com/daivm/dai/bytecode"
	"github.com/daivm/dai/intern"
	"github.com/daivm/dai/object"
)

// defaultThreshold is the initial nextGC value before any collection has
// run, chosen generously so short scripts never collect at all.
const defaultThreshold = 1 << 20 // 1 MiB of estimated allocation

// Collector owns the intrusive allocation list threaded through every
// heap object's Header.Next, plus the byte-counted trigger threshold
// described in spec §4.5.
type Collector struct {
	head           object.HeapObject
	bytesAllocated int64
	nextGC         int64
	pauseDepth     int

	Collections int // number of completed mark-sweep passes, for diagnostics
}

// New returns a collector with the default trigger threshold.
func New() *Collector {
	return &Collector{nextGC: defaultThreshold}
}

// Track registers a freshly allocated heap object, linking it into the
// sweep list and charging its estimated size against the byte budget.
// Every VM-side constructor call (NewArray, NewInstance, NewClosure, a
// re-interned concatenation result, ...) must route through this. Track
// is idempotent: an object already linked in (e.g. a string handed back
// again from an intern-table cache hit) is left exactly where it is
// rather than being re-spliced onto the head of the list a second time,
// which would otherwise either double-count its bytes or, worse, cut
// off whatever the list already threaded through its Next pointer.
func (c *Collector) Track(o object.HeapObject) object.HeapObject {
	if o.Tracked() {
		return o
	}
	o.SetNext(c.head)
	c.head = o
	o.SetTracked(true)
	c.bytesAllocated += approxSize(o)
	return o
}

// ShouldCollect reports whether the next allocation should be preceded
// by a collection, per spec §4.5 ("after any allocation where new >
// old, if bytesAllocated > nextGC ... run a full mark-sweep").
func (c *Collector) ShouldCollect() bool {
	return c.pauseDepth == 0 && c.bytesAllocated > c.nextGC
}

// Pause disables collection, incrementing a nesting counter so nested
// pause/resume pairs compose (spec §4.5 pause/resume counter, used by
// native built-ins that hold roots the stack doesn't see).
func (c *Collector) Pause() { c.pauseDepth++ }

// Resume re-enables collection once every Pause call has a matching
// Resume.
func (c *Collector) Resume() {
	if c.pauseDepth > 0 {
		c.pauseDepth--
	}
}

// Roots bundles every live reference the VM can see at collection time:
// the operand stack slice from base to top, every frame's closure and
// function, every loaded module's globals, and the transient GC-ref
// list (spec §4.5 root enumeration).
type Roots struct {
	Stack      []object.Value
	Frames     []object.HeapObject // closures and functions, flattened by the caller
	Modules    []*object.Module
	Transients []object.Value
}

// Collect runs one full mark-sweep pass: every object reachable from
// roots survives, the intern table drops any string no longer marked,
// and the allocation list is rebuilt from the survivors.
func (c *Collector) Collect(roots Roots, interned *intern.Table) {
	var gray []object.HeapObject

	mark := func(o object.HeapObject) {
		if o == nil || o.Marked() {
			return
		}
		o.SetMarked(true)
		gray = append(gray, o)
	}
	markValue := func(v object.Value) {
		if v.IsObject() {
			mark(v.AsObject())
		}
	}

	for _, v := range roots.Stack {
		markValue(v)
	}
	for _, o := range roots.Frames {
		mark(o)
	}
	for _, v := range roots.Transients {
		markValue(v)
	}
	for _, m := range roots.Modules {
		mark(m)
		for _, v := range m.Globals {
			markValue(v)
		}
	}

	for len(gray) > 0 {
		o := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		blacken(o, mark, markValue)
	}

	if interned != nil {
		interned.Sweep()
	}

	var survivors object.HeapObject
	var tail object.HeapObject
	var total int64
	for cur := c.head; cur != nil; {
		next := cur.Next()
		if cur.Marked() {
			cur.SetMarked(false)
			cur.SetNext(nil)
			if tail == nil {
				survivors = cur
			} else {
				tail.SetNext(cur)
			}
			tail = cur
			total += approxSize(cur)
		} else if s, ok := cur.(*object.Struct); ok && s.Destroy != nil {
			// Native subresources are released before the Struct itself
			// drops off the sweep list (spec §3.2 extension hook).
			s.Destroy(s.Data)
		}
		cur = next
	}
	c.head = survivors
	c.bytesAllocated = total
	c.nextGC = total * 2
	if c.nextGC < defaultThreshold {
		c.nextGC = defaultThreshold
	}
	c.Collections++
}

// blacken visits o's own references, marking each child it holds. Every
// composite heap-object kind the object package defines needs a case
// here; scalar kinds (String, Error, RangeIterator, BuiltinFunction,
// CFunction) hold no object references and fall through the default.
func blacken(o object.HeapObject, mark func(object.HeapObject), markValue func(object.Value)) {
	switch v := o.(type) {
	case *object.Array:
		for _, e := range v.Elements() {
			markValue(e)
		}
	case *object.Tuple:
		for _, e := range v.Elements() {
			markValue(e)
		}
	case *object.Map:
		for _, kv := range v.Pairs() {
			markValue(kv[0])
			markValue(kv[1])
		}
	case *object.ArrayIterator:
		mark(v.Array())
	case *object.MapIterator:
		mark(v.Map())
	case *object.Closure:
		mark(v.Fn)
		for _, f := range v.Frees {
			markValue(f)
		}
	case *object.BoundMethod:
		markValue(v.Receiver)
		mark(v.Method)
	case *object.BoundBuiltinMethod:
		markValue(v.Receiver)
		mark(v.Fn)
	case *object.Function:
		if v.Superclass != nil {
			mark(v.Superclass)
		}
		markChunkConstants(v.Chunk, markValue)
	case *object.Class:
		if v.Parent != nil {
			mark(v.Parent)
		}
		for _, def := range v.InstanceFields {
			markValue(def.Default)
		}
		for _, slot := range v.ClassFields {
			markValue(slot.Value)
		}
		for _, m := range v.InstanceMethods {
			mark(m)
		}
		for _, m := range v.ClassMethods {
			mark(m)
		}
	case *object.Instance:
		mark(v.Class)
		for _, f := range v.Fields {
			markValue(f)
		}
	case *object.Module:
		for _, g := range v.Globals {
			markValue(g)
		}
		markChunkConstants(v.Chunk, markValue)
	case *object.Struct:
		// Native data is opaque to the collector; a host that stores
		// dai values inside Data is responsible for keeping them
		// reachable some other way (spec §3.2 extension hook).
	}
}

func markChunkConstants(chunk *bytecode.Chunk, markValue func(object.Value)) {
	if chunk == nil {
		return
	}
	for _, c := range chunk.Constants {
		if v, ok := c.(object.Value); ok {
			markValue(v)
		}
	}
}

// approxSize estimates an object's heap footprint for the byte-budget
// threshold; exact accounting isn't the point, just triggering
// collection at a reasonable cadence as the heap grows.
func approxSize(o object.HeapObject) int64 {
	switch v := o.(type) {
	case *object.Array:
		return 32 + int64(v.Len())*16
	case *object.Tuple:
		return 32 + int64(v.Len())*16
	case *object.Map:
		return 48 + int64(v.Len())*32
	case *object.Instance:
		return 16 + int64(len(v.Fields))*16
	default:
		return 48
	}
}
