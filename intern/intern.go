// Package intern implements dai's string dedup table: one canonical
// *object.String per distinct byte sequence, looked up by its FNV-1a hash
// (spec §3.2, §8 interning invariant).
package intern

import (
	"sync"

	"github.com/daivm/dai/object"
)

// Table deduplicates strings by content. It is weakly rooted by the GC:
// unmarked entries are dropped before sweep (spec §4.5 GC roots).
type Table struct {
	mu      sync.Mutex
	strings map[uint32][]*object.String
	track   func(object.HeapObject) object.HeapObject
}

func New() *Table {
	return &Table{strings: make(map[uint32][]*object.String)}
}

// SetTracker installs the hook every freshly created (cache-miss)
// interned string is routed through, normally gc.Collector.Track via a
// VM's own wrapper. Without this, a string minted here never gets
// linked into the collector's sweep list, so Sweep's "is this string
// still marked live" check below would see a Marked bit that gets set
// once and is then never cleared again — the sweep loop is the only
// place that resets Marked, and it only ever walks objects reachable
// from the collector's own head. Wiring this closes that gap so the
// intern table's own "drop what's no longer referenced" contract
// actually holds across more than one collection.
func (t *Table) SetTracker(track func(object.HeapObject) object.HeapObject) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.track = track
}

// Intern returns the canonical *object.String for s, creating and
// registering one if this is the first time these bytes are seen.
func (t *Table) Intern(s string) *object.String {
	h := object.FNV1a32(s)
	t.mu.Lock()
	for _, candidate := range t.strings[h] {
		if candidate.Bytes == s {
			t.mu.Unlock()
			return candidate
		}
	}
	str := object.NewString(s, h)
	t.strings[h] = append(t.strings[h], str)
	track := t.track
	t.mu.Unlock()

	if track != nil {
		track(str)
	}
	return str
}

// Sweep drops every interned string not marked live by the current GC
// pass, matching the "weakly rooted" intern-table contract.
func (t *Table) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for h, bucket := range t.strings {
		kept := bucket[:0]
		for _, s := range bucket {
			if s.Marked() {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(t.strings, h)
		} else {
			t.strings[h] = kept
		}
	}
}

// Len reports how many distinct strings are currently interned, used by
// tests asserting the interning invariant.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, bucket := range t.strings {
		n += len(bucket)
	}
	return n
}
