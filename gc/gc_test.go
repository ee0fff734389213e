package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daivm/dai/intern"
	"github.com/daivm/dai/object"
)

func TestTrack_LinksIntoSweepListAndChargesBytes(t *testing.T) {
	c := New()
	a := object.NewArray(nil)
	c.Track(a)
	assert.Greater(t, c.bytesAllocated, int64(0))
	assert.Equal(t, object.HeapObject(a), c.head)
}

func TestShouldCollect_RespectsThresholdAndPause(t *testing.T) {
	c := New()
	assert.False(t, c.ShouldCollect(), "fresh collector starts under its threshold")

	c.bytesAllocated = c.nextGC + 1
	assert.True(t, c.ShouldCollect())

	c.Pause()
	assert.False(t, c.ShouldCollect(), "a pause must suppress collection regardless of byte count")

	c.Pause()
	c.Resume()
	assert.False(t, c.ShouldCollect(), "nested pauses require a matching Resume for each Pause")

	c.Resume()
	assert.True(t, c.ShouldCollect())
}

func TestResume_WithoutMatchingPauseDoesNotUnderflow(t *testing.T) {
	c := New()
	c.Resume()
	c.bytesAllocated = c.nextGC + 1
	assert.True(t, c.ShouldCollect(), "an extra Resume call must not leave pauseDepth negative")
}

func TestCollect_SweepsUnreachableObjects(t *testing.T) {
	c := New()
	reachable := c.Track(object.NewArray(nil)).(*object.Array)
	garbage := c.Track(object.NewArray(nil))
	_ = garbage

	c.Collect(Roots{Stack: []object.Value{object.Obj(reachable)}}, nil)

	assert.Equal(t, 1, c.Collections)
	found := false
	for cur := c.head; cur != nil; cur = cur.Next() {
		if cur == object.HeapObject(reachable) {
			found = true
		}
	}
	assert.True(t, found, "the reachable array must survive the sweep")

	count := 0
	for cur := c.head; cur != nil; cur = cur.Next() {
		count++
	}
	assert.Equal(t, 1, count, "the unreachable array must be swept away")
}

func TestCollect_MarksThroughArrayElements(t *testing.T) {
	c := New()
	inner := c.Track(object.NewArray(nil)).(*object.Array)
	outer := c.Track(object.NewArray([]object.Value{object.Obj(inner)}))

	c.Collect(Roots{Stack: []object.Value{object.Obj(outer)}}, nil)

	survivors := 0
	for cur := c.head; cur != nil; cur = cur.Next() {
		survivors++
	}
	assert.Equal(t, 2, survivors, "both the outer array and the element it holds must survive")
}

func TestCollect_MarksThroughModuleGlobals(t *testing.T) {
	c := New()
	held := c.Track(object.NewArray(nil)).(*object.Array)
	mod := object.NewModule("m", "m.dai")
	mod.Globals = append(mod.Globals, object.Obj(held))
	c.Track(mod)

	c.Collect(Roots{Modules: []*object.Module{mod}}, nil)

	found := false
	for cur := c.head; cur != nil; cur = cur.Next() {
		if cur == object.HeapObject(held) {
			found = true
		}
	}
	assert.True(t, found, "a value reachable only through a module global must survive")
}

func TestCollect_SweepsInternedStringsNoLongerReferenced(t *testing.T) {
	c := New()
	tbl := intern.New()
	s := tbl.Intern("hello")
	c.Track(s)

	c.Collect(Roots{}, tbl)

	assert.Equal(t, 0, tbl.Len(), "an interned string unreachable from any root must be dropped by Sweep")
}

func TestCollect_InternedStringMarkCyclesAcrossPasses(t *testing.T) {
	c := New()
	tbl := intern.New()
	tbl.SetTracker(c.Track)

	s := tbl.Intern("shared")
	c.Collect(Roots{Stack: []object.Value{object.Obj(s)}}, tbl)
	require.Equal(t, 1, tbl.Len(), "a string reachable from a root must survive the first pass")
	require.False(t, s.Marked(), "the sweep loop must clear Marked on every survivor it walks, not just leave it set")

	c.Collect(Roots{}, tbl)
	assert.Equal(t, 0, tbl.Len(), "once the only reference is gone, a second pass must actually drop the string")
}

func TestTrack_IsIdempotentForAnAlreadyTrackedObject(t *testing.T) {
	c := New()
	a := object.NewArray(nil)
	c.Track(a)
	before := c.bytesAllocated

	c.Track(a)
	assert.Equal(t, before, c.bytesAllocated, "tracking the same object twice must not double-charge its bytes")

	count := 0
	for cur := c.head; cur != nil; cur = cur.Next() {
		count++
	}
	assert.Equal(t, 1, count, "tracking the same object twice must not splice it into the list twice")
}

func TestCollect_NextGCNeverDropsBelowDefaultFloor(t *testing.T) {
	c := New()
	kept := c.Track(object.NewArray(nil)).(*object.Array)
	c.Collect(Roots{Stack: []object.Value{object.Obj(kept)}}, nil)

	require.GreaterOrEqual(t, c.nextGC, defaultThreshold, "nextGC must never drop below the default floor")
}

func TestCollect_DestroysUnreachableStructData(t *testing.T) {
	c := New()
	destroyed := false
	s := c.Track(object.NewStruct("handle", "payload", nil, func(data interface{}) {
		destroyed = true
		assert.Equal(t, "payload", data)
	})).(*object.Struct)
	_ = s

	c.Collect(Roots{}, nil)

	assert.True(t, destroyed, "an unreachable Struct's Destroy callback must run during sweep")
}

func TestCollect_DoesNotDestroySurvivingStructData(t *testing.T) {
	c := New()
	destroyed := false
	s := c.Track(object.NewStruct("handle", "payload", nil, func(data interface{}) {
		destroyed = true
	})).(*object.Struct)

	c.Collect(Roots{Stack: []object.Value{object.Obj(s)}}, nil)

	assert.False(t, destroyed, "a Struct still reachable from a root must not be destroyed")
}

func TestApproxSize_ScalesWithCollectionLength(t *testing.T) {
	small := object.NewArray(nil)
	big := object.NewArray(make([]object.Value, 10))
	assert.Greater(t, approxSize(big), approxSize(small))
}
