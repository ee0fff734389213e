package intern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntern_SameBytesReturnSamePointer(t *testing.T) {
	tbl := New()
	a := tbl.Intern("hello")
	b := tbl.Intern("hello")
	assert.Same(t, a, b)
	assert.Equal(t, 1, tbl.Len())
}

func TestIntern_DifferentBytesReturnDifferentStrings(t *testing.T) {
	tbl := New()
	a := tbl.Intern("hello")
	b := tbl.Intern("world")
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, tbl.Len())
}

func TestSweep_DropsUnmarkedKeepsMarked(t *testing.T) {
	tbl := New()
	live := tbl.Intern("live")
	dead := tbl.Intern("dead")
	live.SetMarked(true)

	tbl.Sweep()

	assert.Equal(t, 1, tbl.Len())
	assert.True(t, live.Marked())
	_ = dead
}
