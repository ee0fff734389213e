package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString_KnownAndUnknownOps(t *testing.T) {
	assert.Equal(t, "Add", Add.String())
	assert.Equal(t, "GetProperty", GetProperty.String())
	assert.Equal(t, "Op(255)", Op(255).String())
}

func TestOperandWidths_MatchesEncodingShape(t *testing.T) {
	assert.Equal(t, []int{2, 1}, OperandWidths(Closure))
	assert.Equal(t, []int{2}, OperandWidths(Constant))
	assert.Equal(t, []int{1}, OperandWidths(GetLocal))
	assert.Equal(t, []int{1, 2}, OperandWidths(IterNext))
	assert.Nil(t, OperandWidths(Return))
}

func TestWidth_SumsOpcodeBytePlusOperands(t *testing.T) {
	assert.Equal(t, 1, Width(Return))
	assert.Equal(t, 2, Width(GetLocal))
	assert.Equal(t, 3, Width(Constant))
	assert.Equal(t, 4, Width(Closure))
	assert.Equal(t, 4, Width(IterNext))
}

func TestDistinctOpGroupsDoNotOverlap(t *testing.T) {
	seen := map[Op]string{}
	for op, name := range names {
		if other, ok := seen[op]; ok {
			t.Fatalf("opcode value %d shared by %s and %s", op, other, name)
		}
		seen[op] = name
	}
}
