package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_TruthyRules(t *testing.T) {
	assert.False(t, Nil.Truthy())
	assert.False(t, Undefined.Truthy())
	assert.False(t, Bool(false).Truthy())
	assert.True(t, Bool(true).Truthy())
	assert.False(t, Int(0).Truthy())
	assert.True(t, Int(1).Truthy())
	assert.True(t, Float(0).Truthy(), "floats are always truthy regardless of value")
}

func TestValue_TypeNameAndString(t *testing.T) {
	assert.Equal(t, "int", Int(3).TypeName())
	assert.Equal(t, "3", Int(3).String())
	assert.Equal(t, "float", Float(1.5).TypeName())
	assert.Equal(t, "1.5", Float(1.5).String())
	assert.Equal(t, "bool", Bool(true).TypeName())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "nil", Nil.TypeName())
	assert.Equal(t, "nil", Nil.String())
}

func TestEqual_CrossKindNumericNeverEqual(t *testing.T) {
	assert.False(t, Equal(Int(1), Float(1.0)), "int and float never compare equal even with the same numeric value")
}

func TestEqual_FloatUsesFixedTolerance(t *testing.T) {
	assert.True(t, Equal(Float(1.0), Float(1.0+1e-12)))
	assert.False(t, Equal(Float(1.0), Float(1.1)))
}

func TestEqual_ObjectDelegatesToEqualObjects(t *testing.T) {
	a := NewArray([]Value{Int(1), Int(2)})
	b := NewArray([]Value{Int(1), Int(2)})
	assert.True(t, Equal(Obj(a), Obj(b)))

	c := NewArray([]Value{Int(1), Int(3)})
	assert.False(t, Equal(Obj(a), Obj(c)))
}

func TestObj_NilHeapObjectCollapsesToNilValue(t *testing.T) {
	v := Obj(nil)
	assert.True(t, v.IsNil())
}

func TestEqualObjects_PointerIdentityShortCircuitsMissingEqualOp(t *testing.T) {
	m1 := NewModule("m", "m.dai")
	assert.Equal(t, 1, EqualObjects(m1, m1, 64), "the same module pointer must compare equal without needing an Equal op")

	m2 := NewModule("m", "m.dai")
	assert.Equal(t, 0, EqualObjects(m1, m2, 64), "distinct module pointers with no Equal op must not compare equal")
}

func TestEqualObjects_DifferentKindsNeverEqual(t *testing.T) {
	arr := NewArray(nil)
	tup := NewTuple(nil)
	assert.Equal(t, 0, EqualObjects(arr, tup, 64))
}

func TestArray_ElementsAndLen(t *testing.T) {
	a := NewArray([]Value{Int(1), Int(2), Int(3)})
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, []Value{Int(1), Int(2), Int(3)}, a.Elements())
}

func TestMap_PairsRoundTrip(t *testing.T) {
	m := NewMap()
	err := m.Set(Int(1), Obj(NewString("one", FNV1a32("one"))))
	require.NoError(t, err)
	v, ok, err := m.Get(Int(1))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "one", v.AsObject().(*String).Bytes)
}
