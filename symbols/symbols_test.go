package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefine_GlobalAndLocalScopes(t *testing.T) {
	global := New()
	a := global.Define("a")
	b := global.Define("b")
	assert.Equal(t, Symbol{Name: "a", Scope: Global, Index: 0, Defined: true}, a)
	assert.Equal(t, Symbol{Name: "b", Scope: Global, Index: 1, Defined: true}, b)

	local := NewFunction(global)
	c := local.Define("c")
	d := local.Define("d")
	assert.Equal(t, Symbol{Name: "c", Scope: Local, Index: 0, Defined: true}, c)
	assert.Equal(t, Symbol{Name: "d", Scope: Local, Index: 1, Defined: true}, d)
}

func TestPredefine_ThenDefineCompletesIt(t *testing.T) {
	global := New()
	pre := global.Predefine("x")
	assert.False(t, pre.Defined)
	assert.True(t, global.IsDefined("x") == false)

	full := global.Define("x")
	assert.True(t, full.Defined)
	assert.Equal(t, pre.Index, full.Index)
	assert.True(t, global.IsDefined("x"))
}

func TestResolve_WalksOuterScopes(t *testing.T) {
	global := New()
	global.Define("a")

	block := NewEnclosed(global)
	sym, ok := block.Resolve("a")
	require.True(t, ok)
	assert.Equal(t, Global, sym.Scope)
}

func TestResolve_Builtin(t *testing.T) {
	global := New()
	global.DefineBuiltin(0, "len")

	fn := NewFunction(global)
	sym, ok := fn.Resolve("len")
	require.True(t, ok)
	assert.Equal(t, Builtin, sym.Scope)
	assert.Empty(t, fn.FreeSymbols, "builtins are never captured as free variables")
}

func TestResolve_CapturesFreeVariableAcrossFunctionBoundary(t *testing.T) {
	global := New()
	global.Define("outerVar")

	outerFn := NewFunction(global)
	outerFn.Define("a")

	innerFn := NewFunction(outerFn)
	innerFn.Define("b")

	sym, ok := innerFn.Resolve("a")
	require.True(t, ok)
	assert.Equal(t, Free, sym.Scope)
	require.Len(t, innerFn.FreeSymbols, 1)
	assert.Equal(t, "a", innerFn.FreeSymbols[0].Name)

	// outerVar is global, so it must NOT be captured as free even though
	// it crosses the same function boundary.
	sym2, ok2 := innerFn.Resolve("outerVar")
	require.True(t, ok2)
	assert.Equal(t, Global, sym2.Scope)
	assert.Len(t, innerFn.FreeSymbols, 1)
}

func TestResolve_NestedClosuresChainCapture(t *testing.T) {
	global := New()

	outerFn := NewFunction(global)
	outerFn.Define("a")

	middleFn := NewFunction(outerFn)
	middleFn.Define("b")

	innerFn := NewFunction(middleFn)
	sym, ok := innerFn.Resolve("a")
	require.True(t, ok)
	assert.Equal(t, Free, sym.Scope)

	// middleFn must also have captured "a" as free, to hand it down to
	// innerFn's closure at runtime.
	require.Len(t, middleFn.FreeSymbols, 1)
	assert.Equal(t, "a", middleFn.FreeSymbols[0].Name)
}

func TestResolve_BlockScopeInsideFunctionIsNotACaptureBoundary(t *testing.T) {
	global := New()
	fn := NewFunction(global)
	fn.Define("a")

	block := NewEnclosed(fn)
	sym, ok := block.Resolve("a")
	require.True(t, ok)
	assert.Equal(t, Local, sym.Scope)
	assert.Empty(t, fn.FreeSymbols)
}

func TestDefineSelf_OccupiesSlotZero(t *testing.T) {
	global := New()
	method := NewFunction(global)
	self := method.DefineSelf()
	assert.Equal(t, SelfScope, self.Scope)
	assert.Equal(t, 0, self.Index)

	first := method.Define("arg0")
	assert.Equal(t, 1, first.Index)
}

func TestCount_TracksOwnDefinitionsOnly(t *testing.T) {
	global := New()
	global.Define("a")
	global.Define("b")
	assert.Equal(t, 2, global.Count())

	fn := NewFunction(global)
	fn.Define("x")
	assert.Equal(t, 1, fn.Count())
}

func TestResolve_UnknownNameFails(t *testing.T) {
	global := New()
	_, ok := global.Resolve("missing")
	assert.False(t, ok)
}

func TestDefineGlobalAt_ReseedsExistingSlotWithoutShiftingCount(t *testing.T) {
	global := New()
	sym := global.DefineGlobalAt(5, "x", false)
	assert.Equal(t, Symbol{Name: "x", Scope: Global, Index: 5, Defined: true}, sym)
	assert.Equal(t, 6, global.Count(), "numSymbols must bump past the seeded index")

	resolved, ok := global.Resolve("x")
	require.True(t, ok)
	assert.Equal(t, sym, resolved)

	next := global.Define("y")
	assert.Equal(t, 6, next.Index, "a fresh declaration must not collide with a reseeded slot")
}

func TestDefineGlobalAt_RepeatedCallsAreIdempotent(t *testing.T) {
	global := New()
	global.DefineGlobalAt(2, "a", false)
	global.DefineGlobalAt(0, "b", false)
	global.DefineGlobalAt(2, "a", true)
	assert.Equal(t, 3, global.Count(), "re-seeding in any order or count must never shrink or duplicate-bump the counter")

	sym, ok := global.Resolve("a")
	require.True(t, ok)
	assert.True(t, sym.IsConst, "the later re-seed's isConst must win")
}

func TestDefineGlobalAt_ConstFlag(t *testing.T) {
	global := New()
	sym := global.DefineGlobalAt(0, "PI", true)
	assert.True(t, sym.IsConst)
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "global", Global.String())
	assert.Equal(t, "local", Local.String())
	assert.Equal(t, "free", Free.String())
	assert.Equal(t, "builtin", Builtin.String())
	assert.Equal(t, "self", SelfScope.String())
}
