package builtin

import (
	"bytes"
	"testing"

	"github.com/daivm/dai/compiler"
	"github.com/daivm/dai/intern"
	"github.com/daivm/dai/lexer"
	"github.com/daivm/dai/object"
	"github.com/daivm/dai/parser"
	"github.com/daivm/dai/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run compiles and runs src against a VM with every global built-in
// registered, returning the VM (with its Stdout captured in buf) and the
// compiled module whose globals tests inspect.
func run(t *testing.T, src string) (*vm.VM, *object.Module, *bytes.Buffer) {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l, "<test>")
	prog, err := p.Parse()
	require.NoError(t, err)

	tbl := intern.New()
	c := compiler.New(tbl)
	v := vm.New(tbl)
	var buf bytes.Buffer
	v.Stdout = &buf
	Register(v, c)

	mod, err := c.CompileModule(prog, "<test>", "<test>")
	require.NoError(t, err)

	_, err = v.RunModule(mod)
	require.NoError(t, err)
	return v, mod, &buf
}

func global(mod *object.Module, name string) object.Value {
	idx, ok := mod.Slots[name]
	if !ok {
		return object.Value{}
	}
	return mod.Globals[idx]
}

func TestPrintWritesSpaceSeparated(t *testing.T) {
	_, _, buf := run(t, `print(1, "two", 3.5);`)
	assert.Equal(t, "1 two 3.5", buf.String())
}

func TestPrintlnAppendsNewline(t *testing.T) {
	_, _, buf := run(t, `println("hi");`)
	assert.Equal(t, "hi\n", buf.String())
}

func TestLenOverStringArrayMap(t *testing.T) {
	_, mod, _ := run(t, `
var a = len("hello");
var b = len([1, 2, 3]);
var c = len({"x": 1, "y": 2});
`)
	assert.Equal(t, int64(5), global(mod, "a").AsInt())
	assert.Equal(t, int64(3), global(mod, "b").AsInt())
	assert.Equal(t, int64(2), global(mod, "c").AsInt())
}

func TestTypeNamesEachKind(t *testing.T) {
	_, mod, _ := run(t, `
var a = type(1);
var b = type(1.0);
var c = type("s");
var d = type(nil);
var e = type(true);
`)
	assert.Equal(t, "int", global(mod, "a").AsObject().(*object.String).Bytes)
	assert.Equal(t, "float", global(mod, "b").AsObject().(*object.String).Bytes)
	assert.Equal(t, "string", global(mod, "c").AsObject().(*object.String).Bytes)
	assert.Equal(t, "nil", global(mod, "d").AsObject().(*object.String).Bytes)
	assert.Equal(t, "bool", global(mod, "e").AsObject().(*object.String).Bytes)
}

func TestAssertPasses(t *testing.T) {
	_, _, _ = run(t, `assert(1 == 1);`)
}

func TestAssertFailsRaisesError(t *testing.T) {
	l := lexer.New(`assert(1 == 2, "nope");`)
	p := parser.New(l, "<test>")
	prog, err := p.Parse()
	require.NoError(t, err)

	tbl := intern.New()
	c := compiler.New(tbl)
	v := vm.New(tbl)
	Register(v, c)
	mod, err := c.CompileModule(prog, "<test>", "<test>")
	require.NoError(t, err)

	_, err = v.RunModule(mod)
	require.Error(t, err)
}

func TestAssertEqFails(t *testing.T) {
	l := lexer.New(`assert_eq(1, 2);`)
	p := parser.New(l, "<test>")
	prog, err := p.Parse()
	require.NoError(t, err)

	tbl := intern.New()
	c := compiler.New(tbl)
	v := vm.New(tbl)
	Register(v, c)
	mod, err := c.CompileModule(prog, "<test>", "<test>")
	require.NoError(t, err)

	_, err = v.RunModule(mod)
	require.Error(t, err)
}

func TestRangeIteratesWithStep(t *testing.T) {
	_, mod, _ := run(t, `
var total = 0;
for (i, v in range(0, 10, 2)) {
    total = total + v;
};
`)
	assert.Equal(t, int64(0+2+4+6+8), global(mod, "total").AsInt())
}

func TestRangeSingleArgDefaultsStartToZero(t *testing.T) {
	_, mod, _ := run(t, `
var x = 0;
for (i, e in range(5)) { x = x + e; };
`)
	assert.Equal(t, int64(10), global(mod, "x").AsInt())
}

func TestArrayBuiltinMethods(t *testing.T) {
	_, mod, _ := run(t, `
var a = [3, 1, 2];
a.append(9);
var popped = a.pop();
a.sort();
var has2 = a.contains(2);
var n = a.length();
`)
	assert.Equal(t, int64(9), global(mod, "popped").AsInt())
	assert.True(t, global(mod, "has2").AsBool())
	assert.Equal(t, int64(3), global(mod, "n").AsInt())
}

func TestStringBuiltinMethods(t *testing.T) {
	_, mod, _ := run(t, `
var s = "  Hello World  ";
var trimmed = s.trim();
var lower = trimmed.lower();
var parts = lower.split(" ");
var joined = "-".join(parts);
`)
	assert.Equal(t, "hello world", global(mod, "lower").AsObject().(*object.String).Bytes)
	assert.Equal(t, "hello-world", global(mod, "joined").AsObject().(*object.String).Bytes)
}

func TestMapBuiltinMethods(t *testing.T) {
	_, mod, _ := run(t, `
var m = {"a": 1, "b": 2};
var hasA = m.contains("a");
var removed = m.remove("a");
var n = m.length();
`)
	assert.True(t, global(mod, "hasA").AsBool())
	assert.True(t, global(mod, "removed").AsBool())
	assert.Equal(t, int64(1), global(mod, "n").AsInt())
}
