package compiler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/daivm/dai/intern"
	"github.com/daivm/dai/lexer"
	"github.com/daivm/dai/object"
	"github.com/daivm/dai/opcode"
	"github.com/daivm/dai/parser"
	"github.com/daivm/dai/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSource(t *testing.T, src string) *object.Module {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l, "<test>")
	prog, err := p.Parse()
	require.Nil(t, err, "unexpected parse error: %v", err)

	c := New(intern.New())
	mod, err := c.CompileModule(prog, "<test>", "<test>")
	require.NoError(t, err)
	return mod
}

func TestCompile_IntegerArithmetic(t *testing.T) {
	mod := compileSource(t, "1 + 2 * 3;")
	ops := readOps(t, mod.Chunk.Code)
	assert.Equal(t, []opcode.Op{
		opcode.Constant, opcode.Constant, opcode.Constant, opcode.Mul, opcode.Add, opcode.Pop, opcode.Return,
	}, ops)
}

func TestCompile_VarStatementDefinesGlobal(t *testing.T) {
	mod := compileSource(t, "var x = 5;")
	ops := readOps(t, mod.Chunk.Code)
	assert.Equal(t, []opcode.Op{opcode.Constant, opcode.DefineGlobal, opcode.Return}, ops)
	assert.Len(t, mod.Globals, 1)
}

func TestCompile_ComparisonOperatorsShareOneOpcodeDirection(t *testing.T) {
	lt := compileSource(t, "1 < 2;")
	gt := compileSource(t, "1 > 2;")
	ltOps := readOps(t, lt.Chunk.Code)
	gtOps := readOps(t, gt.Chunk.Code)
	assert.Contains(t, ltOps, opcode.GreaterThan)
	assert.Contains(t, gtOps, opcode.GreaterThan)
}

func TestCompile_LogicalAndShortCircuits(t *testing.T) {
	mod := compileSource(t, "true and false;")
	ops := readOps(t, mod.Chunk.Code)
	assert.Contains(t, ops, opcode.AndJump)
	assert.Contains(t, ops, opcode.Pop)
}

func TestCompile_IfElseEmitsJumps(t *testing.T) {
	mod := compileSource(t, `
		var x = 0;
		if (x == 0) { x = 1; } else { x = 2; };
	`)
	ops := readOps(t, mod.Chunk.Code)
	assert.Contains(t, ops, opcode.JumpIfFalse)
	assert.Contains(t, ops, opcode.Jump)
}

func TestCompile_WhileLoopEmitsJumpBack(t *testing.T) {
	mod := compileSource(t, `
		var i = 0;
		while (i < 3) { i = i + 1; };
	`)
	ops := readOps(t, mod.Chunk.Code)
	assert.Contains(t, ops, opcode.JumpBack)
	assert.Contains(t, ops, opcode.JumpIfFalse)
}

func TestCompile_BreakOutsideLoopIsCompileError(t *testing.T) {
	l := lexer.New("break;")
	p := parser.New(l, "<test>")
	prog, perr := p.Parse()
	require.Nil(t, perr)

	c := New(intern.New())
	_, err := c.CompileModule(prog, "<test>", "<test>")
	require.Error(t, err)
}

func TestCompile_FunctionStatementProducesClosure(t *testing.T) {
	mod := compileSource(t, `
		fn add(a, b) { return a + b; };
		add(1, 2);
	`)
	ops := readOps(t, mod.Chunk.Code)
	assert.Contains(t, ops, opcode.Closure)
	assert.Contains(t, ops, opcode.Call)

	var fn *object.Function
	for _, c := range mod.Chunk.Constants {
		if v, ok := c.(object.Value); ok && v.IsObject() {
			if f, ok := v.AsObject().(*object.Function); ok {
				fn = f
			}
		}
	}
	require.NotNil(t, fn, "expected a compiled Function constant")
	assert.Equal(t, 2, fn.Arity())
}

func TestCompile_ClosureCapturesFreeVariable(t *testing.T) {
	mod := compileSource(t, `
		fn makeAdder(x) {
			fn inner(y) { return x + y; };
			return inner;
		};
	`)
	var outerFn *object.Function
	for _, cst := range mod.Chunk.Constants {
		if v, ok := cst.(object.Value); ok && v.IsObject() {
			if f, ok := v.AsObject().(*object.Function); ok && f.Name == "makeAdder" {
				outerFn = f
			}
		}
	}
	require.NotNil(t, outerFn)
	ops := readOps(t, outerFn.Chunk.Code)
	assert.Contains(t, ops, opcode.GetLocal, "loads x before building inner's closure")
	assert.Contains(t, ops, opcode.Closure)
}

func TestCompile_ClassDefinesFieldsAndMethods(t *testing.T) {
	mod := compileSource(t, `
		class Point {
			var x = 0;
			var y = 0;
			fn sum() { return self.x + self.y; }
		};
	`)
	ops := readOps(t, mod.Chunk.Code)
	assert.Contains(t, ops, opcode.Class)
	assert.Contains(t, ops, opcode.DefineField)
	assert.Contains(t, ops, opcode.DefineMethod)
	assert.Contains(t, ops, opcode.End)
	assert.Contains(t, ops, opcode.DefineGlobal)
}

func TestCompile_ClassWithParentEmitsInherit(t *testing.T) {
	mod := compileSource(t, `
		class Animal { fn speak() { return nil; } };
		class Dog < Animal { fn speak() { return super.speak(); } };
	`)
	ops := readOps(t, mod.Chunk.Code)
	assert.Contains(t, ops, opcode.Inherit)
	assert.Contains(t, ops, opcode.CallSuperMethod)
}

func TestCompile_ConstGlobalReassignmentIsCompileError(t *testing.T) {
	l := lexer.New("con x = 1; x = 2;")
	p := parser.New(l, "<test>")
	prog, perr := p.Parse()
	require.Nil(t, perr)

	c := New(intern.New())
	_, err := c.CompileModule(prog, "<test>", "<test>")
	require.Error(t, err)
}

func TestCompile_ArrayAndIndexExpression(t *testing.T) {
	mod := compileSource(t, "[1, 2, 3][0];")
	ops := readOps(t, mod.Chunk.Code)
	assert.Contains(t, ops, opcode.Array)
	assert.Contains(t, ops, opcode.Subscript)
}

func TestCompile_ForInEmitsIteratorOpcodes(t *testing.T) {
	mod := compileSource(t, `
		for (i, v in [1, 2, 3]) {};
	`)
	ops := readOps(t, mod.Chunk.Code)
	assert.Contains(t, ops, opcode.IterInit)
	assert.Contains(t, ops, opcode.IterNext)
}

func TestCompile_TooManyGlobalsIsCompileError(t *testing.T) {
	var src strings.Builder
	for i := 0; i <= symbols.MaxGlobals; i++ {
		fmt.Fprintf(&src, "var g%d = 0;\n", i)
	}
	l := lexer.New(src.String())
	p := parser.New(l, "<test>")
	prog, perr := p.Parse()
	require.Nil(t, perr)

	c := New(intern.New())
	_, err := c.CompileModule(prog, "<test>", "<test>")
	require.Error(t, err, "a module declaring more globals than a u16 operand can address must fail to compile")
}

func TestCompile_TooManyLocalsIsCompileError(t *testing.T) {
	var body strings.Builder
	for i := 0; i <= symbols.MaxLocals; i++ {
		fmt.Fprintf(&body, "var l%d = 0;\n", i)
	}
	src := "fn f() {\n" + body.String() + "};"
	l := lexer.New(src)
	p := parser.New(l, "<test>")
	prog, perr := p.Parse()
	require.Nil(t, perr)

	c := New(intern.New())
	_, err := c.CompileModule(prog, "<test>", "<test>")
	require.Error(t, err, "a function declaring more locals than a u8 operand can address must fail to compile")
}

// readOps decodes a chunk's instruction stream into bare opcodes,
// skipping over each opcode's declared operand width.
func readOps(t *testing.T, code []byte) []opcode.Op {
	t.Helper()
	var ops []opcode.Op
	i := 0
	for i < len(code) {
		op := opcode.Op(code[i])
		ops = append(ops, op)
		i += opcode.Width(op)
	}
	return ops
}
