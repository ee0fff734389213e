package parser

import (
	"testing"

	"github.com/daivm/dai/ast"
	"github.com/daivm/dai/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l, "<test>")
	prog, err := p.Parse()
	require.Nil(t, err, "unexpected parse error: %v", err)
	return prog
}

func TestParse_ArithmeticPrecedence(t *testing.T) {
	prog := parseProgram(t, "1 + 2 * 3 - 4 / 2;")
	require.Len(t, prog.Statements, 1)
	stmt, ok := prog.Statements[0].(*ast.ExpressionStatement)
	require.True(t, ok)
	assert.Equal(t, "((1 + (2 * 3)) - (4 / 2))", stmt.Expression.String())
}

func TestParse_ComparisonIsLowerThanSum(t *testing.T) {
	prog := parseProgram(t, "1 + 2 < 3 * 4;")
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	assert.Equal(t, "((1 + 2) < (3 * 4))", stmt.Expression.String())
}

func TestParse_LogicalPrecedence(t *testing.T) {
	prog := parseProgram(t, "a or b and c;")
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	assert.Equal(t, "(a or (b and c))", stmt.Expression.String())
}

func TestParse_NotBangAliasing(t *testing.T) {
	prog := parseProgram(t, "not a; !a;")
	require.Len(t, prog.Statements, 2)
	s0 := prog.Statements[0].(*ast.ExpressionStatement)
	s1 := prog.Statements[1].(*ast.ExpressionStatement)
	assert.Equal(t, "(nota)", s0.Expression.String())
	assert.Equal(t, "(!a)", s1.Expression.String())
}

func TestParse_AndOrAliasing(t *testing.T) {
	prog := parseProgram(t, "a && b; a || b;")
	s0 := prog.Statements[0].(*ast.ExpressionStatement)
	s1 := prog.Statements[1].(*ast.ExpressionStatement)
	assert.Equal(t, "(a and b)", s0.Expression.String())
	assert.Equal(t, "(a or b)", s1.Expression.String())
}

func TestParse_VarStatement(t *testing.T) {
	prog := parseProgram(t, "var x = 5; con y = 10; var z;")
	require.Len(t, prog.Statements, 3)

	s0 := prog.Statements[0].(*ast.VarStatement)
	assert.Equal(t, "x", s0.Name)
	assert.False(t, s0.IsConst)
	require.NotNil(t, s0.Value)

	s1 := prog.Statements[1].(*ast.VarStatement)
	assert.Equal(t, "y", s1.Name)
	assert.True(t, s1.IsConst)

	s2 := prog.Statements[2].(*ast.VarStatement)
	assert.Nil(t, s2.Value)
}

func TestParse_CompoundAssignment(t *testing.T) {
	prog := parseProgram(t, "x += 1; y.z -= 2; arr[0] *= 3;")
	require.Len(t, prog.Statements, 3)
	for i, want := range []string{"+=", "-=", "*="} {
		s := prog.Statements[i].(*ast.AssignStatement)
		assert.Equal(t, want, s.Operator)
	}
}

func TestParse_IfElifElse(t *testing.T) {
	prog := parseProgram(t, `
		if (x > 0) {
			return 1;
		} elif (x < 0) {
			return -1;
		} else {
			return 0;
		};
	`)
	require.Len(t, prog.Statements, 1)
	stmt, ok := prog.Statements[0].(*ast.IfStatement)
	require.True(t, ok)
	require.Len(t, stmt.Elifs, 1)
	require.NotNil(t, stmt.Else)
}

func TestParse_WhileBreakContinue(t *testing.T) {
	prog := parseProgram(t, `
		while (true) {
			break;
			continue;
		};
	`)
	stmt, ok := prog.Statements[0].(*ast.WhileStatement)
	require.True(t, ok)
	require.Len(t, stmt.Body.Statements, 2)
	_, isBreak := stmt.Body.Statements[0].(*ast.BreakStatement)
	_, isContinue := stmt.Body.Statements[1].(*ast.ContinueStatement)
	assert.True(t, isBreak)
	assert.True(t, isContinue)
}

func TestParse_ForIn(t *testing.T) {
	prog := parseProgram(t, `
		for (i, v in arr) {
			print(v);
		};
	`)
	stmt, ok := prog.Statements[0].(*ast.ForInStatement)
	require.True(t, ok)
	assert.Equal(t, "i", stmt.IndexName)
	assert.Equal(t, "v", stmt.ElemName)
}

func TestParse_FunctionStatementAndDefaults(t *testing.T) {
	prog := parseProgram(t, `
		fn fib(n) {
			if (n < 2) {
				return n;
			};
			return fib(n - 1) + fib(n - 2);
		};
	`)
	stmt, ok := prog.Statements[0].(*ast.FunctionStatement)
	require.True(t, ok)
	assert.Equal(t, "fib", stmt.Name)
	require.Len(t, stmt.Fn.Params, 1)
	assert.Equal(t, "n", stmt.Fn.Params[0].Name)
}

func TestParse_FunctionLiteralWithDefault(t *testing.T) {
	prog := parseProgram(t, "var f = fn(a, b = 10) { return a + b; };")
	s := prog.Statements[0].(*ast.VarStatement)
	fn, ok := s.Value.(*ast.FunctionLiteral)
	require.True(t, ok)
	require.Len(t, fn.Params, 2)
	assert.Nil(t, fn.Params[0].Default)
	require.NotNil(t, fn.Params[1].Default)
}

func TestParse_ClassWithInheritanceAndMembers(t *testing.T) {
	prog := parseProgram(t, `
		class Animal {
			var name = "";
			classvar count = 0;
			fn speak() {
				return "...";
			}
			classfn create() {
				return self;
			}
		};
		class Dog < Animal {
			fn speak() {
				return super.speak();
			}
		};
	`)
	require.Len(t, prog.Statements, 2)

	animal, ok := prog.Statements[0].(*ast.ClassStatement)
	require.True(t, ok)
	assert.Equal(t, "Animal", animal.Name)
	assert.Nil(t, animal.Parent)
	require.Len(t, animal.Members, 4)
	assert.Equal(t, ast.InstanceField, animal.Members[0].Kind)
	assert.Equal(t, ast.ClassField, animal.Members[1].Kind)
	assert.Equal(t, ast.InstanceMethod, animal.Members[2].Kind)
	assert.Equal(t, ast.ClassMethod, animal.Members[3].Kind)

	dog, ok := prog.Statements[1].(*ast.ClassStatement)
	require.True(t, ok)
	require.NotNil(t, dog.Parent)
	ident, ok := dog.Parent.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "Animal", ident.Name)
}

func TestParse_ClassDuplicateMemberIsError(t *testing.T) {
	l := lexer.New(`
		class Foo {
			var x = 1;
			var x = 2;
		};
	`)
	p := New(l, "<test>")
	_, err := p.Parse()
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "duplicate class member")
}

func TestParse_ArrayAndMapLiterals(t *testing.T) {
	prog := parseProgram(t, `[1, 2, 3]; {"a": 1, "b": 2};`)
	require.Len(t, prog.Statements, 2)

	arrStmt := prog.Statements[0].(*ast.ExpressionStatement)
	arr, ok := arrStmt.Expression.(*ast.ArrayLiteral)
	require.True(t, ok)
	assert.Len(t, arr.Elements, 3)

	mapStmt := prog.Statements[1].(*ast.ExpressionStatement)
	m, ok := mapStmt.Expression.(*ast.MapLiteral)
	require.True(t, ok)
	assert.Len(t, m.Pairs, 2)
}

func TestParse_GroupingVsTuple(t *testing.T) {
	prog := parseProgram(t, "(1 + 2); (1, 2, 3); ();")
	require.Len(t, prog.Statements, 3)

	s0 := prog.Statements[0].(*ast.ExpressionStatement)
	_, isInfix := s0.Expression.(*ast.InfixExpression)
	assert.True(t, isInfix, "parenthesized single expression should not become a tuple")

	s1 := prog.Statements[1].(*ast.ExpressionStatement)
	tup, ok := s1.Expression.(*ast.TupleLiteral)
	require.True(t, ok)
	assert.Len(t, tup.Elements, 3)

	s2 := prog.Statements[2].(*ast.ExpressionStatement)
	empty, ok := s2.Expression.(*ast.TupleLiteral)
	require.True(t, ok)
	assert.Len(t, empty.Elements, 0)
}

func TestParse_SubscriptAndDotChains(t *testing.T) {
	prog := parseProgram(t, "a.b.c[0](1, 2);")
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	call, ok := stmt.Expression.(*ast.CallExpression)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	idx, ok := call.Callee.(*ast.IndexExpression)
	require.True(t, ok)
	dot, ok := idx.Collection.(*ast.DotExpression)
	require.True(t, ok)
	assert.Equal(t, "c", dot.Name)
}

func TestParse_SelfAndSuper(t *testing.T) {
	prog := parseProgram(t, "self; super.init();")
	s0 := prog.Statements[0].(*ast.ExpressionStatement)
	_, ok := s0.Expression.(*ast.SelfExpression)
	assert.True(t, ok)

	s1 := prog.Statements[1].(*ast.ExpressionStatement)
	call := s1.Expression.(*ast.CallExpression)
	sup, ok := call.Callee.(*ast.SuperExpression)
	require.True(t, ok)
	assert.Equal(t, "init", sup.Name)
}

func TestParse_BitwiseAndShiftOperators(t *testing.T) {
	prog := parseProgram(t, "a & b | c ^ d; a << 2 >> 1; ~a;")
	require.Len(t, prog.Statements, 3)
	s0 := prog.Statements[0].(*ast.ExpressionStatement)
	assert.Equal(t, "((a & b) | (c ^ d))", s0.Expression.String())
}

func TestParse_NodePositionsArePopulated(t *testing.T) {
	prog := parseProgram(t, "var x = 1 + 2;")
	s := prog.Statements[0].(*ast.VarStatement)
	assert.Equal(t, 1, s.Pos().StartLine)
	infix := s.Value.(*ast.InfixExpression)
	assert.NotZero(t, infix.Pos().StartLine)
	assert.NotZero(t, infix.Left.Pos().StartLine)
}

func TestParse_MissingSemicolonIsSyntaxError(t *testing.T) {
	l := lexer.New("var x = 1")
	p := New(l, "main.dai")
	_, err := p.Parse()
	require.NotNil(t, err)
	assert.Equal(t, "main.dai", err.Filename)
}

func TestParse_BreakOutsideLoopStillParses(t *testing.T) {
	// Break/continue outside a loop is a *compiler* error per the control
	// flow design, not a parser-level one; the parser only builds the node.
	prog := parseProgram(t, "break;")
	_, ok := prog.Statements[0].(*ast.BreakStatement)
	assert.True(t, ok)
}
