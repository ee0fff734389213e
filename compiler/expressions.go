package compiler

import (
	"github.com/daivm/dai/ast"
	"github.com/daivm/dai/object"
	"github.com/daivm/dai/opcode"
	"github.com/daivm/dai/symbols"
	"github.com/daivm/dai/token"
)

func (c *Compiler) compileExpression(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		c.emitU16(opcode.Constant, c.addConstant(object.Int(e.Value)), e.Pos())
		return nil
	case *ast.FloatLiteral:
		c.emitU16(opcode.Constant, c.addConstant(object.Float(e.Value)), e.Pos())
		return nil
	case *ast.StringLiteral:
		c.emitU16(opcode.Constant, c.internString(e.Value), e.Pos())
		return nil
	case *ast.BoolLiteral:
		if e.Value {
			c.emit(opcode.True, e.Pos())
		} else {
			c.emit(opcode.False, e.Pos())
		}
		return nil
	case *ast.NilLiteral:
		c.emit(opcode.Nil, e.Pos())
		return nil
	case *ast.Identifier:
		sym, ok := c.scope().symbols.Resolve(e.Name)
		if !ok {
			return c.errorf(e.Pos(), "undefined variable %q", e.Name)
		}
		c.loadSymbol(sym, e.Pos())
		return nil
	case *ast.SelfExpression:
		sym, ok := c.scope().symbols.Resolve("self")
		if !ok {
			return c.errorf(e.Pos(), "self used outside of a method")
		}
		c.loadSymbol(sym, e.Pos())
		return nil
	case *ast.SuperExpression:
		c.emitU16(opcode.GetSuperProperty, c.internString(e.Name), e.Pos())
		return nil
	case *ast.PrefixExpression:
		return c.compilePrefixExpression(e)
	case *ast.InfixExpression:
		return c.compileInfixExpression(e)
	case *ast.CallExpression:
		return c.compileCallExpression(e)
	case *ast.DotExpression:
		return c.compileDotExpression(e)
	case *ast.IndexExpression:
		if err := c.compileExpression(e.Collection); err != nil {
			return err
		}
		if err := c.compileExpression(e.Index); err != nil {
			return err
		}
		c.emit(opcode.Subscript, e.Pos())
		return nil
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			if err := c.compileExpression(el); err != nil {
				return err
			}
		}
		c.emitU16(opcode.Array, uint16(len(e.Elements)), e.Pos())
		return nil
	case *ast.MapLiteral:
		for _, p := range e.Pairs {
			if err := c.compileExpression(p.Key); err != nil {
				return err
			}
			if err := c.compileExpression(p.Value); err != nil {
				return err
			}
		}
		c.emitU16(opcode.Map, uint16(len(e.Pairs)), e.Pos())
		return nil
	case *ast.TupleLiteral:
		for _, el := range e.Elements {
			if err := c.compileExpression(el); err != nil {
				return err
			}
		}
		c.emitU16(opcode.TupleOp, uint16(len(e.Elements)), e.Pos())
		return nil
	case *ast.FunctionLiteral:
		_, err := c.compileFunctionLiteral(e, "", false)
		return err
	default:
		return c.errorf(expr.Pos(), "compiler: unsupported expression %T", expr)
	}
}

func (c *Compiler) loadSymbol(sym symbols.Symbol, pos token.Position) {
	switch sym.Scope {
	case symbols.Global:
		c.emitU16(opcode.GetGlobal, uint16(sym.Index), pos)
	case symbols.Local, symbols.SelfScope:
		c.emitU8(opcode.GetLocal, uint8(sym.Index), pos)
	case symbols.Free:
		c.emitU8(opcode.GetFree, uint8(sym.Index), pos)
	case symbols.Builtin:
		c.emitU8(opcode.GetBuiltin, uint8(sym.Index), pos)
	}
}

func (c *Compiler) compilePrefixExpression(e *ast.PrefixExpression) error {
	if err := c.compileExpression(e.Right); err != nil {
		return err
	}
	switch e.Operator {
	case "-":
		c.emit(opcode.Minus, e.Pos())
	case "!", "not":
		c.emit(opcode.Bang, e.Pos())
	case "~":
		c.emit(opcode.BitwiseNot, e.Pos())
	default:
		return c.errorf(e.Pos(), "compiler: unsupported prefix operator %q", e.Operator)
	}
	return nil
}

// compileInfixExpression emits the short-circuiting AndJump/OrJump pair
// for and/or (the right operand is compiled lazily, only if needed) and
// plain stack ops for everything else.
func (c *Compiler) compileInfixExpression(e *ast.InfixExpression) error {
	if e.Operator == "and" || e.Operator == "or" {
		return c.compileLogicalExpression(e)
	}

	// a < b and a <= b reuse the GreaterThan/GreaterEqualThan opcodes
	// with operands swapped, so the VM only implements one direction.
	if e.Operator == "<" || e.Operator == "<=" {
		if err := c.compileExpression(e.Right); err != nil {
			return err
		}
		if err := c.compileExpression(e.Left); err != nil {
			return err
		}
		if e.Operator == "<" {
			c.emit(opcode.GreaterThan, e.Pos())
		} else {
			c.emit(opcode.GreaterEqualThan, e.Pos())
		}
		return nil
	}

	if err := c.compileExpression(e.Left); err != nil {
		return err
	}
	if err := c.compileExpression(e.Right); err != nil {
		return err
	}
	switch e.Operator {
	case "+":
		c.emit(opcode.Add, e.Pos())
	case "-":
		c.emit(opcode.Sub, e.Pos())
	case "*":
		c.emit(opcode.Mul, e.Pos())
	case "/":
		c.emit(opcode.Div, e.Pos())
	case "%":
		c.emit(opcode.Mod, e.Pos())
	case "==":
		c.emit(opcode.Equal, e.Pos())
	case "!=":
		c.emit(opcode.NotEqual, e.Pos())
	case ">":
		c.emit(opcode.GreaterThan, e.Pos())
	case ">=":
		c.emit(opcode.GreaterEqualThan, e.Pos())
	case "&":
		c.emitU8(opcode.Binary, uint8(opcode.BinAnd), e.Pos())
	case "|":
		c.emitU8(opcode.Binary, uint8(opcode.BinOr), e.Pos())
	case "^":
		c.emitU8(opcode.Binary, uint8(opcode.BinXor), e.Pos())
	case "<<":
		c.emitU8(opcode.Binary, uint8(opcode.BinShl), e.Pos())
	case ">>":
		c.emitU8(opcode.Binary, uint8(opcode.BinShr), e.Pos())
	default:
		return c.errorf(e.Pos(), "compiler: unsupported infix operator %q", e.Operator)
	}
	return nil
}

func (c *Compiler) compileLogicalExpression(e *ast.InfixExpression) error {
	if err := c.compileExpression(e.Left); err != nil {
		return err
	}
	var jump int
	if e.Operator == "and" {
		jump = c.emitJump(opcode.AndJump, e.Pos())
	} else {
		jump = c.emitJump(opcode.OrJump, e.Pos())
	}
	c.emit(opcode.Pop, e.Pos())
	if err := c.compileExpression(e.Right); err != nil {
		return err
	}
	c.patchJump(jump)
	return nil
}

// compileCallExpression picks the cheapest call opcode for the callee
// shape: a bare name is a plain Call, obj.method(...) a CallMethod,
// self.method(...) a CallSelfMethod (skips re-pushing self), and
// super.method(...) a CallSuperMethod.
func (c *Compiler) compileCallExpression(e *ast.CallExpression) error {
	switch callee := e.Callee.(type) {
	case *ast.DotExpression:
		if _, isSelf := callee.Object.(*ast.SelfExpression); isSelf {
			if err := c.compileArgs(e.Args); err != nil {
				return err
			}
			c.emitU16U8(opcode.CallSelfMethod, c.internString(callee.Name), uint8(len(e.Args)), e.Pos())
			return nil
		}
		if err := c.compileExpression(callee.Object); err != nil {
			return err
		}
		if err := c.compileArgs(e.Args); err != nil {
			return err
		}
		c.emitU16U8(opcode.CallMethod, c.internString(callee.Name), uint8(len(e.Args)), e.Pos())
		return nil
	case *ast.SuperExpression:
		if err := c.compileArgs(e.Args); err != nil {
			return err
		}
		c.emitU16U8(opcode.CallSuperMethod, c.internString(callee.Name), uint8(len(e.Args)), e.Pos())
		return nil
	default:
		if err := c.compileExpression(e.Callee); err != nil {
			return err
		}
		if err := c.compileArgs(e.Args); err != nil {
			return err
		}
		c.emitU8(opcode.Call, uint8(len(e.Args)), e.Pos())
		return nil
	}
}

func (c *Compiler) compileArgs(args []ast.Expression) error {
	for _, a := range args {
		if err := c.compileExpression(a); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileDotExpression(e *ast.DotExpression) error {
	if _, isSelf := e.Object.(*ast.SelfExpression); isSelf {
		c.emitU16(opcode.GetSelfProperty, c.internString(e.Name), e.Pos())
		return nil
	}
	if err := c.compileExpression(e.Object); err != nil {
		return err
	}
	c.emitU16(opcode.GetProperty, c.internString(e.Name), e.Pos())
	return nil
}
