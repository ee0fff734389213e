package compiler

import (
	"github.com/daivm/dai/ast"
	"github.com/daivm/dai/opcode"
	"github.com/daivm/dai/symbols"
	"github.com/daivm/dai/token"
)

// compileClassStatement compiles a class body into a sequence of
// instructions that build up one Class value on the stack: Class
// creates it, Inherit (if there is a superclass) links it before any
// field is defined so instance-field layout stays parent-first, then
// each member emits its own Define*/Class* instruction against the
// Class value still sitting on top of the stack (spec §4.4, §8).
func (c *Compiler) compileClassStatement(s *ast.ClassStatement) error {
	c.emitU16(opcode.Class, c.internString(s.Name), s.Pos())

	if s.Parent != nil {
		if err := c.compileExpression(s.Parent); err != nil {
			return err
		}
		c.emit(opcode.Inherit, s.Pos())
	}

	for _, m := range s.Members {
		if err := c.compileClassMember(s.Name, m); err != nil {
			return err
		}
	}
	c.emit(opcode.End, s.Pos())

	st := c.scope().symbols
	var sym symbols.Symbol
	if existing, ok := st.Resolve(s.Name); ok && existing.Scope == symbols.Global {
		sym = existing
	} else {
		sym = st.Define(s.Name)
	}
	if err := c.checkSlot(sym, s.Pos()); err != nil {
		return err
	}
	c.defineSymbol(sym, s.Pos())
	return nil
}

func (c *Compiler) compileClassMember(className string, m ast.ClassMember) error {
	switch m.Kind {
	case ast.InstanceField:
		if err := c.compileFieldDefault(m.Default, m.Position); err != nil {
			return err
		}
		c.emitU16U8(opcode.DefineField, c.internString(m.Name), boolToU8(m.IsConst), m.Position)
	case ast.ClassField:
		if err := c.compileFieldDefault(m.Default, m.Position); err != nil {
			return err
		}
		c.emitU16U8(opcode.DefineClassField, c.internString(m.Name), boolToU8(m.IsConst), m.Position)
	case ast.InstanceMethod:
		if _, err := c.compileFunctionLiteral(m.Method, className+"."+m.Name, true); err != nil {
			return err
		}
		c.emitU16(opcode.DefineMethod, c.internString(m.Name), m.Position)
	case ast.ClassMethod:
		if _, err := c.compileFunctionLiteral(m.Method, className+"."+m.Name, false); err != nil {
			return err
		}
		c.emitU16(opcode.DefineClassMethod, c.internString(m.Name), m.Position)
	}
	return nil
}

// compileFieldDefault pushes def's value, or Undefined when the field
// declared no default expression (spec §8: undefined default still needs a
// slot), so the post-__init__ check can tell the field was never set.
func (c *Compiler) compileFieldDefault(def ast.Expression, pos token.Position) error {
	if def == nil {
		c.emit(opcode.Undefined, pos)
		return nil
	}
	return c.compileExpression(def)
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
