package compiler

import (
	"github.com/daivm/dai/ast"
	"github.com/daivm/dai/opcode"
	"github.com/daivm/dai/symbols"
	"github.com/daivm/dai/token"
)

func (c *Compiler) compileStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		return c.compileVarStatement(s)
	case *ast.AssignStatement:
		return c.compileAssignStatement(s)
	case *ast.ReturnStatement:
		return c.compileReturnStatement(s)
	case *ast.BlockStatement:
		return c.compileBlockStatement(s)
	case *ast.IfStatement:
		return c.compileIfStatement(s)
	case *ast.WhileStatement:
		return c.compileWhileStatement(s)
	case *ast.ForInStatement:
		return c.compileForInStatement(s)
	case *ast.BreakStatement:
		return c.compileBreakStatement(s)
	case *ast.ContinueStatement:
		return c.compileContinueStatement(s)
	case *ast.ExpressionStatement:
		if err := c.compileExpression(s.Expression); err != nil {
			return err
		}
		c.emit(opcode.Pop, s.Pos())
		return nil
	case *ast.FunctionStatement:
		return c.compileFunctionStatement(s)
	case *ast.ClassStatement:
		return c.compileClassStatement(s)
	default:
		return c.errorf(stmt.Pos(), "compiler: unsupported statement %T", stmt)
	}
}

func (c *Compiler) compileVarStatement(s *ast.VarStatement) error {
	if s.Value != nil {
		if err := c.compileExpression(s.Value); err != nil {
			return err
		}
	} else {
		c.emit(opcode.Nil, s.Pos())
	}

	st := c.scope().symbols
	var sym symbols.Symbol
	if s.IsConst {
		sym = st.DefineConst(s.Name)
	} else {
		sym = st.Define(s.Name)
	}
	if err := c.checkSlot(sym, s.Pos()); err != nil {
		return err
	}
	c.defineSymbol(sym, s.Pos())
	return nil
}

// defineSymbol stores the value currently on top of the stack into sym's
// slot, using the "this is the first binding" opcode variant.
func (c *Compiler) defineSymbol(sym symbols.Symbol, pos token.Position) {
	switch sym.Scope {
	case symbols.Global:
		c.emitU16(opcode.DefineGlobal, uint16(sym.Index), pos)
	default:
		c.emitU8(opcode.SetLocal, uint8(sym.Index), pos)
	}
}

func (c *Compiler) compileAssignStatement(s *ast.AssignStatement) error {
	if s.Operator != "=" {
		return c.compileCompoundAssign(s)
	}
	if err := c.compileExpression(s.Value); err != nil {
		return err
	}
	return c.compileStoreTarget(s.Target, s.Pos())
}

// compileCompoundAssign desugars `target += value` into a plain load,
// infix add, and store, so the VM only ever needs the simple Add/Sub/
// Mul/Div opcodes and one store path.
func (c *Compiler) compileCompoundAssign(s *ast.AssignStatement) error {
	if err := c.compileExpression(s.Target); err != nil {
		return err
	}
	if err := c.compileExpression(s.Value); err != nil {
		return err
	}
	switch s.Operator {
	case "+=":
		c.emit(opcode.Add, s.Pos())
	case "-=":
		c.emit(opcode.Sub, s.Pos())
	case "*=":
		c.emit(opcode.Mul, s.Pos())
	case "/=":
		c.emit(opcode.Div, s.Pos())
	default:
		return c.errorf(s.Pos(), "compiler: unsupported compound assignment operator %q", s.Operator)
	}
	return c.compileStoreTarget(s.Target, s.Pos())
}

// compileStoreTarget stores the value on top of the stack into target,
// which must be an identifier, a.b property, or a[i] subscript.
func (c *Compiler) compileStoreTarget(target ast.Expression, pos token.Position) error {
	switch t := target.(type) {
	case *ast.Identifier:
		sym, ok := c.scope().symbols.Resolve(t.Name)
		if !ok {
			return c.errorf(t.Pos(), "undefined variable %q", t.Name)
		}
		return c.storeSymbol(sym, t.Pos())
	case *ast.DotExpression:
		// Value is already on the stack (pushed by the caller); push the
		// object on top of it so SetProperty pops object then value.
		if _, isSelf := t.Object.(*ast.SelfExpression); isSelf {
			c.emitU16(opcode.SetSelfProperty, c.internString(t.Name), pos)
			return nil
		}
		if err := c.compileExpression(t.Object); err != nil {
			return err
		}
		c.emitU16(opcode.SetProperty, c.internString(t.Name), pos)
		return nil
	case *ast.IndexExpression:
		// Stack ends up [value, collection, index]; SubscriptSet pops
		// index, then collection, then value.
		if err := c.compileExpression(t.Collection); err != nil {
			return err
		}
		if err := c.compileExpression(t.Index); err != nil {
			return err
		}
		c.emit(opcode.SubscriptSet, pos)
		return nil
	default:
		return c.errorf(pos, "compiler: invalid assignment target")
	}
}

func (c *Compiler) storeSymbol(sym symbols.Symbol, pos token.Position) error {
	switch sym.Scope {
	case symbols.Global:
		if sym.IsConst {
			return c.errorf(pos, "cannot assign to const %q", sym.Name)
		}
		c.emitU16(opcode.SetGlobal, uint16(sym.Index), pos)
	case symbols.Local, symbols.SelfScope:
		if sym.IsConst {
			return c.errorf(pos, "cannot assign to const %q", sym.Name)
		}
		c.emitU8(opcode.SetLocal, uint8(sym.Index), pos)
	case symbols.Free:
		return c.errorf(pos, "cannot assign to %q, captured from an enclosing function", sym.Name)
	case symbols.Builtin:
		return c.errorf(pos, "cannot assign to builtin %q", sym.Name)
	}
	return nil
}

func (c *Compiler) compileReturnStatement(s *ast.ReturnStatement) error {
	if s.Value == nil {
		c.emit(opcode.Return, s.Pos())
		return nil
	}
	if err := c.compileExpression(s.Value); err != nil {
		return err
	}
	c.emit(opcode.ReturnValue, s.Pos())
	return nil
}

func (c *Compiler) compileBlockStatement(s *ast.BlockStatement) error {
	for _, stmt := range s.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileIfStatement(s *ast.IfStatement) error {
	if err := c.compileExpression(s.Condition); err != nil {
		return err
	}
	elseJump := c.emitJump(opcode.JumpIfFalse, s.Pos())
	if err := c.compileBlockStatement(s.Then); err != nil {
		return err
	}
	endJumps := []int{c.emitJump(opcode.Jump, s.Pos())}
	c.patchJump(elseJump)

	for _, elif := range s.Elifs {
		if err := c.compileExpression(elif.Condition); err != nil {
			return err
		}
		next := c.emitJump(opcode.JumpIfFalse, elif.Body.Pos())
		if err := c.compileBlockStatement(elif.Body); err != nil {
			return err
		}
		endJumps = append(endJumps, c.emitJump(opcode.Jump, elif.Body.Pos()))
		c.patchJump(next)
	}

	if s.Else != nil {
		if err := c.compileBlockStatement(s.Else); err != nil {
			return err
		}
	}
	for _, j := range endJumps {
		c.patchJump(j)
	}
	return nil
}

func (c *Compiler) compileWhileStatement(s *ast.WhileStatement) error {
	loopStart := c.scope().chunk.Len()
	if err := c.compileExpression(s.Condition); err != nil {
		return err
	}
	exitJump := c.emitJump(opcode.JumpIfFalse, s.Pos())

	c.scope().pushLoop(loopStart)
	if err := c.compileBlockStatement(s.Body); err != nil {
		return err
	}
	lc := c.scope().currentLoop()
	c.scope().popLoop()

	c.emitLoopBack(loopStart, s.Pos())
	c.patchJump(exitJump)
	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}
	return nil
}

// compileForInStatement lowers `for (index, elem in iterable) body` onto
// the iterator opcode pair: IterInit allocates an iterator object into a
// fixed local slot, IterNext advances it each pass and jumps past the
// loop once exhausted (spec §4.4 for-in lowering).
func (c *Compiler) compileForInStatement(s *ast.ForInStatement) error {
	if err := c.compileExpression(s.Iterable); err != nil {
		return err
	}
	st := c.scope().symbols
	iterSym := st.Define(forInIteratorSlotName(s))
	if err := c.checkSlot(iterSym, s.Pos()); err != nil {
		return err
	}
	c.emitU8(opcode.SetLocal, uint8(iterSym.Index), s.Pos())
	c.emitU8(opcode.IterInit, uint8(iterSym.Index), s.Pos())

	indexSym := st.Define(s.IndexName)
	if err := c.checkSlot(indexSym, s.Pos()); err != nil {
		return err
	}
	elemSym := st.Define(s.ElemName)
	if err := c.checkSlot(elemSym, s.Pos()); err != nil {
		return err
	}

	loopStart := c.scope().chunk.Len()
	c.emit(opcode.IterNext, s.Pos())
	c.scope().chunk.WriteU8(uint8(iterSym.Index), s.Pos().StartLine)
	exitPlaceholder := c.scope().chunk.Len()
	c.scope().chunk.WriteU16(0xFFFF, s.Pos().StartLine)
	// IterNext pushes index then elem on success, so elem sits on top;
	// pop it first.
	c.emitU8(opcode.SetLocal, uint8(elemSym.Index), s.Pos())
	c.emitU8(opcode.SetLocal, uint8(indexSym.Index), s.Pos())

	c.scope().pushLoop(loopStart)
	if err := c.compileBlockStatement(s.Body); err != nil {
		return err
	}
	lc := c.scope().currentLoop()
	c.scope().popLoop()

	c.emitLoopBack(loopStart, s.Pos())
	c.patchJump(exitPlaceholder)
	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}
	return nil
}

func forInIteratorSlotName(s *ast.ForInStatement) string {
	return "$iter:" + s.IndexName + ":" + s.ElemName
}

func (c *Compiler) compileBreakStatement(s *ast.BreakStatement) error {
	lc := c.scope().currentLoop()
	if lc == nil {
		return c.errorf(s.Pos(), "break outside of a loop")
	}
	j := c.emitJump(opcode.Jump, s.Pos())
	lc.breakJumps = append(lc.breakJumps, j)
	return nil
}

func (c *Compiler) compileContinueStatement(s *ast.ContinueStatement) error {
	lc := c.scope().currentLoop()
	if lc == nil {
		return c.errorf(s.Pos(), "continue outside of a loop")
	}
	c.emitLoopBack(lc.continueTarget, s.Pos())
	return nil
}
