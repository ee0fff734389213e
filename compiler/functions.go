package compiler

import (
	"github.com/daivm/dai/ast"
	"github.com/daivm/dai/object"
	"github.com/daivm/dai/opcode"
	"github.com/daivm/dai/symbols"
)

// compileFunctionStatement desugars `fn name(...) {...}` into binding a
// function-literal value to name in the enclosing scope, predefining
// name first so direct (non-closure) recursion through a global or
// module-level binding resolves on the very first call.
func (c *Compiler) compileFunctionStatement(s *ast.FunctionStatement) error {
	st := c.scope().symbols
	var sym symbols.Symbol
	if existing, ok := st.Resolve(s.Name); ok && existing.Scope == symbols.Global {
		sym = existing // already predefined by predefineGlobals
	} else {
		sym = st.Define(s.Name)
	}
	if err := c.checkSlot(sym, s.Pos()); err != nil {
		return err
	}
	if _, err := c.compileFunctionLiteral(s.Fn, s.Name, false); err != nil {
		return err
	}
	c.defineSymbol(sym, s.Pos())
	return nil
}

// compileFunctionLiteral compiles fn's body in a fresh function scope,
// then emits the free-variable loads and Closure instruction in the
// enclosing scope. name is used only for diagnostics/String(); it is ""
// for anonymous function-literal expressions. withSelf defines "self" at
// local slot 0 before the declared parameters, for instance methods.
func (c *Compiler) compileFunctionLiteral(fn *ast.FunctionLiteral, name string, withSelf bool) (*object.Function, error) {
	outer := c.scope()
	funcScope := c.pushScope(symbols.NewFunction(outer.symbols))

	if withSelf {
		funcScope.symbols.DefineSelf()
	}
	for _, p := range fn.Params {
		sym := funcScope.symbols.Define(p.Name)
		if err := c.checkSlot(sym, fn.Pos()); err != nil {
			c.popScope()
			return nil, err
		}
	}
	if err := c.compileBlockStatement(fn.Body); err != nil {
		c.popScope()
		return nil, err
	}
	// Every function body falls through to an implicit `return;` if its
	// last statement wasn't itself a return.
	c.emit(opcode.Return, fn.Pos())

	compiled := c.popScope()

	fnObj := object.NewFunction(name, c.filename)
	fnObj.Chunk = compiled.chunk
	fnObj.HasSelf = withSelf
	fnObj.MaxLocals = compiled.symbols.Count() + len(compiled.symbols.FreeSymbols)
	fnObj.Params = make([]object.Param, len(fn.Params))
	fnObj.Defaults = make([]object.Value, len(fn.Params))
	for i, p := range fn.Params {
		fnObj.Params[i] = object.Param{Name: p.Name, HasDefault: p.Default != nil}
	}

	constIdx := c.addConstant(object.Obj(fnObj))
	for _, free := range compiled.symbols.FreeSymbols {
		c.loadSymbol(free, fn.Pos())
	}
	c.emitU16U8(opcode.Closure, constIdx, uint8(len(compiled.symbols.FreeSymbols)), fn.Pos())

	for i, p := range fn.Params {
		if p.Default == nil {
			continue
		}
		if err := c.compileExpression(p.Default); err != nil {
			return nil, err
		}
		c.emitU8(opcode.SetFunctionDefault, uint8(i), fn.Pos())
	}

	return fnObj, nil
}
