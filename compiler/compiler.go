// Package compiler turns a dai AST into bytecode: one *object.Module per
// compiled file, with nested *object.Function constants for every function
// and method literal encountered along the way (spec §4.4).
package compiler

import (
	"fmt"

	"github.com/daivm/dai/ast"
	"github.com/daivm/dai/daierr"
	"github.com/daivm/dai/intern"
	"github.com/daivm/dai/object"
	"github.com/daivm/dai/opcode"
	"github.com/daivm/dai/symbols"
	"github.com/daivm/dai/token"
)

// Compiler walks one Program and produces a *object.Module. Each nested
// function/method literal pushes a fresh scope onto scopes and pops it
// back off once its body is compiled, mirroring the teacher's own
// CompileContext parent-chain but emitting stack-machine bytecode
// instead of register-based instructions.
type Compiler struct {
	module   *object.Module
	scopes   []*scope
	intern   *intern.Table
	filename string
	builtins []builtinDef
}

// builtinDef records one name pre-bound to a VM builtins-slot index,
// installed into every module's top-level symbol table at compile time.
type builtinDef struct {
	index int
	name  string
}

// RegisterBuiltin predefines name as resolving to the VM builtins-slot
// index for every module this Compiler compiles from now on, mirroring
// the index handed back by VM.RegisterBuiltin (spec §4.6 built-in
// surface).
func (c *Compiler) RegisterBuiltin(index int, name string) {
	c.builtins = append(c.builtins, builtinDef{index: index, name: name})
}

// New creates a Compiler that interns its string constants through tbl,
// so a VM sharing the same table gets pointer-identical strings for
// free between separately compiled modules (spec §3.2 interning).
func New(tbl *intern.Table) *Compiler {
	return &Compiler{intern: tbl}
}

// CompileModule compiles an entire parsed file into a *object.Module
// ready for a VM to execute from offset 0 of its Chunk.
func (c *Compiler) CompileModule(prog *ast.Program, name, filename string) (*object.Module, error) {
	c.filename = filename
	c.module = object.NewModule(name, filename)
	top := newScope(symbols.New())
	c.scopes = []*scope{top}
	for _, b := range c.builtins {
		top.symbols.DefineBuiltin(b.index, b.name)
	}

	if err := c.predefineGlobals(prog.Statements); err != nil {
		return nil, err
	}

	for _, stmt := range prog.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return nil, err
		}
	}
	c.emit(opcode.Return, prog.Pos())

	c.module.Chunk = top.chunk
	return c.module, nil
}

// CompileREPLLine compiles prog as one more incremental statement batch
// against mod without resetting it, the way a REPL session keeps earlier
// `var`/`fn`/`class` declarations visible to every later line (SPEC_FULL
// §D). Every slot mod already defines is re-seeded into a fresh Table at
// its existing index; a name this batch redeclares reuses that same slot
// (last declaration wins, matching top-level reassignment) rather than
// allocating a new one alongside it. mod.Chunk is replaced with this
// line's bytecode; mod.Globals/Slots carry forward untouched except for
// whatever this line adds.
func (c *Compiler) CompileREPLLine(prog *ast.Program, mod *object.Module, filename string) error {
	c.filename = filename
	c.module = mod
	top := newScope(symbols.New())
	c.scopes = []*scope{top}
	for _, b := range c.builtins {
		top.symbols.DefineBuiltin(b.index, b.name)
	}
	for name, idx := range mod.Slots {
		top.symbols.DefineGlobalAt(idx, name, false)
	}

	if err := c.predefineGlobals(prog.Statements); err != nil {
		return err
	}

	for _, stmt := range prog.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	c.emit(opcode.Return, prog.Pos())

	mod.Chunk = top.chunk
	return nil
}

// predefineGlobals reserves a module-global slot for every top-level
// var/con/fn/class declaration before any statement is compiled, so
// forward references between globals (mutual recursion between two
// top-level functions, a class referencing one declared later) resolve
// correctly (spec §4.3 two-phase global predefinition).
func (c *Compiler) predefineGlobals(stmts []ast.Statement) error {
	g := c.scope().symbols
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VarStatement:
			if err := c.predefineGlobal(g, s.Name, s.IsConst, s.Pos()); err != nil {
				return err
			}
		case *ast.FunctionStatement:
			if err := c.predefineGlobal(g, s.Name, false, s.Pos()); err != nil {
				return err
			}
		case *ast.ClassStatement:
			if err := c.predefineGlobal(g, s.Name, false, s.Pos()); err != nil {
				return err
			}
		}
	}
	return nil
}

// predefineGlobal reserves name's module slot and symbol-table entry. A
// name already present in c.module's slots (an earlier REPL line's
// declaration being redeclared via CompileREPLLine) reuses that same
// index rather than allocating a new one alongside it; CompileModule's
// always-empty fresh module never hits that branch, so its behavior is
// unchanged.
func (c *Compiler) predefineGlobal(g *symbols.Table, name string, isConst bool, pos token.Position) error {
	if idx, ok := c.module.Slots[name]; ok {
		g.DefineGlobalAt(idx, name, isConst)
		return nil
	}
	var sym symbols.Symbol
	if isConst {
		sym = g.PredefineConst(name)
	} else {
		sym = g.Predefine(name)
	}
	if err := c.checkSlot(sym, pos); err != nil {
		return err
	}
	c.module.DefineGlobal(name)
	return nil
}

func (c *Compiler) scope() *scope { return c.scopes[len(c.scopes)-1] }

func (c *Compiler) pushScope(st *symbols.Table) *scope {
	s := newScope(st)
	c.scopes = append(c.scopes, s)
	return s
}

func (c *Compiler) popScope() *scope {
	s := c.scope()
	c.scopes = c.scopes[:len(c.scopes)-1]
	return s
}

func (c *Compiler) errorf(pos token.Position, format string, args ...interface{}) error {
	return &daierr.CompileError{
		Filename: c.filename,
		Line:     pos.StartLine,
		Column:   pos.StartCol,
		Message:  fmt.Sprintf(format, args...),
	}
}

// checkSlot rejects a symbol whose slot index overflowed the bytecode
// operand width for its scope (spec §4.3: 256 locals per function, 65536
// globals per module), instead of letting the caller emit an instruction
// whose u8/u16 operand silently wrapped onto the wrong slot.
func (c *Compiler) checkSlot(sym symbols.Symbol, pos token.Position) error {
	if !sym.Overflowed {
		return nil
	}
	switch sym.Scope {
	case symbols.Global:
		return c.errorf(pos, "too many global variables: %q exceeds the %d-global limit", sym.Name, symbols.MaxGlobals)
	default:
		return c.errorf(pos, "too many local variables: %q exceeds the %d-local limit for one function", sym.Name, symbols.MaxLocals)
	}
}

// ---- emission helpers ----

func (c *Compiler) emit(op opcode.Op, pos token.Position) int {
	s := c.scope()
	offset := s.chunk.WriteOp(op, pos.StartLine)
	s.previousOp, s.lastOp = s.lastOp, opcodeMarker{pos: offset, valid: true}
	return offset
}

func (c *Compiler) emitU8(op opcode.Op, operand uint8, pos token.Position) int {
	offset := c.emit(op, pos)
	c.scope().chunk.WriteU8(operand, pos.StartLine)
	return offset
}

func (c *Compiler) emitU16(op opcode.Op, operand uint16, pos token.Position) int {
	offset := c.emit(op, pos)
	c.scope().chunk.WriteU16(operand, pos.StartLine)
	return offset
}

func (c *Compiler) emitU16U8(op opcode.Op, a uint16, b uint8, pos token.Position) int {
	offset := c.emit(op, pos)
	ch := c.scope().chunk
	ch.WriteU16(a, pos.StartLine)
	ch.WriteU8(b, pos.StartLine)
	return offset
}

// emitJump emits a jump opcode with a placeholder u16 offset and returns
// the position of that placeholder, to be fed into patchJump once the
// real destination is known.
func (c *Compiler) emitJump(op opcode.Op, pos token.Position) int {
	c.emit(op, pos)
	ch := c.scope().chunk
	placeholder := ch.Len()
	ch.WriteU16(0xFFFF, pos.StartLine)
	return placeholder
}

// patchJump backfills a forward jump's placeholder offset with the
// distance from just past the placeholder to the chunk's current end.
func (c *Compiler) patchJump(placeholder int) {
	ch := c.scope().chunk
	dest := ch.Len() - (placeholder + 2)
	ch.PatchU16(placeholder, uint16(dest))
}

// emitLoopBack emits JumpBack with the backward distance to loopStart.
func (c *Compiler) emitLoopBack(loopStart int, pos token.Position) {
	c.emit(opcode.JumpBack, pos)
	ch := c.scope().chunk
	dist := ch.Len() + 2 - loopStart
	ch.WriteU16(uint16(dist), pos.StartLine)
}

func (c *Compiler) addConstant(v object.Value) uint16 {
	return c.scope().chunk.AddConstant(v)
}

// internString interns s and adds it as a constant, returning the u16
// index the caller embeds in a property/name-bearing instruction.
func (c *Compiler) internString(s string) uint16 {
	str := c.intern.Intern(s)
	return c.addConstant(object.Obj(str))
}
