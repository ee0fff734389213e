package object

import (
	"fmt"

	"github.com/daivm/dai/bytecode"
)

// Module is a compiled script file: its own dense global-slot array, a
// name->slot index, and the chunk that initializes it (spec §3.2, §4.6).
type Module struct {
	Header
	Name     string
	Filename string
	Chunk    *bytecode.Chunk
	Globals  []Value
	Slots    map[string]int
	Compiled bool
}

func NewModule(name, filename string) *Module {
	return &Module{
		Header:   Header{kind: ObjModule},
		Name:     name,
		Filename: filename,
		Chunk:    bytecode.NewChunk(),
		Slots:    make(map[string]int),
	}
}

// DefineGlobal reserves (or returns the existing) slot index for name,
// growing Globals with Undefined until the index exists. Used by the
// compiler's two-phase global predefinition (spec §4.3).
func (m *Module) DefineGlobal(name string) int {
	if idx, ok := m.Slots[name]; ok {
		return idx
	}
	idx := len(m.Globals)
	m.Slots[name] = idx
	m.Globals = append(m.Globals, Undefined)
	return idx
}

func (m *Module) Ops() *Operations { return moduleOps }

var moduleOps = &Operations{
	GetProperty: func(self HeapObject, name string) (Value, error) {
		m := self.(*Module)
		idx, ok := m.Slots[name]
		if !ok {
			return Value{}, propertyNotFound(m.Name, name)
		}
		v := m.Globals[idx]
		if v.IsUndefined() {
			// Circular import still executing: the other module's
			// globals slot exists but hasn't been written yet.
			return Value{}, propertyNotFound(m.Name, name)
		}
		return v, nil
	},
	String: func(self HeapObject, depth int) string {
		return fmt.Sprintf("<module %s>", self.(*Module).Name)
	},
}
