package object

import "fmt"

// FieldDef describes one declared instance field's slot in the dense
// per-instance field array.
type FieldDef struct {
	Name    string
	IsConst bool
	Default Value
	Index   int
}

// ClassFieldSlot is a classvar: one value shared by the class itself and
// every instance, not duplicated per-instance.
type ClassFieldSlot struct {
	IsConst bool
	Value   Value
}

// Class is a dai class: its own field/method tables plus an optional
// parent for super lookups and instance-field inheritance (spec §3.2).
type Class struct {
	Header
	Name string

	Parent *Class

	InstanceFields     map[string]*FieldDef
	InstanceFieldOrder []string // declaration order, parent fields first

	ClassFields map[string]*ClassFieldSlot

	InstanceMethods map[string]*Closure
	ClassMethods    map[string]*Closure
}

func NewClass(name string, parent *Class) *Class {
	c := &Class{
		Header:          Header{kind: ObjClass},
		Name:            name,
		Parent:          parent,
		InstanceFields:  make(map[string]*FieldDef),
		ClassFields:     make(map[string]*ClassFieldSlot),
		InstanceMethods: make(map[string]*Closure),
		ClassMethods:    make(map[string]*Closure),
	}
	if parent != nil {
		// Inherit(): instance fields are laid out parent-first so a
		// subclass instance's leading slots line up with the parent's
		// own field layout (spec §8 inheritance invariant).
		for _, name := range parent.InstanceFieldOrder {
			def := *parent.InstanceFields[name]
			c.InstanceFields[name] = &def
			c.InstanceFieldOrder = append(c.InstanceFieldOrder, name)
		}
	}
	return c
}

// DefineInstanceField adds (or overrides, keeping its dense index) an
// instance field declared in this class's own body.
func (c *Class) DefineInstanceField(name string, isConst bool, def Value) {
	if existing, ok := c.InstanceFields[name]; ok {
		existing.IsConst = isConst
		existing.Default = def
		return
	}
	idx := len(c.InstanceFieldOrder)
	c.InstanceFields[name] = &FieldDef{Name: name, IsConst: isConst, Default: def, Index: idx}
	c.InstanceFieldOrder = append(c.InstanceFieldOrder, name)
}

func (c *Class) DefineClassField(name string, isConst bool, v Value) {
	c.ClassFields[name] = &ClassFieldSlot{IsConst: isConst, Value: v}
}

func (c *Class) DefineInstanceMethod(name string, fn *Closure) {
	fn.Fn.Superclass = c.Parent
	c.InstanceMethods[name] = fn
}

func (c *Class) DefineClassMethod(name string, fn *Closure) {
	fn.Fn.Superclass = c.Parent
	c.ClassMethods[name] = fn
}

// LookupInstanceMethod walks self then Parent chain for name.
func (c *Class) LookupInstanceMethod(name string) (*Closure, *Class) {
	for cur := c; cur != nil; cur = cur.Parent {
		if m, ok := cur.InstanceMethods[name]; ok {
			return m, cur
		}
	}
	return nil, nil
}

// LookupClassMethod walks self then Parent chain for name.
func (c *Class) LookupClassMethod(name string) (*Closure, *Class) {
	for cur := c; cur != nil; cur = cur.Parent {
		if m, ok := cur.ClassMethods[name]; ok {
			return m, cur
		}
	}
	return nil, nil
}

// Init returns __init__ from self or, absent, the nearest ancestor's
// (spec §8: subclass defaults to parent's __init__ when it declares none).
func (c *Class) Init() *Closure {
	m, _ := c.LookupInstanceMethod("__init__")
	return m
}

// FieldNames returns the user-declared instance field names in
// declaration order, the __fields__ built-in property.
func (c *Class) FieldNames() []string { return c.InstanceFieldOrder }

func (c *Class) Ops() *Operations { return classOps }

var classOps = &Operations{
	GetProperty: func(self HeapObject, name string) (Value, error) {
		c := self.(*Class)
		switch name {
		case "__name__":
			return Obj(NewString(c.Name, FNV1a32(c.Name))), nil
		case "__fields__":
			elems := make([]Value, len(c.InstanceFieldOrder))
			for i, n := range c.InstanceFieldOrder {
				elems[i] = Obj(NewString(n, FNV1a32(n)))
			}
			return Obj(NewTuple(elems)), nil
		case "__class__":
			return Obj(c), nil
		}
		if slot, ok := c.ClassFields[name]; ok {
			return slot.Value, nil
		}
		if m, _ := c.LookupClassMethod(name); m != nil {
			return Obj(NewBoundMethod(Obj(c), m)), nil
		}
		return Value{}, propertyNotFound(c.Name, name)
	},
	SetProperty: func(self HeapObject, name string, v Value) error {
		c := self.(*Class)
		slot, ok := c.ClassFields[name]
		if !ok {
			return propertyNotFound(c.Name, name)
		}
		if slot.IsConst {
			return constAssignError(name)
		}
		slot.Value = v
		return nil
	},
	String: func(self HeapObject, depth int) string {
		return fmt.Sprintf("<class %s>", self.(*Class).Name)
	},
	GetMethod: func(self HeapObject, name string) (Value, bool) {
		c := self.(*Class)
		if m, _ := c.LookupClassMethod(name); m != nil {
			return Obj(NewBoundMethod(Obj(c), m)), true
		}
		return Value{}, false
	},
}

func propertyNotFound(ownerName, name string) error {
	return propertyError(ownerName, name)
}
