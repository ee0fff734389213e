package object

import "fmt"

// Instance is a live object of a Class: a dense field-value array indexed
// by the class's field layout, plus the initialized flag that gates const
// enforcement (spec §3.2: const writes are permitted until __init__
// completes).
type Instance struct {
	Header
	Class       *Class
	Fields      []Value
	Initialized bool
}

func NewInstance(class *Class) *Instance {
	fields := make([]Value, len(class.InstanceFieldOrder))
	for _, def := range class.InstanceFields {
		fields[def.Index] = def.Default
	}
	return &Instance{Header: Header{kind: ObjInstance}, Class: class, Fields: fields}
}

// AllFieldsSet reports whether every declared instance field holds a
// non-undefined value, the check the VM runs before marking an instance
// initialized (spec §4.5 call convention step 2).
func (in *Instance) AllFieldsSet() bool {
	for _, v := range in.Fields {
		if v.IsUndefined() {
			return false
		}
	}
	return true
}

func (in *Instance) Ops() *Operations { return instanceOps }

var instanceOps = &Operations{
	GetProperty: func(self HeapObject, name string) (Value, error) {
		in := self.(*Instance)
		if name == "__class__" {
			return Obj(in.Class), nil
		}
		if def, ok := in.Class.InstanceFields[name]; ok {
			return in.Fields[def.Index], nil
		}
		if m, _ := in.Class.LookupInstanceMethod(name); m != nil {
			return Obj(NewBoundMethod(Obj(in), m)), nil
		}
		return Value{}, propertyNotFound(in.Class.Name, name)
	},
	SetProperty: func(self HeapObject, name string, v Value) error {
		in := self.(*Instance)
		def, ok := in.Class.InstanceFields[name]
		if !ok {
			return propertyNotFound(in.Class.Name, name)
		}
		if def.IsConst && in.Initialized {
			return constAssignError(name)
		}
		in.Fields[def.Index] = v
		return nil
	},
	String: func(self HeapObject, depth int) string {
		return fmt.Sprintf("<%s instance>", self.(*Instance).Class.Name)
	},
	Equal: func(x, y HeapObject, depth int) int {
		if x == y {
			return 1
		}
		return 0
	},
	GetMethod: func(self HeapObject, name string) (Value, bool) {
		in := self.(*Instance)
		if m, _ := in.Class.LookupInstanceMethod(name); m != nil {
			return Obj(NewBoundMethod(Obj(in), m)), true
		}
		return Value{}, false
	},
}
