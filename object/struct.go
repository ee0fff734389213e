package object

// Struct is the extension hook for native data with a user-provided
// destructor and custom vtable (spec §3.2; the out-of-scope canvas module
// is the original's only consumer). No concrete subtype ships here — a
// host embedding the VM supplies Ops and Data for its own native kind.
type Struct struct {
	Header
	TypeName string
	Data     interface{}
	Destroy  func(data interface{})
	ops      *Operations
}

func NewStruct(typeName string, data interface{}, ops *Operations, destroy func(interface{})) *Struct {
	return &Struct{Header: Header{kind: ObjStruct}, TypeName: typeName, Data: data, ops: ops, Destroy: destroy}
}

func (s *Struct) Ops() *Operations { return s.ops }
