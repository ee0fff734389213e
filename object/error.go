package object

import "github.com/daivm/dai/daierr"

// Error is dai's first-class runtime error value: it flows through the
// interpreter like any other Value rather than unwinding via Go panics
// (spec §7 RuntimeError / Error value).
type Error struct {
	Header
	Kind    string // e.g. "TypeError", "KeyError" — matches daierr sentinel text
	Message string
}

func NewError(kind, message string) *Error {
	return &Error{Header: Header{kind: ObjError}, Kind: kind, Message: message}
}

// FromRuntimeError converts a *daierr.RuntimeError into a first-class
// Error value, the conversion point between Go error returns and VM
// error values.
func FromRuntimeError(err *daierr.RuntimeError) *Error {
	return NewError(err.Kind.Error(), err.Message)
}

func (e *Error) Ops() *Operations { return errorOps }

var errorOps = &Operations{
	GetProperty: func(self HeapObject, name string) (Value, error) {
		e := self.(*Error)
		switch name {
		case "kind":
			return Obj(NewString(e.Kind, FNV1a32(e.Kind))), nil
		case "message":
			return Obj(NewString(e.Message, FNV1a32(e.Message))), nil
		}
		return Value{}, propertyNotFound("Error", name)
	},
	String: func(self HeapObject, depth int) string {
		e := self.(*Error)
		return e.Kind + ": " + e.Message
	},
	Equal: func(x, y HeapObject, depth int) int {
		a, b := x.(*Error), y.(*Error)
		if a.Kind == b.Kind && a.Message == b.Message {
			return 1
		}
		return 0
	},
}
