package object

import (
	"strings"
	"unicode/utf8"

	"github.com/daivm/dai/daierr"
)

// String is dai's immutable, interned string object. Equality is pointer
// identity once interned (spec §3.2, §8); the intern table is responsible
// for handing out one *String per distinct byte sequence.
type String struct {
	Header
	Bytes    string
	CharLen  int
	HashCode uint32 // precomputed FNV-1a, see intern package
}

// NewString builds a raw (not-yet-interned) String object; the intern
// package is the only caller that should construct one directly.
func NewString(bytes string, hash uint32) *String {
	return &String{
		Header:   Header{kind: ObjString},
		Bytes:    bytes,
		CharLen:  utf8.RuneCountInString(bytes),
		HashCode: hash,
	}
}

func (s *String) Ops() *Operations { return stringOps }

var stringOps = &Operations{
	SubscriptGet: func(self HeapObject, index Value) (Value, error) {
		return stringIndex(self.(*String), index)
	},
	String: func(self HeapObject, depth int) string {
		return self.(*String).Bytes
	},
	Equal: func(a, b HeapObject, depth int) int {
		// Interned strings compare by identity; this op only runs when the
		// two pointers already differ, so byte comparison is the fallback
		// for strings built outside the intern table (e.g. concatenation
		// results before they are re-interned).
		if a.(*String).Bytes == b.(*String).Bytes {
			return 1
		}
		return 0
	},
	Hash: func(self HeapObject) (uint64, error) {
		return uint64(self.(*String).HashCode), nil
	},
	IterInit: func(self HeapObject) (HeapObject, error) {
		return NewArrayIterator(stringToRuneArray(self.(*String))), nil
	},
	GetMethod: func(self HeapObject, name string) (Value, bool) {
		impl, ok := stringMethods[name]
		if !ok {
			return Value{}, false
		}
		fn := NewBuiltinFunction(name, func(recv Value, args []Value) (Value, error) {
			return impl(recv.AsObject().(*String), args)
		})
		return Obj(NewBoundBuiltinMethod(Obj(self), fn)), true
	},
}

// argString extracts args[i] as a string for method, requiring exactly
// wantArgs total arguments.
func argString(args []Value, i, wantArgs int, method string) (string, error) {
	if len(args) != wantArgs {
		return "", daierr.TypeError("%s expects %d argument(s), got %d", method, wantArgs, len(args))
	}
	if !args[i].ObjectKindIs(ObjString) {
		return "", daierr.TypeError("%s expects a string argument", method)
	}
	return args[i].AsObject().(*String).Bytes, nil
}

// stringMethods backs the String built-in method set (length/contains/
// split/join/find/replace/sub/upper/lower/trim), dispatched through
// GetMethod. Results are plain, un-interned *String values; only the VM's
// own concatenation path re-interns (spec scenario 7), so equality here
// falls back to the byte-compare branch of stringOps.Equal.
var stringMethods = map[string]func(s *String, args []Value) (Value, error){
	"length": func(s *String, args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, daierr.TypeError("length expects 0 arguments, got %d", len(args))
		}
		return Int(int64(s.CharLen)), nil
	},
	"contains": func(s *String, args []Value) (Value, error) {
		sub, err := argString(args, 0, 1, "contains")
		if err != nil {
			return Value{}, err
		}
		return Bool(strings.Contains(s.Bytes, sub)), nil
	},
	"find": func(s *String, args []Value) (Value, error) {
		sub, err := argString(args, 0, 1, "find")
		if err != nil {
			return Value{}, err
		}
		byteIdx := strings.Index(s.Bytes, sub)
		if byteIdx < 0 {
			return Int(-1), nil
		}
		return Int(int64(utf8.RuneCountInString(s.Bytes[:byteIdx]))), nil
	},
	"split": func(s *String, args []Value) (Value, error) {
		sep, err := argString(args, 0, 1, "split")
		if err != nil {
			return Value{}, err
		}
		var parts []string
		if sep == "" {
			parts = strings.Split(s.Bytes, "")
		} else {
			parts = strings.Split(s.Bytes, sep)
		}
		elems := make([]Value, len(parts))
		for i, p := range parts {
			elems[i] = Obj(NewString(p, FNV1a32(p)))
		}
		return Obj(NewArray(elems)), nil
	},
	"join": func(s *String, args []Value) (Value, error) {
		if len(args) != 1 || !args[0].ObjectKindIs(ObjArray) {
			return Value{}, daierr.TypeError("join expects an array argument")
		}
		arr := args[0].AsObject().(*Array)
		parts := make([]string, arr.Len())
		for i, e := range arr.Elements() {
			if !e.ObjectKindIs(ObjString) {
				return Value{}, daierr.TypeError("join requires every element to be a string")
			}
			parts[i] = e.AsObject().(*String).Bytes
		}
		joined := strings.Join(parts, s.Bytes)
		return Obj(NewString(joined, FNV1a32(joined))), nil
	},
	"replace": func(s *String, args []Value) (Value, error) {
		old, err := argString(args, 0, 2, "replace")
		if err != nil {
			return Value{}, err
		}
		repl, err := argString(args, 1, 2, "replace")
		if err != nil {
			return Value{}, err
		}
		out := strings.ReplaceAll(s.Bytes, old, repl)
		return Obj(NewString(out, FNV1a32(out))), nil
	},
	"sub": func(s *String, args []Value) (Value, error) {
		if len(args) != 2 || !args[0].IsInt() || !args[1].IsInt() {
			return Value{}, daierr.TypeError("sub expects 2 int arguments")
		}
		runes := []rune(s.Bytes)
		start, end := args[0].AsInt(), args[1].AsInt()
		if start < 0 || end > int64(len(runes)) || start > end {
			return Value{}, indexOutOfRange(start, len(runes))
		}
		out := string(runes[start:end])
		return Obj(NewString(out, FNV1a32(out))), nil
	},
	"upper": func(s *String, args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, daierr.TypeError("upper expects 0 arguments, got %d", len(args))
		}
		out := strings.ToUpper(s.Bytes)
		return Obj(NewString(out, FNV1a32(out))), nil
	},
	"lower": func(s *String, args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, daierr.TypeError("lower expects 0 arguments, got %d", len(args))
		}
		out := strings.ToLower(s.Bytes)
		return Obj(NewString(out, FNV1a32(out))), nil
	},
	"trim": func(s *String, args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, daierr.TypeError("trim expects 0 arguments, got %d", len(args))
		}
		out := strings.TrimSpace(s.Bytes)
		return Obj(NewString(out, FNV1a32(out))), nil
	},
}

func stringIndex(s *String, index Value) (Value, error) {
	if !index.IsInt() {
		return Value{}, indexTypeError()
	}
	runes := []rune(s.Bytes)
	i := index.AsInt()
	if i < 0 || i >= int64(len(runes)) {
		return Value{}, indexOutOfRange(i, len(runes))
	}
	return Obj(internlessRune(runes[i])), nil
}

func internlessRune(r rune) *String {
	s := string(r)
	return NewString(s, FNV1a32(s))
}

func stringToRuneArray(s *String) *Array {
	runes := []rune(s.Bytes)
	elems := make([]Value, len(runes))
	for i, r := range runes {
		elems[i] = Obj(internlessRune(r))
	}
	return NewArray(elems)
}

// FNV1a32 computes the 32-bit FNV-1a hash used for string interning.
func FNV1a32(s string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}

// Concat builds the un-interned result of string concatenation; the VM
// re-interns it immediately after (spec scenario 7: "mon"+"key" == "monkey"
// by identity).
func Concat(a, b *String) *String {
	joined := a.Bytes + b.Bytes
	return NewString(joined, FNV1a32(joined))
}

func joinStrings(parts []string, sep string) string {
	return strings.Join(parts, sep)
}
