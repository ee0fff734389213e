// Package builtin installs dai's global built-in functions — print,
// println, assert, assert_eq, type, len, range, import — into a VM and
// its paired Compiler, the concrete surface spec.md §4.1-§4.5 refer to
// only as "built-in functions" (Array/String/Map built-in methods live
// directly on their object.Operations vtables instead, since they need
// the receiver bound in). The registration shape — a table of name plus
// host closure, installed through one central entry point — is grounded
// on the teacher's builtinFunctionSpecs/registerBuiltins pattern in
// runtime/builtins.go, stripped of the generator/goroutine/exception
// machinery dai's spec has no use for.
package builtin

import (
	"fmt"
	"strings"

	"github.com/daivm/dai/compiler"
	"github.com/daivm/dai/daierr"
	"github.com/daivm/dai/object"
	"github.com/daivm/dai/vm"
)

// spec is one global built-in: its script-visible name and the closure
// the VM invokes for it. fn follows object.BuiltinFunction.Fn's
// signature; the receiver is always object.Nil for a plain global call.
type spec struct {
	name string
	fn   func(receiver object.Value, args []object.Value) (object.Value, error)
}

// Register installs every global built-in into v and binds the matching
// compile-time name in c, so any module c compiles afterward can
// reference them by name and the VM can resolve the resulting
// GetBuiltin opcode (spec §4.6 built-in surface, §4.3 symbol
// resolution).
func Register(v *vm.VM, c *compiler.Compiler) {
	for _, s := range specs(v) {
		idx := v.RegisterBuiltin(s.name, object.NewBuiltinFunction(s.name, s.fn))
		c.RegisterBuiltin(idx, s.name)
	}
}

func specs(v *vm.VM) []spec {
	return []spec{
		{name: "print", fn: builtinPrint(v, false)},
		{name: "println", fn: builtinPrint(v, true)},
		{name: "assert", fn: builtinAssert},
		{name: "assert_eq", fn: builtinAssertEq},
		{name: "type", fn: builtinType},
		{name: "len", fn: builtinLen},
		{name: "range", fn: builtinRange},
		{name: "import", fn: builtinImport(v)},
	}
}

// builtinPrint writes each argument's display string space-separated to
// vm's Stdout; println additionally appends a trailing newline.
func builtinPrint(v *vm.VM, newline bool) func(object.Value, []object.Value) (object.Value, error) {
	return func(_ object.Value, args []object.Value) (object.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		out := strings.Join(parts, " ")
		if newline {
			out += "\n"
		}
		fmt.Fprint(v.Stdout, out)
		return object.Nil, nil
	}
}

func builtinAssert(_ object.Value, args []object.Value) (object.Value, error) {
	if len(args) != 1 && len(args) != 2 {
		return object.Value{}, daierr.TypeError("assert() expected 1 or 2 arguments, got %d", len(args))
	}
	if len(args) == 2 && !args[1].ObjectKindIs(object.ObjString) {
		return object.Value{}, daierr.TypeError("assert() expects a string as its second argument")
	}
	if args[0].Truthy() {
		return object.Nil, nil
	}
	if len(args) == 1 {
		return object.Value{}, daierr.AssertionError("assertion failed")
	}
	return object.Value{}, daierr.AssertionError("assertion failed: %s", args[1].String())
}

func builtinAssertEq(_ object.Value, args []object.Value) (object.Value, error) {
	if len(args) != 2 && len(args) != 3 {
		return object.Value{}, daierr.TypeError("assert_eq() expected 2 or 3 arguments, got %d", len(args))
	}
	if len(args) == 3 && !args[2].ObjectKindIs(object.ObjString) {
		return object.Value{}, daierr.TypeError("assert_eq() expects a string as its third argument")
	}
	if object.Equal(args[0], args[1]) {
		return object.Nil, nil
	}
	if len(args) == 2 {
		return object.Value{}, daierr.AssertionError("assertion failed: %s != %s", args[0].String(), args[1].String())
	}
	return object.Value{}, daierr.AssertionError("assertion failed: %s != %s %s", args[0].String(), args[1].String(), args[2].String())
}

func builtinType(_ object.Value, args []object.Value) (object.Value, error) {
	if len(args) != 1 {
		return object.Value{}, daierr.TypeError("type() expected 1 argument, got %d", len(args))
	}
	return object.Obj(object.NewString(args[0].TypeName(), object.FNV1a32(args[0].TypeName()))), nil
}

func builtinLen(_ object.Value, args []object.Value) (object.Value, error) {
	if len(args) != 1 {
		return object.Value{}, daierr.TypeError("len() expected 1 argument, got %d", len(args))
	}
	switch {
	case args[0].ObjectKindIs(object.ObjString):
		return object.Int(int64(args[0].AsObject().(*object.String).CharLen)), nil
	case args[0].ObjectKindIs(object.ObjArray):
		return object.Int(int64(args[0].AsObject().(*object.Array).Len())), nil
	case args[0].ObjectKindIs(object.ObjMap):
		return object.Int(int64(args[0].AsObject().(*object.Map).Len())), nil
	default:
		return object.Value{}, daierr.TypeError("len() not supported for %s", args[0].TypeName())
	}
}

// builtinRange produces a RangeIterator over [start, end) stepping by
// step, defaulting step to 1 (spec §4.6 range(start, end[, step])). A
// single argument means end only, with start defaulting to 0 — matching
// range(5) iterating 0..4, per spec.md's own scenario 8.
func builtinRange(_ object.Value, args []object.Value) (object.Value, error) {
	if len(args) == 0 || len(args) > 3 {
		return object.Value{}, daierr.TypeError("range() expected 1 to 3 arguments, got %d", len(args))
	}
	for _, a := range args {
		if !a.IsInt() {
			return object.Value{}, daierr.TypeError("range() expects int arguments")
		}
	}
	start, end := int64(0), args[0].AsInt()
	if len(args) >= 2 {
		start, end = args[0].AsInt(), args[1].AsInt()
	}
	step := int64(1)
	if len(args) == 3 {
		step = args[2].AsInt()
		if step == 0 {
			return object.Value{}, daierr.TypeError("range() step must not be zero")
		}
	}
	return object.Obj(object.NewRangeIterator(start, end, step)), nil
}

// builtinImport resolves path through v.Importer relative to the
// currently executing file, running the module's top-level code the
// first time it's loaded and returning the cached *object.Module on
// every subsequent import, including a still-loading one encountered
// through a circular import (spec §4.6 import, module search path).
func builtinImport(v *vm.VM) func(object.Value, []object.Value) (object.Value, error) {
	return func(_ object.Value, args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return object.Value{}, daierr.TypeError("import() expected 1 argument, got %d", len(args))
		}
		if !args[0].ObjectKindIs(object.ObjString) {
			return object.Value{}, daierr.TypeError("import() expects a string argument")
		}
		if v.Importer == nil {
			return object.Value{}, daierr.TypeError("import() is not supported by this host")
		}
		path := args[0].AsObject().(*object.String).Bytes
		mod, err := v.Importer(v, path, v.CurrentFilename())
		if err != nil {
			return object.Value{}, err
		}
		if v.Loading(mod.Filename) || mod.Compiled {
			return object.Obj(mod), nil
		}
		if _, err := v.RunModule(mod); err != nil {
			return object.Value{}, err
		}
		return object.Obj(mod), nil
	}
}
