package object

import "github.com/daivm/dai/daierr"

func indexTypeError() error {
	return daierr.TypeError("index must be an int")
}

func indexOutOfRange(i int64, length int) error {
	return daierr.IndexError("index %d out of range (length %d)", i, length)
}

func keyError(v Value) error {
	return daierr.KeyError("key %s not found", v.String())
}

func propertyError(ownerName, name string) error {
	return daierr.PropertyError("%s has no property %q", ownerName, name)
}

func constAssignError(name string) error {
	return daierr.TypeError("cannot assign to const field %q", name)
}
