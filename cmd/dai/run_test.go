package main

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daivm/dai/daierr"
)

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestPrintTraceback_RuntimeErrorIncludesFrame(t *testing.T) {
	rerr := daierr.TypeError("expected int, got string").WithFrame("add", "main.dai", 7)

	out := captureStderr(t, func() { printTraceback(rerr) })

	assert.Contains(t, out, "Traceback (most recent call last):")
	assert.Contains(t, out, "main.dai:7: in add")
	assert.Contains(t, out, "TypeError: expected int, got string")
}

func TestPrintTraceback_RuntimeErrorWithoutFrameSkipsFrameLine(t *testing.T) {
	rerr := daierr.ZeroDivisionError("division by zero")

	out := captureStderr(t, func() { printTraceback(rerr) })

	assert.Contains(t, out, "Traceback (most recent call last):")
	assert.NotContains(t, out, ": in ")
	assert.Contains(t, out, "ZeroDivision: division by zero")
}

func TestPrintTraceback_SyntaxErrorPrintsAsIs(t *testing.T) {
	serr := &daierr.SyntaxError{Filename: "main.dai", Line: 3, Column: 1, Message: "unexpected token"}

	out := captureStderr(t, func() { printTraceback(serr) })

	assert.Contains(t, out, "main.dai:3:1: SyntaxError: unexpected token")
	assert.NotContains(t, out, "Traceback")
}

func TestPrintTraceback_CompileErrorPrintsAsIs(t *testing.T) {
	cerr := &daierr.CompileError{Filename: "main.dai", Line: 10, Column: 4, Message: "undefined global"}

	out := captureStderr(t, func() { printTraceback(cerr) })

	assert.Contains(t, out, "main.dai:10:4: CompileError: undefined global")
	assert.NotContains(t, out, "Traceback")
}
