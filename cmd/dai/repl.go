package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v3"

	"github.com/daivm/dai/builtin"
	"github.com/daivm/dai/compiler"
	"github.com/daivm/dai/intern"
	"github.com/daivm/dai/lexer"
	"github.com/daivm/dai/object"
	"github.com/daivm/dai/parser"
	"github.com/daivm/dai/vm"
)

const replFilename = "<stdin>"

var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "start an interactive dai session",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return runREPL()
	},
}

// runREPL drives one long-lived VM/Compiler pair against a single
// persistent Module, so `var` declarations from one line stay visible to
// every line after it (SPEC_FULL.md §D). Each line is auto-terminated
// with ';' if missing rather than accumulated across a multi-line
// continuation buffer, matching the original repl.c's single-line model
// (_examples/original_source/repl.c) exactly.
func runREPL() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dai> ",
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return fmt.Errorf("repl: %w", err)
	}
	defer rl.Close()

	tbl := intern.New()
	v := vm.New(tbl)
	c := compiler.New(tbl)
	builtin.Register(v, c)
	mod := object.NewModule("<repl>", replFilename)

	fmt.Println("Welcome to dai")
	fmt.Println("Ctrl-D to exit")

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, ";") {
			line += ";"
		}

		if err := evalLine(v, c, mod, line); err != nil {
			printTraceback(err)
			continue
		}
		if result := v.LastPopped(); !result.IsNil() && !result.IsUndefined() {
			fmt.Println(result.String())
		}
	}
}

func evalLine(v *vm.VM, c *compiler.Compiler, mod *object.Module, line string) error {
	l := lexer.New(line)
	p := parser.New(l, replFilename)
	prog, serr := p.Parse()
	if serr != nil {
		return serr
	}
	if err := c.CompileREPLLine(prog, mod, replFilename); err != nil {
		return err
	}
	_, err := v.RunModule(mod)
	return err
}
