package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/daivm/dai/daierr"
	"github.com/daivm/dai/embedding"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "load and execute a dai script file",
	ArgsUsage: "<file>",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		filename := cmd.Args().First()
		if filename == "" {
			return errors.New("run: missing <file> argument")
		}
		d := embedding.New()
		if err := d.LoadFile(filename); err != nil {
			printTraceback(err)
			os.Exit(1)
		}
		return nil
	},
}

// printTraceback prints an uncaught error to stderr matching spec §6.4's
// "filename, line, column where known" contract: *daierr.SyntaxError and
// *daierr.CompileError already carry position in their Error() text, and
// a *daierr.RuntimeError carries the innermost failing frame's
// name/file/line via WithFrame.
func printTraceback(err error) {
	var re *daierr.RuntimeError
	if errors.As(err, &re) {
		fmt.Fprintf(os.Stderr, "Traceback (most recent call last):\n")
		if re.Function != "" {
			fmt.Fprintf(os.Stderr, "  %s:%d: in %s\n", re.File, re.Line, re.Function)
		}
		fmt.Fprintf(os.Stderr, "%s: %s\n", re.Kind.Error(), re.Message)
		return
	}
	fmt.Fprintln(os.Stderr, err)
}
