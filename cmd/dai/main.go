// Command dai is the thin CLI shell around the embedding package spec
// §6.2 places out of scope beyond its boundary contract: a `run`
// subcommand that loads and executes one script file, a `repl` that
// drives an interactive session, and `version`. Grounded on the
// teacher's cmd/hey/main.go urfave/cli/v3 command tree, stripped of
// every PHP-specific flag (-a/-code/-S web server) this interpreter has
// no equivalent of.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/daivm/dai/version"
)

func main() {
	app := &cli.Command{
		Name:  "dai",
		Usage: "the dai scripting language",
		Commands: []*cli.Command{
			runCommand,
			replCommand,
			versionCommand,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "dai: %v\n", err)
		os.Exit(1)
	}
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "print the dai module version",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		fmt.Println(version.Version())
		return nil
	},
}
