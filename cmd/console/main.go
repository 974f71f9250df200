// Command console runs the test management web console in front of the
// GraphQL backend.
//
//	@title			Testdeck Console API
//	@version		1.0
//	@description	Session-backed JSON API of the test management console.
//	@BasePath		/
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "console",
		Usage: "test management web console",
		Commands: []*cli.Command{
			serveCommand(),
			whoamiCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
}
