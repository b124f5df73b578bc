// Command moviereview creates, updates and deletes movie reviews.
package main

import (
	"os"

	"github.com/jacentio/moviereview/internal/cli"
)

func main() {
	os.Exit(cli.GetExitCode(cli.Execute(cli.NewRootCommand())))
}
