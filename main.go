package main

import (
	"shortlink/cmd"

	// Subcommands register themselves with the root command.
	_ "shortlink/cmd/cli"
	_ "shortlink/cmd/server"
)

func main() {
	cmd.Execute()
}
