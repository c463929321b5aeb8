package main

import (
	"os"

	"devreload/cmd/devreload/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
