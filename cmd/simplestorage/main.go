package main

import (
	"os"

	"simplestorage/cmd/simplestorage/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
