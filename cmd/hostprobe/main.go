package main

import (
	"os"

	"github.com/oleksiiilienko/hostprobe/cmd/hostprobe/commands"
)

var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		os.Exit(1)
	}
}
