// Package main implements the go-flow-classes CLI (gfc). It extracts basic
// blocks and control-flow edges from source files and reports the
// connectivity bundles the blocks fall into.
package main

import (
	"os"

	"github.com/qvbps/go-flow-classes/cmd/gfc/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
