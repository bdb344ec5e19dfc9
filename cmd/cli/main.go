// Package main is the entry point for the pinotbridge CLI binary.
package main

import (
	"os"

	cli "pinot-bridge/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
