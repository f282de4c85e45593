// Package main is the entry point for the listpick CLI.
package main

import (
	"os"

	"github.com/runger/listpick/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
