// Package main is the entry point for the diffgen CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/diffgen/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
