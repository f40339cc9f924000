// Package main provides the secextract CLI tool.
package main

import (
	"os"

	"github.com/ZacharyZcR/secextract/internal/cli"
)

func main() {
	os.Exit(cli.Run(cli.DefaultEnv(), os.Args[1:]))
}
