// Package main is the entry point for the numerapi CLI binary.
package main

import (
	"os"

	"github.com/uuazed/numerapi-go/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
