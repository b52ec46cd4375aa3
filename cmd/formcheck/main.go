// cmd/formcheck/main.go
//
// Formcheck – command-line entry point.  See internal/cli for the commands.
package main

import (
	"os"

	"github.com/yanizio/formcheck/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
