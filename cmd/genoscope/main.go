// cmd/genoscope/main.go
//
// Entry point for the genoscope CLI.

package main

import (
	"fmt"
	"os"

	"github.com/genoscope/genoscope/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
