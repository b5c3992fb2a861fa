// ABOUTME: Entry point for big3 CLI.
// ABOUTME: Loads .env secrets and invokes the root Cobra command.
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/big3/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
