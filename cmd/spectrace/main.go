// Package main provides the spectrace binary entry point.
// Spectrace traces specification rules to the source code that
// implements and verifies them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
