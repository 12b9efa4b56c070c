// Package main is the entry point for the chatsniff passive chat observer.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/chatsniff/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
