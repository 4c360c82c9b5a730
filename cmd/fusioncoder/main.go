// Command fusioncoder runs AI-assisted code workflows: one-shot from the
// command line, in batches from a task file, or as a long-running worker
// draining a NATS subject.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
