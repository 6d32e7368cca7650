// Command ragbase is the entry point for the RAGBase document assistant.
// It provides a CLI interface (via Cobra), an HTTP API for PDF-backed
// question answering and email triage, and a stdio file-tool session.
package main

import (
	"fmt"
	"os"

	"github.com/ragbase/ragbase-go/cmd/ragbase/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
