// Command askdoc answers natural language questions about a local document.
// It chunks the document, embeds the chunks into a vector store, and answers
// questions through retrieval-augmented generation against a configurable
// LLM backend.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/askdoc-go/cmd/askdoc/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
