// weft is a command-line front end for the dispatch library: one-off
// queries, batch runs from a file, cache inspection, and the model
// catalog.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "weft",
		Short:   "Weft — normalize, cache, and dispatch LLM requests",
		Version: version,
	}

	root.AddCommand(
		newAskCmd(),
		newBatchCmd(),
		newCacheCmd(),
		newModelsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
