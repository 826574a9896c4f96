// Command codelens indexes a source tree, serves its retrieval API, and
// watches it for incremental reindexing.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorRed(err.Error()))
		os.Exit(exitCodeFor(err))
	}
}
