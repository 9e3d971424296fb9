// aviary is the command line front end for the recording pipeline: it
// queries the xeno-canto catalog, downloads recording audio and extracts
// feature artifacts for later model fitting.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
