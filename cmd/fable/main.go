// Command fable works with pipeline definitions outside the editor: it
// validates them against a catalogue, projects them to graphs, and turns them
// into share tokens and links.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
