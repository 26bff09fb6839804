// Package main provides the keeper CLI: user registration and login against
// the credential file, and statement execution and CSV/JSON bulk loading
// against the SQLite database.
package main

import (
	"fmt"
	"os"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "keeper:", err)
		os.Exit(exitCode(err))
	}
}
