// Command semka loads a semka site from a directory or a web server and
// prints a rendered page.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
