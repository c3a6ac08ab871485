// Command datasync synchronises regulatory standards, supplier certifications
// and industry benchmarks from external providers into local storage.
package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
