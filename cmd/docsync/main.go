// Package main provides the entry point for the docsync CLI.
package main

import (
	"os"

	"github.com/kailas-cloud/docsync/cmd/docsync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
