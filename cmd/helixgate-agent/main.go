// Package main provides the HelixGate node agent CLI.
package main

import (
	"os"

	"helixgate.io/cmd/helixgate-agent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
