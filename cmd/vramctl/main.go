// vramctl is the command-line companion to the vramio estimation service.
// It can run the HTTP server or answer one-off estimation queries.
package main

import (
	"os"

	"github.com/ksingh-scogo/vramio/cmd/vramctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
