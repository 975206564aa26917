// Command miurev runs the catalog gateway as a REST server or an MCP server.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
