package main

import (
	"os"

	"github.com/airdocs-mcp/airdocs/cmd/airdocs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
