package main

import (
	"os"

	"github.com/usestring/splunk-mcp/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
