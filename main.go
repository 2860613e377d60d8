package main

import (
	"os"

	"github.com/mcpjungle/mathtools/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
