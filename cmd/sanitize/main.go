package main

import (
	"fmt"
	"os"

	"sprites.runesynergy.dev/internal/cli"
)

func main() {
	c := cli.New(os.Stderr, cli.LogInfo)
	if err := c.Standalone("sanitize", c.SanitizeCommand()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
