package main

import (
	"os"

	"github.com/fector/harvest/cmd/harvest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
