package main

import (
	"os"

	"github.com/QuEraComputing/kirin/cmd/kirinctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
