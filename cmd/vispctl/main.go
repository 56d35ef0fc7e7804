package main

import (
	"os"

	"github.com/humlab-speech/vispctl/cmd/vispctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
