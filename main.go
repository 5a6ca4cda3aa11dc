package main

import (
	"os"

	"github.com/nishant/lectern/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
