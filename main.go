package main

import (
	"os"

	"github.com/ziadkadry99/kds-visual/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
