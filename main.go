package main

import (
	"os"

	"github.com/tbcolby/settlement-game/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
