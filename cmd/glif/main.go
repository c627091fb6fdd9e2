package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/glif-dev/glif/internal/cli"
)

var version = "0.1.0-dev"

func main() {
	_ = godotenv.Load()

	if err := cli.NewRootCommand(version).Execute(); err != nil {
		os.Exit(1)
	}
}
