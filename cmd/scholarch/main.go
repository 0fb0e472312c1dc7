package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/scholarch/scholarch-cli/internal/adapters/driving/cli"
)

func main() {
	// Optional .env for API keys; absence is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
