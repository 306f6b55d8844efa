package main

import (
	"os"

	"deal_underwriting/pkg/cli"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
