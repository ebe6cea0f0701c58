package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/webrag-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/webrag-cli/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// API keys may live in a local .env file
	_ = godotenv.Load()

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
