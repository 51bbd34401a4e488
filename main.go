package main

import (
	"github.com/joho/godotenv"

	"github.com/teemow/sheetsmcp/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	// Load .env if present; environment variables win over file values
	_ = godotenv.Load()

	cmd.SetVersion(version)
	cmd.Execute()
}
