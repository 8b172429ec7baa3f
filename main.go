package main

import (
	"os"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/spigell/hh-scout/cmd"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
