package main

import (
	"github.com/joho/godotenv"

	"macropipe/cmd"
)

func main() {
	// Optional .env for local runs; environment variables win.
	_ = godotenv.Load()

	cmd.Execute()
}
