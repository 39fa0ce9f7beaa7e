package main

import "github.com/joho/godotenv"

func main() {
	// Load environment from .env files for local development.
	_ = godotenv.Load(".env")
	Execute()
}
