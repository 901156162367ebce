package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"coursebot/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Error loading .env file: %v", err)
		}
	}
}
