// Package main provides the schooldb command.
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/leapstack-labs/schooldb/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
