// Package main docgen 命令行入口
package main

import (
	"github.com/joho/godotenv"

	"docgen-ai-api/internal/interfaces/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
