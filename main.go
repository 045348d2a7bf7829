package main

import "github.com/monster2z/llm-rag-pro/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}
