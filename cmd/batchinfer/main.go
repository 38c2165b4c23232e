package main

import "github.com/devbush/batchinfer/internal/adapters/cli"

func main() {
	cli.Execute()
}
