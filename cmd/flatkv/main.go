package main

import "github.com/flatkv/flatkv/internal/cli"

func main() {
	cli.Execute()
}
