package main

import "github.com/semidx/semidx/internal/cli"

func main() {
	cli.Execute()
}
