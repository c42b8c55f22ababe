package main

import "github.com/mcoot/eventgames/internal/cli"

func main() {
	cli.Execute()
}
