package main

import "brainrot-feed/internal/cli"

func main() {
	cli.Execute()
}
