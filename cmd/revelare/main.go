package main

import "github.com/revelare/revelare-web/cli"

func main() {
	cli.Execute()
}
