package main

import "github.com/diseb-lab/rocket/internal/cli"

func main() {
	cli.Execute()
}
