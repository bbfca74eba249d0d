package main

import "github.com/pfrederiksen/masters-pool/internal/cli"

func main() {
	cli.Execute()
}
