package main

import "physiosite/api/internal/cli"

func main() {
	cli.Execute()
}
