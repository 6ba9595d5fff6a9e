package main

import "github.com/quillsign/quillsign/internal/cli"

func main() {
	cli.Execute()
}
