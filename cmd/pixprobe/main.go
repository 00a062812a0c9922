package main

import (
	"os"

	"pixprobe/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
