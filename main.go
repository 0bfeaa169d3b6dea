package main

import (
	"os"

	"github.com/sadopc/viva/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Stderr))
}
