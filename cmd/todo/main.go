package main

import (
	"os"

	"github.com/idilsaglam/todoreminder/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
