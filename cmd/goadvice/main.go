package main

import (
	"os"

	"github.com/CherkashinEvgeny/goadvice/cmd/goadvice/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
