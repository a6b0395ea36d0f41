package main

import (
	"os"

	"github.com/conneroisu/i18nextract/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
