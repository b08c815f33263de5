package main

import (
	"os"

	"github.com/niiboye001/genesis-invoice/cmd/invoicectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
