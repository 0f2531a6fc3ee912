// Package main is the entry point for the invoicepdf CLI.
package main

import (
	"os"

	"invoice-backend/cmd/invoicepdf/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
