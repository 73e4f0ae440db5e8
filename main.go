package main

import (
	"os"

	"github.com/inventory-api/inventory-api/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
