// Command libctl performs administrative tasks against the library database:
// creating accounts, listing them and ensuring indexes.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
