// Command hash-generator prints bcrypt hashes for credentials supplied on
// the command line. Useful for seeding test fixtures.
package main

import (
	"fmt"
	"os"

	"github.com/JoannaMikul/10x-cards-sub002/internal/service/auth"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator <password> [password...]")
		os.Exit(1)
	}

	for _, password := range args {
		hash, err := auth.HashPassword(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating hash for %s: %v\n", password, err)
			continue
		}
		fmt.Printf("Password: %s\nHash: %s\n\n", password, hash)
	}
}
