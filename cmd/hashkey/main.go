// Command hashkey prints the bcrypt hash to put into ADMIN_KEY_HASH.
package main

import (
	"fmt"
	"os"

	"github.com/Dosada05/checkmate-cup/utils"
)

func main() {
	if len(os.Args) != 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: hashkey <admin-key>")
		os.Exit(2)
	}

	hash, err := utils.HashSecret(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
