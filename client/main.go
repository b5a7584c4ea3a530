// Command client serves only the web front-end, reading the same .env as
// staffdesk run.
package main

import (
	"log"
	"os"

	"github.com/phillip-england/staffdesk/internal/staffcli"
)

func main() {
	args := append([]string{"run"}, os.Args[1:]...)
	if err := staffcli.Execute(args); err != nil {
		log.Fatal(err)
	}
}
