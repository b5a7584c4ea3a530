package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/phillip-england/staffdesk/internal/staffcli"
)

func main() {
	if err := staffcli.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, staffcli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr)
			staffcli.PrintUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
