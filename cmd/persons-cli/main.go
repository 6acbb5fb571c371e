// Command persons-cli is a gRPC client for the Persons API.
//
//	go run ./cmd/persons-cli list
//	go run ./cmd/persons-cli --addr localhost:5079 get <id> -o json
package main

import (
	"fmt"
	"os"

	"github.com/aanand-mishra/persons-api/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", cli.FormatError(err))
		os.Exit(1)
	}
}
