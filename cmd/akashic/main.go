// Command akashic is a personal time tracker.
package main

import (
	"context"
	"os"

	"github.com/roach88/akashic/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
