// ABOUTME: Entry point for the blogctl CLI
// ABOUTME: Command-line and terminal client for the blog backend

package main

import (
	"fmt"
	"os"

	"github.com/nilmcc/blogctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
