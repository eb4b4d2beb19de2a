package main

import (
	"fmt"
	"os"

	"github.com/adamavenir/auradm/internal/command"
)

func main() {
	if err := command.Execute(); err != nil {
		if !command.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
