package main

import (
	"fmt"
	"os"

	"github.com/rpggio/courses/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "courses: %v\n", err)
		os.Exit(1)
	}
}
