package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/NickH0dges/CS-445/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Command failures are already presented by the output
		// formatter; only flag and usage errors still need printing.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
