// Command autosort organizes folders from the command line: one-off runs,
// foreground watching, rules, and move history.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd, cli := newRootCommand()
	err := cmd.Execute()
	cli.close()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
