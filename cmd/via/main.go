package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

// run executes the CLI and maps its error onto a process exit status.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	err := newCLI().RunContext(ctx, args)
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, "error:", err)
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return 1
}
