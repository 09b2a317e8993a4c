// ABOUTME: CLI entrypoint for gridhq: serves the board API and manages cards from the terminal.
// ABOUTME: Exit code 1 on any command error; cobra prints usage for bad flags.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

var version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line in args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := execute(ctx, newApp(stdout), args, stderr); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// execute runs one command against a. The database and logger are released
// on every path, including a failing command.
func execute(ctx context.Context, a *app, args []string, stderr io.Writer) error {
	defer a.close()
	root := newRootCmd(a)
	root.SetErr(stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
