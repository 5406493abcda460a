// Command hcrun runs a command and reports its outcome to a Healthchecks.io
// check.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code. Terminal signals
// reach the monitored command directly and its fate is reported like any
// other exit.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	code := exitCodeForError(err)
	if err != nil && !errors.Is(err, errDelivery) {
		fmt.Fprintf(stderr, "hcrun: %v\n", err)
		if code == exitInvalidInput {
			fmt.Fprintln(stderr, "Run 'hcrun --help' for usage.")
		}
	}
	return code
}
