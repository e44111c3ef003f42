package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/skeletonize/pkg/errors"
)

// ExitInterrupted is returned when the run was cancelled by a signal.
const ExitInterrupted = 130

// Execute runs the command line described by args and returns the process
// exit status. Errors are printed to stderr prefixed with "Error:"; usage
// errors carry their own status (see pipeline.ExitMissingInput).
//
// Example:
//
//	func main() {
//	    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	    defer stop()
//	    os.Exit(cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr))
//	}
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := New(stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case ctx.Err() != nil:
		fmt.Fprintln(stderr, "Interrupted")
		return ExitInterrupted
	default:
		fmt.Fprintf(stderr, "Error: %s\n", errors.UserMessage(err))
		return errors.ExitCode(err, 1)
	}
}

// Main is Execute bound to the process arguments and standard streams.
func Main(ctx context.Context) int {
	return Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
