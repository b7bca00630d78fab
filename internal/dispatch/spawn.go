// Package dispatch runs the resolved script. The adapter binary replaces
// its own image (Exec); embedders hosting the pipeline inside a long-lived
// process use Spawn instead.
package dispatch

import (
	"context"
	"errors"
	"io"
	"os/exec"

	"scgirun/internal/cgi"
)

// Spawn runs the script as a child process with the invocation's argument
// vector and environment, wiring the given streams to the child's stdin,
// stdout and stderr. It blocks until the script exits and returns its exit
// code.
//
// An error is returned only when the script could not be run at all; a
// script that ran and exited non-zero is (code, nil).
func Spawn(ctx context.Context, inv *cgi.Invocation, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, inv.Path)
	cmd.Args = inv.Args
	cmd.Env = inv.Env.Strings()
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}
	return 0, nil
}
