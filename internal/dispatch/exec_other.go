//go:build !unix

package dispatch

import (
	"context"
	"os"

	"scgirun/internal/cgi"
)

// Exec approximates image replacement on platforms without execve: the
// script runs as a child with the same inherited streams and the adapter
// exits with the child's status. Only the extra process slot differs from
// the unix behavior.
//
// Exec only returns on failure to start the script.
func Exec(inv *cgi.Invocation) error {
	code, err := Spawn(context.Background(), inv, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}
	os.Exit(code)
	return nil
}
