//go:build unix

package dispatch

import (
	"syscall"

	"scgirun/internal/cgi"
)

// Exec replaces the current process image with the script. stdin (the rest
// of the request stream), stdout (the response) and stderr survive the
// execve unchanged, which is the whole point: the script takes over the
// connection the supervisor handed us.
//
// Exec only returns on failure.
func Exec(inv *cgi.Invocation) error {
	return syscall.Exec(inv.Path, inv.Args, inv.Env.Strings())
}
