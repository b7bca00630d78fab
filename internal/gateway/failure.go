// Package gateway orchestrates the one-shot SCGI-to-CGI pipeline: read one
// header block, build the CGI environment, resolve and check the script
// path, and hand the resolved invocation back to the caller for dispatch.
// Every stage funnels its failure into one reporting path.
package gateway

import (
	"fmt"
	"io"
)

// Status lines used in error responses. The front end relays them verbatim,
// so they follow the CGI "Status:" convention rather than a raw HTTP status
// line.
const (
	StatusInternal      = "500 Internal Error"
	StatusInvalidHeader = "500 Invalid SCGI header"
	StatusNotFound      = "404 Not Found"
)

// ExitCode is the process exit status for every failure kind. Not-Found and
// the rest deliberately share one code; supervisors only distinguish zero
// from non-zero.
const ExitCode = 1

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindProtocol is a malformed or truncated header stream.
	KindProtocol Kind = iota
	// KindConfig means no script path could be resolved.
	KindConfig
	// KindSecurity is a rejected script path.
	KindSecurity
	// KindNotFound means the script path does not exist.
	KindNotFound
	// KindExec is any other failure while running the script.
	KindExec
)

// Failure is the outcome of a failed pipeline stage. It is terminal: the
// caller writes it with Respond and exits, there is nothing to recover.
type Failure struct {
	Kind    Kind
	Status  string
	Message string
}

func (f *Failure) Error() string { return f.Message }

func failf(kind Kind, status, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Status: status, Message: fmt.Sprintf(format, args...)}
}

// Respond writes the error response in the fixed wire format the handler
// would otherwise have produced: status line, plain-text content type,
// blank separator, message. The script never ran, but the party behind the
// front end still gets a well-formed reply.
func (f *Failure) Respond(w io.Writer) {
	fmt.Fprintf(w, "Status: %s\r\nContent-Type: text/plain\r\n\r\n%s\r\n", f.Status, f.Message)
}
