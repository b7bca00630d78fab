package gateway

import (
	"errors"
	"io"
	"io/fs"

	"scgirun/internal/cgi"
	"scgirun/internal/config"
	"scgirun/internal/logging"
	"scgirun/internal/netstring"
)

// Run executes the read→build→resolve→validate portion of the pipeline and
// returns either the invocation to dispatch or the failure to report.
//
// in is the request stream; only the header block is consumed, the rest is
// request body for the script. args are the adapter's positional arguments
// and ambient is the adapter's own environment (os.Environ for the real
// process). Run never touches process-global state, so it is callable from
// tests and from long-lived embedders that spawn the script instead of
// exec'ing it.
func Run(in io.Reader, args []string, ambient []string, cfg config.Settings, stage *logging.Stage) (*cgi.Invocation, *Failure) {
	payload, err := netstring.ReadBlock(in, cfg.MaxHeaderLength)
	if err != nil {
		return nil, protocolFailure(err)
	}
	stage.BlockRead(len(payload))

	pairs, err := netstring.ParsePairs(payload)
	if err != nil {
		return nil, protocolFailure(err)
	}

	env := cgi.BuildEnviron(pairs, ambient)
	for _, p := range pairs {
		stage.PairSet(p.Name, p.Value)
	}

	inv, checkDir, err := cgi.ResolveScript(env, args)
	if err != nil {
		return nil, failf(KindConfig, StatusInternal, "%s", err)
	}
	if checkDir == "" {
		checkDir = cfg.CheckDirectory
	}
	stage.Resolved(inv.Path, checkDir)

	if err := cgi.ValidateScriptPath(inv.Path, checkDir, cfg.CanonicalContainment); err != nil {
		return nil, failf(KindSecurity, StatusInternal, "%s", err)
	}

	return inv, nil
}

func protocolFailure(err error) *Failure {
	status := StatusInternal
	var de *netstring.DecodeError
	if errors.As(err, &de) && de.BadLengthByte {
		status = StatusInvalidHeader
	}
	return failf(KindProtocol, status, "%s", err)
}

// DispatchFailure converts an error from running the script into the
// failure reported to the client. A missing script keeps its historical
// 404; everything else is a 500 carrying the system-reported reason.
func DispatchFailure(err error) *Failure {
	if errors.Is(err, fs.ErrNotExist) {
		return failf(KindNotFound, StatusNotFound, "Can't locate CGI script\n")
	}
	return failf(KindExec, StatusInternal,
		"Unable to execute CGI script, please contact the system administrator\n%s\n", err)
}
