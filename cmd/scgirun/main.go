// scgirun bridges an SCGI connection to a plain CGI script. A socket
// supervisor (inetd-style front end or connection launcher) runs one
// scgirun process per connection with the connection on stdin/stdout.
// scgirun reads the SCGI header block, rebuilds the CGI environment,
// validates the script path and replaces itself with the script; the rest
// of stdin is the request body and the script's stdout is the response.
//
// Usage mirrors the historical adapter:
//
//	scgirun                   script taken from SCRIPT_FILENAME
//	scgirun /var/www/cgi/     SCRIPT_FILENAME must reside under this dir
//	scgirun /srv/app.cgi a b  run this script with extra args, ignore SCRIPT_FILENAME
//
// Flags are optional and sit in front of the positional argument.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"scgirun/internal/config"
	"scgirun/internal/dispatch"
	"scgirun/internal/gateway"
	"scgirun/internal/logging"
	"scgirun/internal/version"
)

func main() {
	var configPath string
	var maxHeader int
	var logFile string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "Path to config json file (optional)")
	flag.IntVar(&maxHeader, "max-header", 0, "Override max SCGI header length in bytes")
	flag.StringVar(&logFile, "log-file", "", "Append diagnostics to this file")
	flag.BoolVar(&showVersion, "version", false, "Print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version.Get().String())
		return
	}

	cfg := config.Default()
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			fatalConfig(err)
		}
		cfg = c
	}
	if maxHeader > 0 {
		cfg.MaxHeaderLength = maxHeader
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if err := cfg.Validate(); err != nil {
		fatalConfig(err)
	}

	stage := logging.Nop()
	if cfg.LogFile != "" {
		s, closeLog, err := logging.Open(cfg.LogFile)
		if err != nil {
			// The side channel must never take down a request.
			log.Printf("diagnostics disabled: %v", err)
		} else {
			stage = s
			defer closeLog()
		}
	}
	stage.Started(os.Args)

	inv, fail := gateway.Run(os.Stdin, flag.Args(), os.Environ(), cfg, stage)
	if fail != nil {
		report(stage, fail)
	}

	stage.Dispatching(inv.Path, inv.Args)
	err := dispatch.Exec(inv)
	// Exec only returns when the script could not be started.
	report(stage, gateway.DispatchFailure(err))
}

// report writes the error response to the front end and terminates. It is
// the process-level half of the error funnel; never returns.
func report(stage *logging.Stage, f *gateway.Failure) {
	stage.Failure(f.Status, f.Message)
	f.Respond(os.Stdout)
	os.Exit(gateway.ExitCode)
}

// fatalConfig is operator error, not request error: say why on stderr for
// the supervisor's log, but still hand the client a well-formed response.
func fatalConfig(err error) {
	log.Printf("FATAL: %v", err)
	fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
	f := &gateway.Failure{Kind: gateway.KindConfig, Status: gateway.StatusInternal, Message: "Adapter misconfigured, please contact the system administrator"}
	f.Respond(os.Stdout)
	os.Exit(gateway.ExitCode)
}
