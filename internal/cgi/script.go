package cgi

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrMissingScript is returned when neither the header environment nor the
// command line supplied a script path.
var ErrMissingScript = errors.New("CGI environment missing SCRIPT_FILENAME")

// Invocation is the resolved script execution: the path to run, its full
// argument vector (argv[0] is the path), and the environment it owns. The
// request/response streams are not part of the value; they are inherited
// from the adapter process at dispatch time.
type Invocation struct {
	Path string
	Args []string
	Env  *Environ
}

// ResolveScript determines the script path and argument vector from the
// built environment and the adapter's positional arguments.
//
// With no arguments the path comes from SCRIPT_FILENAME. One argument ending
// in '/' is a containment directory: the path still comes from the
// environment, but must later validate against that prefix. Any other first
// argument overrides the path outright (the inetd-config style), and the
// remaining arguments become extra script argv entries.
func ResolveScript(env *Environ, args []string) (*Invocation, string, error) {
	script, _ := env.Lookup(ScriptFilenameVar)
	checkDir := ""
	var extra []string

	if len(args) > 0 {
		if strings.HasSuffix(args[0], "/") {
			checkDir = args[0]
		} else {
			script = args[0]
			extra = args[1:]
		}
	}

	if script == "" {
		return nil, "", ErrMissingScript
	}

	return &Invocation{
		Path: script,
		Args: append([]string{script}, extra...),
		Env:  env,
	}, checkDir, nil
}

// ValidateScriptPath applies the string-level safety checks that gate
// dispatch. A path containing the parent-directory token is always
// rejected, containment directory or not. When checkDir is non-empty the
// path must reside under it; by default that is a literal byte-prefix
// comparison with no filesystem canonicalization, preserving the historical
// contract. With canonical set, both sides are lexically cleaned first so
// '.' segments and doubled slashes cannot sidestep the prefix (symlinks are
// still not resolved).
func ValidateScriptPath(script, checkDir string, canonical bool) error {
	if strings.Contains(script, "../") {
		return errors.New(`SCRIPT_FILENAME should not include "../"`)
	}
	if checkDir == "" {
		return nil
	}
	if !contained(script, checkDir, canonical) {
		return fmt.Errorf("[%s] doesn't reside under [%s]", script, checkDir)
	}
	return nil
}

func contained(script, checkDir string, canonical bool) bool {
	if !canonical {
		return strings.HasPrefix(script, checkDir)
	}
	dir := path.Clean(checkDir)
	cleaned := path.Clean(script)
	if dir == "/" {
		return strings.HasPrefix(cleaned, "/")
	}
	return cleaned == dir || strings.HasPrefix(cleaned, dir+"/")
}
