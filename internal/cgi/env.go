// Package cgi reconstructs the legacy CGI execution contract from a parsed
// SCGI header block: the effective environment, the resolved script path,
// and the string-level safety checks that gate dispatch.
package cgi

import (
	"scgirun/internal/netstring"
	"strings"
)

const (
	// ScriptFilenameVar names the header variable the script path is taken
	// from when the command line does not override it.
	ScriptFilenameVar = "SCRIPT_FILENAME"

	// protocolMarkerVar is the front-end protocol selector. It is stripped
	// so the script sees a plain CGI environment.
	protocolMarkerVar = "SCGI"

	gatewayInterfaceVar   = "GATEWAY_INTERFACE"
	gatewayInterfaceValue = "CGI/1.1"
)

// Environ is an ordered set of NAME=VALUE entries. Entries keep first-set
// order; setting an existing name overwrites its value in place (last write
// wins). It is a plain value owned by the pipeline, never the process-global
// environment table.
type Environ struct {
	order []string
	vals  map[string]string
}

// NewEnviron builds an Environ from NAME=VALUE strings, as returned by
// os.Environ. Malformed entries without '=' are kept with an empty value.
func NewEnviron(entries []string) *Environ {
	e := &Environ{vals: make(map[string]string, len(entries))}
	for _, s := range entries {
		name, value, _ := strings.Cut(s, "=")
		e.Set(name, value)
	}
	return e
}

// Set adds or overwrites an entry.
func (e *Environ) Set(name, value string) {
	if _, ok := e.vals[name]; !ok {
		e.order = append(e.order, name)
	}
	e.vals[name] = value
}

// Unset removes an entry if present.
func (e *Environ) Unset(name string) {
	if _, ok := e.vals[name]; !ok {
		return
	}
	delete(e.vals, name)
	for i, n := range e.order {
		if n == name {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Lookup returns the value for name and whether it is set.
func (e *Environ) Lookup(name string) (string, bool) {
	v, ok := e.vals[name]
	return v, ok
}

// Get returns the value for name, or "" when unset.
func (e *Environ) Get(name string) string { return e.vals[name] }

// Len returns the number of entries.
func (e *Environ) Len() int { return len(e.order) }

// Strings renders the environment as NAME=VALUE entries in order, the form
// exec wants.
func (e *Environ) Strings() []string {
	out := make([]string, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, name+"="+e.vals[name])
	}
	return out
}

// BuildEnviron merges the header pairs over the ambient environment and
// applies the CGI compatibility markers: the SCGI selector is removed and
// GATEWAY_INTERFACE is pinned to CGI/1.1 so the script sees a legacy
// gateway. Header pairs overwrite ambient entries of the same name, and a
// duplicate name inside the header keeps its last value.
func BuildEnviron(pairs []netstring.Pair, ambient []string) *Environ {
	env := NewEnviron(ambient)
	for _, p := range pairs {
		env.Set(p.Name, p.Value)
	}
	env.Unset(protocolMarkerVar)
	env.Set(gatewayInterfaceVar, gatewayInterfaceValue)
	return env
}
