// Package config holds the adapter's runtime settings. The adapter must run
// flagless under a socket supervisor exactly like its predecessors, so every
// setting has a working default and the config file is optional.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"scgirun/internal/netstring"
)

// maxHeaderCeiling caps max_header_length. A header block larger than this
// is never legitimate front-end traffic.
const maxHeaderCeiling = 16 << 20

// Settings are the effective runtime settings for one adapter invocation.
type Settings struct {
	// MaxHeaderLength bounds the declared SCGI header-block length.
	MaxHeaderLength int `json:"max_header_length"`
	// CheckDirectory is an optional containment prefix every script path
	// must start with. Must end with '/' when set, the same rule as the
	// positional-argument form; a prefix given on the command line wins.
	CheckDirectory string `json:"check_directory,omitempty"`
	// CanonicalContainment switches the containment check to compare
	// lexically cleaned paths instead of raw bytes. Off by default for
	// byte-for-byte compatibility with existing deployments.
	CanonicalContainment bool `json:"canonical_containment,omitempty"`
	// LogFile enables the diagnostic side channel, appending to this path.
	LogFile string `json:"log_file,omitempty"`
}

// schema is checked before decoding so a typoed key fails loudly instead of
// silently running with defaults.
const schema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"max_header_length": {"type": "integer", "minimum": 1},
		"check_directory": {"type": "string"},
		"canonical_containment": {"type": "boolean"},
		"log_file": {"type": "string"}
	}
}`

// Default returns the settings the adapter runs with when no config file is
// given.
func Default() Settings {
	return Settings{MaxHeaderLength: netstring.DefaultMaxHeaderLength}
}

// Load reads and decodes a config file, filling unset fields from Default.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read config: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return s, fmt.Errorf("check config %q: %w", path, err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return s, fmt.Errorf("invalid config %q: %s", path, strings.Join(details, "; "))
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse config %q: %w", path, err)
	}
	if s.MaxHeaderLength == 0 {
		s.MaxHeaderLength = netstring.DefaultMaxHeaderLength
	}
	return s, nil
}

// Validate checks settings regardless of where they came from (file or
// flags).
func (s Settings) Validate() error {
	if s.MaxHeaderLength <= 0 {
		return fmt.Errorf("max_header_length must be positive, got %d", s.MaxHeaderLength)
	}
	if s.MaxHeaderLength > maxHeaderCeiling {
		return fmt.Errorf("max_header_length %d exceeds ceiling %d", s.MaxHeaderLength, maxHeaderCeiling)
	}
	if s.CheckDirectory != "" && !strings.HasSuffix(s.CheckDirectory, "/") {
		return fmt.Errorf("check_directory %q must end with '/'", s.CheckDirectory)
	}
	return nil
}
