// Package logging is the adapter's diagnostic side channel. It has no
// functional contract: the pipeline calls it at stage boundaries and it
// appends structured lines to a log file, or does nothing when disabled.
//
// Diagnostics never go to stdout. Stdout is the response stream; writing
// anything there would corrupt the reply the front end relays.
package logging

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Stage logs pipeline-stage boundaries for one adapter invocation. The nil
// *Stage and the disabled Stage are both safe no-ops, so callers never
// guard their calls.
type Stage struct {
	enabled bool
	log     zerolog.Logger
}

// Nop returns a disabled Stage.
func Nop() *Stage { return &Stage{} }

// Open returns a Stage appending to the file at path, plus a close func.
// Every line carries a timestamp and a per-invocation id: the supervisor
// runs one adapter process per connection, so concurrent appends from
// sibling processes interleave in the same file.
func Open(path string) (*Stage, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %q: %w", path, err)
	}
	lg := zerolog.New(f).With().
		Timestamp().
		Str("invocation", uuid.NewString()).
		Logger()
	return &Stage{enabled: true, log: lg}, func() { _ = f.Close() }, nil
}

func (s *Stage) on() bool { return s != nil && s.enabled }

// Started records the adapter's own argv at process start.
func (s *Stage) Started(args []string) {
	if !s.on() {
		return
	}
	s.log.Info().Strs("args", args).Msg("starting")
}

// BlockRead records the declared header-block length after a full read.
func (s *Stage) BlockRead(length int) {
	if !s.on() {
		return
	}
	s.log.Info().Int("length", length).Msg("scgi header read")
}

// PairSet records one header pair applied to the environment.
func (s *Stage) PairSet(name, value string) {
	if !s.on() {
		return
	}
	s.log.Debug().Str("name", name).Str("value", value).Msg("set")
}

// Resolved records the script path and containment directory after
// resolution.
func (s *Stage) Resolved(script, checkDir string) {
	if !s.on() {
		return
	}
	ev := s.log.Info().Str("script", script)
	if checkDir != "" {
		ev = ev.Str("check_directory", checkDir)
	}
	ev.Msg("script resolved")
}

// Dispatching records the final exec target just before the process image
// is replaced. On success nothing after this line is ever written.
func (s *Stage) Dispatching(path string, args []string) {
	if !s.on() {
		return
	}
	s.log.Info().Str("path", path).Strs("argv", args).Msg("dispatching")
}

// Failure records the error response sent back through the front end.
func (s *Stage) Failure(status, msg string) {
	if !s.on() {
		return
	}
	s.log.Error().Str("status", status).Str("message", msg).Msg("request failed")
}
