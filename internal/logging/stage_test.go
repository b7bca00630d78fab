package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilAndNopStagesAreSafe(t *testing.T) {
	var nilStage *Stage
	nilStage.Started([]string{"scgirun"})
	nilStage.BlockRead(10)
	nilStage.PairSet("A", "1")
	nilStage.Resolved("/srv/a.cgi", "")
	nilStage.Dispatching("/srv/a.cgi", []string{"/srv/a.cgi"})
	nilStage.Failure("500 Internal Error", "boom")

	Nop().Started([]string{"scgirun"})
}

func TestOpenAppendsStructuredLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scgirun.log")

	stage, closeLog, err := Open(path)
	require.NoError(t, err)
	stage.Started([]string{"scgirun", "/var/www/cgi/"})
	stage.BlockRead(23)
	stage.PairSet("SCRIPT_FILENAME", "/var/www/cgi/app.cgi")
	stage.Resolved("/var/www/cgi/app.cgi", "/var/www/cgi/")
	stage.Failure("404 Not Found", "Can't locate CGI script")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"invocation"`)
	assert.Contains(t, out, "scgi header read")
	assert.Contains(t, out, "/var/www/cgi/app.cgi")
	assert.Contains(t, out, "404 Not Found")
	// One JSON object per line.
	assert.GreaterOrEqual(t, len(strings.Split(strings.TrimSpace(out), "\n")), 4)
}

func TestOpenAppendsAcrossInvocations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scgirun.log")

	first, closeFirst, err := Open(path)
	require.NoError(t, err)
	first.BlockRead(1)
	closeFirst()

	second, closeSecond, err := Open(path)
	require.NoError(t, err)
	second.BlockRead(2)
	closeSecond()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2, "second invocation must append, not truncate")
}

func TestOpenBadPath(t *testing.T) {
	_, _, err := Open(filepath.Join(t.TempDir(), "missing-dir", "x.log"))
	require.Error(t, err)
}
