package netstring

import (
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wire builds "<len>:name\0value\0...," from alternating name, value args.
func wire(pairs ...string) string {
	var payload strings.Builder
	for _, s := range pairs {
		payload.WriteString(s)
		payload.WriteByte(0)
	}
	p := payload.String()
	return strconv.Itoa(len(p)) + ":" + p + ","
}

func TestReadHeaderBasic(t *testing.T) {
	in := strings.NewReader(wire("CONTENT_LENGTH", "27", "SCGI", "1", "SCRIPT_FILENAME", "/srv/cgi/a.cgi"))
	pairs, err := ReadHeader(in, DefaultMaxHeaderLength)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	assert.Equal(t, Pair{"CONTENT_LENGTH", "27"}, pairs[0])
	assert.Equal(t, Pair{"SCGI", "1"}, pairs[1])
	assert.Equal(t, Pair{"SCRIPT_FILENAME", "/srv/cgi/a.cgi"}, pairs[2])
}

func TestReadHeaderEmptyBlock(t *testing.T) {
	pairs, err := ReadHeader(strings.NewReader("0:,"), DefaultMaxHeaderLength)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestReadHeaderLeavesBodyUnread(t *testing.T) {
	in := strings.NewReader(wire("CONTENT_LENGTH", "4") + "BODY")
	_, err := ReadHeader(in, DefaultMaxHeaderLength)
	require.NoError(t, err)

	rest, err := io.ReadAll(in)
	require.NoError(t, err)
	assert.Equal(t, "BODY", string(rest), "decoder must not consume request body bytes")
}

func TestReadHeaderDuplicateNamesKeepOrder(t *testing.T) {
	in := strings.NewReader(wire("A", "1", "A", "2"))
	pairs, err := ReadHeader(in, DefaultMaxHeaderLength)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "1", pairs[0].Value)
	assert.Equal(t, "2", pairs[1].Value)
}

func TestReadBlockEmptyStream(t *testing.T) {
	_, err := ReadBlock(strings.NewReader(""), DefaultMaxHeaderLength)
	require.Error(t, err)
	assert.Equal(t, "SCGI stream truncated", err.Error())
}

func TestReadBlockNonDigitStart(t *testing.T) {
	_, err := ReadBlock(strings.NewReader("x:,"), DefaultMaxHeaderLength)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "didn't start with a digit")
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.False(t, de.BadLengthByte)
}

func TestReadBlockBadByteInLength(t *testing.T) {
	_, err := ReadBlock(strings.NewReader("1x:,"), DefaultMaxHeaderLength)
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.True(t, de.BadLengthByte)
	assert.Equal(t, "Invalid character 0x78 in length", de.Msg)
}

func TestReadBlockLengthOverMax(t *testing.T) {
	_, err := ReadBlock(strings.NewReader("100:"), 99)
	require.Error(t, err)
	assert.Equal(t, "SCGI Header length is not in the range 0..99", err.Error())
}

func TestReadBlockTruncatedLength(t *testing.T) {
	_, err := ReadBlock(strings.NewReader("12"), DefaultMaxHeaderLength)
	require.Error(t, err)
	assert.Equal(t, "SCGI stream truncated", err.Error())
}

func TestReadBlockTruncatedPayload(t *testing.T) {
	_, err := ReadBlock(strings.NewReader("10:short"), DefaultMaxHeaderLength)
	require.Error(t, err)
	assert.Equal(t, "SCGI Header truncated", err.Error())
}

func TestReadBlockMissingComma(t *testing.T) {
	_, err := ReadBlock(strings.NewReader("4:ab\x00c"), DefaultMaxHeaderLength)
	require.Error(t, err)
	assert.Equal(t, "SCGI Header: Incomplete netstring, missing comma", err.Error())
}

func TestParsePairsCorruptTables(t *testing.T) {
	cases := map[string][]byte{
		"name without terminator":  []byte("NAME"),
		"value starts at end":      []byte("NAME\x00"),
		"value without terminator": []byte("NAME\x00value"),
		"odd number of strings":    []byte("A\x001\x00B\x00"),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePairs(payload)
			require.Error(t, err)
			assert.Equal(t, "SCGI Header: Corrupt name/value table", err.Error())
		})
	}
}

func TestParsePairsIdempotent(t *testing.T) {
	payload := []byte("A\x001\x00B\x002\x00")
	first, err := ParsePairs(payload)
	require.NoError(t, err)
	second, err := ParsePairs(payload)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParsePairsEmptyNamesAndValues(t *testing.T) {
	pairs, err := ParsePairs([]byte("\x00\x00A\x00\x00"))
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, Pair{"", ""}, pairs[0])
	assert.Equal(t, Pair{"A", ""}, pairs[1])
}

func TestEncodeWireFormat(t *testing.T) {
	got := Encode([]Pair{{"CONTENT_LENGTH", "0"}, {"SCGI", "1"}})
	assert.Equal(t, "23:CONTENT_LENGTH\x000\x00SCGI\x001\x00,", string(got))
}

func TestEncodeEmpty(t *testing.T) {
	assert.Equal(t, "0:,", string(Encode(nil)))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []Pair{
		{"CONTENT_LENGTH", "12"},
		{"SCGI", "1"},
		{"SCRIPT_FILENAME", "/srv/cgi/a.cgi"},
		{"QUERY_STRING", ""},
	}
	out, err := ReadHeader(strings.NewReader(string(Encode(in))), DefaultMaxHeaderLength)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
