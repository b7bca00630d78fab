// Package netstring decodes and encodes the SCGI header block: a
// length-prefixed, NUL-delimited sequence of name/value pairs.
//
// Wire form:
//
//	<decimal-length>:<name>\0<value>\0...<name>\0<value>\0,
//
// The decimal length counts the pair bytes only, not the trailing comma.
// Request-body bytes may follow the comma on the same stream, so the
// decoder never reads past the end of the block.
package netstring

import (
	"bytes"
	"fmt"
	"io"
)

// DefaultMaxHeaderLength is the sanity bound on the declared block length.
// It matches the limit front ends have historically been tested against.
const DefaultMaxHeaderLength = 262144

// Pair is one name/value entry from a header block, in wire order.
type Pair struct {
	Name  string
	Value string
}

// DecodeError describes why a header block failed to decode.
//
// BadLengthByte is set when the failure was a stray byte inside the length
// prefix; the adapter reports that case with a different status line than
// the other decode failures.
type DecodeError struct {
	BadLengthByte bool
	Msg           string
}

func (e *DecodeError) Error() string { return e.Msg }

func decodeErrf(format string, args ...any) *DecodeError {
	return &DecodeError{Msg: fmt.Sprintf(format, args...)}
}

// ReadBlock reads one header block from r and returns its payload (the
// declared-length bytes between ':' and ','). The length prefix is scanned
// one byte at a time so nothing beyond the block is consumed; whatever
// follows the comma is left in r for the caller.
//
// max bounds the declared length. Pass DefaultMaxHeaderLength unless the
// deployment configures its own limit.
func ReadBlock(r io.Reader, max int) ([]byte, error) {
	if max <= 0 {
		max = DefaultMaxHeaderLength
	}

	ch, err := readByte(r)
	if err != nil {
		return nil, err
	}
	if ch < '0' || ch > '9' {
		return nil, decodeErrf("SCGI stream didn't start with a digit, started with char 0x%x", ch)
	}
	length := int(ch - '0')

	for {
		ch, err = readByte(r)
		if err != nil {
			return nil, err
		}
		if ch >= '0' && ch <= '9' {
			length = length*10 + int(ch-'0')
			if length > max {
				return nil, decodeErrf("SCGI Header length is not in the range 0..%d", max)
			}
			continue
		}
		if ch == ':' {
			break
		}
		return nil, &DecodeError{
			BadLengthByte: true,
			Msg:           fmt.Sprintf("Invalid character 0x%x in length", ch),
		}
	}

	// The +1 is for the comma after the pair bytes.
	block := make([]byte, length+1)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, decodeErrf("SCGI Header truncated")
	}
	if block[length] != ',' {
		return nil, decodeErrf("SCGI Header: Incomplete netstring, missing comma")
	}
	return block[:length], nil
}

// ParsePairs splits a block payload into its ordered name/value pairs.
//
// The payload must hold an even number of complete NUL-terminated strings:
// a name whose value would start at or past the end of the payload, or a
// value missing its terminator, is a corrupt table. ParsePairs does not
// modify the payload, so parsing the same buffer twice yields identical
// results.
func ParsePairs(payload []byte) ([]Pair, error) {
	var pairs []Pair
	for off := 0; off < len(payload); {
		n := bytes.IndexByte(payload[off:], 0)
		if n < 0 {
			return nil, decodeErrf("SCGI Header: Corrupt name/value table")
		}
		vstart := off + n + 1
		if vstart >= len(payload) {
			return nil, decodeErrf("SCGI Header: Corrupt name/value table")
		}
		v := bytes.IndexByte(payload[vstart:], 0)
		if v < 0 {
			return nil, decodeErrf("SCGI Header: Corrupt name/value table")
		}
		pairs = append(pairs, Pair{
			Name:  string(payload[off : off+n]),
			Value: string(payload[vstart : vstart+v]),
		})
		off = vstart + v + 1
	}
	return pairs, nil
}

// ReadHeader reads and parses one complete header block from r.
func ReadHeader(r io.Reader, max int) ([]Pair, error) {
	payload, err := ReadBlock(r, max)
	if err != nil {
		return nil, err
	}
	return ParsePairs(payload)
}

// Encode builds the wire form of a header block from ordered pairs.
// It is the exact inverse of ReadBlock+ParsePairs for any pair list whose
// names and values contain no NUL bytes.
func Encode(pairs []Pair) []byte {
	length := 0
	for _, p := range pairs {
		length += len(p.Name) + 1 + len(p.Value) + 1
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d:", length)
	for _, p := range pairs {
		b.WriteString(p.Name)
		b.WriteByte(0)
		b.WriteString(p.Value)
		b.WriteByte(0)
	}
	b.WriteByte(',')
	return b.Bytes()
}

func readByte(r io.Reader) (byte, error) {
	var one [1]byte
	if _, err := io.ReadFull(r, one[:]); err != nil {
		return 0, decodeErrf("SCGI stream truncated")
	}
	return one[0], nil
}
