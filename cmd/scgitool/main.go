// scgitool encodes and decodes SCGI header blocks. It exists for poking at
// scgirun deployments from the shell:
//
//	scgitool encode SCRIPT_FILENAME=/srv/cgi/a.cgi | scgirun /srv/cgi/
//	printf '24:...' | scgitool decode
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"scgirun/internal/netstring"
	"scgirun/internal/version"
)

func main() {
	var maxHeader int
	var showVersion bool
	flag.IntVar(&maxHeader, "max-header", netstring.DefaultMaxHeaderLength, "Max SCGI header length accepted by decode")
	flag.BoolVar(&showVersion, "version", false, "Print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version.Get().String())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	switch strings.ToLower(args[0]) {
	case "version":
		fmt.Println(version.Get().String())
	case "encode":
		block, err := buildBlock(args[1:])
		if err != nil {
			fmt.Fprintln(os.Stderr, "encode:", err)
			os.Exit(2)
		}
		os.Stdout.Write(block)
	case "decode":
		pairs, err := netstring.ReadHeader(os.Stdin, maxHeader)
		if err != nil {
			fmt.Fprintln(os.Stderr, "decode:", err)
			os.Exit(1)
		}
		for _, p := range pairs {
			fmt.Printf("%s=%s\n", p.Name, p.Value)
		}
	default:
		usage()
		os.Exit(2)
	}
}

// buildBlock turns NAME=VALUE arguments into a header block. The SCGI
// convention wants CONTENT_LENGTH first and the SCGI marker present, so
// both are filled in when the caller doesn't supply them.
func buildBlock(args []string) ([]byte, error) {
	var pairs []netstring.Pair
	haveLen := false
	haveMarker := false
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("argument %q is not NAME=VALUE", a)
		}
		if strings.ContainsRune(a, 0) {
			return nil, fmt.Errorf("argument %q contains a NUL byte", a)
		}
		switch name {
		case "CONTENT_LENGTH":
			haveLen = true
		case "SCGI":
			haveMarker = true
		}
		pairs = append(pairs, netstring.Pair{Name: name, Value: value})
	}
	if !haveLen {
		pairs = append([]netstring.Pair{{Name: "CONTENT_LENGTH", Value: "0"}}, pairs...)
	}
	if !haveMarker {
		pairs = append(pairs, netstring.Pair{Name: "SCGI", Value: "1"})
	}
	return netstring.Encode(pairs), nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `scgitool - SCGI header block utility

Commands:
  encode NAME=VALUE ...   write a header block to stdout
  decode                  read a header block from stdin, print its pairs
  version                 print version information`)
}
