// Command qrcodec encodes text into QR and Micro QR symbols and decodes QR
// symbols from image files.
//
//	qrcodec encode [-e L|M|Q|H] [--micro] [-o out.png] text...
//	qrcodec decode [--try-harder] [--timeout 5s] [-v] image...
package main

import (
	"fmt"
	"io"
	"os"
)

const (
	exitOK      = 0
	exitUsage   = 1
	exitFailure = 2
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return exitUsage
	}
	switch args[1] {
	case "encode":
		return runEncode(args[1:], stdout, stderr)
	case "decode":
		return runDecode(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	}
	fmt.Fprintf(stderr, "qrcodec: unknown command %q\n", args[1])
	printUsage(stderr)
	return exitUsage
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `QR code encoder and decoder
Usage: qrcodec encode [options] text...
       qrcodec decode [options] image...
Run "qrcodec encode --help" or "qrcodec decode --help" for options.
`)
}
