// morphgen generates schema registration code for structs embedding schema.Base.
//
// Usage:
//
//	morphgen -dir ./models [-out schemas_gen.go] [-pkg models]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/SamHutchings/structmorph/morphgen"
)

const version = "0.1.0"

func main() {
	dir := flag.String("dir", "", "Directory containing schema structs (required)")
	outFile := flag.String("out", "", "Output Go file (default: stdout)")
	pkg := flag.String("pkg", "", "Package name for generated code (default: scanned package)")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("morphgen %s\n", version)
		os.Exit(0)
	}

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "error: -dir flag is required")
		flag.Usage()
		os.Exit(1)
	}

	scanned, err := morphgen.ScanDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var w *os.File
	if *outFile != "" {
		w, err = os.Create(*outFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating output: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = w.Close() }()
	} else {
		w = os.Stdout
	}

	cfg := morphgen.RenderConfig{
		PackageName: *pkg,
		Version:     version,
	}
	if err := morphgen.Render(w, scanned, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error rendering: %v\n", err)
		os.Exit(1)
	}
}
