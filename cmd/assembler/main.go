// Command assembler translates LC-3 assembly source into a little-endian
// 16-bit object image.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lookbusy1344/lc3-toolchain/config"
	"github.com/lookbusy1344/lc3-toolchain/encoder"
	"github.com/lookbusy1344/lc3-toolchain/loader"
	"github.com/lookbusy1344/lc3-toolchain/parser"
)

func ioError(path string, err error) *parser.Error {
	return parser.NewError(parser.Position{Filename: path}, parser.ErrIOError, err.Error())
}

// defaultOutputPath derives the object file path used when -o is absent:
// the input's base name with its own extension stripped, plus ext. Falls
// back to "out"+ext when no sensible base name can be derived (a bare
// extension, or no base name at all).
func defaultOutputPath(input, ext string) string {
	base := filepath.Base(input)
	base = base[:len(base)-len(filepath.Ext(base))]
	if base == "" {
		return "out" + ext
	}
	return base + ext
}

func main() {
	var (
		output      = flag.String("o", "", "output object file path")
		verboseMode = flag.Bool("verbose", false, "print the word count, output path and origin on success")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: assembler [-o output] [-verbose] <input.asm>")
		os.Exit(1)
	}
	input := flag.Arg(0)

	cfg, _ := config.Load()

	outPath := *output
	if outPath == "" {
		outPath = defaultOutputPath(input, cfg.Assembler.DefaultExtension)
	}

	source, err := os.ReadFile(input) // #nosec G304 -- user-provided assembly file path
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", ioError(input, err))
		os.Exit(1)
	}

	p := parser.NewParser(string(source), filepath.Base(input))
	program, err := p.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	img, err := encoder.Encode(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath) // #nosec G304 -- user-provided output file path
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", ioError(outPath, err))
		os.Exit(1)
	}
	defer out.Close()

	if err := loader.WriteImage(out, img); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", ioError(outPath, err))
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("assembled %d word(s) to %s, origin %#04x\n", len(img.Words), outPath, img.Origin)
	}
}
