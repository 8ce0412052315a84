// Command emulator loads an LC-3 object image and executes it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lookbusy1344/lc3-toolchain/config"
	"github.com/lookbusy1344/lc3-toolchain/loader"
	"github.com/lookbusy1344/lc3-toolchain/parser"
	"github.com/lookbusy1344/lc3-toolchain/vm"
)

func ioError(path string, err error) *parser.Error {
	return parser.NewError(parser.Position{Filename: path}, parser.ErrIOError, err.Error())
}

func main() {
	var (
		maxCycles   = flag.Int("max-cycles", 0, "override the configured maximum cycle count (0 uses config)")
		verboseMode = flag.Bool("verbose", false, "print cycle count on HALT")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: emulator [-max-cycles N] [-verbose] <image>")
		os.Exit(1)
	}
	imagePath := flag.Arg(0)

	cfg, _ := config.Load()
	ceiling := cfg.Emulator.MaxCycles
	if *maxCycles > 0 {
		ceiling = *maxCycles
	}

	f, err := os.Open(imagePath) // #nosec G304 -- user-provided object file path
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", ioError(imagePath, err))
		os.Exit(1)
	}
	origin, words, err := loader.ReadImage(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", ioError(imagePath, err))
		os.Exit(1)
	}

	keyboard := vm.NewStdinKeyboard(os.Stdin)
	machine := vm.New(keyboard, os.Stdout)
	machine.MaxCycles = ceiling
	machine.EchoInput = cfg.Emulator.EchoInput
	loader.LoadImage(machine, origin, words)

	if err := machine.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("halted after %d cycle(s)\n", machine.Cycles)
	}
}
