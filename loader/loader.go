// Package loader places an encoded object image into emulator memory and
// establishes the initial program counter, mirroring the object file
// format's own layout: a flat little-endian stream of 16-bit words, the
// first being the origin.
package loader

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/lookbusy1344/lc3-toolchain/encoder"
	"github.com/lookbusy1344/lc3-toolchain/vm"
)

// WriteImage serialises img to w as the little-endian word stream the
// external object file format specifies.
func WriteImage(w io.Writer, img *encoder.Image) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, img.Origin); err != nil {
		return fmt.Errorf("write origin: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, img.Words); err != nil {
		return fmt.Errorf("write words: %w", err)
	}
	return bw.Flush()
}

// ReadImage reads an object file: the origin word followed by the program
// body, in the same little-endian layout WriteImage produces.
func ReadImage(r io.Reader) (origin uint16, words []uint16, err error) {
	br := bufio.NewReader(r)
	if err = binary.Read(br, binary.LittleEndian, &origin); err != nil {
		return 0, nil, fmt.Errorf("read origin: %w", err)
	}
	for {
		var word uint16
		if err = binary.Read(br, binary.LittleEndian, &word); err != nil {
			if err == io.EOF {
				err = nil
			} else {
				err = fmt.Errorf("read word: %w", err)
			}
			return origin, words, err
		}
		words = append(words, word)
	}
}

// LoadImage writes origin/words into v's memory and sets PC to origin, the
// emulator's loader step: the first word of the image is the origin,
// subsequent words are placed at sequential addresses starting there.
func LoadImage(v *vm.VM, origin uint16, words []uint16) {
	v.Load(origin, words)
}
