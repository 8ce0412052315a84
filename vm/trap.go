package vm

import (
	"fmt"

	"github.com/lookbusy1344/lc3-toolchain/bits"
)

const (
	TrapGETC   = 0x20
	TrapOUT    = 0x21
	TrapPUTS   = 0x22
	TrapIN     = 0x23
	TrapPUTSP  = 0x24
	TrapHALT   = 0x25
)

func (v *VM) execTrap(instr uint16) error {
	v.CPU.R[7] = v.CPU.PC
	vector := bits.Extract(instr, 7, 0)
	switch vector {
	case TrapGETC:
		v.trapGetc()
	case TrapOUT:
		v.trapOut()
	case TrapPUTS:
		v.trapPuts()
	case TrapIN:
		v.trapIn()
	case TrapPUTSP:
		v.trapPutsp()
	case TrapHALT:
		v.trapHalt()
	default:
		return &RuntimeError{Kind: ErrIllegalInstruction, PC: v.CPU.PC - 1}
	}
	return nil
}

// waitForKey busy-waits on the keyboard's Poll before consuming a byte
// with Next, the same wait-then-read shape LC-3's ROM trap handlers use,
// expressed through the same capability KBSR/KBDR reads consume.
func (v *VM) waitForKey() byte {
	for !v.Keyboard.Poll() {
	}
	return v.Keyboard.Next()
}

func (v *VM) trapGetc() {
	ch := v.waitForKey()
	v.CPU.R[0] = uint16(ch)
	v.CPU.SetCC(v.CPU.R[0])
}

func (v *VM) trapOut() {
	fmt.Fprintf(v.Out, "%c", byte(v.CPU.R[0]&0xFF))
}

func (v *VM) trapPuts() {
	addr := v.CPU.R[0]
	for {
		word := v.Mem.Read(addr)
		if word == 0 {
			break
		}
		fmt.Fprintf(v.Out, "%c", byte(word&0xFF))
		addr++
	}
}

func (v *VM) trapIn() {
	fmt.Fprint(v.Out, "Input a character: ")
	ch := v.waitForKey()
	if v.EchoInput {
		fmt.Fprintf(v.Out, "%c", ch)
	}
	v.CPU.R[0] = uint16(ch)
	v.CPU.SetCC(v.CPU.R[0])
}

// trapPutsp writes memory starting at R0, two packed characters per word
// (low byte first, then high byte), until a zero word. This unpacks two
// characters per word rather than emitting the raw word.
func (v *VM) trapPutsp() {
	addr := v.CPU.R[0]
	for {
		word := v.Mem.Read(addr)
		if word == 0 {
			break
		}
		low := byte(word & 0xFF)
		fmt.Fprintf(v.Out, "%c", low)
		high := byte(word >> 8)
		if high != 0 {
			fmt.Fprintf(v.Out, "%c", high)
		}
		addr++
	}
}

func (v *VM) trapHalt() {
	fmt.Fprint(v.Out, "\n--- halting ---\n")
	v.Halted = true
}
