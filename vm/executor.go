package vm

import (
	"fmt"
	"io"

	"github.com/lookbusy1344/lc3-toolchain/bits"
)

// VM ties together a CPU, memory, keyboard, and output sink into the
// fetch-decode-execute loop spec's emulator core describes.
type VM struct {
	CPU      CPU
	Mem      *Memory
	Keyboard Keyboard
	Out      io.Writer

	Halted    bool
	Cycles    int
	MaxCycles int // 0 means unbounded

	// EchoInput controls whether IN echoes the consumed character back to
	// Out; GETC never echoes. Defaults to false; callers set it from config.
	EchoInput bool
}

// New returns a VM with memory backed by keyboard and output sent to out.
func New(keyboard Keyboard, out io.Writer) *VM {
	return &VM{
		CPU:      CPU{},
		Mem:      NewMemory(keyboard),
		Keyboard: keyboard,
		Out:      out,
	}
}

// Load writes an object image into memory and sets PC to its origin.
func (v *VM) Load(origin uint16, words []uint16) {
	v.Mem.Load(origin, words)
	v.CPU.PC = origin
}

// Run steps the VM until TRAP HALT executes, the cycle ceiling is
// reached, or a fatal runtime error occurs.
func (v *VM) Run() error {
	for !v.Halted {
		if v.MaxCycles > 0 && v.Cycles >= v.MaxCycles {
			return fmt.Errorf("exceeded max cycle count %d", v.MaxCycles)
		}
		if err := v.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step fetches, decodes, and executes one instruction. PC is incremented
// before the instruction's effect is computed, so every PC-relative
// operand combines with the post-increment PC, per the ISA.
func (v *VM) Step() error {
	instr := v.Mem.Read(v.CPU.PC)
	v.CPU.PC++
	v.Cycles++
	return v.execute(instr)
}

func (v *VM) execute(instr uint16) error {
	opcode := bits.Extract(instr, 15, 12)
	switch opcode {
	case 0x1:
		v.execAddAnd(instr, false)
	case 0x5:
		v.execAddAnd(instr, true)
	case 0x9:
		v.execNot(instr)
	case 0x0:
		v.execBR(instr)
	case 0xC:
		v.execJmp(instr)
	case 0x4:
		v.execJsr(instr)
	case 0x2:
		v.execLd(instr)
	case 0xA:
		v.execLdi(instr)
	case 0x6:
		v.execLdr(instr)
	case 0xE:
		v.execLea(instr)
	case 0x3:
		return v.execSt(instr)
	case 0xB:
		return v.execSti(instr)
	case 0x7:
		return v.execStr(instr)
	case 0xF:
		return v.execTrap(instr)
	case 0x8:
		return &RuntimeError{Kind: ErrPrivilegedInstruction, PC: v.CPU.PC - 1}
	case 0xD:
		return &RuntimeError{Kind: ErrIllegalInstruction, PC: v.CPU.PC - 1}
	default:
		return &RuntimeError{Kind: ErrIllegalInstruction, PC: v.CPU.PC - 1}
	}
	return nil
}

func (v *VM) execAddAnd(instr uint16, isAnd bool) {
	dr := bits.Extract(instr, 11, 9)
	sr1 := bits.Extract(instr, 8, 6)
	var operand2 uint16
	if bits.Extract(instr, 5, 5) == 1 {
		operand2 = bits.SignExtend(bits.Extract(instr, 4, 0), 5)
	} else {
		operand2 = v.CPU.R[bits.Extract(instr, 2, 0)]
	}
	var result uint16
	if isAnd {
		result = v.CPU.R[sr1] & operand2
	} else {
		result = v.CPU.R[sr1] + operand2
	}
	v.CPU.R[dr] = result
	v.CPU.SetCC(result)
}

func (v *VM) execNot(instr uint16) {
	dr := bits.Extract(instr, 11, 9)
	sr := bits.Extract(instr, 8, 6)
	result := ^v.CPU.R[sr]
	v.CPU.R[dr] = result
	v.CPU.SetCC(result)
}

func (v *VM) execBR(instr uint16) {
	n := bits.Extract(instr, 11, 11) == 1
	z := bits.Extract(instr, 10, 10) == 1
	p := bits.Extract(instr, 9, 9) == 1
	if (n && v.CPU.N) || (z && v.CPU.Z) || (p && v.CPU.P) {
		off := bits.SignExtend(bits.Extract(instr, 8, 0), 9)
		v.CPU.PC += off
	}
}

func (v *VM) execJmp(instr uint16) {
	baseR := bits.Extract(instr, 8, 6)
	v.CPU.PC = v.CPU.R[baseR]
}

func (v *VM) execJsr(instr uint16) {
	v.CPU.R[7] = v.CPU.PC
	if bits.Extract(instr, 11, 11) == 1 {
		off := bits.SignExtend(bits.Extract(instr, 10, 0), 11)
		v.CPU.PC += off
	} else {
		baseR := bits.Extract(instr, 8, 6)
		v.CPU.PC = v.CPU.R[baseR]
	}
}

func (v *VM) execLd(instr uint16) {
	dr := bits.Extract(instr, 11, 9)
	off := bits.SignExtend(bits.Extract(instr, 8, 0), 9)
	value := v.Mem.Read(v.CPU.PC + off)
	v.CPU.R[dr] = value
	v.CPU.SetCC(value)
}

func (v *VM) execLdi(instr uint16) {
	dr := bits.Extract(instr, 11, 9)
	off := bits.SignExtend(bits.Extract(instr, 8, 0), 9)
	addr := v.Mem.Read(v.CPU.PC + off)
	value := v.Mem.Read(addr)
	v.CPU.R[dr] = value
	v.CPU.SetCC(value)
}

func (v *VM) execLdr(instr uint16) {
	dr := bits.Extract(instr, 11, 9)
	baseR := bits.Extract(instr, 8, 6)
	off := bits.SignExtend(bits.Extract(instr, 5, 0), 6)
	value := v.Mem.Read(v.CPU.R[baseR] + off)
	v.CPU.R[dr] = value
	v.CPU.SetCC(value)
}

func (v *VM) execLea(instr uint16) {
	dr := bits.Extract(instr, 11, 9)
	off := bits.SignExtend(bits.Extract(instr, 8, 0), 9)
	value := v.CPU.PC + off
	v.CPU.R[dr] = value
	v.CPU.SetCC(value)
}

func (v *VM) execSt(instr uint16) error {
	sr := bits.Extract(instr, 11, 9)
	off := bits.SignExtend(bits.Extract(instr, 8, 0), 9)
	if !v.Mem.Write(v.CPU.PC+off, v.CPU.R[sr]) {
		return &RuntimeError{Kind: ErrIllegalMemory, PC: v.CPU.PC - 1}
	}
	return nil
}

func (v *VM) execSti(instr uint16) error {
	sr := bits.Extract(instr, 11, 9)
	off := bits.SignExtend(bits.Extract(instr, 8, 0), 9)
	addr := v.Mem.Read(v.CPU.PC + off)
	if !v.Mem.Write(addr, v.CPU.R[sr]) {
		return &RuntimeError{Kind: ErrIllegalMemory, PC: v.CPU.PC - 1}
	}
	return nil
}

func (v *VM) execStr(instr uint16) error {
	sr := bits.Extract(instr, 11, 9)
	baseR := bits.Extract(instr, 8, 6)
	off := bits.SignExtend(bits.Extract(instr, 5, 0), 6)
	if !v.Mem.Write(v.CPU.R[baseR]+off, v.CPU.R[sr]) {
		return &RuntimeError{Kind: ErrIllegalMemory, PC: v.CPU.PC - 1}
	}
	return nil
}
