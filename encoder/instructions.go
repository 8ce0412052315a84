package encoder

import (
	"github.com/lookbusy1344/lc3-toolchain/bits"
	"github.com/lookbusy1344/lc3-toolchain/isa"
)

func encodeAddAnd(instr isa.Instruction) uint16 {
	opcode := uint16(0x1)
	if instr.Kind == isa.OpAND {
		opcode = 0x5
	}
	var b bits.Builder
	b.Place(opcode, 15, 12).Place(uint16(instr.DR), 11, 9).Place(uint16(instr.SR1), 8, 6)
	if instr.UsesImmediate {
		b.Place(1, 5, 5).Place(uint16(instr.Immediate)&0x1F, 4, 0)
	} else {
		b.Place(0, 5, 5).Place(0, 4, 3).Place(uint16(instr.SR2), 2, 0)
	}
	return b.Word()
}

func encodeNot(instr isa.Instruction) uint16 {
	var b bits.Builder
	b.Place(0x9, 15, 12).Place(uint16(instr.DR), 11, 9).Place(uint16(instr.SR1), 8, 6).Place(0x3F, 5, 0)
	return b.Word()
}

func encodeBR(instr isa.Instruction, off int32) uint16 {
	var b bits.Builder
	b.Place(0x0, 15, 12)
	if instr.N {
		b.Place(1, 11, 11)
	}
	if instr.Z {
		b.Place(1, 10, 10)
	}
	if instr.P {
		b.Place(1, 9, 9)
	}
	b.Place(uint16(off)&0x1FF, 8, 0)
	return b.Word()
}

// encodeJmpLike builds the JMP/RET/JSRR shape: `opcode 000 BaseR 000000`.
func encodeJmpLike(opcode uint16, baseR int) uint16 {
	var b bits.Builder
	b.Place(opcode, 15, 12).Place(0, 11, 9).Place(uint16(baseR), 8, 6).Place(0, 5, 0)
	return b.Word()
}

func encodeJSR(off int32) uint16 {
	var b bits.Builder
	b.Place(0x4, 15, 12).Place(1, 11, 11).Place(uint16(off)&0x7FF, 10, 0)
	return b.Word()
}

// encodePCRelative builds the LD/LDI/LEA/ST/STI shape: `opcode DR/SR off9`.
func encodePCRelative(instr isa.Instruction, off int32) uint16 {
	opcode := map[isa.Kind]uint16{
		isa.OpLD: 0x2, isa.OpLDI: 0xA, isa.OpLEA: 0xE,
		isa.OpST: 0x3, isa.OpSTI: 0xB,
	}[instr.Kind]
	reg := instr.DR
	if instr.Kind == isa.OpST || instr.Kind == isa.OpSTI {
		reg = instr.SR
	}
	var b bits.Builder
	b.Place(opcode, 15, 12).Place(uint16(reg), 11, 9).Place(uint16(off)&0x1FF, 8, 0)
	return b.Word()
}

// encodeBaseOffset builds the LDR/STR shape: `opcode DR/SR BaseR off6`.
func encodeBaseOffset(instr isa.Instruction) uint16 {
	opcode := uint16(0x6)
	reg := instr.DR
	if instr.Kind == isa.OpSTR {
		opcode = 0x7
		reg = instr.SR
	}
	var b bits.Builder
	b.Place(opcode, 15, 12).Place(uint16(reg), 11, 9).Place(uint16(instr.BaseR), 8, 6).
		Place(uint16(instr.Immediate)&0x3F, 5, 0)
	return b.Word()
}

func encodeTrap(instr isa.Instruction) uint16 {
	var b bits.Builder
	b.Place(0xF, 15, 12).Place(0, 11, 8).Place(uint16(instr.TrapVector)&0xFF, 7, 0)
	return b.Word()
}
