// Package encoder turns a parsed LC-3 program into the 16-bit object image
// spec'd by the external interface: origin word first, then one word per
// instruction cell, in address order.
package encoder

import (
	"github.com/lookbusy1344/lc3-toolchain/bits"
	"github.com/lookbusy1344/lc3-toolchain/isa"
	"github.com/lookbusy1344/lc3-toolchain/parser"
	"github.com/lookbusy1344/lc3-toolchain/symtab"
)

// Image is the encoded output: the origin address and the words that
// follow it, one per memory cell starting at Origin.
type Image struct {
	Origin uint16
	Words  []uint16
}

// Encode produces the object image for prog. Every instruction resolves
// its own label references against prog.Symbols; a label that never
// resolves, or an offset that overflows its field, is reported and halts
// encoding (assembly errors are fatal, per the error handling policy).
func Encode(prog *parser.Program) (*Image, error) {
	img := &Image{Origin: prog.Origin}
	for _, pi := range prog.Instructions {
		words, err := encodeOne(pi, prog.Symbols)
		if err != nil {
			return nil, err
		}
		img.Words = append(img.Words, words...)
	}
	return img, nil
}

func encodeOne(pi parser.Positioned, symbols *symtab.Table) ([]uint16, error) {
	instr := pi.Instr
	pc := pi.Address + 1 // the post-increment PC in effect when this instruction executes

	switch instr.Kind {
	case isa.OpADD, isa.OpAND:
		return []uint16{encodeAddAnd(instr)}, nil
	case isa.OpNOT:
		return []uint16{encodeNot(instr)}, nil
	case isa.OpBR:
		off, err := resolveOffset(instr.Offset, pc, symbols, 9, instr.Line)
		if err != nil {
			return nil, err
		}
		return []uint16{encodeBR(instr, off)}, nil
	case isa.OpJMP:
		return []uint16{encodeJmpLike(0xC, instr.BaseR)}, nil
	case isa.OpRET:
		return []uint16{encodeJmpLike(0xC, 7)}, nil
	case isa.OpJSRR:
		return []uint16{encodeJmpLike(0x4, instr.BaseR)}, nil
	case isa.OpJSR:
		off, err := resolveOffset(instr.Offset, pc, symbols, 11, instr.Line)
		if err != nil {
			return nil, err
		}
		return []uint16{encodeJSR(off)}, nil
	case isa.OpLD, isa.OpLDI, isa.OpLEA, isa.OpST, isa.OpSTI:
		off, err := resolveOffset(instr.Offset, pc, symbols, 9, instr.Line)
		if err != nil {
			return nil, err
		}
		return []uint16{encodePCRelative(instr, off)}, nil
	case isa.OpLDR, isa.OpSTR:
		return []uint16{encodeBaseOffset(instr)}, nil
	case isa.OpTRAP:
		return []uint16{encodeTrap(instr)}, nil
	case isa.OpRTI:
		return []uint16{0x8000}, nil
	case isa.DirFill:
		return []uint16{uint16(instr.Addr)}, nil
	case isa.DirBlkw:
		return make([]uint16, instr.Count), nil
	case isa.DirStringz:
		words := make([]uint16, 0, len(instr.Text)+1)
		for i := 0; i < len(instr.Text); i++ {
			words = append(words, uint16(instr.Text[i]))
		}
		words = append(words, 0)
		return words, nil
	default:
		return nil, &Error{Line: instr.Line, Kind: parser.ErrUnknownMnemonic, Message: "unencodable instruction kind"}
	}
}

// resolveOffset computes the signed field value for a PC-relative operand:
// a literal immediate is used directly, a label is resolved against
// symbols and combined with the post-increment pc per
// offset = symbol - (pc+1). The pc passed in here is already pi.Address+1,
// so the formula reduces to symbol - pc.
func resolveOffset(op isa.Operand, pc uint16, symbols *symtab.Table, width int, line int) (int32, error) {
	var value int32
	if op.IsImmediate {
		value = op.Immediate
	} else {
		addr, err := symbols.Lookup(op.Label)
		if err != nil {
			return 0, &Error{Line: line, Kind: parser.ErrUnresolvedSymbol, Message: err.Error()}
		}
		value = int32(addr) - int32(pc)
	}
	if !bits.FitsSigned(value, width) {
		return 0, &Error{Line: line, Kind: parser.ErrOffsetOverflow, Message: "offset does not fit in field width"}
	}
	return value, nil
}
