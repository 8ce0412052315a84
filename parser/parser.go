// Package parser implements the LC-3 assembler front end: a single-pass
// parser that tokenises source lines, resolves labels into a symbol
// table as it walks the location counter, and produces a stream of
// isa.Instruction values annotated with their address for the encoder to
// consume.
package parser

import (
	"strconv"
	"strings"

	"github.com/lookbusy1344/lc3-toolchain/isa"
	"github.com/lookbusy1344/lc3-toolchain/symtab"
)

// Positioned pairs an instruction with the address the encoder must place
// it at.
type Positioned struct {
	Address uint16
	Instr   isa.Instruction
}

// Program is the result of a successful parse: the origin address, the
// positioned instruction stream, and the symbol table built along the way.
type Program struct {
	Origin       uint16
	Instructions []Positioned
	Symbols      *symtab.Table
}

// Parser walks tokens from a Lexer, building a Program.
type Parser struct {
	lex      *Lexer
	filename string
	errs     ErrorList

	symbols *symtab.Table
	lc      uint32 // wide enough to detect overflow past 0xFFFF
	origin  uint16
	sawOrig bool
	sawEnd  bool

	program []Positioned
}

// NewParser returns a Parser ready to consume source under filename.
func NewParser(source, filename string) *Parser {
	return &Parser{
		lex:      NewLexer(source, filename),
		filename: filename,
		symbols:  symtab.New(),
	}
}

// Parse runs the single pass described by the assembler front end: strip
// comments, tokenise, resolve labels against the running location counter,
// validate operand arity, and build the instruction stream.
func (p *Parser) Parse() (*Program, error) {
	for {
		tokens, pos, atEOF := p.readLine()
		if len(tokens) > 0 {
			p.parseLine(tokens, pos)
		}
		if atEOF {
			break
		}
	}

	if !p.sawOrig || !p.sawEnd {
		p.errs.Add(NewError(Position{Filename: p.filename}, ErrProgramShape,
			"program must begin with .ORIG and end with .END"))
	}

	if p.errs.HasErrors() {
		return nil, &p.errs
	}

	return &Program{Origin: p.origin, Instructions: p.program, Symbols: p.symbols}, nil
}

// readLine collects tokens up to (not including) the terminating newline
// or EOF, returning whether EOF was reached.
func (p *Parser) readLine() ([]Token, Position, bool) {
	var tokens []Token
	var pos Position
	first := true
	for {
		tok := p.lex.NextToken()
		if first {
			pos = tok.Pos
			first = false
		}
		if tok.Type == TokenNewline {
			return tokens, pos, false
		}
		if tok.Type == TokenEOF {
			return tokens, pos, true
		}
		tokens = append(tokens, tok)
	}
}

var directiveArity = map[string]int{
	".ORIG": 1, ".FILL": 1, ".BLKW": 1, ".STRINGZ": 1, ".END": 0,
}

var opcodeArity = map[string]int{
	"ADD": 3, "AND": 3, "NOT": 2,
	"JMP": 1, "JSRR": 1, "RET": 0, "RTI": 0, "JSR": 1,
	"LD": 2, "LDI": 2, "LEA": 2, "ST": 2, "STI": 2,
	"LDR": 3, "STR": 3, "TRAP": 1,
}

func (p *Parser) parseLine(tokens []Token, pos Position) {
	// A leading label precedes either an opcode or a directive.
	var label string
	idx := 0
	if idx < len(tokens) && tokens[idx].Type == TokenWord && !isKeyword(tokens[idx].Literal) {
		label = tokens[idx].Literal
		idx++
	}

	if idx >= len(tokens) {
		if label != "" {
			p.errs.Add(NewError(pos, ErrUnknownMnemonic, "label with no instruction: "+label))
		}
		return
	}

	head := tokens[idx]
	if head.Type != TokenWord {
		p.errs.Add(NewError(head.Pos, ErrLexicalError, "expected mnemonic or directive"))
		return
	}
	mnemonic := strings.ToUpper(head.Literal)
	operands := tokens[idx+1:]

	if label != "" {
		if err := p.symbols.Define(label, uint16(p.lc)); err != nil {
			p.errs.Add(NewError(pos, ErrDuplicateSymbol, err.Error()))
		}
	}

	if strings.HasPrefix(mnemonic, ".") {
		p.parseDirective(mnemonic, operands, pos, label)
		return
	}

	if strings.HasPrefix(mnemonic, "BR") {
		p.parseBR(mnemonic, operands, pos, label)
		return
	}

	arity, ok := opcodeArity[mnemonic]
	if !ok {
		p.errs.Add(NewError(pos, ErrUnknownMnemonic, "unknown mnemonic "+mnemonic))
		return
	}
	operandWords := splitOperands(operands, &p.errs)
	if len(operandWords) != arity {
		p.errs.Add(NewError(pos, ErrArityError, mnemonicArityMessage(mnemonic, arity, len(operandWords))))
		return
	}

	instr, ok := p.buildOpcode(mnemonic, operandWords, pos)
	if !ok {
		return
	}
	instr.Label = label
	instr.Line = pos.Line
	p.emit(instr, pos)
}

func mnemonicArityMessage(mnemonic string, want, got int) string {
	return mnemonic + " expects " + strconv.Itoa(want) + " operand(s), got " + strconv.Itoa(got)
}

// isKeyword reports whether word names a recognised mnemonic or directive,
// used to disambiguate a leading label from the instruction itself.
func isKeyword(word string) bool {
	up := strings.ToUpper(word)
	if strings.HasPrefix(up, ".") {
		_, ok := directiveArity[up]
		return ok
	}
	if strings.HasPrefix(up, "BR") && isBRSuffix(up[2:]) {
		return true
	}
	_, ok := opcodeArity[up]
	return ok
}

func isBRSuffix(suffix string) bool {
	if suffix == "" {
		return true
	}
	seen := map[byte]bool{}
	for i := 0; i < len(suffix); i++ {
		c := suffix[i]
		if c != 'N' && c != 'Z' && c != 'P' {
			return false
		}
		if seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

func (p *Parser) parseBR(mnemonic string, operands []Token, pos Position, label string) {
	suffix := mnemonic[2:]
	if !isBRSuffix(suffix) {
		p.errs.Add(NewError(pos, ErrUnknownMnemonic, "malformed BR suffix in "+mnemonic))
		return
	}
	operandWords := splitOperands(operands, &p.errs)
	if len(operandWords) != 1 {
		p.errs.Add(NewError(pos, ErrArityError, mnemonicArityMessage("BR", 1, len(operandWords))))
		return
	}
	n, z, pp := strings.ContainsRune(suffix, 'N'), strings.ContainsRune(suffix, 'Z'), strings.ContainsRune(suffix, 'P')
	if suffix == "" {
		n, z, pp = true, true, true
	}
	instr := isa.Instruction{
		Kind: isa.OpBR, N: n, Z: z, P: pp,
		Offset: parseOperandWord(operandWords[0]),
		Label:  label, Line: pos.Line,
	}
	p.emit(instr, pos)
}

func (p *Parser) parseDirective(mnemonic string, operands []Token, pos Position, label string) {
	arity := directiveArity[mnemonic]
	switch mnemonic {
	case ".STRINGZ":
		if len(operands) != 1 || operands[0].Type != TokenString {
			p.errs.Add(NewError(pos, ErrArityError, ".STRINGZ expects a string literal operand"))
			return
		}
		text := operands[0].Literal
		instr := isa.Instruction{Kind: isa.DirStringz, Text: text, Label: label, Line: pos.Line}
		p.emit(instr, pos)
		return
	case ".END":
		if len(operands) != arity {
			p.errs.Add(NewError(pos, ErrArityError, mnemonicArityMessage(".END", arity, len(operands))))
			return
		}
		p.sawEnd = true
		return
	}

	operandWords := splitOperands(operands, &p.errs)
	if len(operandWords) != arity {
		p.errs.Add(NewError(pos, ErrArityError, mnemonicArityMessage(mnemonic, arity, len(operandWords))))
		return
	}

	value, err := parseImmediate(operandWords[0].Literal)
	if err != nil {
		p.errs.Add(NewError(pos, ErrLexicalError, err.Error()))
		return
	}

	switch mnemonic {
	case ".ORIG":
		if p.sawOrig {
			p.errs.Add(NewError(pos, ErrProgramShape, "duplicate .ORIG"))
			return
		}
		p.sawOrig = true
		p.origin = uint16(value)
		p.lc = uint32(value)
		return
	case ".FILL":
		instr := isa.Instruction{Kind: isa.DirFill, Addr: value, Label: label, Line: pos.Line}
		p.emit(instr, pos)
	case ".BLKW":
		instr := isa.Instruction{Kind: isa.DirBlkw, Count: value, Label: label, Line: pos.Line}
		p.emit(instr, pos)
	}
}

// emit appends instr at the current location counter and advances the
// counter by the instruction's cell size.
func (p *Parser) emit(instr isa.Instruction, pos Position) {
	if !p.sawOrig {
		p.errs.Add(NewError(pos, ErrProgramShape, "instruction before .ORIG"))
		return
	}
	p.program = append(p.program, Positioned{Address: uint16(p.lc), Instr: instr})
	p.lc += uint32(cellSize(instr))
}

func cellSize(instr isa.Instruction) uint32 {
	switch instr.Kind {
	case isa.DirBlkw:
		return uint32(instr.Count)
	case isa.DirStringz:
		return uint32(len(instr.Text)) + 1
	default:
		return 1
	}
}

// splitOperands turns a comma-separated token run into the list of
// non-comma literals, reporting a lexical error on a malformed separator.
func splitOperands(tokens []Token, errs *ErrorList) []Token {
	var words []Token
	expectWord := true
	for _, tok := range tokens {
		if tok.Type == TokenComma {
			if expectWord {
				errs.Add(NewError(tok.Pos, ErrLexicalError, "unexpected comma"))
			}
			expectWord = true
			continue
		}
		if !expectWord {
			errs.Add(NewError(tok.Pos, ErrLexicalError, "expected comma between operands"))
		}
		words = append(words, tok)
		expectWord = false
	}
	return words
}

func parseOperandWord(tok Token) isa.Operand {
	return parseOperand(tok.Literal)
}

func parseOperand(text string) isa.Operand {
	if r, ok := parseRegister(text); ok {
		return isa.RegisterOperand(r)
	}
	if v, err := parseImmediate(text); err == nil && (strings.HasPrefix(text, "#") || strings.HasPrefix(strings.ToUpper(text), "X")) {
		return isa.ImmediateOperand(v)
	}
	return isa.LabelOperand(text)
}

func parseRegister(text string) (int, bool) {
	if len(text) != 2 {
		return 0, false
	}
	if text[0] != 'R' && text[0] != 'r' {
		return 0, false
	}
	if text[1] < '0' || text[1] > '7' {
		return 0, false
	}
	return int(text[1] - '0'), true
}

// parseImmediate parses `#<signed decimal>` or `x<hex>`/`X<hex>`.
func parseImmediate(text string) (int32, error) {
	switch {
	case strings.HasPrefix(text, "#"):
		v, err := strconv.ParseInt(text[1:], 10, 32)
		if err != nil {
			return 0, &Error{Kind: ErrLexicalError, Message: "malformed decimal immediate: " + text}
		}
		return int32(v), nil
	case len(text) > 0 && (text[0] == 'x' || text[0] == 'X'):
		v, err := strconv.ParseInt(text[1:], 16, 32)
		if err != nil {
			return 0, &Error{Kind: ErrLexicalError, Message: "malformed hex immediate: " + text}
		}
		return int32(v), nil
	default:
		return 0, &Error{Kind: ErrLexicalError, Message: "not an immediate: " + text}
	}
}

func (p *Parser) buildOpcode(mnemonic string, operands []Token, pos Position) (isa.Instruction, bool) {
	switch mnemonic {
	case "ADD", "AND":
		kind := isa.OpADD
		if mnemonic == "AND" {
			kind = isa.OpAND
		}
		dr, ok1 := parseRegister(operands[0].Literal)
		sr1, ok2 := parseRegister(operands[1].Literal)
		if !ok1 || !ok2 {
			p.errs.Add(NewError(pos, ErrLexicalError, mnemonic+" expects register operands"))
			return isa.Instruction{}, false
		}
		if r2, ok := parseRegister(operands[2].Literal); ok {
			return isa.Instruction{Kind: kind, DR: dr, SR1: sr1, SR2: r2}, true
		}
		imm, err := parseImmediate(operands[2].Literal)
		if err != nil {
			p.errs.Add(NewError(pos, ErrLexicalError, err.Error()))
			return isa.Instruction{}, false
		}
		return isa.Instruction{Kind: kind, DR: dr, SR1: sr1, UsesImmediate: true, Immediate: imm}, true

	case "NOT":
		dr, ok1 := parseRegister(operands[0].Literal)
		sr, ok2 := parseRegister(operands[1].Literal)
		if !ok1 || !ok2 {
			p.errs.Add(NewError(pos, ErrLexicalError, "NOT expects register operands"))
			return isa.Instruction{}, false
		}
		return isa.Instruction{Kind: isa.OpNOT, DR: dr, SR1: sr}, true

	case "JMP", "JSRR":
		baseR, ok := parseRegister(operands[0].Literal)
		if !ok {
			p.errs.Add(NewError(pos, ErrLexicalError, mnemonic+" expects a register operand"))
			return isa.Instruction{}, false
		}
		kind := isa.OpJMP
		if mnemonic == "JSRR" {
			kind = isa.OpJSRR
		}
		return isa.Instruction{Kind: kind, BaseR: baseR}, true

	case "RET":
		return isa.Instruction{Kind: isa.OpRET, BaseR: 7}, true

	case "RTI":
		return isa.Instruction{Kind: isa.OpRTI}, true

	case "JSR":
		return isa.Instruction{Kind: isa.OpJSR, Offset: parseOperandWord(operands[0])}, true

	case "LD", "LDI", "LEA", "ST", "STI":
		dr, ok := parseRegister(operands[0].Literal)
		if !ok {
			p.errs.Add(NewError(pos, ErrLexicalError, mnemonic+" expects a register first operand"))
			return isa.Instruction{}, false
		}
		kind := map[string]isa.Kind{
			"LD": isa.OpLD, "LDI": isa.OpLDI, "LEA": isa.OpLEA,
			"ST": isa.OpST, "STI": isa.OpSTI,
		}[mnemonic]
		field := isa.Instruction{Kind: kind, Offset: parseOperandWord(operands[1])}
		if kind == isa.OpST || kind == isa.OpSTI {
			field.SR = dr
		} else {
			field.DR = dr
		}
		return field, true

	case "LDR", "STR":
		dr, ok1 := parseRegister(operands[0].Literal)
		baseR, ok2 := parseRegister(operands[1].Literal)
		if !ok1 || !ok2 {
			p.errs.Add(NewError(pos, ErrLexicalError, mnemonic+" expects register operands"))
			return isa.Instruction{}, false
		}
		off, err := parseImmediate(operands[2].Literal)
		if err != nil {
			p.errs.Add(NewError(pos, ErrLexicalError, err.Error()))
			return isa.Instruction{}, false
		}
		kind := isa.OpLDR
		if mnemonic == "STR" {
			kind = isa.OpSTR
		}
		field := isa.Instruction{Kind: kind, BaseR: baseR, Immediate: off, UsesImmediate: true}
		if kind == isa.OpSTR {
			field.SR = dr
		} else {
			field.DR = dr
		}
		return field, true

	case "TRAP":
		v, err := parseImmediate(operands[0].Literal)
		if err != nil {
			p.errs.Add(NewError(pos, ErrLexicalError, err.Error()))
			return isa.Instruction{}, false
		}
		return isa.Instruction{Kind: isa.OpTRAP, TrapVector: v}, true
	}

	p.errs.Add(NewError(pos, ErrUnknownMnemonic, "unknown mnemonic "+mnemonic))
	return isa.Instruction{}, false
}
