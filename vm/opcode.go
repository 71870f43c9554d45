package vm

// Opcode is the instruction kind selected by bits 15-12.
type Opcode Word

// opcodes
const (
	OpBR Opcode = iota
	OpADD
	OpLD
	OpST
	OpJSR
	OpAND
	OpLDR
	OpSTR
	OpRTI
	OpNOT
	OpLDI
	OpSTI
	OpJMP
	OpRES
	OpLEA
	OpTRAP
)

var mnemonics = [16]string{
	OpBR:   "BR",
	OpADD:  "ADD",
	OpLD:   "LD",
	OpST:   "ST",
	OpJSR:  "JSR",
	OpAND:  "AND",
	OpLDR:  "LDR",
	OpSTR:  "STR",
	OpRTI:  "RTI",
	OpNOT:  "NOT",
	OpLDI:  "LDI",
	OpSTI:  "STI",
	OpJMP:  "JMP",
	OpRES:  "RES",
	OpLEA:  "LEA",
	OpTRAP: "TRAP",
}

func (op Opcode) String() string {
	if int(op) < len(mnemonics) {
		return mnemonics[op]
	}
	return "???"
}

// classify extracts the opcode from an instruction word.
func classify(instruction Word) Opcode {
	return Opcode(instruction >> 12)
}
