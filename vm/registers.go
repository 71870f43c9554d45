package vm

// general purpose registers
const (
	R0 = 0b000
	R1 = 0b001
	R2 = 0b010
	R3 = 0b011
	R4 = 0b100
	R5 = 0b101
	R6 = 0b110
	R7 = 0b111
)

// Flag is the condition code. Exactly one of FlagPos, FlagZro and FlagNeg is set at any time.
type Flag Word

// flags
const (
	FlagPos Flag = 0b001
	FlagZro Flag = 0b010
	FlagNeg Flag = 0b100
)

func (f Flag) String() string {
	switch f {
	case FlagPos:
		return "P"
	case FlagZro:
		return "Z"
	case FlagNeg:
		return "N"
	}
	return "?"
}

// Registers holds R0-R7, the program counter and the condition flag.
type Registers struct {
	gpr  [8]Word
	PC   Word
	Cond Flag
}

func newRegisters() Registers {
	return Registers{PC: UserSpaceStart, Cond: FlagZro}
}

// Read returns general purpose register reg. reg comes from a 3-bit field and is always < 8.
func (r *Registers) Read(reg Word) Word {
	return r.gpr[reg]
}

func (r *Registers) Write(reg, value Word) {
	r.gpr[reg] = value
}

// UpdateFlags sets the condition flag from the value just written to a destination register.
func (r *Registers) UpdateFlags(value Word) {
	if value == 0 {
		r.Cond = FlagZro
	} else if value>>15 != 0 {
		r.Cond = FlagNeg
	} else {
		r.Cond = FlagPos
	}
}
