package vm

import "github.com/sirupsen/logrus"

// execute runs one decoded instruction. PC already points at the next instruction.
func (vm *VM) execute(instruction Word) error {
	op := classify(instruction)

	switch op {
	case OpBR:
		vm.br(instruction)
	case OpADD:
		vm.add(instruction)
	case OpLD:
		vm.ld(instruction)
	case OpST:
		vm.st(instruction)
	case OpJSR:
		vm.jsr(instruction)
	case OpAND:
		vm.and(instruction)
	case OpLDR:
		vm.ldr(instruction)
	case OpSTR:
		vm.str(instruction)
	case OpNOT:
		vm.not(instruction)
	case OpLDI:
		vm.ldi(instruction)
	case OpSTI:
		vm.sti(instruction)
	case OpJMP:
		vm.jmp(instruction)
	case OpLEA:
		vm.lea(instruction)
	case OpTRAP:
		return vm.trap(instruction)
	case OpRTI, OpRES:
		return &IllegalOpcodeError{Opcode: op, PC: vm.fetched}
	}
	return nil
}

func (vm *VM) br(instruction Word) {
	nzp := (instruction >> 9) & 0b111
	pcoffset9 := instruction & 0x1FF

	vm.trace(OpBR, logrus.Fields{"nzp": nzp, "pcoffset9": pcoffset9})

	if nzp&Word(vm.regs.Cond) != 0 {
		vm.regs.PC += sext(pcoffset9, 9)
	}
}

func (vm *VM) add(instruction Word) {
	dr := (instruction >> 9) & 0b111
	sr1 := (instruction >> 6) & 0b111

	var value Word
	if (instruction>>5)&0b1 == 1 {
		imm5 := instruction & 0x1F
		vm.trace(OpADD, logrus.Fields{"dr": dr, "sr1": sr1, "imm5": imm5})
		value = vm.regs.Read(sr1) + sext(imm5, 5)
	} else {
		sr2 := instruction & 0b111
		vm.trace(OpADD, logrus.Fields{"dr": dr, "sr1": sr1, "sr2": sr2})
		value = vm.regs.Read(sr1) + vm.regs.Read(sr2)
	}

	vm.regs.Write(dr, value)
	vm.regs.UpdateFlags(value)
}

func (vm *VM) ld(instruction Word) {
	dr := (instruction >> 9) & 0b111
	pcoffset9 := instruction & 0x1FF

	vm.trace(OpLD, logrus.Fields{"dr": dr, "pcoffset9": pcoffset9})

	value := vm.mem.Read(vm.regs.PC + sext(pcoffset9, 9))
	vm.regs.Write(dr, value)
	vm.regs.UpdateFlags(value)
}

func (vm *VM) st(instruction Word) {
	sr := (instruction >> 9) & 0b111
	pcoffset9 := instruction & 0x1FF

	vm.trace(OpST, logrus.Fields{"sr": sr, "pcoffset9": pcoffset9})

	vm.mem.Write(vm.regs.PC+sext(pcoffset9, 9), vm.regs.Read(sr))
}

// jsr covers both JSR (bit 11 set) and JSRR.
func (vm *VM) jsr(instruction Word) {
	// R7 is written first, so JSRR R7 continues at the next instruction.
	vm.regs.Write(R7, vm.regs.PC)

	if (instruction>>11)&0b1 == 1 {
		pcoffset11 := instruction & 0x7FF
		vm.trace(OpJSR, logrus.Fields{"pcoffset11": pcoffset11})
		vm.regs.PC += sext(pcoffset11, 11)
	} else {
		baser := (instruction >> 6) & 0b111
		vm.trace(OpJSR, logrus.Fields{"baser": baser})
		vm.regs.PC = vm.regs.Read(baser)
	}
}

func (vm *VM) and(instruction Word) {
	dr := (instruction >> 9) & 0b111
	sr1 := (instruction >> 6) & 0b111

	var value Word
	if (instruction>>5)&0b1 == 1 {
		imm5 := instruction & 0x1F
		vm.trace(OpAND, logrus.Fields{"dr": dr, "sr1": sr1, "imm5": imm5})
		value = vm.regs.Read(sr1) & sext(imm5, 5)
	} else {
		sr2 := instruction & 0b111
		vm.trace(OpAND, logrus.Fields{"dr": dr, "sr1": sr1, "sr2": sr2})
		value = vm.regs.Read(sr1) & vm.regs.Read(sr2)
	}

	vm.regs.Write(dr, value)
	vm.regs.UpdateFlags(value)
}

func (vm *VM) ldr(instruction Word) {
	dr := (instruction >> 9) & 0b111
	baser := (instruction >> 6) & 0b111
	offset6 := instruction & 0x3F

	vm.trace(OpLDR, logrus.Fields{"dr": dr, "baser": baser, "offset6": offset6})

	value := vm.mem.Read(vm.regs.Read(baser) + sext(offset6, 6))
	vm.regs.Write(dr, value)
	vm.regs.UpdateFlags(value)
}

func (vm *VM) str(instruction Word) {
	sr := (instruction >> 9) & 0b111
	baser := (instruction >> 6) & 0b111
	offset6 := instruction & 0x3F

	vm.trace(OpSTR, logrus.Fields{"sr": sr, "baser": baser, "offset6": offset6})

	vm.mem.Write(vm.regs.Read(baser)+sext(offset6, 6), vm.regs.Read(sr))
}

func (vm *VM) not(instruction Word) {
	dr := (instruction >> 9) & 0b111
	sr := (instruction >> 6) & 0b111

	vm.trace(OpNOT, logrus.Fields{"dr": dr, "sr": sr})

	value := ^vm.regs.Read(sr)
	vm.regs.Write(dr, value)
	vm.regs.UpdateFlags(value)
}

func (vm *VM) ldi(instruction Word) {
	dr := (instruction >> 9) & 0b111
	pcoffset9 := instruction & 0x1FF

	vm.trace(OpLDI, logrus.Fields{"dr": dr, "pcoffset9": pcoffset9})

	value := vm.mem.Read(vm.mem.Read(vm.regs.PC + sext(pcoffset9, 9)))
	vm.regs.Write(dr, value)
	vm.regs.UpdateFlags(value)
}

func (vm *VM) sti(instruction Word) {
	sr := (instruction >> 9) & 0b111
	pcoffset9 := instruction & 0x1FF

	vm.trace(OpSTI, logrus.Fields{"sr": sr, "pcoffset9": pcoffset9})

	vm.mem.Write(vm.mem.Read(vm.regs.PC+sext(pcoffset9, 9)), vm.regs.Read(sr))
}

// jmp is also RET when BaseR is R7.
func (vm *VM) jmp(instruction Word) {
	baser := (instruction >> 6) & 0b111

	vm.trace(OpJMP, logrus.Fields{"baser": baser})

	vm.regs.PC = vm.regs.Read(baser)
}

func (vm *VM) lea(instruction Word) {
	dr := (instruction >> 9) & 0b111
	pcoffset9 := instruction & 0x1FF

	vm.trace(OpLEA, logrus.Fields{"dr": dr, "pcoffset9": pcoffset9})

	value := vm.regs.PC + sext(pcoffset9, 9)
	vm.regs.Write(dr, value)
	vm.regs.UpdateFlags(value)
}
