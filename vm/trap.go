package vm

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// TrapCode is the 8-bit vector of a TRAP instruction.
type TrapCode Word

const (
	TrapGETC  TrapCode = 0x20 /* get character from keyboard, not echoed onto the terminal */
	TrapOUT   TrapCode = 0x21 /* output a character */
	TrapPUTS  TrapCode = 0x22 /* output a word string */
	TrapIN    TrapCode = 0x23 /* prompt, then get character from keyboard */
	TrapPUTSP TrapCode = 0x24 /* output a byte string */
	TrapHALT  TrapCode = 0x25 /* halt the program */
)

const inPrompt = "Enter character: "

func (t TrapCode) String() string {
	switch t {
	case TrapGETC:
		return "GETC"
	case TrapOUT:
		return "OUT"
	case TrapPUTS:
		return "PUTS"
	case TrapIN:
		return "IN"
	case TrapPUTSP:
		return "PUTSP"
	case TrapHALT:
		return "HALT"
	}
	return fmt.Sprintf("0x%02x", Word(t))
}

func (vm *VM) trap(instruction Word) error {
	vector := TrapCode(instruction & 0xFF)

	vm.trace(OpTRAP, logrus.Fields{"vector": vector})

	var err error
	switch vector {
	case TrapGETC:
		err = vm.getc()
	case TrapOUT:
		err = vm.putc()
	case TrapPUTS:
		err = vm.puts()
	case TrapIN:
		err = vm.input()
	case TrapPUTSP:
		err = vm.putsp()
	case TrapHALT:
		err = vm.halt()
	default:
		return &UnsupportedTrapError{Vector: Word(vector), PC: vm.fetched}
	}
	if err != nil {
		return fmt.Errorf("trap %s: %w", vector, err)
	}
	return nil
}

func (vm *VM) getc() error {
	c, err := vm.in.ReadByte()
	if err != nil {
		return err
	}
	vm.regs.Write(R0, Word(c))
	return nil
}

func (vm *VM) putc() error {
	if err := vm.out.WriteByte(byte(vm.regs.Read(R0))); err != nil {
		return err
	}
	return vm.out.Flush()
}

// puts writes one character per word starting at R0 until a zero word or the end of memory.
func (vm *VM) puts() error {
	for addr := int(vm.regs.Read(R0)); addr < MemorySize; addr++ {
		c := vm.mem.Read(Word(addr))
		if c == 0 {
			break
		}
		if err := vm.out.WriteByte(byte(c)); err != nil {
			return err
		}
	}
	return vm.out.Flush()
}

func (vm *VM) input() error {
	if _, err := vm.out.WriteString(inPrompt); err != nil {
		return err
	}
	if err := vm.out.Flush(); err != nil {
		return err
	}
	return vm.getc()
}

// putsp writes two characters per word, low byte first, until a word that is entirely zero.
// A zero high byte is still written.
func (vm *VM) putsp() error {
	for addr := int(vm.regs.Read(R0)); addr < MemorySize; addr++ {
		w := vm.mem.Read(Word(addr))
		if w == 0 {
			break
		}
		if err := vm.out.WriteByte(byte(w)); err != nil {
			return err
		}
		if err := vm.out.WriteByte(byte(w >> 8)); err != nil {
			return err
		}
	}
	return vm.out.Flush()
}

func (vm *VM) halt() error {
	if _, err := vm.out.WriteString("HALT"); err != nil {
		return err
	}
	vm.stop()
	return vm.out.Flush()
}
