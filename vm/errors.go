package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalOpcode is returned by Step and Run when RTI or the reserved opcode is executed.
	ErrIllegalOpcode = errors.New("illegal opcode")

	// ErrUnsupportedTrap is returned by Step and Run for a trap vector outside GETC..HALT.
	ErrUnsupportedTrap = errors.New("unsupported trap code")

	// ErrImageTooShort is returned by Load when the image has no complete origin word.
	ErrImageTooShort = errors.New("image too short")
)

// IllegalOpcodeError names the opcode and the address it was fetched from.
type IllegalOpcodeError struct {
	Opcode Opcode
	PC     Word
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("%s: 0b%04b (%s) at 0x%04x", ErrIllegalOpcode, Word(e.Opcode), e.Opcode, e.PC)
}

func (e *IllegalOpcodeError) Unwrap() error {
	return ErrIllegalOpcode
}

// UnsupportedTrapError names the trap vector and the address of the TRAP instruction.
type UnsupportedTrapError struct {
	Vector Word
	PC     Word
}

func (e *UnsupportedTrapError) Error() string {
	return fmt.Sprintf("%s: 0x%02x at 0x%04x", ErrUnsupportedTrap, e.Vector, e.PC)
}

func (e *UnsupportedTrapError) Unwrap() error {
	return ErrUnsupportedTrap
}
