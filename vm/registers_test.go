package vm

import "testing"

func TestNewRegisters(t *testing.T) {
	regs := newRegisters()
	if regs.PC != 0x3000 {
		t.Errorf("PC = 0x%04x, want 0x3000", regs.PC)
	}
	if regs.Cond != FlagZro {
		t.Errorf("Cond = %s, want Z", regs.Cond)
	}
	for r := Word(R0); r <= R7; r++ {
		if v := regs.Read(r); v != 0 {
			t.Errorf("R%d = 0x%04x, want 0", r, v)
		}
	}
}

func TestUpdateFlags(t *testing.T) {
	tests := []struct {
		value Word
		want  Flag
	}{
		{0x0000, FlagZro},
		{0x0001, FlagPos},
		{0x7FFF, FlagPos},
		{0x8000, FlagNeg},
		{0xFFFF, FlagNeg},
	}
	for _, tt := range tests {
		for r := Word(R0); r <= R7; r++ {
			regs := newRegisters()
			regs.Write(r, tt.value)
			regs.UpdateFlags(regs.Read(r))
			if regs.Cond != tt.want {
				t.Errorf("R%d=0x%04x: flag %s, want %s", r, tt.value, regs.Cond, tt.want)
			}
		}
	}
}
