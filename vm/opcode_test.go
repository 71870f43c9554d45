package vm

import "testing"

func TestClassify(t *testing.T) {
	want := []string{"BR", "ADD", "LD", "ST", "JSR", "AND", "LDR", "STR",
		"RTI", "NOT", "LDI", "STI", "JMP", "RES", "LEA", "TRAP"}

	for i, mn := range want {
		op := classify(Word(i)<<12 | 0x0ABC)
		if op != Opcode(i) {
			t.Errorf("classify(0x%x...) = %d, want %d", i, op, i)
		}
		if op.String() != mn {
			t.Errorf("opcode %d: got %s, want %s", i, op, mn)
		}
	}
}
