package vm

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

// scriptedInput hands out keys from a fixed script.
type scriptedInput struct {
	keys   []byte
	polls  int
	onPoll func()
}

func (s *scriptedInput) ReadByte() (byte, error) {
	if len(s.keys) == 0 {
		return 0, io.EOF
	}
	b := s.keys[0]
	s.keys = s.keys[1:]
	return b, nil
}

func (s *scriptedInput) Poll() (byte, bool, error) {
	s.polls++
	if s.onPoll != nil {
		s.onPoll()
	}
	if len(s.keys) == 0 {
		return 0, false, nil
	}
	b, _ := s.ReadByte()
	return b, true, nil
}

type fakeRawMode struct {
	enabled, disabled int
	enableErr         error
}

func (f *fakeRawMode) EnableRawMode() error {
	f.enabled++
	return f.enableErr
}

func (f *fakeRawMode) DisableRawMode() error {
	f.disabled++
	return nil
}

type testVM struct {
	*VM
	in  *scriptedInput
	out *bytes.Buffer
	raw *fakeRawMode
}

func newTestVM(keys string) *testVM {
	tv := &testVM{
		in:  &scriptedInput{keys: []byte(keys)},
		out: &bytes.Buffer{},
		raw: &fakeRawMode{},
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.TraceLevel)
	tv.VM = New(WithInput(tv.in), WithOutput(tv.out), WithRawMode(tv.raw), WithLogger(log))
	return tv
}

// image encodes origin and words the way an assembler would write them.
func image(origin Word, words ...Word) []byte {
	b := make([]byte, 2*(len(words)+1))
	binary.BigEndian.PutUint16(b, uint16(origin))
	for i, w := range words {
		binary.BigEndian.PutUint16(b[2*(i+1):], uint16(w))
	}
	return b
}

func (tv *testVM) load(t *testing.T, origin Word, words ...Word) {
	t.Helper()
	if err := tv.Load(bytes.NewReader(image(origin, words...))); err != nil {
		t.Fatalf("load: %v", err)
	}
}

// exec places instruction at PC and executes it.
func (tv *testVM) exec(t *testing.T, instruction Word) {
	t.Helper()
	tv.mem.Write(tv.regs.PC, instruction)
	if err := tv.Step(); err != nil {
		t.Fatalf("step 0x%04x: %v", instruction, err)
	}
}
