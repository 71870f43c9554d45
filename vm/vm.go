package vm

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	goIO "io"
	"os"
	"sync/atomic"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
)

// VM is one LC-3 execution session: a register file, 64K words of memory and the console.
type VM struct {
	regs    Registers
	mem     *Memory
	running atomic.Bool

	// address of the instruction being executed, for tracing
	fetched Word

	in  Input
	out output
	raw RawMode
	log *logrus.Logger
}

// Option configures a VM built by New.
type Option func(*VM)

// WithInput replaces the keyboard used by GETC, IN and the KBSR poll.
func WithInput(in Input) Option {
	return func(vm *VM) {
		vm.in = in
	}
}

// WithOutput replaces the display used by the output traps.
func WithOutput(w goIO.Writer) Option {
	return func(vm *VM) {
		vm.out = newOutput(w)
	}
}

// WithRawMode replaces the terminal mode switch performed around Run.
func WithRawMode(raw RawMode) Option {
	return func(vm *VM) {
		vm.raw = raw
	}
}

func WithLogger(log *logrus.Logger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

// New returns a VM with zeroed memory, PC at UserSpaceStart and the flag set to Z.
// By default it talks to the process's stdin and stdout.
func New(opts ...Option) *VM {
	vm := &VM{
		regs: newRegisters(),
	}
	for _, opt := range opts {
		opt(vm)
	}

	if vm.in == nil || vm.raw == nil {
		terminal := NewTerminal(os.Stdin)
		if vm.in == nil {
			vm.in = terminal
		}
		if vm.raw == nil {
			vm.raw = terminal
		}
	}
	if vm.out == nil {
		vm.out = newOutput(os.Stdout)
	}
	if vm.log == nil {
		vm.log = logrus.New()
		vm.log.SetLevel(logrus.WarnLevel)
	}
	vm.mem = newMemory(vm.in)

	return vm
}

// Load copies a big-endian image into memory: the first word is the origin, the rest are
// written to consecutive addresses until the input ends or the address space is exhausted.
func (vm *VM) Load(r goIO.Reader) error {
	br := bufio.NewReader(r)
	var buf [2]byte

	if _, err := goIO.ReadFull(br, buf[:]); err != nil {
		if errors.Is(err, goIO.EOF) || errors.Is(err, goIO.ErrUnexpectedEOF) {
			return ErrImageTooShort
		}
		return fmt.Errorf("read origin: %w", err)
	}
	origin := Word(binary.BigEndian.Uint16(buf[:]))

	count := 0
	for addr := int(origin); addr < MemorySize; addr++ {
		_, err := goIO.ReadFull(br, buf[:])
		if err == goIO.EOF {
			break
		}
		if err == goIO.ErrUnexpectedEOF {
			vm.log.WithField("addr", fmt.Sprintf("0x%04x", addr)).Warn("image ends with a dangling byte, ignoring it")
			break
		}
		if err != nil {
			return fmt.Errorf("read word for 0x%04x: %w", addr, err)
		}
		vm.mem.Write(Word(addr), Word(binary.BigEndian.Uint16(buf[:])))
		count++
	}

	vm.log.WithFields(logrus.Fields{
		"origin": fmt.Sprintf("0x%04x", origin),
		"words":  count,
	}).Debug("image loaded")
	return nil
}

// LoadFile loads the image stored at path.
func (vm *VM) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := vm.Load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Run puts the console in raw mode and executes instructions until HALT, Abort or a fatal
// error. The console mode is restored before Run returns, whatever the outcome.
func (vm *VM) Run() (err error) {
	vm.log.Debug("enabling raw mode")
	if err := vm.raw.EnableRawMode(); err != nil {
		return err
	}
	defer func() {
		vm.log.Debug("disabling raw mode")
		if rerr := vm.raw.DisableRawMode(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	vm.running.Store(true)
	for vm.running.Load() {
		if err := vm.Step(); err != nil {
			vm.running.Store(false)
			return err
		}
	}
	return nil
}

// Step executes exactly one fetch-decode-execute cycle.
func (vm *VM) Step() error {
	vm.fetched = vm.regs.PC
	instruction := vm.mem.Read(vm.regs.PC)
	vm.regs.PC++

	if err := vm.execute(instruction); err != nil {
		return err
	}
	if err := vm.mem.Err(); err != nil {
		return fmt.Errorf("keyboard: %w", err)
	}
	return nil
}

// Abort stops Run before the next instruction is fetched. It may be called from any goroutine.
func (vm *VM) Abort() {
	if vm.running.Swap(false) {
		vm.log.Info("execution aborted")
	}
}

func (vm *VM) stop() {
	vm.running.Store(false)
	vm.log.Info("halted")
}

func (vm *VM) Running() bool {
	return vm.running.Load()
}

func (vm *VM) Registers() *Registers {
	return &vm.regs
}

func (vm *VM) Memory() *Memory {
	return vm.mem
}

func (vm *VM) trace(op Opcode, fields logrus.Fields) {
	if !vm.log.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	fields["pc"] = fmt.Sprintf("0x%04x", vm.fetched)
	vm.log.WithFields(fields).Trace(op.String())
}

// State is a printable snapshot of the register file.
type State struct {
	R       [8]string
	PC      string
	Cond    string
	Running bool
}

func (vm *VM) State() State {
	s := State{
		PC:      fmt.Sprintf("0x%04x", vm.regs.PC),
		Cond:    vm.regs.Cond.String(),
		Running: vm.Running(),
	}
	for i := range s.R {
		s.R[i] = fmt.Sprintf("0x%04x", vm.regs.Read(Word(i)))
	}
	return s
}

// Dump pretty prints the register state to w.
func (vm *VM) Dump(w goIO.Writer, color bool) error {
	printer := pp.New()
	printer.SetColoringEnabled(color)
	_, err := printer.Fprintln(w, vm.State())
	return err
}
