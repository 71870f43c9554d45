package vm

import (
	"bufio"
	"fmt"
	goIO "io"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Input is the keyboard side of the console.
type Input interface {
	Poller
	// ReadByte blocks until a key is available.
	ReadByte() (byte, error)
}

// RawMode switches the console into unbuffered, unechoed input for the duration of a run.
type RawMode interface {
	EnableRawMode() error
	DisableRawMode() error
}

// Terminal is the default console: raw mode via termios and key reads from a file, usually stdin.
// When the file is not a terminal raw mode is a no-op, so piped input works.
type Terminal struct {
	file                   *os.File
	originalTerminalConfig unix.Termios
	raw                    bool
}

func NewTerminal(f *os.File) *Terminal {
	return &Terminal{file: f}
}

// EnableRawMode clears ICANON and ECHO, remembering the previous settings.
func (t *Terminal) EnableRawMode() error {
	if t.raw || !term.IsTerminal(int(t.file.Fd())) {
		return nil
	}
	if err := termios.Tcgetattr(t.file.Fd(), &t.originalTerminalConfig); err != nil {
		return fmt.Errorf("get terminal attributes: %w", err)
	}
	newTermios := t.originalTerminalConfig
	newTermios.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(t.file.Fd(), termios.TCSANOW, &newTermios); err != nil {
		return fmt.Errorf("set terminal attributes: %w", err)
	}
	t.raw = true
	return nil
}

func (t *Terminal) DisableRawMode() error {
	if !t.raw {
		return nil
	}
	if err := termios.Tcsetattr(t.file.Fd(), termios.TCSANOW, &t.originalTerminalConfig); err != nil {
		return fmt.Errorf("restore terminal attributes: %w", err)
	}
	t.raw = false
	return nil
}

func (t *Terminal) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := goIO.ReadFull(t.file, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// Poll checks for a pending key with a zero-timeout select and reads it if present.
// End of input counts as no key.
func (t *Terminal) Poll() (byte, bool, error) {
	fd := int(t.file.Fd())
	var readfds unix.FdSet
	readfds.Set(fd)
	timeout := unix.Timeval{}

	n, err := unix.Select(fd+1, &readfds, nil, nil, &timeout)
	if err == unix.EINTR {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("poll keyboard: %w", err)
	}
	if n == 0 {
		return 0, false, nil
	}

	var buf [1]byte
	m, err := t.file.Read(buf[:])
	if err == goIO.EOF || m == 0 {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("poll keyboard: %w", err)
	}
	return buf[0], true, nil
}

// output is the display side of the console. Every trap flushes before returning.
type output interface {
	goIO.ByteWriter
	goIO.StringWriter
	Flush() error
}

func newOutput(w goIO.Writer) output {
	if o, ok := w.(output); ok {
		return o
	}
	return bufio.NewWriter(w)
}
