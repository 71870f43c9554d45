package vm

const MemorySize = 1 << 16

const (
	UserSpaceStart             = 0x3000
	MemoryMappedRegistersStart = 0xFE00
)

// memory mapped register addresses
const (
	KBSR = MemoryMappedRegistersStart          /* keyboard status register */
	KBDR = MemoryMappedRegistersStart + 0x0002 /* keyboard data register */
)

// Poller reports whether a key is waiting on the keyboard, consuming it if so.
type Poller interface {
	Poll() (b byte, ok bool, err error)
}

// Memory is the flat 64K word address space. Reading KBSR polls the keyboard.
type Memory struct {
	ram [MemorySize]Word
	kbd Poller
	err error
}

func newMemory(kbd Poller) *Memory {
	return &Memory{kbd: kbd}
}

func (mem *Memory) Read(addr Word) Word {
	if addr == KBSR {
		mem.pollKeyboard()
	}
	return mem.ram[addr]
}

func (mem *Memory) Write(addr, value Word) {
	mem.ram[addr] = value
}

func (mem *Memory) pollKeyboard() {
	if mem.kbd == nil {
		mem.ram[KBSR] = 0
		return
	}
	b, ok, err := mem.kbd.Poll()
	if err != nil {
		if mem.err == nil {
			mem.err = err
		}
		mem.ram[KBSR] = 0
		return
	}
	if ok {
		mem.ram[KBSR] = 1 << 15
		mem.ram[KBDR] = Word(b)
	} else {
		mem.ram[KBSR] = 0
	}
}

// Err returns the first keyboard poll failure seen by Read, if any.
func (mem *Memory) Err() error {
	return mem.err
}
