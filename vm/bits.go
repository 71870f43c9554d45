package vm

// Word is a single 16-bit LC-3 memory cell or register value.
type Word uint16

// sext sign extends the low bitCount bits of x to a full word.
func sext(x Word, bitCount uint) Word {
	if (x>>(bitCount-1))&0b1 != 0 {
		x |= 0xFFFF << bitCount
	}
	return x
}
