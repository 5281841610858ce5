package buffer

// Buffer accumulates a byte sequence, refusing to grow beyond the limit. It's used to
// collect values which may arrive piecewise, e.g. a form field split among many reads.
type Buffer struct {
	memory  []byte
	maxSize int
}

func New(initialSize, maxSize int) Buffer {
	return Buffer{
		memory:  make([]byte, 0, initialSize),
		maxSize: maxSize,
	}
}

// Append writes data, checking whether the new amount of elements (bytes) doesn't exceed the
// limit, otherwise discarding the data and returning false.
func (b *Buffer) Append(elements []byte) (ok bool) {
	if len(b.memory)+len(elements) > b.maxSize {
		return false
	}

	b.memory = append(b.memory, elements...)
	return true
}

// Len returns the number of bytes currently stored.
func (b *Buffer) Len() int {
	return len(b.memory)
}

// Preview returns the stored data. It stays valid until the next Clear.
func (b *Buffer) Preview() []byte {
	return b.memory
}

// Finish returns a copy of the stored data as a string and clears the buffer.
func (b *Buffer) Finish() string {
	value := string(b.memory)
	b.Clear()

	return value
}

// Clear just resets the pointers, so old values may be overridden by new ones.
func (b *Buffer) Clear() {
	b.memory = b.memory[:0]
}
