package transport

import "io"

// Reader pulls the body from an io.Reader into the fixed buffer.
type Reader struct {
	src     io.Reader
	buff    []byte
	pending []byte
}

func NewReader(src io.Reader, buffSize int) *Reader {
	return &Reader{
		src:  src,
		buff: make([]byte, buffSize),
	}
}

// Retrieve reads data into the internal buffer and returns a piece of it back.
func (r *Reader) Retrieve() ([]byte, error) {
	if len(r.pending) > 0 {
		pending := r.pending
		r.pending = nil

		return pending, nil
	}

	n, err := r.src.Read(r.buff)
	return r.buff[:n], err
}

// Pushback preserves a chunk of data from previous read for the next read.
func (r *Reader) Pushback(b []byte) {
	r.pending = b
}
