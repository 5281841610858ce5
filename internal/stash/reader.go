// Package stash adapts a transport.Retriever to the io.Reader and io.WriterTo interfaces.
package stash

import (
	"io"

	"github.com/indigo-web/formkit/transport"
)

var (
	_ io.Reader   = new(Reader)
	_ io.WriterTo = new(Reader)
)

// Reader keeps the part of the last retrieved piece that didn't fit into the caller's
// buffer. The error of the retriever is held back until the leftover is drained.
type Reader struct {
	src      transport.Retriever
	leftover []byte
	err      error
}

func New(src transport.Retriever) *Reader {
	return &Reader{src: src}
}

func (r *Reader) Read(b []byte) (n int, err error) {
	if len(r.leftover) == 0 && r.err == nil {
		r.leftover, r.err = r.src.Retrieve()
	}

	n = copy(b, r.leftover)
	r.leftover = r.leftover[n:]

	if len(r.leftover) == 0 {
		err = r.err
	}

	return n, err
}

// WriteTo streams the rest of the source directly into w, skipping the intermediate copy.
// io.EOF of the source isn't reported.
func (r *Reader) WriteTo(w io.Writer) (total int64, err error) {
	for {
		if len(r.leftover) > 0 {
			n, werr := w.Write(r.leftover)
			total += int64(n)
			r.leftover = r.leftover[n:]
			if werr != nil {
				return total, werr
			}
		}

		switch r.err {
		case nil:
		case io.EOF:
			return total, nil
		default:
			return total, r.err
		}

		r.leftover, r.err = r.src.Retrieve()
	}
}

// Reset rebinds the reader to another source, dropping everything pending.
func (r *Reader) Reset(src transport.Retriever) {
	r.src = src
	r.leftover = nil
	r.err = nil
}
