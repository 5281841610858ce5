package transport

import (
	"io"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/formkit/http/status"
)

// Chunked decodes a body transmitted with the chunked transfer coding.
type Chunked struct {
	src     Retriever
	parser  *chunkedbody.Parser
	trailer bool
	pending []byte
	done    bool
}

func NewChunked(src Retriever, trailer bool) *Chunked {
	return &Chunked{
		src:     src,
		parser:  chunkedbody.NewParser(chunkedbody.DefaultSettings()),
		trailer: trailer,
	}
}

func (c *Chunked) Retrieve() ([]byte, error) {
	if c.done {
		return nil, io.EOF
	}

	for {
		if len(c.pending) == 0 {
			data, err := c.src.Retrieve()
			switch err {
			case nil:
			case io.EOF:
				if len(data) == 0 {
					// the terminating zero-length chunk wasn't seen yet
					return nil, io.ErrUnexpectedEOF
				}
			default:
				return nil, err
			}

			c.pending = data
		}

		chunk, extra, err := c.parser.Parse(c.pending, c.trailer)
		c.pending = extra
		switch err {
		case nil:
		case io.EOF:
			c.done = true
			return chunk, io.EOF
		default:
			return nil, status.ErrBadChunk
		}

		if len(chunk) > 0 {
			return chunk, nil
		}
	}
}
