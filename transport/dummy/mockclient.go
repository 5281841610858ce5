package dummy

import (
	"io"

	"github.com/indigo-web/formkit/transport"
)

var _ transport.Retriever = new(Client)

// Client replays the pieces it was initialised with, one per Retrieve call, and reports
// io.EOF afterwards. Every piece is copied into the same scratch buffer, so consumers
// holding onto a returned slice longer than allowed will see it overwritten, just as they
// would with a real connection.
type Client struct {
	data    [][]byte
	pointer int
	scratch []byte
	err     error
	calls   int
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data: data,
	}
}

// Split returns a client replaying the data in pieces of at most n bytes.
func Split(data []byte, n int) *Client {
	var pieces [][]byte

	for len(data) > n {
		pieces = append(pieces, data[:n])
		data = data[n:]
	}

	if len(data) > 0 {
		pieces = append(pieces, data)
	}

	return NewMockClient(pieces...)
}

// Fail makes the client return the error instead of io.EOF once all the pieces are consumed,
// simulating a connection broken in the middle of the body.
func (c *Client) Fail(err error) *Client {
	c.err = err
	return c
}

// Retrieve implements transport.Retriever.
func (c *Client) Retrieve() ([]byte, error) {
	c.calls++

	if c.pointer >= len(c.data) {
		if c.err != nil {
			return nil, c.err
		}

		return nil, io.EOF
	}

	c.scratch = append(c.scratch[:0], c.data[c.pointer]...)
	c.pointer++

	return c.scratch, nil
}

// Calls returns how many times the body was asked for data.
func (c *Client) Calls() int {
	return c.calls
}

// Reset rewinds the client to the first piece.
func (c *Client) Reset() {
	c.pointer = 0
	c.calls = 0
}
