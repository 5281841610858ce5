package transport

import "io"

// Retriever is the source of a request body. Every call returns the next piece of the body,
// which stays valid only until the following call. io.EOF marks the end of the body and may
// be returned together with the last piece. Any other error means the body can't be received
// anymore, usually because the client has gone away.
type Retriever interface {
	Retrieve() ([]byte, error)
}

// RetrieverFunc adapts an ordinary function to the Retriever interface.
type RetrieverFunc func() ([]byte, error)

func (r RetrieverFunc) Retrieve() ([]byte, error) {
	return r()
}

// Empty is a Retriever of a body without any data.
var Empty Retriever = RetrieverFunc(func() ([]byte, error) {
	return nil, io.EOF
})
