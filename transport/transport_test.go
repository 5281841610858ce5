package transport_test

import (
	"io"
	"strings"
	"testing"

	"github.com/indigo-web/formkit/http/status"
	"github.com/indigo-web/formkit/transport"
	"github.com/indigo-web/formkit/transport/dummy"
	"github.com/stretchr/testify/require"
)

func drain(_ *testing.T, r transport.Retriever) (string, error) {
	var out []byte

	for {
		data, err := r.Retrieve()
		out = append(out, data...)
		switch err {
		case nil:
		case io.EOF:
			return string(out), nil
		default:
			return string(out), err
		}
	}
}

func TestReader(t *testing.T) {
	r := transport.NewReader(strings.NewReader("Hello, world!"), 4)
	data, err := drain(t, r)
	require.NoError(t, err)
	require.Equal(t, "Hello, world!", data)

	t.Run("pushback", func(t *testing.T) {
		r := transport.NewReader(strings.NewReader("abcdef"), 4)
		data, err := r.Retrieve()
		require.NoError(t, err)
		require.Equal(t, "abcd", string(data))
		r.Pushback(data[2:])
		data, err = r.Retrieve()
		require.NoError(t, err)
		require.Equal(t, "cd", string(data))
	})
}

func TestChunked(t *testing.T) {
	body := "5\r\nHello\r\n7\r\n, world\r\n0\r\n\r\n"

	for _, n := range []int{1, 3, 7, len(body)} {
		data, err := drain(t, transport.NewChunked(dummy.Split([]byte(body), n), false))
		require.NoError(t, err, n)
		require.Equal(t, "Hello, world", data, n)
	}

	t.Run("truncated", func(t *testing.T) {
		_, err := drain(t, transport.NewChunked(dummy.NewMockClient([]byte("5\r\nHel")), false))
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := drain(t, transport.NewChunked(dummy.NewMockClient([]byte("zz\r\nHello\r\n")), false))
		require.ErrorIs(t, err, status.ErrBadChunk)
	})
}

func TestLimited(t *testing.T) {
	data, err := drain(t, transport.NewLimited(dummy.NewMockClient([]byte("1234"), []byte("5678")), 8))
	require.NoError(t, err)
	require.Equal(t, "12345678", data)

	_, err = drain(t, transport.NewLimited(dummy.NewMockClient([]byte("1234"), []byte("56789")), 8))
	require.ErrorIs(t, err, status.ErrBodyTooLarge)
}

func TestEmpty(t *testing.T) {
	data, err := drain(t, transport.Empty)
	require.NoError(t, err)
	require.Empty(t, data)
}
