package codec

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

// NewDeflate returns the codec of the deflate coding, which is, despite the name, a zlib
// stream (RFC 9110, 8.4.1.2).
func NewDeflate() Codec {
	return newBaseCodec("deflate", func() Decompressor {
		return newBaseInstance(new(zlibReader), genericResetter)()
	})
}

// zlibReader defers the construction of the zlib reader, as it can't be created without
// reading the stream's header.
type zlibReader struct {
	rc io.ReadCloser
}

func (z *zlibReader) Read(b []byte) (int, error) {
	if z.rc == nil {
		return 0, io.EOF
	}

	return z.rc.Read(b)
}

func (z *zlibReader) Reset(src io.Reader) (err error) {
	if z.rc == nil {
		z.rc, err = zlib.NewReader(src)
		return err
	}

	return z.rc.(zlib.Resetter).Reset(src, nil)
}
