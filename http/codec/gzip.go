package codec

import (
	"github.com/klauspost/compress/gzip"
)

// NewGZIP returns the codec of the gzip coding. Multistream members are read as one body.
func NewGZIP() Codec {
	return newBaseCodec("gzip", func() Decompressor {
		r := new(gzip.Reader)
		r.Multistream(true)

		return newBaseInstance(r, genericResetter)()
	})
}
