package codec

import (
	"github.com/klauspost/compress/zstd"
)

func NewZSTD() Codec {
	return newBaseCodec("zstd", func() Decompressor {
		// a single-threaded decoder doesn't spawn goroutines, which would have to be released
		// by the caller explicitly otherwise
		r, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(err)
		}

		return newBaseInstance(r, genericResetter)()
	})
}
