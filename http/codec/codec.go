// Package codec decodes bodies transmitted with a Content-Encoding applied.
package codec

import (
	"fmt"
	"io"
	"strings"

	"github.com/indigo-web/formkit/http/status"
	"github.com/indigo-web/formkit/internal/stash"
	"github.com/indigo-web/formkit/internal/strutil"
	"github.com/indigo-web/formkit/transport"
	"github.com/indigo-web/utils/strcomp"
)

type Codec interface {
	// Token returns a coding token associated with the codec itself.
	Token() string
	New() Decompressor
}

// Decompressor is a transport.Retriever yielding the decoded body of its source.
type Decompressor interface {
	transport.Retriever
	Reset(source transport.Retriever, bufferSize int) error
}

var builtin = []Codec{NewGZIP(), NewDeflate(), NewZSTD()}

// Lookup returns the built-in codec by its token. Tokens are case-insensitive and
// x-gzip is recognized as gzip.
func Lookup(token string) (Codec, bool) {
	if strcomp.EqualFold(token, "x-gzip") {
		token = "gzip"
	}

	for _, c := range builtin {
		if strcomp.EqualFold(c.Token(), token) {
			return c, true
		}
	}

	return nil, false
}

// Decode wraps the source so all the codings listed in the Content-Encoding value are undone.
// Codings are applied in the listed order, therefore they are undone in the reverse one. An
// unknown coding results in status.ErrUnsupportedMediaType.
func Decode(contentEncoding string, src transport.Retriever, bufferSize int) (transport.Retriever, error) {
	var tokens []string
	for token := range strings.SplitSeq(contentEncoding, ",") {
		if token = strutil.StripWS(token); len(token) > 0 && !strcomp.EqualFold(token, "identity") {
			tokens = append(tokens, token)
		}
	}

	for i := len(tokens) - 1; i >= 0; i-- {
		c, found := Lookup(tokens[i])
		if !found {
			return nil, fmt.Errorf("content coding %q: %w", tokens[i], status.ErrUnsupportedMediaType)
		}

		dc := c.New()
		if err := dc.Reset(src, bufferSize); err != nil {
			return nil, err
		}

		src = dc
	}

	return src, nil
}

var _ Codec = baseCodec{}

type instantiator = func() Decompressor

type baseCodec struct {
	token   string
	newInst instantiator
}

func newBaseCodec(token string, newInst instantiator) baseCodec {
	return baseCodec{
		token:   token,
		newInst: newInst,
	}
}

func (b baseCodec) Token() string {
	return b.token
}

func (b baseCodec) New() Decompressor {
	return b.newInst()
}

type decoderResetter = func(decoder io.Reader, src io.Reader) error

// tracker remembers the error of the source, so it can be told apart from the decoder's ones.
type tracker struct {
	src transport.Retriever
	err error
}

func (t *tracker) Retrieve() ([]byte, error) {
	data, err := t.src.Retrieve()
	if err != nil && err != io.EOF {
		t.err = err
	}

	return data, err
}

var _ Decompressor = new(baseInstance)

type baseInstance struct {
	reset   decoderResetter
	source  tracker
	adapter *stash.Reader
	r       io.Reader
	buff    []byte
}

func newBaseInstance(decoder io.Reader, reset decoderResetter) instantiator {
	return func() Decompressor {
		return &baseInstance{
			reset: reset,
			r:     decoder,
		}
	}
}

func (b *baseInstance) Reset(source transport.Retriever, bufferSize int) error {
	if cap(b.buff) < bufferSize {
		b.buff = make([]byte, bufferSize)
	}
	b.buff = b.buff[:bufferSize]

	b.source = tracker{src: source}
	if b.adapter == nil {
		b.adapter = stash.New(&b.source)
	} else {
		b.adapter.Reset(&b.source)
	}

	err := b.reset(b.r, b.adapter)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// the stream ended before its header did
		return fmt.Errorf("%w: truncated header", status.ErrBadEncoding)
	}

	return b.wrap(err)
}

func (b *baseInstance) Retrieve() ([]byte, error) {
	n, err := b.r.Read(b.buff)
	return b.buff[:n], b.wrap(err)
}

// wrap leaves source's errors intact, marking any other as a malformed encoding.
func (b *baseInstance) wrap(err error) error {
	if err == nil || err == io.EOF || (b.source.err != nil && err == b.source.err) {
		return err
	}

	return fmt.Errorf("%w: %s", status.ErrBadEncoding, err)
}

func genericResetter(r io.Reader, src io.Reader) error {
	type resetter interface {
		Reset(r io.Reader) error
	}

	if reset, ok := r.(resetter); ok {
		return reset.Reset(src)
	}

	return nil
}
