package http

import (
	"context"
	"io"

	"github.com/indigo-web/formkit/config"
	"github.com/indigo-web/formkit/http/form"
	"github.com/indigo-web/formkit/http/mime"
	"github.com/indigo-web/formkit/http/multipart"
	"github.com/indigo-web/formkit/http/status"
	"github.com/indigo-web/formkit/internal/stash"
	"github.com/indigo-web/formkit/transport"
	"github.com/indigo-web/utils/uf"
)

type BodyCallback func([]byte) error

type Retriever = transport.Retriever

type retriever = Retriever

// Body is a request body, consumed either piece by piece or at once in one of the supported
// representations. Consuming methods are mutually exclusive: once the body is read, it's gone.
type Body struct {
	retriever
	contentType string
	cfg         *config.Config
	reader      *stash.Reader
	form        form.Form
	formErr     error
	decoded     bool
	buff        []byte
	error       error
}

// NewBody wraps the source of the body. The body is limited by Body.MaxSize, exceeding it
// results in status.ErrBodyTooLarge.
func NewBody(src Retriever, contentType string, cfg *config.Config) *Body {
	return &Body{
		retriever:   transport.NewLimited(src, cfg.Body.MaxSize),
		contentType: contentType,
		cfg:         cfg,
	}
}

// ContentType returns the declared Content-Type of the body.
func (b *Body) ContentType() string {
	return b.contentType
}

// Callback invokes the callback every time as there's a piece of body available
// for reading. If the callback returns an error, it'll be passed back to the caller.
// The callback is not notified when there's no more data or networking error has
// occurred.
//
// Please note: this method can be used only once.
func (b *Body) Callback(cb BodyCallback) error {
	if b.error != nil {
		return b.error
	}

	for {
		var data []byte
		data, b.error = b.Retrieve()
		switch b.error {
		case nil:
		case io.EOF:
			return cb(data)
		default:
			return b.error
		}

		if b.error = cb(data); b.error != nil {
			return b.error
		}
	}
}

// Bytes returns the whole body at once in a byte representation.
func (b *Body) Bytes() ([]byte, error) {
	if len(b.buff) != 0 {
		return b.buff, nil
	}

	if b.error != nil {
		return nil, b.error
	}

	for {
		var data []byte
		data, b.error = b.Retrieve()
		b.buff = append(b.buff, data...)
		switch b.error {
		case nil:
		case io.EOF:
			return b.buff, nil
		default:
			return nil, b.error
		}
	}
}

// String returns the whole body at once in a string representation.
func (b *Body) String() (string, error) {
	bytes, err := b.Bytes()
	return uf.B2S(bytes), err
}

// Read implements the io.Reader interface.
func (b *Body) Read(into []byte) (n int, err error) {
	if b.reader == nil {
		b.reader = stash.New(b.retriever)
	}

	n, err = b.reader.Read(into)
	if err != nil {
		b.error = err
	}

	return n, err
}

// WriteTo implements the io.WriterTo interface, so io.Copy drains the body without an
// intermediate buffer.
func (b *Body) WriteTo(w io.Writer) (n int64, err error) {
	if b.error != nil && b.reader == nil {
		if b.error == io.EOF {
			return 0, nil
		}

		return 0, b.error
	}

	if b.reader == nil {
		b.reader = stash.New(b.retriever)
	}

	n, err = b.reader.WriteTo(w)
	if err != nil {
		b.error = err
	} else {
		b.error = io.EOF
	}

	return n, err
}

// JSON convoys the request's body to a json unmarshaller automatically and behaves
// in a similar manner. The codec is configured by the config.JSON the body was created
// with.
//
// Please note: this method cannot be used on requests with Content-Type incompatible
// with mime.JSON (in this case, status.ErrUnsupportedMediaType is returned).
func (b *Body) JSON(model any) error {
	if !mime.Complies(mime.JSON, b.contentType) {
		return status.ErrUnsupportedMediaType
	}

	data, err := b.Bytes()
	if err != nil {
		return err
	}

	api := b.cfg.JSON.API()
	iterator := api.BorrowIterator(data)
	iterator.ReadVal(model)
	err = iterator.Error
	api.ReturnIterator(iterator)

	return err
}

// Multipart decodes the body as a multipart/form-data, spooling files to the disk. The result
// is decoded once and cached, so subsequent calls return the same form. The caller owns the
// files and must close them, e.g. via form.Close.
//
// Please note: this method cannot be used on requests with Content-Type other than
// mime.Multipart (in this case, status.ErrUnsupportedMediaType is returned).
func (b *Body) Multipart(ctx context.Context) (form.Form, error) {
	if b.decoded {
		return b.form, b.formErr
	}

	boundary, err := multipart.Boundary(b.contentType)
	if err != nil {
		return nil, err
	}

	if b.error != nil {
		return nil, b.error
	}

	b.decoded = true
	b.form, b.formErr = multipart.Decode(ctx, b.retriever, boundary, b.cfg)
	if b.formErr != nil {
		b.error = b.formErr
	} else {
		b.error = io.EOF
	}

	return b.form, b.formErr
}

// Discard discards the rest of the body (if any). If no networking error was encountered,
// nil is returned.
func (b *Body) Discard() error {
	for b.error == nil {
		_, b.error = b.Retrieve()
	}

	if b.error == io.EOF {
		return nil
	}

	return b.error
}

// Error returns a previously encountered error, otherwise nil.
func (b *Body) Error() error {
	return b.error
}
