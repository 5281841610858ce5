package multipart

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/indigo-web/formkit/config"
	"github.com/indigo-web/formkit/http/form"
	"github.com/indigo-web/formkit/internal/formdata"
	"github.com/indigo-web/formkit/internal/spool"
	"github.com/indigo-web/formkit/transport"
)

// Decode reads a multipart/form-data body to the end and returns the decoded form. Files are
// spooled to Multipart.TempDir as they arrive, so their size isn't bound by memory. Every
// returned file must be either saved or closed by the caller, most easily via form.Close.
//
// On any failure, be it a disconnect, malformed input, a storage error or the cancellation of
// ctx, every file spooled so far is removed and only the error is returned. Malformed input
// results in errors, mapped by status.CodeOf into 4xx codes.
func Decode(ctx context.Context, src transport.Retriever, boundary string, cfg *config.Config) (form.Form, error) {
	if err := ValidateBoundary(boundary); err != nil {
		return nil, err
	}

	d := decoder{
		ctx:    ctx,
		cfg:    cfg,
		parser: formdata.NewParser(src, boundary, cfg),
		result: make(form.Form),
	}

	f, err := d.run()
	if err != nil {
		d.cleanup()
		return nil, err
	}

	return f, nil
}

type openFile struct {
	name, filename, contentType, charset string
	writer                               *spool.Writer
}

type decoder struct {
	ctx     context.Context
	cfg     *config.Config
	parser  *formdata.Parser
	result  form.Form
	current *openFile
}

func (d *decoder) run() (form.Form, error) {
	for {
		if err := d.ctx.Err(); err != nil {
			return nil, err
		}

		event, err := d.parser.Next()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}

			return nil, err
		}

		switch event.Kind {
		case formdata.EventField:
			if err = d.finalize(); err != nil {
				return nil, err
			}

			d.report(d.result.Set(event.Name, event.Value))
		case formdata.EventFile:
			if err = d.finalize(); err != nil {
				return nil, err
			}

			writer, err := spool.Create(d.cfg.Body.Multipart.TempDir, d.cfg.Body.Multipart.WriteQueue)
			if err != nil {
				return nil, fmt.Errorf("file %q: %w", event.Name, err)
			}

			d.current = &openFile{
				name:        event.Name,
				filename:    event.Filename,
				contentType: event.ContentType,
				charset:     event.Charset,
				writer:      writer,
			}
		case formdata.EventFileData:
			if d.current == nil {
				return nil, errors.New("file data outside of a file part")
			}

			if err = d.current.writer.Write(d.ctx, event.Data); err != nil {
				return nil, fmt.Errorf("file %q: %w", d.current.name, err)
			}
		case formdata.EventEnd:
			if err = d.finalize(); err != nil {
				return nil, err
			}

			return d.result, nil
		}
	}
}

// finalize moves the currently open file, if any, into the result.
func (d *decoder) finalize() error {
	if d.current == nil {
		return nil
	}

	current := d.current
	d.current = nil

	size, err := current.writer.Seal()
	if err != nil {
		return fmt.Errorf("file %q: %w", current.name, err)
	}

	file := form.NewFile(current.writer.Path(), size, d.cfg.Body.Multipart.CopyBufferSize)
	file.Filename = current.filename
	file.ContentType = current.contentType
	file.Charset = current.charset
	d.report(d.result.SetFile(current.name, file))

	return nil
}

// cleanup releases every file spooled so far.
func (d *decoder) cleanup() {
	if d.current != nil {
		d.report(d.current.writer.Abort())
		d.current = nil
	}

	d.report(d.result.Close())
}

// report logs errors which can't be returned, as the decoding either succeeds regardless or
// already failed with another error.
func (d *decoder) report(err error) {
	if err != nil && d.cfg.Logger != nil {
		d.cfg.Logger.Printf("formkit: releasing a spooled file: %s", err)
	}
}
