package formdata

import (
	"fmt"
	"io"

	"github.com/indigo-web/formkit/config"
	"github.com/indigo-web/formkit/http/mime"
	"github.com/indigo-web/formkit/http/status"
	"github.com/indigo-web/formkit/internal/buffer"
	"github.com/indigo-web/utils/strcomp"
)

type EventKind uint8

const (
	// EventField is a complete plain field: Name, Value, ContentType and Charset are set.
	EventField EventKind = iota + 1
	// EventFile announces a file part: Name, Filename, ContentType and Charset are set. Its
	// content follows as zero or more EventFileData.
	EventFile
	// EventFileData is a piece of the most recently announced file. Data is only valid
	// until the next call to Parser.Next.
	EventFileData
	// EventEnd is emitted exactly once, after the last part.
	EventEnd
)

func (e EventKind) String() string {
	switch e {
	case EventField:
		return "field"
	case EventFile:
		return "file"
	case EventFileData:
		return "file data"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind        EventKind
	Name        string
	Value       string
	Filename    string
	ContentType string
	Charset     string
	Data        []byte
}

type part struct {
	name, filename, contentType, charset string
	file                                 bool
}

// Parser classifies segments produced by the Splitter and turns them into events.
type Parser struct {
	splitter *Splitter
	cfg      *config.Config
	value    buffer.Buffer
	part     part
	parts    int
	ended    bool
}

func NewParser(src Retriever, boundary string, cfg *config.Config) *Parser {
	return &Parser{
		splitter: NewSplitter(src, boundary, cfg.Body.Multipart.MaxHeaderSize),
		cfg:      cfg,
		value:    buffer.New(0, cfg.Body.Multipart.MaxFieldSize),
	}
}

// Next returns the next event. After EventEnd, io.EOF is returned. A malformed part rejects
// the whole form, resulting in an error wrapping status.ErrMalformedPart.
func (p *Parser) Next() (Event, error) {
	for {
		segment, err := p.splitter.Next()
		switch err {
		case nil:
		case io.EOF:
			if p.ended {
				return Event{}, io.EOF
			}

			p.ended = true
			return Event{Kind: EventEnd}, nil
		default:
			return Event{}, err
		}

		switch segment.Kind {
		case SegmentHeader:
			if p.parts++; p.parts > p.cfg.Body.Multipart.MaxParts {
				return Event{}, status.ErrTooManyParts
			}

			p.part, err = p.classify(segment.Data)
			if err != nil {
				return Event{}, fmt.Errorf("part %d: %w", p.parts, err)
			}

			if p.part.file {
				return Event{
					Kind:        EventFile,
					Name:        p.part.name,
					Filename:    p.part.filename,
					ContentType: p.part.contentType,
					Charset:     p.part.charset,
				}, nil
			}

			p.value.Clear()
		case SegmentData:
			if p.part.file {
				if len(segment.Data) == 0 {
					continue
				}

				return Event{Kind: EventFileData, Data: segment.Data}, nil
			}

			if !p.value.Append(segment.Data) {
				return Event{}, fmt.Errorf("field %q: %w", p.part.name, status.ErrRequestEntityTooLarge)
			}

			if segment.Final {
				return Event{
					Kind:        EventField,
					Name:        p.part.name,
					Value:       p.value.Finish(),
					ContentType: p.part.contentType,
					Charset:     p.part.charset,
				}, nil
			}
		}
	}
}

func (p *Parser) classify(header []byte) (part, error) {
	fields, err := ParseHeader(header)
	if err != nil {
		return part{}, err
	}

	disposition, found := fields.Get("Content-Disposition")
	if !found {
		return part{}, fmt.Errorf("no Content-Disposition: %w", status.ErrMalformedPart)
	}

	if !strcomp.EqualFold(disposition.Value, "form-data") {
		return part{}, fmt.Errorf("unexpected disposition %q: %w", disposition.Value, status.ErrMalformedPart)
	}

	name, _ := disposition.Param("name")
	if len(name) == 0 {
		return part{}, fmt.Errorf("no field name: %w", status.ErrMalformedPart)
	}

	result := part{
		name:    name,
		charset: p.cfg.Body.Form.DefaultCoding,
	}

	result.filename, result.file = disposition.Param("filename")
	if extended, found := disposition.Param("filename*"); found {
		if result.filename, found = decodeExtValue(extended); !found {
			return part{}, fmt.Errorf("malformed filename*: %w", status.ErrMalformedPart)
		}

		result.file = true
	}

	if contentType, found := fields.Get("Content-Type"); found {
		result.contentType = contentType.Value
		if charset, _ := contentType.Param("charset"); len(charset) > 0 {
			result.charset = mime.NormalizeCharset(charset)
		}
	}

	if len(result.contentType) == 0 {
		if result.file {
			result.contentType = p.cfg.Body.Multipart.DefaultFileType
		} else {
			result.contentType = p.cfg.Body.Form.DefaultContentType
		}
	}

	return result, nil
}
