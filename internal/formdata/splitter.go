package formdata

import (
	"bytes"
	"fmt"
	"io"

	"github.com/indigo-web/formkit/http/status"
)

type Retriever interface {
	Retrieve() ([]byte, error)
}

type SegmentKind uint8

const (
	// SegmentHeader carries the raw header block of a new part, without the blank line
	// terminating it.
	SegmentHeader SegmentKind = iota + 1
	// SegmentData carries a piece of the current part's body.
	SegmentData
)

// Segment is a piece of the multipart body, aligned to the framing. Data is only valid until
// the next call to Splitter.Next.
type Segment struct {
	Kind SegmentKind
	Data []byte
	// Final marks the last data segment of the part. All the part's data segments
	// concatenated result in the exact body of the part.
	Final bool
}

type splitterState uint8

const (
	statePreamble splitterState = iota
	stateDelimiter
	stateHeaders
	stateBody
	stateEpilogue
)

var (
	crlf       = []byte("\r\n")
	headersEnd = []byte("\r\n\r\n")
)

// Splitter reassembles multipart framing from arbitrarily chunked input. It holds at most
// one unresolved piece of input at a time: while receiving a part's body, no more than
// len(delimiter)-1 bytes are retained, as everything else is known not to belong to a
// delimiter and therefore is emitted immediately.
type Splitter struct {
	src Retriever
	// delimiter is \r\n--boundary. The very first one may come without the leading CRLF,
	// so delimiter[2:] is looked for in the preamble.
	delimiter []byte
	maxHeader int
	state     splitterState
	buff      []byte
	offset    int
	seen      bool
	eof       bool
	err       error
}

func NewSplitter(src Retriever, boundary string, maxHeaderSize int) *Splitter {
	delimiter := make([]byte, 0, len(boundary)+4)
	delimiter = append(delimiter, "\r\n--"...)
	delimiter = append(delimiter, boundary...)

	return &Splitter{
		src:       src,
		delimiter: delimiter,
		maxHeader: maxHeaderSize,
	}
}

// Next returns the next segment. io.EOF is returned when the body is over, including the
// case of a completely empty body. Any error is sticky.
func (s *Splitter) Next() (Segment, error) {
	if s.err != nil {
		return Segment{}, s.err
	}

	for {
		segment, ok, err := s.advance()
		if err != nil {
			s.err = err
			return Segment{}, err
		}

		if ok {
			return segment, nil
		}

		if s.eof {
			segment, s.err = s.flush()
			return segment, s.err
		}

		if err = s.fill(); err != nil {
			s.err = err
			return Segment{}, err
		}
	}
}

// fill compacts the carry-over and appends the next piece of input. Previously returned
// segments are invalidated here and only here.
func (s *Splitter) fill() error {
	if s.offset > 0 {
		n := copy(s.buff, s.buff[s.offset:])
		s.buff = s.buff[:n]
		s.offset = 0
	}

	data, err := s.src.Retrieve()
	if len(data) > 0 {
		s.seen = true
		s.buff = append(s.buff, data...)
	}

	switch err {
	case nil:
	case io.EOF:
		s.eof = true
	default:
		return err
	}

	return nil
}

func (s *Splitter) advance() (segment Segment, ok bool, err error) {
	for {
		rest := s.buff[s.offset:]

		switch s.state {
		case statePreamble:
			dashBoundary := s.delimiter[2:]
			i := bytes.Index(rest, dashBoundary)
			if i == -1 {
				if keep := len(dashBoundary) - 1; len(rest) > keep {
					s.offset += len(rest) - keep
				}

				return segment, false, nil
			}

			s.offset += i + len(dashBoundary)
			s.state = stateDelimiter
		case stateDelimiter:
			// transport padding is allowed right after the boundary
			var ws int
			for ws < len(rest) && (rest[ws] == ' ' || rest[ws] == '\t') {
				ws++
			}

			s.offset += ws
			rest = rest[ws:]
			if len(rest) < 2 {
				return segment, false, nil
			}

			switch {
			case rest[0] == '-' && rest[1] == '-':
				s.state = stateEpilogue
			case rest[0] == '\r' && rest[1] == '\n':
				s.state = stateHeaders
			default:
				return segment, false, fmt.Errorf("unexpected %q after the boundary: %w", rest[:2], status.ErrMalformedPart)
			}

			s.offset += 2
		case stateHeaders:
			if bytes.HasPrefix(rest, crlf) {
				s.offset += len(crlf)
				s.state = stateBody

				return Segment{Kind: SegmentHeader, Data: rest[:0]}, true, nil
			}

			end := bytes.Index(rest, headersEnd)
			if end == -1 {
				if len(rest) > s.maxHeader+len(headersEnd) {
					return segment, false, status.ErrHeaderFieldsTooLarge
				}

				return segment, false, nil
			}

			if end > s.maxHeader {
				return segment, false, status.ErrHeaderFieldsTooLarge
			}

			s.offset += end + len(headersEnd)
			s.state = stateBody

			return Segment{Kind: SegmentHeader, Data: rest[:end]}, true, nil
		case stateBody:
			if i := bytes.Index(rest, s.delimiter); i != -1 {
				s.offset += i + len(s.delimiter)
				s.state = stateDelimiter

				return Segment{Kind: SegmentData, Data: rest[:i], Final: true}, true, nil
			}

			safe := len(rest) - partialDelimiter(rest, s.delimiter)
			if safe == 0 {
				return segment, false, nil
			}

			s.offset += safe

			return Segment{Kind: SegmentData, Data: rest[:safe]}, true, nil
		case stateEpilogue:
			s.offset = len(s.buff)
			return segment, false, nil
		}
	}
}

// flush is called when no more input will come and nothing more can be advanced.
func (s *Splitter) flush() (Segment, error) {
	rest := s.buff[s.offset:]
	state := s.state
	s.offset = len(s.buff)
	s.state = stateEpilogue

	switch state {
	case statePreamble:
		if s.seen {
			return Segment{}, fmt.Errorf("no boundary found: %w", status.ErrMalformedPart)
		}
	case stateHeaders:
		return Segment{}, fmt.Errorf("unexpected end of part headers: %w", status.ErrMalformedPart)
	case stateBody:
		// the closing delimiter is missing, so whatever is left is the rest of the part
		return Segment{Kind: SegmentData, Data: rest, Final: true}, nil
	}

	return Segment{}, io.EOF
}

// partialDelimiter returns the length of the longest suffix of data which is a proper
// prefix of the delimiter, i.e. the part of data which can't be emitted yet, as it might
// turn out to be the delimiter when more data arrives.
func partialDelimiter(data, delimiter []byte) int {
	n := min(len(data), len(delimiter)-1)
	tail := data[len(data)-n:]

	for {
		i := bytes.IndexByte(tail, delimiter[0])
		if i == -1 {
			return 0
		}

		if bytes.HasPrefix(delimiter, tail[i:]) {
			return len(tail) - i
		}

		tail = tail[i+1:]
	}
}
