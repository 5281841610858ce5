package multipart

import (
	"bytes"
	"fmt"

	"github.com/indigo-web/formkit/http/mime"
	"github.com/indigo-web/formkit/http/status"
	"github.com/indigo-web/formkit/internal/strutil"
	"github.com/indigo-web/utils/strcomp"
)

// MaxBoundaryLength is the limit set by RFC 2046, 5.1.1.
const MaxBoundaryLength = 70

// bchars as of RFC 2046, 5.1.1. Space is allowed anywhere except the end.
var boundaryChars = [256]bool{
	'\'': true, '(': true, ')': true, '+': true, '_': true, ',': true, '-': true,
	'.': true, '/': true, ':': true, '=': true, '?': true, ' ': true,
}

func init() {
	for c := '0'; c <= '9'; c++ {
		boundaryChars[c] = true
	}

	for c := 'a'; c <= 'z'; c++ {
		boundaryChars[c] = true
		boundaryChars[c-'a'+'A'] = true
	}
}

// ValidateBoundary checks whether the boundary can be used to delimit parts.
func ValidateBoundary(boundary string) error {
	if len(boundary) == 0 || len(boundary) > MaxBoundaryLength {
		return fmt.Errorf("boundary length %d: %w", len(boundary), status.ErrBadBoundary)
	}

	if boundary[len(boundary)-1] == ' ' {
		return fmt.Errorf("trailing space in boundary: %w", status.ErrBadBoundary)
	}

	for i := 0; i < len(boundary); i++ {
		if !boundaryChars[boundary[i]] {
			return fmt.Errorf("illegal boundary character %q: %w", boundary[i], status.ErrBadBoundary)
		}
	}

	return nil
}

// Boundary extracts the boundary parameter of a multipart/form-data Content-Type. Exactly one
// boundary parameter is expected.
func Boundary(contentType string) (string, error) {
	value, params := strutil.CutHeader(contentType)
	if !strcomp.EqualFold(strutil.StripWS(value), mime.Multipart) {
		return "", status.ErrUnsupportedMediaType
	}

	var (
		boundary string
		found    bool
	)

	for key, val := range strutil.WalkKV(params) {
		switch {
		case len(key) == 0:
			return "", fmt.Errorf("malformed Content-Type parameters: %w", status.ErrBadBoundary)
		case !strcomp.EqualFold(key, "boundary"):
		case found:
			return "", fmt.Errorf("more than one boundary: %w", status.ErrBadBoundary)
		default:
			boundary, found = val, true
		}
	}

	if !found {
		return "", fmt.Errorf("no boundary: %w", status.ErrBadBoundary)
	}

	return boundary, ValidateBoundary(boundary)
}

// SniffBoundary guesses the boundary from the beginning of a raw multipart body, taking the
// first line starting with two dashes as the opening delimiter. This is meant for bodies
// stored without their headers, e.g. captured for debugging.
func SniffBoundary(head []byte) (string, bool) {
	for line := range bytes.Lines(head) {
		end := len(line)
		if end == 0 || line[end-1] != '\n' {
			// the line might be cut off
			return "", false
		}

		line = bytes.TrimRight(line, "\r\n")
		if !bytes.HasPrefix(line, []byte("--")) {
			continue
		}

		boundary := strutil.RStripWS(string(line[2:]))
		if ValidateBoundary(boundary) != nil {
			return "", false
		}

		return boundary, true
	}

	return "", false
}
