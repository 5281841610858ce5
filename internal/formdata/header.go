package formdata

import (
	"fmt"
	"strings"

	"github.com/indigo-web/formkit/http/status"
	"github.com/indigo-web/formkit/internal/strutil"
	"github.com/indigo-web/utils/strcomp"
)

type Param struct {
	Key, Value string
}

// Field is a single header of a part, split into its primary value and parameters, e.g.
// `Content-Disposition: form-data; name="x"` results in Value=form-data and a name=x param.
type Field struct {
	Name   string
	Value  string
	Params []Param
}

// Param returns the value of the parameter. Keys are compared case-insensitively.
func (f Field) Param(key string) (value string, found bool) {
	for _, param := range f.Params {
		if strcomp.EqualFold(param.Key, key) {
			return param.Value, true
		}
	}

	return "", false
}

type Fields []Field

// Get returns the first field with the name. Names are compared case-insensitively.
func (f Fields) Get(name string) (Field, bool) {
	for _, field := range f {
		if strcomp.EqualFold(field.Name, name) {
			return field, true
		}
	}

	return Field{}, false
}

// ParseHeader parses the header block of a part. The returned values don't reference the
// block, so it may be safely reused afterward.
func ParseHeader(block []byte) (Fields, error) {
	if len(block) == 0 {
		return nil, nil
	}

	var fields Fields

	for line := range strings.SplitSeq(string(block), "\r\n") {
		if len(line) == 0 || line[0] == ' ' || line[0] == '\t' {
			return nil, fmt.Errorf("malformed header line %q: %w", line, status.ErrMalformedPart)
		}

		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			return nil, fmt.Errorf("malformed header line %q: %w", line, status.ErrMalformedPart)
		}

		value, params := strutil.CutHeader(line[colon+1:])
		field := Field{
			Name:  strutil.RStripWS(line[:colon]),
			Value: value,
		}

		for key, val := range strutil.WalkKV(params) {
			if len(key) == 0 {
				return nil, fmt.Errorf("malformed parameters of %s: %w", field.Name, status.ErrMalformedPart)
			}

			field.Params = append(field.Params, Param{Key: key, Value: val})
		}

		fields = append(fields, field)
	}

	return fields, nil
}

// decodeExtValue decodes an extended parameter value (RFC 8187), e.g. UTF-8''%e2%82%ac.
// Only the percent-encoding is resolved, the bytes are left in the declared charset.
func decodeExtValue(value string) (string, bool) {
	charset, rest, found := strings.Cut(value, "'")
	if !found || len(charset) == 0 {
		return "", false
	}

	_, encoded, found := strings.Cut(rest, "'")
	if !found {
		return "", false
	}

	return strutil.URLDecode(encoded)
}
