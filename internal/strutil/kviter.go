package strutil

import (
	"iter"
	"strings"
)

// tchar as of RFC 9110, 5.6.2, with the '*' kept for extended parameters (RFC 8187)
var tokenChars = [256]bool{
	'!': true, '#': true, '$': true, '%': true, '&': true, '\'': true, '*': true,
	'+': true, '-': true, '.': true, '^': true, '_': true, '`': true, '|': true, '~': true,
}

func init() {
	for c := '0'; c <= '9'; c++ {
		tokenChars[c] = true
	}

	for c := 'a'; c <= 'z'; c++ {
		tokenChars[c] = true
		tokenChars[c-'a'+'A'] = true
	}
}

// WalkKV iterates over semicolon-separated parameters, as in `a=b; c="d; e"; f`. Values
// might be either quoted strings (quotes are removed and escapes resolved) or bare tokens.
// A parameter without a value is yielded with an empty value. Malformed input results in
// a single pair of empty strings, after which the iteration stops.
func WalkKV(data string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for {
			data = LStripWS(data)
			if len(data) == 0 {
				return
			}

			if data[0] == ';' {
				data = data[1:]
				continue
			}

			var i int
			for i < len(data) && tokenChars[data[i]] {
				i++
			}

			key := data[:i]
			data = LStripWS(data[i:])
			if len(key) == 0 {
				yield("", "")
				return
			}

			if len(data) == 0 || data[0] == ';' {
				if !yield(key, "") {
					return
				}

				continue
			}

			if data[0] != '=' {
				yield("", "")
				return
			}

			data = LStripWS(data[1:])

			var (
				value string
				ok    bool
			)

			if len(data) > 0 && data[0] == '"' {
				value, data, ok = cutQuoted(data)
			} else {
				value, data, ok = cutBare(data)
			}

			if data = LStripWS(data); !ok || (len(data) > 0 && data[0] != ';') {
				yield("", "")
				return
			}

			if !yield(key, value) {
				return
			}
		}
	}
}

func cutQuoted(data string) (value, rest string, ok bool) {
	escaped := false

	for i := 1; i < len(data); i++ {
		switch data[i] {
		case '\\':
			escaped = true
			i++
		case '"':
			value = data[1:i]
			if escaped {
				value = unescape(value)
			}

			return value, data[i+1:], true
		}
	}

	return "", "", false
}

func unescape(str string) string {
	var b strings.Builder
	b.Grow(len(str))

	for i := 0; i < len(str); i++ {
		if str[i] == '\\' && i+1 < len(str) {
			i++
		}

		b.WriteByte(str[i])
	}

	return b.String()
}

func cutBare(data string) (value, rest string, ok bool) {
	end := strings.IndexByte(data, ';')
	if end == -1 {
		end = len(data)
	}

	value = RStripWS(data[:end])
	for i := 0; i < len(value); i++ {
		if c := value[i]; c == '"' || (c < 0x20 && c != '\t') || c == 0x7f {
			return "", "", false
		}
	}

	return value, data[end:], true
}
