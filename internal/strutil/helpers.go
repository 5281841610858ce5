package strutil

import "strings"

// isOWS reports whether c is an optional whitespace (RFC 9110, 5.6.3).
func isOWS(c byte) bool {
	return c == ' ' || c == '\t'
}

func LStripWS(str string) string {
	i := 0
	for i < len(str) && isOWS(str[i]) {
		i++
	}

	return str[i:]
}

func RStripWS(str string) string {
	i := len(str)
	for i > 0 && isOWS(str[i-1]) {
		i--
	}

	return str[:i]
}

func StripWS(str string) string {
	return RStripWS(LStripWS(str))
}

// CutHeader splits a header value into the value itself and its parameters, if any. The
// value is stripped of surrounding whitespace, the parameters of the leading one.
func CutHeader(header string) (value, params string) {
	value, params, _ = strings.Cut(header, ";")
	return StripWS(value), LStripWS(params)
}
