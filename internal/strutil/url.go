package strutil

import "strings"

var halfbyte = [256]byte{}

func init() {
	for i := range halfbyte {
		halfbyte[i] = 0xFF
	}

	for c := '0'; c <= '9'; c++ {
		halfbyte[c] = byte(c - '0')
	}

	for c := 'a'; c <= 'f'; c++ {
		halfbyte[c] = byte(c-'a') + 10
		halfbyte[c-'a'+'A'] = byte(c-'a') + 10
	}
}

// IsURLUnsafeChar tells whether it's unsafe to decode an urlencoded character.
func IsURLUnsafeChar(c byte) bool {
	return c == '/' || c == '\\' || c < 0x20 || c == 0x7f
}

// URLDecode decodes an urlencoded string and tells whether the string was properly formed.
// Unsafe characters are left encoded.
func URLDecode(str string) (string, bool) {
	var b strings.Builder
	b.Grow(len(str))
	s := str

	for len(s) > 0 {
		percent := strings.IndexByte(s, '%')
		if percent == -1 {
			break
		}

		b.WriteString(s[:percent])
		s = s[percent+1:]
		if len(s) < 2 {
			return "", false
		}

		c1, c2 := s[0], s[1]
		s = s[2:]
		x, y := halfbyte[c1], halfbyte[c2]
		if x|y == 0xFF {
			return "", false
		}

		char := (x << 4) | y
		if IsURLUnsafeChar(char) {
			b.Write([]byte{'%', c1 | 0x20, c2 | 0x20})
			continue
		}

		b.WriteByte(char)
	}

	b.WriteString(s)

	return b.String(), true
}
