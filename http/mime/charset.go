package mime

import "strings"

type Charset = string

const (
	UTF8   Charset = "utf8"
	UTF16  Charset = "utf16"
	ASCII  Charset = "ascii"
	CP1251 Charset = "cp1251"
	CP1252 Charset = "cp1252"
)

var charsetAliases = map[string]Charset{
	"utf-8":        UTF8,
	"utf-16":       UTF16,
	"us-ascii":     ASCII,
	"windows-1251": CP1251,
	"windows-1252": CP1252,
}

// NormalizeCharset lower-cases the charset label and resolves common aliases, so that
// UTF-8 and utf8 compare equal. Unknown labels are returned lower-cased.
func NormalizeCharset(label string) Charset {
	label = strings.ToLower(label)
	if charset, found := charsetAliases[label]; found {
		return charset
	}

	return label
}
