package mime

import (
	"github.com/indigo-web/formkit/internal/strutil"
	"github.com/indigo-web/utils/strcomp"
)

type MIME = string

const (
	OctetStream    MIME = "application/octet-stream"
	Plain          MIME = "text/plain"
	HTML           MIME = "text/html"
	JSON           MIME = "application/json"
	MsgPack        MIME = "application/msgpack"
	FormUrlencoded MIME = "application/x-www-form-urlencoded"
	Multipart      MIME = "multipart/form-data"
	PNG            MIME = "image/png"
	JPEG           MIME = "image/jpeg"
)

// Complies returns whether two MIMEs are compatible. Empty MIME is
// considered compatible with any other MIME
func Complies(mime MIME, with string) bool {
	with, _ = strutil.CutHeader(with)
	return len(with) == 0 || strcomp.EqualFold(with, mime)
}
