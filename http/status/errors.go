package status

import "errors"

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrCloseConnection = NewError(CloseConnection, "actively closing the connection")

	ErrBadRequest            = NewError(BadRequest, "bad request")
	ErrBadChunk              = NewError(BadRequest, "malformed chunk-encoded data")
	ErrBadBoundary           = NewError(BadRequest, "missing or malformed multipart boundary")
	ErrBadEncoding           = NewError(BadRequest, "malformed content encoding")
	ErrMalformedPart         = NewError(BadRequest, "malformed multipart part")
	ErrBodyTooLarge          = NewError(RequestEntityTooLarge, "request body is too large")
	ErrRequestEntityTooLarge = NewError(RequestEntityTooLarge, "request entity too large")
	ErrTooManyParts          = NewError(RequestEntityTooLarge, "too many multipart parts")
	ErrHeaderFieldsTooLarge  = NewError(RequestHeaderFieldsTooLarge, "too large headers section")
	ErrUnsupportedMediaType  = NewError(UnsupportedMediaType, "unsupported media type")
	ErrInternalServerError   = NewError(InternalServerError, "internal server error")
	ErrInsufficientStorage   = NewError(InsufficientStorage, "insufficient storage")
)

// CodeOf returns the code of the first HTTPError in the err's chain. Errors which
// aren't HTTPErrors are considered internal, except nil which results in OK.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}
