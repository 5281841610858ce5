package status

type (
	Code   uint16
	Status string
)

// The subset of codes the decoding layer may ever report. See
// https://www.iana.org/assignments/http-status-codes/http-status-codes.xhtml
const (
	OK                          Code = 200 // RFC 9110, 15.3.1
	BadRequest                  Code = 400 // RFC 9110, 15.5.1
	RequestTimeout              Code = 408 // RFC 9110, 15.5.9
	RequestEntityTooLarge       Code = 413 // RFC 9110, 15.5.14
	UnsupportedMediaType        Code = 415 // RFC 9110, 15.5.16
	UnprocessableEntity         Code = 422 // RFC 9110, 15.5.21
	RequestHeaderFieldsTooLarge Code = 431 // RFC 6585, 5
	InternalServerError         Code = 500 // RFC 9110, 15.6.1
	InsufficientStorage         Code = 507 // RFC 4918, 11.5

	// CloseConnection is not a real status code. It tells the caller the request was
	// aborted by the client and no response must be written at all.
	CloseConnection Code = 1
)

// Text returns a reason phrase of the code. Empty string is returned for unknown codes.
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case BadRequest:
		return "Bad Request"
	case RequestTimeout:
		return "Request Timeout"
	case RequestEntityTooLarge:
		return "Request Entity Too Large"
	case UnsupportedMediaType:
		return "Unsupported Media Type"
	case UnprocessableEntity:
		return "Unprocessable Entity"
	case RequestHeaderFieldsTooLarge:
		return "Request Header Fields Too Large"
	case InternalServerError:
		return "Internal Server Error"
	case InsufficientStorage:
		return "Insufficient Storage"
	default:
		return ""
	}
}
