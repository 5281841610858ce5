package transport

import (
	"math"

	"github.com/indigo-web/formkit/http/status"
)

// Limited fails with status.ErrBodyTooLarge as soon as the body exceeds the limit.
type Limited struct {
	src       Retriever
	max, seen uint64
}

func NewLimited(src Retriever, max uint64) *Limited {
	return &Limited{
		src: src,
		max: max,
	}
}

func (l *Limited) Retrieve() ([]byte, error) {
	data, err := l.src.Retrieve()
	seen, overflows := adduint(l.seen, uint64(len(data)))
	if overflows || seen > l.max {
		return nil, status.ErrBodyTooLarge
	}

	l.seen = seen
	return data, err
}

func adduint(x, y uint64) (uint64, bool) {
	return x + y, math.MaxUint64-x < y
}
