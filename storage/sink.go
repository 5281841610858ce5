// Package storage persists uploaded files somewhere more durable than the spool directory.
package storage

import (
	"context"
	"path"

	"github.com/indigo-web/formkit/http/form"
)

// Sink persists a file under the key. Sinks don't take the ownership of the file, so it must
// still be closed by the caller afterward.
type Sink interface {
	Put(ctx context.Context, key string, file *form.File) error
}

// cleanKey turns an arbitrary key into a relative slash-separated path, which can't escape
// the root it's joined with.
func cleanKey(key string) string {
	return path.Clean("/" + key)[1:]
}
