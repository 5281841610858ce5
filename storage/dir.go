package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/indigo-web/formkit/http/form"
)

// Dir stores files in a local directory tree. Files are moved, not copied, whenever the
// spool directory and the root reside on the same device.
type Dir struct {
	root string
}

func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	return &Dir{root: root}, nil
}

func (d *Dir) Put(ctx context.Context, key string, file *form.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key = cleanKey(key)
	if len(key) == 0 {
		return errors.New("storage: empty key")
	}

	target := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	return file.Save(target)
}
