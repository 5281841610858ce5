package form

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/dchest/uniuri"
)

var (
	ErrAlreadySaved = errors.New("form: file is already saved")
	ErrClosed       = errors.New("form: file is closed")
)

// rename and remove are swapped in tests in order to simulate cross-device moves.
var (
	rename = os.Rename
	remove = os.Remove
)

// File is an uploaded file spooled to the disk. It's owned by the caller, who must either
// Save or Close it (or Close the whole Form) as there are no finalizers reclaiming it.
type File struct {
	// Filename is the name as it was declared by the client. It's not sanitized in any way,
	// so it must never be used as a path directly.
	Filename    string
	ContentType string
	Charset     string

	mu       sync.Mutex
	path     string
	size     int64
	copyBuff int
	saved    bool
	closed   bool
}

// NewFile wraps an already spooled file. copyBufferSize is used when Save can't just rename
// the file.
func NewFile(path string, size int64, copyBufferSize int) *File {
	return &File{
		path:     path,
		size:     size,
		copyBuff: copyBufferSize,
	}
}

// Size returns the size of the file's content in bytes.
func (f *File) Size() int64 {
	return f.size
}

// Path returns where the file's content currently resides. After Save, this is the target.
func (f *File) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.path
}

// Saved tells whether the file was successfully saved.
func (f *File) Saved() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.saved
}

// Open opens the file's content for reading.
func (f *File) Open() (*os.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}

	return os.Open(f.path)
}

// Save moves the file to the target. If the target is an existing directory, the base of the
// client's filename is used as the name of the file inside it. The move is done by renaming
// whenever possible, falling back to copying when the target is on another device.
//
// A file can be saved only once.
func (f *File) Save(target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case f.closed:
		return ErrClosed
	case f.saved:
		return ErrAlreadySaved
	}

	if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, f.safeName())
	}

	var leftover error
	err := rename(f.path, target)
	if errors.Is(err, syscall.EXDEV) {
		if err = f.copyTo(target); err == nil {
			leftover = remove(f.path)
		}
	}

	if err != nil {
		return fmt.Errorf("form: save %s: %w", f.Filename, err)
	}

	// the target is complete by now, even if the spooled copy couldn't be removed
	f.path = target
	f.saved = true

	if leftover != nil {
		return fmt.Errorf("form: save %s: spooled copy left behind: %w", f.Filename, leftover)
	}

	return nil
}

// safeName returns the base of the filename, stripped of any directories regardless of the
// separator the client used.
func (f *File) safeName() string {
	name := f.Filename[strings.LastIndexAny(f.Filename, `/\`)+1:]
	switch name {
	case "", ".", "..":
		return filepath.Base(f.path)
	default:
		return name
	}
}

// copyTo copies the content into a temporary file next to the target, which is renamed into
// place afterward. This way, the target is never observed partially written.
func (f *File) copyTo(target string) error {
	src, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer src.Close()

	tmp := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+"."+uniuri.New())
	dst, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}

	// hide ReaderFrom and WriterTo, otherwise the buffer is ignored
	_, err = io.CopyBuffer(
		struct{ io.Writer }{dst}, struct{ io.Reader }{src}, make([]byte, max(f.copyBuff, 512)),
	)
	if err == nil {
		err = dst.Sync()
	}

	if err = errors.Join(err, dst.Close()); err == nil {
		err = os.Rename(tmp, target)
	}

	if err != nil {
		_ = os.Remove(tmp)
	}

	return err
}

// Close removes the spooled file unless it was saved. Closing an already closed file is no-op.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}

	f.closed = true
	if f.saved {
		return nil
	}

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}
