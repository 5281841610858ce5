package spool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dchest/uniuri"
)

const (
	Prefix = "formkit-"
	// nameAttempts bounds retries on name collisions. With 16 random alphanumerics a single
	// collision is already unlikely, so running out of attempts means something is wrong
	// with the directory itself.
	nameAttempts = 16
)

var ErrSealed = errors.New("spool: writer is already sealed")

// Writer spools a single file to the disk. Writes are handed over to a dedicated goroutine
// through a bounded queue, so the caller is blocked by the disk only when the queue is full.
// A Writer isn't safe for concurrent use; it must be either sealed or aborted eventually.
type Writer struct {
	file  *os.File
	path  string
	queue chan []byte
	done  chan struct{}

	mu      sync.Mutex
	err     error
	size    int64
	aborted bool
	sealed  bool
}

// Create allocates a uniquely named temporary file in the dir and starts its writer.
func Create(dir string, queue int) (*Writer, error) {
	if queue < 0 {
		return nil, fmt.Errorf("spool: negative write queue %d", queue)
	}

	file, err := createUnique(dir)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		file:  file,
		path:  file.Name(),
		queue: make(chan []byte, queue),
		done:  make(chan struct{}),
	}
	go w.loop()

	return w, nil
}

func createUnique(dir string) (*os.File, error) {
	for range nameAttempts {
		path := filepath.Join(dir, Prefix+uniuri.New())
		file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
		switch {
		case err == nil:
			return file, nil
		case errors.Is(err, os.ErrExist):
			continue
		default:
			return nil, fmt.Errorf("spool: %w", err)
		}
	}

	return nil, fmt.Errorf("spool: no free name found in %s", dir)
}

func (w *Writer) loop() {
	defer close(w.done)

	for data := range w.queue {
		w.mu.Lock()
		skip := w.err != nil || w.aborted
		w.mu.Unlock()
		if skip {
			continue
		}

		n, err := w.file.Write(data)

		w.mu.Lock()
		w.size += int64(n)
		if err != nil {
			w.err = fmt.Errorf("spool: write %s: %w", w.path, err)
		}
		w.mu.Unlock()
	}
}

// Path returns the path of the underlying file.
func (w *Writer) Path() string {
	return w.path
}

// Write enqueues a copy of data, so the passed slice may be reused right after the call.
// An error of a previously enqueued write is returned here, if happened.
func (w *Writer) Write(ctx context.Context, data []byte) error {
	if w.sealed {
		return ErrSealed
	}

	if err := w.failure(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if len(data) == 0 {
		return nil
	}

	select {
	case w.queue <- append([]byte(nil), data...):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) failure() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.err
}

// Seal waits until every pending write is done and closes the file. The file stays on the
// disk, unless an error occurred: in this case it's removed and the error returned.
func (w *Writer) Seal() (size int64, err error) {
	if w.sealed {
		return 0, ErrSealed
	}

	w.sealed = true
	close(w.queue)
	<-w.done

	err = errors.Join(w.failure(), w.file.Close())
	if err != nil {
		return 0, errors.Join(err, removeIfExists(w.path))
	}

	return w.size, nil
}

// Abort drops pending writes, closes and removes the file. It's safe to call Abort after Seal,
// in which case the sealed file is removed.
func (w *Writer) Abort() error {
	if w.sealed {
		return removeIfExists(w.path)
	}

	w.mu.Lock()
	w.aborted = true
	w.mu.Unlock()

	w.sealed = true
	close(w.queue)
	<-w.done

	return errors.Join(w.file.Close(), removeIfExists(w.path))
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}
