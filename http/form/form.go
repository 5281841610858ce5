package form

import (
	"errors"
	"iter"
	"maps"
	"slices"
)

// Entry is either a plain value or an uploaded file, but never both.
type Entry struct {
	Value string
	File  *File
}

// IsFile tells whether the entry holds an uploaded file.
func (e Entry) IsFile() bool {
	return e.File != nil
}

// Form maps field names to their entries. Repeating names are resolved by the last-write-wins
// policy, so only the last occurrence is kept.
type Form map[string]Entry

// Value returns the plain value of the field. Files are not considered values.
func (f Form) Value(name string) (string, bool) {
	entry, found := f[name]
	if !found || entry.IsFile() {
		return "", false
	}

	return entry.Value, true
}

// File returns the uploaded file by its field name.
func (f Form) File(name string) (*File, bool) {
	entry, found := f[name]
	if !found || !entry.IsFile() {
		return nil, false
	}

	return entry.File, true
}

// Set stores a plain value. A file previously stored under the name is closed.
func (f Form) Set(name, value string) error {
	err := f.displace(name, nil)
	f[name] = Entry{Value: value}

	return err
}

// SetFile stores the file. A different file previously stored under the name is closed.
func (f Form) SetFile(name string, file *File) error {
	err := f.displace(name, file)
	f[name] = Entry{File: file}

	return err
}

func (f Form) displace(name string, with *File) error {
	if old, found := f[name]; found && old.IsFile() && old.File != with {
		return old.File.Close()
	}

	return nil
}

// Iter iterates over all the entries ordered by their names.
func (f Form) Iter() iter.Seq2[string, Entry] {
	return func(yield func(string, Entry) bool) {
		for _, name := range slices.Sorted(maps.Keys(f)) {
			if !yield(name, f[name]) {
				break
			}
		}
	}
}

// Files iterates over uploaded files only, ordered by their field names.
func (f Form) Files() iter.Seq2[string, *File] {
	return func(yield func(string, *File) bool) {
		for name, entry := range f.Iter() {
			if entry.IsFile() && !yield(name, entry.File) {
				break
			}
		}
	}
}

// Close closes every file in the form. Unsaved files are removed from the disk.
func (f Form) Close() error {
	var errs []error
	for _, file := range f.Files() {
		errs = append(errs, file.Close())
	}

	return errors.Join(errs...)
}
