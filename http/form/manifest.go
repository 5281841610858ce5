package form

import (
	"github.com/indigo-web/formkit/config"
	"github.com/vmihailenco/msgpack/v5"
)

type FieldInfo struct {
	Name  string `json:"name" msgpack:"name"`
	Value string `json:"value" msgpack:"value"`
}

type FileInfo struct {
	Name        string `json:"name" msgpack:"name"`
	Filename    string `json:"filename" msgpack:"filename"`
	ContentType string `json:"content_type" msgpack:"content_type"`
	Charset     string `json:"charset,omitempty" msgpack:"charset,omitempty"`
	Size        int64  `json:"size" msgpack:"size"`
	Path        string `json:"path" msgpack:"path"`
	Saved       bool   `json:"saved" msgpack:"saved"`
}

// Manifest describes the form without its files' content.
type Manifest struct {
	Fields []FieldInfo `json:"fields" msgpack:"fields"`
	Files  []FileInfo  `json:"files" msgpack:"files"`
}

// Manifest returns the description of the form. Entries are ordered by their names.
func (f Form) Manifest() Manifest {
	m := Manifest{
		Fields: []FieldInfo{},
		Files:  []FileInfo{},
	}

	for name, entry := range f.Iter() {
		if !entry.IsFile() {
			m.Fields = append(m.Fields, FieldInfo{Name: name, Value: entry.Value})
			continue
		}

		m.Files = append(m.Files, FileInfo{
			Name:        name,
			Filename:    entry.File.Filename,
			ContentType: entry.File.ContentType,
			Charset:     entry.File.Charset,
			Size:        entry.File.Size(),
			Path:        entry.File.Path(),
			Saved:       entry.File.Saved(),
		})
	}

	return m
}

// JSON encodes the manifest with the codec described by the setting.
func (m Manifest) JSON(cfg config.JSON) ([]byte, error) {
	return cfg.API().Marshal(m)
}

func (m Manifest) MsgPack() ([]byte, error) {
	return msgpack.Marshal(m)
}
