package config

import (
	"log"
	"os"

	"github.com/indigo-web/formkit/http/mime"
)

// Logger is satisfied by *log.Logger and by anything else able to print formatted lines.
type Logger interface {
	Printf(format string, v ...any)
}

type (
	BodyForm struct {
		// DefaultCoding sets the default charset of form fields unless one is explicitly set
		// via the part's Content-Type.
		DefaultCoding mime.Charset `yaml:"default_coding"`
		// DefaultContentType sets the default MIME of plain (non-file) multipart fields.
		DefaultContentType mime.MIME `yaml:"default_content_type"`
	}

	Multipart struct {
		// TempDir is where uploaded files are spooled until they are either saved or closed.
		TempDir string `yaml:"temp_dir"`
		// MaxHeaderSize limits the header block of a single part.
		MaxHeaderSize int `yaml:"max_header_size"`
		// MaxFieldSize limits the value of a single plain field. Files aren't affected, as
		// they never reside in memory.
		MaxFieldSize int `yaml:"max_field_size"`
		// MaxParts limits how many parts a single form may consist of.
		MaxParts int `yaml:"max_parts"`
		// WriteQueue is how many pieces of file data may be pending for the disk writer
		// before the decoder blocks.
		WriteQueue int `yaml:"write_queue"`
		// CopyBufferSize is used when a saved file must be copied instead of renamed, e.g.
		// when the target resides on another device.
		CopyBufferSize int `yaml:"copy_buffer_size"`
		// ReadBufferSize is used by io.Reader-backed body sources.
		ReadBufferSize int `yaml:"read_buffer_size"`
		// DefaultFileType is the MIME assigned to file parts without an explicit Content-Type.
		DefaultFileType mime.MIME `yaml:"default_file_type"`
	}

	Body struct {
		// MaxSize describes the maximal size of a body, that can be processed. 0 will discard
		// any request with body (each call to request's body will result in status.ErrBodyTooLarge).
		// In order to disable the setting, use the math.MaxUint64 value.
		MaxSize uint64 `yaml:"max_size"`
		// Form describes defaults shared by all form kinds.
		Form BodyForm `yaml:"form"`
		// Multipart holds limits and spooling settings of multipart/form-data decoding.
		Multipart Multipart `yaml:"multipart"`
	}

	// JSON is handed to every body explicitly instead of being picked from the environment.
	JSON struct {
		EscapeHTML            bool `yaml:"escape_html" test:"nullable"`
		SortMapKeys           bool `yaml:"sort_map_keys" test:"nullable"`
		UseNumber             bool `yaml:"use_number" test:"nullable"`
		DisallowUnknownFields bool `yaml:"disallow_unknown_fields" test:"nullable"`
		IndentionStep         int  `yaml:"indention_step" test:"nullable"`
	}
)

// Config holds settings used across various parts of formkit, mainly restrictions, limitations
// and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Body Body `yaml:"body"`
	JSON JSON `yaml:"json"`
	// Logger receives reports about failures which cannot be returned to the caller, e.g. a
	// temporary file that couldn't be removed while another error is already being returned.
	Logger Logger `yaml:"-"`
}

// Default returns default config. Those are initially well-balanced, however maximal defaults
// are pretty permitting.
func Default() *Config {
	return &Config{
		Body: Body{
			MaxSize: 512 * 1024 * 1024, // 512 megabytes
			Form: BodyForm{
				DefaultCoding:      mime.UTF8,
				DefaultContentType: mime.Plain,
			},
			Multipart: Multipart{
				TempDir:        os.TempDir(),
				MaxHeaderSize:  8 * 1024,
				MaxFieldSize:   1024 * 1024,
				MaxParts:       1000,
				WriteQueue:     16,
				CopyBufferSize: 64 * 1024,
				// same as a default socket read buffer, so chunks of a file are roughly
				// as large as they'd be coming right from the network.
				ReadBufferSize:  4 * 1024,
				DefaultFileType: mime.OctetStream,
			},
		},
		JSON: JSON{
			EscapeHTML:  true,
			SortMapKeys: true,
		},
		Logger: log.Default(),
	}
}
