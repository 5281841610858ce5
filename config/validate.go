package config

import (
	"errors"
	"fmt"
)

// Validate reports settings which can't be worked with, e.g. negative sizes. Every violation
// is reported, not just the first one.
func (c *Config) Validate() error {
	var errs []error

	positive := func(name string, value int) {
		if value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, value))
		}
	}
	nonNegative := func(name string, value int) {
		if value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", name, value))
		}
	}

	m := c.Body.Multipart
	positive("body.multipart.max_header_size", m.MaxHeaderSize)
	positive("body.multipart.max_parts", m.MaxParts)
	positive("body.multipart.read_buffer_size", m.ReadBufferSize)
	nonNegative("body.multipart.max_field_size", m.MaxFieldSize)
	nonNegative("body.multipart.write_queue", m.WriteQueue)
	nonNegative("body.multipart.copy_buffer_size", m.CopyBufferSize)
	nonNegative("json.indention_step", c.JSON.IndentionStep)

	return errors.Join(errs...)
}
