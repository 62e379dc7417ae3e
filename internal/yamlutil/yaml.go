// Package yamlutil decodes and encodes configuration YAML.
// Decode errors carry the offending source line so they can be shown as is.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input (default 256KB). Config files are a few lines.
var MaxInputSize = 256 << 10

var (
	ErrEmpty          = errors.New("yamlutil: empty document")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// DecodeError is a YAML syntax or type error with the source excerpt that
// caused it.
type DecodeError struct {
	Excerpt string
	Err     error
}

func (e *DecodeError) Error() string {
	return "yamlutil: " + e.Excerpt
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func checkInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// UnmarshalStrict decodes data into v and rejects unknown fields.
func UnmarshalStrict(data []byte, v any) error {
	return decode(data, v, yaml.Strict())
}

func decode(data []byte, v any, opts ...yaml.DecodeOption) error {
	if err := checkInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return &DecodeError{Excerpt: yaml.FormatError(err, false, true), Err: err}
	}
	return nil
}

// Marshal encodes v as YAML.
func Marshal(v any) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}
