package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/classinfo/classinfo"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(desc *classinfo.ClassDescriptor) error
}

var encoders = map[string]func(io.Writer) Encoder{
	"json": func(w io.Writer) Encoder { return NewJSONEncoder(w) },
	"yaml": func(w io.Writer) Encoder { return NewYAMLEncoder(w) },
	"line": func(w io.Writer) Encoder { return NewLineEncoder(w) },
}

// Names lists the supported output formats.
func Names() []string {
	return []string{"json", "yaml", "line"}
}

// NewEncoder returns the encoder registered under name.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	newEncoder, ok := encoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q, want one of %v", name, Names())
	}
	return newEncoder(w), nil
}
