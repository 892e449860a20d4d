package format

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/classinfo/classinfo"
)

// YAMLEncoder writes descriptors as YAML documents separated by "---".
type YAMLEncoder struct {
	w       io.Writer
	desc    *classinfo.ClassDescriptor
	written int
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{w: w}
}

func (e *YAMLEncoder) Encode(desc *classinfo.ClassDescriptor) error {
	e.desc = desc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	if e.written > 0 {
		text = append([]byte("---\n"), text...)
	}
	e.written++
	_, err = e.w.Write(text)
	return err
}

func (e *YAMLEncoder) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(e.desc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
