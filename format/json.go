package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/classinfo/classinfo"
)

type JSONEncoder struct {
	w    io.Writer
	desc *classinfo.ClassDescriptor
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(desc *classinfo.ClassDescriptor) error {
	e.desc = desc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.desc, "", "  ")
}
