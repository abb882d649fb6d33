package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned by Render for formats it does not know.
var ErrUnknownFormat = errors.New("unknown output format")

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Render writes doc in format: text, json or yaml.
func Render(w io.Writer, format string, doc *Document, opts TextOptions) error {
	switch format {
	case "", "text":
		return WriteText(w, doc, opts)
	case "json":
		return WriteJSON(w, doc)
	case "yaml":
		return WriteYAML(w, doc)
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, format)
}
