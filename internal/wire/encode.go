package wire

import (
	"io"

	"github.com/goccy/go-yaml"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Output formats understood by Encode and Decode.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ContentType returns the media type for format.
func ContentType(format string) string {
	if format == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Marshal renders doc in the given format.
func Marshal(doc Document, format string, pretty bool) ([]byte, error) {
	switch format {
	case "", FormatJSON:
		if pretty {
			return json.MarshalIndent(doc, "", "  ")
		}
		return json.Marshal(doc)
	case FormatYAML:
		return yaml.Marshal(doc)
	}
	return nil, errors.Errorf("unknown output format %q", format)
}

// Encode writes doc to w followed by a newline.
func Encode(w io.Writer, doc Document, format string, pretty bool) error {
	b, err := Marshal(doc, format, pretty)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return errors.Wrap(err, "write document")
	}
	return nil
}

// Decode parses a JSON get_processes response.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, errors.Wrap(err, "decode document")
	}
	return doc, nil
}
