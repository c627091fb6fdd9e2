package fileutil

import (
	"encoding/json"
	"io"
)

// FprintJSON writes value to w as indented JSON.
func FprintJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// EncodeJSON renders value as indented JSON with a trailing newline,
// suitable for WriteIfChanged.
func EncodeJSON(value any) ([]byte, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
