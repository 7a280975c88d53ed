package trigger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"

	"flowtrigger/internal/model"
)

// LoadPayload resolves the request payload. A file path wins over inline
// data, and with neither the payload is an empty object. Invalid JSON is a
// configuration error in both cases.
func LoadPayload(payloadPath, inlineData string) (model.Payload, error) {
	if payloadPath != "" {
		content, err := os.ReadFile(payloadPath)
		if err != nil {
			return nil, configError("reading payload file: %w", err)
		}
		v, err := DecodeJSON(content)
		if err != nil {
			return nil, configError("invalid JSON in %s: %w", payloadPath, err)
		}
		return v, nil
	}
	if inlineData != "" {
		v, err := DecodeJSON([]byte(inlineData))
		if err != nil {
			return nil, configError("invalid JSON in --data: %w", err)
		}
		return v, nil
	}
	return map[string]any{}, nil
}

// DecodeJSON decodes exactly one JSON value. Numbers are kept as
// json.Number so they round-trip with their original text.
func DecodeJSON(data []byte) (model.Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty input")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}
