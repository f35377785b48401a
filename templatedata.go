package html2pdf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DecodeTemplateData parses a JSON object into a RenderRequest context.
// Blank input is an empty context. Integral numbers decode as int64 and
// other numbers as float64, so templates print 3 rather than 3.000000.
// Anything after the object other than whitespace is an error.
func DecodeTemplateData(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateData, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: got null", ErrTemplateData)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the object", ErrTemplateData)
	}

	for k, v := range data {
		data[k] = normalizeNumbers(v)
	}
	return data, nil
}

func normalizeNumbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for k, item := range v {
			v[k] = normalizeNumbers(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = normalizeNumbers(item)
		}
		return v
	default:
		return v
	}
}
