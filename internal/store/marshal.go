package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/casebook/internal/ir"
)

// marshalParams renders a parameter record as canonical JSON TEXT.
func marshalParams(params ir.Record) (string, error) {
	if params == nil {
		params = ir.Record{}
	}
	data, err := ir.MarshalCanonical(params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return string(data), nil
}

// unmarshalParams parses stored params. Numbers are decoded via
// json.Number so integers come back as int64, as they went in.
func unmarshalParams(data string) (ir.Record, error) {
	if data == "" || data == "{}" {
		return ir.Record{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	return ir.NormalizeRecord(m)
}
