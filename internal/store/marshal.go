package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/fieldsync/internal/canonical"
)

// marshalProps converts event properties to canonical JSON TEXT.
// Values canonical JSON cannot carry (floats, nil, arbitrary structs) are
// stored as their fmt rendering.
func marshalProps(props map[string]any) (string, error) {
	obj := make(map[string]any, len(props))
	for k, v := range props {
		obj[k] = storable(v)
	}
	data, err := canonical.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("marshal properties: %w", err)
	}
	return string(data), nil
}

func storable(v any) any {
	switch val := v.(type) {
	case string, bool, int, int64, []string:
		return val
	case int32:
		return int64(val)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// unmarshalProps parses properties TEXT. Integers come back as int64.
func unmarshalProps(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	for k, v := range obj {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				obj[k] = i
			}
		}
	}
	return obj, nil
}
