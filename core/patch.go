package core

import (
	"bytes"
	"encoding/json"
)

// NullKeys returns the keys of a JSON object explicitly set to null.
// Partial updates use it to tell a cleared nullable field from an absent one, since
// encoding/json decodes both into a nil pointer.
func NullKeys(data []byte) (map[string]bool, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	keys := make(map[string]bool)
	for key, val := range obj {
		if bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
			keys[key] = true
		}
	}
	return keys, nil
}
