package store

import (
	"encoding/json"
	"fmt"
)

// marshalList converts a string list to JSON text for storage.
func marshalList[T ~string](items []T) string {
	if len(items) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(items)
	return string(b)
}

// unmarshalList converts JSON text back to a list. Empty lists come back
// as nil so round-tripped nodes match freshly decoded ones.
func unmarshalList[T ~string](s string) ([]T, error) {
	if s == "" || s == "null" || s == "[]" {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("%w: bad list %q: %w", ErrInvalidDataset, s, err)
	}
	return items, nil
}
