package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies how a dataset file is encoded.
type Format string

const (
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// FormatForPath picks the dataset format from a file extension. Unknown
// extensions are treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatJSON
	}
}

// Decode reads a single JSON tree from r. The document must be one object;
// arrays, null and trailing values are rejected.
func Decode(r io.Reader) (*Node, error) {
	dec := json.NewDecoder(r)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDataset)
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: more than one root value", ErrInvalidDataset)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: root must be a JSON object", ErrInvalidDataset)
	}

	var root Node
	if err := json.Unmarshal(trimmed, &root); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &root, nil
}

// Encode writes root as indented JSON.
func Encode(w io.Writer, root *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return nil
}

// LoadFile reads a dataset from path in whichever format its extension
// names.
func LoadFile(path string) (*Node, error) {
	switch FormatForPath(path) {
	case FormatSQLite:
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		s, err := NewStore(path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.ReadTree()
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		return Decode(f)
	}
}

// SaveFile writes root to path in whichever format its extension names.
// SQLite targets are created or overwritten in place.
func SaveFile(path string, root *Node) error {
	switch FormatForPath(path) {
	case FormatSQLite:
		s, err := NewStore(path)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Migrate(); err != nil {
			return err
		}
		return s.WriteTree(root)
	default:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create dataset: %w", err)
		}
		if err := Encode(f, root); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}
