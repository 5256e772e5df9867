package gameinfo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadYAMLDir reads every *.yaml file in dir and merges them into one Tables.
// Each file may hold any subset of the tables, keyed by game table name.
// Files are read in lexical order so row order is deterministic.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Tables, or an error naming the first file
// that fails to parse. Unknown table or column names are errors.
func LoadYAMLDir(dir string) (*Tables, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading gameinfo dir %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := &Tables{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		t, err := DecodeYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		out.Merge(t)
	}
	return out, nil
}

// DecodeYAML parses a single YAML document of rule tables.
// An empty document yields empty Tables.
func DecodeYAML(data []byte) (*Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &t, nil
}

// EncodeYAML writes t as a single YAML document.
func EncodeYAML(w io.Writer, t *Tables) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encoding gameinfo tables: %w", err)
	}
	return enc.Close()
}
