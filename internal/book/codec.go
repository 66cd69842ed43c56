package book

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadParsedBook reads a parsed-book JSON file produced by an external
// document parser.
func LoadParsedBook(path string) (*ParsedBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parsed book: %w", err)
	}

	var b ParsedBook
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode parsed book: %w", err)
	}
	if b.Title == "" {
		return nil, fmt.Errorf("parsed book %s: missing title", path)
	}
	return &b, nil
}

// WriteFile writes the markup as indented JSON.
func (m *Markup) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode markup: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write markup: %w", err)
	}
	return nil
}

// MarshalJSONBytes returns the compact JSON encoding of the markup, used
// by the store.
func (m *Markup) MarshalJSONBytes() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode markup: %w", err)
	}
	return data, nil
}
