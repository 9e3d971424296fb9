package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// Save encodes a value to a file with gob. It is used both for fitted models
// and for cached feature artifacts keyed by recording identifier.
func Save(v interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	return nil
}

// Load decodes a gob file into v, which must be a pointer.
func Load(v interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}

	return nil
}

// SaveToWriter encodes a value to w with gob.
func SaveToWriter(v interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// LoadFromReader decodes a gob stream from r into v.
func LoadFromReader(v interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}
	return nil
}
