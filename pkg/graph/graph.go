package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Scene Serialization API
// =============================================================================

// MarshalScene converts a snapshot to indented JSON bytes.
func MarshalScene(s Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteScene(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteScene writes a snapshot as indented JSON.
func WriteScene(s Scene, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteSceneFile writes a snapshot to a JSON file.
func WriteSceneFile(s Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteScene(s, f)
}

// ReadScene decodes a JSON snapshot.
func ReadScene(r io.Reader) (Scene, error) {
	var s Scene
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Scene{}, fmt.Errorf("decode: %w", err)
	}
	return s, nil
}

// =============================================================================
// Positions Serialization API
// =============================================================================

// MarshalPositions serializes positions to compact JSON.
func MarshalPositions(p Positions) ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalPositions deserializes positions.
func UnmarshalPositions(data []byte) (Positions, error) {
	var p Positions
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}
	return p, nil
}

// WritePositionsFile writes positions to a JSON file.
func WritePositionsFile(p Positions, path string) error {
	data, err := MarshalPositions(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPositionsFile reads positions from a JSON file.
func ReadPositionsFile(path string) (Positions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalPositions(data)
}
