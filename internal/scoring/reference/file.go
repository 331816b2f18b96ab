package reference

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileSource reads a YAML snapshot from disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) Fetch(_ context.Context) (Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", f.path, err)
	}
	return DecodeYAML(data)
}

// DecodeYAML parses a snapshot document. Unknown keys are rejected.
func DecodeYAML(data []byte) (Snapshot, error) {
	var snap Snapshot
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode reference yaml: %w", err)
	}
	return snap, nil
}

// LoadFile reads and validates a YAML reference file.
func LoadFile(path string) (*Tables, error) {
	snap, err := NewFileSource(path).Fetch(context.Background())
	if err != nil {
		return nil, err
	}
	return NewTablesFromSnapshot(snap)
}
